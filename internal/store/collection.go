package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Collection is a whole-collection JSON array stored under one key.
type Collection[T any] struct {
	Key string
}

func NewCollection[T any](key string) Collection[T] {
	return Collection[T]{Key: key}
}

// Load returns the records visible to tx. An absent key yields an empty slice.
func (c Collection[T]) Load(ctx context.Context, tx *Txn) ([]T, error) {
	b, ok, err := tx.Get(ctx, c.Key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.Key, err)
	}
	if !ok {
		return []T{}, nil
	}
	return decodeArray[T](c.Key, b)
}

// Save stages the full collection for the next commit of tx.
func (c Collection[T]) Save(ctx context.Context, tx *Txn, records []T) error {
	b, err := encodeArray(records)
	if err != nil {
		return fmt.Errorf("save %s: %w", c.Key, err)
	}
	return tx.Put(ctx, c.Key, b)
}

// LoadFrom reads the collection straight from kv outside any transaction.
func (c Collection[T]) LoadFrom(ctx context.Context, kv KV) ([]T, error) {
	e, err := kv.Get(ctx, c.Key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.Key, err)
	}
	if !e.Exists {
		return []T{}, nil
	}
	return decodeArray[T](c.Key, e.Value)
}

// Overwrite replaces the collection unconditionally in a single write.
func (c Collection[T]) Overwrite(ctx context.Context, kv KV, records []T) error {
	b, err := encodeArray(records)
	if err != nil {
		return fmt.Errorf("save %s: %w", c.Key, err)
	}
	return kv.Commit(ctx, []Write{{Key: c.Key, Kind: WritePut, Value: b, Expected: AnyVersion}})
}

// Encode marshals records the way Save would store them.
func (c Collection[T]) Encode(records []T) ([]byte, error) {
	return encodeArray(records)
}

func decodeArray[T any](key string, b []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: key=%s: %v", ErrCorrupt, key, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func encodeArray[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	return json.Marshal(records)
}

// GetObject decodes a single JSON object stored under key.
func GetObject[T any](ctx context.Context, tx *Txn, key string) (T, bool, error) {
	var zero T
	b, ok, err := tx.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, false, fmt.Errorf("%w: key=%s: %v", ErrCorrupt, key, err)
	}
	return out, true, nil
}

// PutObject stages a single JSON object under key.
func PutObject[T any](ctx context.Context, tx *Txn, key string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return tx.Put(ctx, key, b)
}
