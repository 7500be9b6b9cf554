package store

import (
	"context"
	"sort"
)

// Txn is a read-your-writes unit of work over a KV. Every key read is
// remembered with its version so Commit can guard against lost updates.
type Txn struct {
	kv     KV
	seen   map[string]Entry
	staged map[string]Write
	order  []string
}

func newTxn(kv KV) *Txn {
	return &Txn{
		kv:     kv,
		seen:   make(map[string]Entry),
		staged: make(map[string]Write),
	}
}

func (t *Txn) read(ctx context.Context, key string) (Entry, error) {
	if e, ok := t.seen[key]; ok {
		return e, nil
	}
	e, err := t.kv.Get(ctx, key)
	if err != nil {
		return Entry{}, err
	}
	t.seen[key] = e
	return e, nil
}

// Get returns the staged value for key if any, otherwise the stored one.
func (t *Txn) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if w, ok := t.staged[key]; ok {
		if w.Kind == WriteDelete {
			return nil, false, nil
		}
		return w.Value, true, nil
	}
	e, err := t.read(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return e.Value, e.Exists, nil
}

// Version returns the stored version of key as first seen by t.
func (t *Txn) Version(ctx context.Context, key string) (int64, error) {
	e, err := t.read(ctx, key)
	if err != nil {
		return 0, err
	}
	return e.Version, nil
}

func (t *Txn) Put(ctx context.Context, key string, value []byte) error {
	e, err := t.read(ctx, key)
	if err != nil {
		return err
	}
	t.stage(Write{Key: key, Kind: WritePut, Value: value, Expected: e.Version})
	return nil
}

func (t *Txn) Delete(ctx context.Context, key string) error {
	e, err := t.read(ctx, key)
	if err != nil {
		return err
	}
	t.stage(Write{Key: key, Kind: WriteDelete, Expected: e.Version})
	return nil
}

func (t *Txn) stage(w Write) {
	if _, ok := t.staged[w.Key]; !ok {
		t.order = append(t.order, w.Key)
	}
	t.staged[w.Key] = w
}

// Dirty reports whether the transaction staged any write.
func (t *Txn) Dirty() bool {
	return len(t.staged) > 0
}

// Changed returns the staged keys in staging order.
func (t *Txn) Changed() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Writes returns staged writes followed by version checks for keys that
// were only read.
func (t *Txn) Writes() []Write {
	out := make([]Write, 0, len(t.seen)+len(t.staged))
	for _, k := range t.order {
		out = append(out, t.staged[k])
	}

	checks := make([]string, 0, len(t.seen))
	for k := range t.seen {
		if _, ok := t.staged[k]; ok {
			continue
		}
		checks = append(checks, k)
	}
	sort.Strings(checks)
	for _, k := range checks {
		out = append(out, Write{Key: k, Kind: WriteCheck, Expected: t.seen[k].Version})
	}
	return out
}

func (t *Txn) commit(ctx context.Context) error {
	if !t.Dirty() {
		return nil
	}
	return t.kv.Commit(ctx, t.Writes())
}
