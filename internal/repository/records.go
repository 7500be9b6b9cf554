package repository

import (
	"context"

	"bluujobs/internal/store"
)

// records is a whole-collection table addressed by record id.
type records[T any] struct {
	col store.Collection[T]
	id  func(T) string
}

func newRecords[T any](keys store.Keys, name string, id func(T) string) records[T] {
	return records[T]{col: store.NewCollection[T](keys.Collection(name)), id: id}
}

func (r records[T]) list(ctx context.Context, tx *store.Txn) ([]T, error) {
	return r.col.Load(ctx, tx)
}

func (r records[T]) save(ctx context.Context, tx *store.Txn, all []T) error {
	return r.col.Save(ctx, tx, all)
}

func (r records[T]) filter(ctx context.Context, tx *store.Txn, keep func(T) bool) ([]T, error) {
	all, err := r.list(ctx, tx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for _, v := range all {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// get returns the record with id, or notFound.
func (r records[T]) get(ctx context.Context, tx *store.Txn, id string, notFound error) (T, error) {
	var zero T
	all, err := r.list(ctx, tx)
	if err != nil {
		return zero, err
	}
	for _, v := range all {
		if r.id(v) == id {
			return v, nil
		}
	}
	return zero, notFound
}

func (r records[T]) insert(ctx context.Context, tx *store.Txn, v T) error {
	all, err := r.list(ctx, tx)
	if err != nil {
		return err
	}
	return r.save(ctx, tx, append(all, v))
}

// update applies fn to the record with id and stages the collection.
func (r records[T]) update(ctx context.Context, tx *store.Txn, id string, notFound error, fn func(*T) error) (T, error) {
	var zero T
	all, err := r.list(ctx, tx)
	if err != nil {
		return zero, err
	}
	for i := range all {
		if r.id(all[i]) != id {
			continue
		}
		if err := fn(&all[i]); err != nil {
			return zero, err
		}
		if err := r.save(ctx, tx, all); err != nil {
			return zero, err
		}
		return all[i], nil
	}
	return zero, notFound
}

// updateWhere applies fn to every record matching match. fn reports whether
// it changed the record; the collection is staged only when something did.
func (r records[T]) updateWhere(ctx context.Context, tx *store.Txn, match func(T) bool, fn func(*T) bool) (int, error) {
	all, err := r.list(ctx, tx)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range all {
		if match(all[i]) && fn(&all[i]) {
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, r.save(ctx, tx, all)
}

// deleteWhere drops matching records. Nothing is staged when none match.
func (r records[T]) deleteWhere(ctx context.Context, tx *store.Txn, match func(T) bool) (int, error) {
	all, err := r.list(ctx, tx)
	if err != nil {
		return 0, err
	}
	kept := make([]T, 0, len(all))
	for _, v := range all {
		if !match(v) {
			kept = append(kept, v)
		}
	}
	removed := len(all) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, r.save(ctx, tx, kept)
}
