package repository

import (
	"context"

	"bluujobs/internal/domain/message"
	"bluujobs/internal/store"
)

type KVMessageRepository struct {
	records[message.Message]
}

func NewKVMessageRepository(keys store.Keys) *KVMessageRepository {
	return &KVMessageRepository{newRecords(keys, store.CollectionMessages, func(m message.Message) string { return m.ID })}
}

func (r *KVMessageRepository) List(ctx context.Context, tx *store.Txn) ([]message.Message, error) {
	return r.list(ctx, tx)
}

func (r *KVMessageRepository) Create(ctx context.Context, tx *store.Txn, m message.Message) error {
	return r.insert(ctx, tx, m)
}

func (r *KVMessageRepository) Update(ctx context.Context, tx *store.Txn, id string, fn func(*message.Message) error) (message.Message, error) {
	return r.update(ctx, tx, id, message.ErrNotFound, fn)
}

func (r *KVMessageRepository) DeleteWhere(ctx context.Context, tx *store.Txn, match func(message.Message) bool) (int, error) {
	return r.deleteWhere(ctx, tx, match)
}

var _ message.Repository = (*KVMessageRepository)(nil)
