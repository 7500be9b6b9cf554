package repository

import (
	"context"

	"bluujobs/internal/domain/favorite"
	"bluujobs/internal/store"
)

type KVFavoriteRepository struct {
	records[favorite.Favorite]
}

func NewKVFavoriteRepository(keys store.Keys) *KVFavoriteRepository {
	return &KVFavoriteRepository{newRecords(keys, store.CollectionFavorites, func(f favorite.Favorite) string { return f.ID })}
}

func (r *KVFavoriteRepository) ListByUser(ctx context.Context, tx *store.Txn, userID string) ([]favorite.Favorite, error) {
	return r.filter(ctx, tx, func(f favorite.Favorite) bool { return f.UserID == userID })
}

func (r *KVFavoriteRepository) Find(ctx context.Context, tx *store.Txn, userID, jobID string) (favorite.Favorite, bool, error) {
	all, err := r.list(ctx, tx)
	if err != nil {
		return favorite.Favorite{}, false, err
	}
	for _, f := range all {
		if f.UserID == userID && f.JobID == jobID {
			return f, true, nil
		}
	}
	return favorite.Favorite{}, false, nil
}

func (r *KVFavoriteRepository) Create(ctx context.Context, tx *store.Txn, f favorite.Favorite) error {
	return r.insert(ctx, tx, f)
}

func (r *KVFavoriteRepository) DeleteWhere(ctx context.Context, tx *store.Txn, match func(favorite.Favorite) bool) (int, error) {
	return r.deleteWhere(ctx, tx, match)
}

var _ favorite.Repository = (*KVFavoriteRepository)(nil)
