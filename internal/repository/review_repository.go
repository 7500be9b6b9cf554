package repository

import (
	"context"

	"bluujobs/internal/domain/review"
	"bluujobs/internal/store"
)

type KVReviewRepository struct {
	records[review.Review]
}

func NewKVReviewRepository(keys store.Keys) *KVReviewRepository {
	return &KVReviewRepository{newRecords(keys, store.CollectionReviews, func(r review.Review) string { return r.ID })}
}

func (r *KVReviewRepository) List(ctx context.Context, tx *store.Txn) ([]review.Review, error) {
	return r.list(ctx, tx)
}

func (r *KVReviewRepository) ListByRecipient(ctx context.Context, tx *store.Txn, userID string) ([]review.Review, error) {
	return r.filter(ctx, tx, func(rv review.Review) bool { return rv.ToUserID == userID })
}

func (r *KVReviewRepository) Create(ctx context.Context, tx *store.Txn, rv review.Review) error {
	return r.insert(ctx, tx, rv)
}

func (r *KVReviewRepository) DeleteWhere(ctx context.Context, tx *store.Txn, match func(review.Review) bool) (int, error) {
	return r.deleteWhere(ctx, tx, match)
}

var _ review.Repository = (*KVReviewRepository)(nil)
