package favorite

import (
	"context"
	"time"

	"bluujobs/internal/store"
)

type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	JobID     string    `json:"jobId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository interface {
	ListByUser(ctx context.Context, tx *store.Txn, userID string) ([]Favorite, error)
	Find(ctx context.Context, tx *store.Txn, userID, jobID string) (Favorite, bool, error)
	Create(ctx context.Context, tx *store.Txn, f Favorite) error
	DeleteWhere(ctx context.Context, tx *store.Txn, match func(Favorite) bool) (int, error)
}
