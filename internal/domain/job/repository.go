package job

import (
	"context"
	"errors"

	"bluujobs/internal/store"
)

var ErrNotFound = errors.New("job not found")

type Repository interface {
	List(ctx context.Context, tx *store.Txn) ([]Job, error)
	GetByID(ctx context.Context, tx *store.Txn, id string) (Job, error)
	Create(ctx context.Context, tx *store.Txn, j Job) error
	Update(ctx context.Context, tx *store.Txn, id string, fn func(*Job) error) (Job, error)
	Delete(ctx context.Context, tx *store.Txn, id string) (bool, error)
	SaveAll(ctx context.Context, tx *store.Txn, jobs []Job) error
}
