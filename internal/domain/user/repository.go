package user

import (
	"context"
	"errors"

	"bluujobs/internal/store"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Repository interface {
	List(ctx context.Context, tx *store.Txn) ([]User, error)
	GetByID(ctx context.Context, tx *store.Txn, id string) (User, error)
	GetByEmail(ctx context.Context, tx *store.Txn, email string) (User, error)
	Create(ctx context.Context, tx *store.Txn, u User) error
	Update(ctx context.Context, tx *store.Txn, id string, fn func(*User) error) (User, error)
	Delete(ctx context.Context, tx *store.Txn, id string) (bool, error)
	SaveAll(ctx context.Context, tx *store.Txn, users []User) error
}
