package repository

import (
	"context"

	"bluujobs/internal/domain/user"
	"bluujobs/internal/store"
)

type KVUserRepository struct {
	records[user.User]
}

func NewKVUserRepository(keys store.Keys) *KVUserRepository {
	return &KVUserRepository{newRecords(keys, store.CollectionUsers, func(u user.User) string { return u.ID })}
}

func (r *KVUserRepository) List(ctx context.Context, tx *store.Txn) ([]user.User, error) {
	return r.list(ctx, tx)
}

func (r *KVUserRepository) GetByID(ctx context.Context, tx *store.Txn, id string) (user.User, error) {
	return r.get(ctx, tx, id, user.ErrNotFound)
}

// GetByEmail matches the email exactly, case included.
func (r *KVUserRepository) GetByEmail(ctx context.Context, tx *store.Txn, email string) (user.User, error) {
	all, err := r.list(ctx, tx)
	if err != nil {
		return user.User{}, err
	}
	for _, u := range all {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

// Create appends u. The email must not be held by another user.
func (r *KVUserRepository) Create(ctx context.Context, tx *store.Txn, u user.User) error {
	all, err := r.list(ctx, tx)
	if err != nil {
		return err
	}
	for _, existing := range all {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	return r.save(ctx, tx, append(all, u))
}

func (r *KVUserRepository) Update(ctx context.Context, tx *store.Txn, id string, fn func(*user.User) error) (user.User, error) {
	all, err := r.list(ctx, tx)
	if err != nil {
		return user.User{}, err
	}
	idx := -1
	for i := range all {
		if all[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return user.User{}, user.ErrNotFound
	}
	if err := fn(&all[idx]); err != nil {
		return user.User{}, err
	}
	for i := range all {
		if i != idx && all[i].Email == all[idx].Email {
			return user.User{}, user.ErrEmailTaken
		}
	}
	if err := r.save(ctx, tx, all); err != nil {
		return user.User{}, err
	}
	return all[idx], nil
}

func (r *KVUserRepository) Delete(ctx context.Context, tx *store.Txn, id string) (bool, error) {
	n, err := r.deleteWhere(ctx, tx, func(u user.User) bool { return u.ID == id })
	return n > 0, err
}

func (r *KVUserRepository) SaveAll(ctx context.Context, tx *store.Txn, users []user.User) error {
	return r.save(ctx, tx, users)
}

var _ user.Repository = (*KVUserRepository)(nil)
