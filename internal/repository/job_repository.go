package repository

import (
	"context"

	"bluujobs/internal/domain/job"
	"bluujobs/internal/store"
)

type KVJobRepository struct {
	records[job.Job]
}

func NewKVJobRepository(keys store.Keys) *KVJobRepository {
	return &KVJobRepository{newRecords(keys, store.CollectionJobs, func(j job.Job) string { return j.ID })}
}

func (r *KVJobRepository) List(ctx context.Context, tx *store.Txn) ([]job.Job, error) {
	return r.list(ctx, tx)
}

func (r *KVJobRepository) GetByID(ctx context.Context, tx *store.Txn, id string) (job.Job, error) {
	return r.get(ctx, tx, id, job.ErrNotFound)
}

func (r *KVJobRepository) Create(ctx context.Context, tx *store.Txn, j job.Job) error {
	if j.Applicants == nil {
		j.Applicants = []string{}
	}
	return r.insert(ctx, tx, j)
}

func (r *KVJobRepository) Update(ctx context.Context, tx *store.Txn, id string, fn func(*job.Job) error) (job.Job, error) {
	return r.update(ctx, tx, id, job.ErrNotFound, fn)
}

func (r *KVJobRepository) Delete(ctx context.Context, tx *store.Txn, id string) (bool, error) {
	n, err := r.deleteWhere(ctx, tx, func(j job.Job) bool { return j.ID == id })
	return n > 0, err
}

func (r *KVJobRepository) SaveAll(ctx context.Context, tx *store.Txn, jobs []job.Job) error {
	return r.save(ctx, tx, jobs)
}

var _ job.Repository = (*KVJobRepository)(nil)
