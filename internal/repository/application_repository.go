package repository

import (
	"context"

	"bluujobs/internal/domain/application"
	"bluujobs/internal/store"
)

type KVApplicationRepository struct {
	records[application.Application]
}

func NewKVApplicationRepository(keys store.Keys) *KVApplicationRepository {
	return &KVApplicationRepository{newRecords(keys, store.CollectionApplications, func(a application.Application) string { return a.ID })}
}

func (r *KVApplicationRepository) List(ctx context.Context, tx *store.Txn) ([]application.Application, error) {
	return r.list(ctx, tx)
}

func (r *KVApplicationRepository) GetByID(ctx context.Context, tx *store.Txn, id string) (application.Application, error) {
	return r.get(ctx, tx, id, application.ErrNotFound)
}

func (r *KVApplicationRepository) ListByWorker(ctx context.Context, tx *store.Txn, workerID string) ([]application.Application, error) {
	return r.filter(ctx, tx, func(a application.Application) bool { return a.WorkerID == workerID })
}

func (r *KVApplicationRepository) ListByJob(ctx context.Context, tx *store.Txn, jobID string) ([]application.Application, error) {
	return r.filter(ctx, tx, func(a application.Application) bool { return a.JobID == jobID })
}

func (r *KVApplicationRepository) Create(ctx context.Context, tx *store.Txn, a application.Application) error {
	return r.insert(ctx, tx, a)
}

func (r *KVApplicationRepository) Update(ctx context.Context, tx *store.Txn, id string, fn func(*application.Application) error) (application.Application, error) {
	return r.update(ctx, tx, id, application.ErrNotFound, fn)
}

func (r *KVApplicationRepository) DeleteWhere(ctx context.Context, tx *store.Txn, match func(application.Application) bool) (int, error) {
	return r.deleteWhere(ctx, tx, match)
}

func (r *KVApplicationRepository) SaveAll(ctx context.Context, tx *store.Txn, apps []application.Application) error {
	return r.save(ctx, tx, apps)
}

var _ application.Repository = (*KVApplicationRepository)(nil)
