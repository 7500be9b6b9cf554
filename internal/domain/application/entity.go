package application

import (
	"context"
	"errors"
	"time"

	"bluujobs/internal/store"
)

var ErrNotFound = errors.New("application not found")

type Application struct {
	ID         string    `json:"id"`
	JobID      string    `json:"jobId"`
	WorkerID   string    `json:"workerId"`
	WorkerName string    `json:"workerName"`
	Status     Status    `json:"status"`
	AppliedAt  time.Time `json:"appliedAt"`
}

// ApplicantsFor derives a job's applicant list from its applications: worker
// ids of non-rejected applications, in application order, without duplicates.
func ApplicantsFor(jobID string, apps []Application) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, a := range apps {
		if a.JobID != jobID || !a.Status.Active() {
			continue
		}
		if _, ok := seen[a.WorkerID]; ok {
			continue
		}
		seen[a.WorkerID] = struct{}{}
		out = append(out, a.WorkerID)
	}
	return out
}

type Repository interface {
	List(ctx context.Context, tx *store.Txn) ([]Application, error)
	GetByID(ctx context.Context, tx *store.Txn, id string) (Application, error)
	ListByWorker(ctx context.Context, tx *store.Txn, workerID string) ([]Application, error)
	ListByJob(ctx context.Context, tx *store.Txn, jobID string) ([]Application, error)
	Create(ctx context.Context, tx *store.Txn, a Application) error
	Update(ctx context.Context, tx *store.Txn, id string, fn func(*Application) error) (Application, error)
	DeleteWhere(ctx context.Context, tx *store.Txn, match func(Application) bool) (int, error)
	SaveAll(ctx context.Context, tx *store.Txn, apps []Application) error
}
