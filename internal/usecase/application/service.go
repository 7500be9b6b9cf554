package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"bluujobs/internal/domain/application"
	"bluujobs/internal/domain/job"
	"bluujobs/internal/domain/notification"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/store"
	"bluujobs/internal/usecase/integrity"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("application not found")
	ErrJobNotFound       = errors.New("job not found")
	ErrJobClosed         = errors.New("job is not open for applications")
	ErrNotWorker         = errors.New("only workers can apply for jobs")
	ErrAlreadyApplied    = errors.New("already applied to this job")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrInternal          = errors.New("internal error")
)

type ApplyInput struct {
	JobID string
	// WorkerID lets an admin apply on behalf of a worker. Defaults to the actor.
	WorkerID string
}

type Service struct {
	store         *store.Store
	repos         integrity.Repos
	notifications notification.Repository
	logger        *log.Logger
	now           func() time.Time
}

func NewService(st *store.Store, repos integrity.Repos, notifications notification.Repository, logger *log.Logger) *Service {
	return &Service{store: st, repos: repos, notifications: notifications, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]application.Application, error) {
	return s.view(ctx, func(ctx context.Context, tx *store.Txn) ([]application.Application, error) {
		return s.repos.Applications.List(ctx, tx)
	})
}

func (s *Service) ListByWorker(ctx context.Context, workerID string) ([]application.Application, error) {
	return s.view(ctx, func(ctx context.Context, tx *store.Txn) ([]application.Application, error) {
		return s.repos.Applications.ListByWorker(ctx, tx, workerID)
	})
}

func (s *Service) ListByJob(ctx context.Context, jobID string) ([]application.Application, error) {
	return s.view(ctx, func(ctx context.Context, tx *store.Txn) ([]application.Application, error) {
		return s.repos.Applications.ListByJob(ctx, tx, jobID)
	})
}

// ListForEmployer returns the applications to a job, visible to its owner.
func (s *Service) ListForEmployer(ctx context.Context, actor user.Actor, jobID string) ([]application.Application, error) {
	return s.view(ctx, func(ctx context.Context, tx *store.Txn) ([]application.Application, error) {
		j, err := s.repos.Jobs.GetByID(ctx, tx, jobID)
		if err != nil {
			return nil, err
		}
		if !actor.Can(j.EmployerID) {
			return nil, ErrForbidden
		}
		return s.repos.Applications.ListByJob(ctx, tx, jobID)
	})
}

func (s *Service) HasApplied(ctx context.Context, workerID, jobID string) (bool, error) {
	apps, err := s.ListByWorker(ctx, workerID)
	if err != nil {
		return false, err
	}
	for _, a := range apps {
		if a.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

// Apply records a pending application, recomputes the job's applicants and
// notifies both sides, all in one commit.
func (s *Service) Apply(ctx context.Context, actor user.Actor, in ApplyInput) (application.Application, error) {
	jobID := strings.TrimSpace(in.JobID)
	if jobID == "" {
		return application.Application{}, ErrInvalidInput
	}
	workerID := actor.ID
	switch actor.Type {
	case user.TypeWorker:
	case user.TypeAdmin:
		if strings.TrimSpace(in.WorkerID) == "" {
			return application.Application{}, ErrInvalidInput
		}
		workerID = strings.TrimSpace(in.WorkerID)
	default:
		return application.Application{}, ErrNotWorker
	}

	var created application.Application
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		now := s.now().UTC()

		worker, err := s.repos.Users.GetByID(ctx, tx, workerID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return ErrNotWorker
			}
			return err
		}
		if worker.UserType != user.TypeWorker {
			return ErrNotWorker
		}

		j, err := s.repos.Jobs.GetByID(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !j.IsOpen() || j.Expired(now) {
			return ErrJobClosed
		}

		existing, err := s.repos.Applications.ListByJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		for _, a := range existing {
			if a.WorkerID == workerID {
				return ErrAlreadyApplied
			}
		}

		created = application.Application{
			ID:         uuid.NewString(),
			JobID:      jobID,
			WorkerID:   workerID,
			WorkerName: worker.Name,
			Status:     application.StatusPending,
			AppliedAt:  now,
		}
		if err := s.repos.Applications.Create(ctx, tx, created); err != nil {
			return err
		}
		if _, err := integrity.SyncApplicants(ctx, tx, s.repos, jobID); err != nil {
			return err
		}

		notices := []notification.Notification{
			notification.New(workerID, "Application Received",
				fmt.Sprintf("Your application for %q has been received.", j.Title),
				notification.TypeSuccess, now),
			notification.New(j.EmployerID, "New Application",
				fmt.Sprintf("%s applied for your job %q.", worker.Name, j.Title),
				notification.TypeInfo, now),
		}
		for _, n := range notices {
			if err := s.notifications.Create(ctx, tx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return application.Application{}, s.mapError("apply", err)
	}
	return created, nil
}

// UpdateStatus moves an application along the status machine on behalf of
// the job's owner, recomputes the job's applicants and notifies the worker.
func (s *Service) UpdateStatus(ctx context.Context, actor user.Actor, id string, raw string) (application.Application, error) {
	next, err := application.ParseStatus(raw)
	if err != nil {
		return application.Application{}, ErrInvalidInput
	}

	var updated application.Application
	err = s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		current, err := s.repos.Applications.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		j, err := s.repos.Jobs.GetByID(ctx, tx, current.JobID)
		if err != nil {
			return err
		}
		if !actor.Can(j.EmployerID) {
			return ErrForbidden
		}
		if !application.IsTransitionAllowed(current.Status, next) {
			return ErrInvalidTransition
		}

		updated, err = s.repos.Applications.Update(ctx, tx, id, func(a *application.Application) error {
			a.Status = next
			return nil
		})
		if err != nil {
			return err
		}
		if _, err := integrity.SyncApplicants(ctx, tx, s.repos, j.ID); err != nil {
			return err
		}
		return s.notifications.Create(ctx, tx, statusNotice(updated, j, s.now()))
	})
	if err != nil {
		return application.Application{}, s.mapError("update status", err)
	}
	return updated, nil
}

func statusNotice(a application.Application, j job.Job, at time.Time) notification.Notification {
	if a.Status == application.StatusAccepted {
		return notification.New(a.WorkerID, "Application Accepted!",
			fmt.Sprintf("Congratulations! Your application for %q has been accepted.", j.Title),
			notification.TypeSuccess, at)
	}
	return notification.New(a.WorkerID, "Application Update",
		fmt.Sprintf("Your application for %q was not selected.", j.Title),
		notification.TypeWarning, at)
}

func (s *Service) view(ctx context.Context, fn func(ctx context.Context, tx *store.Txn) ([]application.Application, error)) ([]application.Application, error) {
	var out []application.Application
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		out, err = fn(ctx, tx)
		return err
	})
	if err != nil {
		return nil, s.mapError("list", err)
	}
	return out, nil
}

func (s *Service) mapError(op string, err error) error {
	for _, known := range []error{
		ErrInvalidInput, ErrJobClosed, ErrNotWorker, ErrAlreadyApplied,
		ErrInvalidTransition, ErrForbidden,
	} {
		if errors.Is(err, known) {
			return known
		}
	}
	switch {
	case errors.Is(err, application.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, job.ErrNotFound):
		return ErrJobNotFound
	}
	if s.logger != nil {
		s.logger.Printf("[Application] %s failed err=%v", op, err)
	}
	return ErrInternal
}
