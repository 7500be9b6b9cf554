package favorite

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"bluujobs/internal/domain/favorite"
	"bluujobs/internal/domain/job"
	"bluujobs/internal/store"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrInternal    = errors.New("internal error")
)

type Service struct {
	store  *store.Store
	repo   favorite.Repository
	jobs   job.Repository
	logger *log.Logger
	now    func() time.Time
}

func NewService(st *store.Store, repo favorite.Repository, jobs job.Repository, logger *log.Logger) *Service {
	return &Service{store: st, repo: repo, jobs: jobs, logger: logger, now: time.Now}
}

func (s *Service) ForUser(ctx context.Context, userID string) ([]favorite.Favorite, error) {
	var out []favorite.Favorite
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		out, err = s.repo.ListByUser(ctx, tx, userID)
		return err
	})
	if err != nil {
		s.logf("[Favorite] list failed user_id=%s err=%v", userID, err)
		return nil, ErrInternal
	}
	return out, nil
}

// Jobs resolves a user's favorites to jobs, skipping jobs that no longer exist.
func (s *Service) Jobs(ctx context.Context, userID string) ([]job.Job, error) {
	var out []job.Job
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		favs, err := s.repo.ListByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		all, err := s.jobs.List(ctx, tx)
		if err != nil {
			return err
		}
		byID := make(map[string]job.Job, len(all))
		for _, j := range all {
			byID[j.ID] = j
		}
		out = make([]job.Job, 0, len(favs))
		for _, f := range favs {
			if j, ok := byID[f.JobID]; ok {
				out = append(out, j)
			}
		}
		return nil
	})
	if err != nil {
		s.logf("[Favorite] jobs failed user_id=%s err=%v", userID, err)
		return nil, ErrInternal
	}
	return out, nil
}

// Add saves jobID for userID. Adding an existing favorite returns it unchanged.
func (s *Service) Add(ctx context.Context, userID, jobID string) (favorite.Favorite, error) {
	var out favorite.Favorite
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		existing, ok, err := s.repo.Find(ctx, tx, userID, jobID)
		if err != nil {
			return err
		}
		if ok {
			out = existing
			return nil
		}
		if _, err := s.jobs.GetByID(ctx, tx, jobID); err != nil {
			return err
		}
		out = favorite.Favorite{
			ID:        uuid.NewString(),
			UserID:    userID,
			JobID:     jobID,
			CreatedAt: s.now().UTC(),
		}
		return s.repo.Create(ctx, tx, out)
	})
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return favorite.Favorite{}, ErrJobNotFound
		}
		s.logf("[Favorite] add failed user_id=%s job_id=%s err=%v", userID, jobID, err)
		return favorite.Favorite{}, ErrInternal
	}
	return out, nil
}

// Remove drops the user's favorite for jobID. Missing favorites are a no-op.
func (s *Service) Remove(ctx context.Context, userID, jobID string) error {
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		_, err := s.repo.DeleteWhere(ctx, tx, func(f favorite.Favorite) bool {
			return f.UserID == userID && f.JobID == jobID
		})
		return err
	})
	if err != nil {
		s.logf("[Favorite] remove failed user_id=%s job_id=%s err=%v", userID, jobID, err)
		return ErrInternal
	}
	return nil
}

func (s *Service) IsFavorite(ctx context.Context, userID, jobID string) (bool, error) {
	var ok bool
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		_, ok, err = s.repo.Find(ctx, tx, userID, jobID)
		return err
	})
	if err != nil {
		return false, ErrInternal
	}
	return ok, nil
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
