package job

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"bluujobs/internal/domain/job"
	"bluujobs/internal/domain/notification"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/textutil"
	"bluujobs/internal/search"
	"bluujobs/internal/store"
	"bluujobs/internal/usecase/integrity"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("job not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal error")
)

const (
	defaultCacheTTL      = 2 * time.Minute
	maxDescriptionLength = 4000
)

type CreateInput struct {
	Title              string
	Description        string
	Location           string
	Pincode            string
	Area               string
	Wage               int
	Duration           string
	Category           string
	JobType            string
	ExperienceRequired string
	ExpiresAt          *time.Time
	// EmployerID lets an admin post on behalf of an employer.
	EmployerID string
}

type Service struct {
	store         *store.Store
	keys          store.Keys
	repos         integrity.Repos
	notifications notification.Repository
	cache         SearchCache
	cacheTTL      time.Duration
	logger        *log.Logger
	now           func() time.Time
}

type Option func(*Service)

func WithSearchCache(c SearchCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(st *store.Store, keys store.Keys, repos integrity.Repos, notifications notification.Repository, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		store:         st,
		keys:          keys,
		repos:         repos,
		notifications: notifications,
		cacheTTL:      defaultCacheTTL,
		logger:        logger,
		now:           time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]job.Job, error) {
	var jobs []job.Job
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		jobs, err = s.repos.Jobs.List(ctx, tx)
		return err
	})
	if err != nil {
		s.logf("[Job] list failed err=%v", err)
		return nil, ErrInternal
	}
	return jobs, nil
}

func (s *Service) Get(ctx context.Context, id string) (job.Job, error) {
	var j job.Job
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		j, err = s.repos.Jobs.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return job.Job{}, mapError(err)
	}
	return j, nil
}

func (s *Service) ListByEmployer(ctx context.Context, employerID string) ([]job.Job, error) {
	jobs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]job.Job, 0)
	for _, j := range jobs {
		if j.EmployerID == employerID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, actor user.Actor, in CreateInput) (job.Job, error) {
	employerID := actor.ID
	switch actor.Type {
	case user.TypeEmployer:
	case user.TypeAdmin:
		if strings.TrimSpace(in.EmployerID) != "" {
			employerID = strings.TrimSpace(in.EmployerID)
		}
	default:
		return job.Job{}, ErrForbidden
	}

	j := job.Job{
		ID:                 uuid.NewString(),
		Title:              strings.TrimSpace(in.Title),
		Description:        textutil.Truncate(textutil.PlainText(in.Description), maxDescriptionLength),
		Location:           strings.TrimSpace(in.Location),
		Pincode:            strings.TrimSpace(in.Pincode),
		Area:               strings.TrimSpace(in.Area),
		Wage:               in.Wage,
		Duration:           strings.TrimSpace(in.Duration),
		Category:           strings.TrimSpace(in.Category),
		Status:             job.StatusOpen,
		Applicants:         []string{},
		CreatedAt:          s.now().UTC(),
		ExperienceRequired: strings.TrimSpace(in.ExperienceRequired),
	}
	if in.ExpiresAt != nil {
		t := in.ExpiresAt.UTC()
		j.ExpiresAt = &t
	}
	if strings.TrimSpace(in.JobType) != "" {
		typ, ok := job.ParseType(in.JobType)
		if !ok {
			return job.Job{}, ErrInvalidInput
		}
		j.JobType = typ
	}
	if err := validate(j); err != nil {
		return job.Job{}, err
	}

	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		employer, err := s.repos.Users.GetByID(ctx, tx, employerID)
		if err != nil {
			return err
		}
		if employer.UserType != user.TypeEmployer && employer.UserType != user.TypeAdmin {
			return ErrForbidden
		}
		j.EmployerID = employer.ID
		j.EmployerName = employer.Name
		return s.repos.Jobs.Create(ctx, tx, j)
	})
	if err != nil {
		return job.Job{}, mapError(err)
	}
	return j, nil
}

// Update merges patch into a job owned by actor. The applicant list is
// derived and cannot be patched.
func (s *Service) Update(ctx context.Context, actor user.Actor, id string, patch job.Patch) (job.Job, error) {
	if patch.Status != nil {
		if _, ok := job.ParseStatus(string(*patch.Status)); !ok {
			return job.Job{}, ErrInvalidInput
		}
	}
	if patch.JobType != nil && *patch.JobType != "" {
		if _, ok := job.ParseType(string(*patch.JobType)); !ok {
			return job.Job{}, ErrInvalidInput
		}
	}
	if patch.Description != nil {
		d := textutil.Truncate(textutil.PlainText(*patch.Description), maxDescriptionLength)
		patch.Description = &d
	}

	var updated job.Job
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		updated, err = s.repos.Jobs.Update(ctx, tx, id, func(j *job.Job) error {
			if !actor.Can(j.EmployerID) {
				return ErrForbidden
			}
			patch.Apply(j)
			return validate(*j)
		})
		return err
	})
	if err != nil {
		return job.Job{}, mapError(err)
	}
	return updated, nil
}

func (s *Service) SetStatus(ctx context.Context, actor user.Actor, id string, status job.Status) (job.Job, error) {
	return s.Update(ctx, actor, id, job.Patch{Status: &status})
}

// Delete removes a job with its applications and favorites in one commit.
// A missing id is a no-op.
func (s *Service) Delete(ctx context.Context, actor user.Actor, id string) error {
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		j, err := s.repos.Jobs.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, job.ErrNotFound) {
				return nil
			}
			return err
		}
		if !actor.Can(j.EmployerID) {
			return ErrForbidden
		}
		_, err = integrity.DeleteJobs(ctx, tx, s.repos, func(x job.Job) bool { return x.ID == id })
		return err
	})
	if err != nil {
		return mapError(err)
	}
	return nil
}

// Search filters and sorts jobs. Results are cached per content of the jobs
// collection when a cache is configured.
func (s *Service) Search(ctx context.Context, opts search.Options) ([]job.Job, error) {
	var jobs []job.Job
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var cacheKey string
		if s.cache != nil {
			raw, _, err := tx.Get(ctx, s.keys.Collection(store.CollectionJobs))
			if err != nil {
				return err
			}
			cacheKey = SearchCacheKey(s.keys.Prefix, raw, opts)
			var cached []job.Job
			if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
				jobs = cached
				return nil
			}
		}
		var err error
		jobs, err = s.repos.Jobs.List(ctx, tx)
		if err != nil {
			return err
		}
		jobs = search.Apply(jobs, opts)
		if s.cache != nil {
			if err := s.cache.SetJSON(ctx, cacheKey, jobs, s.cacheTTL); err != nil {
				s.logf("[Job] search cache set failed key=%s err=%v", cacheKey, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logf("[Job] search failed err=%v", err)
		return nil, ErrInternal
	}
	return jobs, nil
}

// CloseExpired closes every open job whose expiry is at or before now and
// tells each employer. It returns how many jobs were closed.
func (s *Service) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	closed := 0
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		closed = 0
		jobs, err := s.repos.Jobs.List(ctx, tx)
		if err != nil {
			return err
		}
		var notices []notification.Notification
		for i := range jobs {
			if !jobs[i].IsOpen() || !jobs[i].Expired(now) {
				continue
			}
			jobs[i].Status = job.StatusClosed
			closed++
			notices = append(notices, notification.New(
				jobs[i].EmployerID,
				"Job Closed",
				fmt.Sprintf("Your job %q has expired and was closed.", jobs[i].Title),
				notification.TypeInfo,
				now,
			))
		}
		if closed == 0 {
			return nil
		}
		if err := s.repos.Jobs.SaveAll(ctx, tx, jobs); err != nil {
			return err
		}
		for _, n := range notices {
			if err := s.notifications.Create(ctx, tx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logf("[Job] close expired failed err=%v", err)
		return 0, ErrInternal
	}
	return closed, nil
}

func validate(j job.Job) error {
	if j.Title == "" || j.Location == "" || j.Category == "" || j.Duration == "" {
		return ErrInvalidInput
	}
	if j.Wage <= 0 {
		return ErrInvalidInput
	}
	if j.Status != job.StatusOpen && j.Status != job.StatusClosed {
		return ErrInvalidInput
	}
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrForbidden):
		return ErrForbidden
	case errors.Is(err, ErrInvalidInput):
		return ErrInvalidInput
	case errors.Is(err, job.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, user.ErrNotFound):
		return ErrInvalidInput
	default:
		return ErrInternal
	}
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
