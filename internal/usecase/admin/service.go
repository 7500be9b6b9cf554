// Package admin holds maintenance operations over the whole dataset.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"bluujobs/internal/domain/application"
	"bluujobs/internal/domain/favorite"
	"bluujobs/internal/domain/job"
	"bluujobs/internal/domain/message"
	"bluujobs/internal/domain/notification"
	"bluujobs/internal/domain/review"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/session"
	"bluujobs/internal/store"
	"bluujobs/internal/usecase/integrity"
)

var (
	ErrForbidden         = errors.New("forbidden")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInternal          = errors.New("internal error")
)

type Stats struct {
	TotalUsers          int            `json:"totalUsers"`
	Workers             int            `json:"workers"`
	Employers           int            `json:"employers"`
	TotalJobs           int            `json:"totalJobs"`
	OpenJobs            int            `json:"openJobs"`
	ClosedJobs          int            `json:"closedJobs"`
	TotalApplications   int            `json:"totalApplications"`
	PendingApplications int            `json:"pendingApplications"`
	JobsByCategory      map[string]int `json:"jobsByCategory"`
}

// Report describes what a reconcile pass repaired.
type Report struct {
	JobsSynced           int `json:"jobsSynced"`
	UsersRated           int `json:"usersRated"`
	SessionsRefreshed    int `json:"sessionsRefreshed"`
	OrphanedApplications int `json:"orphanedApplications"`
	OrphanedFavorites    int `json:"orphanedFavorites"`
}

type Service struct {
	store    *store.Store
	keys     store.Keys
	repos    integrity.Repos
	sessions *session.Holder
	logger   *log.Logger
}

func NewService(st *store.Store, keys store.Keys, repos integrity.Repos, sessions *session.Holder, logger *log.Logger) *Service {
	return &Service{store: st, keys: keys, repos: repos, sessions: sessions, logger: logger}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	st := Stats{JobsByCategory: make(map[string]int, len(job.Categories))}
	for _, c := range job.Categories {
		st.JobsByCategory[c] = 0
	}
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		users, err := s.repos.Users.List(ctx, tx)
		if err != nil {
			return err
		}
		jobs, err := s.repos.Jobs.List(ctx, tx)
		if err != nil {
			return err
		}
		apps, err := s.repos.Applications.List(ctx, tx)
		if err != nil {
			return err
		}

		st.TotalUsers = len(users)
		for _, u := range users {
			switch u.UserType {
			case user.TypeWorker:
				st.Workers++
			case user.TypeEmployer:
				st.Employers++
			}
		}
		st.TotalJobs = len(jobs)
		for _, j := range jobs {
			if j.IsOpen() {
				st.OpenJobs++
			} else {
				st.ClosedJobs++
			}
			if j.Category != "" {
				st.JobsByCategory[j.Category]++
			}
		}
		st.TotalApplications = len(apps)
		for _, a := range apps {
			if a.Status == application.StatusPending {
				st.PendingApplications++
			}
		}
		return nil
	})
	if err != nil {
		s.logf("[Admin] stats failed err=%v", err)
		return Stats{}, ErrInternal
	}
	return st, nil
}

// Reconcile drops applications and favorites that point at missing jobs,
// then recomputes every job's applicants and every reviewed user's rating,
// refreshing the sessions of users whose rating changed. It runs as one commit.
func (s *Service) Reconcile(ctx context.Context, actor user.Actor) (Report, error) {
	if !actor.IsAdmin() {
		return Report{}, ErrForbidden
	}

	var rep Report
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		rep = Report{}
		jobs, err := s.repos.Jobs.List(ctx, tx)
		if err != nil {
			return err
		}
		exists := make(map[string]struct{}, len(jobs))
		for _, j := range jobs {
			exists[j.ID] = struct{}{}
		}
		missing := func(jobID string) bool {
			_, ok := exists[jobID]
			return !ok
		}

		if rep.OrphanedApplications, err = s.repos.Applications.DeleteWhere(ctx, tx, func(a application.Application) bool {
			return missing(a.JobID)
		}); err != nil {
			return err
		}
		if rep.OrphanedFavorites, err = s.repos.Favorites.DeleteWhere(ctx, tx, func(f favorite.Favorite) bool {
			return missing(f.JobID)
		}); err != nil {
			return err
		}
		if rep.JobsSynced, err = integrity.SyncApplicants(ctx, tx, s.repos); err != nil {
			return err
		}
		rated, err := integrity.SyncRatings(ctx, tx, s.repos)
		if err != nil {
			return err
		}
		rep.UsersRated = len(rated)
		for _, u := range rated {
			n, err := s.sessions.Refresh(ctx, tx, u)
			if err != nil {
				return err
			}
			rep.SessionsRefreshed += n
		}
		return nil
	})
	if err != nil {
		s.logf("[Admin] reconcile failed err=%v", err)
		return Report{}, ErrInternal
	}
	s.logf("[Admin] reconcile jobs=%d users=%d sessions=%d orphan_apps=%d orphan_favs=%d",
		rep.JobsSynced, rep.UsersRated, rep.SessionsRefreshed, rep.OrphanedApplications, rep.OrphanedFavorites)
	return rep, nil
}

// Export returns one collection as a JSON array. Users are exported without
// their password hashes. An absent or null collection exports as "[]" and a
// corrupt one fails with store.ErrCorrupt.
func (s *Service) Export(ctx context.Context, name string) (json.RawMessage, error) {
	key := s.keys.Collection(name)
	var load func(ctx context.Context, tx *store.Txn) ([]byte, error)
	switch name {
	case store.CollectionUsers:
		load = func(ctx context.Context, tx *store.Txn) ([]byte, error) {
			c := store.NewCollection[user.User](key)
			users, err := c.Load(ctx, tx)
			if err != nil {
				return nil, err
			}
			for i := range users {
				users[i] = users[i].Sanitized()
			}
			return c.Encode(users)
		}
	case store.CollectionJobs:
		load = exportOf[job.Job](key)
	case store.CollectionApplications:
		load = exportOf[application.Application](key)
	case store.CollectionNotifications:
		load = exportOf[notification.Notification](key)
	case store.CollectionFavorites:
		load = exportOf[favorite.Favorite](key)
	case store.CollectionMessages:
		load = exportOf[message.Message](key)
	case store.CollectionReviews:
		load = exportOf[review.Review](key)
	default:
		return nil, ErrUnknownCollection
	}

	var out []byte
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		out, err = load(ctx, tx)
		return err
	})
	if err != nil {
		s.logf("[Admin] export failed collection=%s err=%v", name, err)
		if errors.Is(err, store.ErrCorrupt) {
			return nil, fmt.Errorf("%w: %w", ErrInternal, err)
		}
		return nil, ErrInternal
	}
	return json.RawMessage(out), nil
}

// exportOf decodes the collection under key as []T and re-encodes it.
func exportOf[T any](key string) func(ctx context.Context, tx *store.Txn) ([]byte, error) {
	return func(ctx context.Context, tx *store.Txn) ([]byte, error) {
		c := store.NewCollection[T](key)
		records, err := c.Load(ctx, tx)
		if err != nil {
			return nil, err
		}
		return c.Encode(records)
	}
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
