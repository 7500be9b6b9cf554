package user

import (
	"context"
	"errors"
	"log"
	"strings"

	"bluujobs/internal/domain/application"
	"bluujobs/internal/domain/favorite"
	"bluujobs/internal/domain/job"
	"bluujobs/internal/domain/notification"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/textutil"
	"bluujobs/internal/session"
	"bluujobs/internal/store"
	"bluujobs/internal/usecase/integrity"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("user not found")
	ErrForbidden              = errors.New("forbidden")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInternal               = errors.New("internal error")
)

const maxBioLength = 1000

type Service struct {
	store         *store.Store
	repos         integrity.Repos
	notifications notification.Repository
	sessions      *session.Holder
	logger        *log.Logger
}

func NewService(st *store.Store, repos integrity.Repos, notifications notification.Repository, sessions *session.Holder, logger *log.Logger) *Service {
	return &Service{store: st, repos: repos, notifications: notifications, sessions: sessions, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]user.User, error) {
	var users []user.User
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		users, err = s.repos.Users.List(ctx, tx)
		return err
	})
	if err != nil {
		s.logf("[User] list failed err=%v", err)
		return nil, ErrInternal
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	var u user.User
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		u, err = s.repos.Users.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return user.User{}, mapError(err)
	}
	return u.Sanitized(), nil
}

func (s *Service) PublicProfile(ctx context.Context, id string) (user.PublicProfile, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return user.PublicProfile{}, err
	}
	return u.Public(), nil
}

// Update merges patch into the user, recomputes profile completeness and
// refreshes every session holding the user, all in one commit.
func (s *Service) Update(ctx context.Context, actor user.Actor, id string, patch user.Patch) (user.User, error) {
	if !actor.Can(id) {
		return user.User{}, ErrForbidden
	}
	if patch.Empty() {
		return user.User{}, ErrInvalidInput
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return user.User{}, ErrInvalidInput
	}
	if patch.Email != nil && !strings.Contains(*patch.Email, "@") {
		return user.User{}, ErrInvalidInput
	}
	if patch.Bio != nil {
		bio := textutil.Truncate(textutil.PlainText(*patch.Bio), maxBioLength)
		patch.Bio = &bio
	}

	var updated user.User
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		updated, err = s.repos.Users.Update(ctx, tx, id, func(u *user.User) error {
			patch.Apply(u)
			complete := user.Completeness(*u)
			u.ProfileComplete = &complete
			return nil
		})
		if err != nil {
			return err
		}
		_, err = s.sessions.Refresh(ctx, tx, updated)
		return err
	})
	if err != nil {
		return user.User{}, mapError(err)
	}
	return updated.Sanitized(), nil
}

// Delete removes a user with everything hanging off them: their jobs (with
// those jobs' applications and favorites), their own applications,
// favorites, notifications and sessions. Reviews and messages stay as
// history. A missing id is a no-op.
func (s *Service) Delete(ctx context.Context, actor user.Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		removed, err := s.repos.Users.Delete(ctx, tx, id)
		if err != nil || !removed {
			return err
		}

		if _, err := integrity.DeleteJobs(ctx, tx, s.repos, func(j job.Job) bool { return j.EmployerID == id }); err != nil {
			return err
		}

		affected := map[string]struct{}{}
		if _, err := s.repos.Applications.DeleteWhere(ctx, tx, func(a application.Application) bool {
			if a.WorkerID != id {
				return false
			}
			affected[a.JobID] = struct{}{}
			return true
		}); err != nil {
			return err
		}
		if len(affected) > 0 {
			jobIDs := make([]string, 0, len(affected))
			for jid := range affected {
				jobIDs = append(jobIDs, jid)
			}
			if _, err := integrity.SyncApplicants(ctx, tx, s.repos, jobIDs...); err != nil {
				return err
			}
		}

		if _, err := s.repos.Favorites.DeleteWhere(ctx, tx, func(f favorite.Favorite) bool { return f.UserID == id }); err != nil {
			return err
		}
		if _, err := s.notifications.DeleteWhere(ctx, tx, func(n notification.Notification) bool { return n.UserID == id }); err != nil {
			return err
		}
		_, err = s.sessions.DropUser(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logf("[User] delete failed user_id=%s err=%v", id, err)
		return ErrInternal
	}
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, user.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, user.ErrEmailTaken):
		return ErrEmailAlreadyRegistered
	default:
		return ErrInternal
	}
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
