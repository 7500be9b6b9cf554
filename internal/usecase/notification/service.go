package notification

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"bluujobs/internal/domain/notification"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/textutil"
	"bluujobs/internal/store"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal error")
)

type CreateInput struct {
	UserID  string
	Title   string
	Message string
	Type    string
}

type Service struct {
	store  *store.Store
	repo   notification.Repository
	users  user.Repository
	logger *log.Logger
	now    func() time.Time
}

func NewService(st *store.Store, repo notification.Repository, users user.Repository, logger *log.Logger) *Service {
	return &Service{store: st, repo: repo, users: users, logger: logger, now: time.Now}
}

// ForUser lists a user's notifications, newest first.
func (s *Service) ForUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	var out []notification.Notification
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		out, err = s.repo.ListByUser(ctx, tx, userID)
		return err
	})
	if err != nil {
		s.logf("[Notification] list failed user_id=%s err=%v", userID, err)
		return nil, ErrInternal
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	all, err := s.ForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, x := range all {
		if !x.Read {
			n++
		}
	}
	return n, nil
}

// Add stores a notification for an existing user. Only admins may notify
// someone other than themselves.
func (s *Service) Add(ctx context.Context, actor user.Actor, in CreateInput) (notification.Notification, error) {
	title := strings.TrimSpace(in.Title)
	msg := textutil.PlainText(in.Message)
	typ, ok := notification.ParseType(in.Type)
	if in.Type == "" {
		typ, ok = notification.TypeInfo, true
	}
	if title == "" || msg == "" || !ok || strings.TrimSpace(in.UserID) == "" {
		return notification.Notification{}, ErrInvalidInput
	}
	if !actor.Can(in.UserID) {
		return notification.Notification{}, ErrForbidden
	}

	n := notification.New(in.UserID, title, msg, typ, s.now())
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		if _, err := s.users.GetByID(ctx, tx, in.UserID); err != nil {
			return err
		}
		return s.repo.Create(ctx, tx, n)
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return notification.Notification{}, ErrInvalidInput
		}
		s.logf("[Notification] add failed user_id=%s err=%v", in.UserID, err)
		return notification.Notification{}, ErrInternal
	}
	return n, nil
}

// MarkRead marks one of the actor's notifications read. Unknown ids are a
// no-op.
func (s *Service) MarkRead(ctx context.Context, actor user.Actor, id string) error {
	return s.mark(ctx, func(n notification.Notification) bool {
		return n.ID == id && actor.Can(n.UserID)
	})
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	var changed int
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		changed, err = s.repo.Mark(ctx, tx, func(n notification.Notification) bool { return n.UserID == userID })
		return err
	})
	if err != nil {
		s.logf("[Notification] mark all failed user_id=%s err=%v", userID, err)
		return 0, ErrInternal
	}
	return changed, nil
}

func (s *Service) mark(ctx context.Context, match func(notification.Notification) bool) error {
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		_, err := s.repo.Mark(ctx, tx, match)
		return err
	})
	if err != nil {
		s.logf("[Notification] mark failed err=%v", err)
		return ErrInternal
	}
	return nil
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
