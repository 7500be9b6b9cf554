package review

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"bluujobs/internal/domain/job"
	"bluujobs/internal/domain/review"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/textutil"
	"bluujobs/internal/session"
	"bluujobs/internal/store"
	"bluujobs/internal/usecase/integrity"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrSelfReview   = errors.New("cannot review yourself")
	ErrUserNotFound = errors.New("user not found")
	ErrJobNotFound  = errors.New("job not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal error")
)

const maxCommentLength = 1000

type CreateInput struct {
	ToUserID string
	Rating   int
	Comment  string
	JobID    string
}

type Service struct {
	store    *store.Store
	repos    integrity.Repos
	sessions *session.Holder
	logger   *log.Logger
	now      func() time.Time
}

func NewService(st *store.Store, repos integrity.Repos, sessions *session.Holder, logger *log.Logger) *Service {
	return &Service{store: st, repos: repos, sessions: sessions, logger: logger, now: time.Now}
}

// ForUser lists reviews addressed to userID, newest first.
func (s *Service) ForUser(ctx context.Context, userID string) ([]review.Review, error) {
	var out []review.Review
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		var err error
		out, err = s.repos.Reviews.ListByRecipient(ctx, tx, userID)
		return err
	})
	if err != nil {
		s.logf("[Review] list failed user_id=%s err=%v", userID, err)
		return nil, ErrInternal
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Add stores a review and, in the same commit, recomputes the recipient's
// rating and count and refreshes any session holding the recipient.
func (s *Service) Add(ctx context.Context, actor user.Actor, in CreateInput) (review.Review, error) {
	to := strings.TrimSpace(in.ToUserID)
	if to == "" || in.Rating < review.MinRating || in.Rating > review.MaxRating {
		return review.Review{}, ErrInvalidInput
	}
	if to == actor.ID {
		return review.Review{}, ErrSelfReview
	}

	var created review.Review
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		from, err := s.repos.Users.GetByID(ctx, tx, actor.ID)
		if err != nil {
			return ErrForbidden
		}
		if _, err := s.repos.Users.GetByID(ctx, tx, to); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		jobID := strings.TrimSpace(in.JobID)
		if jobID != "" {
			if _, err := s.repos.Jobs.GetByID(ctx, tx, jobID); err != nil {
				if errors.Is(err, job.ErrNotFound) {
					return ErrJobNotFound
				}
				return err
			}
		}

		created = review.Review{
			ID:           uuid.NewString(),
			FromUserID:   from.ID,
			ToUserID:     to,
			FromUserName: from.Name,
			Rating:       in.Rating,
			Comment:      textutil.Truncate(textutil.PlainText(in.Comment), maxCommentLength),
			JobID:        jobID,
			CreatedAt:    s.now().UTC(),
		}
		if err := s.repos.Reviews.Create(ctx, tx, created); err != nil {
			return err
		}
		changed, err := integrity.SyncRatings(ctx, tx, s.repos, to)
		if err != nil {
			return err
		}
		for _, u := range changed {
			if _, err := s.sessions.Refresh(ctx, tx, u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		for _, known := range []error{ErrForbidden, ErrUserNotFound, ErrJobNotFound} {
			if errors.Is(err, known) {
				return review.Review{}, known
			}
		}
		s.logf("[Review] add failed to=%s err=%v", to, err)
		return review.Review{}, ErrInternal
	}
	return created, nil
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
