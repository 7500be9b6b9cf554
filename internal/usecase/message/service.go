package message

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"bluujobs/internal/domain/message"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/pkg/textutil"
	"bluujobs/internal/store"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInternal          = errors.New("internal error")
)

const maxContentLength = 2000

type SendInput struct {
	ReceiverID string
	Content    string
}

// Partner summarizes one conversation from a user's point of view.
type Partner struct {
	UserID      string          `json:"userId"`
	Name        string          `json:"name"`
	LastMessage message.Message `json:"lastMessage"`
	Unread      int             `json:"unread"`
}

type Service struct {
	store  *store.Store
	repo   message.Repository
	users  user.Repository
	logger *log.Logger
	now    func() time.Time
}

func NewService(st *store.Store, repo message.Repository, users user.Repository, logger *log.Logger) *Service {
	return &Service{store: st, repo: repo, users: users, logger: logger, now: time.Now}
}

// Inbox returns every message sent or received by userID, newest first.
func (s *Service) Inbox(ctx context.Context, userID string) ([]message.Message, error) {
	out, err := s.filter(ctx, func(m message.Message) bool { return m.Involves(userID) })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// Conversation returns the messages between two users, oldest first.
func (s *Service) Conversation(ctx context.Context, userID, otherID string) ([]message.Message, error) {
	out, err := s.filter(ctx, func(m message.Message) bool { return m.Between(userID, otherID) })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Partners lists the people userID has exchanged messages with, most recent
// conversation first.
func (s *Service) Partners(ctx context.Context, userID string) ([]Partner, error) {
	var out []Partner
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		all, err := s.repo.List(ctx, tx)
		if err != nil {
			return err
		}
		users, err := s.users.List(ctx, tx)
		if err != nil {
			return err
		}
		names := make(map[string]string, len(users))
		for _, u := range users {
			names[u.ID] = u.Name
		}

		byPartner := map[string]*Partner{}
		order := []string{}
		for _, m := range all {
			if !m.Involves(userID) {
				continue
			}
			other := m.Counterpart(userID)
			p, ok := byPartner[other]
			if !ok {
				p = &Partner{UserID: other, Name: names[other]}
				byPartner[other] = p
				order = append(order, other)
			}
			if p.LastMessage.ID == "" || m.Timestamp.After(p.LastMessage.Timestamp) {
				p.LastMessage = m
			}
			if m.ReceiverID == userID && !m.Read {
				p.Unread++
			}
		}

		out = make([]Partner, 0, len(order))
		for _, id := range order {
			out = append(out, *byPartner[id])
		}
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LastMessage.Timestamp.After(out[j].LastMessage.Timestamp)
		})
		return nil
	})
	if err != nil {
		s.logf("[Message] partners failed user_id=%s err=%v", userID, err)
		return nil, ErrInternal
	}
	return out, nil
}

func (s *Service) Send(ctx context.Context, actor user.Actor, in SendInput) (message.Message, error) {
	content := textutil.Truncate(textutil.PlainText(in.Content), maxContentLength)
	receiverID := strings.TrimSpace(in.ReceiverID)
	if content == "" || receiverID == "" || receiverID == actor.ID {
		return message.Message{}, ErrInvalidInput
	}

	var sent message.Message
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		sender, err := s.users.GetByID(ctx, tx, actor.ID)
		if err != nil {
			return ErrForbidden
		}
		if _, err := s.users.GetByID(ctx, tx, receiverID); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return ErrRecipientNotFound
			}
			return err
		}
		sent = message.Message{
			ID:         uuid.NewString(),
			SenderID:   sender.ID,
			ReceiverID: receiverID,
			SenderName: sender.Name,
			Content:    content,
			Timestamp:  s.now().UTC(),
		}
		return s.repo.Create(ctx, tx, sent)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden), errors.Is(err, ErrRecipientNotFound):
			return message.Message{}, err
		}
		s.logf("[Message] send failed sender_id=%s err=%v", actor.ID, err)
		return message.Message{}, ErrInternal
	}
	return sent, nil
}

// MarkRead marks a message read for its receiver. Unknown ids are a no-op.
func (s *Service) MarkRead(ctx context.Context, actor user.Actor, id string) error {
	err := s.store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		_, err := s.repo.Update(ctx, tx, id, func(m *message.Message) error {
			if !actor.Can(m.ReceiverID) {
				return ErrForbidden
			}
			m.Read = true
			return nil
		})
		if errors.Is(err, message.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return ErrForbidden
		}
		s.logf("[Message] mark read failed id=%s err=%v", id, err)
		return ErrInternal
	}
	return nil
}

func (s *Service) filter(ctx context.Context, keep func(message.Message) bool) ([]message.Message, error) {
	out := make([]message.Message, 0)
	err := s.store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		all, err := s.repo.List(ctx, tx)
		if err != nil {
			return err
		}
		for _, m := range all {
			if keep(m) {
				out = append(out, m)
			}
		}
		return nil
	})
	if err != nil {
		s.logf("[Message] list failed err=%v", err)
		return nil, ErrInternal
	}
	return out, nil
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
