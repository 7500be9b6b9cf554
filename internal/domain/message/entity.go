package message

import (
	"context"
	"errors"
	"time"

	"bluujobs/internal/store"
)

var ErrNotFound = errors.New("message not found")

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// Involves reports whether userID sent or received m.
func (m Message) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Between reports whether m was exchanged by a and b in either direction.
func (m Message) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// Counterpart returns the other participant from userID's point of view.
func (m Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

type Repository interface {
	List(ctx context.Context, tx *store.Txn) ([]Message, error)
	Create(ctx context.Context, tx *store.Txn, m Message) error
	Update(ctx context.Context, tx *store.Txn, id string, fn func(*Message) error) (Message, error)
	DeleteWhere(ctx context.Context, tx *store.Txn, match func(Message) bool) (int, error)
}
