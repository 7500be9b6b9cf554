package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"bluujobs/internal/store"
)

var ErrNotFound = errors.New("notification not found")

type Type string

const (
	TypeSuccess Type = "success"
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
)

func ParseType(raw string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeSuccess:
		return TypeSuccess, true
	case TypeInfo:
		return TypeInfo, true
	case TypeWarning:
		return TypeWarning, true
	default:
		return "", false
	}
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// New builds an unread notification with a fresh id.
func New(userID, title, message string, typ Type, at time.Time) Notification {
	return Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: at.UTC(),
	}
}

type Repository interface {
	ListByUser(ctx context.Context, tx *store.Txn, userID string) ([]Notification, error)
	Create(ctx context.Context, tx *store.Txn, n Notification) error
	// Mark sets read on every notification matching fn and returns how many changed.
	Mark(ctx context.Context, tx *store.Txn, match func(Notification) bool) (int, error)
	DeleteWhere(ctx context.Context, tx *store.Txn, match func(Notification) bool) (int, error)
}
