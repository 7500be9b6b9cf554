package repository

import (
	"context"

	"bluujobs/internal/domain/notification"
	"bluujobs/internal/store"
)

type KVNotificationRepository struct {
	records[notification.Notification]
}

func NewKVNotificationRepository(keys store.Keys) *KVNotificationRepository {
	return &KVNotificationRepository{newRecords(keys, store.CollectionNotifications, func(n notification.Notification) string { return n.ID })}
}

func (r *KVNotificationRepository) ListByUser(ctx context.Context, tx *store.Txn, userID string) ([]notification.Notification, error) {
	return r.filter(ctx, tx, func(n notification.Notification) bool { return n.UserID == userID })
}

func (r *KVNotificationRepository) Create(ctx context.Context, tx *store.Txn, n notification.Notification) error {
	return r.insert(ctx, tx, n)
}

func (r *KVNotificationRepository) Mark(ctx context.Context, tx *store.Txn, match func(notification.Notification) bool) (int, error) {
	return r.updateWhere(ctx, tx, match, func(n *notification.Notification) bool {
		if n.Read {
			return false
		}
		n.Read = true
		return true
	})
}

func (r *KVNotificationRepository) DeleteWhere(ctx context.Context, tx *store.Txn, match func(notification.Notification) bool) (int, error) {
	return r.deleteWhere(ctx, tx, match)
}

var _ notification.Repository = (*KVNotificationRepository)(nil)
