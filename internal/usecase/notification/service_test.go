package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluujobs/internal/domain/notification"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/testkit"
)

func newService(t *testing.T) *Service {
	t.Helper()
	env := testkit.Seeded(t)
	return NewService(env.Store, env.Repos.Notifications, env.Repos.Users, nil)
}

func TestAddAndRead(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	admin := user.Actor{ID: "1", Type: user.TypeAdmin}
	rajesh := user.Actor{ID: "2", Type: user.TypeWorker}

	n, err := svc.Add(ctx, admin, CreateInput{UserID: "2", Title: "Welcome", Message: "Profile verified"})
	require.NoError(t, err)
	assert.Equal(t, notification.TypeInfo, n.Type)

	_, err = svc.Add(ctx, rajesh, CreateInput{UserID: "3", Title: "Hi", Message: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Add(ctx, admin, CreateInput{UserID: "2", Title: "Hi", Message: "x", Type: "urgent"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Add(ctx, admin, CreateInput{UserID: "404", Title: "Hi", Message: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	list, err := svc.ForUser(ctx, "2")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, n.ID, list[0].ID, "newest first")

	count, err := svc.UnreadCount(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkRead(ctx, user.Actor{ID: "3", Type: user.TypeWorker}, n.ID))
	count, _ = svc.UnreadCount(ctx, "2")
	assert.Equal(t, 2, count, "others cannot mark it read")

	require.NoError(t, svc.MarkRead(ctx, rajesh, n.ID))
	count, _ = svc.UnreadCount(ctx, "2")
	assert.Equal(t, 1, count)

	changed, err := svc.MarkAllRead(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	count, _ = svc.UnreadCount(ctx, "2")
	assert.Zero(t, count)
}
