package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluujobs/internal/domain/user"
	"bluujobs/internal/store"
	"bluujobs/internal/testkit"
)

func newService(t *testing.T) (*Service, *testkit.Env) {
	t.Helper()
	env := testkit.Seeded(t)
	return NewService(env.Store, env.Integrity(), env.Sessions, nil), env
}

func actor(id string, typ user.Type) user.Actor { return user.Actor{ID: id, Type: typ} }

func TestAddRecomputesRating(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()

	require.NoError(t, env.Store.Update(ctx, func(ctx context.Context, tx *store.Txn) error {
		u, err := env.Repos.Users.GetByID(ctx, tx, "16")
		if err != nil {
			return err
		}
		return env.Sessions.Set(ctx, tx, "ganesh", u)
	}))

	for i, r := range []struct {
		from   string
		rating int
	}{{"8", 5}, {"9", 4}, {"10", 3}} {
		created, err := svc.Add(ctx, actor(r.from, user.TypeEmployer), CreateInput{ToUserID: "16", Rating: r.rating, Comment: "ok"})
		require.NoError(t, err, i)
		assert.NotEmpty(t, created.FromUserName)
	}

	require.NoError(t, env.Store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		u, err := env.Repos.Users.GetByID(ctx, tx, "16")
		require.NoError(t, err)
		require.NotNil(t, u.Rating)
		require.NotNil(t, u.TotalRatings)
		assert.InDelta(t, 4.0, *u.Rating, 1e-9)
		assert.Equal(t, 3, *u.TotalRatings)

		held, ok, err := env.Sessions.Get(ctx, tx, "ganesh")
		require.NoError(t, err)
		require.True(t, ok)
		require.NotNil(t, held.Rating)
		assert.InDelta(t, 4.0, *held.Rating, 1e-9)
		return nil
	}))

	got, err := svc.ForUser(ctx, "16")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestAddRejections(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	neha := actor("8", user.TypeEmployer)

	_, err := svc.Add(ctx, neha, CreateInput{ToUserID: "2", Rating: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Add(ctx, neha, CreateInput{ToUserID: "2", Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Add(ctx, neha, CreateInput{ToUserID: "8", Rating: 5})
	assert.ErrorIs(t, err, ErrSelfReview)
	_, err = svc.Add(ctx, neha, CreateInput{ToUserID: "404", Rating: 5})
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.Add(ctx, neha, CreateInput{ToUserID: "2", Rating: 5, JobID: "404"})
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = svc.Add(ctx, actor("ghost", user.TypeWorker), CreateInput{ToUserID: "2", Rating: 5})
	assert.ErrorIs(t, err, ErrForbidden)
}
