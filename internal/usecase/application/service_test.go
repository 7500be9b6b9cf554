package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluujobs/internal/domain/application"
	"bluujobs/internal/domain/notification"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/store"
	"bluujobs/internal/testkit"
)

var (
	rajesh = user.Actor{ID: "2", Type: user.TypeWorker}
	ramesh = user.Actor{ID: "7", Type: user.TypeWorker}
	neha   = user.Actor{ID: "8", Type: user.TypeEmployer}
	vikram = user.Actor{ID: "9", Type: user.TypeEmployer}
)

func newService(t *testing.T) (*Service, *testkit.Env) {
	t.Helper()
	env := testkit.Seeded(t)
	return NewService(env.Store, env.Integrity(), env.Repos.Notifications, nil), env
}

func applicants(t *testing.T, env *testkit.Env, jobID string) []string {
	t.Helper()
	var out []string
	require.NoError(t, env.Store.View(context.Background(), func(ctx context.Context, tx *store.Txn) error {
		j, err := env.Repos.Jobs.GetByID(ctx, tx, jobID)
		out = j.Applicants
		return err
	}))
	return out
}

func notificationsFor(t *testing.T, env *testkit.Env, userID string) []notification.Notification {
	t.Helper()
	var out []notification.Notification
	require.NoError(t, env.Store.View(context.Background(), func(ctx context.Context, tx *store.Txn) error {
		var err error
		out, err = env.Repos.Notifications.ListByUser(ctx, tx, userID)
		return err
	}))
	return out
}

func TestApplyRecordsApplicantAndNotifies(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()

	app, err := svc.Apply(ctx, ramesh, ApplyInput{JobID: "7"})
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, app.Status)
	assert.Equal(t, "Ramesh Yadav", app.WorkerName)
	assert.Equal(t, []string{"7"}, applicants(t, env, "7"))

	ok, err := svc.HasApplied(ctx, "7", "7")
	require.NoError(t, err)
	assert.True(t, ok)

	worker := notificationsFor(t, env, "7")
	require.Len(t, worker, 1)
	assert.Equal(t, "Application Received", worker[0].Title)
	assert.Equal(t, `Your application for "Construction Labor - Urgent" has been received.`, worker[0].Message)

	employer := notificationsFor(t, env, "8")
	assert.Len(t, employer, 2)

	_, err = svc.Apply(ctx, ramesh, ApplyInput{JobID: "7"})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.Equal(t, []string{"7"}, applicants(t, env, "7"))
}

func TestApplyRejections(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, neha, ApplyInput{JobID: "7"})
	assert.ErrorIs(t, err, ErrNotWorker)

	_, err = svc.Apply(ctx, ramesh, ApplyInput{JobID: "404"})
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = svc.Apply(ctx, ramesh, ApplyInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Apply(ctx, user.Actor{ID: "1", Type: user.TypeAdmin}, ApplyInput{JobID: "7", WorkerID: "8"})
	assert.ErrorIs(t, err, ErrNotWorker)
}

func TestConcurrentAppliesAllLand(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()

	workers := []string{"2", "3", "4", "5", "6", "7", "13", "14", "15", "16"}
	var wg sync.WaitGroup
	errs := make([]error, len(workers))
	for i, id := range workers {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = svc.Apply(ctx, user.Actor{ID: id, Type: user.TypeWorker}, ApplyInput{JobID: "7"})
		}(i, id)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, workers[i])
	}

	got := applicants(t, env, "7")
	assert.ElementsMatch(t, workers, got)

	apps, err := svc.ListByJob(ctx, "7")
	require.NoError(t, err)
	assert.Len(t, apps, len(workers))
}

func TestConcurrentDuplicateApplyLandsOnce(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Apply(ctx, ramesh, ApplyInput{JobID: "4"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyApplied)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, []string{"7"}, applicants(t, env, "4"))
}

func TestUpdateStatus(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, vikram, "1", "accepted")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateStatus(ctx, neha, "1", "hired")
	assert.ErrorIs(t, err, ErrInvalidInput)

	app, err := svc.UpdateStatus(ctx, neha, "1", "rejected")
	require.NoError(t, err)
	assert.Equal(t, application.StatusRejected, app.Status)
	assert.Empty(t, applicants(t, env, "1"))

	notes := notificationsFor(t, env, "2")
	var titles []string
	for _, n := range notes {
		titles = append(titles, n.Title)
	}
	assert.Contains(t, titles, "Application Update")

	_, err = svc.UpdateStatus(ctx, neha, "1", "accepted")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, vikram, "2", "rejected")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, neha, "missing", "accepted")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForEmployer(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	apps, err := svc.ListForEmployer(ctx, neha, "1")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "2", apps[0].WorkerID)

	_, err = svc.ListForEmployer(ctx, vikram, "1")
	assert.ErrorIs(t, err, ErrForbidden)

	mine, err := svc.ListByWorker(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
