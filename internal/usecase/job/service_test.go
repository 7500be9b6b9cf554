package job

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluujobs/internal/domain/job"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/search"
	"bluujobs/internal/store"
	"bluujobs/internal/testkit"
)

var (
	admin  = user.Actor{ID: "1", Type: user.TypeAdmin}
	rajesh = user.Actor{ID: "2", Type: user.TypeWorker}
	neha   = user.Actor{ID: "8", Type: user.TypeEmployer}
	vikram = user.Actor{ID: "9", Type: user.TypeEmployer}
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func (c *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, out)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.data[key] = b
	return nil
}

func newService(t *testing.T, opts ...Option) (*Service, *testkit.Env) {
	t.Helper()
	env := testkit.Seeded(t)
	return NewService(env.Store, env.Keys, env.Integrity(), env.Repos.Notifications, nil, opts...), env
}

func validInput() CreateInput {
	return CreateInput{
		Title:              "Tile Fitter for Bathroom",
		Description:        "<p>Replace <b>broken</b> tiles.</p><script>x()</script>",
		Location:           "Dadar East, Mumbai",
		Pincode:            "400014",
		Wage:               950,
		Duration:           "2 days",
		Category:           "Construction",
		JobType:            "contract",
		ExperienceRequired: "2+ years",
	}
}

func TestSeededListAndCreate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	before, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, before, 10)

	created, err := svc.Create(ctx, neha, validInput())
	require.NoError(t, err)
	assert.Equal(t, "8", created.EmployerID)
	assert.Equal(t, "Neha Desai", created.EmployerName)
	assert.Equal(t, job.StatusOpen, created.Status)
	assert.Equal(t, []string{}, created.Applicants)
	assert.Equal(t, "Replace broken tiles.", created.Description)

	after, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Wage, got.Wage)
	assert.Equal(t, created.JobType, got.JobType)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, rajesh, validInput())
	assert.ErrorIs(t, err, ErrForbidden)

	in := validInput()
	in.Wage = 0
	_, err = svc.Create(ctx, neha, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = validInput()
	in.JobType = "gig"
	_, err = svc.Create(ctx, neha, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = validInput()
	in.EmployerID = "9"
	onBehalf, err := svc.Create(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, "Vikram Malhotra", onBehalf.EmployerName)

	in.EmployerID = "404"
	_, err = svc.Create(ctx, admin, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateOwnerOnly(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	wage := 1100
	_, err := svc.Update(ctx, vikram, "1", job.Patch{Wage: &wage})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, neha, "1", job.Patch{Wage: &wage})
	require.NoError(t, err)
	assert.Equal(t, 1100, updated.Wage)
	assert.Equal(t, []string{"2"}, updated.Applicants)

	closed, err := svc.SetStatus(ctx, neha, "1", job.StatusClosed)
	require.NoError(t, err)
	assert.False(t, closed.IsOpen())

	_, err = svc.SetStatus(ctx, neha, "1", job.Status("paused"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, neha, "404", job.Patch{Wage: &wage})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, vikram, "1"), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, neha, "1"))
	require.NoError(t, svc.Delete(ctx, neha, "1"), "deleting again is a no-op")

	_, err := svc.Get(ctx, "1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.Store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		apps, err := env.Repos.Applications.List(ctx, tx)
		require.NoError(t, err)
		for _, a := range apps {
			assert.NotEqual(t, "1", a.JobID)
		}
		assert.Len(t, apps, 3)

		favs, err := env.Repos.Favorites.ListByUser(ctx, tx, "4")
		require.NoError(t, err)
		assert.Empty(t, favs)
		return nil
	}))
}

func TestSearchUsesCachePerVersion(t *testing.T) {
	cache := &fakeCache{}
	svc, _ := newService(t, WithSearchCache(cache, time.Minute))
	ctx := context.Background()

	opts := search.Options{Query: "electrician", SortBy: search.SortWageHigh}
	first, err := svc.Search(ctx, opts)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "9", first[0].ID)
	assert.Zero(t, cache.hits)

	again, err := svc.Search(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, cache.hits)

	in := validInput()
	in.Title = "Electrician for Shop Lighting"
	in.Category = "Electrical"
	_, err = svc.Create(ctx, neha, in)
	require.NoError(t, err)

	fresh, err := svc.Search(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
	assert.Equal(t, 1, cache.hits)
}

func TestSearchCacheSurvivesVersionReset(t *testing.T) {
	cache := &fakeCache{}
	svc, env := newService(t, WithSearchCache(cache, time.Minute))
	ctx := context.Background()
	key := env.Keys.Collection(store.CollectionJobs)

	opts := search.Options{Category: "Electrical"}
	first, err := svc.Search(ctx, opts)
	require.NoError(t, err)
	require.Len(t, first, 2)
	before, err := env.KV.Get(ctx, key)
	require.NoError(t, err)

	require.NoError(t, env.KV.Commit(ctx, []store.Write{{Key: key, Kind: store.WriteDelete, Expected: store.AnyVersion}}))
	require.NoError(t, store.NewCollection[job.Job](key).Overwrite(ctx, env.KV, first[:1]))
	after, err := env.KV.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, before.Version, after.Version, "rewriting a deleted key restarts its version")

	got, err := svc.Search(ctx, opts)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first[0].ID, got[0].ID)
	assert.Zero(t, cache.hits)
}

func TestCloseExpired(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()

	n, err := svc.CloseExpired(ctx, testkit.Now)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.CloseExpired(ctx, testkit.Now.Add(3*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, n, "jobs 1, 4 and 7 expire within three days")

	jobs, err := svc.List(ctx)
	require.NoError(t, err)
	for _, j := range jobs {
		switch j.ID {
		case "1", "4", "7":
			assert.Equal(t, job.StatusClosed, j.Status, j.ID)
		default:
			assert.Equal(t, job.StatusOpen, j.Status, j.ID)
		}
	}

	require.NoError(t, env.Store.View(ctx, func(ctx context.Context, tx *store.Txn) error {
		notes, err := env.Repos.Notifications.ListByUser(ctx, tx, "8")
		require.NoError(t, err)
		closedNotes := 0
		for _, n := range notes {
			if n.Title == "Job Closed" {
				closedNotes++
			}
		}
		assert.Equal(t, 2, closedNotes)
		return nil
	}))
}

func TestSearchCacheKeyIgnoresCosmeticDifferences(t *testing.T) {
	a := SearchCacheKey("p_", []byte(`[{"id":"1"}]`), search.Options{Query: "  Plumber  ", Category: "all"})
	b := SearchCacheKey("p_", []byte(`[{"id":"1"}]`), search.Options{Query: "plumber", SortBy: "newest"})
	c := SearchCacheKey("p_", []byte(`[{"id":"2"}]`), search.Options{Query: "plumber"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "p_jobs:search:")
}
