package seeder

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bluujobs/internal/store"
)

var seedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestLoadDataset(t *testing.T) {
	ds, err := LoadDataset(seedNow, bcrypt.MinCost)
	require.NoError(t, err)

	counts := map[string]int{
		store.CollectionUsers:         16,
		store.CollectionJobs:          10,
		store.CollectionApplications:  4,
		store.CollectionNotifications: 3,
		store.CollectionFavorites:     2,
		store.CollectionMessages:      2,
		store.CollectionReviews:       3,
	}
	for name, want := range counts {
		var records []map[string]any
		require.NoError(t, json.Unmarshal(ds[name], &records), name)
		assert.Len(t, records, want, name)
	}

	var users []map[string]any
	require.NoError(t, json.Unmarshal(ds[store.CollectionUsers], &users))
	admin := users[0]
	assert.Equal(t, "admin@bluujobs.com", admin["email"])
	assert.NotContains(t, admin, "password")
	hash, _ := admin["passwordHash"].(string)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("admin123")))

	created, err := time.Parse(time.RFC3339Nano, users[1]["createdAt"].(string))
	require.NoError(t, err)
	assert.Equal(t, seedNow.Add(-180*24*time.Hour), created)

	var jobs []map[string]any
	require.NoError(t, json.Unmarshal(ds[store.CollectionJobs], &jobs))
	expires, err := time.Parse(time.RFC3339Nano, jobs[0]["expiresAt"].(string))
	require.NoError(t, err)
	assert.Equal(t, seedNow.Add(48*time.Hour), expires)
	assert.Equal(t, []any{}, jobs[3]["applicants"])
}

func TestParseDatasetRejectsBadOffset(t *testing.T) {
	_, err := parseDataset([]byte("jobs:\n  - id: \"1\"\n    createdAt: !ago soon\n"), seedNow, bcrypt.MinCost)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseOffset(t *testing.T) {
	cases := map[string]time.Duration{
		"0s":  0,
		"20h": 20 * time.Hour,
		"3d":  72 * time.Hour,
		"90m": 90 * time.Minute,
	}
	for in, want := range cases {
		got, err := parseOffset(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseOffset("xd")
	assert.Error(t, err)
}

func TestRunnerIsIdempotentPerKey(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	keys := store.NewKeys("")

	seeders, err := Defaults(keys, seedNow, bcrypt.MinCost)
	require.NoError(t, err)
	r := Runner{Seeders: seeders}

	n, err := r.Run(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, len(store.Collections), n)

	before := snapshot(t, kv, keys)

	n, err = r.Run(ctx, kv)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, before, snapshot(t, kv, keys))

	jobsKey := keys.Collection(store.CollectionJobs)
	require.NoError(t, kv.Commit(ctx, []store.Write{{Key: jobsKey, Kind: store.WriteDelete, Expected: store.AnyVersion}}))
	require.NoError(t, kv.Commit(ctx, []store.Write{{Key: keys.Collection(store.CollectionFavorites), Kind: store.WritePut, Value: []byte("[]"), Expected: store.AnyVersion}}))

	n, err = r.Run(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	after := snapshot(t, kv, keys)
	assert.Equal(t, before[jobsKey], after[jobsKey])
	assert.Equal(t, "[]", after[keys.Collection(store.CollectionFavorites)])
}

func TestPasswordsHashedOnlyWhenUsersAbsent(t *testing.T) {
	calls := 0
	orig := generateHash
	generateHash = func(pw []byte, cost int) ([]byte, error) {
		calls++
		return orig(pw, cost)
	}
	t.Cleanup(func() { generateHash = orig })

	ctx := context.Background()
	kv := store.NewMemoryKV()
	keys := store.NewKeys("")
	require.NoError(t, kv.Commit(ctx, []store.Write{{
		Key: keys.Collection(store.CollectionUsers), Kind: store.WritePut, Value: []byte("[]"), Expected: store.AnyVersion,
	}}))

	seeders, err := Defaults(keys, seedNow, bcrypt.MinCost)
	require.NoError(t, err)
	_, err = Runner{Seeders: seeders}.Run(ctx, kv)
	require.NoError(t, err)
	assert.Zero(t, calls)

	require.NoError(t, kv.Commit(ctx, []store.Write{{
		Key: keys.Collection(store.CollectionUsers), Kind: store.WriteDelete, Expected: store.AnyVersion,
	}}))
	n, err := Runner{Seeders: seeders}.Run(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 16, calls)

	e, err := kv.Get(ctx, keys.Collection(store.CollectionUsers))
	require.NoError(t, err)
	assert.NotContains(t, string(e.Value), `"password"`)
	assert.Contains(t, string(e.Value), `"passwordHash"`)
}

func TestRunnerNilKV(t *testing.T) {
	_, err := Runner{}.Run(context.Background(), nil)
	assert.Error(t, err)
}

func snapshot(t *testing.T, kv store.KV, keys store.Keys) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, name := range store.Collections {
		e, err := kv.Get(context.Background(), keys.Collection(name))
		require.NoError(t, err)
		out[keys.Collection(name)] = string(e.Value)
	}
	return out
}
