package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBypassWithoutRedis(t *testing.T) {
	ctx := context.Background()
	c := NewRedis(ctx, "", 0, nil)
	assert.False(t, c.Available())

	var out []string
	ok, err := c.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, c.SetJSON(ctx, "k", []string{"a"}, 0))

	claimed, err := c.SetIfNotExists(ctx, "lock", "me", time.Second)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestRedisRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c := NewRedis(ctx, url, time.Minute, nil)
	require.True(t, c.Available())
	t.Cleanup(func() { _ = c.Close() })

	key := "t_cache_" + uuid.NewString()
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	require.NoError(t, c.SetJSON(ctx, key, map[string]int{"n": 3}, 0))
	var got map[string]int
	ok, err := c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got["n"])

	lock := key + ":lock"
	t.Cleanup(func() { _ = c.Delete(ctx, lock) })
	first, err := c.SetIfNotExists(ctx, lock, "a", time.Minute)
	require.NoError(t, err)
	second, err := c.SetIfNotExists(ctx, lock, "b", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)
}
