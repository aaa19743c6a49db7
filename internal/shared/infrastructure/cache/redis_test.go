package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisCache(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	c, err := DialRedis(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := redisCache(t)
	key := DashboardKey(uuid.New())

	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, key, []byte(`{"total_hours":4}`), time.Minute))
	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_hours":4}`, string(got))

	require.NoError(t, c.Delete(ctx, key))
	_, err = c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c := redisCache(t)
	id := uuid.New()
	prefix := UserDataPrefix(id)

	for i := 0; i < scanBatch+5; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("%s%d", prefix, i), []byte("x"), time.Minute))
	}
	require.NoError(t, c.Set(ctx, DashboardKey(id), []byte("x"), time.Minute))

	n, err := c.DeleteByPrefix(ctx, prefix)
	require.NoError(t, err)
	assert.Equal(t, int64(scanBatch+5), n)

	_, err = c.Get(ctx, DashboardKey(id))
	assert.NoError(t, err)
	require.NoError(t, c.Delete(ctx, DashboardKey(id)))
}

func TestDialRedis_BadURL(t *testing.T) {
	_, err := DialRedis(context.Background(), "not a url")
	assert.Error(t, err)
}
