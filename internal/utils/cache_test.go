package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCacheRoundTrip(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	found, err := GetCache(ctx, rdb, "k", &payload{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, rdb, "k", payload{Name: "btc"}, time.Minute))
	var got payload
	found, err = GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "btc", got.Name)

	mr.FastForward(2 * time.Minute)
	found, err = GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteCachePrefix(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()

	require.NoError(t, SetCache(ctx, rdb, "admin:users:page=1", 1, 0))
	require.NoError(t, SetCache(ctx, rdb, "admin:users:page=2", 2, 0))
	require.NoError(t, SetCache(ctx, rdb, "other", 3, 0))

	require.NoError(t, DeleteCachePrefix(ctx, rdb, "admin:users:"))
	assert.False(t, mr.Exists("admin:users:page=1"))
	assert.False(t, mr.Exists("admin:users:page=2"))
	assert.True(t, mr.Exists("other"))
}
