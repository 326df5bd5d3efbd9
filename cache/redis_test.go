package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisFromClient(client), mr
}

func TestRedisSetGet(t *testing.T) {
	r, _ := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "cmp:electronics:a:b", `{"summary":"x"}`, time.Minute))

	value, ok, err := r.Get(ctx, "cmp:electronics:a:b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"summary":"x"}`, value)
}

func TestRedisGetMissing(t *testing.T) {
	r, _ := setupRedis(t)

	value, ok, err := r.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestRedisExpiry(t *testing.T) {
	r, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "short-lived", "v", time.Second))
	mr.FastForward(2 * time.Second)

	_, ok, err := r.Get(ctx, "short-lived")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisDelete(t *testing.T) {
	r, _ := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", "v", 0))
	require.NoError(t, r.Delete(ctx, "k"))

	_, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is fine.
	assert.NoError(t, r.Delete(ctx, "k"))
}

func TestMemoryCache(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	value, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	require.NoError(t, m.Set(ctx, "expired", "v", -time.Second))
	_, ok, err = m.Get(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, ok)
}
