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

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache("order").(*memoryCache)
	now := time.Date(2025, 3, 27, 6, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	now = now.Add(2 * time.Minute)
	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGenerateKey(t *testing.T) {
	c := NewMemoryCache("order")
	assert.Equal(t, "order:place:t1:u1:abc", c.GenerateKey("place", "t1", "u1", "abc"))
}

func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis integration test")
	}
	c := NewRedisCache(addr, "order-test")
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	key := c.GenerateKey("place", uuid.NewString())
	missing, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NoError(t, c.Set(ctx, key, "order-1", time.Minute))
	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "order-1", got)
}
