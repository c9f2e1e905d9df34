package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGetDelete(t *testing.T) {
	c := NewMemoryCache()

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(context.Background(), "key", "value", time.Minute))

	got, err := c.Get(context.Background(), "key")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	require.NoError(t, c.Delete(context.Background(), "key"))
	_, err = c.Get(context.Background(), "key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()

	require.NoError(t, c.Set(context.Background(), "key", "value", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := c.Get(context.Background(), "key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	c := NewMemoryCache()

	require.NoError(t, c.Set(context.Background(), "refresh:prof-1:shop-1", "a", time.Minute))
	require.NoError(t, c.Set(context.Background(), "refresh:prof-1:shop-2", "b", time.Minute))
	require.NoError(t, c.Set(context.Background(), "refresh:prof-2:shop-1", "c", time.Minute))

	require.NoError(t, c.DeletePrefix(context.Background(), "refresh:prof-1:"))

	_, err := c.Get(context.Background(), "refresh:prof-1:shop-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(context.Background(), "refresh:prof-1:shop-2")
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := c.Get(context.Background(), "refresh:prof-2:shop-1")
	require.NoError(t, err)
	assert.Equal(t, "c", got)
}

func TestMemoryCacheIncrementCountsUp(t *testing.T) {
	c := NewMemoryCache()

	count, err := c.Increment(context.Background(), "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = c.Increment(context.Background(), "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Counter keys read back as decimal strings, like GET on a Redis
	// INCR key.
	got, err := c.Get(context.Background(), "counter")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestMemoryCacheIncrementExpires(t *testing.T) {
	c := NewMemoryCache()

	_, err := c.Increment(context.Background(), "counter", 10*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	count, err := c.Increment(context.Background(), "counter", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
