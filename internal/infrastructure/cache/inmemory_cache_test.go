package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		c := NewInMemoryCache()

		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

		value, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), value)
	})

	t.Run("missing key", func(t *testing.T) {
		c := NewInMemoryCache()

		_, ok, err := c.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired entry is dropped", func(t *testing.T) {
		c := NewInMemoryCache()

		require.NoError(t, c.Set(ctx, "k", []byte("v"), -time.Second))

		_, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate removes keys", func(t *testing.T) {
		c := NewInMemoryCache()

		require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
		require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

		require.NoError(t, c.Invalidate(ctx, "a", "b", "never-existed"))

		_, ok, _ := c.Get(ctx, "a")
		assert.False(t, ok)
		_, ok, _ = c.Get(ctx, "b")
		assert.False(t, ok)
	})
}
