package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRequestLock(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("acquire then contend then release", func(t *testing.T) {
		lock := NewInMemoryRequestLock()

		acquired, err := lock.Acquire(ctx, tenantID, "route", "key-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
		assert.Equal(t, 1, lock.Size())

		again, err := lock.Acquire(ctx, tenantID, "route", "key-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, again)

		require.NoError(t, lock.Release(ctx, tenantID, "route", "key-1"))
		assert.Equal(t, 0, lock.Size())

		after, err := lock.Acquire(ctx, tenantID, "route", "key-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, after)
	})

	t.Run("different keys do not contend", func(t *testing.T) {
		lock := NewInMemoryRequestLock()

		a, err := lock.Acquire(ctx, tenantID, "route", "key-1", time.Minute)
		require.NoError(t, err)
		b, err := lock.Acquire(ctx, tenantID, "route", "key-2", time.Minute)
		require.NoError(t, err)
		c, err := lock.Acquire(ctx, tenantID, "other-route", "key-1", time.Minute)
		require.NoError(t, err)
		d, err := lock.Acquire(ctx, uuid.New(), "route", "key-1", time.Minute)
		require.NoError(t, err)

		assert.True(t, a)
		assert.True(t, b)
		assert.True(t, c)
		assert.True(t, d)
		assert.Equal(t, 4, lock.Size())
	})

	t.Run("expired entry is treated as free", func(t *testing.T) {
		lock := NewInMemoryRequestLock()

		acquired, err := lock.Acquire(ctx, tenantID, "route", "key-1", time.Millisecond)
		require.NoError(t, err)
		require.True(t, acquired)

		time.Sleep(5 * time.Millisecond)

		again, err := lock.Acquire(ctx, tenantID, "route", "key-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, again)
	})

	t.Run("releasing an unheld lock is harmless", func(t *testing.T) {
		lock := NewInMemoryRequestLock()
		require.NoError(t, lock.Release(ctx, tenantID, "route", "never-held"))
	})
}
