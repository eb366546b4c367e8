package idempotency_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/idempotency"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLock is a process-local RequestLock with controllable contention
type fakeLock struct {
	mu       sync.Mutex
	held     map[string]struct{}
	acquires int
	releases int
}

func newFakeLock() *fakeLock {
	return &fakeLock{held: make(map[string]struct{})}
}

func (l *fakeLock) Acquire(_ context.Context, tenantID uuid.UUID, route, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquires++
	k := tenantID.String() + "|" + route + "|" + key
	if _, taken := l.held[k]; taken {
		return false, nil
	}
	l.held[k] = struct{}{}
	return true, nil
}

func (l *fakeLock) Release(_ context.Context, tenantID uuid.UUID, route, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releases++
	delete(l.held, tenantID.String()+"|"+route+"|"+key)
	return nil
}

func TestGuardExecute(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	route := "goods-receipts/approve"
	payload := []byte(`{"receipt_id":"abc"}`)

	t.Run("key is required", func(t *testing.T) {
		guard := idempotency.NewGuard(testutil.NewMemoryIdempotencyRecords(), newFakeLock(), zap.NewNop())
		_, err := guard.Execute(ctx, tenantID, route, "", payload, func(ctx context.Context) (any, error) {
			return nil, nil
		})
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))
	})

	t.Run("fresh run executes fn and stores the record", func(t *testing.T) {
		records := testutil.NewMemoryIdempotencyRecords()
		lock := newFakeLock()
		guard := idempotency.NewGuard(records, lock, zap.NewNop())

		calls := 0
		out, err := guard.Execute(ctx, tenantID, route, "key-1", payload, func(ctx context.Context) (any, error) {
			calls++
			return map[string]string{"status": "APPROVED"}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.False(t, out.Replayed)
		assert.JSONEq(t, `{"status":"APPROVED"}`, string(out.Response))

		record, err := records.Find(ctx, tenantID, route, "key-1")
		require.NoError(t, err)
		assert.Equal(t, idempotency.Fingerprint(payload), record.Fingerprint)
		assert.Equal(t, 1, lock.releases)
	})

	t.Run("second call replays without running fn", func(t *testing.T) {
		records := testutil.NewMemoryIdempotencyRecords()
		guard := idempotency.NewGuard(records, newFakeLock(), zap.NewNop())

		calls := 0
		fn := func(ctx context.Context) (any, error) {
			calls++
			return map[string]string{"status": "APPROVED"}, nil
		}
		first, err := guard.Execute(ctx, tenantID, route, "key-1", payload, fn)
		require.NoError(t, err)

		second, err := guard.Execute(ctx, tenantID, route, "key-1", payload, fn)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.True(t, second.Replayed)
		assert.Equal(t, first.Response, second.Response)
	})

	t.Run("reused key with different body is rejected", func(t *testing.T) {
		guard := idempotency.NewGuard(testutil.NewMemoryIdempotencyRecords(), newFakeLock(), zap.NewNop())

		fn := func(ctx context.Context) (any, error) { return "ok", nil }
		_, err := guard.Execute(ctx, tenantID, route, "key-1", payload, fn)
		require.NoError(t, err)

		_, err = guard.Execute(ctx, tenantID, route, "key-1", []byte(`{"receipt_id":"other"}`), fn)
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))
	})

	t.Run("same key on another route does not collide", func(t *testing.T) {
		guard := idempotency.NewGuard(testutil.NewMemoryIdempotencyRecords(), newFakeLock(), zap.NewNop())

		calls := 0
		fn := func(ctx context.Context) (any, error) {
			calls++
			return "ok", nil
		}
		_, err := guard.Execute(ctx, tenantID, "goods-receipts/approve", "key-1", payload, fn)
		require.NoError(t, err)
		_, err = guard.Execute(ctx, tenantID, "customer-returns/approve", "key-1", payload, fn)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("held lock rejects with REQUEST_IN_FLIGHT", func(t *testing.T) {
		lock := newFakeLock()
		acquired, err := lock.Acquire(ctx, tenantID, route, "key-1", time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)

		guard := idempotency.NewGuard(testutil.NewMemoryIdempotencyRecords(), lock, zap.NewNop())
		_, err = guard.Execute(ctx, tenantID, route, "key-1", payload, func(ctx context.Context) (any, error) {
			t.Fatal("fn must not run while the lock is held")
			return nil, nil
		})
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "REQUEST_IN_FLIGHT"))
	})

	t.Run("held lock still replays a completed record", func(t *testing.T) {
		records := testutil.NewMemoryIdempotencyRecords()
		guard := idempotency.NewGuard(records, newFakeLock(), zap.NewNop())
		_, err := guard.Execute(ctx, tenantID, route, "key-1", payload, func(ctx context.Context) (any, error) {
			return "done", nil
		})
		require.NoError(t, err)

		// Same records, but a lock that is permanently contended
		lock := newFakeLock()
		_, err = lock.Acquire(ctx, tenantID, route, "key-1", time.Minute)
		require.NoError(t, err)

		blocked := idempotency.NewGuard(records, lock, zap.NewNop())
		out, err := blocked.Execute(ctx, tenantID, route, "key-1", payload, func(ctx context.Context) (any, error) {
			return nil, errors.New("must not run")
		})
		require.NoError(t, err)
		assert.True(t, out.Replayed)
	})

	t.Run("failed fn leaves no record and frees the lock", func(t *testing.T) {
		records := testutil.NewMemoryIdempotencyRecords()
		lock := newFakeLock()
		guard := idempotency.NewGuard(records, lock, zap.NewNop())

		boom := errors.New("stock check failed")
		_, err := guard.Execute(ctx, tenantID, route, "key-1", payload, func(ctx context.Context) (any, error) {
			return nil, boom
		})
		require.ErrorIs(t, err, boom)

		_, err = records.Find(ctx, tenantID, route, "key-1")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		// Retry with the same key runs fn again
		out, err := guard.Execute(ctx, tenantID, route, "key-1", payload, func(ctx context.Context) (any, error) {
			return "recovered", nil
		})
		require.NoError(t, err)
		assert.False(t, out.Replayed)
	})

	t.Run("record persistence failure does not fail the operation", func(t *testing.T) {
		records := testutil.NewMemoryIdempotencyRecords()
		records.CreateErr = errors.New("db down")
		guard := idempotency.NewGuard(records, newFakeLock(), zap.NewNop())

		out, err := guard.Execute(ctx, tenantID, route, "key-1", payload, func(ctx context.Context) (any, error) {
			return "ok", nil
		})
		require.NoError(t, err)
		assert.False(t, out.Replayed)
	})
}

func TestFingerprint(t *testing.T) {
	a := idempotency.Fingerprint([]byte(`{"x":1}`))
	b := idempotency.Fingerprint([]byte(`{"x":1}`))
	c := idempotency.Fingerprint([]byte(`{"x":2}`))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
