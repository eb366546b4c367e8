package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/idempotency"
)

type lockEntry struct {
	expiresAt time.Time
}

// InMemoryRequestLock implements idempotency.RequestLock with an in-memory
// map. Suitable for single-instance deployments and testing.
type InMemoryRequestLock struct {
	mu      sync.Mutex
	entries map[string]lockEntry
}

// NewInMemoryRequestLock creates a new in-memory request lock
func NewInMemoryRequestLock() *InMemoryRequestLock {
	return &InMemoryRequestLock{entries: make(map[string]lockEntry)}
}

// Acquire takes the lock unless a live holder exists. Expired entries are
// treated as free and overwritten.
func (l *InMemoryRequestLock) Acquire(_ context.Context, tenantID uuid.UUID, route, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := lockKey(tenantID, route, key)
	if e, exists := l.entries[full]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	l.entries[full] = lockEntry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Release frees the lock
func (l *InMemoryRequestLock) Release(_ context.Context, tenantID uuid.UUID, route, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, lockKey(tenantID, route, key))
	return nil
}

// Size returns the number of held locks (for testing/monitoring)
func (l *InMemoryRequestLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func lockKey(tenantID uuid.UUID, route, key string) string {
	return tenantID.String() + ":" + route + ":" + key
}

// Ensure InMemoryRequestLock implements RequestLock
var _ idempotency.RequestLock = (*InMemoryRequestLock)(nil)
