package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"gorm.io/datatypes"
)

// Record is the durable memory of one completed mutating request. Uniqueness
// is (tenant, route, key): the same key may be reused across different
// routes without collision. Only successful outcomes are recorded; a failed
// attempt leaves no record so the client may retry with the same key.
type Record struct {
	shared.BaseEntity
	TenantID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_idem_tenant_route_key,priority:1"`
	Route       string         `gorm:"type:varchar(200);not null;uniqueIndex:idx_idem_tenant_route_key,priority:2"`
	Key         string         `gorm:"type:varchar(200);not null;uniqueIndex:idx_idem_tenant_route_key,priority:3"`
	Fingerprint string         `gorm:"type:varchar(64);not null"`
	Response    datatypes.JSON `gorm:"type:jsonb"`
	CompletedAt time.Time      `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "idempotency_records"
}

// Fingerprint hashes a request payload so a reused key with a different body
// can be rejected instead of silently replaying an unrelated response
func Fingerprint(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// RecordRepository defines persistence for idempotency records
type RecordRepository interface {
	// Find loads the record for (tenant, route, key), shared.ErrNotFound when absent
	Find(ctx context.Context, tenantID uuid.UUID, route, key string) (*Record, error)

	// Create persists a new record
	Create(ctx context.Context, record *Record) error
}

// RequestLock serializes concurrent first attempts for the same key. Acquire
// returns false when another request currently holds the lock.
type RequestLock interface {
	// Acquire takes the lock for (tenant, route, key) with a TTL guarding
	// against holders that die mid-request
	Acquire(ctx context.Context, tenantID uuid.UUID, route, key string, ttl time.Duration) (bool, error)

	// Release frees the lock
	Release(ctx context.Context, tenantID uuid.UUID, route, key string) error
}
