package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/idempotency"
	"github.com/retailops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormIdempotencyRecordRepository implements idempotency.RecordRepository using GORM
type GormIdempotencyRecordRepository struct {
	db *gorm.DB
}

// NewGormIdempotencyRecordRepository creates a new GormIdempotencyRecordRepository
func NewGormIdempotencyRecordRepository(db *gorm.DB) *GormIdempotencyRecordRepository {
	return &GormIdempotencyRecordRepository{db: db}
}

// Find loads the record for (tenant, route, key)
func (r *GormIdempotencyRecordRepository) Find(ctx context.Context, tenantID uuid.UUID, route, key string) (*idempotency.Record, error) {
	var record idempotency.Record
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND route = ? AND key = ?", tenantID, route, key).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Create persists a new record
func (r *GormIdempotencyRecordRepository) Create(ctx context.Context, record *idempotency.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Ensure GormIdempotencyRecordRepository implements RecordRepository
var _ idempotency.RecordRepository = (*GormIdempotencyRecordRepository)(nil)
