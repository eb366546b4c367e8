package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/serial"
	"github.com/retailops/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSerialUnitRepository implements SerialUnitRepository using GORM
type GormSerialUnitRepository struct {
	db *gorm.DB
}

// NewGormSerialUnitRepository creates a new GormSerialUnitRepository
func NewGormSerialUnitRepository(db *gorm.DB) *GormSerialUnitRepository {
	return &GormSerialUnitRepository{db: db}
}

// FindBySerialNumber finds one unit by its serial number
func (r *GormSerialUnitRepository) FindBySerialNumber(ctx context.Context, tenantID uuid.UUID, serialNumber string) (*serial.SerialUnit, error) {
	var unit serial.SerialUnit
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND serial_number = ?", tenantID, serialNumber).
		First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &unit, nil
}

// FindBySerialNumbersForUpdate finds units by serial numbers, locking matched rows
func (r *GormSerialUnitRepository) FindBySerialNumbersForUpdate(ctx context.Context, tenantID uuid.UUID, serialNumbers []string) ([]serial.SerialUnit, error) {
	if len(serialNumbers) == 0 {
		return nil, nil
	}
	var units []serial.SerialUnit
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND serial_number IN ?", tenantID, serialNumbers).
		Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// FindByReceipt lists units brought in by one goods receipt
func (r *GormSerialUnitRepository) FindByReceipt(ctx context.Context, tenantID, receiptID uuid.UUID) ([]serial.SerialUnit, error) {
	var units []serial.SerialUnit
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND receipt_id = ?", tenantID, receiptID).
		Order("serial_number ASC").
		Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// Upsert creates the unit or overwrites the existing (tenant, serial number)
// row. On overwrite the stored row's identity is written back into unit, so
// movement rows appended afterwards reference the surviving id. The caller's
// collision check already holds a FOR UPDATE lock on any existing row within
// the same transaction.
func (r *GormSerialUnitRepository) Upsert(ctx context.Context, unit *serial.SerialUnit) error {
	var existing serial.SerialUnit
	err := r.db.WithContext(ctx).
		Select("id", "created_at").
		Where("tenant_id = ? AND serial_number = ?", unit.TenantID, unit.SerialNumber).
		First(&existing).Error
	switch {
	case err == nil:
		unit.ID = existing.ID
		unit.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(unit).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(unit).Error
	default:
		return err
	}
}

// Save persists changes to an existing unit
func (r *GormSerialUnitRepository) Save(ctx context.Context, unit *serial.SerialUnit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

// FindForTenant lists units with filtering
func (r *GormSerialUnitRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]serial.SerialUnit, error) {
	var units []serial.SerialUnit
	query := r.db.WithContext(ctx).Model(&serial.SerialUnit{}).
		Where("tenant_id = ?", tenantID)
	for field, value := range filter.Filters {
		query = query.Where(field+" = ?", value)
	}
	if err := applyFilter(query, filter).Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// GormSerialMovementRepository implements SerialMovementRepository using GORM
type GormSerialMovementRepository struct {
	db *gorm.DB
}

// NewGormSerialMovementRepository creates a new GormSerialMovementRepository
func NewGormSerialMovementRepository(db *gorm.DB) *GormSerialMovementRepository {
	return &GormSerialMovementRepository{db: db}
}

// Create appends a movement
func (r *GormSerialMovementRepository) Create(ctx context.Context, movement *serial.SerialMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindBySerialUnit lists movements for one unit, oldest first
func (r *GormSerialMovementRepository) FindBySerialUnit(ctx context.Context, serialUnitID uuid.UUID) ([]serial.SerialMovement, error) {
	var movements []serial.SerialMovement
	if err := r.db.WithContext(ctx).
		Where("serial_unit_id = ?", serialUnitID).
		Order("moved_at ASC, created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Ensure interfaces are implemented
var _ serial.SerialUnitRepository = (*GormSerialUnitRepository)(nil)
var _ serial.SerialMovementRepository = (*GormSerialMovementRepository)(nil)
