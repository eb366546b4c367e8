package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/costing"
	"github.com/retailops/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCostBasisRepository implements CostBasisRepository using GORM
type GormCostBasisRepository struct {
	db *gorm.DB
}

// NewGormCostBasisRepository creates a new GormCostBasisRepository
func NewGormCostBasisRepository(db *gorm.DB) *GormCostBasisRepository {
	return &GormCostBasisRepository{db: db}
}

// FindByVariation finds the cost basis without locking it
func (r *GormCostBasisRepository) FindByVariation(ctx context.Context, tenantID, variationID uuid.UUID) (*costing.CostBasis, error) {
	var basis costing.CostBasis
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND variation_id = ?", tenantID, variationID).
		First(&basis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &basis, nil
}

// GetOrCreateForUpdate returns the cost basis under a row-level write lock,
// inserting a zero row first if absent
func (r *GormCostBasisRepository) GetOrCreateForUpdate(ctx context.Context, tenantID, productID, variationID uuid.UUID) (*costing.CostBasis, error) {
	fresh := costing.NewCostBasis(tenantID, productID, variationID)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "variation_id"}},
			DoNothing: true,
		}).
		Create(fresh).Error; err != nil {
		return nil, err
	}

	var basis costing.CostBasis
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND variation_id = ?", tenantID, variationID).
		First(&basis).Error; err != nil {
		return nil, err
	}
	return &basis, nil
}

// Save persists cost basis changes
func (r *GormCostBasisRepository) Save(ctx context.Context, basis *costing.CostBasis) error {
	return r.db.WithContext(ctx).Save(basis).Error
}

// Ensure GormCostBasisRepository implements CostBasisRepository
var _ costing.CostBasisRepository = (*GormCostBasisRepository)(nil)
