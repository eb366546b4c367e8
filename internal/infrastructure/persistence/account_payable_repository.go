package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/finance"
	"github.com/retailops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAccountPayableRepository implements AccountPayableRepository using GORM
type GormAccountPayableRepository struct {
	db *gorm.DB
}

// NewGormAccountPayableRepository creates a new GormAccountPayableRepository
func NewGormAccountPayableRepository(db *gorm.DB) *GormAccountPayableRepository {
	return &GormAccountPayableRepository{db: db}
}

// FindByID loads a payable
func (r *GormAccountPayableRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.AccountPayable, error) {
	var payable finance.AccountPayable
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&payable).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payable, nil
}

// FindByPurchaseOrder loads the payable created for one purchase order
func (r *GormAccountPayableRepository) FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) (*finance.AccountPayable, error) {
	var payable finance.AccountPayable
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND purchase_order_id = ?", tenantID, purchaseOrderID).
		First(&payable).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payable, nil
}

// ExistsForPurchaseOrder reports whether a payable was already created for the order
func (r *GormAccountPayableRepository) ExistsForPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&finance.AccountPayable{}).
		Where("tenant_id = ? AND purchase_order_id = ?", tenantID, purchaseOrderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create persists a new payable
func (r *GormAccountPayableRepository) Create(ctx context.Context, payable *finance.AccountPayable) error {
	return r.db.WithContext(ctx).Create(payable).Error
}

// Save persists changes to a payable
func (r *GormAccountPayableRepository) Save(ctx context.Context, payable *finance.AccountPayable) error {
	return r.db.WithContext(ctx).Save(payable).Error
}

// FindForTenant lists payables with filtering
func (r *GormAccountPayableRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[finance.AccountPayable], error) {
	base := r.db.WithContext(ctx).Model(&finance.AccountPayable{}).
		Where("tenant_id = ?", tenantID)
	for field, value := range filter.Filters {
		base = base.Where(field+" = ?", value)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var payables []finance.AccountPayable
	if err := applyFilter(base, filter).Find(&payables).Error; err != nil {
		return nil, err
	}
	paginated := shared.NewPaginated(payables, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// Ensure GormAccountPayableRepository implements AccountPayableRepository
var _ finance.AccountPayableRepository = (*GormAccountPayableRepository)(nil)
