package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/returns"
	"github.com/retailops/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerReturnRepository implements CustomerReturnRepository using GORM
type GormCustomerReturnRepository struct {
	db *gorm.DB
}

// NewGormCustomerReturnRepository creates a new GormCustomerReturnRepository
func NewGormCustomerReturnRepository(db *gorm.DB) *GormCustomerReturnRepository {
	return &GormCustomerReturnRepository{db: db}
}

// FindByID loads a return with its lines
func (r *GormCustomerReturnRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*returns.CustomerReturn, error) {
	var cr returns.CustomerReturn
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&cr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cr, nil
}

// FindByIDForUpdate loads a return with its lines, locking the return row
func (r *GormCustomerReturnRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*returns.CustomerReturn, error) {
	var cr returns.CustomerReturn
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "customer_returns"}}).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&cr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cr, nil
}

// Create persists a new return with its lines
func (r *GormCustomerReturnRepository) Create(ctx context.Context, cr *returns.CustomerReturn) error {
	return r.db.WithContext(ctx).Create(cr).Error
}

// Save persists changes to the return
func (r *GormCustomerReturnRepository) Save(ctx context.Context, cr *returns.CustomerReturn) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(cr).Error
}

// FindForTenant lists returns with filtering
func (r *GormCustomerReturnRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[returns.CustomerReturn], error) {
	base := r.db.WithContext(ctx).Model(&returns.CustomerReturn{}).
		Where("tenant_id = ?", tenantID)
	for field, value := range filter.Filters {
		base = base.Where(field+" = ?", value)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []returns.CustomerReturn
	if err := applyFilter(base.Preload("Lines"), filter).Find(&items).Error; err != nil {
		return nil, err
	}
	paginated := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// GormReplacementRepository implements ReplacementRepository using GORM
type GormReplacementRepository struct {
	db *gorm.DB
}

// NewGormReplacementRepository creates a new GormReplacementRepository
func NewGormReplacementRepository(db *gorm.DB) *GormReplacementRepository {
	return &GormReplacementRepository{db: db}
}

// FindByID loads a replacement with its lines
func (r *GormReplacementRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*returns.Replacement, error) {
	var rep returns.Replacement
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&rep).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rep, nil
}

// FindByReturn loads the replacement issued against one return
func (r *GormReplacementRepository) FindByReturn(ctx context.Context, tenantID, customerReturnID uuid.UUID) (*returns.Replacement, error) {
	var rep returns.Replacement
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND customer_return_id = ?", tenantID, customerReturnID).
		First(&rep).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rep, nil
}

// Create persists a new replacement with its lines
func (r *GormReplacementRepository) Create(ctx context.Context, rep *returns.Replacement) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

// Ensure interfaces are implemented
var _ returns.CustomerReturnRepository = (*GormCustomerReturnRepository)(nil)
var _ returns.ReplacementRepository = (*GormReplacementRepository)(nil)
