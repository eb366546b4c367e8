package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/purchasing"
	"github.com/retailops/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID loads an order with its items
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var order purchasing.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate loads an order with its items, locking the order row.
// Only the order row is locked; items are guarded by the aggregate lock.
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var order purchasing.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "purchase_orders"}}).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber loads an order by its human-facing number
func (r *GormPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*purchasing.PurchaseOrder, error) {
	var order purchasing.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Create persists a new order with its items
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *purchasing.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Save persists changes to the order and its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *purchasing.PurchaseOrder) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(order).Error
}

// FindForTenant lists orders with filtering
func (r *GormPurchaseOrderRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[purchasing.PurchaseOrder], error) {
	base := r.db.WithContext(ctx).Model(&purchasing.PurchaseOrder{}).
		Where("tenant_id = ?", tenantID)
	for field, value := range filter.Filters {
		base = base.Where(field+" = ?", value)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []purchasing.PurchaseOrder
	if err := applyFilter(base.Preload("Items"), filter).Find(&orders).Error; err != nil {
		return nil, err
	}
	paginated := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// GormGoodsReceiptRepository implements GoodsReceiptRepository using GORM
type GormGoodsReceiptRepository struct {
	db *gorm.DB
}

// NewGormGoodsReceiptRepository creates a new GormGoodsReceiptRepository
func NewGormGoodsReceiptRepository(db *gorm.DB) *GormGoodsReceiptRepository {
	return &GormGoodsReceiptRepository{db: db}
}

// FindByID loads a receipt with its lines
func (r *GormGoodsReceiptRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.GoodsReceipt, error) {
	var receipt purchasing.GoodsReceipt
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByIDForUpdate loads a receipt with its lines, locking the receipt row
func (r *GormGoodsReceiptRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.GoodsReceipt, error) {
	var receipt purchasing.GoodsReceipt
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "goods_receipts"}}).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByPurchaseOrder lists receipts recorded against one order
func (r *GormGoodsReceiptRepository) FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]purchasing.GoodsReceipt, error) {
	var receipts []purchasing.GoodsReceipt
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND purchase_order_id = ?", tenantID, purchaseOrderID).
		Order("received_date ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// Create persists a new receipt with its lines
func (r *GormGoodsReceiptRepository) Create(ctx context.Context, receipt *purchasing.GoodsReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

// Save persists changes to the receipt
func (r *GormGoodsReceiptRepository) Save(ctx context.Context, receipt *purchasing.GoodsReceipt) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(receipt).Error
}

// FindForTenant lists receipts with filtering
func (r *GormGoodsReceiptRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[purchasing.GoodsReceipt], error) {
	base := r.db.WithContext(ctx).Model(&purchasing.GoodsReceipt{}).
		Where("tenant_id = ?", tenantID)
	for field, value := range filter.Filters {
		base = base.Where(field+" = ?", value)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var receipts []purchasing.GoodsReceipt
	if err := applyFilter(base.Preload("Lines"), filter).Find(&receipts).Error; err != nil {
		return nil, err
	}
	paginated := shared.NewPaginated(receipts, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// Ensure interfaces are implemented
var _ purchasing.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
var _ purchasing.GoodsReceiptRepository = (*GormGoodsReceiptRepository)(nil)
