package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/ledger"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLocationBalanceRepository implements LocationBalanceRepository using GORM
type GormLocationBalanceRepository struct {
	db *gorm.DB
}

// NewGormLocationBalanceRepository creates a new GormLocationBalanceRepository
func NewGormLocationBalanceRepository(db *gorm.DB) *GormLocationBalanceRepository {
	return &GormLocationBalanceRepository{db: db}
}

// FindByVariationAndLocation finds a balance row without locking it
func (r *GormLocationBalanceRepository) FindByVariationAndLocation(ctx context.Context, tenantID, variationID, locationID uuid.UUID) (*ledger.LocationBalance, error) {
	var balance ledger.LocationBalance
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND variation_id = ? AND location_id = ?", tenantID, variationID, locationID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// GetOrCreateForUpdate returns the balance row for the key under a row-level
// write lock, inserting a zero row first if absent. The insert uses ON
// CONFLICT DO NOTHING so two concurrent first movements race on the unique
// index instead of erroring, then both block on the same lock.
func (r *GormLocationBalanceRepository) GetOrCreateForUpdate(ctx context.Context, tenantID, productID, variationID, locationID uuid.UUID) (*ledger.LocationBalance, error) {
	fresh := ledger.NewLocationBalance(tenantID, productID, variationID, locationID)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "variation_id"}, {Name: "location_id"}},
			DoNothing: true,
		}).
		Create(fresh).Error; err != nil {
		return nil, err
	}

	var balance ledger.LocationBalance
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND variation_id = ? AND location_id = ?", tenantID, variationID, locationID).
		First(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

// FindByKeys finds the balances for the given keys; absent keys are omitted
func (r *GormLocationBalanceRepository) FindByKeys(ctx context.Context, tenantID uuid.UUID, keys []ledger.BalanceKey) ([]ledger.LocationBalance, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	conds := r.db.Session(&gorm.Session{NewDB: true})
	for _, k := range keys {
		conds = conds.Or("variation_id = ? AND location_id = ?", k.VariationID, k.LocationID)
	}
	var balances []ledger.LocationBalance
	if err := query.Where(conds).Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// SumByVariation sums QtyAvailable for a variation across all locations
func (r *GormLocationBalanceRepository) SumByVariation(ctx context.Context, tenantID, variationID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.LocationBalance{}).
		Select("COALESCE(SUM(qty_available), 0) AS total").
		Where("tenant_id = ? AND variation_id = ?", tenantID, variationID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save persists balance changes
func (r *GormLocationBalanceRepository) Save(ctx context.Context, balance *ledger.LocationBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

// GormStockTransactionRepository implements StockTransactionRepository using GORM
type GormStockTransactionRepository struct {
	db *gorm.DB
}

// NewGormStockTransactionRepository creates a new GormStockTransactionRepository
func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

// Create appends a transaction
func (r *GormStockTransactionRepository) Create(ctx context.Context, tx *ledger.StockTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByID finds a transaction by its ID
func (r *GormStockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.StockTransaction, error) {
	var tx ledger.StockTransaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByVariationAndLocation lists transactions for one balance key
func (r *GormStockTransactionRepository) FindByVariationAndLocation(ctx context.Context, tenantID, variationID, locationID uuid.UUID, filter shared.Filter) ([]ledger.StockTransaction, error) {
	var txs []ledger.StockTransaction
	query := applyFilter(
		r.db.WithContext(ctx).Model(&ledger.StockTransaction{}).
			Where("tenant_id = ? AND variation_id = ? AND location_id = ?", tenantID, variationID, locationID),
		filter,
	)
	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByReference lists transactions triggered by one document
func (r *GormStockTransactionRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, ref ledger.DocumentRef) ([]ledger.StockTransaction, error) {
	var txs []ledger.StockTransaction
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_kind = ? AND reference_id = ?", tenantID, ref.Kind, ref.ID).
		Order("created_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// SumDeltas sums QuantityDelta for one balance key across the whole ledger
func (r *GormStockTransactionRepository) SumDeltas(ctx context.Context, tenantID, variationID, locationID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.StockTransaction{}).
		Select("COALESCE(SUM(quantity_delta), 0) AS total").
		Where("tenant_id = ? AND variation_id = ? AND location_id = ?", tenantID, variationID, locationID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// CountForTenant counts transactions matching the filter
func (r *GormStockTransactionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&ledger.StockTransaction{}).
		Where("tenant_id = ?", tenantID)
	for field, value := range filter.Filters {
		query = query.Where(field+" = ?", value)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GormProductHistoryRepository implements ProductHistoryRepository using GORM
type GormProductHistoryRepository struct {
	db *gorm.DB
}

// NewGormProductHistoryRepository creates a new GormProductHistoryRepository
func NewGormProductHistoryRepository(db *gorm.DB) *GormProductHistoryRepository {
	return &GormProductHistoryRepository{db: db}
}

// Create appends a history row
func (r *GormProductHistoryRepository) Create(ctx context.Context, row *ledger.ProductHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// FindByVariation lists history rows for a variation
func (r *GormProductHistoryRepository) FindByVariation(ctx context.Context, tenantID, variationID uuid.UUID, filter shared.Filter) ([]ledger.ProductHistory, error) {
	var rows []ledger.ProductHistory
	query := applyFilter(
		r.db.WithContext(ctx).Model(&ledger.ProductHistory{}).
			Where("tenant_id = ? AND variation_id = ?", tenantID, variationID),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// applyFilter applies ordering and pagination from a shared.Filter. Order
// columns are sanitized to bare identifiers to keep user input out of SQL.
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if orderBy == "" || strings.ContainsAny(orderBy, " ;()'\"") {
		orderBy = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	query = query.Order(orderBy + " " + dir)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// Ensure interfaces are implemented
var _ ledger.LocationBalanceRepository = (*GormLocationBalanceRepository)(nil)
var _ ledger.StockTransactionRepository = (*GormStockTransactionRepository)(nil)
var _ ledger.ProductHistoryRepository = (*GormProductHistoryRepository)(nil)
