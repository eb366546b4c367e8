package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BalanceKey identifies one variation-location balance
type BalanceKey struct {
	VariationID uuid.UUID
	LocationID  uuid.UUID
}

// LocationBalanceRepository defines persistence for location balances
type LocationBalanceRepository interface {
	// FindByVariationAndLocation finds a balance row without locking it
	FindByVariationAndLocation(ctx context.Context, tenantID, variationID, locationID uuid.UUID) (*LocationBalance, error)

	// GetOrCreateForUpdate returns the balance row for the key, creating a
	// zero row if absent, and holds a row-level write lock on it until the
	// enclosing transaction ends. Concurrent movements on the same key
	// serialize here.
	GetOrCreateForUpdate(ctx context.Context, tenantID, productID, variationID, locationID uuid.UUID) (*LocationBalance, error)

	// FindByKeys finds the balances for the given keys; absent keys are omitted
	FindByKeys(ctx context.Context, tenantID uuid.UUID, keys []BalanceKey) ([]LocationBalance, error)

	// SumByVariation sums QtyAvailable for a variation across all locations
	SumByVariation(ctx context.Context, tenantID, variationID uuid.UUID) (decimal.Decimal, error)

	// Save persists balance changes
	Save(ctx context.Context, balance *LocationBalance) error
}

// StockTransactionRepository defines persistence for the append-only ledger
type StockTransactionRepository interface {
	// Create appends a transaction (no update or delete is ever allowed)
	Create(ctx context.Context, tx *StockTransaction) error

	// FindByID finds a transaction by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransaction, error)

	// FindByVariationAndLocation lists transactions for one balance key
	FindByVariationAndLocation(ctx context.Context, tenantID, variationID, locationID uuid.UUID, filter shared.Filter) ([]StockTransaction, error)

	// FindByReference lists transactions triggered by one document
	FindByReference(ctx context.Context, tenantID uuid.UUID, ref DocumentRef) ([]StockTransaction, error)

	// SumDeltas sums QuantityDelta for one balance key across the whole ledger
	SumDeltas(ctx context.Context, tenantID, variationID, locationID uuid.UUID) (decimal.Decimal, error)

	// CountForTenant counts transactions matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// ProductHistoryRepository defines persistence for reporting mirror rows
type ProductHistoryRepository interface {
	// Create appends a history row
	Create(ctx context.Context, row *ProductHistory) error

	// FindByVariation lists history rows for a variation
	FindByVariation(ctx context.Context, tenantID, variationID uuid.UUID, filter shared.Filter) ([]ProductHistory, error)
}
