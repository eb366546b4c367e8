package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DocumentRef is a tagged reference to the document that triggered a movement
type DocumentRef struct {
	Kind ReferenceKind
	ID   uuid.UUID
}

// StockTransaction is an immutable record of one stock movement. Once
// created, transactions are never updated or deleted; corrections are made
// with new movements. The sequence of committed transactions for a
// (variation, location) pair is the source of truth for its balance.
type StockTransaction struct {
	shared.BaseEntity
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_tx_tenant_time,priority:1"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariationID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_tx_var_loc,priority:1"`
	LocationID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_tx_var_loc,priority:2"`
	MovementType    MovementType    `gorm:"type:varchar(30);not null;index"`
	QuantityDelta   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Signed: positive adds stock, negative deducts
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Balance snapshot at write time
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceKind   ReferenceKind   `gorm:"type:varchar(30);index:idx_stock_tx_ref,priority:1"`
	ReferenceID     *uuid.UUID      `gorm:"type:uuid;index:idx_stock_tx_ref,priority:2"`
	CreatedByID     *uuid.UUID      `gorm:"type:uuid"`
	CreatedByName   string          `gorm:"type:varchar(100)"`
	Notes           string          `gorm:"type:varchar(500)"`
	TransactionDate time.Time       `gorm:"type:timestamptz;not null;index:idx_stock_tx_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// TotalValue returns the signed value of the movement (delta * unit cost)
func (t *StockTransaction) TotalValue() decimal.Decimal {
	return t.QuantityDelta.Mul(t.UnitCost)
}

// IsInbound returns true if the movement added stock
func (t *StockTransaction) IsInbound() bool {
	return t.QuantityDelta.IsPositive()
}

// LocationBalance holds the current on-hand quantity for one product
// variation at one location. It is a materialized projection of the ledger:
// at any committed state QtyAvailable equals the sum of all transaction
// deltas for the same key, and it is only ever mutated in a transaction that
// also appends the matching StockTransaction.
type LocationBalance struct {
	shared.BaseEntity
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_tenant_var_loc,priority:1"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariationID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_tenant_var_loc,priority:2"`
	LocationID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_tenant_var_loc,priority:3"`
	QtyAvailable decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (LocationBalance) TableName() string {
	return "location_balances"
}

// NewLocationBalance creates a zero balance row for a variation-location pair
func NewLocationBalance(tenantID, productID, variationID, locationID uuid.UUID) *LocationBalance {
	return &LocationBalance{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     tenantID,
		ProductID:    productID,
		VariationID:  variationID,
		LocationID:   locationID,
		QtyAvailable: decimal.Zero,
	}
}

// ProductHistory is a denormalized reporting row mirroring one
// StockTransaction, written in the same transaction. Reporting reads this
// table instead of re-deriving running balances from the ledger.
type ProductHistory struct {
	shared.BaseEntity
	TenantID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockTransactionID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariationID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	LocationID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	MovementType       MovementType    `gorm:"type:varchar(30);not null"`
	QuantityChange     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RunningBalance     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalValue         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceKind      ReferenceKind   `gorm:"type:varchar(30)"`
	ReferenceID        *uuid.UUID      `gorm:"type:uuid"`
	ActorName          string          `gorm:"type:varchar(100)"`
	TransactionDate    time.Time       `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (ProductHistory) TableName() string {
	return "product_histories"
}
