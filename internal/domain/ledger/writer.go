package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Movement describes one stock change to be recorded in the ledger
type Movement struct {
	Actor        shared.Actor
	ProductID    uuid.UUID
	VariationID  uuid.UUID
	LocationID   uuid.UUID
	Type         MovementType
	Delta        decimal.Decimal // Signed quantity change
	UnitCost     decimal.Decimal
	Reference    DocumentRef
	Notes        string
	MovementDate time.Time // Zero value means "now"
}

// Writer records stock movements. It owns all writes to StockTransaction,
// LocationBalance and ProductHistory: the three always change together.
//
// The writer deliberately has no transaction boundary of its own. It operates
// on transaction-scoped repositories supplied by the orchestrator, so many
// movements can be batched atomically with other entity writes.
type Writer struct {
	balances     LocationBalanceRepository
	transactions StockTransactionRepository
	history      ProductHistoryRepository
}

// NewWriter creates a ledger writer over transaction-scoped repositories
func NewWriter(
	balances LocationBalanceRepository,
	transactions StockTransactionRepository,
	history ProductHistoryRepository,
) *Writer {
	return &Writer{
		balances:     balances,
		transactions: transactions,
		history:      history,
	}
}

// Apply records one movement: locks the balance row (creating a zero row if
// absent), applies the signed delta, and appends the StockTransaction plus
// its ProductHistory mirror. A deduction that would drive the balance
// negative fails with INSUFFICIENT_STOCK and leaves nothing written.
func (w *Writer) Apply(ctx context.Context, m Movement) (*StockTransaction, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	balance, err := w.balances.GetOrCreateForUpdate(ctx, m.Actor.TenantID, m.ProductID, m.VariationID, m.LocationID)
	if err != nil {
		return nil, err
	}

	newQty := balance.QtyAvailable.Add(m.Delta)
	if newQty.IsNegative() {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Movement of %s would drive balance below zero (available %s)",
				m.Delta.String(), balance.QtyAvailable.String()))
	}

	balance.QtyAvailable = newQty
	balance.Touch()
	if err := w.balances.Save(ctx, balance); err != nil {
		return nil, err
	}

	movementDate := m.MovementDate
	if movementDate.IsZero() {
		movementDate = time.Now()
	}

	actorID := m.Actor.UserID
	tx := &StockTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        m.Actor.TenantID,
		ProductID:       m.ProductID,
		VariationID:     m.VariationID,
		LocationID:      m.LocationID,
		MovementType:    m.Type,
		QuantityDelta:   m.Delta,
		BalanceAfter:    newQty,
		UnitCost:        m.UnitCost,
		ReferenceKind:   m.Reference.Kind,
		CreatedByID:     &actorID,
		CreatedByName:   m.Actor.DisplayName,
		Notes:           m.Notes,
		TransactionDate: movementDate,
	}
	if m.Reference.ID != uuid.Nil {
		refID := m.Reference.ID
		tx.ReferenceID = &refID
	}
	if err := w.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}

	mirror := &ProductHistory{
		BaseEntity:         shared.NewBaseEntity(),
		TenantID:           tx.TenantID,
		StockTransactionID: tx.ID,
		ProductID:          tx.ProductID,
		VariationID:        tx.VariationID,
		LocationID:         tx.LocationID,
		MovementType:       tx.MovementType,
		QuantityChange:     tx.QuantityDelta,
		RunningBalance:     tx.BalanceAfter,
		UnitCost:           tx.UnitCost,
		TotalValue:         tx.TotalValue(),
		ReferenceKind:      tx.ReferenceKind,
		ReferenceID:        tx.ReferenceID,
		ActorName:          tx.CreatedByName,
		TransactionDate:    tx.TransactionDate,
	}
	if err := w.history.Create(ctx, mirror); err != nil {
		return nil, err
	}

	return tx, nil
}

// Rebuild recomputes the balance for one key from the ledger alone. It is
// used by reconciliation checks; committed state must always match.
func (w *Writer) Rebuild(ctx context.Context, tenantID, variationID, locationID uuid.UUID) (decimal.Decimal, error) {
	return w.transactions.SumDeltas(ctx, tenantID, variationID, locationID)
}

func (m Movement) validate() error {
	if !m.Actor.Valid() {
		return shared.NewDomainError("INVALID_ACTOR", "Actor tenant and user are required")
	}
	if m.ProductID == uuid.Nil || m.VariationID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product and variation IDs are required")
	}
	if m.LocationID == uuid.Nil {
		return shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	if !m.Type.IsValid() {
		return shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if m.Delta.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity delta cannot be zero")
	}
	if m.UnitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if m.Reference.Kind != "" && !m.Reference.Kind.IsValid() {
		return shared.NewDomainError("INVALID_REFERENCE", "Invalid reference kind")
	}
	return nil
}
