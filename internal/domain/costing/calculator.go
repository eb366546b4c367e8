package costing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/ledger"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Receipt describes incoming stock whose cost must be folded into the average
type Receipt struct {
	TenantID    uuid.UUID
	ProductID   uuid.UUID
	VariationID uuid.UUID
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Date        time.Time
	SupplierID  *uuid.UUID
}

// Calculator recomputes a variation's moving weighted-average cost whenever
// new stock enters. It must run after the incoming movement has been applied
// to balances, inside the same transaction, because the formula uses the
// authoritative post-movement total summed across all locations.
type Calculator struct {
	costs    CostBasisRepository
	balances ledger.LocationBalanceRepository
}

// NewCalculator creates a cost calculator over transaction-scoped repositories
func NewCalculator(costs CostBasisRepository, balances ledger.LocationBalanceRepository) *Calculator {
	return &Calculator{costs: costs, balances: balances}
}

// RecomputeOnReceipt folds the incoming receipt into the weighted average and
// refreshes the denormalized last-purchase fields. Returns the new unit cost.
//
//	previousTotal = globalTotalNow - incomingQty
//	previousTotal <= 0:  newCost = incomingCost            (bootstrap)
//	otherwise:           newCost = (previousTotal*currentCost + incomingQty*incomingCost) / globalTotalNow
func (c *Calculator) RecomputeOnReceipt(ctx context.Context, r Receipt) (decimal.Decimal, error) {
	if r.Quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Incoming quantity must be positive")
	}
	if r.UnitCost.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_COST", "Incoming unit cost cannot be negative")
	}

	basis, err := c.costs.GetOrCreateForUpdate(ctx, r.TenantID, r.ProductID, r.VariationID)
	if err != nil {
		return decimal.Zero, err
	}

	totalNow, err := c.balances.SumByVariation(ctx, r.TenantID, r.VariationID)
	if err != nil {
		return decimal.Zero, err
	}

	previousTotal := totalNow.Sub(r.Quantity)

	var newCost decimal.Decimal
	if previousTotal.LessThanOrEqual(decimal.Zero) {
		// No prior stock (or negative due to timing): the incoming cost wins
		newCost = r.UnitCost
	} else {
		totalValue := previousTotal.Mul(basis.PurchasePrice).Add(r.Quantity.Mul(r.UnitCost))
		newCost = totalValue.Div(totalNow).Round(4)
	}

	date := r.Date
	if date.IsZero() {
		date = time.Now()
	}

	basis.PurchasePrice = newCost
	basis.LastPurchaseDate = &date
	basis.LastPurchaseCost = r.UnitCost
	basis.LastPurchaseQuantity = r.Quantity
	basis.LastSupplierID = r.SupplierID
	basis.UpdatedAt = time.Now()

	if err := c.costs.Save(ctx, basis); err != nil {
		return decimal.Zero, err
	}

	return newCost, nil
}

// CurrentCost returns the variation's current weighted-average cost, zero if
// no stock has ever been received
func (c *Calculator) CurrentCost(ctx context.Context, tenantID, variationID uuid.UUID) (decimal.Decimal, error) {
	basis, err := c.costs.FindByVariation(ctx, tenantID, variationID)
	if err != nil {
		if err == shared.ErrNotFound {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return basis.PurchasePrice, nil
}
