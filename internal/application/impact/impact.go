package impact

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/ledger"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Line is the before/after picture of one (variation, location) touched by
// an operation
type Line struct {
	ProductID   uuid.UUID       `json:"productId"`
	VariationID uuid.UUID       `json:"variationId"`
	LocationID  uuid.UUID       `json:"locationId"`
	Before      decimal.Decimal `json:"before"`
	After       decimal.Decimal `json:"after"`
	Delta       decimal.Decimal `json:"delta"`
	CostBefore  decimal.Decimal `json:"costBefore"`
	CostAfter   decimal.Decimal `json:"costAfter"`
}

// Report summarizes the stock effect of one operation for the response body.
// It is informational: captured outside the mutating transaction, so a
// concurrent writer can skew it, and a capture failure never fails the
// operation itself.
type Report struct {
	Lines           []Line          `json:"lines"`
	TotalValueDelta decimal.Decimal `json:"totalValueDelta"`
}

// CostReader reads the current weighted-average cost of a variation
type CostReader interface {
	CurrentCost(ctx context.Context, tenantID, variationID uuid.UUID) (decimal.Decimal, error)
}

// Key identifies one balance to watch
type Key struct {
	ProductID   uuid.UUID
	VariationID uuid.UUID
	LocationID  uuid.UUID
}

// Tracker captures balances around an operation. CaptureBefore runs before
// the transaction opens and Finish after it commits; neither holds locks.
type Tracker struct {
	balances ledger.LocationBalanceRepository
	costs    CostReader
	logger   *zap.Logger
}

// NewTracker creates an impact tracker
func NewTracker(balances ledger.LocationBalanceRepository, costs CostReader, logger *zap.Logger) *Tracker {
	return &Tracker{balances: balances, costs: costs, logger: logger}
}

// Snapshot holds the before-picture between the two capture calls
type Snapshot struct {
	tenantID uuid.UUID
	keys     []Key
	before   map[Key]decimal.Decimal
	cost     map[uuid.UUID]decimal.Decimal
}

// CaptureBefore reads the current balances and costs for the given keys. A
// read failure is logged and yields zero baselines; the report degrades, the
// operation does not.
func (t *Tracker) CaptureBefore(ctx context.Context, tenantID uuid.UUID, keys []Key) *Snapshot {
	snap := &Snapshot{
		tenantID: tenantID,
		keys:     keys,
		before:   make(map[Key]decimal.Decimal, len(keys)),
		cost:     make(map[uuid.UUID]decimal.Decimal, len(keys)),
	}
	for _, k := range keys {
		snap.before[k] = t.readBalance(ctx, tenantID, k)
		if _, seen := snap.cost[k.VariationID]; !seen {
			snap.cost[k.VariationID] = t.readCost(ctx, tenantID, k.VariationID)
		}
	}
	return snap
}

// Finish re-reads the balances and costs and builds the report
func (t *Tracker) Finish(ctx context.Context, snap *Snapshot) *Report {
	report := &Report{TotalValueDelta: decimal.Zero}
	costAfter := make(map[uuid.UUID]decimal.Decimal, len(snap.cost))
	for _, k := range snap.keys {
		after := t.readBalance(ctx, snap.tenantID, k)
		if _, seen := costAfter[k.VariationID]; !seen {
			costAfter[k.VariationID] = t.readCost(ctx, snap.tenantID, k.VariationID)
		}
		before := snap.before[k]
		delta := after.Sub(before)
		line := Line{
			ProductID:   k.ProductID,
			VariationID: k.VariationID,
			LocationID:  k.LocationID,
			Before:      before,
			After:       after,
			Delta:       delta,
			CostBefore:  snap.cost[k.VariationID],
			CostAfter:   costAfter[k.VariationID],
		}
		report.Lines = append(report.Lines, line)
		report.TotalValueDelta = report.TotalValueDelta.Add(
			after.Mul(costAfter[k.VariationID]).Sub(before.Mul(snap.cost[k.VariationID])))
	}
	return report
}

func (t *Tracker) readBalance(ctx context.Context, tenantID uuid.UUID, k Key) decimal.Decimal {
	balance, err := t.balances.FindByVariationAndLocation(ctx, tenantID, k.VariationID, k.LocationID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			t.logger.Warn("impact capture failed to read balance",
				zap.String("variationId", k.VariationID.String()),
				zap.String("locationId", k.LocationID.String()),
				zap.Error(err))
		}
		return decimal.Zero
	}
	return balance.QtyAvailable
}

func (t *Tracker) readCost(ctx context.Context, tenantID, variationID uuid.UUID) decimal.Decimal {
	cost, err := t.costs.CurrentCost(ctx, tenantID, variationID)
	if err != nil {
		t.logger.Warn("impact capture failed to read cost",
			zap.String("variationId", variationID.String()),
			zap.Error(err))
		return decimal.Zero
	}
	return cost
}
