package query

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/costing"
	"github.com/retailops/backend/internal/domain/ledger"
	"github.com/retailops/backend/internal/domain/serial"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Service serves the read side: ledger history, balances, serial lookups and
// the balance audit. It works on the plain repositories, no transaction.
type Service struct {
	transactions ledger.StockTransactionRepository
	balances     ledger.LocationBalanceRepository
	costs        costing.CostBasisRepository
	serials      serial.SerialUnitRepository
	serialMoves  serial.SerialMovementRepository
}

// NewService creates a query service
func NewService(
	transactions ledger.StockTransactionRepository,
	balances ledger.LocationBalanceRepository,
	costs costing.CostBasisRepository,
	serials serial.SerialUnitRepository,
	serialMoves serial.SerialMovementRepository,
) *Service {
	return &Service{
		transactions: transactions,
		balances:     balances,
		costs:        costs,
		serials:      serials,
		serialMoves:  serialMoves,
	}
}

// StockHistory lists the ledger entries for a variation at a location,
// newest first
func (s *Service) StockHistory(ctx context.Context, tenantID, variationID, locationID uuid.UUID, filter shared.Filter) ([]ledger.StockTransaction, error) {
	return s.transactions.FindByVariationAndLocation(ctx, tenantID, variationID, locationID, filter)
}

// CurrentBalance returns the projected balance for a variation at a location.
// A missing row means zero, not an error.
func (s *Service) CurrentBalance(ctx context.Context, tenantID, variationID, locationID uuid.UUID) (decimal.Decimal, error) {
	balance, err := s.balances.FindByVariationAndLocation(ctx, tenantID, variationID, locationID)
	if err != nil {
		if shared.IsCode(err, "NOT_FOUND") {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return balance.QtyAvailable, nil
}

// CurrentCost returns the weighted-average cost for a variation, zero when
// no purchase has established one
func (s *Service) CurrentCost(ctx context.Context, tenantID, variationID uuid.UUID) (decimal.Decimal, error) {
	basis, err := s.costs.FindByVariation(ctx, tenantID, variationID)
	if err != nil {
		if shared.IsCode(err, "NOT_FOUND") {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return basis.PurchasePrice, nil
}

// BalanceAudit is the projection-vs-ledger comparison for one balance
type BalanceAudit struct {
	VariationID uuid.UUID       `json:"variationId"`
	LocationID  uuid.UUID       `json:"locationId"`
	Projected   decimal.Decimal `json:"projected"`
	LedgerSum   decimal.Decimal `json:"ledgerSum"`
	InSync      bool            `json:"inSync"`
}

// AuditBalance compares the projected balance against the sum of ledger
// deltas. The two drifting apart means a write bypassed the ledger writer.
func (s *Service) AuditBalance(ctx context.Context, tenantID, variationID, locationID uuid.UUID) (*BalanceAudit, error) {
	projected, err := s.CurrentBalance(ctx, tenantID, variationID, locationID)
	if err != nil {
		return nil, err
	}
	sum, err := s.transactions.SumDeltas(ctx, tenantID, variationID, locationID)
	if err != nil {
		return nil, err
	}
	return &BalanceAudit{
		VariationID: variationID,
		LocationID:  locationID,
		Projected:   projected,
		LedgerSum:   sum,
		InSync:      projected.Equal(sum),
	}, nil
}

// SerialDetail is a serialized unit with its movement trail
type SerialDetail struct {
	Unit      serial.SerialUnit       `json:"unit"`
	Movements []serial.SerialMovement `json:"movements"`
}

// LookupSerial finds a serialized unit by serial number with its full trail
func (s *Service) LookupSerial(ctx context.Context, tenantID uuid.UUID, serialNumber string) (*SerialDetail, error) {
	unit, err := s.serials.FindBySerialNumber(ctx, tenantID, serialNumber)
	if err != nil {
		return nil, err
	}
	movements, err := s.serialMoves.FindBySerialUnit(ctx, unit.ID)
	if err != nil {
		return nil, err
	}
	return &SerialDetail{Unit: *unit, Movements: movements}, nil
}
