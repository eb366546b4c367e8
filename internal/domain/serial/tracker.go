package serial

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Intake carries everything needed to register one serialized unit on receipt
type Intake struct {
	Actor        shared.Actor
	SerialNumber string
	ProductID    uuid.UUID
	VariationID  uuid.UUID
	LocationID   uuid.UUID
	ReceiptID    uuid.UUID
	SupplierID   *uuid.UUID
	PurchaseCost decimal.Decimal
	Warranty     WarrantyConfig
	ReceivedAt   time.Time
}

// Transition moves one unit to a new status, optionally relocating it
type Transition struct {
	Actor         shared.Actor
	SerialNumber  string
	ToStatus      Status
	ToLocationID  *uuid.UUID
	MovementType  MovementType
	ReferenceKind string
	ReferenceID   *uuid.UUID
	Notes         string
	MovedAt       time.Time
}

// Tracker maintains serialized-unit state alongside the quantity ledger.
// All mutating calls are expected to run inside the caller's transaction.
type Tracker struct {
	units     SerialUnitRepository
	movements SerialMovementRepository
}

// NewTracker creates a serialized-unit tracker
func NewTracker(units SerialUnitRepository, movements SerialMovementRepository) *Tracker {
	return &Tracker{units: units, movements: movements}
}

// CheckAvailable verifies that none of the incoming serial numbers already
// exists for the tenant under a different receipt. Matched rows stay locked,
// so a concurrent intake of the same serials blocks rather than racing. A
// serial already registered by the same receipt is not a conflict; re-running
// an intake is idempotent.
func (t *Tracker) CheckAvailable(ctx context.Context, tenantID, receiptID uuid.UUID, serialNumbers []string) error {
	if len(serialNumbers) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(serialNumbers))
	for _, sn := range serialNumbers {
		if sn == "" {
			return shared.NewDomainError("INVALID_INPUT", "Serial number cannot be empty")
		}
		if _, dup := seen[sn]; dup {
			return shared.NewDomainError("DUPLICATE_SERIAL", fmt.Sprintf("Serial number %s appears more than once in the request", sn))
		}
		seen[sn] = struct{}{}
	}

	existing, err := t.units.FindBySerialNumbersForUpdate(ctx, tenantID, serialNumbers)
	if err != nil {
		return err
	}
	for i := range existing {
		unit := &existing[i]
		if unit.ReceiptID == nil || *unit.ReceiptID != receiptID {
			return shared.NewDomainError("DUPLICATE_SERIAL", fmt.Sprintf("Serial number %s is already registered", unit.SerialNumber))
		}
	}
	return nil
}

// Register brings one serialized unit into stock. The warranty window is
// derived from the product's config at this moment and stored on the unit.
// Upsert semantics make a re-run for the same receipt overwrite rather than
// collide; CheckAvailable has already rejected foreign duplicates.
func (t *Tracker) Register(ctx context.Context, in Intake) (*SerialUnit, error) {
	if !in.Actor.Valid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Actor is required")
	}
	if in.SerialNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Serial number cannot be empty")
	}
	if in.VariationID == uuid.Nil || in.LocationID == uuid.Nil || in.ReceiptID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Variation, location and receipt are required")
	}

	receiptID := in.ReceiptID
	unit := &SerialUnit{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          in.Actor.TenantID,
		SerialNumber:      in.SerialNumber,
		ProductID:         in.ProductID,
		VariationID:       in.VariationID,
		Status:            StatusInStock,
		Condition:         "NEW",
		CurrentLocationID: in.LocationID,
		ReceiptID:         &receiptID,
		SupplierID:        in.SupplierID,
		PurchaseCost:      in.PurchaseCost,
	}
	if in.Warranty.Enabled() {
		start := in.ReceivedAt
		end := in.Warranty.EndDate(start)
		unit.WarrantyStartDate = &start
		unit.WarrantyEndDate = &end
	}

	if err := t.units.Upsert(ctx, unit); err != nil {
		return nil, err
	}

	locationID := in.LocationID
	movement := &SerialMovement{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      in.Actor.TenantID,
		SerialUnitID:  unit.ID,
		SerialNumber:  unit.SerialNumber,
		MovementType:  MovementTypeReceipt,
		ToStatus:      StatusInStock,
		ToLocationID:  &locationID,
		ReferenceKind: "GOODS_RECEIPT",
		ReferenceID:   &receiptID,
		MovedByID:     &in.Actor.UserID,
		MovedByName:   in.Actor.DisplayName,
		MovedAt:       in.ReceivedAt,
	}
	if err := t.movements.Create(ctx, movement); err != nil {
		return nil, err
	}
	return unit, nil
}

// Move transitions one unit to a new status and records the trail entry
func (t *Tracker) Move(ctx context.Context, tr Transition) (*SerialUnit, error) {
	if !tr.Actor.Valid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Actor is required")
	}
	if !tr.ToStatus.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Invalid serial status: %s", tr.ToStatus))
	}
	if !tr.MovementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Invalid serial movement type: %s", tr.MovementType))
	}

	unit, err := t.units.FindBySerialNumber(ctx, tr.Actor.TenantID, tr.SerialNumber)
	if err != nil {
		return nil, err
	}

	fromStatus := unit.Status
	fromLocation := unit.CurrentLocationID
	unit.Status = tr.ToStatus
	if tr.ToLocationID != nil {
		unit.CurrentLocationID = *tr.ToLocationID
	}
	if err := t.units.Save(ctx, unit); err != nil {
		return nil, err
	}

	movedAt := tr.MovedAt
	if movedAt.IsZero() {
		movedAt = time.Now()
	}
	movement := &SerialMovement{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tr.Actor.TenantID,
		SerialUnitID:   unit.ID,
		SerialNumber:   unit.SerialNumber,
		MovementType:   tr.MovementType,
		FromStatus:     fromStatus,
		ToStatus:       tr.ToStatus,
		FromLocationID: &fromLocation,
		ToLocationID:   tr.ToLocationID,
		ReferenceKind:  tr.ReferenceKind,
		ReferenceID:    tr.ReferenceID,
		MovedByID:      &tr.Actor.UserID,
		MovedByName:    tr.Actor.DisplayName,
		Notes:          tr.Notes,
		MovedAt:        movedAt,
	}
	if err := t.movements.Create(ctx, movement); err != nil {
		return nil, err
	}
	return unit, nil
}
