package serial

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
)

// SerialUnitRepository defines persistence for serialized units
type SerialUnitRepository interface {
	// FindBySerialNumber finds one unit by its serial number
	FindBySerialNumber(ctx context.Context, tenantID uuid.UUID, serialNumber string) (*SerialUnit, error)

	// FindBySerialNumbersForUpdate finds the units matching any of the given
	// serial numbers and locks the matched rows until the enclosing
	// transaction ends. The collision check for incoming serials must use
	// this inside the intake transaction; a pre-check outside it is a race
	// window.
	FindBySerialNumbersForUpdate(ctx context.Context, tenantID uuid.UUID, serialNumbers []string) ([]SerialUnit, error)

	// FindByReceipt lists units brought in by one goods receipt
	FindByReceipt(ctx context.Context, tenantID, receiptID uuid.UUID) ([]SerialUnit, error)

	// Upsert creates the unit or, when (tenant, serial number) already
	// exists, overwrites the existing row with the given state. On
	// overwrite the stored row's ID and CreatedAt are written back into
	// unit so callers always hold the surviving identity.
	Upsert(ctx context.Context, unit *SerialUnit) error

	// Save persists changes to an existing unit
	Save(ctx context.Context, unit *SerialUnit) error

	// FindForTenant lists units with filtering
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SerialUnit, error)
}

// SerialMovementRepository defines persistence for the append-only movement trail
type SerialMovementRepository interface {
	// Create appends a movement
	Create(ctx context.Context, movement *SerialMovement) error

	// FindBySerialUnit lists movements for one unit, oldest first
	FindBySerialUnit(ctx context.Context, serialUnitID uuid.UUID) ([]SerialMovement, error)
}
