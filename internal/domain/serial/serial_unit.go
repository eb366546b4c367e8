package serial

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a serialized unit
type Status string

const (
	StatusInStock           Status = "IN_STOCK"
	StatusSold              Status = "SOLD"
	StatusReturned          Status = "RETURNED"
	StatusReplacementIssued Status = "REPLACEMENT_ISSUED"
	StatusScrapped          Status = "SCRAPPED"
)

// IsValid returns true if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusInStock, StatusSold, StatusReturned, StatusReplacementIssued, StatusScrapped:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// WarrantyUnit is the unit of a warranty duration
type WarrantyUnit string

const (
	WarrantyUnitDays   WarrantyUnit = "DAYS"
	WarrantyUnitMonths WarrantyUnit = "MONTHS"
	WarrantyUnitYears  WarrantyUnit = "YEARS"
)

// IsValid returns true if the warranty unit is valid
func (u WarrantyUnit) IsValid() bool {
	switch u {
	case WarrantyUnitDays, WarrantyUnitMonths, WarrantyUnitYears:
		return true
	}
	return false
}

// WarrantyConfig is the product's configured warranty duration. Warranty
// dates on a unit are derived from it once at intake and stored; later
// config changes never touch already-issued warranties.
type WarrantyConfig struct {
	Duration int
	Unit     WarrantyUnit
}

// Enabled reports whether a warranty window should be derived at all
func (c WarrantyConfig) Enabled() bool {
	return c.Duration > 0 && c.Unit.IsValid()
}

// EndDate derives the warranty end from a start date
func (c WarrantyConfig) EndDate(start time.Time) time.Time {
	switch c.Unit {
	case WarrantyUnitDays:
		return start.AddDate(0, 0, c.Duration)
	case WarrantyUnitMonths:
		return start.AddDate(0, c.Duration, 0)
	case WarrantyUnitYears:
		return start.AddDate(c.Duration, 0, 0)
	}
	return start
}

// SerialUnit is one physically tracked inventory item, unique per
// (tenant, serial number). Fungible bulk quantity lives in the ledger;
// serialized units additionally track per-item state here.
type SerialUnit struct {
	shared.BaseEntity
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_serial_tenant_number,priority:1"`
	SerialNumber      string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_serial_tenant_number,priority:2"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariationID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status            Status          `gorm:"type:varchar(30);not null;index"`
	Condition         string          `gorm:"type:varchar(50);not null;default:'NEW'"`
	CurrentLocationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceiptID         *uuid.UUID      `gorm:"type:uuid;index"` // Goods receipt that brought the unit in
	SupplierID        *uuid.UUID      `gorm:"type:uuid"`
	PurchaseCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WarrantyStartDate *time.Time      `gorm:"type:timestamptz"`
	WarrantyEndDate   *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (SerialUnit) TableName() string {
	return "serial_units"
}

// UnderWarranty reports whether the unit's warranty window covers the given time
func (u *SerialUnit) UnderWarranty(at time.Time) bool {
	if u.WarrantyStartDate == nil || u.WarrantyEndDate == nil {
		return false
	}
	return !at.Before(*u.WarrantyStartDate) && !at.After(*u.WarrantyEndDate)
}

// MovementType classifies a serialized unit movement
type MovementType string

const (
	MovementTypeReceipt     MovementType = "RECEIPT"
	MovementTypeSale        MovementType = "SALE"
	MovementTypeReturn      MovementType = "RETURN"
	MovementTypeReplacement MovementType = "REPLACEMENT"
	MovementTypeTransfer    MovementType = "TRANSFER"
)

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeReceipt, MovementTypeSale, MovementTypeReturn, MovementTypeReplacement, MovementTypeTransfer:
		return true
	}
	return false
}

// SerialMovement records one lifecycle transition of a serialized unit; the
// serialized analogue of a StockTransaction. Append-only.
type SerialMovement struct {
	shared.BaseEntity
	TenantID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	SerialUnitID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	SerialNumber   string       `gorm:"type:varchar(100);not null;index"`
	MovementType   MovementType `gorm:"type:varchar(30);not null"`
	FromStatus     Status       `gorm:"type:varchar(30)"`
	ToStatus       Status       `gorm:"type:varchar(30);not null"`
	FromLocationID *uuid.UUID   `gorm:"type:uuid"`
	ToLocationID   *uuid.UUID   `gorm:"type:uuid"`
	ReferenceKind  string       `gorm:"type:varchar(30)"`
	ReferenceID    *uuid.UUID   `gorm:"type:uuid;index"`
	MovedByID      *uuid.UUID   `gorm:"type:uuid"`
	MovedByName    string       `gorm:"type:varchar(100)"`
	Notes          string       `gorm:"type:varchar(500)"`
	MovedAt        time.Time    `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (SerialMovement) TableName() string {
	return "serial_movements"
}
