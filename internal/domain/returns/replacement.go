package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Replacement is the zero-priced issue of goods against a customer return.
// It carries no revenue; the stock leaves at cost and the customer pays
// nothing. One replacement per return, enforced by the return aggregate.
type Replacement struct {
	shared.TenantAggregateRoot
	ReplacementNumber string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_replacement_tenant_number,priority:2"`
	CustomerReturnID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
	SaleID            *uuid.UUID        `gorm:"type:uuid;index"` // Original sale, carried from the return
	CustomerID        *uuid.UUID        `gorm:"type:uuid;index"`
	CustomerName      string            `gorm:"type:varchar(200)"`
	LocationID        uuid.UUID         `gorm:"type:uuid;not null"`
	IssuedAt          time.Time         `gorm:"type:timestamptz;not null"`
	IssuedByID        *uuid.UUID        `gorm:"type:uuid"`
	IssuedByName      string            `gorm:"type:varchar(100)"`
	TotalCost         decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Notes             string            `gorm:"type:varchar(1000)"`
	Lines             []ReplacementLine `gorm:"foreignKey:ReplacementID"`
}

// TableName returns the table name for GORM
func (Replacement) TableName() string {
	return "replacements"
}

// ReplacementLine is one issued item. UnitPrice is always zero; UnitCost is
// carried from the matching return line so the outbound movement values
// stock at the original cost.
type ReplacementLine struct {
	shared.BaseEntity
	ReplacementID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	VariationID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName   string          `gorm:"type:varchar(200);not null"`
	SerialNumber  string          `gorm:"type:varchar(100)"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ReplacementLine) TableName() string {
	return "replacement_lines"
}

// NewReplacement builds a replacement from the return it fulfils, carrying
// the original sale's customer and copying every line at zero price and
// original cost
func NewReplacement(cr *CustomerReturn, replacementNumber string, issuedBy shared.Actor, at time.Time) (*Replacement, error) {
	if replacementNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Replacement number cannot be empty")
	}
	if len(cr.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer return has no lines to replace")
	}

	r := &Replacement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(cr.TenantID),
		ReplacementNumber:   replacementNumber,
		CustomerReturnID:    cr.ID,
		SaleID:              cr.SaleID,
		CustomerID:          cr.CustomerID,
		CustomerName:        cr.CustomerName,
		LocationID:          cr.LocationID,
		IssuedAt:            at,
		IssuedByID:          &issuedBy.UserID,
		IssuedByName:        issuedBy.DisplayName,
		TotalCost:           decimal.Zero,
	}
	for i := range cr.Lines {
		src := &cr.Lines[i]
		r.Lines = append(r.Lines, ReplacementLine{
			BaseEntity:    shared.NewBaseEntity(),
			ReplacementID: r.ID,
			ProductID:     src.ProductID,
			VariationID:   src.VariationID,
			ProductName:   src.ProductName,
			SerialNumber:  src.SerialNumber,
			Quantity:      src.Quantity,
			UnitPrice:     decimal.Zero,
			UnitCost:      src.UnitCost,
		})
		r.TotalCost = r.TotalCost.Add(src.Quantity.Mul(src.UnitCost))
	}
	return r, nil
}
