package costing

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CostBasis holds the moving weighted-average purchase cost of one product
// variation, together with denormalized last-purchase fields kept for
// reporting. It is updated only by the Calculator, never directly: the
// average depends on the variation's global on-hand quantity, so writes must
// serialize on this row.
type CostBasis struct {
	shared.BaseEntity
	TenantID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cost_basis_tenant_variation,priority:1"`
	ProductID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariationID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cost_basis_tenant_variation,priority:2"`
	PurchasePrice        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Weighted-average unit cost
	LastPurchaseDate     *time.Time      `gorm:"type:timestamptz"`
	LastPurchaseCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastPurchaseQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastSupplierID       *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CostBasis) TableName() string {
	return "cost_bases"
}

// NewCostBasis creates a zero cost basis for a variation
func NewCostBasis(tenantID, productID, variationID uuid.UUID) *CostBasis {
	return &CostBasis{
		BaseEntity:           shared.NewBaseEntity(),
		TenantID:             tenantID,
		ProductID:            productID,
		VariationID:          variationID,
		PurchasePrice:        decimal.Zero,
		LastPurchaseCost:     decimal.Zero,
		LastPurchaseQuantity: decimal.Zero,
	}
}
