package costing

import (
	"context"

	"github.com/google/uuid"
)

// CostBasisRepository defines persistence for variation cost bases
type CostBasisRepository interface {
	// FindByVariation finds the cost basis without locking it
	FindByVariation(ctx context.Context, tenantID, variationID uuid.UUID) (*CostBasis, error)

	// GetOrCreateForUpdate returns the cost basis for the variation, creating
	// a zero row if absent, holding a row-level write lock until the
	// enclosing transaction ends. Concurrent receipts for the same variation
	// serialize here so the weighted average never loses an update.
	GetOrCreateForUpdate(ctx context.Context, tenantID, productID, variationID uuid.UUID) (*CostBasis, error)

	// Save persists cost basis changes
	Save(ctx context.Context, basis *CostBasis) error
}
