package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
)

// AccountPayableRepository defines persistence for payables
type AccountPayableRepository interface {
	// FindByID loads a payable
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*AccountPayable, error)

	// FindByPurchaseOrder loads the payable created for one purchase order,
	// shared.ErrNotFound when none exists yet
	FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) (*AccountPayable, error)

	// ExistsForPurchaseOrder reports whether a payable was already created
	// for the order
	ExistsForPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) (bool, error)

	// Create persists a new payable
	Create(ctx context.Context, payable *AccountPayable) error

	// Save persists changes to a payable
	Save(ctx context.Context, payable *AccountPayable) error

	// FindForTenant lists payables with filtering
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[AccountPayable], error)
}
