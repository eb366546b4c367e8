package returns

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
)

// CustomerReturnRepository defines persistence for customer returns
type CustomerReturnRepository interface {
	// FindByID loads a return with its lines
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomerReturn, error)

	// FindByIDForUpdate loads a return with its lines and locks the return
	// row until the enclosing transaction ends. Both approval and replacement
	// issue go through this; the ReplacementIssued flag is only trustworthy
	// under the lock.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*CustomerReturn, error)

	// Create persists a new return with its lines
	Create(ctx context.Context, cr *CustomerReturn) error

	// Save persists changes to the return
	Save(ctx context.Context, cr *CustomerReturn) error

	// FindForTenant lists returns with filtering
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[CustomerReturn], error)
}

// ReplacementRepository defines persistence for replacements
type ReplacementRepository interface {
	// FindByID loads a replacement with its lines
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Replacement, error)

	// FindByReturn loads the replacement issued against one return
	FindByReturn(ctx context.Context, tenantID, customerReturnID uuid.UUID) (*Replacement, error)

	// Create persists a new replacement with its lines
	Create(ctx context.Context, r *Replacement) error
}
