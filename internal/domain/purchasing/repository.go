package purchasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines persistence for purchase orders
type PurchaseOrderRepository interface {
	// FindByID loads an order with its items
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDForUpdate loads an order with its items and locks the order row
	// until the enclosing transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByOrderNumber loads an order by its human-facing number
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*PurchaseOrder, error)

	// Create persists a new order with its items
	Create(ctx context.Context, order *PurchaseOrder) error

	// Save persists changes to the order and its items
	Save(ctx context.Context, order *PurchaseOrder) error

	// FindForTenant lists orders with filtering
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[PurchaseOrder], error)
}

// GoodsReceiptRepository defines persistence for goods receipts
type GoodsReceiptRepository interface {
	// FindByID loads a receipt with its lines
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*GoodsReceipt, error)

	// FindByIDForUpdate loads a receipt with its lines and locks the receipt
	// row until the enclosing transaction ends. Approval must re-load through
	// this inside the transaction; the status it saw outside is stale.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*GoodsReceipt, error)

	// FindByPurchaseOrder lists receipts recorded against one order
	FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]GoodsReceipt, error)

	// Create persists a new receipt with its lines
	Create(ctx context.Context, receipt *GoodsReceipt) error

	// Save persists changes to the receipt
	Save(ctx context.Context, receipt *GoodsReceipt) error

	// FindForTenant lists receipts with filtering
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[GoodsReceipt], error)
}
