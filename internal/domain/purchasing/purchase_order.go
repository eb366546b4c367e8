package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the purchase order lifecycle state
type OrderStatus string

const (
	OrderStatusDraft             OrderStatus = "DRAFT"
	OrderStatusConfirmed         OrderStatus = "CONFIRMED"
	OrderStatusPartiallyReceived OrderStatus = "PARTIALLY_RECEIVED"
	OrderStatusReceived          OrderStatus = "RECEIVED"
	OrderStatusCancelled         OrderStatus = "CANCELLED"
)

// IsValid returns true if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusPartiallyReceived, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if transition to target status is allowed
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusDraft:             {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed:         {OrderStatusPartiallyReceived, OrderStatusReceived, OrderStatusCancelled},
		OrderStatusPartiallyReceived: {OrderStatusReceived},
		OrderStatusReceived:          {},
		OrderStatusCancelled:         {},
	}
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// PurchaseOrder is the commercial agreement with a supplier. Goods receipts
// record physical arrival against it; received counters on the lines roll
// the order status up to PARTIALLY_RECEIVED or RECEIVED.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber      string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_po_tenant_number,priority:2"`
	SupplierID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	SupplierName     string              `gorm:"type:varchar(200);not null"`
	Status           OrderStatus         `gorm:"type:varchar(30);not null;index"`
	OrderDate        time.Time           `gorm:"type:timestamptz;not null"`
	ExpectedDate     *time.Time          `gorm:"type:timestamptz"`
	PaymentTermsDays int                 `gorm:"not null;default:30"`
	Currency         string              `gorm:"type:varchar(3);not null;default:'USD'"`
	TotalAmount      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Notes            string              `gorm:"type:varchar(1000)"`
	Items            []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderItem is one ordered line
type PurchaseOrderItem struct {
	shared.BaseEntity
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	VariationID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	SKU              string          `gorm:"type:varchar(100)"`
	OrderedQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// IsFullyReceived checks whether the line's received quantity covers the order
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.ReceivedQuantity.GreaterThanOrEqual(i.OrderedQuantity)
}

// NewPurchaseOrder creates a confirmed purchase order
func NewPurchaseOrder(tenantID, supplierID uuid.UUID, supplierName, orderNumber string, paymentTermsDays int) (*PurchaseOrder, error) {
	if tenantID == uuid.Nil || supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenant and supplier are required")
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order number cannot be empty")
	}
	if paymentTermsDays <= 0 {
		paymentTermsDays = 30
	}
	return &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		SupplierID:          supplierID,
		SupplierName:        supplierName,
		Status:              OrderStatusConfirmed,
		OrderDate:           time.Now(),
		PaymentTermsDays:    paymentTermsDays,
		Currency:            "USD",
		TotalAmount:         decimal.Zero,
	}, nil
}

// AddItem appends an ordered line and recomputes the order total
func (po *PurchaseOrder) AddItem(productID, variationID uuid.UUID, productName, sku string, quantity, unitCost decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Ordered quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Unit cost cannot be negative")
	}
	item := PurchaseOrderItem{
		BaseEntity:       shared.NewBaseEntity(),
		PurchaseOrderID:  po.ID,
		ProductID:        productID,
		VariationID:      variationID,
		ProductName:      productName,
		SKU:              sku,
		OrderedQuantity:  quantity,
		ReceivedQuantity: decimal.Zero,
		UnitCost:         unitCost,
	}
	po.Items = append(po.Items, item)
	po.TotalAmount = po.TotalAmount.Add(quantity.Mul(unitCost))
	return nil
}

// AddReceivedQuantity accumulates received quantity onto the matching line.
// Over-receipt against a single line is allowed; suppliers ship extras.
func (po *PurchaseOrder) AddReceivedQuantity(variationID uuid.UUID, quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Received quantity must be positive")
	}
	for i := range po.Items {
		if po.Items[i].VariationID == variationID {
			po.Items[i].ReceivedQuantity = po.Items[i].ReceivedQuantity.Add(quantity)
			return nil
		}
	}
	return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Variation %s is not on purchase order %s", variationID, po.OrderNumber))
}

// RollUpReceivingStatus recomputes the order status from line counters.
// Returns true when the status changed.
func (po *PurchaseOrder) RollUpReceivingStatus() (bool, error) {
	if po.Status == OrderStatusCancelled || po.Status == OrderStatusDraft {
		return false, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive against purchase order in status %s", po.Status))
	}

	allReceived := true
	anyReceived := false
	for i := range po.Items {
		if po.Items[i].ReceivedQuantity.GreaterThan(decimal.Zero) {
			anyReceived = true
		}
		if !po.Items[i].IsFullyReceived() {
			allReceived = false
		}
	}

	target := po.Status
	switch {
	case allReceived && len(po.Items) > 0:
		target = OrderStatusReceived
	case anyReceived:
		target = OrderStatusPartiallyReceived
	}
	if target == po.Status {
		return false, nil
	}
	if !po.Status.CanTransitionTo(target) {
		return false, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot transition purchase order from %s to %s", po.Status, target))
	}
	po.Status = target
	po.IncrementVersion()
	return true, nil
}

// Cancel cancels the order before any goods have arrived
func (po *PurchaseOrder) Cancel() error {
	if !po.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel purchase order in status %s", po.Status))
	}
	po.Status = OrderStatusCancelled
	po.IncrementVersion()
	return nil
}
