package receiving

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/impact"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ApproveReceiptCommand approves a pending goods receipt, posting its lines
// to stock
type ApproveReceiptCommand struct {
	Actor          shared.Actor
	ReceiptID      uuid.UUID `json:"receiptId" binding:"required"`
	IdempotencyKey string    `json:"-"`
	Payload        []byte    `json:"-"`
}

// RejectReceiptCommand rejects a pending goods receipt
type RejectReceiptCommand struct {
	Actor     shared.Actor
	ReceiptID uuid.UUID `json:"receiptId" binding:"required"`
	Reason    string    `json:"reason" binding:"required,max=500"`
}

// LineResult is the per-line outcome of an approval
type LineResult struct {
	VariationID  uuid.UUID       `json:"variationId"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	NewAvgCost   decimal.Decimal `json:"newAvgCost"`
	SerialCount  int             `json:"serialCount,omitempty"`
}

// ApprovalResult is the response body for a receipt approval
type ApprovalResult struct {
	ReceiptID           uuid.UUID      `json:"receiptId"`
	ReceiptNumber       string         `json:"receiptNumber"`
	Status              string         `json:"status"`
	ApprovedAt          time.Time      `json:"approvedAt"`
	PurchaseOrderID     uuid.UUID      `json:"purchaseOrderId"`
	PurchaseOrderStatus string         `json:"purchaseOrderStatus"`
	PayableCreated      bool           `json:"payableCreated"`
	PayableID           *uuid.UUID     `json:"payableId,omitempty"`
	Lines               []LineResult   `json:"lines"`
	Impact              *impact.Report `json:"impact,omitempty"`
}

// RejectionResult is the response body for a receipt rejection
type RejectionResult struct {
	ReceiptID     uuid.UUID `json:"receiptId"`
	ReceiptNumber string    `json:"receiptNumber"`
	Status        string    `json:"status"`
	RejectedAt    time.Time `json:"rejectedAt"`
	Reason        string    `json:"reason"`
}
