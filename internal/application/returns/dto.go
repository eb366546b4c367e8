package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/impact"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ApproveReturnCommand approves a pending customer return, restoring
// resellable lines to stock
type ApproveReturnCommand struct {
	Actor          shared.Actor
	ReturnID       uuid.UUID `json:"returnId" binding:"required"`
	IdempotencyKey string    `json:"-"`
	Payload        []byte    `json:"-"`
}

// RejectReturnCommand rejects a pending customer return
type RejectReturnCommand struct {
	Actor    shared.Actor
	ReturnID uuid.UUID `json:"returnId" binding:"required"`
	Reason   string    `json:"reason" binding:"required,max=500"`
}

// IssueReplacementCommand issues the one-shot zero-priced replacement for a
// customer return
type IssueReplacementCommand struct {
	Actor          shared.Actor
	ReturnID       uuid.UUID `json:"returnId" binding:"required"`
	Notes          string    `json:"notes" binding:"max=1000"`
	IdempotencyKey string    `json:"-"`
	Payload        []byte    `json:"-"`
}

// ApprovalResult is the response body for a return approval
type ApprovalResult struct {
	ReturnID      uuid.UUID      `json:"returnId"`
	ReturnNumber  string         `json:"returnNumber"`
	Status        string         `json:"status"`
	ApprovedAt    time.Time      `json:"approvedAt"`
	RestockedQty  decimal.Decimal `json:"restockedQty"`
	Impact        *impact.Report `json:"impact,omitempty"`
}

// RejectionResult is the response body for a return rejection
type RejectionResult struct {
	ReturnID     uuid.UUID `json:"returnId"`
	ReturnNumber string    `json:"returnNumber"`
	Status       string    `json:"status"`
	RejectedAt   time.Time `json:"rejectedAt"`
	Reason       string    `json:"reason"`
}

// ReplacementResult is the response body for a replacement issue
type ReplacementResult struct {
	ReplacementID     uuid.UUID       `json:"replacementId"`
	ReplacementNumber string          `json:"replacementNumber"`
	ReturnID          uuid.UUID       `json:"returnId"`
	IssuedAt          time.Time       `json:"issuedAt"`
	TotalCost         decimal.Decimal `json:"totalCost"`
	Impact            *impact.Report  `json:"impact,omitempty"`
}
