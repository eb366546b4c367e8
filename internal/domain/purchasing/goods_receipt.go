package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/serial"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ReceiptStatus represents the goods receipt lifecycle state
type ReceiptStatus string

const (
	ReceiptStatusPending  ReceiptStatus = "PENDING"
	ReceiptStatusApproved ReceiptStatus = "APPROVED"
	ReceiptStatusRejected ReceiptStatus = "REJECTED"
)

// IsValid returns true if the status is a valid ReceiptStatus
func (s ReceiptStatus) IsValid() bool {
	switch s {
	case ReceiptStatusPending, ReceiptStatusApproved, ReceiptStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ReceiptStatus
func (s ReceiptStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if transition to target status is allowed
func (s ReceiptStatus) CanTransitionTo(target ReceiptStatus) bool {
	transitions := map[ReceiptStatus][]ReceiptStatus{
		ReceiptStatusPending:  {ReceiptStatusApproved, ReceiptStatusRejected},
		ReceiptStatusApproved: {},
		ReceiptStatusRejected: {},
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

// GoodsReceipt records a physical arrival of goods against a purchase order.
// It sits in PENDING until a reviewer approves it; only approval touches the
// stock ledger, costing and payables.
type GoodsReceipt struct {
	shared.TenantAggregateRoot
	ReceiptNumber   string             `gorm:"type:varchar(50);not null;uniqueIndex:idx_receipt_tenant_number,priority:2"`
	PurchaseOrderID uuid.UUID          `gorm:"type:uuid;not null;index"`
	SupplierID      uuid.UUID          `gorm:"type:uuid;not null"`
	LocationID      uuid.UUID          `gorm:"type:uuid;not null"`
	Status          ReceiptStatus      `gorm:"type:varchar(30);not null;index"`
	ReceivedDate    time.Time          `gorm:"type:timestamptz;not null"`
	ApprovedAt      *time.Time         `gorm:"type:timestamptz"`
	ApprovedByID    *uuid.UUID         `gorm:"type:uuid"`
	ApprovedByName  string             `gorm:"type:varchar(100)"`
	RejectedAt      *time.Time         `gorm:"type:timestamptz"`
	RejectedByID    *uuid.UUID         `gorm:"type:uuid"`
	RejectionReason string             `gorm:"type:varchar(500)"`
	Notes           string             `gorm:"type:varchar(1000)"`
	Lines           []GoodsReceiptLine `gorm:"foreignKey:GoodsReceiptID"`
}

// TableName returns the table name for GORM
func (GoodsReceipt) TableName() string {
	return "goods_receipts"
}

// GoodsReceiptLine is one received line. Serial numbers and the warranty
// config are snapshotted at receipt time so approval works from the line
// alone, untouched by later product edits.
type GoodsReceiptLine struct {
	shared.BaseEntity
	GoodsReceiptID   uuid.UUID                         `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID                         `gorm:"type:uuid;not null"`
	VariationID      uuid.UUID                         `gorm:"type:uuid;not null;index"`
	ProductName      string                            `gorm:"type:varchar(200);not null"`
	SKU              string                            `gorm:"type:varchar(100)"`
	Quantity         decimal.Decimal                   `gorm:"type:decimal(18,4);not null"`
	UnitCost         decimal.Decimal                   `gorm:"type:decimal(18,4);not null"`
	SerialNumbers    datatypes.JSONSlice[string]       `gorm:"type:jsonb"`
	WarrantyDuration int                               `gorm:"not null;default:0"`
	WarrantyUnit     serial.WarrantyUnit               `gorm:"type:varchar(10)"`
}

// TableName returns the table name for GORM
func (GoodsReceiptLine) TableName() string {
	return "goods_receipt_lines"
}

// IsSerialized reports whether the line carries serial numbers
func (l *GoodsReceiptLine) IsSerialized() bool {
	return len(l.SerialNumbers) > 0
}

// Warranty returns the warranty config snapshotted on the line
func (l *GoodsReceiptLine) Warranty() serial.WarrantyConfig {
	return serial.WarrantyConfig{Duration: l.WarrantyDuration, Unit: l.WarrantyUnit}
}

// Validate checks line-level invariants
func (l *GoodsReceiptLine) Validate() error {
	if l.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Received quantity must be positive")
	}
	if l.UnitCost.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Unit cost cannot be negative")
	}
	if l.IsSerialized() && !l.Quantity.Equal(decimal.NewFromInt(int64(len(l.SerialNumbers)))) {
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Line quantity %s does not match %d serial numbers", l.Quantity, len(l.SerialNumbers)))
	}
	return nil
}

// NewGoodsReceipt creates a pending goods receipt
func NewGoodsReceipt(tenantID, purchaseOrderID, supplierID, locationID uuid.UUID, receiptNumber string, receivedDate time.Time) (*GoodsReceipt, error) {
	if tenantID == uuid.Nil || purchaseOrderID == uuid.Nil || locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenant, purchase order and location are required")
	}
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt number cannot be empty")
	}
	if receivedDate.IsZero() {
		receivedDate = time.Now()
	}
	return &GoodsReceipt{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReceiptNumber:       receiptNumber,
		PurchaseOrderID:     purchaseOrderID,
		SupplierID:          supplierID,
		LocationID:          locationID,
		Status:              ReceiptStatusPending,
		ReceivedDate:        receivedDate,
	}, nil
}

// AddLine appends a received line after validating it
func (gr *GoodsReceipt) AddLine(line GoodsReceiptLine) error {
	if err := line.Validate(); err != nil {
		return err
	}
	line.GoodsReceiptID = gr.ID
	gr.Lines = append(gr.Lines, line)
	return nil
}

// Approve transitions the receipt to APPROVED. A receipt already approved
// fails loudly with ALREADY_APPROVED; replay protection at the request level
// is the idempotency guard's job, not a silent success here.
func (gr *GoodsReceipt) Approve(approver shared.Actor, at time.Time) error {
	if gr.Status == ReceiptStatusApproved {
		return shared.NewDomainError("ALREADY_APPROVED", fmt.Sprintf("Goods receipt %s is already approved", gr.ReceiptNumber))
	}
	if !gr.Status.CanTransitionTo(ReceiptStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve goods receipt in status %s", gr.Status))
	}
	if len(gr.Lines) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Goods receipt has no lines")
	}
	gr.Status = ReceiptStatusApproved
	gr.ApprovedAt = &at
	gr.ApprovedByID = &approver.UserID
	gr.ApprovedByName = approver.DisplayName
	gr.IncrementVersion()
	return nil
}

// Reject transitions the receipt to REJECTED
func (gr *GoodsReceipt) Reject(rejecter shared.Actor, reason string, at time.Time) error {
	if gr.Status == ReceiptStatusRejected {
		return shared.NewDomainError("ALREADY_REJECTED", fmt.Sprintf("Goods receipt %s is already rejected", gr.ReceiptNumber))
	}
	if !gr.Status.CanTransitionTo(ReceiptStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject goods receipt in status %s", gr.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Rejection reason cannot be empty")
	}
	gr.Status = ReceiptStatusRejected
	gr.RejectedAt = &at
	gr.RejectedByID = &rejecter.UserID
	gr.RejectionReason = reason
	gr.IncrementVersion()
	return nil
}
