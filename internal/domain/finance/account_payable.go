package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PayableStatus represents the payment state of a payable
type PayableStatus string

const (
	PayableStatusUnpaid        PayableStatus = "UNPAID"
	PayableStatusPartiallyPaid PayableStatus = "PARTIALLY_PAID"
	PayableStatusPaid          PayableStatus = "PAID"
)

// IsValid returns true if the status is a valid PayableStatus
func (s PayableStatus) IsValid() bool {
	switch s {
	case PayableStatusUnpaid, PayableStatusPartiallyPaid, PayableStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PayableStatus
func (s PayableStatus) String() string {
	return string(s)
}

// AccountPayable is the amount owed to a supplier for a fully received
// purchase order. Exactly one payable exists per purchase order; it is
// created when the last receipt brings the order to RECEIVED, valued at
// the order total.
type AccountPayable struct {
	shared.TenantAggregateRoot
	PayableNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_payable_tenant_number,priority:2"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierName    string          `gorm:"type:varchar(200);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Status          PayableStatus   `gorm:"type:varchar(30);not null;index"`
	InvoiceDate     time.Time       `gorm:"type:timestamptz;not null"`
	DueDate         time.Time       `gorm:"type:timestamptz;not null;index"`
	PaidAt          *time.Time      `gorm:"type:timestamptz"`
	Notes           string          `gorm:"type:varchar(1000)"`
}

// TableName returns the table name for GORM
func (AccountPayable) TableName() string {
	return "account_payables"
}

// NewAccountPayable creates an unpaid payable for a received purchase order.
// Due date is the receipt date plus the order's payment terms.
func NewAccountPayable(tenantID, purchaseOrderID, supplierID uuid.UUID, supplierName, payableNumber string, amount decimal.Decimal, currency string, invoiceDate time.Time, paymentTermsDays int) (*AccountPayable, error) {
	if tenantID == uuid.Nil || purchaseOrderID == uuid.Nil || supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenant, purchase order and supplier are required")
	}
	if payableNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payable number cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payable amount must be positive")
	}
	if paymentTermsDays <= 0 {
		paymentTermsDays = 30
	}
	if currency == "" {
		currency = "USD"
	}
	return &AccountPayable{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PayableNumber:       payableNumber,
		PurchaseOrderID:     purchaseOrderID,
		SupplierID:          supplierID,
		SupplierName:        supplierName,
		Amount:              amount,
		PaidAmount:          decimal.Zero,
		Currency:            currency,
		Status:              PayableStatusUnpaid,
		InvoiceDate:         invoiceDate,
		DueDate:             invoiceDate.AddDate(0, 0, paymentTermsDays),
	}, nil
}

// RecordPayment applies a payment and rolls the status forward
func (ap *AccountPayable) RecordPayment(amount decimal.Decimal, at time.Time) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
	}
	if ap.Status == PayableStatusPaid {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Payable %s is already paid", ap.PayableNumber))
	}
	remaining := ap.Amount.Sub(ap.PaidAmount)
	if amount.GreaterThan(remaining) {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Payment %s exceeds remaining balance %s", amount, remaining))
	}
	ap.PaidAmount = ap.PaidAmount.Add(amount)
	if ap.PaidAmount.GreaterThanOrEqual(ap.Amount) {
		ap.Status = PayableStatusPaid
		ap.PaidAt = &at
	} else {
		ap.Status = PayableStatusPartiallyPaid
	}
	ap.IncrementVersion()
	return nil
}

// Outstanding returns the unpaid remainder
func (ap *AccountPayable) Outstanding() decimal.Decimal {
	return ap.Amount.Sub(ap.PaidAmount)
}

// IsOverdue reports whether the payable is unpaid past its due date
func (ap *AccountPayable) IsOverdue(at time.Time) bool {
	return ap.Status != PayableStatusPaid && at.After(ap.DueDate)
}
