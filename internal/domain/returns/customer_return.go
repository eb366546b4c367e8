package returns

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReturnStatus represents the customer return approval state
type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "PENDING"
	ReturnStatusApproved ReturnStatus = "APPROVED"
	ReturnStatusRejected ReturnStatus = "REJECTED"
)

// IsValid returns true if the status is a valid ReturnStatus
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusPending, ReturnStatusApproved, ReturnStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ReturnStatus
func (s ReturnStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if transition to target status is allowed
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	transitions := map[ReturnStatus][]ReturnStatus{
		ReturnStatusPending:  {ReturnStatusApproved, ReturnStatusRejected},
		ReturnStatusApproved: {},
		ReturnStatusRejected: {},
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

// CustomerReturn is goods coming back from a customer. Approval restores
// resellable lines to stock. Whether a replacement was issued is a separate
// axis from the approval status: ReplacementIssued can flip on a return in
// any status, and flips exactly once.
type CustomerReturn struct {
	shared.TenantAggregateRoot
	ReturnNumber      string       `gorm:"type:varchar(50);not null;uniqueIndex:idx_return_tenant_number,priority:2"`
	SaleID            *uuid.UUID   `gorm:"type:uuid;index"`
	CustomerID        *uuid.UUID   `gorm:"type:uuid;index"`
	CustomerName      string       `gorm:"type:varchar(200)"`
	LocationID        uuid.UUID    `gorm:"type:uuid;not null"`
	Status            ReturnStatus `gorm:"type:varchar(30);not null;index"`
	Reason            string       `gorm:"type:varchar(500)"`
	ReturnDate        time.Time    `gorm:"type:timestamptz;not null"`
	ApprovedAt        *time.Time   `gorm:"type:timestamptz"`
	ApprovedByID      *uuid.UUID   `gorm:"type:uuid"`
	ApprovedByName    string       `gorm:"type:varchar(100)"`
	RejectedAt        *time.Time   `gorm:"type:timestamptz"`
	RejectedByID      *uuid.UUID   `gorm:"type:uuid"`
	RejectionReason   string       `gorm:"type:varchar(500)"`
	ReplacementIssued bool         `gorm:"not null;default:false"`
	ReplacementID     *uuid.UUID   `gorm:"type:uuid"`
	Lines             []ReturnLine `gorm:"foreignKey:CustomerReturnID"`
}

// TableName returns the table name for GORM
func (CustomerReturn) TableName() string {
	return "customer_returns"
}

// ReturnLine is one returned item. UnitPrice is what the customer paid;
// UnitCost is the item's cost at the original sale, used to value both the
// restock and any replacement issued against this line.
type ReturnLine struct {
	shared.BaseEntity
	CustomerReturnID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	VariationID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	SerialNumber     string          `gorm:"type:varchar(100)"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Resellable       bool            `gorm:"not null;default:true"`
	Condition        string          `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (ReturnLine) TableName() string {
	return "return_lines"
}

// Validate checks line-level invariants
func (l *ReturnLine) Validate() error {
	if l.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Return quantity must be positive")
	}
	if l.UnitPrice.IsNegative() || l.UnitCost.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Unit price and cost cannot be negative")
	}
	return nil
}

// NewCustomerReturn creates a pending customer return
func NewCustomerReturn(tenantID, locationID uuid.UUID, returnNumber, reason string, returnDate time.Time) (*CustomerReturn, error) {
	if tenantID == uuid.Nil || locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenant and location are required")
	}
	if returnNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Return number cannot be empty")
	}
	if returnDate.IsZero() {
		returnDate = time.Now()
	}
	return &CustomerReturn{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReturnNumber:        returnNumber,
		LocationID:          locationID,
		Status:              ReturnStatusPending,
		Reason:              reason,
		ReturnDate:          returnDate,
	}, nil
}

// AddLine appends a returned line after validating it
func (cr *CustomerReturn) AddLine(line ReturnLine) error {
	if err := line.Validate(); err != nil {
		return err
	}
	line.CustomerReturnID = cr.ID
	cr.Lines = append(cr.Lines, line)
	return nil
}

// Approve transitions the return to APPROVED
func (cr *CustomerReturn) Approve(approver shared.Actor, at time.Time) error {
	if cr.Status == ReturnStatusApproved {
		return shared.NewDomainError("ALREADY_APPROVED", fmt.Sprintf("Customer return %s is already approved", cr.ReturnNumber))
	}
	if !cr.Status.CanTransitionTo(ReturnStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve customer return in status %s", cr.Status))
	}
	if len(cr.Lines) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Customer return has no lines")
	}
	cr.Status = ReturnStatusApproved
	cr.ApprovedAt = &at
	cr.ApprovedByID = &approver.UserID
	cr.ApprovedByName = approver.DisplayName
	cr.IncrementVersion()
	return nil
}

// Reject transitions the return to REJECTED
func (cr *CustomerReturn) Reject(rejecter shared.Actor, reason string, at time.Time) error {
	if cr.Status == ReturnStatusRejected {
		return shared.NewDomainError("ALREADY_REJECTED", fmt.Sprintf("Customer return %s is already rejected", cr.ReturnNumber))
	}
	if !cr.Status.CanTransitionTo(ReturnStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject customer return in status %s", cr.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Rejection reason cannot be empty")
	}
	cr.Status = ReturnStatusRejected
	cr.RejectedAt = &at
	cr.RejectedByID = &rejecter.UserID
	cr.RejectionReason = reason
	cr.IncrementVersion()
	return nil
}

// MarkReplacementIssued flips the replacement axis exactly once
func (cr *CustomerReturn) MarkReplacementIssued(replacementID uuid.UUID) error {
	if cr.ReplacementIssued {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("A replacement was already issued for return %s", cr.ReturnNumber))
	}
	cr.ReplacementIssued = true
	cr.ReplacementID = &replacementID
	cr.IncrementVersion()
	return nil
}
