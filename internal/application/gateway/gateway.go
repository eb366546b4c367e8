package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalEntryRequest asks the accounting collaborator to post an entry for
// an inventory-affecting event
type JournalEntryRequest struct {
	TenantID    uuid.UUID
	EntryType   string
	ReferenceID uuid.UUID
	Reference   string
	Amount      decimal.Decimal
	Currency    string
	Memo        string
	OccurredAt  time.Time
}

// AccountingGateway posts journal entries to the accounting subsystem.
// Called after commit; a failure is logged, never propagated.
type AccountingGateway interface {
	PostJournalEntry(ctx context.Context, req JournalEntryRequest) error
}

// AuditEvent is one recorded business action
type AuditEvent struct {
	TenantID   uuid.UUID
	ActorID    uuid.UUID
	ActorName  string
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Detail     string
	OccurredAt time.Time
}

// AuditLog records business actions for compliance review
type AuditLog interface {
	Record(ctx context.Context, event AuditEvent) error
}

// ReportingGateway refreshes derived reporting state after stock changes
type ReportingGateway interface {
	RefreshStockViews(ctx context.Context, tenantID uuid.UUID) error
}
