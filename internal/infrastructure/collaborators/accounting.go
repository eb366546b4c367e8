package collaborators

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/gateway"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JournalEntry is the persisted form of a posted journal entry request
type JournalEntry struct {
	shared.BaseEntity
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	EntryType   string          `gorm:"type:varchar(50);not null"`
	ReferenceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Reference   string          `gorm:"type:varchar(100)"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency    string          `gorm:"type:varchar(3);not null"`
	Memo        string          `gorm:"type:varchar(500)"`
	OccurredAt  time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// DBAccountingGateway posts journal entries into the accounting schema's
// staging table, where the accounting subsystem picks them up
type DBAccountingGateway struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDBAccountingGateway creates a database-backed accounting gateway
func NewDBAccountingGateway(db *gorm.DB, logger *zap.Logger) *DBAccountingGateway {
	return &DBAccountingGateway{db: db, logger: logger.Named("accounting")}
}

// PostJournalEntry persists the entry
func (g *DBAccountingGateway) PostJournalEntry(ctx context.Context, req gateway.JournalEntryRequest) error {
	entry := &JournalEntry{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    req.TenantID,
		EntryType:   req.EntryType,
		ReferenceID: req.ReferenceID,
		Reference:   req.Reference,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Memo:        req.Memo,
		OccurredAt:  req.OccurredAt,
	}
	if err := g.db.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}
	g.logger.Debug("journal entry posted",
		zap.String("entry_type", req.EntryType),
		zap.String("reference", req.Reference))
	return nil
}

// Ensure DBAccountingGateway implements AccountingGateway
var _ gateway.AccountingGateway = (*DBAccountingGateway)(nil)
