package collaborators

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/gateway"
	"github.com/retailops/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditRecord is one persisted audit trail row
type AuditRecord struct {
	shared.BaseEntity
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_tenant_time,priority:1"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorName  string    `gorm:"type:varchar(100)"`
	Action     string    `gorm:"type:varchar(50);not null"`
	EntityType string    `gorm:"type:varchar(50);not null;index"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Detail     string    `gorm:"type:varchar(1000)"`
	OccurredAt time.Time `gorm:"type:timestamptz;not null;index:idx_audit_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (AuditRecord) TableName() string {
	return "audit_records"
}

// DBAuditLog records business actions into the audit table
type DBAuditLog struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDBAuditLog creates a database-backed audit log
func NewDBAuditLog(db *gorm.DB, logger *zap.Logger) *DBAuditLog {
	return &DBAuditLog{db: db, logger: logger.Named("audit")}
}

// Record persists the event
func (l *DBAuditLog) Record(ctx context.Context, event gateway.AuditEvent) error {
	record := &AuditRecord{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   event.TenantID,
		ActorID:    event.ActorID,
		ActorName:  event.ActorName,
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Detail:     event.Detail,
		OccurredAt: event.OccurredAt,
	}
	return l.db.WithContext(ctx).Create(record).Error
}

// Ensure DBAuditLog implements AuditLog
var _ gateway.AuditLog = (*DBAuditLog)(nil)
