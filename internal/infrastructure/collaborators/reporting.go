package collaborators

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/gateway"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var viewNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// MaterializedViewReporting refreshes reporting materialized views after
// stock changes. Disabled instances no-op, which keeps single-node setups
// without the views working.
type MaterializedViewReporting struct {
	db      *gorm.DB
	views   []string
	enabled bool
	logger  *zap.Logger
}

// NewMaterializedViewReporting creates a reporting gateway over the given views
func NewMaterializedViewReporting(db *gorm.DB, views []string, enabled bool, logger *zap.Logger) (*MaterializedViewReporting, error) {
	for _, v := range views {
		if !viewNamePattern.MatchString(v) {
			return nil, fmt.Errorf("invalid materialized view name: %q", v)
		}
	}
	return &MaterializedViewReporting{
		db:      db,
		views:   views,
		enabled: enabled,
		logger:  logger.Named("reporting"),
	}, nil
}

// RefreshStockViews refreshes each configured view concurrently-safe
func (r *MaterializedViewReporting) RefreshStockViews(ctx context.Context, tenantID uuid.UUID) error {
	if !r.enabled {
		return nil
	}
	for _, view := range r.views {
		if err := r.db.WithContext(ctx).
			Exec("REFRESH MATERIALIZED VIEW CONCURRENTLY " + view).Error; err != nil {
			return fmt.Errorf("refresh %s: %w", view, err)
		}
		r.logger.Debug("materialized view refreshed",
			zap.String("view", view),
			zap.String("tenant_id", tenantID.String()))
	}
	return nil
}

// Ensure MaterializedViewReporting implements ReportingGateway
var _ gateway.ReportingGateway = (*MaterializedViewReporting)(nil)
