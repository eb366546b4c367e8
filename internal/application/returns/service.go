package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/gateway"
	"github.com/retailops/backend/internal/application/idempotency"
	"github.com/retailops/backend/internal/application/impact"
	"github.com/retailops/backend/internal/application/txn"
	"github.com/retailops/backend/internal/domain/ledger"
	"github.com/retailops/backend/internal/domain/returns"
	"github.com/retailops/backend/internal/domain/serial"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	approveRoute     = "customer-returns/approve"
	replacementRoute = "customer-returns/replacement"
)

// Service orchestrates customer return approval and replacement issue.
// Approval restores resellable lines to stock; replacement ships fresh goods
// out at zero price, valued at the original cost, at most once per return.
type Service struct {
	scope   txn.TransactionScope
	guard   *idempotency.Guard
	tracker *impact.Tracker
	audit   gateway.AuditLog
	logger  *zap.Logger
}

// NewService creates a returns service
func NewService(scope txn.TransactionScope, guard *idempotency.Guard, tracker *impact.Tracker, audit gateway.AuditLog, logger *zap.Logger) *Service {
	return &Service{scope: scope, guard: guard, tracker: tracker, audit: audit, logger: logger}
}

// ApproveReturn approves a pending return. Resellable lines come back into
// stock with a CUSTOMER_RETURN movement valued at the line's unit price, the
// amount credited back to the customer; non-resellable lines change no
// quantities. Serialized lines move their unit to RETURNED.
func (s *Service) ApproveReturn(ctx context.Context, cmd ApproveReturnCommand) (*idempotency.Outcome, error) {
	if !cmd.Actor.Valid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Actor is required")
	}
	if cmd.ReturnID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Return id is required")
	}

	return s.guard.Execute(ctx, cmd.Actor.TenantID, approveRoute, cmd.IdempotencyKey, cmd.Payload,
		func(ctx context.Context) (any, error) {
			return s.approve(ctx, cmd)
		})
}

func (s *Service) approve(ctx context.Context, cmd ApproveReturnCommand) (*ApprovalResult, error) {
	snapshot, keys := s.captureBefore(ctx, cmd.Actor.TenantID, cmd.ReturnID)
	now := time.Now()

	var result *ApprovalResult
	err := s.scope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		cr, err := repos.CustomerReturnRepo().FindByIDForUpdate(ctx, cmd.Actor.TenantID, cmd.ReturnID)
		if err != nil {
			return err
		}
		if err := cr.Approve(cmd.Actor, now); err != nil {
			return err
		}

		writer := ledger.NewWriter(repos.BalanceRepo(), repos.StockTransactionRepo(), repos.ProductHistoryRepo())
		serialTracker := serial.NewTracker(repos.SerialUnitRepo(), repos.SerialMovementRepo())

		restocked := decimal.Zero
		returnID := cr.ID
		for i := range cr.Lines {
			line := &cr.Lines[i]
			if line.Resellable {
				if _, err := writer.Apply(ctx, ledger.Movement{
					Actor:        cmd.Actor,
					ProductID:    line.ProductID,
					VariationID:  line.VariationID,
					LocationID:   cr.LocationID,
					Type:         ledger.MovementTypeCustomerReturn,
					Delta:        line.Quantity,
					UnitCost:     line.UnitPrice,
					Reference:    ledger.DocumentRef{Kind: ledger.ReferenceKindCustomerReturn, ID: cr.ID},
					Notes:        fmt.Sprintf("Customer return %s", cr.ReturnNumber),
					MovementDate: cr.ReturnDate,
				}); err != nil {
					return err
				}
				restocked = restocked.Add(line.Quantity)
			}
			if line.SerialNumber != "" {
				locationID := cr.LocationID
				if _, err := serialTracker.Move(ctx, serial.Transition{
					Actor:         cmd.Actor,
					SerialNumber:  line.SerialNumber,
					ToStatus:      serial.StatusReturned,
					ToLocationID:  &locationID,
					MovementType:  serial.MovementTypeReturn,
					ReferenceKind: "CUSTOMER_RETURN",
					ReferenceID:   &returnID,
					MovedAt:       now,
				}); err != nil {
					return err
				}
			}
		}

		if err := repos.CustomerReturnRepo().Save(ctx, cr); err != nil {
			return err
		}
		result = &ApprovalResult{
			ReturnID:     cr.ID,
			ReturnNumber: cr.ReturnNumber,
			Status:       cr.Status.String(),
			ApprovedAt:   now,
			RestockedQty: restocked,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if snapshot != nil && len(keys) > 0 {
		result.Impact = s.tracker.Finish(ctx, snapshot)
	}
	s.recordAudit(ctx, cmd.Actor, "APPROVE", cmd.ReturnID,
		fmt.Sprintf("Approved customer return %s", result.ReturnNumber), now)
	return result, nil
}

// RejectReturn rejects a pending return without touching stock
func (s *Service) RejectReturn(ctx context.Context, cmd RejectReturnCommand) (*RejectionResult, error) {
	if !cmd.Actor.Valid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Actor is required")
	}

	now := time.Now()
	var result *RejectionResult
	err := s.scope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		cr, err := repos.CustomerReturnRepo().FindByIDForUpdate(ctx, cmd.Actor.TenantID, cmd.ReturnID)
		if err != nil {
			return err
		}
		if err := cr.Reject(cmd.Actor, cmd.Reason, now); err != nil {
			return err
		}
		if err := repos.CustomerReturnRepo().Save(ctx, cr); err != nil {
			return err
		}
		result = &RejectionResult{
			ReturnID:     cr.ID,
			ReturnNumber: cr.ReturnNumber,
			Status:       cr.Status.String(),
			RejectedAt:   now,
			Reason:       cmd.Reason,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, cmd.Actor, "REJECT", cmd.ReturnID,
		fmt.Sprintf("Rejected customer return %s: %s", result.ReturnNumber, cmd.Reason), now)
	return result, nil
}

// IssueReplacement ships replacement goods against a return, at most once.
// The ReplacementIssued flag is re-checked under the return's row lock, so
// two racing issues serialize and the loser fails with INVALID_STATE.
// Replacement quantity leaves stock with a negative REPLACEMENT_ISSUED
// movement valued at the line's historical unit cost, never the current
// average.
func (s *Service) IssueReplacement(ctx context.Context, cmd IssueReplacementCommand) (*idempotency.Outcome, error) {
	if !cmd.Actor.Valid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Actor is required")
	}
	if cmd.ReturnID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Return id is required")
	}

	return s.guard.Execute(ctx, cmd.Actor.TenantID, replacementRoute, cmd.IdempotencyKey, cmd.Payload,
		func(ctx context.Context) (any, error) {
			return s.issueReplacement(ctx, cmd)
		})
}

func (s *Service) issueReplacement(ctx context.Context, cmd IssueReplacementCommand) (*ReplacementResult, error) {
	snapshot, keys := s.captureBefore(ctx, cmd.Actor.TenantID, cmd.ReturnID)
	now := time.Now()

	var result *ReplacementResult
	err := s.scope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		cr, err := repos.CustomerReturnRepo().FindByIDForUpdate(ctx, cmd.Actor.TenantID, cmd.ReturnID)
		if err != nil {
			return err
		}

		replacement, err := returns.NewReplacement(cr, fmt.Sprintf("RPL-%s", cr.ReturnNumber), cmd.Actor, now)
		if err != nil {
			return err
		}
		replacement.Notes = cmd.Notes
		if err := cr.MarkReplacementIssued(replacement.ID); err != nil {
			return err
		}

		writer := ledger.NewWriter(repos.BalanceRepo(), repos.StockTransactionRepo(), repos.ProductHistoryRepo())
		for i := range replacement.Lines {
			line := &replacement.Lines[i]
			if _, err := writer.Apply(ctx, ledger.Movement{
				Actor:        cmd.Actor,
				ProductID:    line.ProductID,
				VariationID:  line.VariationID,
				LocationID:   replacement.LocationID,
				Type:         ledger.MovementTypeReplacementIssued,
				Delta:        line.Quantity.Neg(),
				UnitCost:     line.UnitCost,
				Reference:    ledger.DocumentRef{Kind: ledger.ReferenceKindReplacement, ID: replacement.ID},
				Notes:        fmt.Sprintf("Replacement %s for return %s", replacement.ReplacementNumber, cr.ReturnNumber),
				MovementDate: now,
			}); err != nil {
				return err
			}
		}

		if err := repos.ReplacementRepo().Create(ctx, replacement); err != nil {
			return err
		}
		if err := repos.CustomerReturnRepo().Save(ctx, cr); err != nil {
			return err
		}
		result = &ReplacementResult{
			ReplacementID:     replacement.ID,
			ReplacementNumber: replacement.ReplacementNumber,
			ReturnID:          cr.ID,
			IssuedAt:          now,
			TotalCost:         replacement.TotalCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if snapshot != nil && len(keys) > 0 {
		result.Impact = s.tracker.Finish(ctx, snapshot)
	}
	s.recordAudit(ctx, cmd.Actor, "ISSUE_REPLACEMENT", cmd.ReturnID,
		fmt.Sprintf("Issued replacement %s", result.ReplacementNumber), now)
	return result, nil
}

func (s *Service) captureBefore(ctx context.Context, tenantID, returnID uuid.UUID) (*impact.Snapshot, []impact.Key) {
	var keys []impact.Key
	err := s.scope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		cr, err := repos.CustomerReturnRepo().FindByID(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		for i := range cr.Lines {
			keys = append(keys, impact.Key{
				ProductID:   cr.Lines[i].ProductID,
				VariationID: cr.Lines[i].VariationID,
				LocationID:  cr.LocationID,
			})
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("impact pre-capture skipped", zap.Error(err))
		return nil, nil
	}
	return s.tracker.CaptureBefore(ctx, tenantID, keys), keys
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action string, entityID uuid.UUID, detail string, at time.Time) {
	if err := s.audit.Record(context.WithoutCancel(ctx), gateway.AuditEvent{
		TenantID:   actor.TenantID,
		ActorID:    actor.UserID,
		ActorName:  actor.DisplayName,
		Action:     action,
		EntityType: "CUSTOMER_RETURN",
		EntityID:   entityID,
		Detail:     detail,
		OccurredAt: at,
	}); err != nil {
		s.logger.Error("audit record failed", zap.String("action", action), zap.Error(err))
	}
}
