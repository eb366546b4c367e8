package receiving

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/gateway"
	"github.com/retailops/backend/internal/application/idempotency"
	"github.com/retailops/backend/internal/application/impact"
	"github.com/retailops/backend/internal/application/txn"
	"github.com/retailops/backend/internal/domain/costing"
	"github.com/retailops/backend/internal/domain/finance"
	"github.com/retailops/backend/internal/domain/ledger"
	"github.com/retailops/backend/internal/domain/purchasing"
	"github.com/retailops/backend/internal/domain/serial"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const approveRoute = "goods-receipts/approve"

// Service orchestrates goods receipt approval and rejection. Approval is the
// moment a receipt becomes stock: ledger movements, serial intake, cost
// recomputation, purchase order rollup and payable creation all happen in
// one transaction, wrapped by the idempotency guard.
type Service struct {
	scope      txn.TransactionScope
	guard      *idempotency.Guard
	tracker    *impact.Tracker
	accounting gateway.AccountingGateway
	audit      gateway.AuditLog
	reporting  gateway.ReportingGateway
	logger     *zap.Logger
}

// NewService creates a receiving service
func NewService(
	scope txn.TransactionScope,
	guard *idempotency.Guard,
	tracker *impact.Tracker,
	accounting gateway.AccountingGateway,
	audit gateway.AuditLog,
	reporting gateway.ReportingGateway,
	logger *zap.Logger,
) *Service {
	return &Service{
		scope:      scope,
		guard:      guard,
		tracker:    tracker,
		accounting: accounting,
		audit:      audit,
		reporting:  reporting,
		logger:     logger,
	}
}

// ApproveReceipt approves a pending goods receipt and posts it to stock.
//
// Inside one transaction, in order: the receipt transitions to APPROVED
// (already-approved fails loudly), incoming serials are checked for
// collisions under lock, each line applies a PURCHASE movement and registers
// its serials, the weighted-average cost is recomputed per line, the
// purchase order's received counters roll its status up, and a payable is
// created when the order just became fully received.
//
// The stored idempotent response replays for a repeated key; side effects
// (journal entry, audit, reporting refresh) run after commit and are
// best-effort.
func (s *Service) ApproveReceipt(ctx context.Context, cmd ApproveReceiptCommand) (*idempotency.Outcome, error) {
	if !cmd.Actor.Valid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Actor is required")
	}
	if cmd.ReceiptID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt id is required")
	}

	return s.guard.Execute(ctx, cmd.Actor.TenantID, approveRoute, cmd.IdempotencyKey, cmd.Payload,
		func(ctx context.Context) (any, error) {
			return s.approve(ctx, cmd)
		})
}

func (s *Service) approve(ctx context.Context, cmd ApproveReceiptCommand) (*ApprovalResult, error) {
	snapshot, keys := s.captureBefore(ctx, cmd.Actor.TenantID, cmd.ReceiptID)

	var result *ApprovalResult
	var receipt *purchasing.GoodsReceipt
	err := s.scope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		var err error
		receipt, result, err = s.approveInTx(ctx, repos, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}

	if snapshot != nil && len(keys) > 0 {
		result.Impact = s.tracker.Finish(ctx, snapshot)
	}
	s.afterApprove(ctx, cmd.Actor, receipt, result)
	return result, nil
}

func (s *Service) approveInTx(ctx context.Context, repos txn.TransactionalRepositories, cmd ApproveReceiptCommand) (*purchasing.GoodsReceipt, *ApprovalResult, error) {
	now := time.Now()
	actor := cmd.Actor

	receipt, err := repos.GoodsReceiptRepo().FindByIDForUpdate(ctx, actor.TenantID, cmd.ReceiptID)
	if err != nil {
		return nil, nil, err
	}
	if err := receipt.Approve(actor, now); err != nil {
		return nil, nil, err
	}

	serialTracker := serial.NewTracker(repos.SerialUnitRepo(), repos.SerialMovementRepo())
	var allSerials []string
	for i := range receipt.Lines {
		allSerials = append(allSerials, receipt.Lines[i].SerialNumbers...)
	}
	if err := serialTracker.CheckAvailable(ctx, actor.TenantID, receipt.ID, allSerials); err != nil {
		return nil, nil, err
	}

	order, err := repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, actor.TenantID, receipt.PurchaseOrderID)
	if err != nil {
		return nil, nil, err
	}

	writer := ledger.NewWriter(repos.BalanceRepo(), repos.StockTransactionRepo(), repos.ProductHistoryRepo())
	calculator := costing.NewCalculator(repos.CostBasisRepo(), repos.BalanceRepo())

	result := &ApprovalResult{
		ReceiptID:       receipt.ID,
		ReceiptNumber:   receipt.ReceiptNumber,
		Status:          receipt.Status.String(),
		ApprovedAt:      now,
		PurchaseOrderID: order.ID,
	}
	supplierID := receipt.SupplierID

	for i := range receipt.Lines {
		line := &receipt.Lines[i]

		if _, err := writer.Apply(ctx, ledger.Movement{
			Actor:        actor,
			ProductID:    line.ProductID,
			VariationID:  line.VariationID,
			LocationID:   receipt.LocationID,
			Type:         ledger.MovementTypePurchase,
			Delta:        line.Quantity,
			UnitCost:     line.UnitCost,
			Reference:    ledger.DocumentRef{Kind: ledger.ReferenceKindGoodsReceipt, ID: receipt.ID},
			Notes:        fmt.Sprintf("Goods receipt %s", receipt.ReceiptNumber),
			MovementDate: receipt.ReceivedDate,
		}); err != nil {
			return nil, nil, err
		}

		for _, sn := range line.SerialNumbers {
			if _, err := serialTracker.Register(ctx, serial.Intake{
				Actor:        actor,
				SerialNumber: sn,
				ProductID:    line.ProductID,
				VariationID:  line.VariationID,
				LocationID:   receipt.LocationID,
				ReceiptID:    receipt.ID,
				SupplierID:   &supplierID,
				PurchaseCost: line.UnitCost,
				Warranty:     line.Warranty(),
				ReceivedAt:   receipt.ReceivedDate,
			}); err != nil {
				return nil, nil, err
			}
		}

		newCost, err := calculator.RecomputeOnReceipt(ctx, costing.Receipt{
			TenantID:    actor.TenantID,
			ProductID:   line.ProductID,
			VariationID: line.VariationID,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
			Date:        receipt.ReceivedDate,
			SupplierID:  &supplierID,
		})
		if err != nil {
			return nil, nil, err
		}

		if err := order.AddReceivedQuantity(line.VariationID, line.Quantity); err != nil {
			return nil, nil, err
		}

		result.Lines = append(result.Lines, LineResult{
			VariationID: line.VariationID,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
			NewAvgCost:  newCost,
			SerialCount: len(line.SerialNumbers),
		})
	}

	if _, err := order.RollUpReceivingStatus(); err != nil {
		return nil, nil, err
	}
	if err := repos.PurchaseOrderRepo().Save(ctx, order); err != nil {
		return nil, nil, err
	}
	if err := repos.GoodsReceiptRepo().Save(ctx, receipt); err != nil {
		return nil, nil, err
	}
	result.PurchaseOrderStatus = order.Status.String()

	if order.Status == purchasing.OrderStatusReceived {
		exists, err := repos.PayableRepo().ExistsForPurchaseOrder(ctx, actor.TenantID, order.ID)
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			payable, err := finance.NewAccountPayable(
				actor.TenantID, order.ID, order.SupplierID, order.SupplierName,
				fmt.Sprintf("AP-%s", order.OrderNumber),
				order.TotalAmount, order.Currency,
				receipt.ReceivedDate, order.PaymentTermsDays)
			if err != nil {
				return nil, nil, err
			}
			if err := repos.PayableRepo().Create(ctx, payable); err != nil {
				return nil, nil, err
			}
			result.PayableCreated = true
			result.PayableID = &payable.ID
		}
	}
	return receipt, result, nil
}

// captureBefore peeks at the pending receipt to learn which balances the
// approval will touch. Read-only; the authoritative load happens under lock
// inside the transaction.
func (s *Service) captureBefore(ctx context.Context, tenantID, receiptID uuid.UUID) (*impact.Snapshot, []impact.Key) {
	var keys []impact.Key
	err := s.scope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		receipt, err := repos.GoodsReceiptRepo().FindByID(ctx, tenantID, receiptID)
		if err != nil {
			return err
		}
		for i := range receipt.Lines {
			keys = append(keys, impact.Key{
				ProductID:   receipt.Lines[i].ProductID,
				VariationID: receipt.Lines[i].VariationID,
				LocationID:  receipt.LocationID,
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

// afterApprove runs the post-commit collaborators. Failures are logged and
// swallowed; the approval already committed.
func (s *Service) afterApprove(ctx context.Context, actor shared.Actor, receipt *purchasing.GoodsReceipt, result *ApprovalResult) {
	ctx = context.WithoutCancel(ctx)

	total := receiptTotal(result)
	if err := s.accounting.PostJournalEntry(ctx, gateway.JournalEntryRequest{
		TenantID:    actor.TenantID,
		EntryType:   "GOODS_RECEIPT_APPROVED",
		ReferenceID: receipt.ID,
		Reference:   receipt.ReceiptNumber,
		Amount:      total,
		Currency:    "USD",
		Memo:        fmt.Sprintf("Inventory received on %s", receipt.ReceiptNumber),
		OccurredAt:  *receipt.ApprovedAt,
	}); err != nil {
		s.logger.Error("accounting journal entry failed after receipt approval",
			zap.String("receiptNumber", receipt.ReceiptNumber),
			zap.Error(err))
	}

	if err := s.audit.Record(ctx, gateway.AuditEvent{
		TenantID:   actor.TenantID,
		ActorID:    actor.UserID,
		ActorName:  actor.DisplayName,
		Action:     "APPROVE",
		EntityType: "GOODS_RECEIPT",
		EntityID:   receipt.ID,
		Detail:     fmt.Sprintf("Approved goods receipt %s (%d lines)", receipt.ReceiptNumber, len(receipt.Lines)),
		OccurredAt: *receipt.ApprovedAt,
	}); err != nil {
		s.logger.Error("audit record failed after receipt approval",
			zap.String("receiptNumber", receipt.ReceiptNumber),
			zap.Error(err))
	}

	if err := s.reporting.RefreshStockViews(ctx, actor.TenantID); err != nil {
		s.logger.Error("reporting refresh failed after receipt approval",
			zap.String("receiptNumber", receipt.ReceiptNumber),
			zap.Error(err))
	}
}

// RejectReceipt rejects a pending goods receipt. No stock moves; rejection
// needs no idempotency key since a repeat fails on the status guard.
func (s *Service) RejectReceipt(ctx context.Context, cmd RejectReceiptCommand) (*RejectionResult, error) {
	if !cmd.Actor.Valid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Actor is required")
	}

	now := time.Now()
	var result *RejectionResult
	err := s.scope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		receipt, err := repos.GoodsReceiptRepo().FindByIDForUpdate(ctx, cmd.Actor.TenantID, cmd.ReceiptID)
		if err != nil {
			return err
		}
		if err := receipt.Reject(cmd.Actor, cmd.Reason, now); err != nil {
			return err
		}
		if err := repos.GoodsReceiptRepo().Save(ctx, receipt); err != nil {
			return err
		}
		result = &RejectionResult{
			ReceiptID:     receipt.ID,
			ReceiptNumber: receipt.ReceiptNumber,
			Status:        receipt.Status.String(),
			RejectedAt:    now,
			Reason:        cmd.Reason,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(context.WithoutCancel(ctx), gateway.AuditEvent{
		TenantID:   cmd.Actor.TenantID,
		ActorID:    cmd.Actor.UserID,
		ActorName:  cmd.Actor.DisplayName,
		Action:     "REJECT",
		EntityType: "GOODS_RECEIPT",
		EntityID:   cmd.ReceiptID,
		Detail:     fmt.Sprintf("Rejected goods receipt %s: %s", result.ReceiptNumber, cmd.Reason),
		OccurredAt: now,
	}); err != nil {
		s.logger.Error("audit record failed after receipt rejection", zap.Error(err))
	}
	return result, nil
}

func receiptTotal(result *ApprovalResult) decimal.Decimal {
	total := decimal.Zero
	for _, l := range result.Lines {
		total = total.Add(l.Quantity.Mul(l.UnitCost))
	}
	return total
}
