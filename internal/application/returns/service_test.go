package returns_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/gateway"
	"github.com/retailops/backend/internal/application/idempotency"
	"github.com/retailops/backend/internal/application/impact"
	returnsapp "github.com/retailops/backend/internal/application/returns"
	"github.com/retailops/backend/internal/application/txn"
	"github.com/retailops/backend/internal/domain/costing"
	"github.com/retailops/backend/internal/domain/ledger"
	"github.com/retailops/backend/internal/domain/returns"
	"github.com/retailops/backend/internal/domain/serial"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/infrastructure/cache"
	"github.com/retailops/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingAudit struct {
	mu     sync.Mutex
	events []gateway.AuditEvent
}

func (a *recordingAudit) Record(_ context.Context, event gateway.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

type fixture struct {
	service  *returnsapp.Service
	balances *testutil.MemoryBalances
	txs      *testutil.MemoryStockTransactions
	units    *testutil.MemorySerialUnits
	moves    *testutil.MemorySerialMovements
	crs      *testutil.MemoryCustomerReturns
	rpls     *testutil.MemoryReplacements
	audit    *recordingAudit
	actor    shared.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		balances: testutil.NewMemoryBalances(),
		txs:      testutil.NewMemoryStockTransactions(),
		units:    testutil.NewMemorySerialUnits(),
		moves:    testutil.NewMemorySerialMovements(),
		crs:      testutil.NewMemoryCustomerReturns(),
		rpls:     testutil.NewMemoryReplacements(),
		audit:    &recordingAudit{},
		actor:    shared.Actor{TenantID: uuid.New(), UserID: uuid.New(), DisplayName: "Support Agent"},
	}
	costs := testutil.NewMemoryCostBases()
	scope := &txn.NoOpTransactionScope{
		Balances:       f.balances,
		Transactions:   f.txs,
		Histories:      testutil.NewMemoryProductHistories(),
		CostBases:      costs,
		SerialUnits:    f.units,
		SerialMoves:    f.moves,
		PurchaseOrders: testutil.NewMemoryPurchaseOrders(),
		GoodsReceipts:  testutil.NewMemoryGoodsReceipts(),
		Returns:        f.crs,
		Replacements:   f.rpls,
		Payables:       testutil.NewMemoryPayables(),
	}
	log := zap.NewNop()
	guard := idempotency.NewGuard(testutil.NewMemoryIdempotencyRecords(), cache.NewInMemoryRequestLock(), log)
	tracker := impact.NewTracker(f.balances, costing.NewCalculator(costs, f.balances), log)
	f.service = returnsapp.NewService(scope, guard, tracker, f.audit, log)
	return f
}

// seedReturn wires a pending return with a resellable bulk line, a
// non-resellable line, and a resellable serialized line whose unit is SOLD
func (f *fixture) seedReturn(t *testing.T) *returns.CustomerReturn {
	t.Helper()
	ctx := context.Background()

	cr, err := returns.NewCustomerReturn(f.actor.TenantID, uuid.New(), "RET-3001", "defective",
		time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, cr.AddLine(returns.ReturnLine{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   uuid.New(),
		VariationID: uuid.New(),
		ProductName: "Widget",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.NewFromInt(150),
		UnitCost:    decimal.NewFromInt(100),
		Resellable:  true,
	}))
	require.NoError(t, cr.AddLine(returns.ReturnLine{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   uuid.New(),
		VariationID: uuid.New(),
		ProductName: "Cracked Gadget",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(80),
		UnitCost:    decimal.NewFromInt(60),
		Resellable:  false,
		Condition:   "DAMAGED",
	}))

	soldReceipt := uuid.New()
	f.units.Seed(&serial.SerialUnit{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          f.actor.TenantID,
		SerialNumber:      "SN-9",
		ProductID:         uuid.New(),
		VariationID:       uuid.New(),
		Status:            serial.StatusSold,
		CurrentLocationID: uuid.New(),
		ReceiptID:         &soldReceipt,
	})
	require.NoError(t, cr.AddLine(returns.ReturnLine{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    uuid.New(),
		VariationID:  uuid.New(),
		ProductName:  "Laptop",
		SerialNumber: "SN-9",
		Quantity:     decimal.NewFromInt(1),
		UnitPrice:    decimal.NewFromInt(1200),
		UnitCost:     decimal.NewFromInt(900),
		Resellable:   true,
	}))
	require.NoError(t, f.crs.Create(ctx, cr))
	return cr
}

func approveReturnCmd(actor shared.Actor, returnID uuid.UUID, key string) returnsapp.ApproveReturnCommand {
	return returnsapp.ApproveReturnCommand{
		Actor:          actor,
		ReturnID:       returnID,
		IdempotencyKey: key,
		Payload:        []byte(`{"returnId":"` + returnID.String() + `"}`),
	}
}

func replacementCmd(actor shared.Actor, returnID uuid.UUID, key string) returnsapp.IssueReplacementCommand {
	return returnsapp.IssueReplacementCommand{
		Actor:          actor,
		ReturnID:       returnID,
		IdempotencyKey: key,
		Payload:        []byte(`{"returnId":"` + returnID.String() + `"}`),
	}
}

func TestApproveReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("restocks resellable lines only and moves serials", func(t *testing.T) {
		f := newFixture(t)
		cr := f.seedReturn(t)

		out, err := f.service.ApproveReturn(ctx, approveReturnCmd(f.actor, cr.ID, "key-1"))
		require.NoError(t, err)

		var result returnsapp.ApprovalResult
		require.NoError(t, json.Unmarshal(out.Response, &result))
		assert.Equal(t, "APPROVED", result.Status)
		// 2 widgets + 1 laptop, the damaged gadget stays out
		assert.True(t, result.RestockedQty.Equal(decimal.NewFromInt(3)))

		txs := f.txs.All()
		require.Len(t, txs, 2)
		for _, tx := range txs {
			assert.Equal(t, ledger.MovementTypeCustomerReturn, tx.MovementType)
			assert.Equal(t, ledger.ReferenceKindCustomerReturn, tx.ReferenceKind)
			assert.True(t, tx.QuantityDelta.IsPositive())
		}

		// Restock movements are valued at the refunded unit price, not the
		// line's historical unit cost
		costByVariation := map[uuid.UUID]decimal.Decimal{}
		for _, tx := range txs {
			costByVariation[tx.VariationID] = tx.UnitCost
		}
		assert.True(t, costByVariation[cr.Lines[0].VariationID].Equal(decimal.NewFromInt(150)),
			"widget restock should carry its unit price")
		assert.True(t, costByVariation[cr.Lines[2].VariationID].Equal(decimal.NewFromInt(1200)),
			"laptop restock should carry its unit price")

		unit, err := f.units.FindBySerialNumber(ctx, f.actor.TenantID, "SN-9")
		require.NoError(t, err)
		assert.Equal(t, serial.StatusReturned, unit.Status)
		assert.Equal(t, cr.LocationID, unit.CurrentLocationID)
		require.Len(t, f.moves.All(), 1)
		assert.Equal(t, serial.MovementTypeReturn, f.moves.All()[0].MovementType)

		require.Len(t, f.audit.events, 1)
		assert.Equal(t, "APPROVE", f.audit.events[0].Action)
		assert.Equal(t, "CUSTOMER_RETURN", f.audit.events[0].EntityType)
	})

	t.Run("repeated key replays without restocking twice", func(t *testing.T) {
		f := newFixture(t)
		cr := f.seedReturn(t)
		cmd := approveReturnCmd(f.actor, cr.ID, "key-1")

		first, err := f.service.ApproveReturn(ctx, cmd)
		require.NoError(t, err)
		second, err := f.service.ApproveReturn(ctx, cmd)
		require.NoError(t, err)

		assert.True(t, second.Replayed)
		assert.Equal(t, first.Response, second.Response)
		assert.Len(t, f.txs.All(), 2)
	})

	t.Run("fresh key on an approved return fails loudly", func(t *testing.T) {
		f := newFixture(t)
		cr := f.seedReturn(t)

		_, err := f.service.ApproveReturn(ctx, approveReturnCmd(f.actor, cr.ID, "key-1"))
		require.NoError(t, err)

		_, err = f.service.ApproveReturn(ctx, approveReturnCmd(f.actor, cr.ID, "key-2"))
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "ALREADY_APPROVED"))
	})

	t.Run("validates actor and return id", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.ApproveReturn(ctx, returnsapp.ApproveReturnCommand{ReturnID: uuid.New(), IdempotencyKey: "k"})
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))

		_, err = f.service.ApproveReturn(ctx, returnsapp.ApproveReturnCommand{Actor: f.actor, IdempotencyKey: "k"})
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))
	})
}

func TestRejectReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects without touching stock", func(t *testing.T) {
		f := newFixture(t)
		cr := f.seedReturn(t)

		result, err := f.service.RejectReturn(ctx, returnsapp.RejectReturnCommand{
			Actor:    f.actor,
			ReturnID: cr.ID,
			Reason:   "outside the return window",
		})
		require.NoError(t, err)
		assert.Equal(t, "REJECTED", result.Status)
		assert.Empty(t, f.txs.All())

		stored, err := f.crs.FindByID(ctx, f.actor.TenantID, cr.ID)
		require.NoError(t, err)
		assert.Equal(t, returns.ReturnStatusRejected, stored.Status)
	})

	t.Run("rejecting an approved return fails", func(t *testing.T) {
		f := newFixture(t)
		cr := f.seedReturn(t)

		_, err := f.service.ApproveReturn(ctx, approveReturnCmd(f.actor, cr.ID, "key-1"))
		require.NoError(t, err)

		_, err = f.service.RejectReturn(ctx, returnsapp.RejectReturnCommand{
			Actor:    f.actor,
			ReturnID: cr.ID,
			Reason:   "too late",
		})
		assert.True(t, shared.IsCode(err, "INVALID_STATE"))
	})
}

func TestIssueReplacement(t *testing.T) {
	ctx := context.Background()

	// stockFor seeds enough on-hand quantity for every line of the return
	stockFor := func(f *fixture, cr *returns.CustomerReturn) {
		for i := range cr.Lines {
			line := &cr.Lines[i]
			b := ledger.NewLocationBalance(f.actor.TenantID, line.ProductID, line.VariationID, cr.LocationID)
			b.QtyAvailable = decimal.NewFromInt(10)
			f.balances.Seed(b)
		}
	}

	t.Run("issues once, deducting stock at original cost", func(t *testing.T) {
		f := newFixture(t)
		cr := f.seedReturn(t)
		stockFor(f, cr)

		out, err := f.service.IssueReplacement(ctx, replacementCmd(f.actor, cr.ID, "key-1"))
		require.NoError(t, err)

		var result returnsapp.ReplacementResult
		require.NoError(t, json.Unmarshal(out.Response, &result))
		assert.Equal(t, "RPL-RET-3001", result.ReplacementNumber)
		// 2*100 + 1*60 + 1*900
		assert.True(t, result.TotalCost.Equal(decimal.NewFromInt(1160)))

		txs := f.txs.All()
		require.Len(t, txs, 3)
		for _, tx := range txs {
			assert.Equal(t, ledger.MovementTypeReplacementIssued, tx.MovementType)
			assert.True(t, tx.QuantityDelta.IsNegative())
		}

		stored, err := f.crs.FindByID(ctx, f.actor.TenantID, cr.ID)
		require.NoError(t, err)
		assert.True(t, stored.ReplacementIssued)
		require.NotNil(t, stored.ReplacementID)
		assert.Equal(t, result.ReplacementID, *stored.ReplacementID)

		replacement, err := f.rpls.FindByReturn(ctx, f.actor.TenantID, cr.ID)
		require.NoError(t, err)
		require.Len(t, replacement.Lines, 3)
		assert.True(t, replacement.Lines[0].UnitPrice.IsZero())
	})

	t.Run("second issue with a fresh key fails", func(t *testing.T) {
		f := newFixture(t)
		cr := f.seedReturn(t)
		stockFor(f, cr)

		_, err := f.service.IssueReplacement(ctx, replacementCmd(f.actor, cr.ID, "key-1"))
		require.NoError(t, err)

		_, err = f.service.IssueReplacement(ctx, replacementCmd(f.actor, cr.ID, "key-2"))
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "INVALID_STATE"))
	})

	t.Run("repeated key replays the stored result", func(t *testing.T) {
		f := newFixture(t)
		cr := f.seedReturn(t)
		stockFor(f, cr)
		cmd := replacementCmd(f.actor, cr.ID, "key-1")

		first, err := f.service.IssueReplacement(ctx, cmd)
		require.NoError(t, err)
		second, err := f.service.IssueReplacement(ctx, cmd)
		require.NoError(t, err)
		assert.True(t, second.Replayed)
		assert.Equal(t, first.Response, second.Response)
		assert.Len(t, f.txs.All(), 3)
	})

	t.Run("insufficient stock blocks the issue", func(t *testing.T) {
		f := newFixture(t)
		cr := f.seedReturn(t)
		// no stock seeded at all

		_, err := f.service.IssueReplacement(ctx, replacementCmd(f.actor, cr.ID, "key-1"))
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "INSUFFICIENT_STOCK"))
	})

	t.Run("works regardless of approval status", func(t *testing.T) {
		f := newFixture(t)
		cr := f.seedReturn(t)
		stockFor(f, cr)

		_, err := f.service.RejectReturn(ctx, returnsapp.RejectReturnCommand{
			Actor:    f.actor,
			ReturnID: cr.ID,
			Reason:   "not resellable, replacement instead",
		})
		require.NoError(t, err)

		_, err = f.service.IssueReplacement(ctx, replacementCmd(f.actor, cr.ID, "key-1"))
		require.NoError(t, err)
	})
}
