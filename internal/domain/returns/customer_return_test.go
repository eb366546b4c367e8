package returns

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingReturn(t *testing.T) *CustomerReturn {
	t.Helper()
	cr, err := NewCustomerReturn(uuid.New(), uuid.New(), "RET-3001", "defective on arrival", time.Now())
	require.NoError(t, err)
	return cr
}

func returnLine(qty, price, cost int64) ReturnLine {
	return ReturnLine{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   uuid.New(),
		VariationID: uuid.New(),
		ProductName: "Widget",
		Quantity:    decimal.NewFromInt(qty),
		UnitPrice:   decimal.NewFromInt(price),
		UnitCost:    decimal.NewFromInt(cost),
		Resellable:  true,
	}
}

func TestNewCustomerReturn(t *testing.T) {
	t.Run("starts pending with no replacement", func(t *testing.T) {
		cr := pendingReturn(t)
		assert.Equal(t, ReturnStatusPending, cr.Status)
		assert.False(t, cr.ReplacementIssued)
		assert.Nil(t, cr.ReplacementID)
	})

	t.Run("rejects missing identity", func(t *testing.T) {
		_, err := NewCustomerReturn(uuid.Nil, uuid.New(), "RET-1", "", time.Now())
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))

		_, err = NewCustomerReturn(uuid.New(), uuid.New(), "", "", time.Now())
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))
	})
}

func TestReturnLineValidate(t *testing.T) {
	t.Run("zero-priced line is valid", func(t *testing.T) {
		line := returnLine(1, 0, 50)
		require.NoError(t, line.Validate())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		line := returnLine(0, 10, 5)
		assert.True(t, shared.IsCode(line.Validate(), "INVALID_INPUT"))
	})

	t.Run("rejects negative price or cost", func(t *testing.T) {
		line := returnLine(1, -1, 5)
		assert.True(t, shared.IsCode(line.Validate(), "INVALID_INPUT"))

		line = returnLine(1, 10, -5)
		assert.True(t, shared.IsCode(line.Validate(), "INVALID_INPUT"))
	})
}

func TestCustomerReturnApproveReject(t *testing.T) {
	actor := shared.Actor{TenantID: uuid.New(), UserID: uuid.New(), DisplayName: "Reviewer"}

	t.Run("approves a pending return with lines", func(t *testing.T) {
		cr := pendingReturn(t)
		require.NoError(t, cr.AddLine(returnLine(2, 150, 100)))

		at := time.Now()
		require.NoError(t, cr.Approve(actor, at))
		assert.Equal(t, ReturnStatusApproved, cr.Status)
		require.NotNil(t, cr.ApprovedAt)
		assert.Equal(t, 2, cr.Version)
	})

	t.Run("second approval fails with ALREADY_APPROVED", func(t *testing.T) {
		cr := pendingReturn(t)
		require.NoError(t, cr.AddLine(returnLine(1, 10, 5)))
		require.NoError(t, cr.Approve(actor, time.Now()))

		err := cr.Approve(actor, time.Now())
		assert.True(t, shared.IsCode(err, "ALREADY_APPROVED"))
	})

	t.Run("cannot approve without lines", func(t *testing.T) {
		cr := pendingReturn(t)
		err := cr.Approve(actor, time.Now())
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		cr := pendingReturn(t)
		err := cr.Reject(actor, "", time.Now())
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))
	})

	t.Run("cannot reject an approved return", func(t *testing.T) {
		cr := pendingReturn(t)
		require.NoError(t, cr.AddLine(returnLine(1, 10, 5)))
		require.NoError(t, cr.Approve(actor, time.Now()))

		err := cr.Reject(actor, "changed my mind", time.Now())
		assert.True(t, shared.IsCode(err, "INVALID_STATE"))
	})
}

func TestMarkReplacementIssued(t *testing.T) {
	t.Run("flips exactly once", func(t *testing.T) {
		cr := pendingReturn(t)
		replacementID := uuid.New()

		require.NoError(t, cr.MarkReplacementIssued(replacementID))
		assert.True(t, cr.ReplacementIssued)
		require.NotNil(t, cr.ReplacementID)
		assert.Equal(t, replacementID, *cr.ReplacementID)

		err := cr.MarkReplacementIssued(uuid.New())
		assert.True(t, shared.IsCode(err, "INVALID_STATE"))
	})

	t.Run("independent of approval status", func(t *testing.T) {
		actor := shared.Actor{TenantID: uuid.New(), UserID: uuid.New()}
		cr := pendingReturn(t)
		require.NoError(t, cr.Reject(actor, "not resellable", time.Now()))
		require.NoError(t, cr.MarkReplacementIssued(uuid.New()))
	})
}

func TestNewReplacement(t *testing.T) {
	issuer := shared.Actor{TenantID: uuid.New(), UserID: uuid.New(), DisplayName: "Manager"}

	t.Run("copies lines at zero price and original cost", func(t *testing.T) {
		cr := pendingReturn(t)
		saleID := uuid.New()
		customerID := uuid.New()
		cr.SaleID = &saleID
		cr.CustomerID = &customerID
		cr.CustomerName = "Acme Retail"
		line := returnLine(2, 150, 100)
		line.SerialNumber = "SN-1"
		require.NoError(t, cr.AddLine(line))
		require.NoError(t, cr.AddLine(returnLine(3, 80, 60)))

		issuedAt := time.Now()
		r, err := NewReplacement(cr, "RPL-3001", issuer, issuedAt)
		require.NoError(t, err)

		assert.Equal(t, cr.ID, r.CustomerReturnID)
		assert.Equal(t, cr.LocationID, r.LocationID)
		// The fulfillment record points back at the original sale's customer
		require.NotNil(t, r.SaleID)
		assert.Equal(t, saleID, *r.SaleID)
		require.NotNil(t, r.CustomerID)
		assert.Equal(t, customerID, *r.CustomerID)
		assert.Equal(t, "Acme Retail", r.CustomerName)
		assert.Equal(t, "Manager", r.IssuedByName)
		require.Len(t, r.Lines, 2)
		assert.True(t, r.Lines[0].UnitPrice.IsZero())
		assert.True(t, r.Lines[0].UnitCost.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "SN-1", r.Lines[0].SerialNumber)
		assert.True(t, r.Lines[1].UnitPrice.IsZero())
		// 2*100 + 3*60
		assert.True(t, r.TotalCost.Equal(decimal.NewFromInt(380)))
	})

	t.Run("requires a number and lines", func(t *testing.T) {
		cr := pendingReturn(t)
		require.NoError(t, cr.AddLine(returnLine(1, 10, 5)))

		_, err := NewReplacement(cr, "", issuer, time.Now())
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))

		empty := pendingReturn(t)
		_, err = NewReplacement(empty, "RPL-1", issuer, time.Now())
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))
	})
}
