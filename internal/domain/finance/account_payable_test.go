package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unpaidPayable(t *testing.T, amount int64, invoiceDate time.Time, termsDays int) *AccountPayable {
	t.Helper()
	ap, err := NewAccountPayable(uuid.New(), uuid.New(), uuid.New(), "Acme Supply", "AP-PO-1001",
		decimal.NewFromInt(amount), "USD", invoiceDate, termsDays)
	require.NoError(t, err)
	return ap
}

func TestNewAccountPayable(t *testing.T) {
	invoiceDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("due date is invoice date plus payment terms", func(t *testing.T) {
		ap := unpaidPayable(t, 1200, invoiceDate, 45)
		assert.Equal(t, PayableStatusUnpaid, ap.Status)
		assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), ap.DueDate)
		assert.True(t, ap.PaidAmount.IsZero())
	})

	t.Run("defaults terms and currency", func(t *testing.T) {
		ap, err := NewAccountPayable(uuid.New(), uuid.New(), uuid.New(), "Acme", "AP-1",
			decimal.NewFromInt(100), "", invoiceDate, 0)
		require.NoError(t, err)
		assert.Equal(t, "USD", ap.Currency)
		assert.Equal(t, invoiceDate.AddDate(0, 0, 30), ap.DueDate)
	})

	t.Run("amount must be positive", func(t *testing.T) {
		_, err := NewAccountPayable(uuid.New(), uuid.New(), uuid.New(), "Acme", "AP-1",
			decimal.Zero, "USD", invoiceDate, 30)
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))
	})

	t.Run("requires ids and number", func(t *testing.T) {
		_, err := NewAccountPayable(uuid.Nil, uuid.New(), uuid.New(), "Acme", "AP-1",
			decimal.NewFromInt(1), "USD", invoiceDate, 30)
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))

		_, err = NewAccountPayable(uuid.New(), uuid.New(), uuid.New(), "Acme", "",
			decimal.NewFromInt(1), "USD", invoiceDate, 30)
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))
	})
}

func TestRecordPayment(t *testing.T) {
	invoiceDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("partial payment rolls to PARTIALLY_PAID", func(t *testing.T) {
		ap := unpaidPayable(t, 1000, invoiceDate, 30)
		require.NoError(t, ap.RecordPayment(decimal.NewFromInt(400), time.Now()))
		assert.Equal(t, PayableStatusPartiallyPaid, ap.Status)
		assert.True(t, ap.Outstanding().Equal(decimal.NewFromInt(600)))
		assert.Nil(t, ap.PaidAt)
	})

	t.Run("final payment rolls to PAID", func(t *testing.T) {
		ap := unpaidPayable(t, 1000, invoiceDate, 30)
		require.NoError(t, ap.RecordPayment(decimal.NewFromInt(400), time.Now()))

		paidAt := time.Now()
		require.NoError(t, ap.RecordPayment(decimal.NewFromInt(600), paidAt))
		assert.Equal(t, PayableStatusPaid, ap.Status)
		assert.True(t, ap.Outstanding().IsZero())
		require.NotNil(t, ap.PaidAt)
		assert.True(t, ap.PaidAt.Equal(paidAt))
	})

	t.Run("overpayment is rejected", func(t *testing.T) {
		ap := unpaidPayable(t, 1000, invoiceDate, 30)
		err := ap.RecordPayment(decimal.NewFromInt(1001), time.Now())
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))
	})

	t.Run("paying a settled payable is rejected", func(t *testing.T) {
		ap := unpaidPayable(t, 100, invoiceDate, 30)
		require.NoError(t, ap.RecordPayment(decimal.NewFromInt(100), time.Now()))
		err := ap.RecordPayment(decimal.NewFromInt(1), time.Now())
		assert.True(t, shared.IsCode(err, "INVALID_STATE"))
	})

	t.Run("non-positive payment is rejected", func(t *testing.T) {
		ap := unpaidPayable(t, 100, invoiceDate, 30)
		err := ap.RecordPayment(decimal.Zero, time.Now())
		assert.True(t, shared.IsCode(err, "INVALID_INPUT"))
	})
}

func TestIsOverdue(t *testing.T) {
	invoiceDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ap := unpaidPayable(t, 100, invoiceDate, 30)

	assert.False(t, ap.IsOverdue(ap.DueDate))
	assert.True(t, ap.IsOverdue(ap.DueDate.AddDate(0, 0, 1)))

	require.NoError(t, ap.RecordPayment(decimal.NewFromInt(100), time.Now()))
	assert.False(t, ap.IsOverdue(ap.DueDate.AddDate(0, 0, 1)))
}
