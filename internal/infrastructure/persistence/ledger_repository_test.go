package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/ledger"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockGormDB creates a GORM handle over a mocked SQL connection
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormLocationBalanceRepository_FindByVariationAndLocation(t *testing.T) {
	t.Run("finds existing balance", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormLocationBalanceRepository(gormDB)

		tenantID := uuid.New()
		variationID := uuid.New()
		locationID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "tenant_id", "product_id", "variation_id", "location_id", "qty_available",
		}).AddRow(
			uuid.New(), tenantID, uuid.New(), variationID, locationID, decimal.NewFromInt(42),
		)

		mock.ExpectQuery(`SELECT \* FROM "location_balances" WHERE tenant_id = \$1 AND variation_id = \$2 AND location_id = \$3`).
			WithArgs(tenantID, variationID, locationID, 1).
			WillReturnRows(rows)

		balance, err := repo.FindByVariationAndLocation(context.Background(), tenantID, variationID, locationID)

		assert.NoError(t, err)
		require.NotNil(t, balance)
		assert.Equal(t, tenantID, balance.TenantID)
		assert.True(t, balance.QtyAvailable.Equal(decimal.NewFromInt(42)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to ErrNotFound", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormLocationBalanceRepository(gormDB)

		tenantID := uuid.New()
		variationID := uuid.New()
		locationID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "location_balances" WHERE tenant_id = \$1 AND variation_id = \$2 AND location_id = \$3`).
			WithArgs(tenantID, variationID, locationID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		balance, err := repo.FindByVariationAndLocation(context.Background(), tenantID, variationID, locationID)

		assert.Nil(t, balance)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLocationBalanceRepository_SumByVariation(t *testing.T) {
	t.Run("sums quantity across locations", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormLocationBalanceRepository(gormDB)

		tenantID := uuid.New()
		variationID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(qty_available\), 0\) AS total FROM "location_balances" WHERE tenant_id = \$1 AND variation_id = \$2`).
			WithArgs(tenantID, variationID).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(decimal.NewFromInt(77)))

		total, err := repo.SumByVariation(context.Background(), tenantID, variationID)

		assert.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(77)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLocationBalanceRepository_Save(t *testing.T) {
	t.Run("updates the balance row", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormLocationBalanceRepository(gormDB)

		balance := ledger.NewLocationBalance(uuid.New(), uuid.New(), uuid.New(), uuid.New())
		balance.QtyAvailable = decimal.NewFromInt(10)

		mock.ExpectExec(`UPDATE "location_balances" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), balance)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockTransactionRepository_Create(t *testing.T) {
	t.Run("inserts an immutable transaction row", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormStockTransactionRepository(gormDB)

		actorID := uuid.New()
		tx := &ledger.StockTransaction{
			BaseEntity:      shared.NewBaseEntity(),
			TenantID:        uuid.New(),
			ProductID:       uuid.New(),
			VariationID:     uuid.New(),
			LocationID:      uuid.New(),
			MovementType:    ledger.MovementTypePurchase,
			QuantityDelta:   decimal.NewFromInt(10),
			BalanceAfter:    decimal.NewFromInt(10),
			UnitCost:        decimal.NewFromInt(100),
			ReferenceKind:   ledger.ReferenceKindGoodsReceipt,
			CreatedByID:     &actorID,
			CreatedByName:   "Clerk",
			TransactionDate: time.Now(),
		}

		mock.ExpectExec(`INSERT INTO "stock_transactions"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Create(context.Background(), tx)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockTransactionRepository_FindByID(t *testing.T) {
	t.Run("returns ErrNotFound for a missing transaction", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormStockTransactionRepository(gormDB)

		txID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_transactions" WHERE id = \$1`).
			WithArgs(txID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		tx, err := repo.FindByID(context.Background(), txID)

		assert.Nil(t, tx)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockTransactionRepository_SumDeltas(t *testing.T) {
	t.Run("sums signed deltas for one key", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormStockTransactionRepository(gormDB)

		tenantID := uuid.New()
		variationID := uuid.New()
		locationID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity_delta\), 0\) AS total FROM "stock_transactions" WHERE tenant_id = \$1 AND variation_id = \$2 AND location_id = \$3`).
			WithArgs(tenantID, variationID, locationID).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(decimal.NewFromInt(-3)))

		total, err := repo.SumDeltas(context.Background(), tenantID, variationID, locationID)

		assert.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(-3)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockTransactionRepository_FindByReference(t *testing.T) {
	t.Run("lists movements for one document", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormStockTransactionRepository(gormDB)

		tenantID := uuid.New()
		receiptID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "tenant_id", "product_id", "variation_id", "location_id",
			"movement_type", "quantity_delta", "balance_after", "unit_cost",
			"reference_kind", "reference_id", "transaction_date",
		}).AddRow(
			uuid.New(), tenantID, uuid.New(), uuid.New(), uuid.New(),
			"PURCHASE", decimal.NewFromInt(10), decimal.NewFromInt(10), decimal.NewFromInt(100),
			"GOODS_RECEIPT", receiptID, time.Now(),
		)

		mock.ExpectQuery(`SELECT \* FROM "stock_transactions" WHERE tenant_id = \$1 AND reference_kind = \$2 AND reference_id = \$3`).
			WithArgs(tenantID, "GOODS_RECEIPT", receiptID).
			WillReturnRows(rows)

		txs, err := repo.FindByReference(context.Background(), tenantID, ledger.DocumentRef{
			Kind: ledger.ReferenceKindGoodsReceipt,
			ID:   receiptID,
		})

		assert.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, ledger.MovementTypePurchase, txs[0].MovementType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductHistoryRepository_Create(t *testing.T) {
	t.Run("inserts a mirror row", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormProductHistoryRepository(gormDB)

		row := &ledger.ProductHistory{
			BaseEntity:         shared.NewBaseEntity(),
			TenantID:           uuid.New(),
			StockTransactionID: uuid.New(),
			ProductID:          uuid.New(),
			VariationID:        uuid.New(),
			LocationID:         uuid.New(),
			MovementType:       ledger.MovementTypePurchase,
			QuantityChange:     decimal.NewFromInt(10),
			RunningBalance:     decimal.NewFromInt(10),
			UnitCost:           decimal.NewFromInt(100),
			TotalValue:         decimal.NewFromInt(1000),
			TransactionDate:    time.Now(),
		}

		mock.ExpectExec(`INSERT INTO "product_histories"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Create(context.Background(), row)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
