package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/costing"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormCostBasisRepository_FindByVariation(t *testing.T) {
	t.Run("finds existing basis", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormCostBasisRepository(gormDB)

		tenantID := uuid.New()
		variationID := uuid.New()
		lastPurchase := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{
			"id", "tenant_id", "product_id", "variation_id",
			"purchase_price", "last_purchase_date", "last_purchase_cost", "last_purchase_quantity",
		}).AddRow(
			uuid.New(), tenantID, uuid.New(), variationID,
			decimal.RequireFromString("123.45"), lastPurchase, decimal.NewFromInt(150), decimal.NewFromInt(10),
		)

		mock.ExpectQuery(`SELECT \* FROM "cost_bases" WHERE tenant_id = \$1 AND variation_id = \$2`).
			WithArgs(tenantID, variationID, 1).
			WillReturnRows(rows)

		basis, err := repo.FindByVariation(context.Background(), tenantID, variationID)

		assert.NoError(t, err)
		require.NotNil(t, basis)
		assert.True(t, basis.PurchasePrice.Equal(decimal.RequireFromString("123.45")))
		require.NotNil(t, basis.LastPurchaseDate)
		assert.True(t, lastPurchase.Equal(*basis.LastPurchaseDate))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to ErrNotFound", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormCostBasisRepository(gormDB)

		tenantID := uuid.New()
		variationID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "cost_bases" WHERE tenant_id = \$1 AND variation_id = \$2`).
			WithArgs(tenantID, variationID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		basis, err := repo.FindByVariation(context.Background(), tenantID, variationID)

		assert.Nil(t, basis)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCostBasisRepository_Save(t *testing.T) {
	t.Run("updates the basis row", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormCostBasisRepository(gormDB)

		basis := costing.NewCostBasis(uuid.New(), uuid.New(), uuid.New())
		basis.PurchasePrice = decimal.NewFromInt(150)

		mock.ExpectExec(`UPDATE "cost_bases" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), basis)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
