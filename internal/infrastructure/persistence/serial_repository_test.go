package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/serial"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func intakeUnit(tenantID uuid.UUID) *serial.SerialUnit {
	receiptID := uuid.New()
	return &serial.SerialUnit{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          tenantID,
		SerialNumber:      "SN-1",
		ProductID:         uuid.New(),
		VariationID:       uuid.New(),
		Status:            serial.StatusInStock,
		Condition:         "NEW",
		CurrentLocationID: uuid.New(),
		ReceiptID:         &receiptID,
		PurchaseCost:      decimal.NewFromInt(500),
	}
}

func TestGormSerialUnitRepository_Upsert(t *testing.T) {
	t.Run("overwrite keeps the stored row identity", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormSerialUnitRepository(gormDB)

		tenantID := uuid.New()
		unit := intakeUnit(tenantID)
		freshID := unit.ID

		storedID := uuid.New()
		storedCreatedAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT "id","created_at" FROM "serial_units" WHERE tenant_id = \$1 AND serial_number = \$2`).
			WithArgs(tenantID, "SN-1", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(storedID, storedCreatedAt))
		mock.ExpectExec(`UPDATE "serial_units" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Upsert(context.Background(), unit)

		assert.NoError(t, err)
		// Movement rows appended after the upsert must reference the row
		// that survived, not the fresh in-memory id
		assert.Equal(t, storedID, unit.ID)
		assert.NotEqual(t, freshID, unit.ID)
		assert.True(t, storedCreatedAt.Equal(unit.CreatedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inserts when the serial is new", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormSerialUnitRepository(gormDB)

		tenantID := uuid.New()
		unit := intakeUnit(tenantID)
		originalID := unit.ID

		mock.ExpectQuery(`SELECT "id","created_at" FROM "serial_units" WHERE tenant_id = \$1 AND serial_number = \$2`).
			WithArgs(tenantID, "SN-1", 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectExec(`INSERT INTO "serial_units"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Upsert(context.Background(), unit)

		assert.NoError(t, err)
		assert.Equal(t, originalID, unit.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSerialUnitRepository_FindBySerialNumber(t *testing.T) {
	t.Run("maps missing unit to ErrNotFound", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormSerialUnitRepository(gormDB)

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "serial_units" WHERE tenant_id = \$1 AND serial_number = \$2`).
			WithArgs(tenantID, "SN-404", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		unit, err := repo.FindBySerialNumber(context.Background(), tenantID, "SN-404")

		assert.Nil(t, unit)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
