package persistence

import (
	"context"
	"time"

	"github.com/retailops/backend/internal/application/txn"
	"github.com/retailops/backend/internal/domain/costing"
	"github.com/retailops/backend/internal/domain/finance"
	"github.com/retailops/backend/internal/domain/ledger"
	"github.com/retailops/backend/internal/domain/purchasing"
	"github.com/retailops/backend/internal/domain/returns"
	"github.com/retailops/backend/internal/domain/serial"
	"gorm.io/gorm"
)

// GormTransactionScope implements txn.TransactionScope using GORM
// transactions. Every repository handed to the callback runs on the same
// *gorm.DB transaction, so row locks taken by one are held for all.
type GormTransactionScope struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormTransactionScope creates a transaction scope with the given timeout
// applied to each transaction. A zero timeout leaves the caller's context
// untouched.
func NewGormTransactionScope(db *gorm.DB, timeout time.Duration) *GormTransactionScope {
	return &GormTransactionScope{db: db, timeout: timeout}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos txn.TransactionalRepositories) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) BalanceRepo() ledger.LocationBalanceRepository {
	return NewGormLocationBalanceRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockTransactionRepo() ledger.StockTransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) ProductHistoryRepo() ledger.ProductHistoryRepository {
	return NewGormProductHistoryRepository(r.tx)
}

func (r *gormTransactionalRepositories) CostBasisRepo() costing.CostBasisRepository {
	return NewGormCostBasisRepository(r.tx)
}

func (r *gormTransactionalRepositories) SerialUnitRepo() serial.SerialUnitRepository {
	return NewGormSerialUnitRepository(r.tx)
}

func (r *gormTransactionalRepositories) SerialMovementRepo() serial.SerialMovementRepository {
	return NewGormSerialMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) PurchaseOrderRepo() purchasing.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) GoodsReceiptRepo() purchasing.GoodsReceiptRepository {
	return NewGormGoodsReceiptRepository(r.tx)
}

func (r *gormTransactionalRepositories) CustomerReturnRepo() returns.CustomerReturnRepository {
	return NewGormCustomerReturnRepository(r.tx)
}

func (r *gormTransactionalRepositories) ReplacementRepo() returns.ReplacementRepository {
	return NewGormReplacementRepository(r.tx)
}

func (r *gormTransactionalRepositories) PayableRepo() finance.AccountPayableRepository {
	return NewGormAccountPayableRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ txn.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ txn.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
