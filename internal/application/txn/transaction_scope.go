package txn

import (
	"context"

	"github.com/retailops/backend/internal/domain/costing"
	"github.com/retailops/backend/internal/domain/finance"
	"github.com/retailops/backend/internal/domain/ledger"
	"github.com/retailops/backend/internal/domain/purchasing"
	"github.com/retailops/backend/internal/domain/returns"
	"github.com/retailops/backend/internal/domain/serial"
)

// TransactionScope provides transactional access to the domain repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all domain repositories within
// a transaction. All repositories returned share the same underlying database
// transaction, so row locks taken through one are visible to the rest.
type TransactionalRepositories interface {
	// BalanceRepo returns the location balance repository scoped to the current transaction
	BalanceRepo() ledger.LocationBalanceRepository
	// StockTransactionRepo returns the stock transaction repository scoped to the current transaction
	StockTransactionRepo() ledger.StockTransactionRepository
	// ProductHistoryRepo returns the product history repository scoped to the current transaction
	ProductHistoryRepo() ledger.ProductHistoryRepository
	// CostBasisRepo returns the cost basis repository scoped to the current transaction
	CostBasisRepo() costing.CostBasisRepository
	// SerialUnitRepo returns the serial unit repository scoped to the current transaction
	SerialUnitRepo() serial.SerialUnitRepository
	// SerialMovementRepo returns the serial movement repository scoped to the current transaction
	SerialMovementRepo() serial.SerialMovementRepository
	// PurchaseOrderRepo returns the purchase order repository scoped to the current transaction
	PurchaseOrderRepo() purchasing.PurchaseOrderRepository
	// GoodsReceiptRepo returns the goods receipt repository scoped to the current transaction
	GoodsReceiptRepo() purchasing.GoodsReceiptRepository
	// CustomerReturnRepo returns the customer return repository scoped to the current transaction
	CustomerReturnRepo() returns.CustomerReturnRepository
	// ReplacementRepo returns the replacement repository scoped to the current transaction
	ReplacementRepo() returns.ReplacementRepository
	// PayableRepo returns the account payable repository scoped to the current transaction
	PayableRepo() finance.AccountPayableRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing with in-memory or mocked repositories.
type NoOpTransactionScope struct {
	Balances       ledger.LocationBalanceRepository
	Transactions   ledger.StockTransactionRepository
	Histories      ledger.ProductHistoryRepository
	CostBases      costing.CostBasisRepository
	SerialUnits    serial.SerialUnitRepository
	SerialMoves    serial.SerialMovementRepository
	PurchaseOrders purchasing.PurchaseOrderRepository
	GoodsReceipts  purchasing.GoodsReceiptRepository
	Returns        returns.CustomerReturnRepository
	Replacements   returns.ReplacementRepository
	Payables       finance.AccountPayableRepository
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) BalanceRepo() ledger.LocationBalanceRepository {
	return s.Balances
}

func (s *NoOpTransactionScope) StockTransactionRepo() ledger.StockTransactionRepository {
	return s.Transactions
}

func (s *NoOpTransactionScope) ProductHistoryRepo() ledger.ProductHistoryRepository {
	return s.Histories
}

func (s *NoOpTransactionScope) CostBasisRepo() costing.CostBasisRepository {
	return s.CostBases
}

func (s *NoOpTransactionScope) SerialUnitRepo() serial.SerialUnitRepository {
	return s.SerialUnits
}

func (s *NoOpTransactionScope) SerialMovementRepo() serial.SerialMovementRepository {
	return s.SerialMoves
}

func (s *NoOpTransactionScope) PurchaseOrderRepo() purchasing.PurchaseOrderRepository {
	return s.PurchaseOrders
}

func (s *NoOpTransactionScope) GoodsReceiptRepo() purchasing.GoodsReceiptRepository {
	return s.GoodsReceipts
}

func (s *NoOpTransactionScope) CustomerReturnRepo() returns.CustomerReturnRepository {
	return s.Returns
}

func (s *NoOpTransactionScope) ReplacementRepo() returns.ReplacementRepository {
	return s.Replacements
}

func (s *NoOpTransactionScope) PayableRepo() finance.AccountPayableRepository {
	return s.Payables
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
