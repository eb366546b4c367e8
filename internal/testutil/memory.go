// Package testutil provides in-memory repository implementations for
// application and domain tests. They honor the same contracts as the GORM
// repositories (shared.ErrNotFound on missing rows, get-or-create on balance
// and cost rows) but hold everything in maps, with no locking semantics.
package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/application/idempotency"
	"github.com/retailops/backend/internal/domain/costing"
	"github.com/retailops/backend/internal/domain/finance"
	"github.com/retailops/backend/internal/domain/ledger"
	"github.com/retailops/backend/internal/domain/purchasing"
	"github.com/retailops/backend/internal/domain/returns"
	"github.com/retailops/backend/internal/domain/serial"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

type balanceKey struct {
	tenantID    uuid.UUID
	variationID uuid.UUID
	locationID  uuid.UUID
}

// MemoryBalances is an in-memory ledger.LocationBalanceRepository
type MemoryBalances struct {
	mu   sync.Mutex
	rows map[balanceKey]*ledger.LocationBalance
}

// NewMemoryBalances creates an empty balance store
func NewMemoryBalances() *MemoryBalances {
	return &MemoryBalances{rows: make(map[balanceKey]*ledger.LocationBalance)}
}

// Seed inserts a balance row directly, bypassing the ledger
func (m *MemoryBalances) Seed(b *ledger.LocationBalance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[balanceKey{b.TenantID, b.VariationID, b.LocationID}] = b
}

func (m *MemoryBalances) FindByVariationAndLocation(_ context.Context, tenantID, variationID, locationID uuid.UUID) (*ledger.LocationBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[balanceKey{tenantID, variationID, locationID}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return b, nil
}

func (m *MemoryBalances) GetOrCreateForUpdate(_ context.Context, tenantID, productID, variationID, locationID uuid.UUID) (*ledger.LocationBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := balanceKey{tenantID, variationID, locationID}
	if b, ok := m.rows[key]; ok {
		return b, nil
	}
	b := ledger.NewLocationBalance(tenantID, productID, variationID, locationID)
	m.rows[key] = b
	return b, nil
}

func (m *MemoryBalances) FindByKeys(_ context.Context, tenantID uuid.UUID, keys []ledger.BalanceKey) ([]ledger.LocationBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.LocationBalance
	for _, k := range keys {
		if b, ok := m.rows[balanceKey{tenantID, k.VariationID, k.LocationID}]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *MemoryBalances) SumByVariation(_ context.Context, tenantID, variationID uuid.UUID) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for k, b := range m.rows {
		if k.tenantID == tenantID && k.variationID == variationID {
			total = total.Add(b.QtyAvailable)
		}
	}
	return total, nil
}

func (m *MemoryBalances) Save(_ context.Context, balance *ledger.LocationBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[balanceKey{balance.TenantID, balance.VariationID, balance.LocationID}] = balance
	return nil
}

// MemoryStockTransactions is an in-memory ledger.StockTransactionRepository
type MemoryStockTransactions struct {
	mu   sync.Mutex
	rows []ledger.StockTransaction
}

// NewMemoryStockTransactions creates an empty ledger store
func NewMemoryStockTransactions() *MemoryStockTransactions {
	return &MemoryStockTransactions{}
}

// All returns every appended transaction in insertion order
func (m *MemoryStockTransactions) All() []ledger.StockTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ledger.StockTransaction, len(m.rows))
	copy(out, m.rows)
	return out
}

func (m *MemoryStockTransactions) Create(_ context.Context, tx *ledger.StockTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *tx)
	return nil
}

func (m *MemoryStockTransactions) FindByID(_ context.Context, id uuid.UUID) (*ledger.StockTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			tx := m.rows[i]
			return &tx, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *MemoryStockTransactions) FindByVariationAndLocation(_ context.Context, tenantID, variationID, locationID uuid.UUID, _ shared.Filter) ([]ledger.StockTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.StockTransaction
	for i := range m.rows {
		tx := m.rows[i]
		if tx.TenantID == tenantID && tx.VariationID == variationID && tx.LocationID == locationID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *MemoryStockTransactions) FindByReference(_ context.Context, tenantID uuid.UUID, ref ledger.DocumentRef) ([]ledger.StockTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.StockTransaction
	for i := range m.rows {
		tx := m.rows[i]
		if tx.TenantID == tenantID && tx.ReferenceKind == ref.Kind && tx.ReferenceID != nil && *tx.ReferenceID == ref.ID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *MemoryStockTransactions) SumDeltas(_ context.Context, tenantID, variationID, locationID uuid.UUID) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for i := range m.rows {
		tx := &m.rows[i]
		if tx.TenantID == tenantID && tx.VariationID == variationID && tx.LocationID == locationID {
			total = total.Add(tx.QuantityDelta)
		}
	}
	return total, nil
}

func (m *MemoryStockTransactions) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for i := range m.rows {
		if m.rows[i].TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

// MemoryProductHistories is an in-memory ledger.ProductHistoryRepository
type MemoryProductHistories struct {
	mu   sync.Mutex
	rows []ledger.ProductHistory
}

// NewMemoryProductHistories creates an empty history store
func NewMemoryProductHistories() *MemoryProductHistories {
	return &MemoryProductHistories{}
}

// All returns every appended history row
func (m *MemoryProductHistories) All() []ledger.ProductHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ledger.ProductHistory, len(m.rows))
	copy(out, m.rows)
	return out
}

func (m *MemoryProductHistories) Create(_ context.Context, row *ledger.ProductHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *row)
	return nil
}

func (m *MemoryProductHistories) FindByVariation(_ context.Context, tenantID, variationID uuid.UUID, _ shared.Filter) ([]ledger.ProductHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.ProductHistory
	for i := range m.rows {
		if m.rows[i].TenantID == tenantID && m.rows[i].VariationID == variationID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

type costKey struct {
	tenantID    uuid.UUID
	variationID uuid.UUID
}

// MemoryCostBases is an in-memory costing.CostBasisRepository
type MemoryCostBases struct {
	mu   sync.Mutex
	rows map[costKey]*costing.CostBasis
}

// NewMemoryCostBases creates an empty cost basis store
func NewMemoryCostBases() *MemoryCostBases {
	return &MemoryCostBases{rows: make(map[costKey]*costing.CostBasis)}
}

// Seed inserts a cost basis directly
func (m *MemoryCostBases) Seed(b *costing.CostBasis) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[costKey{b.TenantID, b.VariationID}] = b
}

func (m *MemoryCostBases) FindByVariation(_ context.Context, tenantID, variationID uuid.UUID) (*costing.CostBasis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[costKey{tenantID, variationID}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return b, nil
}

func (m *MemoryCostBases) GetOrCreateForUpdate(_ context.Context, tenantID, productID, variationID uuid.UUID) (*costing.CostBasis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := costKey{tenantID, variationID}
	if b, ok := m.rows[key]; ok {
		return b, nil
	}
	b := costing.NewCostBasis(tenantID, productID, variationID)
	m.rows[key] = b
	return b, nil
}

func (m *MemoryCostBases) Save(_ context.Context, basis *costing.CostBasis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[costKey{basis.TenantID, basis.VariationID}] = basis
	return nil
}

type serialKey struct {
	tenantID     uuid.UUID
	serialNumber string
}

// MemorySerialUnits is an in-memory serial.SerialUnitRepository
type MemorySerialUnits struct {
	mu   sync.Mutex
	rows map[serialKey]*serial.SerialUnit
}

// NewMemorySerialUnits creates an empty serial unit store
func NewMemorySerialUnits() *MemorySerialUnits {
	return &MemorySerialUnits{rows: make(map[serialKey]*serial.SerialUnit)}
}

// Seed inserts a unit directly
func (m *MemorySerialUnits) Seed(u *serial.SerialUnit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[serialKey{u.TenantID, u.SerialNumber}] = u
}

func (m *MemorySerialUnits) FindBySerialNumber(_ context.Context, tenantID uuid.UUID, serialNumber string) (*serial.SerialUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[serialKey{tenantID, serialNumber}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *MemorySerialUnits) FindBySerialNumbersForUpdate(_ context.Context, tenantID uuid.UUID, serialNumbers []string) ([]serial.SerialUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []serial.SerialUnit
	for _, sn := range serialNumbers {
		if u, ok := m.rows[serialKey{tenantID, sn}]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *MemorySerialUnits) FindByReceipt(_ context.Context, tenantID, receiptID uuid.UUID) ([]serial.SerialUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []serial.SerialUnit
	for _, u := range m.rows {
		if u.TenantID == tenantID && u.ReceiptID != nil && *u.ReceiptID == receiptID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *MemorySerialUnits) Upsert(_ context.Context, unit *serial.SerialUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := serialKey{unit.TenantID, unit.SerialNumber}
	if existing, ok := m.rows[key]; ok {
		// The unique index wins: keep the original row identity
		unit.ID = existing.ID
		unit.CreatedAt = existing.CreatedAt
	}
	m.rows[key] = unit
	return nil
}

func (m *MemorySerialUnits) Save(_ context.Context, unit *serial.SerialUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[serialKey{unit.TenantID, unit.SerialNumber}] = unit
	return nil
}

func (m *MemorySerialUnits) FindForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]serial.SerialUnit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []serial.SerialUnit
	for _, u := range m.rows {
		if u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

// MemorySerialMovements is an in-memory serial.SerialMovementRepository
type MemorySerialMovements struct {
	mu   sync.Mutex
	rows []serial.SerialMovement
}

// NewMemorySerialMovements creates an empty movement store
func NewMemorySerialMovements() *MemorySerialMovements {
	return &MemorySerialMovements{}
}

// All returns every appended movement
func (m *MemorySerialMovements) All() []serial.SerialMovement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]serial.SerialMovement, len(m.rows))
	copy(out, m.rows)
	return out
}

func (m *MemorySerialMovements) Create(_ context.Context, movement *serial.SerialMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *movement)
	return nil
}

func (m *MemorySerialMovements) FindBySerialUnit(_ context.Context, serialUnitID uuid.UUID) ([]serial.SerialMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []serial.SerialMovement
	for i := range m.rows {
		if m.rows[i].SerialUnitID == serialUnitID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

// MemoryPurchaseOrders is an in-memory purchasing.PurchaseOrderRepository
type MemoryPurchaseOrders struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*purchasing.PurchaseOrder
}

// NewMemoryPurchaseOrders creates an empty purchase order store
func NewMemoryPurchaseOrders() *MemoryPurchaseOrders {
	return &MemoryPurchaseOrders{rows: make(map[uuid.UUID]*purchasing.PurchaseOrder)}
}

func (m *MemoryPurchaseOrders) FindByID(_ context.Context, tenantID, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	po, ok := m.rows[id]
	if !ok || po.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return po, nil
}

func (m *MemoryPurchaseOrders) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	return m.FindByID(ctx, tenantID, id)
}

func (m *MemoryPurchaseOrders) FindByOrderNumber(_ context.Context, tenantID uuid.UUID, orderNumber string) (*purchasing.PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, po := range m.rows {
		if po.TenantID == tenantID && po.OrderNumber == orderNumber {
			return po, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *MemoryPurchaseOrders) Create(_ context.Context, order *purchasing.PurchaseOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[order.ID] = order
	return nil
}

func (m *MemoryPurchaseOrders) Save(_ context.Context, order *purchasing.PurchaseOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[order.ID] = order
	return nil
}

func (m *MemoryPurchaseOrders) FindForTenant(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[purchasing.PurchaseOrder], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []purchasing.PurchaseOrder
	for _, po := range m.rows {
		if po.TenantID == tenantID {
			items = append(items, *po)
		}
	}
	p := shared.NewPaginated(items, int64(len(items)), pageOf(filter), pageSizeOf(filter))
	return &p, nil
}

// MemoryGoodsReceipts is an in-memory purchasing.GoodsReceiptRepository
type MemoryGoodsReceipts struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*purchasing.GoodsReceipt
}

// NewMemoryGoodsReceipts creates an empty receipt store
func NewMemoryGoodsReceipts() *MemoryGoodsReceipts {
	return &MemoryGoodsReceipts{rows: make(map[uuid.UUID]*purchasing.GoodsReceipt)}
}

func (m *MemoryGoodsReceipts) FindByID(_ context.Context, tenantID, id uuid.UUID) (*purchasing.GoodsReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gr, ok := m.rows[id]
	if !ok || gr.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return gr, nil
}

func (m *MemoryGoodsReceipts) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.GoodsReceipt, error) {
	return m.FindByID(ctx, tenantID, id)
}

func (m *MemoryGoodsReceipts) FindByPurchaseOrder(_ context.Context, tenantID, purchaseOrderID uuid.UUID) ([]purchasing.GoodsReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []purchasing.GoodsReceipt
	for _, gr := range m.rows {
		if gr.TenantID == tenantID && gr.PurchaseOrderID == purchaseOrderID {
			out = append(out, *gr)
		}
	}
	return out, nil
}

func (m *MemoryGoodsReceipts) Create(_ context.Context, receipt *purchasing.GoodsReceipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[receipt.ID] = receipt
	return nil
}

func (m *MemoryGoodsReceipts) Save(_ context.Context, receipt *purchasing.GoodsReceipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[receipt.ID] = receipt
	return nil
}

func (m *MemoryGoodsReceipts) FindForTenant(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[purchasing.GoodsReceipt], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []purchasing.GoodsReceipt
	for _, gr := range m.rows {
		if gr.TenantID == tenantID {
			items = append(items, *gr)
		}
	}
	p := shared.NewPaginated(items, int64(len(items)), pageOf(filter), pageSizeOf(filter))
	return &p, nil
}

// MemoryCustomerReturns is an in-memory returns.CustomerReturnRepository
type MemoryCustomerReturns struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*returns.CustomerReturn
}

// NewMemoryCustomerReturns creates an empty return store
func NewMemoryCustomerReturns() *MemoryCustomerReturns {
	return &MemoryCustomerReturns{rows: make(map[uuid.UUID]*returns.CustomerReturn)}
}

func (m *MemoryCustomerReturns) FindByID(_ context.Context, tenantID, id uuid.UUID) (*returns.CustomerReturn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cr, ok := m.rows[id]
	if !ok || cr.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return cr, nil
}

func (m *MemoryCustomerReturns) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*returns.CustomerReturn, error) {
	return m.FindByID(ctx, tenantID, id)
}

func (m *MemoryCustomerReturns) Create(_ context.Context, cr *returns.CustomerReturn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[cr.ID] = cr
	return nil
}

func (m *MemoryCustomerReturns) Save(_ context.Context, cr *returns.CustomerReturn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[cr.ID] = cr
	return nil
}

func (m *MemoryCustomerReturns) FindForTenant(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[returns.CustomerReturn], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []returns.CustomerReturn
	for _, cr := range m.rows {
		if cr.TenantID == tenantID {
			items = append(items, *cr)
		}
	}
	p := shared.NewPaginated(items, int64(len(items)), pageOf(filter), pageSizeOf(filter))
	return &p, nil
}

// MemoryReplacements is an in-memory returns.ReplacementRepository
type MemoryReplacements struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*returns.Replacement
}

// NewMemoryReplacements creates an empty replacement store
func NewMemoryReplacements() *MemoryReplacements {
	return &MemoryReplacements{rows: make(map[uuid.UUID]*returns.Replacement)}
}

func (m *MemoryReplacements) FindByID(_ context.Context, tenantID, id uuid.UUID) (*returns.Replacement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || r.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return r, nil
}

func (m *MemoryReplacements) FindByReturn(_ context.Context, tenantID, customerReturnID uuid.UUID) (*returns.Replacement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.TenantID == tenantID && r.CustomerReturnID == customerReturnID {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *MemoryReplacements) Create(_ context.Context, r *returns.Replacement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.ID] = r
	return nil
}

// MemoryPayables is an in-memory finance.AccountPayableRepository
type MemoryPayables struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*finance.AccountPayable
}

// NewMemoryPayables creates an empty payable store
func NewMemoryPayables() *MemoryPayables {
	return &MemoryPayables{rows: make(map[uuid.UUID]*finance.AccountPayable)}
}

// All returns every stored payable
func (m *MemoryPayables) All() []finance.AccountPayable {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []finance.AccountPayable
	for _, p := range m.rows {
		out = append(out, *p)
	}
	return out
}

func (m *MemoryPayables) FindByID(_ context.Context, tenantID, id uuid.UUID) (*finance.AccountPayable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (m *MemoryPayables) FindByPurchaseOrder(_ context.Context, tenantID, purchaseOrderID uuid.UUID) (*finance.AccountPayable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.TenantID == tenantID && p.PurchaseOrderID == purchaseOrderID {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *MemoryPayables) ExistsForPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) (bool, error) {
	_, err := m.FindByPurchaseOrder(ctx, tenantID, purchaseOrderID)
	if err != nil {
		if err == shared.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *MemoryPayables) Create(_ context.Context, payable *finance.AccountPayable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[payable.ID] = payable
	return nil
}

func (m *MemoryPayables) Save(_ context.Context, payable *finance.AccountPayable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[payable.ID] = payable
	return nil
}

func (m *MemoryPayables) FindForTenant(_ context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[finance.AccountPayable], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []finance.AccountPayable
	for _, p := range m.rows {
		if p.TenantID == tenantID {
			items = append(items, *p)
		}
	}
	p := shared.NewPaginated(items, int64(len(items)), pageOf(filter), pageSizeOf(filter))
	return &p, nil
}

type recordKey struct {
	tenantID uuid.UUID
	route    string
	key      string
}

// MemoryIdempotencyRecords is an in-memory idempotency.RecordRepository
type MemoryIdempotencyRecords struct {
	mu   sync.Mutex
	rows map[recordKey]*idempotency.Record

	// CreateErr, when set, makes Create fail
	CreateErr error
}

// NewMemoryIdempotencyRecords creates an empty record store
func NewMemoryIdempotencyRecords() *MemoryIdempotencyRecords {
	return &MemoryIdempotencyRecords{rows: make(map[recordKey]*idempotency.Record)}
}

func (m *MemoryIdempotencyRecords) Find(_ context.Context, tenantID uuid.UUID, route, key string) (*idempotency.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[recordKey{tenantID, route, key}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return r, nil
}

func (m *MemoryIdempotencyRecords) Create(_ context.Context, record *idempotency.Record) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[recordKey{record.TenantID, record.Route, record.Key}] = record
	return nil
}

func pageOf(f shared.Filter) int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

func pageSizeOf(f shared.Filter) int {
	if f.PageSize < 1 {
		return 20
	}
	return f.PageSize
}
