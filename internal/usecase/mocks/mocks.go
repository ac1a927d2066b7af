package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.Version++
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// MockMovementRepository is a mock implementation of MovementRepository.
type MockMovementRepository struct {
	mu        sync.RWMutex
	movements map[string]*domain.Movement
	order     []string
	seq       int64

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Movement, error)
	ListByAccountFunc     func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error)
	ListAllByAccountFunc  func(ctx context.Context, accountID string) ([]*domain.Movement, error)
	ListBySourceEventFunc func(ctx context.Context, sourceEventID string) ([]*domain.Movement, error)
	GetVoidOfFunc         func(ctx context.Context, movementID string) (*domain.Movement, error)
}

func NewMockMovementRepository() *MockMovementRepository {
	return &MockMovementRepository{
		movements: make(map[string]*domain.Movement),
	}
}

func (m *MockMovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, movement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	movement.Seq = m.seq
	m.movements[movement.ID] = movement
	m.order = append(m.order, movement.ID)
	return nil
}

func (m *MockMovementRepository) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mv, ok := m.movements[id]; ok {
		return mv, nil
	}
	return nil, domain.ErrMovementNotFound
}

func (m *MockMovementRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	all, _ := m.ListAllByAccount(ctx, accountID)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockMovementRepository) ListAllByAccount(ctx context.Context, accountID string) ([]*domain.Movement, error) {
	if m.ListAllByAccountFunc != nil {
		return m.ListAllByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var movements []*domain.Movement
	for _, id := range m.order {
		if mv := m.movements[id]; mv.AccountID == accountID {
			movements = append(movements, mv)
		}
	}
	return movements, nil
}

func (m *MockMovementRepository) ListBySourceEvent(ctx context.Context, sourceEventID string) ([]*domain.Movement, error) {
	if m.ListBySourceEventFunc != nil {
		return m.ListBySourceEventFunc(ctx, sourceEventID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var movements []*domain.Movement
	for _, id := range m.order {
		if mv := m.movements[id]; mv.SourceEventID == sourceEventID {
			movements = append(movements, mv)
		}
	}
	return movements, nil
}

func (m *MockMovementRepository) GetVoidOf(ctx context.Context, movementID string) (*domain.Movement, error) {
	if m.GetVoidOfFunc != nil {
		return m.GetVoidOfFunc(ctx, movementID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mv := range m.movements {
		if mv.VoidOfID != nil && *mv.VoidOfID == movementID {
			return mv, nil
		}
	}
	return nil, domain.ErrMovementNotFound
}

// All returns every stored movement in insertion order.
func (m *MockMovementRepository) All() []*domain.Movement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	movements := make([]*domain.Movement, 0, len(m.order))
	for _, id := range m.order {
		movements = append(movements, m.movements[id])
	}
	return movements
}

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository.
type MockPurchaseOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.PurchaseOrder

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, order *domain.PurchaseOrder) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.PurchaseOrder, error)
	UpdateFunc            func(ctx context.Context, tx usecase.Transaction, order *domain.PurchaseOrder) error
	ListOpenByProductFunc func(ctx context.Context, tx usecase.Transaction, productID string) ([]*domain.PurchaseOrder, error)
	ListByDistributorFunc func(ctx context.Context, distributorID string, limit, offset int) ([]*domain.PurchaseOrder, error)
}

func NewMockPurchaseOrderRepository() *MockPurchaseOrderRepository {
	return &MockPurchaseOrderRepository{
		orders: make(map[string]*domain.PurchaseOrder),
	}
}

func (m *MockPurchaseOrderRepository) Create(ctx context.Context, tx usecase.Transaction, order *domain.PurchaseOrder) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[order.ID]; ok {
		return domain.ErrDuplicateOrder
	}
	m.orders[order.ID] = order
	return nil
}

func (m *MockPurchaseOrderRepository) GetByID(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if po, ok := m.orders[id]; ok {
		return po, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockPurchaseOrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.PurchaseOrder, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockPurchaseOrderRepository) Update(ctx context.Context, tx usecase.Transaction, order *domain.PurchaseOrder) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *MockPurchaseOrderRepository) ListOpenByProduct(ctx context.Context, tx usecase.Transaction, productID string) ([]*domain.PurchaseOrder, error) {
	if m.ListOpenByProductFunc != nil {
		return m.ListOpenByProductFunc(ctx, tx, productID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var orders []*domain.PurchaseOrder
	for _, po := range m.orders {
		if po.ProductID == productID && po.Status == domain.OrderStatusOpen {
			orders = append(orders, po)
		}
	}
	return orders, nil
}

func (m *MockPurchaseOrderRepository) ListByDistributor(ctx context.Context, distributorID string, limit, offset int) ([]*domain.PurchaseOrder, error) {
	if m.ListByDistributorFunc != nil {
		return m.ListByDistributorFunc(ctx, distributorID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var orders []*domain.PurchaseOrder
	for _, po := range m.orders {
		if po.DistributorID == distributorID {
			orders = append(orders, po)
		}
	}
	return orders, nil
}

// MockSaleRepository is a mock implementation of SaleRepository.
type MockSaleRepository struct {
	mu    sync.RWMutex
	sales map[string]*domain.Sale

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, sale *domain.Sale) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Sale, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Sale, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, sale *domain.Sale) error
	ListByClientFunc     func(ctx context.Context, clientID string, limit, offset int) ([]*domain.Sale, error)
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Sale, error)
}

func NewMockSaleRepository() *MockSaleRepository {
	return &MockSaleRepository{
		sales: make(map[string]*domain.Sale),
	}
}

func (m *MockSaleRepository) Create(ctx context.Context, tx usecase.Transaction, sale *domain.Sale) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, sale)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales[sale.ID] = sale
	return nil
}

func (m *MockSaleRepository) GetByID(ctx context.Context, id string) (*domain.Sale, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sales[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSaleNotFound
}

func (m *MockSaleRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Sale, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockSaleRepository) Update(ctx context.Context, tx usecase.Transaction, sale *domain.Sale) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, sale)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales[sale.ID] = sale
	return nil
}

func (m *MockSaleRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.Sale, error) {
	if m.ListByClientFunc != nil {
		return m.ListByClientFunc(ctx, clientID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sales []*domain.Sale
	for _, s := range m.sales {
		if s.ClientID == clientID {
			sales = append(sales, s)
		}
	}
	return sales, nil
}

func (m *MockSaleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Sale, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sales []*domain.Sale
	for _, s := range m.sales {
		sales = append(sales, s)
	}
	return sales, nil
}

// MockStockRepository is a mock implementation of StockRepository.
type MockStockRepository struct {
	mu     sync.RWMutex
	levels map[string]*domain.StockLevel

	GetFunc          func(ctx context.Context, productID string) (*domain.StockLevel, error)
	GetForUpdateFunc func(ctx context.Context, tx usecase.Transaction, productID string) (*domain.StockLevel, error)
	UpsertFunc       func(ctx context.Context, tx usecase.Transaction, level *domain.StockLevel) error
}

func NewMockStockRepository() *MockStockRepository {
	return &MockStockRepository{
		levels: make(map[string]*domain.StockLevel),
	}
}

func (m *MockStockRepository) Get(ctx context.Context, productID string) (*domain.StockLevel, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, productID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.levels[productID]; ok {
		return l, nil
	}
	return &domain.StockLevel{ProductID: productID}, nil
}

func (m *MockStockRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, productID string) (*domain.StockLevel, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, productID)
	}
	return m.Get(ctx, productID)
}

func (m *MockStockRepository) Upsert(ctx context.Context, tx usecase.Transaction, level *domain.StockLevel) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, level)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[level.ProductID] = level
	return nil
}

// MockDistributorRepository is a mock implementation of DistributorRepository.
type MockDistributorRepository struct {
	mu           sync.RWMutex
	distributors map[string]*domain.Distributor

	GetByIDFunc          func(ctx context.Context, id string) (*domain.Distributor, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Distributor, error)
	UpsertFunc           func(ctx context.Context, tx usecase.Transaction, distributor *domain.Distributor) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Distributor, error)
}

func NewMockDistributorRepository() *MockDistributorRepository {
	return &MockDistributorRepository{
		distributors: make(map[string]*domain.Distributor),
	}
}

func (m *MockDistributorRepository) GetByID(ctx context.Context, id string) (*domain.Distributor, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.distributors[id]; ok {
		return d, nil
	}
	return nil, domain.ErrDistributorNotFound
}

func (m *MockDistributorRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Distributor, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockDistributorRepository) Upsert(ctx context.Context, tx usecase.Transaction, distributor *domain.Distributor) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, distributor)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distributors[distributor.ID] = distributor
	return nil
}

func (m *MockDistributorRepository) List(ctx context.Context, limit, offset int) ([]*domain.Distributor, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var distributors []*domain.Distributor
	for _, d := range m.distributors {
		distributors = append(distributors, d)
	}
	return distributors, nil
}

// MockClientRepository is a mock implementation of ClientRepository.
type MockClientRepository struct {
	mu      sync.RWMutex
	clients map[string]*domain.Client

	GetByIDFunc          func(ctx context.Context, id string) (*domain.Client, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Client, error)
	UpsertFunc           func(ctx context.Context, tx usecase.Transaction, client *domain.Client) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Client, error)
}

func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{
		clients: make(map[string]*domain.Client),
	}
}

func (m *MockClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, domain.ErrClientNotFound
}

func (m *MockClientRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Client, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockClientRepository) Upsert(ctx context.Context, tx usecase.Transaction, client *domain.Client) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, client)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.ID] = client
	return nil
}

func (m *MockClientRepository) List(ctx context.Context, limit, offset int) ([]*domain.Client, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var clients []*domain.Client
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	return clients, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.CreatedAt.After(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns every stored event in insertion order.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

// PassthroughRetrier runs the operation once, no backoff.
type PassthroughRetrier struct{}

func (PassthroughRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}
