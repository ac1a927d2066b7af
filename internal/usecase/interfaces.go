package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
)

// AccountRepository defines data access for accounts (bóvedas).
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// MovementRepository defines data access for the append-only movement log.
// Create fills the movement's Seq from the store's insertion sequence.
type MovementRepository interface {
	Create(ctx context.Context, tx Transaction, movement *domain.Movement) error
	GetByID(ctx context.Context, id string) (*domain.Movement, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error)
	ListAllByAccount(ctx context.Context, accountID string) ([]*domain.Movement, error)
	ListBySourceEvent(ctx context.Context, sourceEventID string) ([]*domain.Movement, error)
	GetVoidOf(ctx context.Context, movementID string) (*domain.Movement, error)
}

// PurchaseOrderRepository defines data access for purchase orders.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, tx Transaction, order *domain.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.PurchaseOrder, error)
	Update(ctx context.Context, tx Transaction, order *domain.PurchaseOrder) error
	ListOpenByProduct(ctx context.Context, tx Transaction, productID string) ([]*domain.PurchaseOrder, error)
	ListByDistributor(ctx context.Context, distributorID string, limit, offset int) ([]*domain.PurchaseOrder, error)
}

// SaleRepository defines data access for sales.
type SaleRepository interface {
	Create(ctx context.Context, tx Transaction, sale *domain.Sale) error
	GetByID(ctx context.Context, id string) (*domain.Sale, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Sale, error)
	Update(ctx context.Context, tx Transaction, sale *domain.Sale) error
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.Sale, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Sale, error)
}

// StockRepository defines data access for the derived stock counters.
// GetForUpdate returns a zero-quantity level when the product has no row
// yet; the row lock serializes concurrent sales of the same product.
type StockRepository interface {
	Get(ctx context.Context, productID string) (*domain.StockLevel, error)
	GetForUpdate(ctx context.Context, tx Transaction, productID string) (*domain.StockLevel, error)
	Upsert(ctx context.Context, tx Transaction, level *domain.StockLevel) error
}

// DistributorRepository defines data access for distributors.
type DistributorRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Distributor, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Distributor, error)
	Upsert(ctx context.Context, tx Transaction, distributor *domain.Distributor) error
	List(ctx context.Context, limit, offset int) ([]*domain.Distributor, error)
}

// ClientRepository defines data access for clients.
type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Client, error)
	Upsert(ctx context.Context, tx Transaction, client *domain.Client) error
	List(ctx context.Context, limit, offset int) ([]*domain.Client, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	// CheckConsistency returns the sum of all cached account balances and
	// the sum of all movement signed amounts; the two must be equal.
	CheckConsistency(ctx context.Context) (totalBalance, totalMovement decimal.Decimal, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on retryable store conflicts. The engine is
// stateless, so re-invoking a use case body with the same inputs is safe.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// RateProvider supplies exchange rates; the ledger never computes them.
type RateProvider interface {
	GetRate(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
