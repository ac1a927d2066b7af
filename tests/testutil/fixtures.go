package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/adapter/repository/postgres"
	infrapg "github.com/flowdist/flowdistributor/internal/infrastructure/postgres"
	"github.com/flowdist/flowdistributor/internal/domain"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool     *pgxpool.Pool
	Accounts *postgres.AccountRepository
	t        *testing.T
}

// NewTestDB connects to the database named by DATABASE_URL and runs
// migrations. Tests calling it are skipped when DATABASE_URL is unset.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	// Migrations live under internal/infrastructure/postgres; the path
	// depends on which package the test runs from.
	migrationsPath := "internal/infrastructure/postgres/migrations"
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		migrationsPath = "../../internal/infrastructure/postgres/migrations"
	}
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		migrationsPath = "../../../internal/infrastructure/postgres/migrations"
	}

	if err := infrapg.RunMigrations(dbURL, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPool(ctx, dbURL, 4, 1)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool:     pool,
		Accounts: postgres.NewAccountRepository(pool),
		t:        t,
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE outbox_events CASCADE;
		TRUNCATE TABLE sales CASCADE;
		TRUNCATE TABLE purchase_orders CASCADE;
		TRUNCATE TABLE stock_levels CASCADE;
		TRUNCATE TABLE clients CASCADE;
		TRUNCATE TABLE distributors CASCADE;
		TRUNCATE TABLE movements CASCADE;
		TRUNCATE TABLE accounts CASCADE;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestAccount creates an account with a zero balance.
func (db *TestDB) CreateTestAccount(ctx context.Context, name, currency string, allowNegative bool) *domain.Account {
	return db.CreateTestAccountWithBalance(ctx, name, currency, decimal.Zero, allowNegative)
}

// CreateTestAccountWithBalance creates an account with an initial balance.
func (db *TestDB) CreateTestAccountWithBalance(ctx context.Context, name, currency string, balance decimal.Decimal, allowNegative bool) *domain.Account {
	db.t.Helper()

	now := time.Now().UTC()
	account := &domain.Account{
		ID:                   ulid.Make().String(),
		Name:                 name,
		Currency:             currency,
		Balance:              balance,
		AllowNegativeBalance: allowNegative,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := db.Accounts.Create(ctx, nil, account); err != nil {
		db.t.Fatalf("failed to create test account: %v", err)
	}

	return account
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
