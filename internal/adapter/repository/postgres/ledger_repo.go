package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerRepository implements usecase.LedgerRepository with set-level sums
// computed in the database.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// CheckConsistency returns the sum of all cached balances and the sum of
// all signed movement amounts. The two agree when every balance cache
// matches its history.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var totalBalance, totalMovement decimal.Decimal

	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(SUM(balance), 0) FROM accounts),
			(SELECT COALESCE(SUM(
				CASE WHEN kind IN ('income', 'transfer_in') THEN amount ELSE -amount END
			), 0) FROM movements)`,
	).Scan(&totalBalance, &totalMovement)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return totalBalance, totalMovement, nil
}
