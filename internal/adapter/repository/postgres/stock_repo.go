package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/usecase"
)

// StockRepository implements usecase.StockRepository. Stock counters are
// derived state like account balances: they only change together with the
// orders and sales that explain them.
type StockRepository struct {
	pool *pgxpool.Pool
}

// NewStockRepository creates a new StockRepository.
func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

// Get retrieves the stock level of a product. A product without a row has
// zero stock.
func (r *StockRepository) Get(ctx context.Context, productID string) (*domain.StockLevel, error) {
	var level domain.StockLevel
	err := r.pool.QueryRow(ctx, `
		SELECT product_id, quantity, updated_at FROM stock_levels WHERE product_id = $1`,
		productID,
	).Scan(&level.ProductID, &level.Quantity, &level.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.StockLevel{ProductID: productID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// GetForUpdate locks the product row so concurrent sales of the same
// product serialize. The row is created on first use so there is always
// something to lock.
func (r *StockRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, productID string) (*domain.StockLevel, error) {
	q := querierFrom(tx)

	_, err := q.Exec(ctx, `
		INSERT INTO stock_levels (product_id, quantity, updated_at)
		VALUES ($1, 0, now())
		ON CONFLICT (product_id) DO NOTHING`, productID)
	if err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}

	var level domain.StockLevel
	err = q.QueryRow(ctx, `
		SELECT product_id, quantity, updated_at FROM stock_levels
		WHERE product_id = $1 FOR UPDATE`, productID,
	).Scan(&level.ProductID, &level.Quantity, &level.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// Upsert writes the stock counter inside the caller's transaction.
func (r *StockRepository) Upsert(ctx context.Context, tx usecase.Transaction, level *domain.StockLevel) error {
	_, err := querierFrom(tx).Exec(ctx, `
		INSERT INTO stock_levels (product_id, quantity, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id) DO UPDATE
		SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		level.ProductID, level.Quantity, level.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock level: %w", err)
	}
	return nil
}
