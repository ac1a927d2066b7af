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

// SaleRepository implements usecase.SaleRepository.
type SaleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository creates a new SaleRepository.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

const saleColumns = `id, client_id, product_id, quantity, unit_price, freight_per_unit, unit_cost_basis, origin_account_id, amount_paid, status, created_at`

func scanSale(row pgx.Row) (*domain.Sale, error) {
	var s domain.Sale
	err := row.Scan(
		&s.ID,
		&s.ClientID,
		&s.ProductID,
		&s.Quantity,
		&s.UnitPrice,
		&s.FreightPerUnit,
		&s.UnitCostBasis,
		&s.OriginAccountID,
		&s.AmountPaid,
		&s.Status,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a sale inside the caller's transaction.
func (r *SaleRepository) Create(ctx context.Context, tx usecase.Transaction, sale *domain.Sale) error {
	_, err := querierFrom(tx).Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		sale.ID,
		sale.ClientID,
		sale.ProductID,
		sale.Quantity,
		sale.UnitPrice,
		sale.FreightPerUnit,
		sale.UnitCostBasis,
		sale.OriginAccountID,
		sale.AmountPaid,
		sale.Status,
		sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// GetByID retrieves a sale by ID.
func (r *SaleRepository) GetByID(ctx context.Context, id string) (*domain.Sale, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)

	sale, err := scanSale(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// GetByIDForUpdate retrieves a sale with a FOR UPDATE lock.
func (r *SaleRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Sale, error) {
	row := querierFrom(tx).QueryRow(ctx, `
		SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)

	sale, err := scanSale(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Update persists payment progress and status.
func (r *SaleRepository) Update(ctx context.Context, tx usecase.Transaction, sale *domain.Sale) error {
	tag, err := querierFrom(tx).Exec(ctx, `
		UPDATE sales
		SET amount_paid = $2, status = $3
		WHERE id = $1`,
		sale.ID, sale.AmountPaid, sale.Status,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSaleNotFound
	}
	return nil
}

// ListByClient retrieves a client's sales, newest first.
func (r *SaleRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE client_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSales(rows)
}

// List retrieves sales, newest first.
func (r *SaleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+saleColumns+` FROM sales
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSales(rows)
}

func collectSales(rows pgx.Rows) ([]*domain.Sale, error) {
	var sales []*domain.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}
