package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// PurchaseOrderRepository implements usecase.PurchaseOrderRepository. The
// OC number is the primary key, so a replayed order fails on insert even
// when two submissions race past the use case's pre-check.
type PurchaseOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseOrderRepository creates a new PurchaseOrderRepository.
func NewPurchaseOrderRepository(pool *pgxpool.Pool) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{pool: pool}
}

const purchaseOrderColumns = `id, distributor_id, product_id, quantity, unit_cost, amount_paid, status, created_at`

func scanPurchaseOrder(row pgx.Row) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := row.Scan(
		&po.ID,
		&po.DistributorID,
		&po.ProductID,
		&po.Quantity,
		&po.UnitCost,
		&po.AmountPaid,
		&po.Status,
		&po.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// Create inserts a purchase order inside the caller's transaction.
func (r *PurchaseOrderRepository) Create(ctx context.Context, tx usecase.Transaction, order *domain.PurchaseOrder) error {
	_, err := querierFrom(tx).Exec(ctx, `
		INSERT INTO purchase_orders (`+purchaseOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		order.ID,
		order.DistributorID,
		order.ProductID,
		order.Quantity,
		order.UnitCost,
		order.AmountPaid,
		order.Status,
		order.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrDuplicateOrder
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return nil
}

// GetByID retrieves a purchase order by its OC number.
func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, id)

	order, err := scanPurchaseOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetByIDForUpdate retrieves a purchase order with a FOR UPDATE lock.
func (r *PurchaseOrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.PurchaseOrder, error) {
	row := querierFrom(tx).QueryRow(ctx, `
		SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)

	order, err := scanPurchaseOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Update persists payment progress and status.
func (r *PurchaseOrderRepository) Update(ctx context.Context, tx usecase.Transaction, order *domain.PurchaseOrder) error {
	tag, err := querierFrom(tx).Exec(ctx, `
		UPDATE purchase_orders
		SET amount_paid = $2, status = $3
		WHERE id = $1`,
		order.ID, order.AmountPaid, order.Status,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ListOpenByProduct retrieves the open purchase orders of a product,
// oldest first. Runs inside the caller's transaction when one is given so
// the cost basis is derived from the same snapshot the sale locks.
func (r *PurchaseOrderRepository) ListOpenByProduct(ctx context.Context, tx usecase.Transaction, productID string) ([]*domain.PurchaseOrder, error) {
	var q Querier = r.pool
	if tx != nil {
		q = querierFrom(tx)
	}

	rows, err := q.Query(ctx, `
		SELECT `+purchaseOrderColumns+` FROM purchase_orders
		WHERE product_id = $1 AND status = $2
		ORDER BY created_at, id`, productID, domain.OrderStatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPurchaseOrders(rows)
}

// ListByDistributor retrieves a distributor's purchase orders, newest
// first.
func (r *PurchaseOrderRepository) ListByDistributor(ctx context.Context, distributorID string, limit, offset int) ([]*domain.PurchaseOrder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+purchaseOrderColumns+` FROM purchase_orders
		WHERE distributor_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, distributorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPurchaseOrders(rows)
}

func collectPurchaseOrders(rows pgx.Rows) ([]*domain.PurchaseOrder, error) {
	var orders []*domain.PurchaseOrder
	for rows.Next() {
		order, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
