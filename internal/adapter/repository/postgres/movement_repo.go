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

// MovementRepository implements usecase.MovementRepository. Movements are
// append-only: there is no UPDATE or DELETE path in this repository.
type MovementRepository struct {
	pool *pgxpool.Pool
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(pool *pgxpool.Pool) *MovementRepository {
	return &MovementRepository{pool: pool}
}

const movementColumns = `id, account_id, kind, amount, counterpart_account_id, source_event_id, description, void_of_id, created_at, seq`

func scanMovement(row pgx.Row) (*domain.Movement, error) {
	var m domain.Movement
	err := row.Scan(
		&m.ID,
		&m.AccountID,
		&m.Kind,
		&m.Amount,
		&m.CounterpartAccountID,
		&m.SourceEventID,
		&m.Description,
		&m.VoidOfID,
		&m.CreatedAt,
		&m.Seq,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create appends a movement inside the caller's transaction and reads back
// the assigned sequence number.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	err := querierFrom(tx).QueryRow(ctx, `
		INSERT INTO movements (id, account_id, kind, amount, counterpart_account_id, source_event_id, description, void_of_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`,
		movement.ID,
		movement.AccountID,
		movement.Kind,
		movement.Amount,
		movement.CounterpartAccountID,
		movement.SourceEventID,
		movement.Description,
		movement.VoidOfID,
		movement.CreatedAt,
	).Scan(&movement.Seq)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID retrieves a movement by ID.
func (r *MovementRepository) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+movementColumns+` FROM movements WHERE id = $1`, id)

	movement, err := scanMovement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMovementNotFound
	}
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// ListByAccount retrieves an account's movements, newest first.
func (r *MovementRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+movementColumns+` FROM movements
		WHERE account_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMovements(rows)
}

// ListAllByAccount retrieves the full history of an account in ledger
// order, for balance recomputation.
func (r *MovementRepository) ListAllByAccount(ctx context.Context, accountID string) ([]*domain.Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+movementColumns+` FROM movements
		WHERE account_id = $1
		ORDER BY created_at, seq`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMovements(rows)
}

// ListBySourceEvent retrieves all movements produced by one business
// event, e.g. both legs of a transfer or the full posting set of a sale.
func (r *MovementRepository) ListBySourceEvent(ctx context.Context, sourceEventID string) ([]*domain.Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+movementColumns+` FROM movements
		WHERE source_event_id = $1
		ORDER BY seq`, sourceEventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMovements(rows)
}

// GetVoidOf retrieves the compensating movement of a voided movement.
func (r *MovementRepository) GetVoidOf(ctx context.Context, movementID string) (*domain.Movement, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+movementColumns+` FROM movements WHERE void_of_id = $1`, movementID)

	movement, err := scanMovement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMovementNotFound
	}
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func collectMovements(rows pgx.Rows) ([]*domain.Movement, error) {
	var movements []*domain.Movement
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}
	return movements, rows.Err()
}
