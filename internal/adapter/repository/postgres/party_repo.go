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

// DistributorRepository implements usecase.DistributorRepository.
type DistributorRepository struct {
	pool *pgxpool.Pool
}

// NewDistributorRepository creates a new DistributorRepository.
func NewDistributorRepository(pool *pgxpool.Pool) *DistributorRepository {
	return &DistributorRepository{pool: pool}
}

const partyColumns = `id, name, debt, created_at, updated_at`

// GetByID retrieves a distributor by ID.
func (r *DistributorRepository) GetByID(ctx context.Context, id string) (*domain.Distributor, error) {
	var d domain.Distributor
	err := r.pool.QueryRow(ctx, `
		SELECT `+partyColumns+` FROM distributors WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Debt, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDistributorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByIDForUpdate retrieves a distributor with a FOR UPDATE lock.
func (r *DistributorRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Distributor, error) {
	var d domain.Distributor
	err := querierFrom(tx).QueryRow(ctx, `
		SELECT `+partyColumns+` FROM distributors WHERE id = $1 FOR UPDATE`, id,
	).Scan(&d.ID, &d.Name, &d.Debt, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDistributorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Upsert writes a distributor inside the caller's transaction.
func (r *DistributorRepository) Upsert(ctx context.Context, tx usecase.Transaction, distributor *domain.Distributor) error {
	_, err := querierFrom(tx).Exec(ctx, `
		INSERT INTO distributors (`+partyColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, debt = EXCLUDED.debt, updated_at = EXCLUDED.updated_at`,
		distributor.ID, distributor.Name, distributor.Debt, distributor.CreatedAt, distributor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert distributor: %w", err)
	}
	return nil
}

// List retrieves distributors ordered by name.
func (r *DistributorRepository) List(ctx context.Context, limit, offset int) ([]*domain.Distributor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+partyColumns+` FROM distributors
		ORDER BY name, id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var distributors []*domain.Distributor
	for rows.Next() {
		var d domain.Distributor
		if err := rows.Scan(&d.ID, &d.Name, &d.Debt, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		distributors = append(distributors, &d)
	}
	return distributors, rows.Err()
}

// ClientRepository implements usecase.ClientRepository.
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// GetByID retrieves a client by ID.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	var c domain.Client
	err := r.pool.QueryRow(ctx, `
		SELECT `+partyColumns+` FROM clients WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Debt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByIDForUpdate retrieves a client with a FOR UPDATE lock.
func (r *ClientRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Client, error) {
	var c domain.Client
	err := querierFrom(tx).QueryRow(ctx, `
		SELECT `+partyColumns+` FROM clients WHERE id = $1 FOR UPDATE`, id,
	).Scan(&c.ID, &c.Name, &c.Debt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert writes a client inside the caller's transaction.
func (r *ClientRepository) Upsert(ctx context.Context, tx usecase.Transaction, client *domain.Client) error {
	_, err := querierFrom(tx).Exec(ctx, `
		INSERT INTO clients (`+partyColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, debt = EXCLUDED.debt, updated_at = EXCLUDED.updated_at`,
		client.ID, client.Name, client.Debt, client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert client: %w", err)
	}
	return nil
}

// List retrieves clients ordered by name.
func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*domain.Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+partyColumns+` FROM clients
		ORDER BY name, id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Debt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, &c)
	}
	return clients, rows.Err()
}
