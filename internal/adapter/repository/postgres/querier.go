package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flowdist/flowdistributor/internal/usecase"
)

// Querier is the subset of pgx satisfied by both a pool and a transaction.
// Repositories run against the pool for plain reads and against the
// caller's transaction for locked reads and writes.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

// querierFrom unwraps the usecase transaction to its pgx.Tx.
func querierFrom(tx usecase.Transaction) Querier {
	return tx.(*Tx).PgxTx()
}
