package usecase

import (
	"context"
	"fmt"
)

// runInTx executes fn inside a store transaction bounded by
// DefaultTransactionTimeout, retrying the whole body through the retrier on
// retryable failures. A failed commit rolls the body back, so fn must keep
// all side effects inside the transaction.
func runInTx(ctx context.Context, txManager TransactionManager, retrier Retrier, fn func(ctx context.Context, tx Transaction) error) error {
	op := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := txManager.Begin(txCtx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		if err := tx.Commit(txCtx); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}

		return nil
	}

	if retrier == nil {
		return op()
	}

	return retrier.Retry(ctx, op)
}
