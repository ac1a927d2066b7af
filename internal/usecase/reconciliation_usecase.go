package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/infrastructure/metrics"
)

// ErrInconsistentLedger is returned when the cached balances and the
// movement log disagree in aggregate.
var ErrInconsistentLedger = errors.New("ledger inconsistency detected")

// ReconciliationUseCase checks that every cached account balance matches
// the fold of its movement history, and that the ledger-wide sums agree.
type ReconciliationUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	movementRepo MovementRepository
	ledgerRepo   LedgerRepository
	metrics      *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	ledgerRepo LedgerRepository,
	m *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		ledgerRepo:   ledgerRepo,
		metrics:      m,
	}
}

// ReconciliationResult reports one account's recomputation.
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	Repaired          bool
	LastChecked       time.Time
}

// ReconcileAccount refolds the account's full movement history and
// compares the result against the cached balance. With repair set, a
// drifted cache is overwritten with the recomputed value; the movement log
// stays untouched either way.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string, repair bool) (*ReconciliationResult, error) {
	now := time.Now().UTC()

	var result *ReconciliationResult

	err := runInTx(ctx, uc.txManager, nil, func(txCtx context.Context, tx Transaction) error {
		account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, accountID)
		if err != nil {
			return err
		}

		movements, err := uc.movementRepo.ListAllByAccount(txCtx, accountID)
		if err != nil {
			return err
		}

		calculated := domain.RecomputeBalance(movements)
		difference := account.Balance.Sub(calculated)

		result = &ReconciliationResult{
			AccountID:         accountID,
			RecordedBalance:   account.Balance,
			CalculatedBalance: calculated,
			Difference:        difference,
			IsReconciled:      difference.IsZero(),
			LastChecked:       now,
		}

		if !result.IsReconciled && repair {
			if err := uc.accountRepo.UpdateBalance(txCtx, tx, accountID, calculated, now); err != nil {
				return err
			}
			result.Repaired = true
		}

		if uc.metrics != nil {
			balance, _ := calculated.Float64()
			uc.metrics.AccountBalance.WithLabelValues(account.ID, account.Currency).Set(balance)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ReconciliationRuns.Inc()
		if !result.IsReconciled {
			uc.metrics.ReconciliationDrifts.Inc()
		}
	}

	return result, nil
}

// ReconcileAllAccounts reconciles every account, one transaction each so a
// long sweep never holds the whole ledger locked.
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context, repair bool) ([]*ReconciliationResult, error) {
	limit, offset := domain.ValidatePagination(10000, 0)

	accounts, err := uc.accountRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	results := make([]*ReconciliationResult, 0, len(accounts))
	for _, account := range accounts {
		result, err := uc.ReconcileAccount(ctx, account.ID, repair)
		if err != nil {
			return nil, fmt.Errorf("reconcile account %s: %w", account.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// CheckLedgerConsistency verifies that the sum of all cached balances
// equals the sum of all signed movement amounts.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	totalBalance, totalMovement, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return err
	}

	if !totalBalance.Equal(totalMovement) {
		return fmt.Errorf(
			"%w: balances=%s movements=%s difference=%s",
			ErrInconsistentLedger,
			totalBalance.String(),
			totalMovement.String(),
			totalBalance.Sub(totalMovement).String(),
		)
	}

	return nil
}

// ReconciliationReport aggregates a full sweep.
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReconciliationReport sweeps all accounts without repairing and
// runs the ledger-wide check.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx, false)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts:    len(results),
		LedgerConsistent: true,
		CheckedAt:        time.Now().UTC(),
	}

	for _, r := range results {
		if r.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, r)
		}
	}

	if err := uc.CheckLedgerConsistency(ctx); err != nil {
		report.LedgerConsistent = false
	}

	return report, nil
}
