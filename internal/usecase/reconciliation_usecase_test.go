package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/usecase"
	"github.com/flowdist/flowdistributor/internal/usecase/mocks"
)

func newReconciliationFixture(t *testing.T, ledger usecase.LedgerRepository) (*usecase.ReconciliationUseCase, *mocks.MockAccountRepository, *mocks.MockMovementRepository) {
	t.Helper()

	accounts := mocks.NewMockAccountRepository()
	movements := mocks.NewMockMovementRepository()

	uc := usecase.NewReconciliationUseCase(
		mocks.NewMockTransactionManager(),
		accounts,
		movements,
		ledger,
		nil,
	)

	return uc, accounts, movements
}

func seedHistory(t *testing.T, accounts *mocks.MockAccountRepository, movements *mocks.MockMovementRepository, cached string) {
	t.Helper()
	ctx := context.Background()

	if err := accounts.Create(ctx, nil, &domain.Account{
		ID: "acc-1", Currency: "MXN", Balance: decimal.RequireFromString(cached),
	}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	now := time.Now().UTC()
	history := []*domain.Movement{
		{ID: "m1", AccountID: "acc-1", Kind: domain.MovementIncome, Amount: decimal.NewFromInt(1000), SourceEventID: "e1", CreatedAt: now},
		{ID: "m2", AccountID: "acc-1", Kind: domain.MovementExpense, Amount: decimal.NewFromInt(300), SourceEventID: "e2", CreatedAt: now.Add(time.Second)},
		{ID: "m3", AccountID: "acc-1", Kind: domain.MovementIncome, Amount: decimal.NewFromInt(100), SourceEventID: "e3", CreatedAt: now.Add(2 * time.Second)},
	}
	for _, m := range history {
		if err := movements.Create(ctx, nil, m); err != nil {
			t.Fatalf("seed movement: %v", err)
		}
	}
}

func TestReconciliationUseCase_ReconcileAccount_Clean(t *testing.T) {
	uc, accounts, movements := newReconciliationFixture(t, nil)
	seedHistory(t, accounts, movements, "800")

	result, err := uc.ReconcileAccount(context.Background(), "acc-1", false)
	if err != nil {
		t.Fatalf("ReconcileAccount() error = %v", err)
	}

	if !result.IsReconciled {
		t.Errorf("IsReconciled = false, difference = %s", result.Difference)
	}
	if !result.CalculatedBalance.Equal(decimal.NewFromInt(800)) {
		t.Errorf("calculated = %s, want 800", result.CalculatedBalance)
	}
}

func TestReconciliationUseCase_ReconcileAccount_DriftAndRepair(t *testing.T) {
	uc, accounts, movements := newReconciliationFixture(t, nil)
	seedHistory(t, accounts, movements, "950")

	result, err := uc.ReconcileAccount(context.Background(), "acc-1", false)
	if err != nil {
		t.Fatalf("ReconcileAccount() error = %v", err)
	}

	if result.IsReconciled {
		t.Fatal("expected drift to be detected")
	}
	if !result.Difference.Equal(decimal.NewFromInt(150)) {
		t.Errorf("difference = %s, want 150", result.Difference)
	}
	if result.Repaired {
		t.Error("dry run must not repair")
	}

	acc, _ := accounts.GetByID(context.Background(), "acc-1")
	if !acc.Balance.Equal(decimal.NewFromInt(950)) {
		t.Errorf("balance = %s, dry run must leave the cache alone", acc.Balance)
	}

	result, err = uc.ReconcileAccount(context.Background(), "acc-1", true)
	if err != nil {
		t.Fatalf("ReconcileAccount(repair) error = %v", err)
	}
	if !result.Repaired {
		t.Error("expected repair")
	}

	acc, _ = accounts.GetByID(context.Background(), "acc-1")
	if !acc.Balance.Equal(decimal.NewFromInt(800)) {
		t.Errorf("balance = %s, want repaired 800", acc.Balance)
	}
}

func TestReconciliationUseCase_CheckLedgerConsistency(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerRepository(ctrl)

	uc, _, _ := newReconciliationFixture(t, ledger)

	ledger.EXPECT().CheckConsistency(gomock.Any()).
		Return(decimal.NewFromInt(500), decimal.NewFromInt(500), nil)
	if err := uc.CheckLedgerConsistency(context.Background()); err != nil {
		t.Errorf("CheckLedgerConsistency() error = %v", err)
	}

	ledger.EXPECT().CheckConsistency(gomock.Any()).
		Return(decimal.NewFromInt(500), decimal.NewFromInt(499), nil)
	if err := uc.CheckLedgerConsistency(context.Background()); err == nil {
		t.Error("expected inconsistency error")
	}
}

func TestReconciliationUseCase_GenerateReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedgerRepository(ctrl)
	ledger.EXPECT().CheckConsistency(gomock.Any()).
		Return(decimal.NewFromInt(800), decimal.NewFromInt(800), nil)

	uc, accounts, movements := newReconciliationFixture(t, ledger)
	seedHistory(t, accounts, movements, "800")

	report, err := uc.GenerateReconciliationReport(context.Background())
	if err != nil {
		t.Fatalf("GenerateReconciliationReport() error = %v", err)
	}

	if report.TotalAccounts != 1 || report.ReconciledAccounts != 1 {
		t.Errorf("report = %+v, want one reconciled account", report)
	}
	if !report.LedgerConsistent {
		t.Error("expected consistent ledger")
	}
	if len(report.Discrepancies) != 0 {
		t.Errorf("discrepancies = %d, want 0", len(report.Discrepancies))
	}
}
