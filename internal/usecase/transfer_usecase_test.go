package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/usecase"
	"github.com/flowdist/flowdistributor/internal/usecase/mocks"
)

func newTransferUseCase(accounts *mocks.MockAccountRepository, movements *mocks.MockMovementRepository, outbox *mocks.MockOutboxRepository) *usecase.TransferUseCase {
	return usecase.NewTransferUseCase(
		mocks.NewMockTransactionManager(),
		mocks.PassthroughRetrier{},
		accounts,
		movements,
		outbox,
		mocks.NewMockIDGenerator(),
		nil,
	)
}

func TestTransferUseCase_CreateTransfer(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		input       usecase.CreateTransferInput
		seed        []*domain.Account
		wantErr     error
		wantFrom    string
		wantTo      string
	}{
		{
			name: "successful transfer",
			input: usecase.CreateTransferInput{
				FromAccountID: "acc-1",
				ToAccountID:   "acc-2",
				Amount:        decimal.NewFromInt(100),
			},
			seed: []*domain.Account{
				{ID: "acc-1", Currency: "MXN", Balance: decimal.NewFromInt(500)},
				{ID: "acc-2", Currency: "MXN", Balance: decimal.Zero},
			},
			wantFrom: "400",
			wantTo:   "100",
		},
		{
			name: "reject same account",
			input: usecase.CreateTransferInput{
				FromAccountID: "acc-1",
				ToAccountID:   "acc-1",
				Amount:        decimal.NewFromInt(100),
			},
			seed: []*domain.Account{
				{ID: "acc-1", Currency: "MXN", Balance: decimal.NewFromInt(500)},
			},
			wantErr: domain.ErrSameAccount,
		},
		{
			name: "reject insufficient funds",
			input: usecase.CreateTransferInput{
				FromAccountID: "acc-1",
				ToAccountID:   "acc-2",
				Amount:        decimal.NewFromInt(1000),
			},
			seed: []*domain.Account{
				{ID: "acc-1", Currency: "MXN", Balance: decimal.NewFromInt(100)},
				{ID: "acc-2", Currency: "MXN", Balance: decimal.Zero},
			},
			wantErr: domain.ErrNegativeBalanceNotAllowed,
		},
		{
			name: "reject currency mismatch",
			input: usecase.CreateTransferInput{
				FromAccountID: "acc-1",
				ToAccountID:   "acc-2",
				Amount:        decimal.NewFromInt(100),
			},
			seed: []*domain.Account{
				{ID: "acc-1", Currency: "MXN", Balance: decimal.NewFromInt(500)},
				{ID: "acc-2", Currency: "USD", Balance: decimal.Zero},
			},
			wantErr: domain.ErrCurrencyMismatch,
		},
		{
			name: "reject unknown account",
			input: usecase.CreateTransferInput{
				FromAccountID: "acc-1",
				ToAccountID:   "acc-missing",
				Amount:        decimal.NewFromInt(100),
			},
			seed: []*domain.Account{
				{ID: "acc-1", Currency: "MXN", Balance: decimal.NewFromInt(500)},
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "reject zero amount",
			input: usecase.CreateTransferInput{
				FromAccountID: "acc-1",
				ToAccountID:   "acc-2",
				Amount:        decimal.Zero,
			},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := mocks.NewMockAccountRepository()
			movements := mocks.NewMockMovementRepository()
			outbox := mocks.NewMockOutboxRepository()

			for _, acc := range tt.seed {
				if err := accounts.Create(ctx, nil, acc); err != nil {
					t.Fatalf("seed account: %v", err)
				}
			}

			uc := newTransferUseCase(accounts, movements, outbox)

			result, err := uc.CreateTransfer(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTransfer() error = %v", err)
			}

			if result.Out.Kind != domain.MovementTransferOut || result.In.Kind != domain.MovementTransferIn {
				t.Errorf("movement kinds = %s/%s", result.Out.Kind, result.In.Kind)
			}
			if result.Out.SourceEventID != result.In.SourceEventID {
				t.Error("movement pair must share a source event ID")
			}

			from, _ := accounts.GetByID(ctx, tt.input.FromAccountID)
			to, _ := accounts.GetByID(ctx, tt.input.ToAccountID)
			if !from.Balance.Equal(decimal.RequireFromString(tt.wantFrom)) {
				t.Errorf("from balance = %s, want %s", from.Balance, tt.wantFrom)
			}
			if !to.Balance.Equal(decimal.RequireFromString(tt.wantTo)) {
				t.Errorf("to balance = %s, want %s", to.Balance, tt.wantTo)
			}
		})
	}
}

func TestTransferUseCase_CreateBatchTransfer(t *testing.T) {
	ctx := context.Background()

	accounts := mocks.NewMockAccountRepository()
	for _, acc := range []*domain.Account{
		{ID: "acc-1", Currency: "MXN", Balance: decimal.NewFromInt(500)},
		{ID: "acc-2", Currency: "MXN", Balance: decimal.Zero},
		{ID: "acc-3", Currency: "MXN", Balance: decimal.Zero},
	} {
		if err := accounts.Create(ctx, nil, acc); err != nil {
			t.Fatalf("seed account: %v", err)
		}
	}

	uc := newTransferUseCase(accounts, mocks.NewMockMovementRepository(), mocks.NewMockOutboxRepository())

	results, err := uc.CreateBatchTransfer(ctx, usecase.CreateBatchTransferInput{
		Transfers: []usecase.CreateTransferInput{
			{FromAccountID: "acc-1", ToAccountID: "acc-2", Amount: decimal.NewFromInt(100)},
			{FromAccountID: "acc-1", ToAccountID: "acc-3", Amount: decimal.NewFromInt(200)},
			{FromAccountID: "acc-2", ToAccountID: "acc-3", Amount: decimal.NewFromInt(50)},
		},
	})
	if err != nil {
		t.Fatalf("CreateBatchTransfer() error = %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	want := map[string]string{"acc-1": "200", "acc-2": "50", "acc-3": "250"}
	for id, balance := range want {
		acc, _ := accounts.GetByID(ctx, id)
		if !acc.Balance.Equal(decimal.RequireFromString(balance)) {
			t.Errorf("balance(%s) = %s, want %s", id, acc.Balance, balance)
		}
	}
}
