package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/infrastructure/metrics"
)

// AccountUseCase handles bóveda lifecycle. Accounts are created once at
// setup; their balances change only through movements.
type AccountUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		retrier:     retrier,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name                 string
	Currency             string
	AllowNegativeBalance bool
}

// CreateAccount creates a new account with a zero balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:                   uc.idGen.Generate(),
		Name:                 input.Name,
		Currency:             input.Currency,
		Balance:              decimal.Zero,
		Version:              0,
		AllowNegativeBalance: input.AllowNegativeBalance,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
			return err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   account.ID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeAccountCreated,
			Payload: domain.AccountCreatedEvent{
				AccountID: account.ID,
				Name:      account.Name,
				Currency:  account.Currency,
			},
			CreatedAt: now,
		}

		return uc.outboxRepo.Create(txCtx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}
