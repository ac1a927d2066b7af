package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/infrastructure/metrics"
)

// TransferUseCase handles same-currency moves between bóvedas. Cross
// currency moves go through FXUseCase, which owns the rate.
type TransferUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	accountRepo  AccountRepository
	movementRepo MovementRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:    txManager,
		retrier:      retrier,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		metrics:      m,
	}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
}

// CreateBatchTransferInput represents input for creating multiple
// transfers atomically.
type CreateBatchTransferInput struct {
	Transfers []CreateTransferInput
}

// TransferResult is the pair of movements produced by one transfer.
type TransferResult struct {
	TransferID string
	Out        *domain.Movement
	In         *domain.Movement
}

// CreateTransfer creates a single transfer.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*TransferResult, error) {
	results, err := uc.CreateBatchTransfer(ctx, CreateBatchTransferInput{
		Transfers: []CreateTransferInput{input},
	})
	if err != nil {
		return nil, err
	}

	return results[0], nil
}

// CreateBatchTransfer creates multiple transfers atomically. Either every
// movement pair lands or none does.
func (uc *TransferUseCase) CreateBatchTransfer(ctx context.Context, input CreateBatchTransferInput) ([]*TransferResult, error) {
	if len(input.Transfers) == 0 {
		return nil, domain.ErrInvalidAmount
	}

	// Validate inputs before starting the transaction.
	for _, ti := range input.Transfers {
		if ti.FromAccountID == ti.ToAccountID {
			return nil, domain.ErrSameAccount
		}

		if err := domain.ValidateAmount(ti.Amount); err != nil {
			return nil, err
		}
	}

	// Collect and sort unique account IDs (deadlock prevention).
	accountIDs := uc.collectUniqueAccountIDs(input.Transfers)
	sort.Strings(accountIDs)

	var results []*TransferResult

	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		results = results[:0]

		accounts, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, accountIDs)
		if err != nil {
			return err
		}

		if len(accounts) != len(accountIDs) {
			return domain.ErrAccountNotFound
		}

		accountMap := make(map[string]*domain.Account, len(accounts))
		for _, a := range accounts {
			accountMap[a.ID] = a
		}

		now := time.Now().UTC()

		for _, ti := range input.Transfers {
			from := accountMap[ti.FromAccountID]
			to := accountMap[ti.ToAccountID]

			if from.Currency != to.Currency {
				return domain.ErrCurrencyMismatch
			}

			if err := from.ValidateDebit(ti.Amount); err != nil {
				return err
			}

			transferID := uc.idGen.Generate()

			out := &domain.Movement{
				ID:                   uc.idGen.Generate(),
				AccountID:            from.ID,
				Kind:                 domain.MovementTransferOut,
				Amount:               ti.Amount,
				CounterpartAccountID: &to.ID,
				SourceEventID:        transferID,
				Description:          ti.Description,
				CreatedAt:            now,
			}

			in := &domain.Movement{
				ID:                   uc.idGen.Generate(),
				AccountID:            to.ID,
				Kind:                 domain.MovementTransferIn,
				Amount:               ti.Amount,
				CounterpartAccountID: &from.ID,
				SourceEventID:        transferID,
				Description:          ti.Description,
				CreatedAt:            now,
			}

			for _, m := range []*domain.Movement{out, in} {
				if err := m.Validate(); err != nil {
					return err
				}
				if err := uc.movementRepo.Create(txCtx, tx, m); err != nil {
					return err
				}
			}

			from.Balance = from.ApplyDebit(ti.Amount)
			to.Balance = to.ApplyCredit(ti.Amount)

			event := &domain.OutboxEvent{
				ID:            uc.idGen.Generate(),
				AggregateID:   transferID,
				AggregateType: domain.AggregateTypeTransfer,
				EventType:     domain.EventTypeTransferCreated,
				Payload: domain.TransferCreatedEvent{
					TransferID:    transferID,
					FromAccountID: from.ID,
					ToAccountID:   to.ID,
					Amount:        ti.Amount.String(),
					Currency:      from.Currency,
				},
				CreatedAt: now,
			}

			if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
				return err
			}

			results = append(results, &TransferResult{TransferID: transferID, Out: out, In: in})
		}

		// Persist each touched balance once, after all pairs applied.
		for _, id := range accountIDs {
			a := accountMap[id]
			if err := uc.accountRepo.UpdateBalance(txCtx, tx, a.ID, a.Balance, now); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Add(float64(len(results)))
	}

	return results, nil
}

func (uc *TransferUseCase) collectUniqueAccountIDs(transfers []CreateTransferInput) []string {
	seen := make(map[string]struct{}, len(transfers)*2)
	ids := make([]string, 0, len(transfers)*2)

	for _, ti := range transfers {
		for _, id := range []string{ti.FromAccountID, ti.ToAccountID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	return ids
}
