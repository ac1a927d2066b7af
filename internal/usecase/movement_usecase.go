package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/infrastructure/metrics"
)

// MovementUseCase handles the movement history: ad-hoc income and expense
// entries, reads, and corrections. The log is append-only, so a mistake is
// never edited; it is voided by a compensating movement.
type MovementUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	accountRepo  AccountRepository
	movementRepo MovementRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
}

// NewMovementUseCase creates a new MovementUseCase.
func NewMovementUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *MovementUseCase {
	return &MovementUseCase{
		txManager:    txManager,
		retrier:      retrier,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		metrics:      m,
	}
}

// RecordEntryInput represents an ad-hoc income or expense entry against an
// account, outside the purchase and sale workflows.
type RecordEntryInput struct {
	AccountID   string
	Kind        domain.MovementKind
	Amount      decimal.Decimal
	Description string
}

// RecordEntry appends a single income or expense movement and updates the
// account balance. Transfers are rejected here; they always come in pairs
// through the transfer use cases.
func (uc *MovementUseCase) RecordEntry(ctx context.Context, input RecordEntryInput) (*domain.Movement, error) {
	if input.Kind != domain.MovementIncome && input.Kind != domain.MovementExpense {
		return nil, domain.ErrInvalidMovementKind
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var movement *domain.Movement

	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.AccountID)
		if err != nil {
			return err
		}

		movement = &domain.Movement{
			ID:            uc.idGen.Generate(),
			AccountID:     account.ID,
			Kind:          input.Kind,
			Amount:        input.Amount,
			SourceEventID: uc.idGen.Generate(),
			Description:   input.Description,
			CreatedAt:     now,
		}

		if err := movement.Validate(); err != nil {
			return err
		}

		var balance decimal.Decimal
		if input.Kind == domain.MovementIncome {
			balance = account.ApplyCredit(input.Amount)
		} else {
			if err := account.ValidateDebit(input.Amount); err != nil {
				return err
			}
			balance = account.ApplyDebit(input.Amount)
		}

		if err := uc.movementRepo.Create(txCtx, tx, movement); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, balance, now); err != nil {
			return err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   movement.ID,
			AggregateType: domain.AggregateTypeMovement,
			EventType:     domain.EventTypeExpenseRecorded,
			Payload: domain.MovementRecordedEvent{
				MovementID: movement.ID,
				AccountID:  account.ID,
				Kind:       string(input.Kind),
				Amount:     input.Amount.String(),
			},
			CreatedAt: now,
		}

		return uc.outboxRepo.Create(txCtx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil && input.Kind == domain.MovementExpense {
		uc.metrics.ExpensesRecorded.Inc()
	}

	return movement, nil
}

// VoidMovement reverses a movement by appending its compensating
// counterpart. The original row is untouched; the pair nets to zero.
// Transfers must be voided as a pair, so voiding a single transfer leg is
// rejected. Voiding twice is rejected.
func (uc *MovementUseCase) VoidMovement(ctx context.Context, movementID, reason string) (*domain.Movement, error) {
	now := time.Now().UTC()

	var compensating *domain.Movement

	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		original, err := uc.movementRepo.GetByID(txCtx, movementID)
		if err != nil {
			return err
		}

		if original.Kind == domain.MovementTransferIn || original.Kind == domain.MovementTransferOut {
			return domain.ErrInvalidMovementKind
		}

		if original.VoidOfID != nil {
			return domain.ErrMovementVoided
		}

		if _, err := uc.movementRepo.GetVoidOf(txCtx, movementID); err == nil {
			return domain.ErrMovementVoided
		} else if !errors.Is(err, domain.ErrMovementNotFound) {
			return err
		}

		account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, original.AccountID)
		if err != nil {
			return err
		}

		kind := original.CompensatingKind()

		compensating = &domain.Movement{
			ID:            uc.idGen.Generate(),
			AccountID:     original.AccountID,
			Kind:          kind,
			Amount:        original.Amount,
			SourceEventID: original.SourceEventID,
			Description:   reason,
			VoidOfID:      &original.ID,
			CreatedAt:     now,
		}

		if err := compensating.Validate(); err != nil {
			return err
		}

		var balance decimal.Decimal
		if kind == domain.MovementIncome {
			balance = account.ApplyCredit(original.Amount)
		} else {
			if err := account.ValidateDebit(original.Amount); err != nil {
				return err
			}
			balance = account.ApplyDebit(original.Amount)
		}

		if err := uc.movementRepo.Create(txCtx, tx, compensating); err != nil {
			return err
		}

		return uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, balance, now)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MovementsVoided.Inc()
	}

	return compensating, nil
}

// GetMovement retrieves a movement by ID.
func (uc *MovementUseCase) GetMovement(ctx context.Context, id string) (*domain.Movement, error) {
	return uc.movementRepo.GetByID(ctx, id)
}

// ListMovements lists an account's movements, newest first.
func (uc *MovementUseCase) ListMovements(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.movementRepo.ListByAccount(ctx, accountID, limit, offset)
}
