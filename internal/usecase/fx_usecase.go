package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/infrastructure/metrics"
)

// FXUseCase handles cross-currency moves between bóvedas. Rates come from
// the provider; the engine only applies them. The two movements of a
// conversion carry different amounts, so the transfer-pair consistency
// check deliberately excludes FX pairs.
type FXUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	accountRepo  AccountRepository
	movementRepo MovementRepository
	outboxRepo   OutboxRepository
	rateProvider RateProvider
	idGen        IDGenerator
	metrics      *metrics.Metrics
}

// NewFXUseCase creates a new FXUseCase.
func NewFXUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	rateProvider RateProvider,
	idGen IDGenerator,
	m *metrics.Metrics,
) *FXUseCase {
	return &FXUseCase{
		txManager:    txManager,
		retrier:      retrier,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		outboxRepo:   outboxRepo,
		rateProvider: rateProvider,
		idGen:        idGen,
		metrics:      m,
	}
}

// ConvertInput represents a cross-currency transfer. Rate overrides the
// provider when positive; zero means "ask the provider".
type ConvertInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Rate          decimal.Decimal
	Description   string
}

// ConvertResult reports both legs of a conversion.
type ConvertResult struct {
	TransferID string
	Rate       decimal.Decimal
	Debited    decimal.Decimal
	Credited   decimal.Decimal
}

// Convert moves Amount out of the source account and credits the
// converted amount, rounded to cents, to the destination. Both legs share
// one source event ID so the conversion reads as a unit in the history.
func (uc *FXUseCase) Convert(ctx context.Context, input ConvertInput) (*ConvertResult, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.Rate.IsNegative() {
		return nil, domain.ErrInvalidRate
	}

	ids := []string{input.FromAccountID, input.ToAccountID}
	sort.Strings(ids)

	var result *ConvertResult

	err := runInTx(ctx, uc.txManager, uc.retrier, func(txCtx context.Context, tx Transaction) error {
		accounts, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, ids)
		if err != nil {
			return err
		}

		if len(accounts) != len(ids) {
			return domain.ErrAccountNotFound
		}

		var from, to *domain.Account
		for _, a := range accounts {
			switch a.ID {
			case input.FromAccountID:
				from = a
			case input.ToAccountID:
				to = a
			}
		}

		if from.Currency == to.Currency {
			return domain.ErrSameCurrency
		}

		now := time.Now().UTC()

		rate := input.Rate
		if rate.IsZero() {
			rate, err = uc.rateProvider.GetRate(txCtx, from.Currency, to.Currency, now)
			if err != nil {
				return err
			}
		}

		credited, err := domain.ConvertCurrency(input.Amount, rate)
		if err != nil {
			return err
		}

		if err := from.ValidateDebit(input.Amount); err != nil {
			return err
		}

		transferID := uc.idGen.Generate()
		description := input.Description
		if description == "" {
			description = fmt.Sprintf("cambio %s/%s @ %s", from.Currency, to.Currency, rate.String())
		}

		out := &domain.Movement{
			ID:                   uc.idGen.Generate(),
			AccountID:            from.ID,
			Kind:                 domain.MovementTransferOut,
			Amount:               input.Amount,
			CounterpartAccountID: &to.ID,
			SourceEventID:        transferID,
			Description:          description,
			CreatedAt:            now,
		}

		in := &domain.Movement{
			ID:                   uc.idGen.Generate(),
			AccountID:            to.ID,
			Kind:                 domain.MovementTransferIn,
			Amount:               credited,
			CounterpartAccountID: &from.ID,
			SourceEventID:        transferID,
			Description:          description,
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

		if err := uc.accountRepo.UpdateBalance(txCtx, tx, from.ID, from.ApplyDebit(input.Amount), now); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(txCtx, tx, to.ID, to.ApplyCredit(credited), now); err != nil {
			return err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   transferID,
			AggregateType: domain.AggregateTypeTransfer,
			EventType:     domain.EventTypeTransferCreated,
			Payload: domain.ConversionEvent{
				TransferID:    transferID,
				FromAccountID: from.ID,
				ToAccountID:   to.ID,
				Debited:       input.Amount.String(),
				Credited:      credited.String(),
				Rate:          rate.String(),
			},
			CreatedAt: now,
		}

		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}

		result = &ConvertResult{
			TransferID: transferID,
			Rate:       rate,
			Debited:    input.Amount,
			Credited:   credited,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
	}

	return result, nil
}

// Quote converts an amount at the provider's current rate without
// touching the ledger.
func (uc *FXUseCase) Quote(ctx context.Context, from, to string, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if err := domain.ValidateCurrency(from); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	if err := domain.ValidateCurrency(to); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	rate, err := uc.rateProvider.GetRate(ctx, from, to, time.Now().UTC())
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	converted, err := domain.ConvertCurrency(amount, rate)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return rate, converted, nil
}
