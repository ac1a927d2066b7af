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

// PurchaseOrderUseCase handles the purchase order workflow: inventory in,
// distributor debt up, no cash movement until an abono is applied.
type PurchaseOrderUseCase struct {
	txManager       TransactionManager
	retrier         Retrier
	orderRepo       PurchaseOrderRepository
	stockRepo       StockRepository
	distributorRepo DistributorRepository
	accountRepo     AccountRepository
	movementRepo    MovementRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	metrics         *metrics.Metrics
}

// NewPurchaseOrderUseCase creates a new PurchaseOrderUseCase.
func NewPurchaseOrderUseCase(
	txManager TransactionManager,
	retrier Retrier,
	orderRepo PurchaseOrderRepository,
	stockRepo StockRepository,
	distributorRepo DistributorRepository,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{
		txManager:       txManager,
		retrier:         retrier,
		orderRepo:       orderRepo,
		stockRepo:       stockRepo,
		distributorRepo: distributorRepo,
		accountRepo:     accountRepo,
		movementRepo:    movementRepo,
		outboxRepo:      outboxRepo,
		idGen:           idGen,
		metrics:         m,
	}
}

// ReceiveOrderInput represents a purchase order proposal. OrderID is the
// caller-supplied OC number and doubles as the idempotency handle.
type ReceiveOrderInput struct {
	OrderID         string
	DistributorID   string
	DistributorName string
	ProductID       string
	Quantity        int64
	UnitCost        decimal.Decimal
}

// ReceiveOrder processes a purchase order: stock rises by the ordered
// quantity and the distributor debt rises by quantity × unit cost, both in
// one transaction. Resubmitting the same OC number fails with
// ErrDuplicateOrder and leaves the ledger untouched.
func (uc *PurchaseOrderUseCase) ReceiveOrder(ctx context.Context, input ReceiveOrderInput) (*domain.PurchaseOrder, error) {
	now := time.Now().UTC()

	order := &domain.PurchaseOrder{
		ID:            input.OrderID,
		DistributorID: input.DistributorID,
		ProductID:     input.ProductID,
		Quantity:      input.Quantity,
		UnitCost:      input.UnitCost,
		AmountPaid:    decimal.Zero,
		Status:        domain.OrderStatusOpen,
		CreatedAt:     now,
	}

	if order.ID == "" || order.DistributorID == "" || order.ProductID == "" {
		return nil, domain.ErrOrderNotFound
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	// Cheap duplicate check before opening a transaction; the primary key
	// still guards against races.
	if _, err := uc.orderRepo.GetByID(ctx, order.ID); err == nil {
		if uc.metrics != nil {
			uc.metrics.DuplicateOrders.Inc()
		}
		return nil, domain.ErrDuplicateOrder
	} else if !errors.Is(err, domain.ErrOrderNotFound) {
		return nil, err
	}

	var stockLevel int64

	err := uc.withRetry(ctx, func(txCtx context.Context, tx Transaction) error {
		stock, err := uc.stockRepo.GetForUpdate(txCtx, tx, order.ProductID)
		if err != nil {
			return err
		}

		stock.Quantity += order.Quantity
		stock.UpdatedAt = now
		stockLevel = stock.Quantity

		if err := uc.stockRepo.Upsert(txCtx, tx, stock); err != nil {
			return err
		}

		distributor, err := uc.distributorRepo.GetByIDForUpdate(txCtx, tx, order.DistributorID)
		if errors.Is(err, domain.ErrDistributorNotFound) {
			distributor = &domain.Distributor{
				ID:        order.DistributorID,
				Name:      input.DistributorName,
				Debt:      decimal.Zero,
				CreatedAt: now,
			}
		} else if err != nil {
			return err
		}

		distributor.AddDebt(order.Total())
		distributor.UpdatedAt = now

		if err := uc.distributorRepo.Upsert(txCtx, tx, distributor); err != nil {
			return err
		}

		if err := uc.orderRepo.Create(txCtx, tx, order); err != nil {
			return err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   order.ID,
			AggregateType: domain.AggregateTypeOrder,
			EventType:     domain.EventTypeOrderReceived,
			Payload: domain.OrderReceivedEvent{
				OrderID:       order.ID,
				DistributorID: order.DistributorID,
				ProductID:     order.ProductID,
				Quantity:      order.Quantity,
				Total:         order.Total().String(),
			},
			CreatedAt: now,
		}

		return uc.outboxRepo.Create(txCtx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.OrdersReceived.Inc()
		uc.metrics.StockLevel.WithLabelValues(order.ProductID).Set(float64(stockLevel))
	}

	return order, nil
}

// DistributorPaymentInput represents an abono against a purchase order,
// paid out of a bóveda.
type DistributorPaymentInput struct {
	OrderID   string
	AccountID string
	Amount    decimal.Decimal
}

// ApplyDistributorPayment pays part of a purchase order: an expense
// movement leaves the paying account and the distributor debt falls by
// the same amount. The order settles once fully covered.
func (uc *PurchaseOrderUseCase) ApplyDistributorPayment(ctx context.Context, input DistributorPaymentInput) (*domain.PurchaseOrder, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var order *domain.PurchaseOrder

	err := uc.withRetry(ctx, func(txCtx context.Context, tx Transaction) error {
		var err error

		order, err = uc.orderRepo.GetByIDForUpdate(txCtx, tx, input.OrderID)
		if err != nil {
			return err
		}

		distributor, err := uc.distributorRepo.GetByIDForUpdate(txCtx, tx, order.DistributorID)
		if err != nil {
			return err
		}

		account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.AccountID)
		if err != nil {
			return err
		}

		if err := account.ValidateDebit(input.Amount); err != nil {
			return err
		}

		if err := order.ApplyPayment(input.Amount); err != nil {
			return err
		}

		if err := distributor.ApplyPayment(input.Amount); err != nil {
			return err
		}

		paymentID := uc.idGen.Generate()

		movement := &domain.Movement{
			ID:            uc.idGen.Generate(),
			AccountID:     account.ID,
			Kind:          domain.MovementExpense,
			Amount:        input.Amount,
			SourceEventID: paymentID,
			Description:   fmt.Sprintf("abono OC %s - %s", order.ID, distributor.Name),
			CreatedAt:     now,
		}

		if err := movement.Validate(); err != nil {
			return err
		}

		if err := uc.movementRepo.Create(txCtx, tx, movement); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, account.ApplyDebit(input.Amount), now); err != nil {
			return err
		}

		if err := uc.orderRepo.Update(txCtx, tx, order); err != nil {
			return err
		}

		distributor.UpdatedAt = now
		if err := uc.distributorRepo.Upsert(txCtx, tx, distributor); err != nil {
			return err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   order.ID,
			AggregateType: domain.AggregateTypeOrder,
			EventType:     domain.EventTypePaymentApplied,
			Payload: domain.PaymentAppliedEvent{
				SourceID: paymentID,
				PartyID:  distributor.ID,
				Amount:   input.Amount.String(),
				Status:   string(order.Status),
			},
			CreatedAt: now,
		}

		return uc.outboxRepo.Create(txCtx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsApplied.WithLabelValues("distributor").Inc()
	}

	return order, nil
}

// GetOrder retrieves a purchase order by ID.
func (uc *PurchaseOrderUseCase) GetOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	return uc.orderRepo.GetByID(ctx, id)
}

// ListOrdersByDistributor lists a distributor's purchase orders.
func (uc *PurchaseOrderUseCase) ListOrdersByDistributor(ctx context.Context, distributorID string, limit, offset int) ([]*domain.PurchaseOrder, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.orderRepo.ListByDistributor(ctx, distributorID, limit, offset)
}

// GetDistributor retrieves a distributor with its outstanding debt.
func (uc *PurchaseOrderUseCase) GetDistributor(ctx context.Context, id string) (*domain.Distributor, error) {
	return uc.distributorRepo.GetByID(ctx, id)
}

// ListDistributors lists distributors.
func (uc *PurchaseOrderUseCase) ListDistributors(ctx context.Context, limit, offset int) ([]*domain.Distributor, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.distributorRepo.List(ctx, limit, offset)
}

// GetStock reports the current stock level of a product.
func (uc *PurchaseOrderUseCase) GetStock(ctx context.Context, productID string) (*domain.StockLevel, error) {
	return uc.stockRepo.Get(ctx, productID)
}

// withRetry runs fn inside a transaction, retrying the whole body on
// retryable store conflicts. fn must be side-effect free outside the
// transaction.
func (uc *PurchaseOrderUseCase) withRetry(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	return runInTx(ctx, uc.txManager, uc.retrier, fn)
}
