package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/infrastructure/metrics"
)

// SaleUseCase handles sales: stock out, client debt up, income staged
// through payments, and the freight/profit carve-outs once a sale is
// fully paid.
type SaleUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	saleRepo     SaleRepository
	orderRepo    PurchaseOrderRepository
	stockRepo    StockRepository
	clientRepo   ClientRepository
	accountRepo  AccountRepository
	movementRepo MovementRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	accounts     domain.SaleAccounts
	metrics      *metrics.Metrics
}

// NewSaleUseCase creates a new SaleUseCase. accounts names the fixed
// destinations of sale proceeds.
func NewSaleUseCase(
	txManager TransactionManager,
	retrier Retrier,
	saleRepo SaleRepository,
	orderRepo PurchaseOrderRepository,
	stockRepo StockRepository,
	clientRepo ClientRepository,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	accounts domain.SaleAccounts,
	m *metrics.Metrics,
) *SaleUseCase {
	return &SaleUseCase{
		txManager:    txManager,
		retrier:      retrier,
		saleRepo:     saleRepo,
		orderRepo:    orderRepo,
		stockRepo:    stockRepo,
		clientRepo:   clientRepo,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		accounts:     accounts,
		metrics:      m,
	}
}

// RecordSaleInput represents a sale proposal. InitialPayment may be zero
// (full credit), partial, or the whole gross (cash sale).
type RecordSaleInput struct {
	ClientID       string
	ClientName     string
	ProductID      string
	Quantity       int64
	UnitPrice      decimal.Decimal
	FreightPerUnit decimal.Decimal
	InitialPayment decimal.Decimal
}

// RecordSale processes a sale: stock drops by the sold quantity, the unit
// cost basis is frozen from the weighted average of the product's open
// purchase orders, and the client owes the gross. Any initial payment is
// applied in the same transaction; if it covers the gross, the freight and
// profit carve-outs post immediately.
func (uc *SaleUseCase) RecordSale(ctx context.Context, input RecordSaleInput) (*domain.Sale, error) {
	now := time.Now().UTC()

	if input.ClientID == "" || input.ProductID == "" {
		return nil, domain.ErrClientNotFound
	}

	sale := &domain.Sale{
		ID:              uc.idGen.Generate(),
		ClientID:        input.ClientID,
		ProductID:       input.ProductID,
		Quantity:        input.Quantity,
		UnitPrice:       input.UnitPrice,
		FreightPerUnit:  input.FreightPerUnit,
		OriginAccountID: uc.accounts.PrimaryID,
		AmountPaid:      decimal.Zero,
		Status:          domain.SaleStatusPending,
		CreatedAt:       now,
	}

	if err := sale.Validate(); err != nil {
		return nil, err
	}

	if input.InitialPayment.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	var stockLevel int64

	err := uc.withRetry(ctx, func(txCtx context.Context, tx Transaction) error {
		stock, err := uc.stockRepo.GetForUpdate(txCtx, tx, sale.ProductID)
		if err != nil {
			return err
		}

		if err := stock.ValidateWithdraw(sale.Quantity); err != nil {
			return err
		}

		openOrders, err := uc.orderRepo.ListOpenByProduct(txCtx, tx, sale.ProductID)
		if err != nil {
			return err
		}

		costBasis, err := domain.WeightedAverageCost(openOrders)
		if err != nil {
			return err
		}

		sale.UnitCostBasis = costBasis

		stock.Quantity -= sale.Quantity
		stock.UpdatedAt = now
		stockLevel = stock.Quantity

		if err := uc.stockRepo.Upsert(txCtx, tx, stock); err != nil {
			return err
		}

		client, err := uc.clientRepo.GetByIDForUpdate(txCtx, tx, sale.ClientID)
		if errors.Is(err, domain.ErrClientNotFound) {
			client = &domain.Client{
				ID:        sale.ClientID,
				Name:      input.ClientName,
				Debt:      decimal.Zero,
				CreatedAt: now,
			}
		} else if err != nil {
			return err
		}

		client.AddDebt(sale.GrossTotal())
		client.UpdatedAt = now

		if err := uc.saleRepo.Create(txCtx, tx, sale); err != nil {
			return err
		}

		if input.InitialPayment.IsPositive() {
			if err := uc.applyPayment(txCtx, tx, sale, client, input.InitialPayment, now); err != nil {
				return err
			}
		}

		if err := uc.clientRepo.Upsert(txCtx, tx, client); err != nil {
			return err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   sale.ID,
			AggregateType: domain.AggregateTypeSale,
			EventType:     domain.EventTypeSaleRecorded,
			Payload: domain.SaleRecordedEvent{
				SaleID:    sale.ID,
				ClientID:  sale.ClientID,
				ProductID: sale.ProductID,
				Quantity:  sale.Quantity,
				Gross:     sale.GrossTotal().String(),
				Status:    string(sale.Status),
			},
			CreatedAt: now,
		}

		return uc.outboxRepo.Create(txCtx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SalesRecorded.Inc()
		gross, _ := sale.GrossTotal().Float64()
		uc.metrics.SaleGross.Observe(gross)
		uc.metrics.StockLevel.WithLabelValues(sale.ProductID).Set(float64(stockLevel))
	}

	return sale, nil
}

// ClientPaymentInput represents an abono from a client against a sale.
type ClientPaymentInput struct {
	SaleID string
	Amount decimal.Decimal
}

// ApplyClientPayment credits a payment to the sale's primary account and
// lowers the client debt. When the payment completes the gross, the sale
// flips to paid and the freight and profit carve-outs post in the same
// transaction.
func (uc *SaleUseCase) ApplyClientPayment(ctx context.Context, input ClientPaymentInput) (*domain.Sale, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var sale *domain.Sale

	err := uc.withRetry(ctx, func(txCtx context.Context, tx Transaction) error {
		var err error

		sale, err = uc.saleRepo.GetByIDForUpdate(txCtx, tx, input.SaleID)
		if err != nil {
			return err
		}

		client, err := uc.clientRepo.GetByIDForUpdate(txCtx, tx, sale.ClientID)
		if err != nil {
			return err
		}

		if err := uc.applyPayment(txCtx, tx, sale, client, input.Amount, now); err != nil {
			return err
		}

		client.UpdatedAt = now

		return uc.clientRepo.Upsert(txCtx, tx, client)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsApplied.WithLabelValues("client").Inc()
	}

	return sale, nil
}

// applyPayment stages a payment inside an open transaction: income lands
// on the primary account, the sale and client debts shrink, and the
// carve-out transfers post once the sale becomes fully paid. Accounts are
// locked in sorted ID order to avoid deadlocks with concurrent payments.
func (uc *SaleUseCase) applyPayment(ctx context.Context, tx Transaction, sale *domain.Sale, client *domain.Client, amount decimal.Decimal, now time.Time) error {
	saleAccounts := domain.SaleAccounts{
		PrimaryID: sale.OriginAccountID,
		FreightID: uc.accounts.FreightID,
		ProfitID:  uc.accounts.ProfitID,
	}

	becamePaid, err := sale.ApplyPayment(amount)
	if err != nil {
		return err
	}

	if err := client.ApplyPayment(amount); err != nil {
		return err
	}

	ids := []string{saleAccounts.PrimaryID}
	if becamePaid {
		ids = append(ids, saleAccounts.FreightID, saleAccounts.ProfitID)
	}
	sort.Strings(ids)

	locked, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return err
	}

	accounts := make(map[string]*domain.Account, len(locked))
	for _, a := range locked {
		accounts[a.ID] = a
	}

	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			return domain.ErrAccountNotFound
		}
	}

	paymentID := uc.idGen.Generate()

	postings := []domain.Posting{{
		AccountID:   saleAccounts.PrimaryID,
		Kind:        domain.MovementIncome,
		Amount:      amount,
		Description: fmt.Sprintf("abono venta %s - %s", sale.ID, client.Name),
	}}

	if becamePaid {
		split, err := domain.ComputeSaleSplit(sale.UnitPrice, sale.UnitCostBasis, sale.FreightPerUnit, sale.Quantity)
		if err != nil {
			return err
		}

		carveOuts, err := domain.CarveOutPostings(sale, split, saleAccounts)
		if err != nil {
			return err
		}

		postings = append(postings, carveOuts...)
	}

	for _, p := range postings {
		account := accounts[p.AccountID]

		movement := &domain.Movement{
			ID:                   uc.idGen.Generate(),
			AccountID:            p.AccountID,
			Kind:                 p.Kind,
			Amount:               p.Amount,
			CounterpartAccountID: p.CounterpartAccountID,
			SourceEventID:        paymentID,
			Description:          p.Description,
			CreatedAt:            now,
		}

		if err := movement.Validate(); err != nil {
			return err
		}

		if err := uc.movementRepo.Create(ctx, tx, movement); err != nil {
			return err
		}

		var balance decimal.Decimal
		switch p.Kind {
		case domain.MovementIncome, domain.MovementTransferIn:
			balance = account.ApplyCredit(p.Amount)
		default:
			if err := account.ValidateDebit(p.Amount); err != nil {
				return err
			}
			balance = account.ApplyDebit(p.Amount)
		}
		account.Balance = balance

		if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, balance, now); err != nil {
			return err
		}
	}

	if err := uc.saleRepo.Update(ctx, tx, sale); err != nil {
		return err
	}

	eventType := domain.EventTypePaymentApplied
	if becamePaid {
		eventType = domain.EventTypeSalePaid
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   sale.ID,
		AggregateType: domain.AggregateTypeSale,
		EventType:     eventType,
		Payload: domain.PaymentAppliedEvent{
			SourceID: paymentID,
			SaleID:   sale.ID,
			PartyID:  client.ID,
			Amount:   amount.String(),
			Status:   string(sale.Status),
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	if becamePaid && uc.metrics != nil {
		uc.metrics.SalesPaid.Inc()
	}

	return nil
}

// GetSale retrieves a sale by ID.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	return uc.saleRepo.GetByID(ctx, id)
}

// ListSales lists sales, newest first.
func (uc *SaleUseCase) ListSales(ctx context.Context, limit, offset int) ([]*domain.Sale, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.saleRepo.List(ctx, limit, offset)
}

// ListSalesByClient lists a client's sales.
func (uc *SaleUseCase) ListSalesByClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.Sale, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.saleRepo.ListByClient(ctx, clientID, limit, offset)
}

// GetClient retrieves a client with its outstanding debt.
func (uc *SaleUseCase) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return uc.clientRepo.GetByID(ctx, id)
}

// ListClients lists clients.
func (uc *SaleUseCase) ListClients(ctx context.Context, limit, offset int) ([]*domain.Client, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.clientRepo.List(ctx, limit, offset)
}

// SaleQuote previews what a sale would post: the split, the cost basis it
// would freeze, and the margin relative to the sale price.
type SaleQuote struct {
	CostBasis     decimal.Decimal
	Split         domain.SaleSplit
	MarginPercent decimal.Decimal
}

// QuoteSale previews the split of a prospective sale without touching the
// ledger. The cost basis comes from the current open purchase orders.
func (uc *SaleUseCase) QuoteSale(ctx context.Context, productID string, quantity int64, unitPrice, freightPerUnit decimal.Decimal) (*SaleQuote, error) {
	openOrders, err := uc.orderRepo.ListOpenByProduct(ctx, nil, productID)
	if err != nil {
		return nil, err
	}

	costBasis, err := domain.WeightedAverageCost(openOrders)
	if err != nil {
		return nil, err
	}

	split, err := domain.ComputeSaleSplit(unitPrice, costBasis, freightPerUnit, quantity)
	if err != nil {
		return nil, err
	}

	quote := &SaleQuote{CostBasis: costBasis, Split: split}

	if unitPrice.IsPositive() {
		margin, err := domain.ProfitMarginPercent(unitPrice, costBasis, freightPerUnit)
		if err != nil {
			return nil, err
		}
		quote.MarginPercent = margin
	}

	return quote, nil
}

func (uc *SaleUseCase) withRetry(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	return runInTx(ctx, uc.txManager, uc.retrier, fn)
}
