package usecase_test

import (
	"context"
	"errors"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/infrastructure/metrics"
	"github.com/flowdist/flowdistributor/internal/usecase"
	"github.com/flowdist/flowdistributor/internal/usecase/mocks"
)

type purchaseFixture struct {
	uc           *usecase.PurchaseOrderUseCase
	accounts     *mocks.MockAccountRepository
	movements    *mocks.MockMovementRepository
	orders       *mocks.MockPurchaseOrderRepository
	stock        *mocks.MockStockRepository
	distributors *mocks.MockDistributorRepository
	outbox       *mocks.MockOutboxRepository
}

func newPurchaseFixture(t *testing.T) *purchaseFixture {
	t.Helper()

	f := &purchaseFixture{
		accounts:     mocks.NewMockAccountRepository(),
		movements:    mocks.NewMockMovementRepository(),
		orders:       mocks.NewMockPurchaseOrderRepository(),
		stock:        mocks.NewMockStockRepository(),
		distributors: mocks.NewMockDistributorRepository(),
		outbox:       mocks.NewMockOutboxRepository(),
	}

	f.uc = usecase.NewPurchaseOrderUseCase(
		mocks.NewMockTransactionManager(),
		mocks.PassthroughRetrier{},
		f.orders,
		f.stock,
		f.distributors,
		f.accounts,
		f.movements,
		f.outbox,
		mocks.NewMockIDGenerator(),
		nil,
	)

	return f
}

func TestPurchaseOrderUseCase_ReceiveOrder(t *testing.T) {
	f := newPurchaseFixture(t)

	order, err := f.uc.ReceiveOrder(context.Background(), usecase.ReceiveOrderInput{
		OrderID:         "OC-2001",
		DistributorID:   "dist-1",
		DistributorName: "Distribuidora Norte",
		ProductID:       "prod-1",
		Quantity:        100,
		UnitCost:        decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("ReceiveOrder() error = %v", err)
	}

	if order.Status != domain.OrderStatusOpen {
		t.Errorf("status = %s, want %s", order.Status, domain.OrderStatusOpen)
	}

	stock, err := f.stock.Get(context.Background(), "prod-1")
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if stock.Quantity != 100 {
		t.Errorf("stock = %d, want 100", stock.Quantity)
	}

	dist, err := f.distributors.GetByID(context.Background(), "dist-1")
	if err != nil {
		t.Fatalf("get distributor: %v", err)
	}
	if !dist.Debt.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("distributor debt = %s, want 5000", dist.Debt)
	}

	// No money moved yet.
	if got := len(f.movements.All()); got != 0 {
		t.Errorf("movements = %d, want 0", got)
	}

	events := f.outbox.Events()
	if len(events) != 1 || events[0].EventType != domain.EventTypeOrderReceived {
		t.Errorf("outbox events = %+v, want one order received event", events)
	}
}

func TestPurchaseOrderUseCase_ReceiveOrder_Duplicate(t *testing.T) {
	f := newPurchaseFixture(t)

	input := usecase.ReceiveOrderInput{
		OrderID:       "OC-2001",
		DistributorID: "dist-1",
		ProductID:     "prod-1",
		Quantity:      100,
		UnitCost:      decimal.NewFromInt(50),
	}

	if _, err := f.uc.ReceiveOrder(context.Background(), input); err != nil {
		t.Fatalf("first ReceiveOrder() error = %v", err)
	}

	_, err := f.uc.ReceiveOrder(context.Background(), input)
	if !errors.Is(err, domain.ErrDuplicateOrder) {
		t.Errorf("error = %v, want ErrDuplicateOrder", err)
	}

	// Replay changed nothing.
	stock, _ := f.stock.Get(context.Background(), "prod-1")
	if stock.Quantity != 100 {
		t.Errorf("stock = %d, want 100 after duplicate", stock.Quantity)
	}

	dist, _ := f.distributors.GetByID(context.Background(), "dist-1")
	if !dist.Debt.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("distributor debt = %s, want 5000 after duplicate", dist.Debt)
	}
}

func TestPurchaseOrderUseCase_ReceiveOrder_Validation(t *testing.T) {
	f := newPurchaseFixture(t)

	tests := []struct {
		name    string
		input   usecase.ReceiveOrderInput
		wantErr error
	}{
		{
			name: "zero quantity",
			input: usecase.ReceiveOrderInput{
				OrderID: "OC-1", DistributorID: "dist-1", ProductID: "prod-1",
				Quantity: 0, UnitCost: decimal.NewFromInt(50),
			},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name: "negative cost",
			input: usecase.ReceiveOrderInput{
				OrderID: "OC-2", DistributorID: "dist-1", ProductID: "prod-1",
				Quantity: 10, UnitCost: decimal.NewFromInt(-1),
			},
			wantErr: domain.ErrInvalidCost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.ReceiveOrder(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPurchaseOrderUseCase_ApplyDistributorPayment(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()

	if err := f.accounts.Create(ctx, nil, &domain.Account{ID: "acc-primary", Currency: "MXN", Balance: decimal.NewFromInt(10000)}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	if _, err := f.uc.ReceiveOrder(ctx, usecase.ReceiveOrderInput{
		OrderID:       "OC-2001",
		DistributorID: "dist-1",
		ProductID:     "prod-1",
		Quantity:      100,
		UnitCost:      decimal.NewFromInt(50),
	}); err != nil {
		t.Fatalf("ReceiveOrder() error = %v", err)
	}

	order, err := f.uc.ApplyDistributorPayment(ctx, usecase.DistributorPaymentInput{
		OrderID:   "OC-2001",
		AccountID: "acc-primary",
		Amount:    decimal.NewFromInt(3000),
	})
	if err != nil {
		t.Fatalf("ApplyDistributorPayment() error = %v", err)
	}

	if order.Status != domain.OrderStatusOpen {
		t.Errorf("status = %s, want still open", order.Status)
	}

	acc, _ := f.accounts.GetByID(ctx, "acc-primary")
	if !acc.Balance.Equal(decimal.NewFromInt(7000)) {
		t.Errorf("account balance = %s, want 7000", acc.Balance)
	}

	dist, _ := f.distributors.GetByID(ctx, "dist-1")
	if !dist.Debt.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("distributor debt = %s, want 2000", dist.Debt)
	}

	movements := f.movements.All()
	if len(movements) != 1 || movements[0].Kind != domain.MovementExpense {
		t.Fatalf("movements = %+v, want one expense", movements)
	}

	// Settle the remainder.
	order, err = f.uc.ApplyDistributorPayment(ctx, usecase.DistributorPaymentInput{
		OrderID:   "OC-2001",
		AccountID: "acc-primary",
		Amount:    decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatalf("ApplyDistributorPayment() error = %v", err)
	}
	if order.Status != domain.OrderStatusSettled {
		t.Errorf("status = %s, want %s", order.Status, domain.OrderStatusSettled)
	}

	// A settled order takes no further payments.
	_, err = f.uc.ApplyDistributorPayment(ctx, usecase.DistributorPaymentInput{
		OrderID:   "OC-2001",
		AccountID: "acc-primary",
		Amount:    decimal.NewFromInt(1),
	})
	if !errors.Is(err, domain.ErrOrderSettled) {
		t.Errorf("error = %v, want ErrOrderSettled", err)
	}
}

func TestPurchaseOrderUseCase_PaymentNeedsFunds(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()

	if err := f.accounts.Create(ctx, nil, &domain.Account{ID: "acc-primary", Currency: "MXN", Balance: decimal.NewFromInt(100)}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	if _, err := f.uc.ReceiveOrder(ctx, usecase.ReceiveOrderInput{
		OrderID:       "OC-2001",
		DistributorID: "dist-1",
		ProductID:     "prod-1",
		Quantity:      100,
		UnitCost:      decimal.NewFromInt(50),
	}); err != nil {
		t.Fatalf("ReceiveOrder() error = %v", err)
	}

	_, err := f.uc.ApplyDistributorPayment(ctx, usecase.DistributorPaymentInput{
		OrderID:   "OC-2001",
		AccountID: "acc-primary",
		Amount:    decimal.NewFromInt(3000),
	})
	if !errors.Is(err, domain.ErrNegativeBalanceNotAllowed) {
		t.Errorf("error = %v, want ErrNegativeBalanceNotAllowed", err)
	}

	dist, _ := f.distributors.GetByID(ctx, "dist-1")
	if !dist.Debt.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("distributor debt = %s, want untouched 5000", dist.Debt)
	}
}

func TestStockLevelGaugeTracksInventory(t *testing.T) {
	m := metrics.New()
	f := newPurchaseFixture(t)

	uc := usecase.NewPurchaseOrderUseCase(
		mocks.NewMockTransactionManager(),
		mocks.PassthroughRetrier{},
		f.orders,
		f.stock,
		f.distributors,
		f.accounts,
		f.movements,
		f.outbox,
		mocks.NewMockIDGenerator(),
		m,
	)

	ctx := context.Background()

	if _, err := uc.ReceiveOrder(ctx, usecase.ReceiveOrderInput{
		OrderID:       "OC-3001",
		DistributorID: "dist-1",
		ProductID:     "prod-9",
		Quantity:      100,
		UnitCost:      decimal.NewFromInt(50),
	}); err != nil {
		t.Fatalf("ReceiveOrder() error = %v", err)
	}

	if got := promtestutil.ToFloat64(m.StockLevel.WithLabelValues("prod-9")); got != 100 {
		t.Errorf("stock gauge after receive = %v, want 100", got)
	}

	sales := mocks.NewMockSaleRepository()
	clients := mocks.NewMockClientRepository()
	saleUC := usecase.NewSaleUseCase(
		mocks.NewMockTransactionManager(),
		mocks.PassthroughRetrier{},
		sales,
		f.orders,
		f.stock,
		clients,
		f.accounts,
		f.movements,
		f.outbox,
		mocks.NewMockIDGenerator(),
		domain.SaleAccounts{PrimaryID: "acc-primary", FreightID: "acc-freight", ProfitID: "acc-profit"},
		m,
	)

	if _, err := saleUC.RecordSale(ctx, usecase.RecordSaleInput{
		ClientID:   "client-1",
		ClientName: "Cliente Uno",
		ProductID:  "prod-9",
		Quantity:   40,
		UnitPrice:  decimal.NewFromInt(90),
	}); err != nil {
		t.Fatalf("RecordSale() error = %v", err)
	}

	if got := promtestutil.ToFloat64(m.StockLevel.WithLabelValues("prod-9")); got != 60 {
		t.Errorf("stock gauge after sale = %v, want 60", got)
	}
}
