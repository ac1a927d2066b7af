package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/usecase"
	"github.com/flowdist/flowdistributor/internal/usecase/mocks"
)

type saleFixture struct {
	uc        *usecase.SaleUseCase
	accounts  *mocks.MockAccountRepository
	movements *mocks.MockMovementRepository
	orders    *mocks.MockPurchaseOrderRepository
	sales     *mocks.MockSaleRepository
	stock     *mocks.MockStockRepository
	clients   *mocks.MockClientRepository
	outbox    *mocks.MockOutboxRepository
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()

	f := &saleFixture{
		accounts:  mocks.NewMockAccountRepository(),
		movements: mocks.NewMockMovementRepository(),
		orders:    mocks.NewMockPurchaseOrderRepository(),
		sales:     mocks.NewMockSaleRepository(),
		stock:     mocks.NewMockStockRepository(),
		clients:   mocks.NewMockClientRepository(),
		outbox:    mocks.NewMockOutboxRepository(),
	}

	ctx := context.Background()
	for _, id := range []string{"acc-primary", "acc-freight", "acc-profit"} {
		if err := f.accounts.Create(ctx, nil, &domain.Account{ID: id, Currency: "MXN", Balance: decimal.Zero}); err != nil {
			t.Fatalf("seed account %s: %v", id, err)
		}
	}

	f.uc = usecase.NewSaleUseCase(
		mocks.NewMockTransactionManager(),
		mocks.PassthroughRetrier{},
		f.sales,
		f.orders,
		f.stock,
		f.clients,
		f.accounts,
		f.movements,
		f.outbox,
		mocks.NewMockIDGenerator(),
		domain.SaleAccounts{PrimaryID: "acc-primary", FreightID: "acc-freight", ProfitID: "acc-profit"},
		nil,
	)

	return f
}

func (f *saleFixture) seedInventory(t *testing.T, qty int64, unitCost decimal.Decimal) {
	t.Helper()
	ctx := context.Background()

	err := f.orders.Create(ctx, nil, &domain.PurchaseOrder{
		ID:            "OC-100",
		DistributorID: "dist-1",
		ProductID:     "prod-1",
		Quantity:      qty,
		UnitCost:      unitCost,
		Status:        domain.OrderStatusOpen,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}

	err = f.stock.Upsert(ctx, nil, &domain.StockLevel{ProductID: "prod-1", Quantity: qty})
	if err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func (f *saleFixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	acc, err := f.accounts.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get account %s: %v", id, err)
	}
	return acc.Balance
}

func TestSaleUseCase_RecordSale_FullPayment(t *testing.T) {
	f := newSaleFixture(t)
	f.seedInventory(t, 100, decimal.NewFromInt(50))

	sale, err := f.uc.RecordSale(context.Background(), usecase.RecordSaleInput{
		ClientID:       "client-1",
		ClientName:     "Cliente Uno",
		ProductID:      "prod-1",
		Quantity:       40,
		UnitPrice:      decimal.NewFromInt(90),
		FreightPerUnit: decimal.NewFromInt(5),
		InitialPayment: decimal.NewFromInt(3600),
	})
	if err != nil {
		t.Fatalf("RecordSale() error = %v", err)
	}

	if sale.Status != domain.SaleStatusPaid {
		t.Errorf("status = %s, want %s", sale.Status, domain.SaleStatusPaid)
	}

	if !sale.UnitCostBasis.Equal(decimal.NewFromInt(50)) {
		t.Errorf("cost basis = %s, want 50", sale.UnitCostBasis)
	}

	wantBalances := map[string]string{
		"acc-primary": "2000",
		"acc-freight": "200",
		"acc-profit":  "1400",
	}
	for id, want := range wantBalances {
		if got := f.balance(t, id); !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("balance(%s) = %s, want %s", id, got, want)
		}
	}

	// Net effect across the three accounts equals the gross income.
	total := decimal.Zero
	for id := range wantBalances {
		total = total.Add(f.balance(t, id))
	}
	if !total.Equal(decimal.NewFromInt(3600)) {
		t.Errorf("sum of balances = %s, want 3600", total)
	}

	stock, err := f.stock.Get(context.Background(), "prod-1")
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if stock.Quantity != 60 {
		t.Errorf("stock = %d, want 60", stock.Quantity)
	}

	client, err := f.clients.GetByID(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if !client.Debt.IsZero() {
		t.Errorf("client debt = %s, want 0", client.Debt)
	}
}

func TestSaleUseCase_RecordSale_CreditSale(t *testing.T) {
	f := newSaleFixture(t)
	f.seedInventory(t, 100, decimal.NewFromInt(50))

	sale, err := f.uc.RecordSale(context.Background(), usecase.RecordSaleInput{
		ClientID:       "client-1",
		ClientName:     "Cliente Uno",
		ProductID:      "prod-1",
		Quantity:       40,
		UnitPrice:      decimal.NewFromInt(90),
		FreightPerUnit: decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("RecordSale() error = %v", err)
	}

	if sale.Status != domain.SaleStatusPending {
		t.Errorf("status = %s, want %s", sale.Status, domain.SaleStatusPending)
	}

	if got := len(f.movements.All()); got != 0 {
		t.Errorf("movements = %d, want 0 before any payment", got)
	}

	client, _ := f.clients.GetByID(context.Background(), "client-1")
	if !client.Debt.Equal(decimal.NewFromInt(3600)) {
		t.Errorf("client debt = %s, want 3600", client.Debt)
	}
}

func TestSaleUseCase_StagedPayments(t *testing.T) {
	f := newSaleFixture(t)
	f.seedInventory(t, 100, decimal.NewFromInt(50))

	sale, err := f.uc.RecordSale(context.Background(), usecase.RecordSaleInput{
		ClientID:       "client-1",
		ClientName:     "Cliente Uno",
		ProductID:      "prod-1",
		Quantity:       40,
		UnitPrice:      decimal.NewFromInt(90),
		FreightPerUnit: decimal.NewFromInt(5),
		InitialPayment: decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("RecordSale() error = %v", err)
	}

	if sale.Status != domain.SaleStatusPartial {
		t.Errorf("status = %s, want %s", sale.Status, domain.SaleStatusPartial)
	}

	// Income staged, carve-outs still held back.
	if got := f.balance(t, "acc-primary"); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("primary balance = %s, want 1000", got)
	}
	if got := f.balance(t, "acc-freight"); !got.IsZero() {
		t.Errorf("freight balance = %s, want 0", got)
	}

	sale, err = f.uc.ApplyClientPayment(context.Background(), usecase.ClientPaymentInput{
		SaleID: sale.ID,
		Amount: decimal.NewFromInt(2600),
	})
	if err != nil {
		t.Fatalf("ApplyClientPayment() error = %v", err)
	}

	if sale.Status != domain.SaleStatusPaid {
		t.Errorf("status = %s, want %s", sale.Status, domain.SaleStatusPaid)
	}

	if got := f.balance(t, "acc-primary"); !got.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("primary balance = %s, want 2000", got)
	}
	if got := f.balance(t, "acc-freight"); !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("freight balance = %s, want 200", got)
	}
	if got := f.balance(t, "acc-profit"); !got.Equal(decimal.NewFromInt(1400)) {
		t.Errorf("profit balance = %s, want 1400", got)
	}
}

func TestSaleUseCase_PaymentExceedsOutstanding(t *testing.T) {
	f := newSaleFixture(t)
	f.seedInventory(t, 100, decimal.NewFromInt(50))

	sale, err := f.uc.RecordSale(context.Background(), usecase.RecordSaleInput{
		ClientID:       "client-1",
		ClientName:     "Cliente Uno",
		ProductID:      "prod-1",
		Quantity:       40,
		UnitPrice:      decimal.NewFromInt(90),
		FreightPerUnit: decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("RecordSale() error = %v", err)
	}

	_, err = f.uc.ApplyClientPayment(context.Background(), usecase.ClientPaymentInput{
		SaleID: sale.ID,
		Amount: decimal.NewFromInt(5000),
	})
	if !errors.Is(err, domain.ErrPaymentExceedsDebt) {
		t.Errorf("error = %v, want ErrPaymentExceedsDebt", err)
	}
}

func TestSaleUseCase_RecordSale_InsufficientStock(t *testing.T) {
	f := newSaleFixture(t)
	f.seedInventory(t, 10, decimal.NewFromInt(50))

	_, err := f.uc.RecordSale(context.Background(), usecase.RecordSaleInput{
		ClientID:       "client-1",
		ProductID:      "prod-1",
		Quantity:       11,
		UnitPrice:      decimal.NewFromInt(90),
		FreightPerUnit: decimal.NewFromInt(5),
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Errorf("error = %v, want ErrInsufficientStock", err)
	}
}

func TestSaleUseCase_RecordSale_NoCostBasis(t *testing.T) {
	f := newSaleFixture(t)

	if err := f.stock.Upsert(context.Background(), nil, &domain.StockLevel{ProductID: "prod-2", Quantity: 50}); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	_, err := f.uc.RecordSale(context.Background(), usecase.RecordSaleInput{
		ClientID:       "client-1",
		ProductID:      "prod-2",
		Quantity:       5,
		UnitPrice:      decimal.NewFromInt(90),
		FreightPerUnit: decimal.NewFromInt(5),
	})
	if !errors.Is(err, domain.ErrNoCostBasis) {
		t.Errorf("error = %v, want ErrNoCostBasis", err)
	}
}

func TestSaleUseCase_RecordSale_NegativeProfitFlowsBack(t *testing.T) {
	f := newSaleFixture(t)
	f.seedInventory(t, 100, decimal.NewFromInt(50))

	// Loss-making price: profit = (40 − 50 − 5) × 10 = −150, pulled back
	// from the profit account into the primary.
	if err := f.accounts.UpdateBalance(context.Background(), nil, "acc-profit", decimal.NewFromInt(500), time.Now().UTC()); err != nil {
		t.Fatalf("seed profit balance: %v", err)
	}

	_, err := f.uc.RecordSale(context.Background(), usecase.RecordSaleInput{
		ClientID:       "client-1",
		ProductID:      "prod-1",
		Quantity:       10,
		UnitPrice:      decimal.NewFromInt(40),
		FreightPerUnit: decimal.NewFromInt(5),
		InitialPayment: decimal.NewFromInt(400),
	})
	if err != nil {
		t.Fatalf("RecordSale() error = %v", err)
	}

	// gross 400, freight 50, profit −150: primary keeps 400−50+150 = 500.
	if got := f.balance(t, "acc-primary"); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("primary balance = %s, want 500", got)
	}
	if got := f.balance(t, "acc-profit"); !got.Equal(decimal.NewFromInt(350)) {
		t.Errorf("profit balance = %s, want 350", got)
	}
}

func TestSaleUseCase_QuoteSale(t *testing.T) {
	f := newSaleFixture(t)
	f.seedInventory(t, 100, decimal.NewFromInt(50))

	quote, err := f.uc.QuoteSale(context.Background(), "prod-1", 40, decimal.NewFromInt(90), decimal.NewFromInt(5))
	if err != nil {
		t.Fatalf("QuoteSale() error = %v", err)
	}

	if !quote.Split.Gross.Equal(decimal.NewFromInt(3600)) || !quote.Split.Profit.Equal(decimal.NewFromInt(1400)) {
		t.Errorf("split = %+v, want gross 3600 profit 1400", quote.Split)
	}

	if !quote.CostBasis.Equal(decimal.NewFromInt(50)) {
		t.Errorf("cost basis = %s, want 50", quote.CostBasis)
	}

	// (90 - 50 - 5) / 90, as a percentage.
	wantMargin := decimal.NewFromInt(35).Div(decimal.NewFromInt(90)).Mul(decimal.NewFromInt(100))
	if !quote.MarginPercent.Equal(wantMargin) {
		t.Errorf("margin percent = %s, want %s", quote.MarginPercent, wantMargin)
	}

	stock, _ := f.stock.Get(context.Background(), "prod-1")
	if stock.Quantity != 100 {
		t.Errorf("quote must not touch stock, got %d", stock.Quantity)
	}
}
