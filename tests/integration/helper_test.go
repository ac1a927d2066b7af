package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	adaptershttp "github.com/flowdist/flowdistributor/internal/adapter/http"
	"github.com/flowdist/flowdistributor/internal/adapter/http/handler"
	"github.com/flowdist/flowdistributor/internal/adapter/rates"
	"github.com/flowdist/flowdistributor/internal/adapter/repository/postgres"
	redisrepo "github.com/flowdist/flowdistributor/internal/adapter/repository/redis"
	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/usecase"
	"github.com/flowdist/flowdistributor/tests/testutil"
)

// testServer bundles the full HTTP stack over a real database with an
// in-process redis.
type testServer struct {
	db           *testutil.TestDB
	router       http.Handler
	saleAccounts domain.SaleAccounts
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	retrier := postgres.NewRetrier()
	accountRepo := postgres.NewAccountRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	distributorRepo := postgres.NewDistributorRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	idGen := postgres.NewULIDGenerator()

	primary := testDB.CreateTestAccount(ctx, "Bóveda Principal", "MXN", false)
	freight := testDB.CreateTestAccount(ctx, "Fletes", "MXN", false)
	profit := testDB.CreateTestAccount(ctx, "Utilidades", "MXN", false)
	saleAccounts := domain.SaleAccounts{
		PrimaryID: primary.ID,
		FreightID: freight.ID,
		ProfitID:  profit.ID,
	}

	ratePairs := map[string]decimal.Decimal{
		"USD/MXN": decimal.RequireFromString("17.35"),
	}
	rateProvider := rates.NewStaticProvider(ratePairs)

	accountUC := usecase.NewAccountUseCase(txManager, retrier, accountRepo, outboxRepo, idGen, nil)
	purchaseUC := usecase.NewPurchaseOrderUseCase(txManager, retrier, orderRepo, stockRepo, distributorRepo, accountRepo, movementRepo, outboxRepo, idGen, nil)
	saleUC := usecase.NewSaleUseCase(txManager, retrier, saleRepo, orderRepo, stockRepo, clientRepo, accountRepo, movementRepo, outboxRepo, idGen, saleAccounts, nil)
	transferUC := usecase.NewTransferUseCase(txManager, retrier, accountRepo, movementRepo, outboxRepo, idGen, nil)
	fxUC := usecase.NewFXUseCase(txManager, retrier, accountRepo, movementRepo, outboxRepo, rateProvider, idGen, nil)
	movementUC := usecase.NewMovementUseCase(txManager, retrier, accountRepo, movementRepo, outboxRepo, idGen, nil)
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, accountRepo, movementRepo, ledgerRepo, nil)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		PurchaseHandler:  handler.NewPurchaseHandler(purchaseUC),
		SaleHandler:      handler.NewSaleHandler(saleUC),
		TransferHandler:  handler.NewTransferHandler(transferUC),
		FXHandler:        handler.NewFXHandler(fxUC),
		MovementHandler:  handler.NewMovementHandler(movementUC),
		LedgerHandler:    handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: redisrepo.NewIdempotencyStore(redisClient),
	})

	return &testServer{
		db:           testDB,
		router:       router,
		saleAccounts: saleAccounts,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func assertBalance(t *testing.T, ts *testServer, accountID, want string) {
	t.Helper()

	rr := ts.do(t, http.MethodGet, "/api/v1/accounts/"+accountID, nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("failed to fetch account %s: %d", accountID, rr.Code)
	}

	var account struct {
		Balance decimal.Decimal `json:"balance"`
	}
	decodeBody(t, rr, &account)

	if !account.Balance.Equal(mustDecimal(t, want)) {
		t.Fatalf("account %s balance = %s, want %s", accountID, account.Balance, want)
	}
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}
