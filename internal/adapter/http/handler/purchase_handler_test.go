package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/adapter/http/dto"
	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/usecase"
)

type purchaseServiceStub struct {
	receiveFn     func(ctx context.Context, input usecase.ReceiveOrderInput) (*domain.PurchaseOrder, error)
	payFn         func(ctx context.Context, input usecase.DistributorPaymentInput) (*domain.PurchaseOrder, error)
	getOrderFn    func(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	listOrdersFn  func(ctx context.Context, distributorID string, limit, offset int) ([]*domain.PurchaseOrder, error)
	getDistFn     func(ctx context.Context, id string) (*domain.Distributor, error)
	listDistFn    func(ctx context.Context, limit, offset int) ([]*domain.Distributor, error)
	getStockFn    func(ctx context.Context, productID string) (*domain.StockLevel, error)
}

func (s *purchaseServiceStub) ReceiveOrder(ctx context.Context, input usecase.ReceiveOrderInput) (*domain.PurchaseOrder, error) {
	return s.receiveFn(ctx, input)
}

func (s *purchaseServiceStub) ApplyDistributorPayment(ctx context.Context, input usecase.DistributorPaymentInput) (*domain.PurchaseOrder, error) {
	return s.payFn(ctx, input)
}

func (s *purchaseServiceStub) GetOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	return s.getOrderFn(ctx, id)
}

func (s *purchaseServiceStub) ListOrdersByDistributor(ctx context.Context, distributorID string, limit, offset int) ([]*domain.PurchaseOrder, error) {
	return s.listOrdersFn(ctx, distributorID, limit, offset)
}

func (s *purchaseServiceStub) GetDistributor(ctx context.Context, id string) (*domain.Distributor, error) {
	return s.getDistFn(ctx, id)
}

func (s *purchaseServiceStub) ListDistributors(ctx context.Context, limit, offset int) ([]*domain.Distributor, error) {
	return s.listDistFn(ctx, limit, offset)
}

func (s *purchaseServiceStub) GetStock(ctx context.Context, productID string) (*domain.StockLevel, error) {
	return s.getStockFn(ctx, productID)
}

func TestPurchaseHandler_Receive_Success(t *testing.T) {
	order := &domain.PurchaseOrder{
		ID:            "OC-100",
		DistributorID: "dist-1",
		ProductID:     "prod-1",
		Quantity:      100,
		UnitCost:      decimal.NewFromInt(50),
		Status:        domain.OrderStatusOpen,
	}

	var captured usecase.ReceiveOrderInput
	handler := NewPurchaseHandler(&purchaseServiceStub{
		receiveFn: func(ctx context.Context, input usecase.ReceiveOrderInput) (*domain.PurchaseOrder, error) {
			captured = input
			return order, nil
		},
	})

	body, _ := json.Marshal(dto.ReceiveOrderRequest{
		OrderID:         "OC-100",
		DistributorID:   "dist-1",
		DistributorName: "Distribuidora Norte",
		ProductID:       "prod-1",
		Quantity:        100,
		UnitCost:        decimal.NewFromInt(50),
	})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Receive(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.OrderID != "OC-100" || captured.Quantity != 100 {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.PurchaseOrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "OC-100" || !resp.Total.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected order with total 5000, got %+v", resp)
	}
}

func TestPurchaseHandler_Receive_Duplicate(t *testing.T) {
	handler := NewPurchaseHandler(&purchaseServiceStub{
		receiveFn: func(ctx context.Context, input usecase.ReceiveOrderInput) (*domain.PurchaseOrder, error) {
			return nil, domain.ErrDuplicateOrder
		},
	})

	body, _ := json.Marshal(dto.ReceiveOrderRequest{OrderID: "OC-100", Quantity: 1})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Receive(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestPurchaseHandler_Pay_Success(t *testing.T) {
	var captured usecase.DistributorPaymentInput
	handler := NewPurchaseHandler(&purchaseServiceStub{
		payFn: func(ctx context.Context, input usecase.DistributorPaymentInput) (*domain.PurchaseOrder, error) {
			captured = input
			return &domain.PurchaseOrder{
				ID:         input.OrderID,
				Quantity:   100,
				UnitCost:   decimal.NewFromInt(50),
				AmountPaid: input.Amount,
				Status:     domain.OrderStatusOpen,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.DistributorPaymentRequest{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(3000),
	})

	req := httptest.NewRequest(http.MethodPost, "/orders/OC-100/payments", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "OC-100")
	rec := httptest.NewRecorder()

	handler.Pay(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.OrderID != "OC-100" || captured.AccountID != "acc-1" {
		t.Fatalf("expected payment input to carry route ID, got %+v", captured)
	}
}

func TestPurchaseHandler_Pay_Settled(t *testing.T) {
	handler := NewPurchaseHandler(&purchaseServiceStub{
		payFn: func(ctx context.Context, input usecase.DistributorPaymentInput) (*domain.PurchaseOrder, error) {
			return nil, domain.ErrOrderSettled
		},
	})

	body, _ := json.Marshal(dto.DistributorPaymentRequest{AccountID: "acc-1", Amount: decimal.NewFromInt(1)})
	req := httptest.NewRequest(http.MethodPost, "/orders/OC-100/payments", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "OC-100")
	rec := httptest.NewRecorder()

	handler.Pay(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestPurchaseHandler_Get_NotFound(t *testing.T) {
	handler := NewPurchaseHandler(&purchaseServiceStub{
		getOrderFn: func(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
			return nil, domain.ErrOrderNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/OC-404", nil)
	req = setChiURLParam(req, "id", "OC-404")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPurchaseHandler_GetStock(t *testing.T) {
	handler := NewPurchaseHandler(&purchaseServiceStub{
		getStockFn: func(ctx context.Context, productID string) (*domain.StockLevel, error) {
			return &domain.StockLevel{ProductID: productID, Quantity: 60}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/stock/prod-1", nil)
	req = setChiURLParam(req, "id", "prod-1")
	rec := httptest.NewRecorder()

	handler.GetStock(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.StockLevelResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Quantity != 60 {
		t.Fatalf("expected quantity 60, got %d", resp.Quantity)
	}
}
