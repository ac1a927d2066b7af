package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowdist/flowdistributor/internal/adapter/http/dto"
	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/usecase"
)

// PurchaseService defines the behavior needed by PurchaseHandler.
type PurchaseService interface {
	ReceiveOrder(ctx context.Context, input usecase.ReceiveOrderInput) (*domain.PurchaseOrder, error)
	ApplyDistributorPayment(ctx context.Context, input usecase.DistributorPaymentInput) (*domain.PurchaseOrder, error)
	GetOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	ListOrdersByDistributor(ctx context.Context, distributorID string, limit, offset int) ([]*domain.PurchaseOrder, error)
	GetDistributor(ctx context.Context, id string) (*domain.Distributor, error)
	ListDistributors(ctx context.Context, limit, offset int) ([]*domain.Distributor, error)
	GetStock(ctx context.Context, productID string) (*domain.StockLevel, error)
}

// PurchaseHandler handles purchase order HTTP requests.
type PurchaseHandler struct {
	purchaseUC PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(purchaseUC PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseUC: purchaseUC}
}

// Receive processes an incoming purchase order.
func (h *PurchaseHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req dto.ReceiveOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	order, err := h.purchaseUC.ReceiveOrder(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to receive order", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PurchaseOrderFromDomain(order))
}

// Get retrieves a purchase order by its OC number.
func (h *PurchaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing order ID", "")
		return
	}

	order, err := h.purchaseUC.GetOrder(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get order", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PurchaseOrderFromDomain(order))
}

// Pay applies an abono against a purchase order.
func (h *PurchaseHandler) Pay(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing order ID", "")
		return
	}

	var req dto.DistributorPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	order, err := h.purchaseUC.ApplyDistributorPayment(r.Context(), req.ToUseCaseInput(orderID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to apply payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PurchaseOrderFromDomain(order))
}

// ListByDistributor lists orders placed with one distributor.
func (h *PurchaseHandler) ListByDistributor(w http.ResponseWriter, r *http.Request) {
	distributorID := chi.URLParam(r, "id")
	if distributorID == "" {
		writeError(w, http.StatusBadRequest, "missing distributor ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	orders, err := h.purchaseUC.ListOrdersByDistributor(r.Context(), distributorID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list orders", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PurchaseOrdersFromDomain(orders))
}

// GetDistributor retrieves a distributor.
func (h *PurchaseHandler) GetDistributor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing distributor ID", "")
		return
	}

	distributor, err := h.purchaseUC.GetDistributor(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get distributor", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DistributorFromDomain(distributor))
}

// ListDistributors lists distributors.
func (h *PurchaseHandler) ListDistributors(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	distributors, err := h.purchaseUC.ListDistributors(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list distributors", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DistributorsFromDomain(distributors))
}

// GetStock reports the stock level for a product.
func (h *PurchaseHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "missing product ID", "")
		return
	}

	stock, err := h.purchaseUC.GetStock(r.Context(), productID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stock", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StockLevelFromDomain(stock))
}
