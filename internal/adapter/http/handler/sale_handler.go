package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/adapter/http/dto"
	"github.com/flowdist/flowdistributor/internal/domain"
	"github.com/flowdist/flowdistributor/internal/usecase"
)

// SaleService defines the behavior needed by SaleHandler.
type SaleService interface {
	RecordSale(ctx context.Context, input usecase.RecordSaleInput) (*domain.Sale, error)
	ApplyClientPayment(ctx context.Context, input usecase.ClientPaymentInput) (*domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	ListSales(ctx context.Context, limit, offset int) ([]*domain.Sale, error)
	ListSalesByClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.Sale, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	ListClients(ctx context.Context, limit, offset int) ([]*domain.Client, error)
	QuoteSale(ctx context.Context, productID string, quantity int64, unitPrice, freightPerUnit decimal.Decimal) (*usecase.SaleQuote, error)
}

// SaleHandler handles sale-related HTTP requests.
type SaleHandler struct {
	saleUC SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(saleUC SaleService) *SaleHandler {
	return &SaleHandler{saleUC: saleUC}
}

// Record records a new sale.
func (h *SaleHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	sale, err := h.saleUC.RecordSale(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record sale", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SaleFromDomain(sale))
}

// Get retrieves a sale by ID.
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing sale ID", "")
		return
	}

	sale, err := h.saleUC.GetSale(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get sale", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SaleFromDomain(sale))
}

// List lists sales.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	sales, err := h.saleUC.ListSales(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sales", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SalesFromDomain(sales))
}

// Pay applies a client abono against a sale.
func (h *SaleHandler) Pay(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "id")
	if saleID == "" {
		writeError(w, http.StatusBadRequest, "missing sale ID", "")
		return
	}

	var req dto.ClientPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	sale, err := h.saleUC.ApplyClientPayment(r.Context(), req.ToUseCaseInput(saleID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to apply payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SaleFromDomain(sale))
}

// Quote previews the posting split of a prospective sale without touching
// stock or the ledger.
func (h *SaleHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req dto.QuoteSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	quote, err := h.saleUC.QuoteSale(r.Context(), req.ProductID, req.Quantity, req.UnitPrice, req.FreightPerUnit)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to quote sale", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SaleQuoteFromUseCase(quote))
}

// GetClient retrieves a client.
func (h *SaleHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing client ID", "")
		return
	}

	client, err := h.saleUC.GetClient(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get client", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientFromDomain(client))
}

// ListClients lists clients.
func (h *SaleHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	clients, err := h.saleUC.ListClients(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list clients", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ClientsFromDomain(clients))
}

// ListByClient lists sales belonging to one client.
func (h *SaleHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "missing client ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	sales, err := h.saleUC.ListSalesByClient(r.Context(), clientID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sales", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SalesFromDomain(sales))
}
