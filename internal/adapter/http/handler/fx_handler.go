package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/adapter/http/dto"
	"github.com/flowdist/flowdistributor/internal/usecase"
)

// FXService defines the behavior needed by FXHandler.
type FXService interface {
	Convert(ctx context.Context, input usecase.ConvertInput) (*usecase.ConvertResult, error)
	Quote(ctx context.Context, from, to string, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error)
}

// FXHandler handles currency conversion HTTP requests.
type FXHandler struct {
	fxUC FXService
}

// NewFXHandler creates a new FXHandler.
func NewFXHandler(fxUC FXService) *FXHandler {
	return &FXHandler{fxUC: fxUC}
}

// Convert moves funds between accounts in different currencies.
func (h *FXHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req dto.ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.fxUC.Convert(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to convert", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ConvertFromResult(result))
}

// Quote previews a conversion without moving funds. Query parameters:
// from, to (currency codes) and amount.
func (h *FXHandler) Quote(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	amountStr := r.URL.Query().Get("amount")

	if from == "" || to == "" || amountStr == "" {
		writeError(w, http.StatusBadRequest, "missing from, to, or amount parameter", "")
		return
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	rate, converted, err := h.fxUC.Quote(r.Context(), from, to, amount)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to quote", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"from":      from,
		"to":        to,
		"amount":    amount,
		"rate":      rate,
		"converted": converted,
	})
}
