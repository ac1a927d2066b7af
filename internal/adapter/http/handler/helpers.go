package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/flowdist/flowdistributor/internal/adapter/http/dto"
	"github.com/flowdist/flowdistributor/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrSaleNotFound),
		errors.Is(err, domain.ErrDistributorNotFound),
		errors.Is(err, domain.ErrClientNotFound),
		errors.Is(err, domain.ErrMovementNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateOrder),
		errors.Is(err, domain.ErrOrderSettled),
		errors.Is(err, domain.ErrMovementVoided),
		errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNegativeBalanceNotAllowed),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrSameCurrency),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidCost),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidMovementKind),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrNoCostBasis),
		errors.Is(err, domain.ErrPaymentExceedsDebt),
		errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
