package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flowdist/flowdistributor/internal/adapter/http/dto"
	"github.com/flowdist/flowdistributor/internal/usecase"
)

// ReconciliationService defines the behavior needed by LedgerHandler.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID string, repair bool) (*usecase.ReconciliationResult, error)
	ReconcileAllAccounts(ctx context.Context, repair bool) ([]*usecase.ReconciliationResult, error)
	CheckLedgerConsistency(ctx context.Context) error
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// LedgerHandler handles reconciliation and ledger-wide operations.
type LedgerHandler struct {
	reconciliationUC ReconciliationService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reconciliationUC ReconciliationService) *LedgerHandler {
	return &LedgerHandler{reconciliationUC: reconciliationUC}
}

// ReconcileAccount recomputes one account's balance from its movement
// history. With ?repair=true a drifted cached balance is overwritten.
func (h *LedgerHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	repair, _ := strconv.ParseBool(r.URL.Query().Get("repair"))

	result, err := h.reconciliationUC.ReconcileAccount(r.Context(), accountID, repair)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reconcile account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}

// ReconcileAll sweeps every account.
func (h *LedgerHandler) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	repair, _ := strconv.ParseBool(r.URL.Query().Get("repair"))

	results, err := h.reconciliationUC.ReconcileAllAccounts(r.Context(), repair)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reconcile accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationsFromResults(results))
}

// CheckConsistency verifies that cached balances match the movement log in
// aggregate.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	if err := h.reconciliationUC.CheckLedgerConsistency(r.Context()); err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"status":     "inconsistent",
				"consistent": false,
				"message":    err.Error(),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "consistent",
		"consistent": true,
	})
}

// Report produces a full reconciliation report without repairing.
func (h *LedgerHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate report", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromDomain(report))
}
