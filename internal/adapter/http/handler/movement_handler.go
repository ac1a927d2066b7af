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

// MovementService defines the behavior needed by MovementHandler.
type MovementService interface {
	RecordEntry(ctx context.Context, input usecase.RecordEntryInput) (*domain.Movement, error)
	VoidMovement(ctx context.Context, movementID, reason string) (*domain.Movement, error)
	GetMovement(ctx context.Context, id string) (*domain.Movement, error)
	ListMovements(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error)
}

// MovementHandler handles movement-related HTTP requests.
type MovementHandler struct {
	movementUC MovementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementUC MovementService) *MovementHandler {
	return &MovementHandler{movementUC: movementUC}
}

// Record appends an ad-hoc income or expense movement.
func (h *MovementHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.movementUC.RecordEntry(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record movement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// Get retrieves a movement by ID.
func (h *MovementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing movement ID", "")
		return
	}

	movement, err := h.movementUC.GetMovement(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get movement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// Void appends a compensating movement for an income or expense entry.
func (h *MovementHandler) Void(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing movement ID", "")
		return
	}

	var req dto.VoidMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	compensating, err := h.movementUC.VoidMovement(r.Context(), id, req.Reason)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to void movement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(compensating))
}

// ListByAccount lists movements for an account, newest first.
func (h *MovementHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	movements, err := h.movementUC.ListMovements(r.Context(), accountID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list movements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementsFromDomain(movements))
}
