package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wanderlog/tripledger/internal/adapter/http/dto"
	"github.com/wanderlog/tripledger/internal/domain"
	"github.com/wanderlog/tripledger/internal/usecase"
)

// BudgetService defines the behavior needed by BudgetHandler.
type BudgetService interface {
	SetBudget(ctx context.Context, input usecase.SetBudgetInput) (*domain.Budget, error)
	GetBudget(ctx context.Context, tripID string, category *string) (*domain.Budget, error)
	TripStatus(ctx context.Context, tripID string) ([]usecase.BudgetStatus, error)
}

// BudgetHandler handles budget-related HTTP requests.
type BudgetHandler struct {
	budgetUC BudgetService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetUC BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetUC: budgetUC}
}

// Set creates or replaces a trip-wide or per-category budget.
func (h *BudgetHandler) Set(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	var req dto.SetBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	budget, err := h.budgetUC.SetBudget(r.Context(), req.ToUseCaseInput(tripID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to set budget", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetFromDomain(budget))
}

// Get retrieves one budget. A category query parameter selects a
// per-category budget; without it the trip-wide budget is returned.
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	var category *string
	if c := r.URL.Query().Get("category"); c != "" {
		category = &c
	}

	budget, err := h.budgetUC.GetBudget(r.Context(), tripID, category)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get budget", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetFromDomain(budget))
}

// Status lists every budget of the trip with its alert level.
func (h *BudgetHandler) Status(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	statuses, err := h.budgetUC.TripStatus(r.Context(), tripID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get budget status", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetStatusesFromUseCase(statuses))
}
