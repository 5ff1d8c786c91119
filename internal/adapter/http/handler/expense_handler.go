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

// ExpenseService defines the behavior needed by ExpenseHandler.
type ExpenseService interface {
	PostExpense(ctx context.Context, input usecase.PostExpenseInput) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, id string, patch usecase.UpdateExpenseInput) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	GetExpense(ctx context.Context, id string) (*domain.Expense, []*domain.ExpenseSplit, error)
	ListExpenses(ctx context.Context, tripID string, filter usecase.ExpenseFilter) ([]*domain.Expense, error)
	UpdateSplitStatus(ctx context.Context, splitID string, next domain.SplitStatus) (*domain.ExpenseSplit, error)
}

// ExpenseHandler handles expense-related HTTP requests.
type ExpenseHandler struct {
	ledgerUC ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(ledgerUC ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{ledgerUC: ledgerUC}
}

// Post records a new expense on a trip.
func (h *ExpenseHandler) Post(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	var req dto.PostExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, err := h.ledgerUC.PostExpense(r.Context(), req.ToUseCaseInput(tripID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post expense", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(expense))
}

// Get retrieves an expense with its splits.
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing expense ID", "")
		return
	}

	expense, splits, err := h.ledgerUC.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get expense", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseDetailResponse{
		Expense: dto.ExpenseFromDomain(expense),
		Splits:  dto.SplitsFromDomain(splits),
	})
}

// List lists a trip's expenses, optionally filtered by category and status.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	filter := usecase.ExpenseFilter{
		Category: r.URL.Query().Get("category"),
		Status:   domain.ExpenseStatus(r.URL.Query().Get("status")),
		Limit:    parseIntQuery(r, "limit", 50),
		Offset:   parseIntQuery(r, "offset", 0),
	}

	expenses, err := h.ledgerUC.ListExpenses(r.Context(), tripID, filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list expenses", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpensesFromDomain(expenses))
}

// Update applies a partial patch to an expense.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing expense ID", "")
		return
	}

	var req dto.UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, err := h.ledgerUC.UpdateExpense(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update expense", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// Delete removes an expense and reverses its budget effect.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing expense ID", "")
		return
	}

	if err := h.ledgerUC.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete expense", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateSplitStatus moves a split through its workflow.
func (h *ExpenseHandler) UpdateSplitStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing split ID", "")
		return
	}

	var req dto.UpdateSplitStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	split, err := h.ledgerUC.UpdateSplitStatus(r.Context(), id, domain.SplitStatus(req.Status))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update split status", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SplitFromDomain(split))
}
