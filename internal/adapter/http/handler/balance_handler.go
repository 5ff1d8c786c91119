package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wanderlog/tripledger/internal/adapter/http/dto"
	"github.com/wanderlog/tripledger/internal/domain"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	ComputeBalances(ctx context.Context, tripID string) ([]domain.UserBalance, error)
}

// BalanceHandler handles balance-related HTTP requests.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// List returns every member's net position in the trip's base currency.
func (h *BalanceHandler) List(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	balances, err := h.balanceUC.ComputeBalances(r.Context(), tripID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(balances))
}
