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

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	PlanSettlement(ctx context.Context, tripID string) ([]domain.Transfer, error)
	RecordSettlement(ctx context.Context, input usecase.RecordSettlementInput) (*domain.Settlement, error)
	GetSettlement(ctx context.Context, id string) (*domain.Settlement, error)
	ListSettlements(ctx context.Context, tripID string, limit, offset int) ([]*domain.Settlement, error)
}

// SettlementHandler handles settlement-related HTTP requests.
type SettlementHandler struct {
	settlementUC SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC}
}

// Plan returns a minimal transfer plan that settles the trip.
func (h *SettlementHandler) Plan(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	transfers, err := h.settlementUC.PlanSettlement(r.Context(), tripID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to plan settlement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}

// Record records a completed peer-to-peer payment.
func (h *SettlementHandler) Record(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	var req dto.RecordSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	settlement, err := h.settlementUC.RecordSettlement(r.Context(), req.ToUseCaseInput(tripID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record settlement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SettlementFromDomain(settlement))
}

// Get retrieves a settlement by ID.
func (h *SettlementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing settlement ID", "")
		return
	}

	settlement, err := h.settlementUC.GetSettlement(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get settlement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(settlement))
}

// List lists a trip's recorded settlements.
func (h *SettlementHandler) List(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	settlements, err := h.settlementUC.ListSettlements(r.Context(), tripID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list settlements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementsFromDomain(settlements))
}
