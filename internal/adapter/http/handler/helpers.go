package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/wanderlog/tripledger/internal/adapter/http/dto"
	"github.com/wanderlog/tripledger/internal/domain"
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
	case errors.Is(err, domain.ErrExpenseNotFound),
		errors.Is(err, domain.ErrBudgetNotFound),
		errors.Is(err, domain.ErrSettlementNotFound),
		errors.Is(err, domain.ErrTripNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrInvalidParticipants),
		errors.Is(err, domain.ErrUnsupportedSplitPolicy),
		errors.Is(err, domain.ErrSplitMismatch),
		errors.Is(err, domain.ErrInvalidSplitParams),
		errors.Is(err, domain.ErrInvalidBudget),
		errors.Is(err, domain.ErrInvalidThresholds),
		errors.Is(err, domain.ErrNotTripMember),
		errors.Is(err, domain.ErrSameUser),
		errors.Is(err, domain.ErrInvalidExpenseStatus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidSplitStatus),
		errors.Is(err, domain.ErrExpenseNotActive):
		return http.StatusConflict
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
