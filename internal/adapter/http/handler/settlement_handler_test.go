package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/adapter/http/dto"
	"github.com/wanderlog/tripledger/internal/domain"
	"github.com/wanderlog/tripledger/internal/usecase"
)

type settlementServiceStub struct {
	planFn   func(ctx context.Context, tripID string) ([]domain.Transfer, error)
	recordFn func(ctx context.Context, input usecase.RecordSettlementInput) (*domain.Settlement, error)
	getFn    func(ctx context.Context, id string) (*domain.Settlement, error)
	listFn   func(ctx context.Context, tripID string, limit, offset int) ([]*domain.Settlement, error)
}

func (s *settlementServiceStub) PlanSettlement(ctx context.Context, tripID string) ([]domain.Transfer, error) {
	return s.planFn(ctx, tripID)
}

func (s *settlementServiceStub) RecordSettlement(ctx context.Context, input usecase.RecordSettlementInput) (*domain.Settlement, error) {
	return s.recordFn(ctx, input)
}

func (s *settlementServiceStub) GetSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return s.getFn(ctx, id)
}

func (s *settlementServiceStub) ListSettlements(ctx context.Context, tripID string, limit, offset int) ([]*domain.Settlement, error) {
	return s.listFn(ctx, tripID, limit, offset)
}

func TestSettlementHandler_Plan(t *testing.T) {
	handler := NewSettlementHandler(&settlementServiceStub{
		planFn: func(ctx context.Context, tripID string) ([]domain.Transfer, error) {
			if tripID != "trip-1" {
				t.Fatalf("expected trip-1, got %s", tripID)
			}
			return []domain.Transfer{
				{FromUserID: "bob", ToUserID: "alice", Amount: usd("30.00")},
				{FromUserID: "carol", ToUserID: "alice", Amount: usd("20.00")},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/trips/trip-1/settlements/plan", nil)
	req = setChiURLParam(req, "tripID", "trip-1")
	rec := httptest.NewRecorder()

	handler.Plan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []*dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].FromUserID != "bob" || resp[0].ToUserID != "alice" {
		t.Fatalf("expected plan transfers, got %+v", resp)
	}
}

func TestSettlementHandler_Plan_EmptyWhenSettled(t *testing.T) {
	handler := NewSettlementHandler(&settlementServiceStub{
		planFn: func(ctx context.Context, tripID string) ([]domain.Transfer, error) {
			return []domain.Transfer{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/trips/trip-1/settlements/plan", nil)
	req = setChiURLParam(req, "tripID", "trip-1")
	rec := httptest.NewRecorder()

	handler.Plan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func TestSettlementHandler_Record_Success(t *testing.T) {
	var captured usecase.RecordSettlementInput
	handler := NewSettlementHandler(&settlementServiceStub{
		recordFn: func(ctx context.Context, input usecase.RecordSettlementInput) (*domain.Settlement, error) {
			captured = input
			return &domain.Settlement{
				ID:         "set-1",
				TripID:     input.TripID,
				FromUserID: input.FromUserID,
				ToUserID:   input.ToUserID,
				Amount:     usd("30.00"),
				BaseAmount: usd("30.00"),
				Status:     domain.SettlementStatusCompleted,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.RecordSettlementRequest{
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     decimal.RequireFromString("30.00"),
		Currency:   "USD",
		Method:     "cash",
	})

	req := httptest.NewRequest(http.MethodPost, "/trips/trip-1/settlements", bytes.NewReader(body))
	req = setChiURLParam(req, "tripID", "trip-1")
	rec := httptest.NewRecorder()

	handler.Record(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.TripID != "trip-1" || captured.FromUserID != "bob" || captured.Method != "cash" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
}

func TestSettlementHandler_Record_SameUser(t *testing.T) {
	handler := NewSettlementHandler(&settlementServiceStub{
		recordFn: func(ctx context.Context, input usecase.RecordSettlementInput) (*domain.Settlement, error) {
			return nil, domain.ErrSameUser
		},
	})

	body, _ := json.Marshal(dto.RecordSettlementRequest{
		FromUserID: "alice",
		ToUserID:   "alice",
		Amount:     decimal.RequireFromString("30.00"),
		Currency:   "USD",
	})

	req := httptest.NewRequest(http.MethodPost, "/trips/trip-1/settlements", bytes.NewReader(body))
	req = setChiURLParam(req, "tripID", "trip-1")
	rec := httptest.NewRecorder()

	handler.Record(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
