package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
	"github.com/wanderlog/tripledger/internal/usecase"
	"github.com/wanderlog/tripledger/internal/usecase/mocks"
)

func setBudgetInput() usecase.SetBudgetInput {
	return usecase.SetBudgetInput{
		TripID:   "trip-1",
		Total:    decimal.RequireFromString("1000.00"),
		Currency: "USD",
		Warning:  decimal.RequireFromString("0.8"),
		Critical: decimal.RequireFromString("0.95"),
	}
}

func TestBudgetUseCase_SetBudget(t *testing.T) {
	budgetRepo := mocks.NewMockBudgetRepository()
	uc := usecase.NewBudgetUseCase(budgetRepo, mocks.NewMockIDGenerator())

	budget, err := uc.SetBudget(context.Background(), setBudgetInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if budget.Category != nil {
		t.Errorf("expected trip-wide budget, got category %v", *budget.Category)
	}
	if !budget.Spent.Amount.IsZero() {
		t.Errorf("expected zero spent on a new budget, got %s", budget.Spent.Amount)
	}
}

func TestBudgetUseCase_SetBudget_UpsertKeepsSpent(t *testing.T) {
	budgetRepo := mocks.NewMockBudgetRepository()
	uc := usecase.NewBudgetUseCase(budgetRepo, mocks.NewMockIDGenerator())

	if _, err := uc.SetBudget(context.Background(), setBudgetInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The ledger has since accumulated spend.
	if _, err := budgetRepo.ApplySpend(context.Background(), nil, "trip-1", nil, decimal.RequireFromString("400.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Raising the ceiling must not reset the accumulated spend.
	input := setBudgetInput()
	input.Total = decimal.RequireFromString("2000.00")

	budget, err := uc.SetBudget(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !budget.Total.Amount.Equal(decimal.RequireFromString("2000.00")) {
		t.Errorf("expected total 2000.00, got %s", budget.Total.Amount)
	}
	if !budget.Spent.Amount.Equal(decimal.RequireFromString("400.00")) {
		t.Errorf("expected spent 400.00 preserved across upsert, got %s", budget.Spent.Amount)
	}
}

func TestBudgetUseCase_SetBudget_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*usecase.SetBudgetInput)
		wantErr error
	}{
		{
			name:    "zero total",
			mutate:  func(in *usecase.SetBudgetInput) { in.Total = decimal.Zero },
			wantErr: domain.ErrInvalidBudget,
		},
		{
			name:    "bad currency",
			mutate:  func(in *usecase.SetBudgetInput) { in.Currency = "US" },
			wantErr: domain.ErrInvalidCurrency,
		},
		{
			name: "warning above critical",
			mutate: func(in *usecase.SetBudgetInput) {
				in.Warning = decimal.RequireFromString("0.96")
			},
			wantErr: domain.ErrInvalidThresholds,
		},
		{
			name: "threshold above one",
			mutate: func(in *usecase.SetBudgetInput) {
				in.Critical = decimal.RequireFromString("1.5")
			},
			wantErr: domain.ErrInvalidThresholds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budgetRepo := mocks.NewMockBudgetRepository()
			uc := usecase.NewBudgetUseCase(budgetRepo, mocks.NewMockIDGenerator())

			input := setBudgetInput()
			tt.mutate(&input)

			_, err := uc.SetBudget(context.Background(), input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBudgetUseCase_TripStatus(t *testing.T) {
	budgetRepo := mocks.NewMockBudgetRepository()
	uc := usecase.NewBudgetUseCase(budgetRepo, mocks.NewMockIDGenerator())

	food := "food"
	if _, err := uc.SetBudget(context.Background(), setBudgetInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := setBudgetInput()
	input.Category = &food
	input.Total = decimal.RequireFromString("100.00")
	if _, err := uc.SetBudget(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 96 of 100 on food crosses critical; 96 of 1000 trip-wide stays ok.
	if _, err := budgetRepo.ApplySpend(context.Background(), nil, "trip-1", &food, decimal.RequireFromString("96.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statuses, err := uc.TripStatus(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 budgets, got %d", len(statuses))
	}

	levels := map[string]domain.BudgetLevel{}
	for _, s := range statuses {
		key := ""
		if s.Budget.Category != nil {
			key = *s.Budget.Category
		}
		levels[key] = s.Level
	}

	if levels["food"] != domain.BudgetLevelCritical {
		t.Errorf("expected food critical, got %s", levels["food"])
	}
	if levels[""] != domain.BudgetLevelOK {
		t.Errorf("expected trip-wide ok, got %s", levels[""])
	}
}
