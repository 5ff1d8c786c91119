package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
)

// BudgetUseCase manages spending ceilings. The spent amount itself is
// only ever mutated by the ledger as a side effect of expense
// postings; this use case owns configuration and evaluation.
type BudgetUseCase struct {
	budgetRepo BudgetRepository
	idGen      IDGenerator
}

// NewBudgetUseCase creates a new BudgetUseCase.
func NewBudgetUseCase(budgetRepo BudgetRepository, idGen IDGenerator) *BudgetUseCase {
	return &BudgetUseCase{budgetRepo: budgetRepo, idGen: idGen}
}

// SetBudgetInput represents input for creating or replacing a budget.
type SetBudgetInput struct {
	TripID   string
	Category *string
	Total    decimal.Decimal
	Currency string
	Warning  decimal.Decimal
	Critical decimal.Decimal
}

// SetBudget upserts the budget keyed by (trip, category). An upsert
// replaces ceiling and thresholds but never resets the accumulated
// spent amount.
func (uc *BudgetUseCase) SetBudget(ctx context.Context, input SetBudgetInput) (*domain.Budget, error) {
	total, err := domain.NewMoney(input.Total, input.Currency)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	budget := &domain.Budget{
		ID:        uc.idGen.Generate(),
		TripID:    input.TripID,
		Category:  input.Category,
		Total:     total.Truncate(),
		Spent:     domain.Money{Amount: decimal.Zero, Currency: total.Currency},
		Warning:   input.Warning,
		Critical:  input.Critical,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := budget.Validate(); err != nil {
		return nil, err
	}

	if err := uc.budgetRepo.Upsert(ctx, budget); err != nil {
		return nil, err
	}

	return uc.budgetRepo.Get(ctx, input.TripID, input.Category)
}

// BudgetStatus pairs a budget with its current alert level.
type BudgetStatus struct {
	Budget *domain.Budget
	Level  domain.BudgetLevel
}

// TripStatus returns every budget of the trip with its evaluation.
func (uc *BudgetUseCase) TripStatus(ctx context.Context, tripID string) ([]BudgetStatus, error) {
	budgets, err := uc.budgetRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		statuses = append(statuses, BudgetStatus{Budget: b, Level: b.Evaluate()})
	}

	return statuses, nil
}

// GetBudget returns one budget by its (trip, category) key.
func (uc *BudgetUseCase) GetBudget(ctx context.Context, tripID string, category *string) (*domain.Budget, error) {
	return uc.budgetRepo.Get(ctx, tripID, category)
}
