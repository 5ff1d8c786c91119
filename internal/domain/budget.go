package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetLevel is the alert state of a budget relative to its thresholds.
type BudgetLevel string

const (
	BudgetLevelOK       BudgetLevel = "ok"
	BudgetLevelWarning  BudgetLevel = "warning"
	BudgetLevelCritical BudgetLevel = "critical"
)

// Budget is a spending ceiling for a trip, either trip-wide
// (Category == nil) or scoped to a single category. A trip has at most
// one budget per category value, including the nil trip-wide one.
type Budget struct {
	ID        string
	TripID    string
	Category  *string
	Total     Money
	Spent     Money
	Warning   decimal.Decimal
	Critical  decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks ceiling and threshold invariants before any write.
func (b *Budget) Validate() error {
	if !b.Total.IsPositive() {
		return ErrInvalidBudget
	}

	if b.Warning.IsNegative() || b.Critical.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidThresholds
	}

	if b.Warning.GreaterThan(b.Critical) {
		return ErrInvalidThresholds
	}

	return nil
}

// Evaluate compares spent/total against the thresholds. Crossing a
// threshold means meeting or exceeding it.
func (b *Budget) Evaluate() BudgetLevel {
	if !b.Total.IsPositive() {
		return BudgetLevelOK
	}

	ratio := b.Spent.Amount.Div(b.Total.Amount)

	switch {
	case ratio.GreaterThanOrEqual(b.Critical):
		return BudgetLevelCritical
	case ratio.GreaterThanOrEqual(b.Warning):
		return BudgetLevelWarning
	default:
		return BudgetLevelOK
	}
}

// TripWide reports whether the budget is the trip-total ceiling.
func (b *Budget) TripWide() bool {
	return b.Category == nil
}
