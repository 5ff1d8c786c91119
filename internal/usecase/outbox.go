package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
)

// newOutboxEvent builds an event row for the transaction that performed
// the mutation. Event IDs are random UUIDs so downstream consumers can
// de-duplicate at-least-once delivery.
func newOutboxEvent(tripID, aggregateType, aggregateID, eventType string, payload map[string]any, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            uuid.NewString(),
		TripID:        tripID,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}

func expensePayload(e *domain.Expense) map[string]any {
	return map[string]any{
		"expense_id":  e.ID,
		"trip_id":     e.TripID,
		"payer_id":    e.PayerID,
		"base_amount": e.BaseAmount.Amount.String(),
		"currency":    e.BaseAmount.Currency,
		"category":    e.Category,
	}
}

func settlementPayload(s *domain.Settlement) map[string]any {
	return map[string]any{
		"settlement_id": s.ID,
		"trip_id":       s.TripID,
		"from_user_id":  s.FromUserID,
		"to_user_id":    s.ToUserID,
		"base_amount":   s.BaseAmount.Amount.String(),
		"currency":      s.BaseAmount.Currency,
	}
}

// budgetChange pairs a budget row with the increment the current
// transaction actually applied to it. A category move applies different
// increments to the category and trip-wide rows, so each row carries
// its own delta.
type budgetChange struct {
	budget *domain.Budget
	delta  decimal.Decimal
}

// uniformChanges tags every touched budget with the same increment.
func uniformChanges(budgets []*domain.Budget, delta decimal.Decimal) []budgetChange {
	changes := make([]budgetChange, 0, len(budgets))
	for _, b := range budgets {
		changes = append(changes, budgetChange{budget: b, delta: delta})
	}

	return changes
}

// emitBudgetAlerts writes a budget_alert event for every budget its
// increment pushed across a threshold. Reversals never alert.
func (uc *LedgerUseCase) emitBudgetAlerts(ctx context.Context, tx Transaction, changes []budgetChange, now time.Time) error {
	for _, c := range changes {
		if !c.delta.IsPositive() {
			continue
		}

		b := c.budget
		prior := *b
		prior.Spent = domain.Money{Amount: b.Spent.Amount.Sub(c.delta), Currency: b.Spent.Currency}

		level := b.Evaluate()
		if level == domain.BudgetLevelOK || level == prior.Evaluate() {
			continue
		}

		category := ""
		if b.Category != nil {
			category = *b.Category
		}

		event := newOutboxEvent(b.TripID, domain.AggregateTypeBudget, b.ID, domain.EventTypeBudgetAlert, map[string]any{
			"budget_id": b.ID,
			"trip_id":   b.TripID,
			"category":  category,
			"level":     string(level),
			"spent":     b.Spent.Amount.String(),
			"total":     b.Total.Amount.String(),
		}, now)

		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}
	}

	return nil
}
