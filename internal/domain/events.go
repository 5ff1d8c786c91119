package domain

import "time"

// Event types emitted after successful ledger and settlement mutations.
const (
	EventTypeExpenseCreated     = "expense_created"
	EventTypeExpenseUpdated     = "expense_updated"
	EventTypeExpenseDeleted     = "expense_deleted"
	EventTypeSettlementRecorded = "settlement_recorded"
	EventTypeBudgetAlert        = "budget_alert"
)

// Aggregate types
const (
	AggregateTypeExpense    = "expense"
	AggregateTypeSettlement = "settlement"
	AggregateTypeBudget     = "budget"
)

// OutboxEvent is an event written in the same transaction as the
// mutation it describes. Delivery is at-least-once; consumers
// de-duplicate by event ID.
type OutboxEvent struct {
	ID            string
	TripID        string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ExpenseEvent payload for expense_created/updated/deleted.
type ExpenseEvent struct {
	ExpenseID  string `json:"expense_id"`
	TripID     string `json:"trip_id"`
	PayerID    string `json:"payer_id"`
	BaseAmount string `json:"base_amount"`
	Currency   string `json:"currency"`
	Category   string `json:"category,omitempty"`
}

// SettlementRecordedEvent payload
type SettlementRecordedEvent struct {
	SettlementID string `json:"settlement_id"`
	TripID       string `json:"trip_id"`
	FromUserID   string `json:"from_user_id"`
	ToUserID     string `json:"to_user_id"`
	BaseAmount   string `json:"base_amount"`
	Currency     string `json:"currency"`
}

// BudgetAlertEvent payload, emitted when a posting crosses a threshold.
type BudgetAlertEvent struct {
	BudgetID string `json:"budget_id"`
	TripID   string `json:"trip_id"`
	Category string `json:"category,omitempty"`
	Level    string `json:"level"`
	Spent    string `json:"spent"`
	Total    string `json:"total"`
}
