package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
)

// ExpenseRepository defines data access for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Transaction, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Expense, error)
	Update(ctx context.Context, tx Transaction, expense *domain.Expense) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByTrip(ctx context.Context, tripID string, filter ExpenseFilter) ([]*domain.Expense, error)
}

// ExpenseFilter narrows trip expense listings.
type ExpenseFilter struct {
	Category string
	Status   domain.ExpenseStatus
	Limit    int
	Offset   int
}

// SplitRepository defines data access for expense splits.
type SplitRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, splits []*domain.ExpenseSplit) error
	DeleteByExpense(ctx context.Context, tx Transaction, expenseID string) error
	GetByExpense(ctx context.Context, expenseID string) ([]*domain.ExpenseSplit, error)
	GetByID(ctx context.Context, id string) (*domain.ExpenseSplit, error)
	UpdateStatus(ctx context.Context, id string, status domain.SplitStatus, updatedAt time.Time) error
}

// BudgetRepository defines data access for budgets.
type BudgetRepository interface {
	Upsert(ctx context.Context, budget *domain.Budget) error
	Get(ctx context.Context, tripID string, category *string) (*domain.Budget, error)
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Budget, error)
	// ApplySpend atomically adds delta to the spent amount of the matching
	// category budget and the trip-wide budget, each as a single in-place
	// increment. Budgets that do not exist are skipped, never created.
	// It returns the post-increment state of every budget it touched.
	ApplySpend(ctx context.Context, tx Transaction, tripID string, category *string, delta decimal.Decimal) ([]*domain.Budget, error)
}

// SettlementRepository defines data access for settlements.
type SettlementRepository interface {
	Create(ctx context.Context, tx Transaction, settlement *domain.Settlement) error
	GetByID(ctx context.Context, id string) (*domain.Settlement, error)
	ListByTrip(ctx context.Context, tripID string, limit, offset int) ([]*domain.Settlement, error)
}

// TripTotals are the per-user base-currency aggregates a balance is
// derived from: amounts paid as payer on active expenses, amounts owed
// through splits of active expenses, and completed settlement flows.
type TripTotals struct {
	Paid               map[string]decimal.Decimal
	Owed               map[string]decimal.Decimal
	SettlementPaid     map[string]decimal.Decimal
	SettlementReceived map[string]decimal.Decimal
}

// BalanceRepository computes ledger aggregates for a trip.
type BalanceRepository interface {
	TripTotals(ctx context.Context, tripID string) (*TripTotals, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Retrier re-runs an operation after transient store failures such as
// serialization or deadlock aborts. The operation must be safe to
// repeat from the top, reads included.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// TripDirectory is the external membership collaborator. Identity and
// access control live outside this service.
type TripDirectory interface {
	IsMember(ctx context.Context, tripID, userID string) (bool, error)
	ListMembers(ctx context.Context, tripID string) ([]string, error)
	BaseCurrency(ctx context.Context, tripID string) (string, error)
}

// CurrencyConverter supplies the exchange rate frozen at expense
// creation time. Convert returns the converted amount and the rate used.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error)
}
