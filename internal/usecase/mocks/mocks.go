package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
	"github.com/wanderlog/tripledger/internal/usecase"
)

// MockExpenseRepository is a mock implementation of ExpenseRepository.
type MockExpenseRepository struct {
	mu       sync.RWMutex
	expenses map[string]*domain.Expense

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Expense, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Expense, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id string) error
	ListByTripFunc       func(ctx context.Context, tripID string, filter usecase.ExpenseFilter) ([]*domain.Expense, error)
}

func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		expenses: make(map[string]*domain.Expense),
	}
}

func (m *MockExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, expense)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[expense.ID] = expense
	return nil
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.expenses[id]; ok {
		return e, nil
	}
	return nil, domain.ErrExpenseNotFound
}

func (m *MockExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Expense, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockExpenseRepository) Update(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, expense)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[expense.ID]; !ok {
		return domain.ErrExpenseNotFound
	}
	m.expenses[expense.ID] = expense
	return nil
}

func (m *MockExpenseRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return domain.ErrExpenseNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *MockExpenseRepository) ListByTrip(ctx context.Context, tripID string, filter usecase.ExpenseFilter) ([]*domain.Expense, error) {
	if m.ListByTripFunc != nil {
		return m.ListByTripFunc(ctx, tripID, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Expense
	for _, e := range m.expenses {
		if e.TripID != tripID {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// MockSplitRepository is a mock implementation of SplitRepository.
type MockSplitRepository struct {
	mu     sync.RWMutex
	splits map[string]*domain.ExpenseSplit

	CreateBatchFunc     func(ctx context.Context, tx usecase.Transaction, splits []*domain.ExpenseSplit) error
	DeleteByExpenseFunc func(ctx context.Context, tx usecase.Transaction, expenseID string) error
	GetByExpenseFunc    func(ctx context.Context, expenseID string) ([]*domain.ExpenseSplit, error)
	GetByIDFunc         func(ctx context.Context, id string) (*domain.ExpenseSplit, error)
	UpdateStatusFunc    func(ctx context.Context, id string, status domain.SplitStatus, updatedAt time.Time) error
}

func NewMockSplitRepository() *MockSplitRepository {
	return &MockSplitRepository{
		splits: make(map[string]*domain.ExpenseSplit),
	}
}

func (m *MockSplitRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, splits []*domain.ExpenseSplit) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, splits)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range splits {
		m.splits[s.ID] = s
	}
	return nil
}

func (m *MockSplitRepository) DeleteByExpense(ctx context.Context, tx usecase.Transaction, expenseID string) error {
	if m.DeleteByExpenseFunc != nil {
		return m.DeleteByExpenseFunc(ctx, tx, expenseID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.splits {
		if s.ExpenseID == expenseID {
			delete(m.splits, id)
		}
	}
	return nil
}

func (m *MockSplitRepository) GetByExpense(ctx context.Context, expenseID string) ([]*domain.ExpenseSplit, error) {
	if m.GetByExpenseFunc != nil {
		return m.GetByExpenseFunc(ctx, expenseID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ExpenseSplit
	for _, s := range m.splits {
		if s.ExpenseID == expenseID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MockSplitRepository) GetByID(ctx context.Context, id string) (*domain.ExpenseSplit, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.splits[id]; ok {
		return s, nil
	}
	return nil, domain.ErrExpenseNotFound
}

func (m *MockSplitRepository) UpdateStatus(ctx context.Context, id string, status domain.SplitStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.splits[id]
	if !ok {
		return domain.ErrExpenseNotFound
	}
	s.Status = status
	s.UpdatedAt = updatedAt
	return nil
}

// MockBudgetRepository is a mock implementation of BudgetRepository.
// Budgets are keyed by trip ID plus category to mirror the unique
// constraint in postgres.
type MockBudgetRepository struct {
	mu      sync.RWMutex
	budgets map[string]*domain.Budget

	UpsertFunc     func(ctx context.Context, budget *domain.Budget) error
	GetFunc        func(ctx context.Context, tripID string, category *string) (*domain.Budget, error)
	ListByTripFunc func(ctx context.Context, tripID string) ([]*domain.Budget, error)
	ApplySpendFunc func(ctx context.Context, tx usecase.Transaction, tripID string, category *string, delta decimal.Decimal) ([]*domain.Budget, error)
}

func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		budgets: make(map[string]*domain.Budget),
	}
}

func budgetKey(tripID string, category *string) string {
	if category == nil {
		return tripID + "/"
	}
	return tripID + "/" + *category
}

func (m *MockBudgetRepository) Upsert(ctx context.Context, budget *domain.Budget) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, budget)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := budgetKey(budget.TripID, budget.Category)
	if existing, ok := m.budgets[key]; ok {
		budget.Spent = existing.Spent
	}
	m.budgets[key] = budget
	return nil
}

func (m *MockBudgetRepository) Get(ctx context.Context, tripID string, category *string) (*domain.Budget, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, tripID, category)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.budgets[budgetKey(tripID, category)]; ok {
		return b, nil
	}
	return nil, domain.ErrBudgetNotFound
}

func (m *MockBudgetRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Budget, error) {
	if m.ListByTripFunc != nil {
		return m.ListByTripFunc(ctx, tripID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Budget
	for _, b := range m.budgets {
		if b.TripID == tripID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockBudgetRepository) ApplySpend(ctx context.Context, tx usecase.Transaction, tripID string, category *string, delta decimal.Decimal) ([]*domain.Budget, error) {
	if m.ApplySpendFunc != nil {
		return m.ApplySpendFunc(ctx, tx, tripID, category, delta)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var touched []*domain.Budget
	keys := []string{budgetKey(tripID, nil)}
	if category != nil {
		keys = append(keys, budgetKey(tripID, category))
	}
	for _, key := range keys {
		b, ok := m.budgets[key]
		if !ok {
			continue
		}
		b.Spent.Amount = b.Spent.Amount.Add(delta)
		touched = append(touched, b)
	}
	return touched, nil
}

// MockSettlementRepository is a mock implementation of SettlementRepository.
type MockSettlementRepository struct {
	mu          sync.RWMutex
	settlements map[string]*domain.Settlement

	CreateFunc     func(ctx context.Context, tx usecase.Transaction, settlement *domain.Settlement) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.Settlement, error)
	ListByTripFunc func(ctx context.Context, tripID string, limit, offset int) ([]*domain.Settlement, error)
}

func NewMockSettlementRepository() *MockSettlementRepository {
	return &MockSettlementRepository{
		settlements: make(map[string]*domain.Settlement),
	}
}

func (m *MockSettlementRepository) Create(ctx context.Context, tx usecase.Transaction, settlement *domain.Settlement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, settlement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlements[settlement.ID] = settlement
	return nil
}

func (m *MockSettlementRepository) GetByID(ctx context.Context, id string) (*domain.Settlement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.settlements[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSettlementNotFound
}

func (m *MockSettlementRepository) ListByTrip(ctx context.Context, tripID string, limit, offset int) ([]*domain.Settlement, error) {
	if m.ListByTripFunc != nil {
		return m.ListByTripFunc(ctx, tripID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Settlement
	for _, s := range m.settlements {
		if s.TripID == tripID {
			out = append(out, s)
		}
	}
	return out, nil
}

// MockBalanceRepository is a mock implementation of BalanceRepository.
type MockBalanceRepository struct {
	TripTotalsFunc func(ctx context.Context, tripID string) (*usecase.TripTotals, error)
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{}
}

func (m *MockBalanceRepository) TripTotals(ctx context.Context, tripID string) (*usecase.TripTotals, error) {
	if m.TripTotalsFunc != nil {
		return m.TripTotalsFunc(ctx, tripID)
	}
	return &usecase.TripTotals{
		Paid:               map[string]decimal.Decimal{},
		Owed:               map[string]decimal.Decimal{},
		SettlementPaid:     map[string]decimal.Decimal{},
		SettlementReceived: map[string]decimal.Decimal{},
	}, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns a copy of the recorded events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	LastTx *MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.LastTx = &MockTransaction{}
	return m.LastTx, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%03d", m.counter)
}

var errCacheMiss = errors.New("cache miss")

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu    sync.RWMutex
	store map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error

	Deleted []string
}

func NewMockCache() *MockCache {
	return &MockCache{
		store: make(map[string][]byte),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	m.Deleted = append(m.Deleted, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu    sync.Mutex
	store map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		store: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.store[key]; ok {
		return true, existing, nil
	}
	m.store[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = response
	return nil
}
