package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
	"github.com/wanderlog/tripledger/internal/usecase"
)

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID           string              `json:"id"`
	TripID       string              `json:"trip_id"`
	CreatedBy    string              `json:"created_by"`
	PayerID      string              `json:"payer_id"`
	Title        string              `json:"title"`
	Amount       decimal.Decimal     `json:"amount"`
	Currency     string              `json:"currency"`
	BaseAmount   decimal.Decimal     `json:"base_amount"`
	BaseCurrency string              `json:"base_currency"`
	ExchangeRate decimal.Decimal     `json:"exchange_rate"`
	Category     string              `json:"category,omitempty"`
	Subcategory  string              `json:"subcategory,omitempty"`
	Tags         []string            `json:"tags,omitempty"`
	ExpenseDate  time.Time           `json:"expense_date"`
	Location     *string             `json:"location,omitempty"`
	Participants []string            `json:"participants"`
	SplitPolicy  string              `json:"split_policy"`
	SplitParams  *domain.SplitParams `json:"split_params,omitempty"`
	ReceiptRefs  []string            `json:"receipt_refs,omitempty"`
	Status       string              `json:"status"`
	Verified     bool                `json:"verified"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ExpenseFromDomain converts a domain expense to a response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	var splitParams *domain.SplitParams
	if !e.SplitParams.IsZero() {
		p := e.SplitParams
		splitParams = &p
	}

	return &ExpenseResponse{
		ID:           e.ID,
		TripID:       e.TripID,
		CreatedBy:    e.CreatedBy,
		PayerID:      e.PayerID,
		Title:        e.Title,
		Amount:       e.Amount.Amount,
		Currency:     e.Amount.Currency,
		BaseAmount:   e.BaseAmount.Amount,
		BaseCurrency: e.BaseAmount.Currency,
		ExchangeRate: e.ExchangeRate,
		Category:     e.Category,
		Subcategory:  e.Subcategory,
		Tags:         e.Tags,
		ExpenseDate:  e.ExpenseDate,
		Location:     e.Location,
		Participants: e.Participants,
		SplitPolicy:  string(e.SplitPolicy),
		SplitParams:  splitParams,
		ReceiptRefs:  e.ReceiptRefs,
		Status:       string(e.Status),
		Verified:     e.Verified,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.Expense) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// SplitResponse represents an expense split in API responses.
type SplitResponse struct {
	ID           string          `json:"id"`
	ExpenseID    string          `json:"expense_id"`
	UserID       string          `json:"user_id"`
	PayerID      string          `json:"payer_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	BaseAmount   decimal.Decimal `json:"base_amount"`
	BaseCurrency string          `json:"base_currency"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SplitFromDomain converts a domain split to a response.
func SplitFromDomain(s *domain.ExpenseSplit) *SplitResponse {
	return &SplitResponse{
		ID:           s.ID,
		ExpenseID:    s.ExpenseID,
		UserID:       s.UserID,
		PayerID:      s.PayerID,
		Amount:       s.Amount.Amount,
		Currency:     s.Amount.Currency,
		BaseAmount:   s.BaseAmount.Amount,
		BaseCurrency: s.BaseAmount.Currency,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// SplitsFromDomain converts domain splits to responses.
func SplitsFromDomain(splits []*domain.ExpenseSplit) []*SplitResponse {
	result := make([]*SplitResponse, len(splits))
	for i, s := range splits {
		result[i] = SplitFromDomain(s)
	}
	return result
}

// ExpenseDetailResponse is an expense together with its splits.
type ExpenseDetailResponse struct {
	Expense *ExpenseResponse `json:"expense"`
	Splits  []*SplitResponse `json:"splits"`
}

// BudgetResponse represents a budget with its alert level.
type BudgetResponse struct {
	ID        string          `json:"id"`
	TripID    string          `json:"trip_id"`
	Category  *string         `json:"category,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Currency  string          `json:"currency"`
	Warning   decimal.Decimal `json:"warning_threshold"`
	Critical  decimal.Decimal `json:"critical_threshold"`
	Level     string          `json:"level"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BudgetFromDomain converts a domain budget to a response.
func BudgetFromDomain(b *domain.Budget) *BudgetResponse {
	return &BudgetResponse{
		ID:        b.ID,
		TripID:    b.TripID,
		Category:  b.Category,
		Total:     b.Total.Amount,
		Spent:     b.Spent.Amount,
		Remaining: b.Total.Amount.Sub(b.Spent.Amount),
		Currency:  b.Total.Currency,
		Warning:   b.Warning,
		Critical:  b.Critical,
		Level:     string(b.Evaluate()),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// BudgetStatusesFromUseCase converts evaluated budgets to responses.
func BudgetStatusesFromUseCase(statuses []usecase.BudgetStatus) []*BudgetResponse {
	result := make([]*BudgetResponse, len(statuses))
	for i, s := range statuses {
		r := BudgetFromDomain(s.Budget)
		r.Level = string(s.Level)
		result[i] = r
	}
	return result
}

// BalanceResponse represents one member's net position.
type BalanceResponse struct {
	UserID     string          `json:"user_id"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
	NetBalance decimal.Decimal `json:"net_balance"`
	Currency   string          `json:"currency"`
}

// BalancesFromDomain converts domain balances to responses.
func BalancesFromDomain(balances []domain.UserBalance) []*BalanceResponse {
	result := make([]*BalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = &BalanceResponse{
			UserID:     b.UserID,
			TotalPaid:  b.TotalPaid.Amount,
			TotalOwed:  b.TotalOwed.Amount,
			NetBalance: b.NetBalance.Amount,
			Currency:   b.NetBalance.Currency,
		}
	}
	return result
}

// TransferResponse represents one planned payment in a settlement plan.
type TransferResponse struct {
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = &TransferResponse{
			FromUserID: t.FromUserID,
			ToUserID:   t.ToUserID,
			Amount:     t.Amount.Amount,
			Currency:   t.Amount.Currency,
		}
	}
	return result
}

// SettlementResponse represents a recorded settlement in API responses.
type SettlementResponse struct {
	ID           string          `json:"id"`
	TripID       string          `json:"trip_id"`
	FromUserID   string          `json:"from_user_id"`
	ToUserID     string          `json:"to_user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	BaseAmount   decimal.Decimal `json:"base_amount"`
	BaseCurrency string          `json:"base_currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Method       string          `json:"method,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Status       string          `json:"status"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SettlementFromDomain converts a domain settlement to a response.
func SettlementFromDomain(s *domain.Settlement) *SettlementResponse {
	return &SettlementResponse{
		ID:           s.ID,
		TripID:       s.TripID,
		FromUserID:   s.FromUserID,
		ToUserID:     s.ToUserID,
		Amount:       s.Amount.Amount,
		Currency:     s.Amount.Currency,
		BaseAmount:   s.BaseAmount.Amount,
		BaseCurrency: s.BaseAmount.Currency,
		ExchangeRate: s.ExchangeRate,
		Method:       s.Method,
		Reference:    s.Reference,
		Notes:        s.Notes,
		Status:       string(s.Status),
		CompletedAt:  s.CompletedAt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// SettlementsFromDomain converts domain settlements to responses.
func SettlementsFromDomain(settlements []*domain.Settlement) []*SettlementResponse {
	result := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		result[i] = SettlementFromDomain(s)
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
