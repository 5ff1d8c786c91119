package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitPolicy is the rule for dividing an expense among participants.
type SplitPolicy string

const (
	SplitPolicyEqual      SplitPolicy = "equal"
	SplitPolicyPercentage SplitPolicy = "percentage"
	SplitPolicyCustom     SplitPolicy = "custom"
	SplitPolicyShares     SplitPolicy = "shares"
	SplitPolicyNone       SplitPolicy = "none"
)

// Valid reports whether p is a known split policy.
func (p SplitPolicy) Valid() bool {
	switch p {
	case SplitPolicyEqual, SplitPolicyPercentage, SplitPolicyCustom, SplitPolicyShares, SplitPolicyNone:
		return true
	default:
		return false
	}
}

// ExpenseStatus is the lifecycle status of an expense.
type ExpenseStatus string

const (
	ExpenseStatusActive    ExpenseStatus = "active"
	ExpenseStatusCancelled ExpenseStatus = "cancelled"
	ExpenseStatusMerged    ExpenseStatus = "merged"
)

// Valid reports whether s is a known expense status.
func (s ExpenseStatus) Valid() bool {
	switch s {
	case ExpenseStatusActive, ExpenseStatusCancelled, ExpenseStatusMerged:
		return true
	default:
		return false
	}
}

// SplitStatus is the settlement status of a single expense split.
type SplitStatus string

const (
	SplitStatusPending      SplitStatus = "pending"
	SplitStatusAcknowledged SplitStatus = "acknowledged"
	SplitStatusPaid         SplitStatus = "paid"
	SplitStatusCancelled    SplitStatus = "cancelled"
)

// CanTransitionTo reports whether a split may move from s to next.
// Forward-only: pending -> acknowledged -> paid; cancellation is
// allowed from any non-terminal state.
func (s SplitStatus) CanTransitionTo(next SplitStatus) bool {
	switch s {
	case SplitStatusPending:
		return next == SplitStatusAcknowledged || next == SplitStatusPaid || next == SplitStatusCancelled
	case SplitStatusAcknowledged:
		return next == SplitStatusPaid || next == SplitStatusCancelled
	default:
		return false
	}
}

// SplitParams stores the policy-specific split input an expense was
// posted with, so later edits can recompute the distribution without
// the caller restating it. At most one field is populated: Shares for
// percentage, Amounts for custom, Weights for shares. Equal and none
// carry nothing.
type SplitParams struct {
	Shares  map[string]decimal.Decimal `json:"shares,omitempty"`
	Amounts map[string]decimal.Decimal `json:"amounts,omitempty"`
	Weights map[string]int64           `json:"weights,omitempty"`
}

// IsZero reports whether no parameter set is stored.
func (p SplitParams) IsZero() bool {
	return len(p.Shares) == 0 && len(p.Amounts) == 0 && len(p.Weights) == 0
}

// Expense is one shared outlay recorded against a trip. Amount is the
// original currency as entered; BaseAmount is the trip base currency
// conversion frozen at creation time.
type Expense struct {
	ID            string
	TripID        string
	CreatedBy     string
	PayerID       string
	Title         string
	Amount        Money
	BaseAmount    Money
	ExchangeRate  decimal.Decimal
	Category      string
	Subcategory   string
	Tags          []string
	ExpenseDate   time.Time
	Location      *string
	Participants  []string
	SplitPolicy   SplitPolicy
	SplitParams   SplitParams
	ReceiptRefs   []string
	Status        ExpenseStatus
	Verified      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the invariants that hold for every persisted expense:
// a positive amount, a known policy, a non-empty participant list and a payer.
func (e *Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !e.SplitPolicy.Valid() {
		return ErrUnsupportedSplitPolicy
	}

	if len(e.Participants) == 0 {
		return ErrInvalidParticipants
	}

	if e.PayerID == "" {
		return ErrInvalidParticipants
	}

	return nil
}

// Active reports whether the expense counts toward budgets and balances.
func (e *Expense) Active() bool {
	return e.Status == ExpenseStatusActive
}

// ExpenseSplit is one participant's share of one expense. Exactly one
// split row exists per (expense, participant) pair.
type ExpenseSplit struct {
	ID         string
	ExpenseID  string
	UserID     string
	PayerID    string
	Amount     Money
	BaseAmount Money
	Status     SplitStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
