package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the lifecycle status of a recorded settlement.
type SettlementStatus string

const (
	SettlementStatusPending   SettlementStatus = "pending"
	SettlementStatusCompleted SettlementStatus = "completed"
	SettlementStatusCancelled SettlementStatus = "cancelled"
)

// Settlement is a payment between two trip members made outside the
// expense flow (cash, bank transfer) that narrows their balances.
type Settlement struct {
	ID           string
	TripID       string
	FromUserID   string
	ToUserID     string
	Amount       Money
	BaseAmount   Money
	ExchangeRate decimal.Decimal
	Method       string
	Reference    string
	Notes        string
	Status       SettlementStatus
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks the settlement invariants: distinct parties and a
// positive amount.
func (s *Settlement) Validate() error {
	if s.FromUserID == s.ToUserID {
		return ErrSameUser
	}

	if !s.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	return nil
}
