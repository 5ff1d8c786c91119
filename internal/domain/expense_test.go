package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestExpense_Validate(t *testing.T) {
	valid := func() *Expense {
		amount, _ := NewMoney(decimal.NewFromInt(100), "USD")

		return &Expense{
			TripID:       "trip-1",
			PayerID:      "user-a",
			Title:        "dinner",
			Amount:       amount,
			Participants: []string{"user-a", "user-b"},
			SplitPolicy:  SplitPolicyEqual,
			Status:       ExpenseStatusActive,
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Expense)
		expectError error
	}{
		{name: "valid expense", mutate: func(e *Expense) {}, expectError: nil},
		{
			name:        "zero amount",
			mutate:      func(e *Expense) { e.Amount.Amount = decimal.Zero },
			expectError: ErrInvalidAmount,
		},
		{
			name:        "negative amount",
			mutate:      func(e *Expense) { e.Amount.Amount = decimal.NewFromInt(-5) },
			expectError: ErrInvalidAmount,
		},
		{
			name:        "unknown policy",
			mutate:      func(e *Expense) { e.SplitPolicy = "thirds" },
			expectError: ErrUnsupportedSplitPolicy,
		},
		{
			name:        "no participants",
			mutate:      func(e *Expense) { e.Participants = nil },
			expectError: ErrInvalidParticipants,
		},
		{
			name:        "missing payer",
			mutate:      func(e *Expense) { e.PayerID = "" },
			expectError: ErrInvalidParticipants,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(e)

			err := e.Validate()

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestSplitStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from SplitStatus
		to   SplitStatus
		want bool
	}{
		{from: SplitStatusPending, to: SplitStatusAcknowledged, want: true},
		{from: SplitStatusPending, to: SplitStatusPaid, want: true},
		{from: SplitStatusPending, to: SplitStatusCancelled, want: true},
		{from: SplitStatusAcknowledged, to: SplitStatusPaid, want: true},
		{from: SplitStatusAcknowledged, to: SplitStatusCancelled, want: true},
		{from: SplitStatusAcknowledged, to: SplitStatusPending, want: false},
		{from: SplitStatusPaid, to: SplitStatusCancelled, want: false},
		{from: SplitStatusPaid, to: SplitStatusPending, want: false},
		{from: SplitStatusCancelled, to: SplitStatusPending, want: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
			}
		})
	}
}

func TestSettlement_Validate(t *testing.T) {
	amount, _ := NewMoney(decimal.NewFromInt(25), "USD")

	s := &Settlement{TripID: "trip-1", FromUserID: "user-a", ToUserID: "user-b", Amount: amount}
	if err := s.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	s.ToUserID = "user-a"
	if err := s.Validate(); !errors.Is(err, ErrSameUser) {
		t.Errorf("expected ErrSameUser, got %v", err)
	}

	s.ToUserID = "user-b"
	s.Amount.Amount = decimal.Zero
	if err := s.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}
