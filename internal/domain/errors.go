package domain

import "errors"

var (
	// Validation errors, rejected before any write.
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidCurrency        = errors.New("invalid currency code")
	ErrCurrencyMismatch       = errors.New("currency mismatch")
	ErrInvalidParticipants    = errors.New("participant list is empty or invalid")
	ErrUnsupportedSplitPolicy = errors.New("unsupported split policy")
	ErrSplitMismatch          = errors.New("split amounts do not reconcile with expense total")
	ErrInvalidSplitParams     = errors.New("split parameters do not match policy")

	// Budget errors
	ErrInvalidBudget     = errors.New("budget total must be positive")
	ErrInvalidThresholds = errors.New("warning threshold must not exceed critical threshold")
	ErrBudgetNotFound    = errors.New("budget not found")

	// Lookup errors
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrTripNotFound       = errors.New("trip not found")

	// Membership and settlement errors
	ErrNotTripMember = errors.New("user is not a member of the trip")
	ErrSameUser      = errors.New("settlement requires two distinct users")

	// State errors
	ErrInvalidSplitStatus   = errors.New("invalid split status transition")
	ErrExpenseNotActive     = errors.New("expense is not active")
	ErrInvalidExpenseStatus = errors.New("invalid expense status")

	// ErrLedgerWriteFailed wraps transactional failures. The underlying
	// cause is attached with fmt.Errorf("%w: ...") so callers can unwrap.
	ErrLedgerWriteFailed = errors.New("ledger write failed")
)
