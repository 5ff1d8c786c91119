// Package split computes per-participant shares of an expense. It is a
// pure function of its inputs: no clock, no store, no side effects.
// Every policy reconciles exactly: the sum of the returned shares
// equals the input amount with zero rounding leakage.
package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Share is one participant's computed portion of an expense.
type Share struct {
	UserID string
	Amount domain.Money
}

// Compute derives the ordered per-participant shares for an expense.
// Shares come back in participant input order, except for the none
// policy where the single share belongs to the payer.
//
// Rounding policy: equal and shares truncate to the minor unit and
// assign the remainder to the first participant; percentage truncates
// and assigns the cumulative deficit to the last participant. Both
// rules are deterministic so recomputing an edit yields the same rows.
func Compute(amount domain.Money, policy domain.SplitPolicy, participants []string, params Params, payerID string) ([]Share, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	if !policy.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedSplitPolicy, policy)
	}

	if len(participants) == 0 {
		return nil, domain.ErrInvalidParticipants
	}

	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if p == "" {
			return nil, domain.ErrInvalidParticipants
		}
		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("%w: duplicate participant %s", domain.ErrInvalidParticipants, p)
		}
		seen[p] = struct{}{}
	}

	if params == nil {
		params = ParamsFor(policy)
	}
	if params == nil || params.Policy() != policy {
		return nil, fmt.Errorf("%w: params for %q against policy %q", domain.ErrInvalidSplitParams, paramsPolicy(params), policy)
	}

	switch p := params.(type) {
	case EqualParams:
		return computeEqual(amount, participants)
	case PercentageParams:
		return computePercentage(amount, participants, p)
	case CustomParams:
		return computeCustom(amount, participants, p)
	case SharesParams:
		weights := make(map[string]decimal.Decimal, len(p.Weights))
		for userID, w := range p.Weights {
			weights[userID] = decimal.NewFromInt(w)
		}

		return computeWeighted(amount, participants, weights)
	case NoneParams:
		if payerID == "" {
			return nil, domain.ErrInvalidParticipants
		}

		return []Share{{UserID: payerID, Amount: amount.Truncate()}}, nil
	default:
		return nil, fmt.Errorf("%w: %T", domain.ErrInvalidSplitParams, params)
	}
}

// computeEqual divides the amount evenly, truncating each share to the
// minor unit and assigning the remainder to the first participant so
// the sum always equals the original amount exactly.
func computeEqual(amount domain.Money, participants []string) ([]Share, error) {
	weights := make(map[string]decimal.Decimal, len(participants))
	for _, p := range participants {
		weights[p] = decimal.NewFromInt(1)
	}

	return computeWeighted(amount, participants, weights)
}

func computePercentage(amount domain.Money, participants []string, params PercentageParams) ([]Share, error) {
	total := decimal.Zero
	for _, p := range participants {
		pct, ok := params.Shares[p]
		if !ok {
			return nil, fmt.Errorf("%w: no percentage for participant %s", domain.ErrInvalidSplitParams, p)
		}
		if pct.IsNegative() {
			return nil, fmt.Errorf("%w: negative percentage for participant %s", domain.ErrInvalidSplitParams, p)
		}

		total = total.Add(pct)
	}

	// Percentages must account for the whole amount.
	if !total.Sub(hundred).Abs().LessThanOrEqual(decimal.NewFromFloat(0.01)) {
		return nil, fmt.Errorf("%w: percentages sum to %s", domain.ErrSplitMismatch, total)
	}

	shares := make([]Share, 0, len(participants))
	allocated := decimal.Zero

	for _, p := range participants {
		portion := amount.Amount.Mul(params.Shares[p]).Div(hundred).Truncate(amount.Exponent())
		allocated = allocated.Add(portion)
		shares = append(shares, Share{UserID: p, Amount: domain.Money{Amount: portion, Currency: amount.Currency}})
	}

	// Rounding always truncates, so anything left over is a deficit;
	// it goes to the last participant.
	deficit := amount.Amount.Sub(allocated)
	if !deficit.IsZero() {
		last := len(shares) - 1
		shares[last].Amount.Amount = shares[last].Amount.Amount.Add(deficit)
	}

	return shares, nil
}

func computeCustom(amount domain.Money, participants []string, params CustomParams) ([]Share, error) {
	shares := make([]Share, 0, len(participants))
	total := decimal.Zero

	for _, p := range participants {
		declared, ok := params.Amounts[p]
		if !ok {
			return nil, fmt.Errorf("%w: no amount for participant %s", domain.ErrInvalidSplitParams, p)
		}
		if declared.IsNegative() {
			return nil, fmt.Errorf("%w: negative amount for participant %s", domain.ErrInvalidSplitParams, p)
		}

		declared = declared.Round(amount.Exponent())
		total = total.Add(declared)
		shares = append(shares, Share{UserID: p, Amount: domain.Money{Amount: declared, Currency: amount.Currency}})
	}

	if total.Sub(amount.Amount).Abs().GreaterThan(amount.MinorUnit()) {
		return nil, fmt.Errorf("%w: declared %s against total %s", domain.ErrSplitMismatch, total, amount.Amount)
	}

	return shares, nil
}

// computeWeighted distributes the amount proportionally to the weights,
// truncating each share and assigning the remainder to the first
// participant in input order.
func computeWeighted(amount domain.Money, participants []string, weights map[string]decimal.Decimal) ([]Share, error) {
	totalWeight := decimal.Zero
	for _, p := range participants {
		w, ok := weights[p]
		if !ok {
			return nil, fmt.Errorf("%w: no share weight for participant %s", domain.ErrInvalidSplitParams, p)
		}
		if !w.IsPositive() {
			return nil, fmt.Errorf("%w: non-positive share weight for participant %s", domain.ErrInvalidSplitParams, p)
		}

		totalWeight = totalWeight.Add(w)
	}

	shares := make([]Share, 0, len(participants))
	allocated := decimal.Zero

	for _, p := range participants {
		portion := amount.Amount.Mul(weights[p]).Div(totalWeight).Truncate(amount.Exponent())
		allocated = allocated.Add(portion)
		shares = append(shares, Share{UserID: p, Amount: domain.Money{Amount: portion, Currency: amount.Currency}})
	}

	remainder := amount.Amount.Sub(allocated)
	if !remainder.IsZero() {
		shares[0].Amount.Amount = shares[0].Amount.Amount.Add(remainder)
	}

	return shares, nil
}

func paramsPolicy(params Params) domain.SplitPolicy {
	if params == nil {
		return ""
	}

	return params.Policy()
}
