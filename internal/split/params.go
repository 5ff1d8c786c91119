package split

import (
	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
)

// Params carries the per-policy split parameters. Each policy has its
// own concrete type so a wrong-shaped payload is rejected before any
// arithmetic happens.
type Params interface {
	Policy() domain.SplitPolicy
}

// EqualParams configures an equal split. It carries no data.
type EqualParams struct{}

func (EqualParams) Policy() domain.SplitPolicy { return domain.SplitPolicyEqual }

// NoneParams configures a no-split expense: the payer carries the full amount.
type NoneParams struct{}

func (NoneParams) Policy() domain.SplitPolicy { return domain.SplitPolicyNone }

// PercentageParams maps each participant to their percentage of the
// total (0–100). The percentages must cover every participant and sum
// to 100.
type PercentageParams struct {
	Shares map[string]decimal.Decimal
}

func (PercentageParams) Policy() domain.SplitPolicy { return domain.SplitPolicyPercentage }

// CustomParams maps each participant to their absolute amount. The
// amounts must sum to the expense total within one minor unit.
type CustomParams struct {
	Amounts map[string]decimal.Decimal
}

func (CustomParams) Policy() domain.SplitPolicy { return domain.SplitPolicyCustom }

// SharesParams maps each participant to an integer share weight; the
// amount is distributed proportionally to the weights.
type SharesParams struct {
	Weights map[string]int64
}

func (SharesParams) Policy() domain.SplitPolicy { return domain.SplitPolicyShares }

// ParamsFor returns the zero-value params for policies that carry no
// data, and nil for the ones that require caller-supplied parameters.
func ParamsFor(policy domain.SplitPolicy) Params {
	switch policy {
	case domain.SplitPolicyEqual:
		return EqualParams{}
	case domain.SplitPolicyNone:
		return NoneParams{}
	default:
		return nil
	}
}

// Snapshot flattens params into the form stored on the expense.
// Parameterless policies snapshot to the zero value.
func Snapshot(p Params) domain.SplitParams {
	switch p := p.(type) {
	case PercentageParams:
		return domain.SplitParams{Shares: p.Shares}
	case CustomParams:
		return domain.SplitParams{Amounts: p.Amounts}
	case SharesParams:
		return domain.SplitParams{Weights: p.Weights}
	default:
		return domain.SplitParams{}
	}
}

// FromSnapshot rebuilds the concrete params for a stored expense,
// picking the field the policy reads. A stale field left over from a
// previous policy is ignored.
func FromSnapshot(policy domain.SplitPolicy, snap domain.SplitParams) Params {
	switch policy {
	case domain.SplitPolicyPercentage:
		return PercentageParams{Shares: snap.Shares}
	case domain.SplitPolicyCustom:
		return CustomParams{Amounts: snap.Amounts}
	case domain.SplitPolicyShares:
		return SharesParams{Weights: snap.Weights}
	default:
		return ParamsFor(policy)
	}
}
