package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
	"github.com/wanderlog/tripledger/internal/split"
	"github.com/wanderlog/tripledger/internal/usecase"
)

// SplitParamsRequest carries the policy-specific split parameters.
// Exactly one field is expected, matching the declared policy.
type SplitParamsRequest struct {
	// Percentage shares per user, summing to 100.
	Shares map[string]decimal.Decimal `json:"shares,omitempty"`
	// Fixed amounts per user, summing to the expense amount.
	Amounts map[string]decimal.Decimal `json:"amounts,omitempty"`
	// Relative integer weights per user.
	Weights map[string]int64 `json:"weights,omitempty"`
}

// ToParams converts the request parameters for the given policy.
func (r *SplitParamsRequest) ToParams(policy domain.SplitPolicy) split.Params {
	if r == nil {
		return split.ParamsFor(policy)
	}

	switch policy {
	case domain.SplitPolicyPercentage:
		return split.PercentageParams{Shares: r.Shares}
	case domain.SplitPolicyCustom:
		return split.CustomParams{Amounts: r.Amounts}
	case domain.SplitPolicyShares:
		return split.SharesParams{Weights: r.Weights}
	default:
		return split.ParamsFor(policy)
	}
}

// Infer picks the params variant from whichever field is populated,
// for patches that restate parameters without restating the policy.
func (r *SplitParamsRequest) Infer() split.Params {
	switch {
	case r == nil:
		return nil
	case len(r.Shares) > 0:
		return split.PercentageParams{Shares: r.Shares}
	case len(r.Amounts) > 0:
		return split.CustomParams{Amounts: r.Amounts}
	case len(r.Weights) > 0:
		return split.SharesParams{Weights: r.Weights}
	default:
		return nil
	}
}

// PostExpenseRequest represents a request to post a shared expense.
type PostExpenseRequest struct {
	CreatedBy    string              `json:"created_by"`
	PayerID      string              `json:"payer_id,omitempty"`
	Title        string              `json:"title"`
	Amount       decimal.Decimal     `json:"amount"`
	Currency     string              `json:"currency"`
	Category     string              `json:"category,omitempty"`
	Subcategory  string              `json:"subcategory,omitempty"`
	Tags         []string            `json:"tags,omitempty"`
	ExpenseDate  *time.Time          `json:"expense_date,omitempty"`
	Location     *string             `json:"location,omitempty"`
	Participants []string            `json:"participants"`
	SplitPolicy  string              `json:"split_policy"`
	SplitParams  *SplitParamsRequest `json:"split_params,omitempty"`
	ReceiptRefs  []string            `json:"receipt_refs,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PostExpenseRequest) ToUseCaseInput(tripID string) usecase.PostExpenseInput {
	policy := domain.SplitPolicy(r.SplitPolicy)

	input := usecase.PostExpenseInput{
		TripID:       tripID,
		CreatedBy:    r.CreatedBy,
		PayerID:      r.PayerID,
		Title:        r.Title,
		Amount:       r.Amount,
		Currency:     r.Currency,
		Category:     r.Category,
		Subcategory:  r.Subcategory,
		Tags:         r.Tags,
		Location:     r.Location,
		Participants: r.Participants,
		SplitPolicy:  policy,
		SplitParams:  r.SplitParams.ToParams(policy),
		ReceiptRefs:  r.ReceiptRefs,
	}

	if r.ExpenseDate != nil {
		input.ExpenseDate = *r.ExpenseDate
	}

	return input
}

// UpdateExpenseRequest represents a partial expense patch. Absent
// fields are left unchanged.
type UpdateExpenseRequest struct {
	Title        *string             `json:"title,omitempty"`
	Amount       *decimal.Decimal    `json:"amount,omitempty"`
	Currency     *string             `json:"currency,omitempty"`
	Category     *string             `json:"category,omitempty"`
	Subcategory  *string             `json:"subcategory,omitempty"`
	Tags         []string            `json:"tags,omitempty"`
	ExpenseDate  *time.Time          `json:"expense_date,omitempty"`
	Location     *string             `json:"location,omitempty"`
	Participants []string            `json:"participants,omitempty"`
	SplitPolicy  *string             `json:"split_policy,omitempty"`
	SplitParams  *SplitParamsRequest `json:"split_params,omitempty"`
	ReceiptRefs  []string            `json:"receipt_refs,omitempty"`
	Status       *string             `json:"status,omitempty"`
	Verified     *bool               `json:"verified,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateExpenseRequest) ToUseCaseInput() usecase.UpdateExpenseInput {
	input := usecase.UpdateExpenseInput{
		Title:        r.Title,
		Amount:       r.Amount,
		Currency:     r.Currency,
		Category:     r.Category,
		Subcategory:  r.Subcategory,
		Tags:         r.Tags,
		ExpenseDate:  r.ExpenseDate,
		Location:     r.Location,
		Participants: r.Participants,
		ReceiptRefs:  r.ReceiptRefs,
		Verified:     r.Verified,
	}

	if r.SplitPolicy != nil {
		policy := domain.SplitPolicy(*r.SplitPolicy)
		input.SplitPolicy = &policy
		input.SplitParams = r.SplitParams.ToParams(policy)
	} else if r.SplitParams != nil {
		input.SplitParams = r.SplitParams.Infer()
	}

	if r.Status != nil {
		status := domain.ExpenseStatus(*r.Status)
		input.Status = &status
	}

	return input
}

// UpdateSplitStatusRequest moves a split through its workflow.
type UpdateSplitStatusRequest struct {
	Status string `json:"status"`
}

// SetBudgetRequest represents a request to create or replace a budget.
type SetBudgetRequest struct {
	Category *string         `json:"category,omitempty"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
	Warning  decimal.Decimal `json:"warning_threshold"`
	Critical decimal.Decimal `json:"critical_threshold"`
}

// ToUseCaseInput converts to use case input.
func (r *SetBudgetRequest) ToUseCaseInput(tripID string) usecase.SetBudgetInput {
	return usecase.SetBudgetInput{
		TripID:   tripID,
		Category: r.Category,
		Total:    r.Total,
		Currency: r.Currency,
		Warning:  r.Warning,
		Critical: r.Critical,
	}
}

// RecordSettlementRequest represents a manually reported payment.
type RecordSettlementRequest struct {
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Method     string          `json:"method,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordSettlementRequest) ToUseCaseInput(tripID string) usecase.RecordSettlementInput {
	return usecase.RecordSettlementInput{
		TripID:     tripID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Amount:     r.Amount,
		Currency:   r.Currency,
		Method:     r.Method,
		Reference:  r.Reference,
		Notes:      r.Notes,
	}
}
