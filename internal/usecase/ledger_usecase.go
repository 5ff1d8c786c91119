package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
	"github.com/wanderlog/tripledger/internal/split"
)

// LedgerUseCase owns the transactional expense ledger: posting,
// updating and deleting expenses together with their splits and the
// budget increments they cause. Every mutation is a single store
// transaction; a partially visible expense, split set or budget
// increment never occurs.
type LedgerUseCase struct {
	txManager   TransactionManager
	expenseRepo ExpenseRepository
	splitRepo   SplitRepository
	budgetRepo  BudgetRepository
	outboxRepo  OutboxRepository
	trips       TripDirectory
	converter   CurrencyConverter
	cache       Cache
	idGen       IDGenerator
	retrier     Retrier
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	expenseRepo ExpenseRepository,
	splitRepo SplitRepository,
	budgetRepo BudgetRepository,
	outboxRepo OutboxRepository,
	trips TripDirectory,
	converter CurrencyConverter,
	cache Cache,
	idGen IDGenerator,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		expenseRepo: expenseRepo,
		splitRepo:   splitRepo,
		budgetRepo:  budgetRepo,
		outboxRepo:  outboxRepo,
		trips:       trips,
		converter:   converter,
		cache:       cache,
		idGen:       idGen,
	}
}

// WithRetrier re-runs the ledger's write transactions through r when
// the store aborts them, which concurrent budget increments on the
// same trip can cause. Without a retrier each transaction runs once.
func (uc *LedgerUseCase) WithRetrier(r Retrier) *LedgerUseCase {
	uc.retrier = r
	return uc
}

func (uc *LedgerUseCase) inTx(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}

	return uc.retrier.Retry(ctx, op)
}

// PostExpenseInput represents input for posting an expense.
type PostExpenseInput struct {
	TripID       string
	CreatedBy    string
	PayerID      string
	Title        string
	Amount       decimal.Decimal
	Currency     string
	Category     string
	Subcategory  string
	Tags         []string
	ExpenseDate  time.Time
	Location     *string
	Participants []string
	SplitPolicy  domain.SplitPolicy
	SplitParams  split.Params
	ReceiptRefs  []string
}

// PostExpense records a shared expense. Within one transaction it
// freezes the exchange rate against the trip's base currency, inserts
// the expense and its computed splits, applies the budget increments
// and writes the outbox event. Validation failures are rejected before
// the transaction starts.
func (uc *LedgerUseCase) PostExpense(ctx context.Context, input PostExpenseInput) (*domain.Expense, error) {
	amount, err := domain.NewMoney(input.Amount, input.Currency)
	if err != nil {
		return nil, err
	}

	payerID := input.PayerID
	if payerID == "" {
		payerID = input.CreatedBy
	}

	now := time.Now().UTC()

	expenseDate := input.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = now
	}

	expense := &domain.Expense{
		ID:           uc.idGen.Generate(),
		TripID:       input.TripID,
		CreatedBy:    input.CreatedBy,
		PayerID:      payerID,
		Title:        input.Title,
		Amount:       amount.Truncate(),
		Category:     input.Category,
		Subcategory:  input.Subcategory,
		Tags:         input.Tags,
		ExpenseDate:  expenseDate,
		Location:     input.Location,
		Participants: input.Participants,
		SplitPolicy:  input.SplitPolicy,
		SplitParams:  split.Snapshot(input.SplitParams),
		ReceiptRefs:  input.ReceiptRefs,
		Status:       domain.ExpenseStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if err := uc.checkMembership(ctx, input.TripID, payerID, input.Participants); err != nil {
		return nil, err
	}

	baseAmount, rate, err := uc.toBaseCurrency(ctx, input.TripID, expense.Amount)
	if err != nil {
		return nil, err
	}

	expense.BaseAmount = baseAmount
	expense.ExchangeRate = rate

	shares, err := split.Compute(expense.Amount, expense.SplitPolicy, expense.Participants, input.SplitParams, payerID)
	if err != nil {
		return nil, err
	}

	baseShares := rescaleShares(baseAmount, shares, expense.Amount.Amount)

	err = uc.inTx(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}
		defer tx.Rollback(ctx)

		if err := uc.expenseRepo.Create(ctx, tx, expense); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		splits := uc.buildSplits(expense, shares, baseShares, now)
		if err := uc.splitRepo.CreateBatch(ctx, tx, splits); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		budgets, err := uc.budgetRepo.ApplySpend(ctx, tx, expense.TripID, categoryPtr(expense.Category), baseAmount.Amount)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		event := newOutboxEvent(expense.TripID, domain.AggregateTypeExpense, expense.ID, domain.EventTypeExpenseCreated, expensePayload(expense), now)
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		if err := uc.emitBudgetAlerts(ctx, tx, uniformChanges(budgets, baseAmount.Amount), now); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateBalances(ctx, expense.TripID)

	return expense, nil
}

// UpdateExpenseInput is a partial patch; nil fields are left unchanged.
type UpdateExpenseInput struct {
	Title        *string
	Amount       *decimal.Decimal
	Currency     *string
	Category     *string
	Subcategory  *string
	Tags         []string
	ExpenseDate  *time.Time
	Location     *string
	Participants []string
	SplitPolicy  *domain.SplitPolicy
	SplitParams  split.Params
	ReceiptRefs  []string
	Status       *domain.ExpenseStatus
	Verified     *bool
}

// UpdateExpense edits an expense. When amount, currency, policy or
// participants change the splits are regenerated in the same
// transaction. The budget adjustment is the delta between old and new
// base amounts, never a recomputation from scratch. Cancelling (or
// merging away) an expense reverses its full budget effect and removes
// its splits while keeping the row.
func (uc *LedgerUseCase) UpdateExpense(ctx context.Context, id string, patch UpdateExpenseInput) (*domain.Expense, error) {
	var updated domain.Expense

	err := uc.inTx(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}
		defer tx.Rollback(ctx)

		existing, err := uc.expenseRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if !existing.Active() {
			return domain.ErrExpenseNotActive
		}

		now := time.Now().UTC()
		updated = *existing
		updated.UpdatedAt = now

		oldBase := existing.BaseAmount
		oldCategory := existing.Category

		amountChanged, err := applyPatch(&updated, patch)
		if err != nil {
			return err
		}

		if amountChanged {
			if updated.Amount.Currency != existing.Amount.Currency {
				// Currency changed: freeze a fresh rate.
				baseAmount, rate, convErr := uc.toBaseCurrency(ctx, updated.TripID, updated.Amount)
				if convErr != nil {
					return convErr
				}

				updated.BaseAmount = baseAmount
				updated.ExchangeRate = rate
			} else {
				// Same currency: reuse the rate frozen at creation time.
				updated.BaseAmount = domain.Money{
					Amount:   updated.Amount.Amount.Mul(existing.ExchangeRate),
					Currency: existing.BaseAmount.Currency,
				}.Round()
			}
		}

		if err := updated.Validate(); err != nil {
			return err
		}

		if patch.Participants != nil {
			if err := uc.checkMembership(ctx, updated.TripID, updated.PayerID, updated.Participants); err != nil {
				return err
			}
		}

		splitsChanged := amountChanged || patch.Participants != nil || patch.SplitPolicy != nil || patch.SplitParams != nil

		var changes []budgetChange

		switch {
		case !updated.Active():
			// Deactivation reverses the original posting.
			if _, err = uc.budgetRepo.ApplySpend(ctx, tx, updated.TripID, categoryPtr(oldCategory), oldBase.Amount.Neg()); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
			}

			if err := uc.splitRepo.DeleteByExpense(ctx, tx, updated.ID); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
			}
		case updated.Category != oldCategory:
			// Reverse under the old category, re-apply under the new one.
			if _, err = uc.budgetRepo.ApplySpend(ctx, tx, updated.TripID, categoryPtr(oldCategory), oldBase.Amount.Neg()); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
			}

			touched, err := uc.budgetRepo.ApplySpend(ctx, tx, updated.TripID, categoryPtr(updated.Category), updated.BaseAmount.Amount)
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
			}

			// The new-category budget took the full new base amount,
			// while the reverse-then-apply pair netted the trip-wide
			// budget out to the plain delta.
			for _, b := range touched {
				applied := updated.BaseAmount.Amount
				if b.Category == nil {
					applied = updated.BaseAmount.Amount.Sub(oldBase.Amount)
				}

				changes = append(changes, budgetChange{budget: b, delta: applied})
			}
		default:
			delta := updated.BaseAmount.Amount.Sub(oldBase.Amount)
			if !delta.IsZero() {
				touched, err := uc.budgetRepo.ApplySpend(ctx, tx, updated.TripID, categoryPtr(updated.Category), delta)
				if err != nil {
					return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
				}

				changes = uniformChanges(touched, delta)
			}
		}

		if splitsChanged && updated.Active() {
			// A patch that changes amount or participants without
			// restating the split parameters falls back to the ones
			// stored with the expense.
			params := patch.SplitParams
			if params == nil {
				params = split.FromSnapshot(updated.SplitPolicy, updated.SplitParams)
			}

			shares, err := split.Compute(updated.Amount, updated.SplitPolicy, updated.Participants, params, updated.PayerID)
			if err != nil {
				return err
			}

			baseShares := rescaleShares(updated.BaseAmount, shares, updated.Amount.Amount)

			if err := uc.splitRepo.DeleteByExpense(ctx, tx, updated.ID); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
			}

			splits := uc.buildSplits(&updated, shares, baseShares, now)
			if err := uc.splitRepo.CreateBatch(ctx, tx, splits); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
			}
		}

		if err := uc.expenseRepo.Update(ctx, tx, &updated); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		event := newOutboxEvent(updated.TripID, domain.AggregateTypeExpense, updated.ID, domain.EventTypeExpenseUpdated, expensePayload(&updated), now)
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		if err := uc.emitBudgetAlerts(ctx, tx, changes, now); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateBalances(ctx, updated.TripID)

	return &updated, nil
}

// DeleteExpense removes an expense and its splits and reverses the
// budget effect of the original posting, all in one transaction.
func (uc *LedgerUseCase) DeleteExpense(ctx context.Context, id string) error {
	var tripID string

	err := uc.inTx(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}
		defer tx.Rollback(ctx)

		existing, err := uc.expenseRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		tripID = existing.TripID

		if err := uc.splitRepo.DeleteByExpense(ctx, tx, id); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		if err := uc.expenseRepo.Delete(ctx, tx, id); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		if existing.Active() {
			if _, err := uc.budgetRepo.ApplySpend(ctx, tx, existing.TripID, categoryPtr(existing.Category), existing.BaseAmount.Amount.Neg()); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
			}
		}

		now := time.Now().UTC()
		event := newOutboxEvent(existing.TripID, domain.AggregateTypeExpense, existing.ID, domain.EventTypeExpenseDeleted, expensePayload(existing), now)
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	uc.invalidateBalances(ctx, tripID)

	return nil
}

// GetExpense retrieves an expense and its splits.
func (uc *LedgerUseCase) GetExpense(ctx context.Context, id string) (*domain.Expense, []*domain.ExpenseSplit, error) {
	expense, err := uc.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	splits, err := uc.splitRepo.GetByExpense(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return expense, splits, nil
}

// ListExpenses lists a trip's expenses.
func (uc *LedgerUseCase) ListExpenses(ctx context.Context, tripID string, filter ExpenseFilter) ([]*domain.Expense, error) {
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)

	return uc.expenseRepo.ListByTrip(ctx, tripID, filter)
}

// UpdateSplitStatus moves a split through its settlement workflow.
func (uc *LedgerUseCase) UpdateSplitStatus(ctx context.Context, splitID string, next domain.SplitStatus) (*domain.ExpenseSplit, error) {
	s, err := uc.splitRepo.GetByID(ctx, splitID)
	if err != nil {
		return nil, err
	}

	if !s.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidSplitStatus, s.Status, next)
	}

	now := time.Now().UTC()
	if err := uc.splitRepo.UpdateStatus(ctx, splitID, next, now); err != nil {
		return nil, err
	}

	s.Status = next
	s.UpdatedAt = now

	return s, nil
}

func (uc *LedgerUseCase) checkMembership(ctx context.Context, tripID, payerID string, participants []string) error {
	members, err := uc.trips.ListMembers(ctx, tripID)
	if err != nil {
		return err
	}

	memberSet := make(map[string]struct{}, len(members))
	for _, m := range members {
		memberSet[m] = struct{}{}
	}

	if _, ok := memberSet[payerID]; !ok {
		return fmt.Errorf("%w: payer %s", domain.ErrNotTripMember, payerID)
	}

	for _, p := range participants {
		if _, ok := memberSet[p]; !ok {
			return fmt.Errorf("%w: participant %s", domain.ErrNotTripMember, p)
		}
	}

	return nil
}

// toBaseCurrency converts an amount to the trip's base currency,
// returning the converted amount and the rate. Same-currency amounts
// short-circuit with a rate of one.
func (uc *LedgerUseCase) toBaseCurrency(ctx context.Context, tripID string, amount domain.Money) (domain.Money, decimal.Decimal, error) {
	base, err := uc.trips.BaseCurrency(ctx, tripID)
	if err != nil {
		return domain.Money{}, decimal.Zero, err
	}

	if base == amount.Currency {
		return amount, decimal.NewFromInt(1), nil
	}

	converted, rate, err := uc.converter.Convert(ctx, amount.Amount, amount.Currency, base)
	if err != nil {
		return domain.Money{}, decimal.Zero, err
	}

	baseMoney, err := domain.NewMoney(converted, base)
	if err != nil {
		return domain.Money{}, decimal.Zero, err
	}

	return baseMoney.Round(), rate, nil
}

func (uc *LedgerUseCase) buildSplits(expense *domain.Expense, shares, baseShares []split.Share, now time.Time) []*domain.ExpenseSplit {
	splits := make([]*domain.ExpenseSplit, 0, len(shares))
	for i, share := range shares {
		splits = append(splits, &domain.ExpenseSplit{
			ID:         uc.idGen.Generate(),
			ExpenseID:  expense.ID,
			UserID:     share.UserID,
			PayerID:    expense.PayerID,
			Amount:     share.Amount,
			BaseAmount: baseShares[i].Amount,
			Status:     domain.SplitStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	return splits
}

func (uc *LedgerUseCase) invalidateBalances(ctx context.Context, tripID string) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.Delete(ctx, balanceCacheKey(tripID))
}

func applyPatch(e *domain.Expense, patch UpdateExpenseInput) (amountChanged bool, err error) {
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Category != nil {
		e.Category = *patch.Category
	}
	if patch.Subcategory != nil {
		e.Subcategory = *patch.Subcategory
	}
	if patch.Tags != nil {
		e.Tags = patch.Tags
	}
	if patch.ExpenseDate != nil {
		e.ExpenseDate = *patch.ExpenseDate
	}
	if patch.Location != nil {
		e.Location = patch.Location
	}
	if patch.Participants != nil {
		e.Participants = patch.Participants
	}
	if patch.SplitPolicy != nil {
		e.SplitPolicy = *patch.SplitPolicy
	}
	if patch.SplitParams != nil {
		e.SplitParams = split.Snapshot(patch.SplitParams)
	}
	if patch.ReceiptRefs != nil {
		e.ReceiptRefs = patch.ReceiptRefs
	}
	if patch.Verified != nil {
		e.Verified = *patch.Verified
	}

	if patch.Amount != nil || patch.Currency != nil {
		amount := e.Amount.Amount
		if patch.Amount != nil {
			amount = *patch.Amount
		}

		currency := e.Amount.Currency
		if patch.Currency != nil {
			currency = *patch.Currency
		}

		money, moneyErr := domain.NewMoney(amount, currency)
		if moneyErr != nil {
			return false, moneyErr
		}

		e.Amount = money.Truncate()
		amountChanged = true
	}

	if patch.Status != nil {
		if !patch.Status.Valid() {
			return false, domain.ErrInvalidExpenseStatus
		}

		e.Status = *patch.Status
	}

	return amountChanged, nil
}

func categoryPtr(category string) *string {
	if category == "" {
		return nil
	}

	return &category
}

// rescaleShares distributes a base-currency total proportionally to
// already-computed original-currency shares. Each portion truncates to
// the target minor unit with the remainder assigned to the first share,
// so the base splits reconcile to the base amount exactly. When the
// currencies match (rate one) this is the identity.
func rescaleShares(target domain.Money, shares []split.Share, origTotal decimal.Decimal) []split.Share {
	out := make([]split.Share, len(shares))
	allocated := decimal.Zero

	for i, s := range shares {
		portion := target.Amount.Mul(s.Amount.Amount).Div(origTotal).Truncate(target.Exponent())
		allocated = allocated.Add(portion)
		out[i] = split.Share{UserID: s.UserID, Amount: domain.Money{Amount: portion, Currency: target.Currency}}
	}

	remainder := target.Amount.Sub(allocated)
	if !remainder.IsZero() && len(out) > 0 {
		out[0].Amount.Amount = out[0].Amount.Amount.Add(remainder)
	}

	return out
}
