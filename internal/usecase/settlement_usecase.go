package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
)

// SettlementUseCase plans the minimal transfers that zero a trip's
// balances and records manually reported payments.
type SettlementUseCase struct {
	txManager      TransactionManager
	settlementRepo SettlementRepository
	outboxRepo     OutboxRepository
	balances       *BalanceUseCase
	trips          TripDirectory
	converter      CurrencyConverter
	idGen          IDGenerator
	retrier        Retrier
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	txManager TransactionManager,
	settlementRepo SettlementRepository,
	outboxRepo OutboxRepository,
	balances *BalanceUseCase,
	trips TripDirectory,
	converter CurrencyConverter,
	idGen IDGenerator,
) *SettlementUseCase {
	return &SettlementUseCase{
		txManager:      txManager,
		settlementRepo: settlementRepo,
		outboxRepo:     outboxRepo,
		balances:       balances,
		trips:          trips,
		converter:      converter,
		idGen:          idGen,
	}
}

// WithRetrier re-runs the settlement write transaction through r when
// the store aborts it. Without a retrier it runs once.
func (uc *SettlementUseCase) WithRetrier(r Retrier) *SettlementUseCase {
	uc.retrier = r
	return uc
}

func (uc *SettlementUseCase) inTx(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}

	return uc.retrier.Retry(ctx, op)
}

// PlanSettlement computes the transfer plan for the trip's current
// balances.
func (uc *SettlementUseCase) PlanSettlement(ctx context.Context, tripID string) ([]domain.Transfer, error) {
	balances, err := uc.balances.ComputeBalances(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return PlanTransfers(balances), nil
}

// PlanTransfers produces an ordered list of peer-to-peer transfers that
// zeroes all net balances: repeatedly match the largest creditor with
// the largest debtor and transfer min(|creditor|, |debtor|). With
// any-to-any transfers permitted (true for a trip), this greedy
// matching settles in the minimum number of transfers. Fewer than two
// non-zero balances yield an empty plan.
func PlanTransfers(balances []domain.UserBalance) []domain.Transfer {
	type position struct {
		userID string
		amount decimal.Decimal
	}

	var (
		epsilon   decimal.Decimal
		currency  string
		creditors []position
		debtors   []position
	)

	for _, b := range balances {
		if currency == "" {
			currency = b.NetBalance.Currency
			epsilon = b.NetBalance.MinorUnit()
		}

		switch {
		case b.NetBalance.Amount.GreaterThanOrEqual(epsilon):
			creditors = append(creditors, position{userID: b.UserID, amount: b.NetBalance.Amount})
		case b.NetBalance.Amount.LessThanOrEqual(epsilon.Neg()):
			debtors = append(debtors, position{userID: b.UserID, amount: b.NetBalance.Amount.Neg()})
		}
	}

	if len(creditors) == 0 || len(debtors) == 0 {
		return []domain.Transfer{}
	}

	// Largest first; ties broken by user ID for a deterministic plan.
	byAmountDesc := func(ps []position) func(i, j int) bool {
		return func(i, j int) bool {
			if !ps[i].amount.Equal(ps[j].amount) {
				return ps[i].amount.GreaterThan(ps[j].amount)
			}

			return ps[i].userID < ps[j].userID
		}
	}
	sort.Slice(creditors, byAmountDesc(creditors))
	sort.Slice(debtors, byAmountDesc(debtors))

	var plan []domain.Transfer

	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)

		plan = append(plan, domain.Transfer{
			FromUserID: debtors[i].userID,
			ToUserID:   creditors[j].userID,
			Amount:     domain.Money{Amount: amount, Currency: currency},
		})

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if debtors[i].amount.LessThan(epsilon) {
			i++
		}
		if creditors[j].amount.LessThan(epsilon) {
			j++
		}
	}

	return plan
}

// RecordSettlementInput represents input for recording a settlement.
type RecordSettlementInput struct {
	TripID     string
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
	Currency   string
	Method     string
	Reference  string
	Notes      string
}

// RecordSettlement persists a manually reported payment as completed.
// It does not have to originate from a planned transfer.
func (uc *SettlementUseCase) RecordSettlement(ctx context.Context, input RecordSettlementInput) (*domain.Settlement, error) {
	amount, err := domain.NewMoney(input.Amount, input.Currency)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	settlement := &domain.Settlement{
		ID:          uc.idGen.Generate(),
		TripID:      input.TripID,
		FromUserID:  input.FromUserID,
		ToUserID:    input.ToUserID,
		Amount:      amount.Truncate(),
		Method:      input.Method,
		Reference:   input.Reference,
		Notes:       input.Notes,
		Status:      domain.SettlementStatusCompleted,
		CompletedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := settlement.Validate(); err != nil {
		return nil, err
	}

	for _, userID := range []string{input.FromUserID, input.ToUserID} {
		member, err := uc.trips.IsMember(ctx, input.TripID, userID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotTripMember, userID)
		}
	}

	settlement.BaseAmount, settlement.ExchangeRate, err = uc.toBaseCurrency(ctx, input.TripID, settlement.Amount)
	if err != nil {
		return nil, err
	}

	err = uc.inTx(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}
		defer tx.Rollback(ctx)

		if err := uc.settlementRepo.Create(ctx, tx, settlement); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrLedgerWriteFailed, err)
		}

		event := newOutboxEvent(settlement.TripID, domain.AggregateTypeSettlement, settlement.ID, domain.EventTypeSettlementRecorded, settlementPayload(settlement), now)
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
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

	uc.balances.Invalidate(ctx, settlement.TripID)

	return settlement, nil
}

// GetSettlement retrieves a settlement by ID.
func (uc *SettlementUseCase) GetSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return uc.settlementRepo.GetByID(ctx, id)
}

// ListSettlements lists a trip's settlements.
func (uc *SettlementUseCase) ListSettlements(ctx context.Context, tripID string, limit, offset int) ([]*domain.Settlement, error) {
	limit, offset = clampPage(limit, offset)

	return uc.settlementRepo.ListByTrip(ctx, tripID, limit, offset)
}

func (uc *SettlementUseCase) toBaseCurrency(ctx context.Context, tripID string, amount domain.Money) (domain.Money, decimal.Decimal, error) {
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
