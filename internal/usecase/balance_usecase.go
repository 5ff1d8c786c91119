package usecase

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
)

// BalanceUseCase derives each trip member's net position from the
// ledger. Reads are served from a short-TTL cache that every ledger and
// settlement mutation invalidates; a miss recomputes from the store.
type BalanceUseCase struct {
	balanceRepo BalanceRepository
	trips       TripDirectory
	cache       Cache
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(balanceRepo BalanceRepository, trips TripDirectory, cache Cache) *BalanceUseCase {
	return &BalanceUseCase{balanceRepo: balanceRepo, trips: trips, cache: cache}
}

type cachedBalance struct {
	UserID     string          `json:"user_id"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
	NetBalance decimal.Decimal `json:"net_balance"`
	Currency   string          `json:"currency"`
}

// ComputeBalances returns the net position of every trip member in the
// trip's base currency. Paid credits active expenses where the member
// is payer plus completed settlements they sent; owed debits their
// splits plus completed settlements they received. The sum of net
// balances over all members is zero within rounding tolerance.
func (uc *BalanceUseCase) ComputeBalances(ctx context.Context, tripID string) ([]domain.UserBalance, error) {
	if balances, ok := uc.fromCache(ctx, tripID); ok {
		return balances, nil
	}

	base, err := uc.trips.BaseCurrency(ctx, tripID)
	if err != nil {
		return nil, err
	}

	members, err := uc.trips.ListMembers(ctx, tripID)
	if err != nil {
		return nil, err
	}

	totals, err := uc.balanceRepo.TripTotals(ctx, tripID)
	if err != nil {
		return nil, err
	}

	// Former members with ledger history still carry a position;
	// dropping them would break the zero-sum invariant.
	users := make(map[string]struct{}, len(members))
	for _, m := range members {
		users[m] = struct{}{}
	}
	for _, m := range []map[string]decimal.Decimal{totals.Paid, totals.Owed, totals.SettlementPaid, totals.SettlementReceived} {
		for userID := range m {
			users[userID] = struct{}{}
		}
	}

	balances := make([]domain.UserBalance, 0, len(users))
	for userID := range users {
		paid := totals.Paid[userID].Add(totals.SettlementPaid[userID])
		owed := totals.Owed[userID].Add(totals.SettlementReceived[userID])

		balances = append(balances, domain.UserBalance{
			UserID:     userID,
			TotalPaid:  domain.Money{Amount: paid, Currency: base},
			TotalOwed:  domain.Money{Amount: owed, Currency: base},
			NetBalance: domain.Money{Amount: paid.Sub(owed), Currency: base},
		})
	}

	sort.Slice(balances, func(i, j int) bool { return balances[i].UserID < balances[j].UserID })

	uc.toCache(ctx, tripID, balances)

	return balances, nil
}

// Invalidate drops the cached balances for a trip.
func (uc *BalanceUseCase) Invalidate(ctx context.Context, tripID string) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.Delete(ctx, balanceCacheKey(tripID))
}

func (uc *BalanceUseCase) fromCache(ctx context.Context, tripID string) ([]domain.UserBalance, bool) {
	if uc.cache == nil {
		return nil, false
	}

	raw, err := uc.cache.Get(ctx, balanceCacheKey(tripID))
	if err != nil || raw == nil {
		return nil, false
	}

	var cached []cachedBalance
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false
	}

	balances := make([]domain.UserBalance, 0, len(cached))
	for _, c := range cached {
		balances = append(balances, domain.UserBalance{
			UserID:     c.UserID,
			TotalPaid:  domain.Money{Amount: c.TotalPaid, Currency: c.Currency},
			TotalOwed:  domain.Money{Amount: c.TotalOwed, Currency: c.Currency},
			NetBalance: domain.Money{Amount: c.NetBalance, Currency: c.Currency},
		})
	}

	return balances, true
}

func (uc *BalanceUseCase) toCache(ctx context.Context, tripID string, balances []domain.UserBalance) {
	if uc.cache == nil {
		return
	}

	cached := make([]cachedBalance, 0, len(balances))
	for _, b := range balances {
		cached = append(cached, cachedBalance{
			UserID:     b.UserID,
			TotalPaid:  b.TotalPaid.Amount,
			TotalOwed:  b.TotalOwed.Amount,
			NetBalance: b.NetBalance.Amount,
			Currency:   b.NetBalance.Currency,
		})
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return
	}

	_ = uc.cache.Set(ctx, balanceCacheKey(tripID), raw, balanceCacheTTL)
}
