package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository with SQL
// aggregates over active expenses and completed settlements. Balances
// are never stored; they are always derived from the ledger.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

// TripTotals computes the per-user base-currency aggregates of a trip.
func (r *BalanceRepository) TripTotals(ctx context.Context, tripID string) (*usecase.TripTotals, error) {
	totals := &usecase.TripTotals{
		Paid:               map[string]decimal.Decimal{},
		Owed:               map[string]decimal.Decimal{},
		SettlementPaid:     map[string]decimal.Decimal{},
		SettlementReceived: map[string]decimal.Decimal{},
	}

	paidQuery := `
		SELECT payer_id, SUM(base_amount)
		FROM expenses
		WHERE trip_id = $1 AND status = 'active'
		GROUP BY payer_id
	`
	if err := r.sumInto(ctx, totals.Paid, paidQuery, tripID); err != nil {
		return nil, err
	}

	owedQuery := `
		SELECT s.user_id, SUM(s.base_amount)
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.trip_id = $1 AND e.status = 'active'
		GROUP BY s.user_id
	`
	if err := r.sumInto(ctx, totals.Owed, owedQuery, tripID); err != nil {
		return nil, err
	}

	settledQuery := `
		SELECT from_user_id, SUM(base_amount)
		FROM settlements
		WHERE trip_id = $1 AND status = 'completed'
		GROUP BY from_user_id
	`
	if err := r.sumInto(ctx, totals.SettlementPaid, settledQuery, tripID); err != nil {
		return nil, err
	}

	receivedQuery := `
		SELECT to_user_id, SUM(base_amount)
		FROM settlements
		WHERE trip_id = $1 AND status = 'completed'
		GROUP BY to_user_id
	`
	if err := r.sumInto(ctx, totals.SettlementReceived, receivedQuery, tripID); err != nil {
		return nil, err
	}

	return totals, nil
}

func (r *BalanceRepository) sumInto(ctx context.Context, dest map[string]decimal.Decimal, query, tripID string) error {
	rows, err := r.pool.Query(ctx, query, tripID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID string
			sum    pgtype.Numeric
		)
		if err := rows.Scan(&userID, &sum); err != nil {
			return err
		}
		dest[userID] = numericToDecimal(sum)
	}

	return rows.Err()
}
