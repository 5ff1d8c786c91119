package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
	"github.com/wanderlog/tripledger/internal/usecase"
)

const budgetColumns = `
	id, trip_id, category,
	total_amount, currency, spent_amount,
	warning_threshold, critical_threshold,
	created_at, updated_at
`

// BudgetRepository implements usecase.BudgetRepository.
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Upsert creates or replaces the budget keyed by (trip, category). The
// accumulated spent amount of an existing row is preserved.
func (r *BudgetRepository) Upsert(ctx context.Context, budget *domain.Budget) error {
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (trip_id, COALESCE(category, ''))
		DO UPDATE SET
			total_amount = EXCLUDED.total_amount,
			currency = EXCLUDED.currency,
			warning_threshold = EXCLUDED.warning_threshold,
			critical_threshold = EXCLUDED.critical_threshold,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		budget.ID,
		budget.TripID,
		budget.Category,
		decimalToNumeric(budget.Total.Amount),
		budget.Total.Currency,
		decimalToNumeric(budget.Spent.Amount),
		decimalToNumeric(budget.Warning),
		decimalToNumeric(budget.Critical),
		budget.CreatedAt,
		budget.UpdatedAt,
	)

	return err
}

// Get retrieves the budget for a category, or the trip-wide budget when
// category is nil.
func (r *BudgetRepository) Get(ctx context.Context, tripID string, category *string) (*domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE trip_id = $1 AND COALESCE(category, '') = COALESCE($2, '')
	`

	return scanBudget(r.pool.QueryRow(ctx, query, tripID, category))
}

// ListByTrip retrieves every budget of a trip, trip-wide first.
func (r *BudgetRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE trip_id = $1
		ORDER BY category NULLS FIRST
	`

	rows, err := r.pool.Query(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}

	return budgets, rows.Err()
}

// ApplySpend adds delta to the spent amount of the category budget and
// the trip-wide budget as single in-place increments, so concurrent
// postings serialize on the row without read-modify-write races.
// Missing budgets are skipped. Returns the post-increment rows.
func (r *BudgetRepository) ApplySpend(ctx context.Context, tx usecase.Transaction, tripID string, category *string, delta decimal.Decimal) ([]*domain.Budget, error) {
	query := `
		UPDATE budgets
		SET spent_amount = spent_amount + $3, updated_at = $4
		WHERE trip_id = $1
		  AND (category IS NULL OR category = $2)
		RETURNING ` + budgetColumns

	rows, err := pgxTx(tx).Query(ctx, query, tripID, category, decimalToNumeric(delta), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var touched []*domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		touched = append(touched, b)
	}

	return touched, rows.Err()
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		b        domain.Budget
		total    pgtype.Numeric
		spent    pgtype.Numeric
		warning  pgtype.Numeric
		critical pgtype.Numeric
		currency string
	)

	err := row.Scan(
		&b.ID,
		&b.TripID,
		&b.Category,
		&total,
		&currency,
		&spent,
		&warning,
		&critical,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}

		return nil, err
	}

	b.Total = domain.Money{Amount: numericToDecimal(total), Currency: currency}
	b.Spent = domain.Money{Amount: numericToDecimal(spent), Currency: currency}
	b.Warning = numericToDecimal(warning)
	b.Critical = numericToDecimal(critical)

	return &b, nil
}
