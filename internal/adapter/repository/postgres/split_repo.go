package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wanderlog/tripledger/internal/domain"
	"github.com/wanderlog/tripledger/internal/usecase"
)

const splitColumns = `
	id, expense_id, user_id, payer_id,
	amount, currency, base_amount, base_currency,
	status, created_at, updated_at
`

// SplitRepository implements usecase.SplitRepository.
type SplitRepository struct {
	pool *pgxpool.Pool
}

// NewSplitRepository creates a new SplitRepository.
func NewSplitRepository(pool *pgxpool.Pool) *SplitRepository {
	return &SplitRepository{pool: pool}
}

// CreateBatch inserts all splits of an expense within a transaction.
func (r *SplitRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, splits []*domain.ExpenseSplit) error {
	query := `
		INSERT INTO expense_splits (` + splitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for _, s := range splits {
		batch.Queue(query,
			s.ID,
			s.ExpenseID,
			s.UserID,
			s.PayerID,
			decimalToNumeric(s.Amount.Amount),
			s.Amount.Currency,
			decimalToNumeric(s.BaseAmount.Amount),
			s.BaseAmount.Currency,
			string(s.Status),
			s.CreatedAt,
			s.UpdatedAt,
		)
	}

	return pgxTx(tx).SendBatch(ctx, batch).Close()
}

// DeleteByExpense removes all splits of an expense within a transaction.
func (r *SplitRepository) DeleteByExpense(ctx context.Context, tx usecase.Transaction, expenseID string) error {
	_, err := pgxTx(tx).Exec(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, expenseID)

	return err
}

// GetByExpense retrieves the splits of an expense.
func (r *SplitRepository) GetByExpense(ctx context.Context, expenseID string) ([]*domain.ExpenseSplit, error) {
	query := `
		SELECT ` + splitColumns + `
		FROM expense_splits
		WHERE expense_id = $1
		ORDER BY user_id
	`

	rows, err := r.pool.Query(ctx, query, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var splits []*domain.ExpenseSplit
	for rows.Next() {
		s, err := scanSplit(rows)
		if err != nil {
			return nil, err
		}
		splits = append(splits, s)
	}

	return splits, rows.Err()
}

// GetByID retrieves a single split.
func (r *SplitRepository) GetByID(ctx context.Context, id string) (*domain.ExpenseSplit, error) {
	query := `SELECT ` + splitColumns + ` FROM expense_splits WHERE id = $1`

	return scanSplit(r.pool.QueryRow(ctx, query, id))
}

// UpdateStatus moves a split to a new workflow status.
func (r *SplitRepository) UpdateStatus(ctx context.Context, id string, status domain.SplitStatus, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE expense_splits SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), updatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

func scanSplit(row pgx.Row) (*domain.ExpenseSplit, error) {
	var (
		s            domain.ExpenseSplit
		amount       pgtype.Numeric
		baseAmount   pgtype.Numeric
		currency     string
		baseCurrency string
	)

	err := row.Scan(
		&s.ID,
		&s.ExpenseID,
		&s.UserID,
		&s.PayerID,
		&amount,
		&currency,
		&baseAmount,
		&baseCurrency,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}

		return nil, err
	}

	s.Amount = domain.Money{Amount: numericToDecimal(amount), Currency: currency}
	s.BaseAmount = domain.Money{Amount: numericToDecimal(baseAmount), Currency: baseCurrency}

	return &s, nil
}
