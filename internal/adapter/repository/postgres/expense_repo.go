package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wanderlog/tripledger/internal/domain"
	"github.com/wanderlog/tripledger/internal/usecase"
)

const expenseColumns = `
	id, trip_id, created_by, payer_id, title,
	amount, currency, base_amount, base_currency, exchange_rate,
	category, subcategory, tags, expense_date, location,
	participants, split_policy, split_params, receipt_refs, status, verified,
	created_at, updated_at
`

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// Create inserts a new expense within a transaction.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	splitParams, err := json.Marshal(expense.SplitParams)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err = pgxTx(tx).Exec(ctx, query,
		expense.ID,
		expense.TripID,
		expense.CreatedBy,
		expense.PayerID,
		expense.Title,
		decimalToNumeric(expense.Amount.Amount),
		expense.Amount.Currency,
		decimalToNumeric(expense.BaseAmount.Amount),
		expense.BaseAmount.Currency,
		decimalToNumeric(expense.ExchangeRate),
		expense.Category,
		expense.Subcategory,
		expense.Tags,
		expense.ExpenseDate,
		expense.Location,
		expense.Participants,
		string(expense.SplitPolicy),
		splitParams,
		expense.ReceiptRefs,
		string(expense.Status),
		expense.Verified,
		expense.CreatedAt,
		expense.UpdatedAt,
	)

	return err
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	return scanExpense(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an expense with a row lock held for the
// rest of the transaction.
func (r *ExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 FOR UPDATE`

	return scanExpense(pgxTx(tx).QueryRow(ctx, query, id))
}

// Update rewrites an expense row within a transaction.
func (r *ExpenseRepository) Update(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	splitParams, err := json.Marshal(expense.SplitParams)
	if err != nil {
		return err
	}

	query := `
		UPDATE expenses SET
			payer_id = $2, title = $3,
			amount = $4, currency = $5, base_amount = $6, base_currency = $7, exchange_rate = $8,
			category = $9, subcategory = $10, tags = $11, expense_date = $12, location = $13,
			participants = $14, split_policy = $15, split_params = $16, receipt_refs = $17,
			status = $18, verified = $19, updated_at = $20
		WHERE id = $1
	`

	tag, err := pgxTx(tx).Exec(ctx, query,
		expense.ID,
		expense.PayerID,
		expense.Title,
		decimalToNumeric(expense.Amount.Amount),
		expense.Amount.Currency,
		decimalToNumeric(expense.BaseAmount.Amount),
		expense.BaseAmount.Currency,
		decimalToNumeric(expense.ExchangeRate),
		expense.Category,
		expense.Subcategory,
		expense.Tags,
		expense.ExpenseDate,
		expense.Location,
		expense.Participants,
		string(expense.SplitPolicy),
		splitParams,
		expense.ReceiptRefs,
		string(expense.Status),
		expense.Verified,
		expense.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// Delete removes an expense row within a transaction.
func (r *ExpenseRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := pgxTx(tx).Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// ListByTrip retrieves a trip's expenses, newest expense date first.
func (r *ExpenseRepository) ListByTrip(ctx context.Context, tripID string, filter usecase.ExpenseFilter) ([]*domain.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE trip_id = $1
		  AND ($2 = '' OR category = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY expense_date DESC, id DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.pool.Query(ctx, query, tripID, filter.Category, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		e            domain.Expense
		amount       pgtype.Numeric
		baseAmount   pgtype.Numeric
		rate         pgtype.Numeric
		currency     string
		baseCurrency string
		splitParams  []byte
	)

	err := row.Scan(
		&e.ID,
		&e.TripID,
		&e.CreatedBy,
		&e.PayerID,
		&e.Title,
		&amount,
		&currency,
		&baseAmount,
		&baseCurrency,
		&rate,
		&e.Category,
		&e.Subcategory,
		&e.Tags,
		&e.ExpenseDate,
		&e.Location,
		&e.Participants,
		&e.SplitPolicy,
		&splitParams,
		&e.ReceiptRefs,
		&e.Status,
		&e.Verified,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}

		return nil, err
	}

	e.Amount = domain.Money{Amount: numericToDecimal(amount), Currency: currency}
	e.BaseAmount = domain.Money{Amount: numericToDecimal(baseAmount), Currency: baseCurrency}
	e.ExchangeRate = numericToDecimal(rate)

	if len(splitParams) > 0 {
		if err := json.Unmarshal(splitParams, &e.SplitParams); err != nil {
			return nil, err
		}
	}

	return &e, nil
}

// pgxTx unwraps the pgx transaction behind the usecase abstraction.
func pgxTx(tx usecase.Transaction) pgx.Tx {
	return tx.(*Tx).PgxTx()
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}
