package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wanderlog/tripledger/internal/domain"
	"github.com/wanderlog/tripledger/internal/usecase"
)

const settlementColumns = `
	id, trip_id, from_user_id, to_user_id,
	amount, currency, base_amount, base_currency, exchange_rate,
	method, reference, notes, status, completed_at,
	created_at, updated_at
`

// SettlementRepository implements usecase.SettlementRepository.
type SettlementRepository struct {
	pool *pgxpool.Pool
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

// Create inserts a settlement within a transaction.
func (r *SettlementRepository) Create(ctx context.Context, tx usecase.Transaction, settlement *domain.Settlement) error {
	query := `
		INSERT INTO settlements (` + settlementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := pgxTx(tx).Exec(ctx, query,
		settlement.ID,
		settlement.TripID,
		settlement.FromUserID,
		settlement.ToUserID,
		decimalToNumeric(settlement.Amount.Amount),
		settlement.Amount.Currency,
		decimalToNumeric(settlement.BaseAmount.Amount),
		settlement.BaseAmount.Currency,
		decimalToNumeric(settlement.ExchangeRate),
		settlement.Method,
		settlement.Reference,
		settlement.Notes,
		string(settlement.Status),
		settlement.CompletedAt,
		settlement.CreatedAt,
		settlement.UpdatedAt,
	)

	return err
}

// GetByID retrieves a settlement by ID.
func (r *SettlementRepository) GetByID(ctx context.Context, id string) (*domain.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE id = $1`

	return scanSettlement(r.pool.QueryRow(ctx, query, id))
}

// ListByTrip retrieves a trip's settlements, newest first.
func (r *SettlementRepository) ListByTrip(ctx context.Context, tripID string, limit, offset int) ([]*domain.Settlement, error) {
	query := `
		SELECT ` + settlementColumns + `
		FROM settlements
		WHERE trip_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, tripID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settlements []*domain.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, s)
	}

	return settlements, rows.Err()
}

func scanSettlement(row pgx.Row) (*domain.Settlement, error) {
	var (
		s            domain.Settlement
		amount       pgtype.Numeric
		baseAmount   pgtype.Numeric
		rate         pgtype.Numeric
		currency     string
		baseCurrency string
	)

	err := row.Scan(
		&s.ID,
		&s.TripID,
		&s.FromUserID,
		&s.ToUserID,
		&amount,
		&currency,
		&baseAmount,
		&baseCurrency,
		&rate,
		&s.Method,
		&s.Reference,
		&s.Notes,
		&s.Status,
		&s.CompletedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettlementNotFound
		}

		return nil, err
	}

	s.Amount = domain.Money{Amount: numericToDecimal(amount), Currency: currency}
	s.BaseAmount = domain.Money{Amount: numericToDecimal(baseAmount), Currency: baseCurrency}
	s.ExchangeRate = numericToDecimal(rate)

	return &s, nil
}
