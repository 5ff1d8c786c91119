package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

// Transient PostgreSQL abort codes. Concurrent expense writes against
// the same trip contend on the shared budget rows, which can fail
// serialization or deadlock under load.
const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlockDetected     = "40P01"
)

// Retrier implements usecase.Retrier: it re-runs an aborted ledger
// transaction with exponential backoff until it succeeds or the
// attempt budget is spent.
type Retrier struct {
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsed      time.Duration
	logger          *slog.Logger
}

// NewRetrier creates a Retrier with defaults sized for row-lock
// contention: a few quick attempts, never more than ten seconds total.
func NewRetrier(logger *slog.Logger) *Retrier {
	if logger == nil {
		logger = slog.Default()
	}

	return &Retrier{
		maxAttempts:     3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		maxElapsed:      10 * time.Second,
		logger:          logger,
	}
}

// Retry runs operation, re-running it on transient abort codes. Any
// other error fails fast.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialInterval
	policy.MaxInterval = r.maxInterval
	policy.MaxElapsedTime = r.maxElapsed

	attempts := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !retryable(err) {
			return backoff.Permanent(err)
		}

		attempts++
		if attempts > r.maxAttempts {
			return backoff.Permanent(err)
		}

		r.logger.Warn("transient ledger write conflict, retrying",
			"error", err,
			"attempt", attempts,
		)

		return err
	}, backoff.WithContext(policy, ctx))
}

// retryable reports whether err is a PostgreSQL abort the transaction
// can simply be re-run against.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == pgErrSerializationFailure || pgErr.Code == pgErrDeadlockDetected
}
