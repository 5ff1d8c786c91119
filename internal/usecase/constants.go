package usecase

import "time"

const (
	// DefaultPageSize bounds list queries when the caller gives no limit.
	DefaultPageSize = 20
	// MaxPageSize caps list queries regardless of what the caller asks for.
	MaxPageSize = 100

	// balanceCacheTTL bounds staleness of cached trip balances; every
	// ledger and settlement mutation also invalidates eagerly.
	balanceCacheTTL = 5 * time.Minute
)

// balanceCacheKey is the cache key for a trip's computed balances.
func balanceCacheKey(tripID string) string {
	return "balances:" + tripID
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
