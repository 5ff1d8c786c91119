package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
)

// HTTPConverter fetches exchange rates from a rate service. Rates are
// cached briefly so a burst of postings in the same currency pair does
// not hammer the service; the rate an expense freezes is whatever was
// current when it was posted.
type HTTPConverter struct {
	baseURL  string
	client   *http.Client
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[string]cachedRate
}

type cachedRate struct {
	rate      decimal.Decimal
	fetchedAt time.Time
}

// NewHTTPConverter creates a converter client against the given base URL.
func NewHTTPConverter(baseURL string) *HTTPConverter {
	return &HTTPConverter{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 5 * time.Second},
		cacheTTL: time.Minute,
		cache:    make(map[string]cachedRate),
	}
}

type rateResponse struct {
	Rate decimal.Decimal `json:"rate"`
}

// Convert converts amount from one currency to another. It returns the
// converted amount and the rate used.
func (c *HTTPConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error) {
	if from == to {
		return amount, decimal.NewFromInt(1), nil
	}

	rate, err := c.rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return amount.Mul(rate), rate, nil
}

func (c *HTTPConverter) rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	key := from + "/" + to

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok && time.Since(cached.fetchedAt) < c.cacheTTL {
		c.mu.Unlock()
		return cached.rate, nil
	}
	c.mu.Unlock()

	var rate decimal.Decimal

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = 3 * time.Second

	err := backoff.Retry(func() error {
		q := url.Values{}
		q.Set("from", from)
		q.Set("to", to)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rates?"+q.Encode(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("rate service returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("rate service returned %d", resp.StatusCode))
		}

		var r rateResponse
		if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
			return backoff.Permanent(fmt.Errorf("decode rate response: %w", err))
		}
		if !r.Rate.IsPositive() {
			return backoff.Permanent(fmt.Errorf("rate service returned non-positive rate %s for %s", r.Rate, key))
		}

		rate = r.Rate
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return decimal.Zero, err
	}

	c.mu.Lock()
	c.cache[key] = cachedRate{rate: rate, fetchedAt: time.Now()}
	c.mu.Unlock()

	return rate, nil
}

// StaticConverter converts with a fixed rate table. Pairs not in the
// table fall back to the identity rate, which keeps single-currency
// trips working without a rate service.
type StaticConverter struct {
	rates map[string]decimal.Decimal
}

// NewStaticConverter creates a converter over a fixed rate table keyed
// by "FROM/TO" currency pairs.
func NewStaticConverter(rates map[string]decimal.Decimal) *StaticConverter {
	if rates == nil {
		rates = make(map[string]decimal.Decimal)
	}
	return &StaticConverter{rates: rates}
}

// Convert converts amount using the fixed table.
func (c *StaticConverter) Convert(_ context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error) {
	if from == to {
		return amount, decimal.NewFromInt(1), nil
	}

	if rate, ok := c.rates[from+"/"+to]; ok {
		return amount.Mul(rate), rate, nil
	}

	if inverse, ok := c.rates[to+"/"+from]; ok && inverse.IsPositive() {
		rate := decimal.NewFromInt(1).Div(inverse)
		return amount.Mul(rate), rate, nil
	}

	return amount, decimal.NewFromInt(1), nil
}
