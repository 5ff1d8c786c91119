package tripdirectory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/wanderlog/tripledger/internal/domain"
)

// HTTPDirectory resolves trip membership and base currency from the
// trip service over HTTP.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDirectory creates a directory client against the given base URL.
func NewHTTPDirectory(baseURL string) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type tripResponse struct {
	ID           string   `json:"id"`
	BaseCurrency string   `json:"base_currency"`
	Members      []string `json:"members"`
}

// IsMember reports whether the user belongs to the trip.
func (d *HTTPDirectory) IsMember(ctx context.Context, tripID, userID string) (bool, error) {
	trip, err := d.fetchTrip(ctx, tripID)
	if err != nil {
		return false, err
	}

	for _, m := range trip.Members {
		if m == userID {
			return true, nil
		}
	}

	return false, nil
}

// ListMembers returns the trip's current member user IDs.
func (d *HTTPDirectory) ListMembers(ctx context.Context, tripID string) ([]string, error) {
	trip, err := d.fetchTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return trip.Members, nil
}

// BaseCurrency returns the trip's base currency code.
func (d *HTTPDirectory) BaseCurrency(ctx context.Context, tripID string) (string, error) {
	trip, err := d.fetchTrip(ctx, tripID)
	if err != nil {
		return "", err
	}

	return trip.BaseCurrency, nil
}

func (d *HTTPDirectory) fetchTrip(ctx context.Context, tripID string) (*tripResponse, error) {
	var trip *tripResponse

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = 3 * time.Second

	err := backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/trips/"+tripID, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := d.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("%w: %s", domain.ErrTripNotFound, tripID))
		case resp.StatusCode >= 500:
			return fmt.Errorf("trip directory returned %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("trip directory returned %d", resp.StatusCode))
		}

		var t tripResponse
		if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
			return backoff.Permanent(fmt.Errorf("decode trip response: %w", err))
		}

		trip = &t
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, err
	}

	return trip, nil
}

// StaticDirectory serves a fixed member list and base currency. It
// backs single-trip deployments and local development, where no trip
// service is running.
type StaticDirectory struct {
	members      map[string][]string
	defaults     []string
	baseCurrency string
}

// NewStaticDirectory creates a directory answering every trip with the
// given members and base currency.
func NewStaticDirectory(members []string, baseCurrency string) *StaticDirectory {
	return &StaticDirectory{
		members:      make(map[string][]string),
		defaults:     members,
		baseCurrency: baseCurrency,
	}
}

// SetTrip overrides the member list for one trip.
func (d *StaticDirectory) SetTrip(tripID string, members []string) {
	d.members[tripID] = members
}

// IsMember reports whether the user belongs to the trip.
func (d *StaticDirectory) IsMember(ctx context.Context, tripID, userID string) (bool, error) {
	members, err := d.ListMembers(ctx, tripID)
	if err != nil {
		return false, err
	}

	for _, m := range members {
		if m == userID {
			return true, nil
		}
	}

	return false, nil
}

// ListMembers returns the trip's member user IDs.
func (d *StaticDirectory) ListMembers(_ context.Context, tripID string) ([]string, error) {
	if members, ok := d.members[tripID]; ok {
		return members, nil
	}

	return d.defaults, nil
}

// BaseCurrency returns the configured base currency.
func (d *StaticDirectory) BaseCurrency(context.Context, string) (string, error) {
	return d.baseCurrency, nil
}
