package tripdirectory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wanderlog/tripledger/internal/domain"
)

func TestHTTPDirectoryFetchesTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trips/trip-1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "trip-1",
			"base_currency": "EUR",
			"members":       []string{"alice", "bob"},
		})
	}))
	defer srv.Close()

	dir := NewHTTPDirectory(srv.URL)

	members, err := dir.ListMembers(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 2 || members[0] != "alice" {
		t.Fatalf("unexpected members %v", members)
	}

	currency, err := dir.BaseCurrency(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("BaseCurrency failed: %v", err)
	}
	if currency != "EUR" {
		t.Fatalf("expected EUR, got %s", currency)
	}

	ok, err := dir.IsMember(context.Background(), "trip-1", "bob")
	if err != nil || !ok {
		t.Fatalf("expected bob to be a member, got ok=%v err=%v", ok, err)
	}

	ok, err = dir.IsMember(context.Background(), "trip-1", "mallory")
	if err != nil || ok {
		t.Fatalf("expected mallory not to be a member, got ok=%v err=%v", ok, err)
	}
}

func TestHTTPDirectoryNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := NewHTTPDirectory(srv.URL)

	_, err := dir.ListMembers(context.Background(), "missing")
	if !errors.Is(err, domain.ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound, got %v", err)
	}
}

func TestHTTPDirectoryRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "trip-1",
			"base_currency": "USD",
			"members":       []string{"alice"},
		})
	}))
	defer srv.Close()

	dir := NewHTTPDirectory(srv.URL)

	members, err := dir.ListMembers(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if attempts < 2 {
		t.Fatalf("expected at least 2 attempts, got %d", attempts)
	}
	if len(members) != 1 {
		t.Fatalf("unexpected members %v", members)
	}
}

func TestStaticDirectory(t *testing.T) {
	dir := NewStaticDirectory([]string{"alice", "bob"}, "USD")
	dir.SetTrip("trip-2", []string{"carol"})

	members, err := dir.ListMembers(context.Background(), "trip-1")
	if err != nil || len(members) != 2 {
		t.Fatalf("expected default members, got %v err=%v", members, err)
	}

	members, err = dir.ListMembers(context.Background(), "trip-2")
	if err != nil || len(members) != 1 || members[0] != "carol" {
		t.Fatalf("expected trip-2 override, got %v err=%v", members, err)
	}

	ok, err := dir.IsMember(context.Background(), "trip-2", "alice")
	if err != nil || ok {
		t.Fatalf("expected alice not in trip-2, got ok=%v err=%v", ok, err)
	}

	currency, err := dir.BaseCurrency(context.Background(), "trip-1")
	if err != nil || currency != "USD" {
		t.Fatalf("expected USD, got %s err=%v", currency, err)
	}
}
