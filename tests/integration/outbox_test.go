package integration

import (
	"context"
	"testing"
	"time"

	"github.com/wanderlog/tripledger/internal/domain"
	"github.com/wanderlog/tripledger/tests/testutil"
)

func TestOutboxEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	members := []string{"alice", "bob"}
	stack := testutil.NewStack(testDB.Pool, members, "EUR", nil)

	t.Run("posting writes an event in the same transaction", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		expense, err := stack.Ledger.PostExpense(ctx, postInput("rome-2026", "alice", "Dinner", "40", "EUR", members))
		if err != nil {
			t.Fatalf("failed to post expense: %v", err)
		}

		events, err := stack.OutboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to read outbox: %v", err)
		}

		if len(events) != 1 {
			t.Fatalf("expected 1 unpublished event, got %d", len(events))
		}

		event := events[0]
		if event.EventType != domain.EventTypeExpenseCreated {
			t.Errorf("expected %s, got %s", domain.EventTypeExpenseCreated, event.EventType)
		}
		if event.AggregateID != expense.ID {
			t.Errorf("expected aggregate %s, got %s", expense.ID, event.AggregateID)
		}
		if event.TripID != "rome-2026" {
			t.Errorf("expected trip rome-2026, got %s", event.TripID)
		}
		if event.Payload["expense_id"] != expense.ID {
			t.Errorf("expected payload expense_id %s, got %v", expense.ID, event.Payload["expense_id"])
		}
	})

	t.Run("failed post leaves no event behind", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		if _, err := stack.Ledger.PostExpense(ctx, postInput("rome-2026", "mallory", "Drinks", "20", "EUR", members)); err == nil {
			t.Fatal("expected post to fail")
		}

		events, err := stack.OutboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to read outbox: %v", err)
		}
		if len(events) != 0 {
			t.Errorf("expected empty outbox, got %d events", len(events))
		}
	})

	t.Run("published events drop out and get pruned", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		if _, err := stack.Ledger.PostExpense(ctx, postInput("rome-2026", "alice", "Tickets", "25", "EUR", members)); err != nil {
			t.Fatalf("failed to post expense: %v", err)
		}

		events, err := stack.OutboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to read outbox: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}

		if err := stack.OutboxRepo.MarkPublished(ctx, events[0].ID, time.Now().UTC()); err != nil {
			t.Fatalf("failed to mark published: %v", err)
		}

		remaining, err := stack.OutboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to re-read outbox: %v", err)
		}
		if len(remaining) != 0 {
			t.Errorf("expected no unpublished events, got %d", len(remaining))
		}

		if err := stack.OutboxRepo.DeletePublished(ctx, time.Now().UTC().Add(time.Minute)); err != nil {
			t.Fatalf("failed to prune outbox: %v", err)
		}

		var count int
		if err := testDB.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM outbox_events").Scan(&count); err != nil {
			t.Fatalf("failed to count events: %v", err)
		}
		if count != 0 {
			t.Errorf("expected outbox emptied after prune, got %d rows", count)
		}
	})

	t.Run("events drain in creation order", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		titles := []string{"First", "Second", "Third"}
		ids := make([]string, 0, len(titles))
		for _, title := range titles {
			expense, err := stack.Ledger.PostExpense(ctx, postInput("rome-2026", "alice", title, "10", "EUR", members))
			if err != nil {
				t.Fatalf("failed to post expense: %v", err)
			}
			ids = append(ids, expense.ID)
		}

		events, err := stack.OutboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to read outbox: %v", err)
		}
		if len(events) != 3 {
			t.Fatalf("expected 3 events, got %d", len(events))
		}

		for i, event := range events {
			if event.AggregateID != ids[i] {
				t.Errorf("event %d: expected aggregate %s, got %s", i, ids[i], event.AggregateID)
			}
		}
	})
}
