package app

import (
	"testing"

	"brain-brawl-service/internal/domain"
)

func TestMatchmakerPairsOldestFirst(t *testing.T) {
	m := NewMatchmaker()
	m.Enqueue("a", "a", "blue", make(chan domain.Event, 1))
	m.Enqueue("b", "b", "red", make(chan domain.Event, 1))
	m.Enqueue("c", "c", "green", make(chan domain.Event, 1))

	first, second, ok := m.TakePair()
	if !ok {
		t.Fatal("expected a pair")
	}
	if first.playerID != "a" || second.playerID != "b" {
		t.Fatalf("expected a+b, got %s+%s", first.playerID, second.playerID)
	}
	if m.Waiting() != 1 {
		t.Fatalf("expected c still queued, got %d waiters", m.Waiting())
	}
	if _, _, ok := m.TakePair(); ok {
		t.Fatal("single waiter must not pair")
	}
}

func TestMatchmakerEnqueueIsIdempotent(t *testing.T) {
	m := NewMatchmaker()
	ch1 := make(chan domain.Event, 1)
	ch2 := make(chan domain.Event, 1)
	m.Enqueue("a", "a", "blue", ch1)
	m.Enqueue("b", "b", "red", make(chan domain.Event, 1))
	m.Enqueue("a", "a", "yellow", ch2) // reconnect replaces the entry in place

	if m.Waiting() != 2 {
		t.Fatalf("expected 2 waiters, got %d", m.Waiting())
	}
	first, second, ok := m.TakePair()
	if !ok {
		t.Fatal("expected a pair")
	}
	if first.playerID != "a" || first.character != "yellow" || first.outbox != ch2 {
		t.Fatalf("expected refreshed entry for a to keep its position, got %+v", first)
	}
	if second.playerID != "b" {
		t.Fatalf("expected b second, got %s", second.playerID)
	}
}

func TestMatchmakerRemove(t *testing.T) {
	m := NewMatchmaker()
	m.Enqueue("a", "a", "", make(chan domain.Event, 1))
	m.Enqueue("b", "b", "", make(chan domain.Event, 1))
	m.Remove("a")

	if m.Waiting() != 1 {
		t.Fatalf("expected 1 waiter, got %d", m.Waiting())
	}
	if _, _, ok := m.TakePair(); ok {
		t.Fatal("must not pair after removal")
	}
}
