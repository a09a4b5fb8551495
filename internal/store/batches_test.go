package store

import (
	"testing"
	"time"
)

func TestBatches_CreateAndGet(t *testing.T) {
	s := New(0)
	b := s.Create("Acme", []string{"A", "B"})
	if b.ID == "" {
		t.Fatal("expected a batch id")
	}
	if b.Company != "Acme" || len(b.Titles) != 2 {
		t.Fatalf("batch fields wrong: %+v", b)
	}

	got, ok := s.Get(b.ID)
	if !ok || got != b {
		t.Fatal("Get did not return the created batch")
	}
	if _, ok := s.Get("nope"); ok {
		t.Fatal("unknown id must not resolve")
	}
}

func TestBatches_IDsDoNotCollide(t *testing.T) {
	s := New(0)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		b := s.Create("Acme", []string{"A"})
		if seen[b.ID] {
			t.Fatalf("duplicate batch id %s", b.ID)
		}
		seen[b.ID] = true
	}
}

func TestBatches_EvictExpired(t *testing.T) {
	s := New(10 * time.Minute)
	old := s.Create("Old Co", []string{"A"})
	old.CreatedAt = time.Now().Add(-time.Hour)
	fresh := s.Create("Fresh Co", []string{"A"})

	if n := s.evictExpired(time.Now()); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if _, ok := s.Get(old.ID); ok {
		t.Fatal("expired batch still present")
	}
	if _, ok := s.Get(fresh.ID); !ok {
		t.Fatal("fresh batch was evicted")
	}
}

func TestBatches_ZeroTTLNeverEvicts(t *testing.T) {
	s := New(0)
	b := s.Create("Acme", []string{"A"})
	b.CreatedAt = time.Now().Add(-24 * time.Hour)
	// Janitor is a no-op at zero TTL, but evictExpired must also be safe.
	if n := s.evictExpired(time.Now()); n != 0 {
		t.Fatalf("zero TTL evicted %d", n)
	}
	if _, ok := s.Get(b.ID); !ok {
		t.Fatal("batch evicted despite zero TTL")
	}
}
