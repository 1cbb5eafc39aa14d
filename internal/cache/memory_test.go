package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreLookupMiss(t *testing.T) {
	s := NewMemoryStore()

	entry, err := s.LookupLatest(context.Background(), "Smith", "CS 101")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected nil for unknown key, got %+v", entry)
	}
}

func TestMemoryStoreUpsertRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rating := 4.0
	if err := s.Upsert(ctx, nil, "Smith", "CS 101", &rating, nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entry, err := s.LookupLatest(ctx, "Smith", "CS 101")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if entry == nil || entry.AvgRating == nil || *entry.AvgRating != 4.0 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.LastUpdated.IsZero() {
		t.Fatalf("LastUpdated not stamped")
	}

	// Partial update: new summary, nil rating must not erase the rating.
	summary := "Top threads: a"
	if err := s.Upsert(ctx, entry, "Smith", "CS 101", nil, &summary); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	entry, err = s.LookupLatest(ctx, "Smith", "CS 101")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if entry.AvgRating == nil || *entry.AvgRating != 4.0 {
		t.Fatalf("rating erased by partial update: %+v", entry)
	}
	if entry.SentimentSummary == nil || *entry.SentimentSummary != "Top threads: a" {
		t.Fatalf("summary not written: %+v", entry)
	}
	if s.Len() != 1 {
		t.Fatalf("expected a single entry per key, got %d", s.Len())
	}
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	r1, r2 := 4.0, 2.0
	if err := s.Upsert(ctx, nil, "Smith", "CS 101", &r1, nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert(ctx, nil, "Smith", "CS 201", &r2, nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entry, _ := s.LookupLatest(ctx, "Smith", "CS 101")
	if entry == nil || *entry.AvgRating != 4.0 {
		t.Fatalf("cross-key contamination: %+v", entry)
	}
}

func TestMemoryStoreReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rating := 4.0
	_ = s.Upsert(ctx, nil, "Smith", "CS 101", &rating, nil)

	entry, _ := s.LookupLatest(ctx, "Smith", "CS 101")
	entry.CourseID = "mutated"

	again, _ := s.LookupLatest(ctx, "Smith", "CS 101")
	if again.CourseID != "CS 101" {
		t.Fatalf("store leaked internal state: %+v", again)
	}
}

func TestMemoryStoreStampsCurrentTime(t *testing.T) {
	s := NewMemoryStore()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	_ = s.Upsert(context.Background(), nil, "Smith", "CS 101", nil, nil)

	entry, _ := s.LookupLatest(context.Background(), "Smith", "CS 101")
	if !entry.LastUpdated.Equal(fixed) {
		t.Fatalf("LastUpdated = %v, want %v", entry.LastUpdated, fixed)
	}
}
