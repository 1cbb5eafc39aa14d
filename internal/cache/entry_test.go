package cache

import (
	"testing"
	"time"
)

func TestEntryFresh(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		entry *Entry
		want  bool
	}{
		{"nil entry", nil, false},
		{"never stamped", &Entry{}, false},
		{"just under ttl", &Entry{LastUpdated: now.Add(-(14*24*time.Hour - time.Hour))}, true},
		{"just over ttl", &Entry{LastUpdated: now.Add(-(14*24*time.Hour + time.Hour))}, false},
		{"exactly ttl", &Entry{LastUpdated: now.Add(-14 * 24 * time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Fresh(now, DefaultTTL); got != tt.want {
				t.Fatalf("Fresh = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergedKeepsValuesOnNil(t *testing.T) {
	now := time.Now()
	rating := 4.2
	summary := "Top threads: a | b"
	prev := &Entry{
		ProfessorName:    "Smith, Jane",
		CourseID:         "CS 101",
		AvgRating:        &rating,
		SentimentSummary: &summary,
		LastUpdated:      now.Add(-time.Hour),
	}

	e := merged(prev, "Smith, Jane", "CS 101", nil, nil, now)

	if e.AvgRating == nil || *e.AvgRating != 4.2 {
		t.Fatalf("rating erased by nil update: %v", e.AvgRating)
	}
	if e.SentimentSummary == nil || *e.SentimentSummary != summary {
		t.Fatalf("summary erased by nil update: %v", e.SentimentSummary)
	}
	if !e.LastUpdated.Equal(now) {
		t.Fatalf("LastUpdated not stamped: %v", e.LastUpdated)
	}
}

func TestMergedOverwritesWithNewValues(t *testing.T) {
	now := time.Now()
	oldRating := 4.2
	prev := &Entry{ProfessorName: "Smith", CourseID: "CS 101", AvgRating: &oldRating}

	newRating := 3.1
	newSummary := "Top threads: c"
	e := merged(prev, "Smith", "CS 101", &newRating, &newSummary, now)

	if *e.AvgRating != 3.1 {
		t.Fatalf("rating = %v, want 3.1", *e.AvgRating)
	}
	if *e.SentimentSummary != "Top threads: c" {
		t.Fatalf("summary = %v", *e.SentimentSummary)
	}
}

func TestMergedCreatesEntry(t *testing.T) {
	now := time.Now()
	rating := 4.5

	e := merged(nil, "Smith", "CS 101", &rating, nil, now)

	if e.ProfessorName != "Smith" || e.CourseID != "CS 101" {
		t.Fatalf("key fields not set: %+v", e)
	}
	if e.AvgRating == nil || *e.AvgRating != 4.5 {
		t.Fatalf("rating not set: %v", e.AvgRating)
	}
	if e.SentimentSummary != nil {
		t.Fatalf("summary should stay unset")
	}
}
