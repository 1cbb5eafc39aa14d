// Package cache persists the most recent composite result per
// (professor, course) pair so a dead upstream can fall back to the last
// known rating. Backends: in-memory map (dev), Redis, Postgres.
package cache

import "time"

// DefaultTTL is the age beyond which a cached rating no longer counts as
// fresh. Staleness is a read-side predicate; entries are never evicted.
const DefaultTTL = 14 * 24 * time.Hour

// Entry is one cached aggregation result. Rating and summary are pointers
// because either may never have been observed for this key.
type Entry struct {
	ProfessorName    string    `json:"professorName"`
	CourseID         string    `json:"courseId"`
	AvgRating        *float64  `json:"avgRating,omitempty"`
	SentimentSummary *string   `json:"sentimentSummary,omitempty"`
	LastUpdated      time.Time `json:"lastUpdated"`

	// id is the row id when the entry was loaded from Postgres, so Upsert
	// can update in place. Zero elsewhere.
	id int64
}

// Fresh reports whether the entry was updated within ttl of now. An entry
// that was never stamped is never fresh.
func (e *Entry) Fresh(now time.Time, ttl time.Duration) bool {
	if e == nil || e.LastUpdated.IsZero() {
		return false
	}
	return now.Sub(e.LastUpdated) < ttl
}

// merged returns a copy of prev (or a new entry) with rating and summary
// overwritten only when the new value is non-nil, stamped at now. This is the
// single merge rule shared by every backend: omission never erases a value.
func merged(prev *Entry, professorName, courseID string, rating *float64, summary *string, now time.Time) Entry {
	e := Entry{ProfessorName: professorName, CourseID: courseID}
	if prev != nil {
		e = *prev
		e.ProfessorName = professorName
		e.CourseID = courseID
	}
	if rating != nil {
		e.AvgRating = rating
	}
	if summary != nil {
		e.SentimentSummary = summary
	}
	e.LastUpdated = now
	return e
}
