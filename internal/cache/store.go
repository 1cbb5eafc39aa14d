package cache

import "context"

// Store is the narrow persistence surface the aggregator needs. Lookup
// returns the most recently updated entry for the key or nil. Upsert merges
// rating/summary into prev (nil prev creates the entry), keeping existing
// values when the new one is nil, and stamps LastUpdated.
//
// Both operations may fail; callers treat cache failures as advisory and
// never let them fail a request.
type Store interface {
	LookupLatest(ctx context.Context, professorName, courseID string) (*Entry, error)
	Upsert(ctx context.Context, prev *Entry, professorName, courseID string, rating *float64, summary *string) error
}
