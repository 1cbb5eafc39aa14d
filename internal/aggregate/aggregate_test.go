package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"coursecompass-backend/internal/cache"
)

type stubStore struct {
	entry     *cache.Entry
	lookupErr error
	upsertErr error

	upsertCalls   int
	upsertPrev    *cache.Entry
	upsertRating  *float64
	upsertSummary *string
}

func (s *stubStore) LookupLatest(context.Context, string, string) (*cache.Entry, error) {
	return s.entry, s.lookupErr
}

func (s *stubStore) Upsert(_ context.Context, prev *cache.Entry, _, _ string, rating *float64, summary *string) error {
	s.upsertCalls++
	s.upsertPrev = prev
	s.upsertRating = rating
	s.upsertSummary = summary
	return s.upsertErr
}

type mockRating struct {
	rating float64
	ok     bool
	err    error
	calls  int
}

func (m *mockRating) Fetch(context.Context, string) (float64, bool, error) {
	m.calls++
	return m.rating, m.ok, m.err
}

type mockDiscussion struct {
	titles []string
	err    error
	calls  int
}

func (m *mockDiscussion) Fetch(context.Context, string) ([]string, error) {
	m.calls++
	return m.titles, m.err
}

type mockRepos struct {
	repos []string
	err   error
	calls int
}

func (m *mockRepos) Fetch(context.Context, string, string) ([]string, error) {
	m.calls++
	return m.repos, m.err
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestAggregator(store cache.Store, rating RatingSource, discussion DiscussionSource, repos RepositorySource) *Aggregator {
	a := New(store, rating, discussion, repos)
	a.now = func() time.Time { return testNow }
	return a
}

func cachedEntry(rating float64, age time.Duration) *cache.Entry {
	return &cache.Entry{
		ProfessorName: "Smith, Jane",
		CourseID:      "CS 101",
		AvgRating:     &rating,
		LastUpdated:   testNow.Add(-age),
	}
}

func TestFreshFetchOverridesFreshCache(t *testing.T) {
	store := &stubStore{entry: cachedEntry(4.0, time.Hour)}
	a := newTestAggregator(store,
		&mockRating{rating: 3.2, ok: true},
		&mockDiscussion{},
		&mockRepos{},
	)

	result := a.Analyze(context.Background(), "Smith, Jane", "CS 101")

	if result.AvgRating == nil || *result.AvgRating != 3.2 {
		t.Fatalf("rating = %v, want fetched 3.2 over cached 4.0", result.AvgRating)
	}
}

func TestFailedFetchKeepsFreshCache(t *testing.T) {
	store := &stubStore{entry: cachedEntry(4.0, time.Hour)}
	a := newTestAggregator(store,
		&mockRating{err: errors.New("timeout")},
		&mockDiscussion{},
		&mockRepos{},
	)

	result := a.Analyze(context.Background(), "Smith, Jane", "CS 101")

	if result.AvgRating == nil || *result.AvgRating != 4.0 {
		t.Fatalf("rating = %v, want cached 4.0", result.AvgRating)
	}
}

func TestNotFoundKeepsFreshCache(t *testing.T) {
	store := &stubStore{entry: cachedEntry(4.0, time.Hour)}
	a := newTestAggregator(store,
		&mockRating{ok: false},
		&mockDiscussion{},
		&mockRepos{},
	)

	result := a.Analyze(context.Background(), "Smith, Jane", "CS 101")

	if result.AvgRating == nil || *result.AvgRating != 4.0 {
		t.Fatalf("rating = %v, want cached 4.0", result.AvgRating)
	}
}

func TestStaleCacheIsFallbackOnly(t *testing.T) {
	// 15 days old: past the TTL, so it must not seed the rating, but it is
	// still better than nothing when the fetch fails.
	store := &stubStore{entry: cachedEntry(4.0, 15*24*time.Hour)}
	a := newTestAggregator(store,
		&mockRating{err: errors.New("timeout")},
		&mockDiscussion{},
		&mockRepos{},
	)

	result := a.Analyze(context.Background(), "Smith, Jane", "CS 101")

	if result.AvgRating == nil || *result.AvgRating != 4.0 {
		t.Fatalf("rating = %v, want stale fallback 4.0", result.AvgRating)
	}
}

func TestNoCacheFailedFetchYieldsNil(t *testing.T) {
	store := &stubStore{}
	a := newTestAggregator(store,
		&mockRating{err: errors.New("timeout")},
		&mockDiscussion{},
		&mockRepos{},
	)

	result := a.Analyze(context.Background(), "Smith, Jane", "CS 101")

	if result.AvgRating != nil {
		t.Fatalf("rating = %v, want nil", *result.AvgRating)
	}
	if result.RedditTopThreads == nil || result.TopRepositories == nil {
		t.Fatalf("slices must never be nil")
	}
}

func TestFailuresAreIsolated(t *testing.T) {
	store := &stubStore{}
	discussion := &mockDiscussion{titles: []string{"thread one", "thread two"}}
	a := newTestAggregator(store,
		&mockRating{rating: 4.5, ok: true},
		discussion,
		&mockRepos{err: errors.New("timeout")},
	)

	result := a.Analyze(context.Background(), "Smith, Jane", "CS 101")

	if result.AvgRating == nil || *result.AvgRating != 4.5 {
		t.Fatalf("rating = %v, want 4.5", result.AvgRating)
	}
	if len(result.RedditTopThreads) != 2 {
		t.Fatalf("threads = %v", result.RedditTopThreads)
	}
	if result.SentimentSummary == nil || *result.SentimentSummary != "Top threads: thread one | thread two" {
		t.Fatalf("summary = %v", result.SentimentSummary)
	}
	if len(result.TopRepositories) != 0 {
		t.Fatalf("repositories = %v, want empty after failure", result.TopRepositories)
	}
}

func TestDiscussionFailureLeavesSummaryNil(t *testing.T) {
	store := &stubStore{}
	a := newTestAggregator(store,
		&mockRating{ok: false},
		&mockDiscussion{err: errors.New("timeout")},
		&mockRepos{},
	)

	result := a.Analyze(context.Background(), "Smith, Jane", "CS 101")

	if result.SentimentSummary != nil {
		t.Fatalf("summary = %q, want nil", *result.SentimentSummary)
	}
	if len(result.RedditTopThreads) != 0 {
		t.Fatalf("threads = %v, want empty", result.RedditTopThreads)
	}
}

func TestEmptyDiscussionStillSummarized(t *testing.T) {
	store := &stubStore{}
	a := newTestAggregator(store,
		&mockRating{ok: false},
		&mockDiscussion{titles: nil},
		&mockRepos{},
	)

	result := a.Analyze(context.Background(), "Smith, Jane", "CS 101")

	if result.SentimentSummary == nil || *result.SentimentSummary != "No recent discussion threads found." {
		t.Fatalf("summary = %v", result.SentimentSummary)
	}
}

func TestUpsertReceivesMergedValues(t *testing.T) {
	store := &stubStore{entry: cachedEntry(4.0, time.Hour)}
	a := newTestAggregator(store,
		&mockRating{err: errors.New("timeout")},
		&mockDiscussion{titles: []string{"t1"}},
		&mockRepos{},
	)

	a.Analyze(context.Background(), "Smith, Jane", "CS 101")

	if store.upsertCalls != 1 {
		t.Fatalf("upsert calls = %d", store.upsertCalls)
	}
	if store.upsertPrev != store.entry {
		t.Fatalf("upsert must receive the looked-up entry")
	}
	if store.upsertRating == nil || *store.upsertRating != 4.0 {
		t.Fatalf("upsert rating = %v, want the merged 4.0", store.upsertRating)
	}
	if store.upsertSummary == nil || *store.upsertSummary != "Top threads: t1" {
		t.Fatalf("upsert summary = %v", store.upsertSummary)
	}
}

func TestCacheFailuresNeverFailTheRequest(t *testing.T) {
	store := &stubStore{
		lookupErr: errors.New("backend down"),
		upsertErr: errors.New("backend down"),
	}
	a := newTestAggregator(store,
		&mockRating{rating: 4.5, ok: true},
		&mockDiscussion{},
		&mockRepos{},
	)

	result := a.Analyze(context.Background(), "Smith, Jane", "CS 101")

	if result == nil || result.AvgRating == nil || *result.AvgRating != 4.5 {
		t.Fatalf("result degraded by cache failure: %+v", result)
	}
}

func TestAllSourcesInvokedOnce(t *testing.T) {
	rating := &mockRating{ok: true, rating: 4.0}
	discussion := &mockDiscussion{}
	repos := &mockRepos{}
	a := newTestAggregator(&stubStore{}, rating, discussion, repos)

	a.Analyze(context.Background(), "Smith, Jane", "CS 101")

	if rating.calls != 1 || discussion.calls != 1 || repos.calls != 1 {
		t.Fatalf("fetch calls = %d/%d/%d, want 1 each (no retries)",
			rating.calls, discussion.calls, repos.calls)
	}
}
