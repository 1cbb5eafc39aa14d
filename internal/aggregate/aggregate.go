// Package aggregate orchestrates the three source fetchers and the cache
// store for one analyze request and applies the merge policy between fresh
// fetch results and the cached prior.
package aggregate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"coursecompass-backend/internal/cache"
	"coursecompass-backend/internal/metrics"
	"coursecompass-backend/internal/sources"
	"coursecompass-backend/pkg/logging/logging"
)

// RatingSource reports a professor's average rating. ok=false is a routine
// "nothing found"; err means the fetch itself failed.
type RatingSource interface {
	Fetch(ctx context.Context, professorName string) (float64, bool, error)
}

// DiscussionSource returns up to 3 thread titles for a course.
type DiscussionSource interface {
	Fetch(ctx context.Context, courseID string) ([]string, error)
}

// RepositorySource returns up to 3 repository display strings for a course.
type RepositorySource interface {
	Fetch(ctx context.Context, professorName, courseID string) ([]string, error)
}

// Result is the composite answer for one request. Slices are never nil so
// the JSON encoding degrades to [] rather than null.
type Result struct {
	ProfessorName    string   `json:"professorName"`
	CourseID         string   `json:"courseId"`
	AvgRating        *float64 `json:"avgRating"`
	SentimentSummary *string  `json:"sentimentSummary"`
	RedditTopThreads []string `json:"redditTopThreads"`
	TopRepositories  []string `json:"topRepositories"`
}

// Aggregator owns the per-request fetch/merge/persist procedure.
type Aggregator struct {
	store      cache.Store
	rating     RatingSource
	discussion DiscussionSource
	repos      RepositorySource
	ttl        time.Duration

	// now is a seam for freshness tests.
	now func() time.Time
}

func New(store cache.Store, rating RatingSource, discussion DiscussionSource, repos RepositorySource) *Aggregator {
	return &Aggregator{
		store:      store,
		rating:     rating,
		discussion: discussion,
		repos:      repos,
		ttl:        cache.DefaultTTL,
		now:        time.Now,
	}
}

// Analyze runs the full pipeline for one (professor, course) pair. It never
// fails: every upstream or cache problem degrades the affected fields and the
// rest of the result is still produced.
func (a *Aggregator) Analyze(ctx context.Context, professorName, courseID string) *Result {
	logger := logging.L(ctx)

	cached, err := a.store.LookupLatest(ctx, professorName, courseID)
	if err != nil {
		// Advisory data only; proceed as if uncached.
		logger.Warn("cache lookup failed", zap.Error(err))
		cached = nil
	}

	// Seed the rating from the cache only while it is fresh; the stale
	// fallback below is a separate, last-resort step.
	var rating *float64
	if cached.Fresh(a.now(), a.ttl) {
		rating = cached.AvgRating
	}

	// The three sources have no data dependency on one another, so they run
	// concurrently and the wall clock cost is the slowest single fetch.
	var (
		wg sync.WaitGroup

		fetchedRating float64
		ratingOK      bool
		ratingErr     error

		titles    []string
		titlesErr error

		repoList []string
		repoErr  error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		fetchedRating, ratingOK, ratingErr = a.rating.Fetch(ctx, professorName)
	}()
	go func() {
		defer wg.Done()
		titles, titlesErr = a.discussion.Fetch(ctx, courseID)
	}()
	go func() {
		defer wg.Done()
		repoList, repoErr = a.repos.Fetch(ctx, professorName, courseID)
	}()
	wg.Wait()

	// Rating: a successful fetch always wins, even over a fresh cached
	// value and even if the number looks implausible; extracted values are
	// deliberately not validated. With nothing fetched, a stale cached
	// rating beats nothing at all.
	switch {
	case ratingErr != nil:
		metrics.SourceFailuresTotal.WithLabelValues("rating").Inc()
		logger.Warn("rating fetch failed", zap.Error(ratingErr))
	case ratingOK:
		rating = &fetchedRating
	}
	if rating == nil && cached != nil {
		rating = cached.AvgRating
	}

	// Discussion threads are perishable, so there is no cache fallback: a
	// failed fetch yields an empty list and no summary.
	threads := []string{}
	var summary *string
	if titlesErr != nil {
		metrics.SourceFailuresTotal.WithLabelValues("discussion").Inc()
		logger.Warn("discussion fetch failed", zap.Error(titlesErr))
	} else {
		threads = append(threads, titles...)
		s := sources.Summarize(titles)
		summary = &s
	}

	// Repository results are never persisted; failure just means an empty
	// list this time.
	repositories := []string{}
	if repoErr != nil {
		metrics.SourceFailuresTotal.WithLabelValues("repository").Inc()
		logger.Warn("repository fetch failed", zap.Error(repoErr))
	} else {
		repositories = append(repositories, repoList...)
	}

	if err := a.store.Upsert(ctx, cached, professorName, courseID, rating, summary); err != nil {
		// Best-effort write; the response goes out regardless.
		logger.Warn("cache upsert failed", zap.Error(err))
	}

	return &Result{
		ProfessorName:    professorName,
		CourseID:         courseID,
		AvgRating:        rating,
		SentimentSummary: summary,
		RedditTopThreads: threads,
		TopRepositories:  repositories,
	}
}
