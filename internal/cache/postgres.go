package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists entries in a course_cache table. Multiple rows per
// key are tolerated; LookupLatest always takes the most recently updated one,
// so concurrent writers at worst leave a superseded row behind.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

// EnsureSchema creates the course_cache table when it does not exist yet.
// Called once at startup; retention/GC of old rows is not this service's job.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	// One statement per Exec; pgx's extended protocol rejects batches.
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS course_cache (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			professor_name TEXT NOT NULL,
			course_id TEXT NOT NULL,
			avg_rating DOUBLE PRECISION,
			sentiment_summary TEXT,
			last_updated TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure course_cache table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_course_cache_prof_course
			ON course_cache (professor_name, course_id, last_updated DESC)
	`)
	if err != nil {
		return fmt.Errorf("ensure course_cache index: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupLatest(ctx context.Context, professorName, courseID string) (*Entry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, professor_name, course_id, avg_rating, sentiment_summary, last_updated
		FROM course_cache
		WHERE professor_name = $1 AND course_id = $2
		ORDER BY last_updated DESC
		LIMIT 1
	`, professorName, courseID)

	var e Entry
	err := row.Scan(&e.id, &e.ProfessorName, &e.CourseID, &e.AvgRating, &e.SentimentSummary, &e.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("course_cache lookup: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, prev *Entry, professorName, courseID string, rating *float64, summary *string) error {
	e := merged(prev, professorName, courseID, rating, summary, s.now())

	if prev != nil && prev.id > 0 {
		_, err := s.pool.Exec(ctx, `
			UPDATE course_cache
			SET avg_rating = $1, sentiment_summary = $2, last_updated = $3
			WHERE id = $4
		`, e.AvgRating, e.SentimentSummary, e.LastUpdated, prev.id)
		if err != nil {
			return fmt.Errorf("course_cache update: %w", err)
		}
		return nil
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO course_cache (professor_name, course_id, avg_rating, sentiment_summary, last_updated)
		VALUES ($1, $2, $3, $4, $5)
	`, e.ProfessorName, e.CourseID, e.AvgRating, e.SentimentSummary, e.LastUpdated)
	if err != nil {
		return fmt.Errorf("course_cache insert: %w", err)
	}
	return nil
}
