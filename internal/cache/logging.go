package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"coursecompass-backend/internal/metrics"
	"coursecompass-backend/pkg/logging/logging"
)

// LoggingStore wraps a Store with logging + metrics.
type LoggingStore struct {
	inner Store
}

func NewLoggingStore(inner Store) Store {
	return &LoggingStore{inner: inner}
}

func (s *LoggingStore) LookupLatest(ctx context.Context, professorName, courseID string) (*Entry, error) {
	start := time.Now()
	entry, err := s.inner.LookupLatest(ctx, professorName, courseID)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	result := "miss"
	if err != nil {
		result = "error"
	} else if entry != nil {
		result = "hit"
		metrics.CacheHitsTotal.Inc()
	}

	fields := []zap.Field{
		zap.String("professor", professorName),
		zap.String("course_id", courseID),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}

	if err != nil {
		logger.Warn("cache_lookup", append(fields, zap.Error(err))...)
	} else {
		logger.Info("cache_lookup", fields...)
	}

	return entry, err
}

func (s *LoggingStore) Upsert(ctx context.Context, prev *Entry, professorName, courseID string, rating *float64, summary *string) error {
	start := time.Now()
	err := s.inner.Upsert(ctx, prev, professorName, courseID, rating, summary)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	fields := []zap.Field{
		zap.String("professor", professorName),
		zap.String("course_id", courseID),
		zap.Bool("created", prev == nil),
		zap.Float64("latency_ms", latencyMs),
	}

	if err != nil {
		metrics.CacheWriteFailuresTotal.Inc()
		logger.Warn("cache_upsert", append(fields, zap.Error(err))...)
	} else {
		logger.Info("cache_upsert", fields...)
	}

	return err
}
