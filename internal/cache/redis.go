package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one JSON-marshaled Entry per key. Entries are stored
// without expiry: freshness is decided at read time against LastUpdated, and
// a stale rating is still useful as a fallback.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

type RedisConfig struct {
	Prefix string
}

func NewRedisStore(client *redis.Client, cfg RedisConfig) *RedisStore {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "coursecompass"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RedisStore) key(professorName, courseID string) string {
	return s.prefix + ":entry:" + entryKey(professorName, courseID)
}

func (s *RedisStore) LookupLatest(ctx context.Context, professorName, courseID string) (*Entry, error) {
	raw, err := s.client.Get(ctx, s.key(professorName, courseID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("redis entry decode failed: %w", err)
	}
	return &e, nil
}

func (s *RedisStore) Upsert(ctx context.Context, prev *Entry, professorName, courseID string, rating *float64, summary *string) error {
	e := merged(prev, professorName, courseID, rating, summary, s.now())

	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("redis entry encode failed: %w", err)
	}
	if err := s.client.Set(ctx, s.key(professorName, courseID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Ping checks the Redis connection. Used by main to fail fast on a
// misconfigured backend.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
