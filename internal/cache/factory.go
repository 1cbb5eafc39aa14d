package cache

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Backend string // "memory", "redis" or "postgres"
	Prefix  string
}

// NewStore selects a backend. Only the client matching cfg.Backend needs to
// be non-nil; anything unrecognized falls back to memory.
func NewStore(cfg Config, redisClient *redis.Client, pool *pgxpool.Pool) Store {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(redisClient, RedisConfig{Prefix: cfg.Prefix})
	case "postgres":
		return NewPostgresStore(pool)
	default:
		return NewMemoryStore()
	}
}
