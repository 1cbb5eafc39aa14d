package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"coursecompass-backend/internal/aggregate"
	"coursecompass-backend/internal/cache"
	"coursecompass-backend/internal/handlers"
	"coursecompass-backend/internal/httpserver"
	"coursecompass-backend/internal/metrics"
	"coursecompass-backend/internal/sources"
	"coursecompass-backend/pkg/logging/logging"
)

type Config struct {
	Port         string
	CacheBackend string // "memory", "redis" or "postgres"
	RedisAddr    string
	DatabaseURL  string
	GitHubToken  string // optional; raises the repository search rate limit
	RMPSchoolID  string // institution id on the rating source; unstable upstream
}

func LoadConfig() Config {
	return Config{
		Port:         getenv("PORT", "8080"),
		CacheBackend: getenv("CACHE_BACKEND", "memory"),
		RedisAddr:    getenv("REDIS_ADDR", "127.0.0.1:6379"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		GitHubToken:  os.Getenv("GITHUB_TOKEN"),
		RMPSchoolID:  getenv("RMP_SCHOOL_ID", sources.DefaultSchoolID),
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("coursecompass exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg := LoadConfig()

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.Bool("github_token_set", cfg.GitHubToken != ""),
		zap.String("rmp_school_id", cfg.RMPSchoolID),
	)

	// ----- Cache backend clients (only the selected one) -----
	var redisClient *redis.Client
	var pgPool *pgxpool.Pool

	switch cfg.CacheBackend {
	case "redis":
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established",
			zap.String("addr", cfg.RedisAddr),
		)
	case "postgres":
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("postgres connection failed", zap.Error(err))
			return err
		}
		pgPool = pool
		defer pgPool.Close()
		logger.Info("postgres connection established")
	}

	// ----- Cache store -----
	store := cache.NewStore(cache.Config{
		Backend: cfg.CacheBackend,
		Prefix:  "coursecompass",
	}, redisClient, pgPool)

	if pgStore, ok := store.(*cache.PostgresStore); ok {
		if err := pgStore.EnsureSchema(context.Background()); err != nil {
			logger.Error("schema bootstrap failed", zap.Error(err))
			return err
		}
	}
	store = cache.NewLoggingStore(store)

	// ----- Source fetchers -----
	ratingFetcher := sources.NewRatingFetcher(sources.RatingConfig{
		SchoolID: cfg.RMPSchoolID,
	}, logger)
	discussionFetcher := sources.NewDiscussionFetcher(sources.DiscussionConfig{}, logger)
	repositoryFetcher := sources.NewRepositoryFetcher(sources.RepositoryConfig{
		Token: cfg.GitHubToken,
	}, logger)

	// ----- Aggregator + handler -----
	aggregator := aggregate.New(store, ratingFetcher, discussionFetcher, repositoryFetcher)
	analyzeHandler := handlers.NewAnalyzeHandler(aggregator)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, analyzeHandler)

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting coursecompass",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", cfg.CacheBackend),
	)

	// Start server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
