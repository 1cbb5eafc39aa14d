package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"coursecompass-backend/internal/handlers"
	"coursecompass-backend/internal/metrics"
	"coursecompass-backend/internal/middleware"
)

// allowedOrigins covers local dev, the course-listing site the extension
// runs on, and the extension itself.
var allowedOrigins = []string{
	"http://localhost:8080",
	"http://localhost:3000",
	"https://louslist.org",
	"https://www.louslist.org",
	"chrome-extension://*",
}

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, analyzeHandler *handlers.AnalyzeHandler) {

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())               // panic recovery
	r.Use(middleware.Timeout(15 * time.Second)) // request timeout; fetchers are bounded to 10s each

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	// routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/analyze", analyzeHandler.Analyze)
	})

	// health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
