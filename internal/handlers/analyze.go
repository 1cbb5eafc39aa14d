package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"coursecompass-backend/internal/aggregate"
	"coursecompass-backend/pkg/logging/logging"
)

// Analyzer is what the handler needs from the aggregation layer.
type Analyzer interface {
	Analyze(ctx context.Context, professorName, courseID string) *aggregate.Result
}

// AnalyzeHandler serves GET /api/v1/analyze.
type AnalyzeHandler struct {
	aggregator Analyzer
}

func NewAnalyzeHandler(aggregator Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{aggregator: aggregator}
}

// Analyze handles GET /api/v1/analyze?prof=<name>&course=<id>.
// Missing parameters are a caller error; everything past that point responds
// 200 with degraded fields rather than an error status.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	professorName := strings.TrimSpace(r.URL.Query().Get("prof"))
	courseID := strings.TrimSpace(r.URL.Query().Get("course"))
	if professorName == "" || courseID == "" {
		logger.Warn("missing query parameters",
			zap.Bool("has_prof", professorName != ""),
			zap.Bool("has_course", courseID != ""),
		)
		http.Error(w, "prof and course query parameters are required", http.StatusBadRequest)
		return
	}

	result := h.aggregator.Analyze(ctx, professorName, courseID)

	logger.Info("analyze_request",
		zap.String("professor", professorName),
		zap.String("course_id", courseID),
		zap.Bool("has_rating", result.AvgRating != nil),
		zap.Int("threads", len(result.RedditTopThreads)),
		zap.Int("repositories", len(result.TopRepositories)),
		zap.Duration("total_latency_ms", time.Since(start)),
	)

	h.writeJSON(w, result)
}

// writeJSON is a small helper to send JSON responses consistently.
func (h *AnalyzeHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
