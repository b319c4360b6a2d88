package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/stratawatch/cii-engine/internal/cii"
	"github.com/stratawatch/cii-engine/internal/focal"
	"github.com/stratawatch/cii-engine/internal/geo"
	"github.com/stratawatch/cii-engine/internal/observability"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the scoring query surface plus health, readiness, and
// metrics endpoints.
//
// Snapshot recomputes are rate limited: within the refresh interval all
// callers share the cached snapshot, so a polling dashboard can't turn
// every request into a full recompute.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *observability.Metrics

	engine   *cii.Engine
	detector *focal.Detector
	grid     *geo.ConvergenceGrid
	dedup    geo.AlertDedup

	limiter *rate.Limiter

	mu       sync.Mutex
	snapshot []cii.CountryScore
}

// NewServer creates the HTTP server and registers all routes.
// detector and grid may be nil; their endpoints then serve empty results.
func NewServer(addr string, engine *cii.Engine, detector *focal.Detector, grid *geo.ConvergenceGrid,
	ready ReadinessChecker, refreshInterval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:   logger,
		metrics:  metrics,
		engine:   engine,
		detector: detector,
		grid:     grid,
		dedup:    geo.NewMapDedup(),
		limiter:  rate.NewLimiter(rate.Every(refreshInterval), 1),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/scores", s.handleScores)
	mux.HandleFunc("GET /v1/scores/{code}", s.handleCountryScore)
	mux.HandleFunc("GET /v1/focal", s.handleFocal)
	mux.HandleFunc("GET /v1/convergence", s.handleConvergence)
	mux.HandleFunc("GET /v1/stats", s.handleStats)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleScores serves the full snapshot, recomputing at most once per
// refresh interval.
func (s *Server) handleScores(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	if s.snapshot == nil || s.limiter.Allow() {
		s.snapshot = s.engine.CalculateCII()
	}
	snapshot := s.snapshot
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"scores":        snapshot,
		"learning_mode": s.engine.InLearningMode(),
	})
}

func (s *Server) handleCountryScore(w http.ResponseWriter, r *http.Request) {
	score, ok := s.engine.CountryScore(r.PathValue("code"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown country"})
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleFocal(w http.ResponseWriter, _ *http.Request) {
	if s.detector == nil {
		writeJSON(w, http.StatusOK, &focal.Summary{})
		return
	}
	summary := s.detector.LastSummary()
	if summary == nil {
		writeJSON(w, http.StatusOK, &focal.Summary{})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleConvergence detects fresh convergence alerts. The dedup store lives
// for the server's lifetime, so a flagged cell alerts once per process.
func (s *Server) handleConvergence(w http.ResponseWriter, _ *http.Request) {
	if s.grid == nil {
		writeJSON(w, http.StatusOK, []geo.ConvergenceAlert{})
		return
	}
	alerts := s.grid.Detect(s.dedup)
	s.metrics.ConvergenceAlerts.Add(float64(len(alerts)))
	if alerts == nil {
		alerts = []geo.ConvergenceAlert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ingest":            s.engine.Stats(),
		"learning_mode":     s.engine.InLearningMode(),
		"learning_progress": s.engine.LearningProgress(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
