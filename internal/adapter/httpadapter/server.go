// Package httpadapter exposes the service's read surface: health and
// readiness probes, Prometheus metrics, and the latest analysis result.
package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/balloon-proximity-service/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ResultStore serves the most recent analysis result. The second return is
// false until the first run completes.
type ResultStore interface {
	Latest() (domain.AnalysisResult, bool)
}

// Server exposes health, readiness, metrics, and analysis result routes.
type Server struct {
	httpServer *http.Server
	results    ResultStore
	logger     *slog.Logger
}

// NewServer creates the read-surface HTTP server.
func NewServer(addr string, ready ReadinessChecker, results ResultStore, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		results: results,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/result", s.handleResult)
	mux.HandleFunc("GET /api/v1/alerts", s.handleAlerts)

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

// handleResult serves the full latest analysis result.
func (s *Server) handleResult(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.results.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no analysis run has completed yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAlerts serves only the proximity alerts of the latest run, for
// consumers that do not want the full intersection payload.
func (s *Server) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.results.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no analysis run has completed yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":       result.RunID,
		"generated_at": result.GeneratedAt,
		"threshold_km": result.ThresholdKm,
		"alerts":       result.Alerts,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
