// Package dashboard serves a precomputed analysis payload over HTTP for the
// spend dashboard.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/report"
)

// Server exposes the analysis over a small JSON API. The payload can be
// swapped at runtime so a long-running server picks up fresh analysis runs.
type Server struct {
	logger *slog.Logger

	mu       sync.RWMutex
	analysis *report.Analysis

	httpServer *http.Server
}

// NewServer builds a Server around an initial analysis payload. The payload
// may be nil; endpoints return 503 until SetAnalysis provides one.
func NewServer(addr string, analysis *report.Analysis, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{logger: logger, analysis: analysis}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/aggregates/{dimension}", s.handleAggregates)
	mux.HandleFunc("GET /api/benchmarks", s.handleBenchmarks)
	mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// SetAnalysis replaces the served payload.
func (s *Server) SetAnalysis(a *report.Analysis) {
	s.mu.Lock()
	s.analysis = a
	s.mu.Unlock()
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks until the context is canceled or the listener
// fails. Shutdown drains in-flight requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("dashboard shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dashboard server: %w", err)
	}
}

func (s *Server) current() *report.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analysis
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{"status": "ok"}
	if a := s.current(); a != nil {
		status["generated_at"] = a.GeneratedAt
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	a := s.current()
	if a == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no analysis loaded")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"generated_at": a.GeneratedAt,
		"summary":      a.Summary,
		"data_quality": a.DataQuality,
	})
}

func (s *Server) handleAggregates(w http.ResponseWriter, r *http.Request) {
	a := s.current()
	if a == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no analysis loaded")
		return
	}

	dim := r.PathValue("dimension")
	buckets, ok := a.Aggregates[dim]
	if !ok {
		s.writeError(w, http.StatusNotFound,
			fmt.Sprintf("unknown dimension %q; valid: %v", dim, model.AllDimensions()))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"dimension": dim,
		"buckets":   buckets,
	})
}

func (s *Server) handleBenchmarks(w http.ResponseWriter, _ *http.Request) {
	a := s.current()
	if a == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no analysis loaded")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"variances": a.Variances})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, _ *http.Request) {
	a := s.current()
	if a == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no analysis loaded")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"recommendations": a.Recommendations})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
