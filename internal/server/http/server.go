// Package httpserver provides the HTTP REST API server for the research
// discovery service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ismart/research-discovery-service/internal/pipeline"
	"github.com/ismart/research-discovery-service/internal/ranking"
)

// Discoverer runs the discovery pipeline for a query. Implemented by
// pipeline.Service.
type Discoverer interface {
	Discover(ctx context.Context, query string, pages int) *pipeline.Result
}

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	discoverer Discoverer
	rankings   *ranking.Table
	logger     zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
	MetricsPath     string
}

// NewServer creates a new HTTP server with all dependencies.
func NewServer(cfg Config, discoverer Discoverer, rankings *ranking.Table, logger zerolog.Logger) *Server {
	if rankings == nil {
		rankings = ranking.Empty()
	}
	s := &Server{
		discoverer: discoverer,
		rankings:   rankings,
		logger:     logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter(cfg)

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter(cfg Config) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogMiddleware)
	r.Use(jsonContentTypeMiddleware)

	r.Get("/healthz", s.healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/papers/search", s.searchPapers)
		r.Get("/papers/filter-guide", s.filterGuide)
		r.Get("/rankings/stats", s.rankingStats)
	})

	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler())
	}

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns liveness status plus ranking table state.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "operational",
		"service":         "research-discovery-service",
		"rankings_loaded": s.rankings.Len() > 0,
		"ranking_records": s.rankings.Len(),
	})
}

// rankingStats reports the loaded ranking table size and quartile spread.
func (s *Server) rankingStats(w http.ResponseWriter, _ *http.Request) {
	if s.rankings.Len() == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"total_journals": 0,
			"error":          "ranking data not loaded",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_journals":        s.rankings.Len(),
		"quartile_distribution": s.rankings.QuartileDistribution(),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
