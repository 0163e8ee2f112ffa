// Package server exposes the analysis API over HTTP: job submission and
// retrieval under /api/v1/presentations, a websocket progress stream,
// health probes, and the Prometheus metrics endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orato-ai/orato/internal/config"
	"github.com/orato-ai/orato/internal/jobs"
	"github.com/orato-ai/orato/internal/observe"
	"github.com/orato-ai/orato/internal/store"
)

// readyCheckTimeout bounds a single readiness probe of the store.
const readyCheckTimeout = 5 * time.Second

// Server serves the analysis HTTP API.
type Server struct {
	cfg       config.ServerConfig
	manager   *jobs.Manager
	store     store.Store
	metrics   *observe.Metrics
	uploadDir string
	log       *slog.Logger

	httpSrv *http.Server
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.log = l } }

// WithMetrics sets the metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option { return func(s *Server) { s.metrics = m } }

// WithUploadDir sets the directory uploaded audio files are staged into.
// Default: "uploads".
func WithUploadDir(dir string) Option {
	return func(s *Server) {
		if dir != "" {
			s.uploadDir = dir
		}
	}
}

// New builds a Server around the job manager and report store.
func New(cfg config.ServerConfig, manager *jobs.Manager, st store.Store, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		manager:   manager,
		store:     st,
		uploadDir: "uploads",
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/presentations", s.handleSubmit)
	mux.HandleFunc("POST /api/v1/presentations/upload", s.handleUpload)
	mux.HandleFunc("GET /api/v1/presentations", s.handleList)
	mux.HandleFunc("GET /api/v1/presentations/{id}", s.handleStatus)
	mux.HandleFunc("GET /api/v1/presentations/{id}/full", s.handleFull)
	mux.HandleFunc("GET /api/v1/presentations/{id}/transcript", s.handleTranscript)
	mux.HandleFunc("DELETE /api/v1/presentations/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/v1/presentations/{id}/events", s.handleEvents)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           observe.Middleware(s.metrics)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the configured handler chain, mainly for tests with
// [net/http/httptest].
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.TLS != nil {
			err = s.httpSrv.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			err = s.httpSrv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.Info("http server listening", "addr", s.cfg.ListenAddr, "tls", s.cfg.TLS != nil)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// handleHealthz is the liveness probe. A running process that can serve HTTP
// is considered alive.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz probes the report store.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	if _, err := s.store.ListReports(ctx, 1); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "fail",
			"store":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as JSON and writes it with the given status code. On
// encoding failure it falls back to a plain-text 500 response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
