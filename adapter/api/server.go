// Package api provides the HTTP API of the client portal.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/patentdesk/internal/app"
	"github.com/felixgeelhaar/patentdesk/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	mux    *http.ServeMux
	server *http.Server
	logger *slog.Logger
	app    *app.Container
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// MaxUploadBytes caps multipart document uploads.
	MaxUploadBytes int64
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:           "0.0.0.0:8080",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxUploadBytes: 50 << 20,
	}
}

// NewServer creates an API server backed by container.
func NewServer(cfg ServerConfig, container *app.Container, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultServerConfig().MaxUploadBytes
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		app:    container,
	}
	s.registerRoutes(cfg)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.withRequestContext(s.mux),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes(cfg ServerConfig) {
	// Health and metrics
	s.mux.Handle("GET /healthz", observability.LivenessHandler())
	s.mux.Handle("GET /readyz", s.app.Health.ReadinessHandler())
	s.mux.Handle("GET /metrics", s.app.Metrics.Handler())

	// Checkout webhook, authenticated by shared secret
	s.mux.HandleFunc("POST /api/v1/payments/succeeded", s.handlePaymentSucceeded)

	// Catalog
	s.route("GET /api/v1/catalog", s.handleCatalog)

	// Projects
	s.route("GET /api/v1/projects", s.handleListProjects)
	s.route("POST /api/v1/projects", s.handleCreateProject)
	s.route("GET /api/v1/projects/{projectID}", s.handleGetProject)
	s.route("POST /api/v1/projects/{projectID}/advance", s.handleAdvanceProject)
	s.route("POST /api/v1/projects/{projectID}/annotations", s.handleAnnotateProject)
	s.route("PUT /api/v1/projects/{projectID}/schedule", s.handleSetSchedule)
	s.route("GET /api/v1/projects/{projectID}/updates", s.handleListUpdates)
	s.route("GET /api/v1/dashboard", s.handleDashboard)

	// Milestones
	s.route("POST /api/v1/projects/{projectID}/milestones", s.handleAddMilestone)
	s.route("POST /api/v1/milestones/{milestoneID}/complete", s.handleMilestoneCompletion(true))
	s.route("DELETE /api/v1/milestones/{milestoneID}/complete", s.handleMilestoneCompletion(false))
	s.route("DELETE /api/v1/milestones/{milestoneID}", s.handleDeleteMilestone)

	// Documents
	s.route("GET /api/v1/projects/{projectID}/documents", s.handleListDocuments)
	s.route("POST /api/v1/projects/{projectID}/documents", s.handleUploadDocument(cfg.MaxUploadBytes))
	s.route("GET /api/v1/documents/{documentID}/download", s.handleDocumentDownload)

	// Messages
	s.route("GET /api/v1/projects/{projectID}/messages", s.handleListMessages)
	s.route("POST /api/v1/projects/{projectID}/messages", s.handlePostMessage)
}

// route registers an authenticated handler and records its latency under
// the route pattern.
func (s *Server) route(pattern string, handler http.HandlerFunc) {
	s.mux.Handle(pattern, s.observe(pattern, s.authenticate(handler)))
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// decodeJSON reads a JSON body into v, rejecting unknown fields. An empty
// body leaves v at its zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &APIError{Status: http.StatusBadRequest, Code: "bad_request", Message: "invalid JSON body: " + err.Error()}
	}
	return nil
}
