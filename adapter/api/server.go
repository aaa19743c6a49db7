// Package api serves the studyload HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/identity/application/auth"
	identityCommands "github.com/felixgeelhaar/studyload/internal/identity/application/commands"
	identityQueries "github.com/felixgeelhaar/studyload/internal/identity/application/queries"
	workloadCommands "github.com/felixgeelhaar/studyload/internal/workload/application/commands"
	workloadQueries "github.com/felixgeelhaar/studyload/internal/workload/application/queries"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// TokenResolver maps a bearer token to the user it was issued for.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}

// Dependencies are the application handlers the routes call into.
type Dependencies struct {
	Auth   *auth.Service
	Health *observability.HealthRegistry

	RegisterUser   *identityCommands.RegisterUserHandler
	UpdateProfile  *identityCommands.UpdateProfileHandler
	GetUser        *identityQueries.GetUserHandler
	GetUserByEmail *identityQueries.GetUserByEmailHandler

	CreateDeadline *workloadCommands.CreateDeadlineHandler
	UpdateDeadline *workloadCommands.UpdateDeadlineHandler
	DeleteDeadline *workloadCommands.DeleteDeadlineHandler
	ListDeadlines  *workloadQueries.ListDeadlinesHandler
	GetDeadline    *workloadQueries.GetDeadlineHandler
	ExportCalendar *workloadQueries.ExportCalendarHandler

	GetDashboard       *workloadQueries.GetDashboardHandler
	PredictStress      *workloadQueries.PredictStressHandler
	RankPriorities     *workloadQueries.RankPrioritiesHandler
	StressContributors *workloadQueries.StressContributorsHandler
}

// Server is the HTTP API server.
type Server struct {
	mux    *http.ServeMux
	server *http.Server
	deps   Dependencies
	tokens TokenResolver
	logger *slog.Logger
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration. The write
// timeout leaves room for a slow narrative generator.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates the API server.
func NewServer(cfg ServerConfig, deps Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:    http.NewServeMux(),
		deps:   deps,
		logger: logger,
	}
	if deps.Auth != nil {
		s.tokens = deps.Auth
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the routes wrapped in the common middleware.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, s.withRecovery, s.withAccessLog, s.withRequestID)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleLiveness)
	s.mux.HandleFunc("GET /readyz", s.handleReadiness)

	// Auth
	s.mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// Users
	s.mux.Handle("GET /api/v1/users/me", s.authenticated(s.handleGetMe))
	s.mux.Handle("PUT /api/v1/users/me", s.authenticated(s.handleUpdateMe))
	s.mux.Handle("GET /api/v1/users/by-email/{email}", s.authenticated(s.handleGetUserByEmail))

	// Deadlines
	s.mux.Handle("POST /api/v1/deadlines", s.authenticated(s.handleCreateDeadline))
	s.mux.Handle("GET /api/v1/deadlines", s.authenticated(s.handleListDeadlines))
	s.mux.Handle("GET /api/v1/deadlines/calendar.ics", s.authenticated(s.handleExportCalendar))
	s.mux.Handle("GET /api/v1/deadlines/{id}", s.authenticated(s.handleGetDeadline))
	s.mux.Handle("PUT /api/v1/deadlines/{id}", s.authenticated(s.handleUpdateDeadline))
	s.mux.Handle("DELETE /api/v1/deadlines/{id}", s.authenticated(s.handleDeleteDeadline))

	// Workload
	s.mux.Handle("GET /api/v1/dashboard/summary", s.authenticated(s.handleDashboard))
	s.mux.Handle("GET /api/v1/stress/prediction", s.authenticated(s.handleStressPrediction))
	s.mux.Handle("POST /api/v1/stress/prediction", s.authenticated(s.handleStressPrediction))
	s.mux.Handle("GET /api/v1/stress/contributors", s.authenticated(s.handleStressContributors))
	s.mux.Handle("POST /api/v1/stress/contributors", s.authenticated(s.handleStressContributors))
	s.mux.Handle("GET /api/v1/priorities", s.authenticated(s.handlePriorities))
	s.mux.Handle("POST /api/v1/priorities", s.authenticated(s.handlePriorities))
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReadiness reports 503 only when a required dependency is down;
// a degraded cache or broker still serves traffic.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		s.handleLiveness(w, r)
		return
	}
	health := s.deps.Health.GetOverallHealth(r.Context())
	status := http.StatusOK
	if health.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
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
