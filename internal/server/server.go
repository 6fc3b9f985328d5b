package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/swotlab/swotlab/internal/abtest"
	"github.com/swotlab/swotlab/internal/account"
	"github.com/swotlab/swotlab/internal/analysis"
	"github.com/swotlab/swotlab/internal/telemetry"
)

// Deps are the long-lived services built once per process.
type Deps struct {
	Accounts  *account.Service
	Analyses  *analysis.Service
	Metrics   *abtest.MetricsStore
	Assigner  *abtest.Assigner
	Telemetry *telemetry.Metrics
	Logger    zerolog.Logger
}

type Options struct {
	Port          int
	AuthRateRPS   float64
	AuthRateBurst int
}

type Server struct {
	accounts  *account.Service
	analyses  *analysis.Service
	metrics   *abtest.MetricsStore
	assigner  *abtest.Assigner
	telemetry *telemetry.Metrics
	logger    zerolog.Logger

	port        int
	router      *http.ServeMux
	handler     http.Handler
	authLimiter *rateLimiter
	startTime   time.Time
}

func New(deps Deps, opts Options) *Server {
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.New()
	}
	if deps.Assigner == nil {
		deps.Assigner = abtest.NewAssigner(nil)
	}

	srv := &Server{
		accounts:    deps.Accounts,
		analyses:    deps.Analyses,
		metrics:     deps.Metrics,
		assigner:    deps.Assigner,
		telemetry:   deps.Telemetry,
		logger:      deps.Logger.With().Str("component", "http").Logger(),
		port:        opts.Port,
		router:      http.NewServeMux(),
		authLimiter: newRateLimiter(opts.AuthRateRPS, opts.AuthRateBurst),
		startTime:   time.Now(),
	}

	srv.setupRoutes()
	srv.handler = srv.requestMiddleware(srv.router)
	return srv
}

func (s *Server) setupRoutes() {
	// Public endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.Handle("GET /metrics", s.telemetry.Handler())
	s.router.HandleFunc("GET /swot.js", s.handleIntegrationJS)
	s.router.Handle("/api/generate", s.cors(http.MethodPost, s.handleGenerate))
	s.router.Handle("/api/variant", s.cors(http.MethodGet, s.handleVariant))
	s.router.Handle("/api/view", s.cors(http.MethodPost, s.handleView))
	s.router.Handle("/api/convert", s.cors(http.MethodPost, s.handleConvert))
	s.router.Handle("/api/metrics", s.cors(http.MethodGet, s.handleMetrics))

	// Accounts
	s.router.Handle("POST /api/auth/register", s.rateLimit(http.HandlerFunc(s.handleRegister)))
	s.router.Handle("POST /api/auth/login", s.rateLimit(http.HandlerFunc(s.handleLogin)))
	s.router.HandleFunc("POST /api/auth/logout", s.handleLogout)
	s.router.Handle("GET /api/auth/me", s.requireUser(s.handleMe))

	// Stored analyses (protected)
	s.router.Handle("GET /api/analyses", s.requireUser(s.handleListAnalyses))
	s.router.Handle("POST /api/analyses", s.requireUser(s.handleCreateAnalysis))
	s.router.Handle("GET /api/analyses/{id}", s.requireUser(s.handleGetAnalysis))
	s.router.Handle("PUT /api/analyses/{id}", s.requireUser(s.handleUpdateAnalysis))
	s.router.Handle("DELETE /api/analyses/{id}", s.requireUser(s.handleDeleteAnalysis))
	s.router.Handle("GET /api/user/metrics", s.requireUser(s.handleUserMetrics))

	// Dashboard (protected, cookie based)
	s.router.Handle("GET /dashboard", s.dashboardAuth(http.HandlerFunc(s.handleDashboard)))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Int("port", s.port).Msg("swotlab listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) Handler() http.Handler {
	return s.handler
}
