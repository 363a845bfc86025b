// internal/server/server.go
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/officialprakashkumarsingh/render/internal/config"
)

// AgentRunner runs one agent loop to completion. Satisfied by
// agent.Controller; narrowed to an interface so handlers are testable without
// a browser.
type AgentRunner interface {
	Run(ctx context.Context, query, baseURL string) (string, error)
}

// Server hosts the inbound HTTP surface: the agent endpoint, screenshot
// static files, and health.
type Server struct {
	cfg           config.ServerConfig
	logger        *zap.Logger
	runner        AgentRunner
	screenshotDir string
	httpServer    *http.Server

	// sem caps concurrently running agent loops; nil when uncapped.
	sem *semaphore.Weighted
	// limiter throttles inbound agent requests; nil when disabled.
	limiter *rate.Limiter
}

// NewServer builds the server and its router.
func NewServer(cfg config.ServerConfig, runner AgentRunner, screenshotDir string, logger *zap.Logger) *Server {
	s := &Server{
		cfg:           cfg,
		logger:        logger.Named("http_server"),
		runner:        runner,
		screenshotDir: screenshotDir,
	}

	if cfg.MaxConcurrentSessions > 0 {
		s.sem = semaphore.NewWeighted(cfg.MaxConcurrentSessions)
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/agent", s.handleAgent)
	r.Handle("/screenshots/*", http.StripPrefix("/screenshots/",
		http.FileServer(http.Dir(s.screenshotDir))))

	return r
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until the context is cancelled, then shuts it down
// gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("HTTP server listening.", zap.String("addr", s.cfg.ListenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("HTTP server shutting down.")
		shutdownTimeout := s.cfg.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 15 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
