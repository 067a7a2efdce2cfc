package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fiscal-integrations/manifestacao/internal/config"
	"github.com/fiscal-integrations/manifestacao/internal/logger"
	manifestacaohandlers "github.com/fiscal-integrations/manifestacao/internal/manifestacao/handlers"
	"github.com/fiscal-integrations/manifestacao/internal/metrics"
	"github.com/fiscal-integrations/manifestacao/internal/server/handlers"
	appmiddleware "github.com/fiscal-integrations/manifestacao/internal/server/middleware"
	"github.com/fiscal-integrations/manifestacao/internal/version"
)

type Server struct {
	config     *config.ServerEnvironment
	logger     *slog.Logger
	router     *chi.Mux
	manifester manifestacaohandlers.Manifester

	// ready is cleared when shutdown starts
	ready atomic.Bool
}

func NewServer(
	cfg *config.ServerEnvironment,
	logger *slog.Logger,
	manifester manifestacaohandlers.Manifester,
) *Server {
	server := &Server{
		config:     cfg,
		logger:     logger,
		router:     chi.NewRouter(),
		manifester: manifester,
	}
	server.ready.Store(true)

	metrics.Register()

	server.setupMiddleware()
	server.registerRoutes()

	return server
}

// Router returns the HTTP handler, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(appmiddleware.Metrics)
	s.router.Use(appmiddleware.SecurityHeaders(s.config.Environment))
}

func (s *Server) registerRoutes() {
	s.router.Get("/health/live", handlers.HandleHealth)
	s.router.Get("/health/ready", handlers.HandleReadiness(s.ready.Load))
	s.router.Get("/version", handlers.HandleVersion(version.Get()))
	s.router.Handle("/metrics", promhttp.Handler())

	manifestationHandler := manifestacaohandlers.NewManifestationHandler(s.manifester)

	s.router.Group(func(r chi.Router) {
		r.Use(appmiddleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
		r.Use(appmiddleware.RequestSizeLimit(s.config.MaxRequestBodyBytes))
		r.Use(middleware.Timeout(s.config.RequestTimeout))

		r.Post("/manifestacoes", manifestationHandler.HandleManifestation)
	})
}

func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.config.Environment),
			slog.String("address", serverAddr))

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	s.ready.Store(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}
