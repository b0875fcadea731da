package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"actionspec-hq/sentinel/pkg/config"
	"actionspec-hq/sentinel/pkg/engine"
	"actionspec-hq/sentinel/pkg/history"
	"actionspec-hq/sentinel/pkg/telemetry/metrics"
)

// Server is the HTTP front door for validation and change analysis.
type Server struct {
	config      *config.ServerConfig
	engine      *engine.Engine
	logger      *slog.Logger
	recorder    *history.Recorder
	collector   *metrics.Collector
	metricsPath string

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server over the given engine. A nil logger
// discards everything.
func NewServer(cfg *config.ServerConfig, eng *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		config:       cfg,
		engine:       eng,
		logger:       logger.With("component", "api"),
		shutdownChan: make(chan struct{}),
	}
}

// WithRecorder attaches the run-history recorder. Handlers skip
// recording when none is attached.
func (s *Server) WithRecorder(r *history.Recorder) *Server {
	s.recorder = r
	return s
}

// WithMetrics mounts the collector's exposition handler at path.
func (s *Server) WithMetrics(c *metrics.Collector, path string) *Server {
	s.collector = c
	s.metricsPath = path
	return s
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", s.config.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server, waiting up to the
// configured shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured handler with the full middleware
// chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/v1/validate", NewValidateHandler(s.engine, s.recorder, s.logger))
	mux.Handle("/v1/diff", NewDiffHandler(s.engine, s.recorder, s.logger))
	mux.Handle("/healthz", NewHealthHandler())

	if s.collector != nil {
		path := s.metricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.collector.Handler())
	}

	// Request flow: request ID, then logging, then recovery, then the
	// body cap, with security headers set before any handler writes.
	var handler http.Handler = mux
	handler = SecurityHeadersMiddleware(handler)
	handler = BodyLimitMiddleware(s.config.MaxBodyBytes)(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware(handler)

	return handler
}
