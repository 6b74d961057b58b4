// Package api provides the HTTP API server for the admin analytics service.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vajra-io/vajra/internal/analytics"
	"github.com/vajra-io/vajra/internal/api/middleware"
	"github.com/vajra-io/vajra/internal/storage"
	"github.com/vajra-io/vajra/internal/sync"
)

type (
	// SyncState exposes the data-source mode machine to request handlers.
	// Implemented by sync.Syncer.
	SyncState interface {
		Mode() analytics.DataSourceMode
		Status() sync.Status
	}

	// Pinger checks the persistent tier's health for readiness probes.
	// Implemented by storage.Connection.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Server represents the HTTP API server.
	Server struct {
		httpServer  *http.Server
		logger      *slog.Logger
		config      *ServerConfig
		startTime   time.Time
		engine      *analytics.Engine
		syncState   SyncState
		db          Pinger
		keyStore    storage.KeyStore
		rateLimiter middleware.RateLimiter

		// warmOverview holds the default-filter overview recomputed on every
		// data-source mode transition. Only the most recently started
		// recomputation ever publishes its result.
		warmOverview *analytics.Runner[*analytics.OverviewResult]
	}
)

// NewServer creates a new HTTP server instance with structured logging and middleware stack.
//
// Dependencies are injected explicitly rather than being part of ServerConfig.
//
// Parameters:
//   - cfg: Pure server configuration (ports, timeouts, CORS settings)
//   - engine: Aggregation engine serving the dashboard endpoints
//   - syncState: Data-source mode machine (nil means always preview)
//   - db: Persistent tier health check for readiness probes (nil disables the DB probe)
//   - keyStore: Admin API key storage (nil disables authentication)
//   - rateLimiter: Rate limiter implementation (nil disables rate limiting)
func NewServer(
	cfg *ServerConfig,
	engine *analytics.Engine,
	syncState SyncState,
	db Pinger,
	keyStore storage.KeyStore,
	rateLimiter middleware.RateLimiter,
) *Server {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	mux := http.NewServeMux()

	server := &Server{
		logger:       logger,
		config:       cfg,
		engine:       engine,
		syncState:    syncState,
		db:           db,
		keyStore:     keyStore,
		rateLimiter:  rateLimiter,
		warmOverview: analytics.NewRunner[*analytics.OverviewResult](),
	}

	server.setupRoutes(mux)

	if keyStore != nil { // pragma: allowlist secret
		logger.Info("Admin authentication middleware enabled")
	} else {
		logger.Warn("KeyStore not configured - admin authentication middleware disabled")
	}

	if rateLimiter != nil {
		logger.Info("Rate limiting middleware enabled")
	} else {
		logger.Warn("RateLimiter not configured - rate limiting middleware disabled")
	}

	// Apply middleware chain using functional options pattern.
	// Middleware executes in the order listed (top-to-bottom):
	//   1. CorrelationID - generate correlation ID for all responses
	//   2. Recovery - catch panics in all downstream middleware
	//   3. Admin Auth - validate admin key and set AdminContext (optional)
	//   4. RateLimit - block requests before expensive aggregation passes (optional)
	//   5. RequestLogger - log only legitimate requests (not rate-limited spam)
	//   6. CORS - lightweight header manipulation
	handler := middleware.Apply(mux,
		middleware.WithCorrelationID(),
		middleware.WithRecovery(logger),
		middleware.WithAdminAuth(keyStore, logger),
		middleware.WithRateLimit(rateLimiter, logger),
		middleware.WithRequestLogger(logger),
		middleware.WithCORS(cfg.ToCORSConfig()),
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	server.httpServer = httpServer

	return server
}

// mode returns the active data-source mode, defaulting to preview when no
// sync state machine is wired in.
func (s *Server) mode() analytics.DataSourceMode {
	if s.syncState == nil {
		return analytics.ModePreview
	}

	return s.syncState.Mode()
}

// RefreshOverview recomputes the warm default-filter overview for the current
// data-source mode. Wire it as the syncer's mode-change callback so the main
// dashboard stays warm across snapshot swaps. A newer refresh cancels the
// in-flight one; a superseded pass never publishes.
func (s *Server) RefreshOverview(ctx context.Context) {
	pass := s.warmOverview.Begin(ctx)

	result, err := s.engine.Overview(pass.Context(), s.mode(), analytics.DefaultFilters(), analytics.DefaultTopN)
	if err != nil {
		if pass.Superseded() {
			return
		}

		s.logger.Warn("warm overview refresh failed",
			slog.String("error", err.Error()),
		)

		return
	}

	if pass.Publish(result) {
		s.logger.Info("warm overview refreshed",
			slog.String("mode", result.Mode),
			slog.Int("orders", result.TotalOrders),
		)
	}
}

// Start starts the HTTP server and blocks until shutdown.
// It handles graceful shutdown on SIGINT and SIGTERM signals.
func (s *Server) Start() error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	// Record server start time for uptime calculation
	s.startTime = time.Now()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("Starting admin analytics API server",
			slog.String("address", s.config.Address()),
			slog.Duration("read_timeout", s.config.ReadTimeout),
			slog.Duration("write_timeout", s.config.WriteTimeout),
			slog.Duration("shutdown_timeout", s.config.ShutdownTimeout),
		)

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed to start",
				slog.String("address", s.config.Address()),
				slog.String("error", err.Error()),
			)

			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		return err
	case sig := <-stop:
		s.logger.Info("Received shutdown signal",
			slog.String("signal", sig.String()),
		)

		return s.shutdown()
	}
}

// shutdown gracefully shuts down the server.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Initiating server shutdown",
		slog.Duration("shutdown_timeout", s.config.ShutdownTimeout),
	)

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown failed",
			slog.String("error", err.Error()),
			slog.Duration("shutdown_timeout", s.config.ShutdownTimeout),
		)

		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Close key store to release database connections
	if s.keyStore != nil { // pragma: allowlist secret
		s.logger.Info("Closing admin key store")

		if store, ok := s.keyStore.(io.Closer); ok {
			if err := store.Close(); err != nil {
				s.logger.Error("Failed to close admin key store", slog.String("error", err.Error()))
			} else {
				s.logger.Info("Admin key store closed successfully")
			}
		}
	}

	// Close rate limiter to stop (InMemoryRateLimiter) background cleanup goroutines
	if s.rateLimiter != nil {
		s.logger.Info("Closing rate limiter")

		if limiter, ok := s.rateLimiter.(io.Closer); ok {
			if err := limiter.Close(); err != nil {
				s.logger.Error("Failed to close rate limiter", slog.String("error", err.Error()))
			} else {
				s.logger.Info("Rate limiter closed successfully")
			}
		}
	}

	s.logger.Info("Server shutdown completed successfully")

	return nil
}
