// Package main provides the Vajra admin analytics service.
//
// The service loads the small preview snapshot into memory at startup, serves
// the dashboard API immediately, and syncs the full dataset into PostgreSQL
// in the background.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/vajra-io/vajra/internal/analytics"
	"github.com/vajra-io/vajra/internal/api"
	"github.com/vajra-io/vajra/internal/api/middleware"
	"github.com/vajra-io/vajra/internal/config"
	"github.com/vajra-io/vajra/internal/dataset"
	"github.com/vajra-io/vajra/internal/storage"
	"github.com/vajra-io/vajra/internal/sync"
)

// Version information.
const (
	version = "1.0.0-dev"
	name    = "vajra"
)

func main() {
	versionFlag := flag.Bool("version", false, "show version information")
	flag.Parse()

	if *versionFlag {
		log.Printf("%s v%s\n", name, version)
		os.Exit(0)
	}

	serverConfig := api.LoadServerConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: serverConfig.LogLevel,
	}))

	logger.Info("Starting Vajra service",
		slog.String("service", name),
		slog.String("version", version),
	)

	logger.Info("Loaded server configuration",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.Duration("read_timeout", serverConfig.ReadTimeout),
		slog.Duration("write_timeout", serverConfig.WriteTimeout),
		slog.Duration("shutdown_timeout", serverConfig.ShutdownTimeout),
		slog.String("log_level", serverConfig.LogLevel.String()),
	)

	middlewareConfig := middleware.LoadConfig()

	// Graceful shutdown handled by server.shutdown()
	rateLimiter := middleware.NewInMemoryRateLimiter(middlewareConfig)

	logger.Info("Rate limiter initialized",
		slog.Int("global_rps", middlewareConfig.GlobalRPS),
		slog.Int("key_rps", middlewareConfig.KeyRPS),
		slog.Int("unauth_rps", middlewareConfig.UnAuthRPS),
	)

	// The preview tier is always available; the persistent tier is optional
	// so preview-only deployments run without a database.
	preview := storage.NewMemoryStore()

	var (
		full       storage.Store = preview
		fullWriter storage.Writer
		dbConn     *storage.Connection
		keyStore   storage.KeyStore
	)

	storageConfig := storage.LoadConfig()

	if err := storageConfig.Validate(); err != nil {
		logger.Warn("Database not configured - running in preview-only mode",
			slog.String("reason", err.Error()),
		)
	} else {
		conn, err := storage.NewConnection(storageConfig)
		if err != nil {
			logger.Error("Failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}

		dbConn = conn

		defer func() {
			_ = dbConn.Close()
		}()

		persistent, err := storage.NewPersistentStore(dbConn)
		if err != nil {
			logger.Error("Failed to create persistent store", slog.String("error", err.Error()))
			os.Exit(1) //nolint:gocritic // Explicit cleanup handled by the process exiting
		}

		full = persistent
		fullWriter = persistent

		logger.Info("Persistent store initialized",
			slog.String("database_url", storageConfig.MaskDatabaseURL()),
			slog.Int("database_max_open_conns", storageConfig.MaxOpenConns),
		)

		authEnabled := config.GetEnvBool("VAJRA_AUTH_ENABLED", false)
		if authEnabled {
			keyStore, err = storage.NewPersistentKeyStore(dbConn)
			if err != nil {
				logger.Error("Failed to connect to persistent key store", slog.String("error", err.Error()))
				os.Exit(1)
			}

			logger.Info("Admin authentication enabled",
				slog.String("database_url", storageConfig.MaskDatabaseURL()),
			)
		} else {
			logger.Warn("Admin authentication disabled",
				slog.String("security", "Only use in trusted networks (localhost, VPN, internal)"),
				slog.String("note", "Set VAJRA_AUTH_ENABLED=true to enable API key authentication"),
			)
		}
	}

	engine := analytics.NewEngine(preview, full)

	datasetConfig, err := dataset.LoadConfigFromEnv()
	if err != nil {
		logger.Error("Failed to load dataset configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client := dataset.NewClient(datasetConfig, nil)

	syncConfig := sync.LoadConfig()

	// The syncer notifies the server on every mode transition so the warm
	// default-filter overview is recomputed against the new snapshot. The
	// server pointer is populated before any sync goroutine starts.
	var server *api.Server

	syncer := sync.NewSyncer(client, preview, fullWriter,
		sync.WithModeChange(func(ctx context.Context, _ analytics.DataSourceMode) {
			if server != nil {
				server.RefreshOverview(ctx)
			}
		}),
	)

	var db api.Pinger
	if dbConn != nil {
		db = dbConn
	}

	server = api.NewServer(serverConfig, engine, syncer, db, keyStore, rateLimiter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Startup sequence: preview first so serving starts immediately, then the
	// full sync in the background when a database is configured.
	go func() {
		if err := syncer.LoadPreview(ctx); err != nil {
			logger.Error("Failed to load preview snapshot", slog.String("error", err.Error()))
		}

		if fullWriter == nil {
			return
		}

		if err := syncer.RunFull(ctx); err != nil {
			logger.Error("Initial full sync failed", slog.String("error", err.Error()))
		}
	}()

	if fullWriter != nil {
		startBackgroundSync(ctx, logger, syncer, syncConfig)
	}

	if err := server.Start(); err != nil {
		logger.Error("Server failed to start",
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger.Info("Vajra service stopped")
}

// startBackgroundSync starts the optional Kafka refresh notifier and the
// periodic resync ticker. Both re-trigger a full sync; the syncer coalesces
// concurrent triggers.
func startBackgroundSync(ctx context.Context, logger *slog.Logger, syncer *sync.Syncer, cfg *sync.Config) {
	trigger := func(ctx context.Context) {
		if err := syncer.RunFull(ctx); err != nil {
			logger.Error("Triggered full sync failed", slog.String("error", err.Error()))
		}
	}

	if notifier := sync.NewNotifier(&cfg.Notifier, trigger); notifier != nil {
		go func() {
			defer func() { _ = notifier.Close() }()

			if err := notifier.Run(ctx); err != nil {
				logger.Info("Dataset refresh notifier stopped", slog.String("reason", err.Error()))
			}
		}()
	} else {
		logger.Info("Kafka refresh notifier disabled - no brokers configured")
	}

	if cfg.ResyncInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.ResyncInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					trigger(ctx)
				}
			}
		}()
	}
}
