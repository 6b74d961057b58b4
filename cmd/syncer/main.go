// Package main provides the one-shot full dataset sync tool for the Vajra
// analytics service.
//
// It fetches every entity snapshot from the dataset source and replaces the
// persistent collections, then exits. Useful for cron-style resyncs and for
// seeding a fresh database.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/vajra-io/vajra/internal/config"
	"github.com/vajra-io/vajra/internal/dataset"
	"github.com/vajra-io/vajra/internal/storage"
	"github.com/vajra-io/vajra/internal/sync"
)

// Version information.
const (
	version = "1.0.0-dev"
	name    = "syncer"
)

func main() {
	versionFlag := flag.Bool("version", false, "show version information")
	flag.Parse()

	if *versionFlag {
		log.Printf("%s v%s\n", name, version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
	}))

	logger.Info("Starting one-shot full sync",
		slog.String("service", name),
		slog.String("version", version),
	)

	storageConfig := storage.LoadConfig()
	if err := storageConfig.Validate(); err != nil {
		logger.Error("Invalid storage configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbConn, err := storage.NewConnection(storageConfig)
	if err != nil {
		logger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		_ = dbConn.Close()
	}()

	persistent, err := storage.NewPersistentStore(dbConn)
	if err != nil {
		logger.Error("Failed to create persistent store", slog.String("error", err.Error()))
		os.Exit(1) //nolint:gocritic // Explicit cleanup handled by the process exiting
	}

	datasetConfig, err := dataset.LoadConfigFromEnv()
	if err != nil {
		logger.Error("Failed to load dataset configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client := dataset.NewClient(datasetConfig, nil)

	syncer := sync.NewSyncer(client, storage.NewMemoryStore(), persistent)

	if err := syncer.RunFull(context.Background()); err != nil {
		logger.Error("Full sync failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	status := syncer.Status()
	for entity, count := range status.Counts {
		logger.Info("Entity synced",
			slog.String("entity", entity),
			slog.Int("records", count),
		)
	}

	logger.Info("Full sync completed", slog.String("run_id", status.RunID))
}
