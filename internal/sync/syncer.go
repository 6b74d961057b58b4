// Package sync populates the record store tiers: the in-memory preview
// snapshot eagerly at startup, then the full dataset into PostgreSQL in the
// background. It owns the data-source mode state machine
// Preview -> Syncing -> FullySynced.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/vajra-io/vajra/internal/analytics"
	"github.com/vajra-io/vajra/internal/config"
	"github.com/vajra-io/vajra/internal/dataset"
	"github.com/vajra-io/vajra/internal/storage"
)

type (
	// Status is a point-in-time view of the sync state machine, served by the
	// sync status endpoint.
	Status struct {
		Mode        string         `json:"mode"`
		RunID       string         `json:"runId,omitempty"`
		StartedAt   *time.Time     `json:"startedAt,omitempty"`
		CompletedAt *time.Time     `json:"completedAt,omitempty"`
		Counts      map[string]int `json:"counts,omitempty"`
		LastError   string         `json:"lastError,omitempty"`
	}

	// ModeChangeFunc is notified after every data-source mode transition and
	// after each entity lands during a full sync, so consumers can recompute
	// warm aggregates.
	ModeChangeFunc func(ctx context.Context, mode analytics.DataSourceMode)

	// Syncer drives both snapshot loads. Safe for concurrent Status reads
	// while a sync runs; only one full sync runs at a time.
	Syncer struct {
		client  *dataset.Client
		preview storage.Writer
		full    storage.Writer
		logger  *slog.Logger

		onChange ModeChangeFunc

		mutex       gosync.Mutex
		running     bool
		mode        analytics.DataSourceMode
		runID       string
		startedAt   *time.Time
		completedAt *time.Time
		counts      map[string]int
		lastError   string
	}

	// SyncerOption configures optional Syncer behavior.
	SyncerOption func(*Syncer)
)

// WithModeChange sets the mode transition callback.
func WithModeChange(fn ModeChangeFunc) SyncerOption {
	return func(s *Syncer) {
		s.onChange = fn
	}
}

// NewSyncer creates a syncer writing previews into the memory tier and full
// snapshots into the persistent tier.
func NewSyncer(client *dataset.Client, preview, full storage.Writer, opts ...SyncerOption) *Syncer {
	syncer := &Syncer{
		client:  client,
		preview: preview,
		full:    full,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		})),
		mode:   analytics.ModePreview,
		counts: make(map[string]int),
	}

	for _, opt := range opts {
		opt(syncer)
	}

	return syncer
}

// Mode returns the current data-source mode.
func (s *Syncer) Mode() analytics.DataSourceMode {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.mode
}

// Status returns a snapshot of the sync state.
func (s *Syncer) Status() Status {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	counts := make(map[string]int, len(s.counts))
	for entity, count := range s.counts {
		counts[entity] = count
	}

	return Status{
		Mode:        s.mode.String(),
		RunID:       s.runID,
		StartedAt:   s.startedAt,
		CompletedAt: s.completedAt,
		Counts:      counts,
		LastError:   s.lastError,
	}
}

// LoadPreview fetches the small snapshot set and swaps it into the preview
// store. Serving can start as soon as this returns.
func (s *Syncer) LoadPreview(ctx context.Context) error {
	snapshot, err := s.client.FetchPreview(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch preview snapshot: %w", err)
	}

	if err := s.writeSnapshot(ctx, s.preview, snapshot); err != nil {
		return fmt.Errorf("failed to load preview snapshot: %w", err)
	}

	s.logger.Info("preview snapshot loaded",
		slog.Int("orders", len(snapshot.Orders)),
		slog.Int("products", len(snapshot.Products)),
	)

	s.notify(ctx, analytics.ModePreview)

	return nil
}

// RunFull performs a full dataset sync: per entity, fetch the snapshot and
// replace the persistent collection in one transaction. Each entity swap is
// atomic for readers; cross-entity consistency during the sync window is a
// documented non-guarantee. Concurrent calls are coalesced: a second RunFull
// while one is in flight returns immediately.
func (s *Syncer) RunFull(ctx context.Context) error {
	s.mutex.Lock()

	if s.running {
		s.mutex.Unlock()
		s.logger.Info("full sync already running, skipping")

		return nil
	}

	now := time.Now().UTC()

	s.running = true
	s.mode = analytics.ModeSyncing
	s.runID = uuid.New().String()
	s.startedAt = &now
	s.completedAt = nil
	s.lastError = ""
	runID := s.runID

	s.mutex.Unlock()

	s.notify(ctx, analytics.ModeSyncing)

	s.logger.Info("full sync started", slog.String("run_id", runID))

	err := s.syncAllEntities(ctx, runID)

	s.mutex.Lock()

	s.running = false
	done := time.Now().UTC()
	s.completedAt = &done

	if err != nil {
		// The preview snapshot keeps serving; the next trigger retries.
		s.mode = analytics.ModePreview
		s.lastError = err.Error()
	} else {
		s.mode = analytics.ModeFullySynced
	}

	mode := s.mode

	s.mutex.Unlock()

	if err != nil {
		s.logger.Error("full sync failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)

		return err
	}

	s.logger.Info("full sync completed",
		slog.String("run_id", runID),
		slog.Duration("elapsed", done.Sub(now)),
	)

	s.notify(ctx, mode)

	return nil
}

func (s *Syncer) syncAllEntities(ctx context.Context, runID string) error {
	for _, entity := range dataset.Entities {
		snapshot := &dataset.Snapshot{}

		if err := s.client.FetchEntity(ctx, entity, snapshot); err != nil {
			return fmt.Errorf("failed to fetch %s: %w", entity, err)
		}

		count, err := s.replaceEntity(ctx, entity, snapshot)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", entity, err)
		}

		s.mutex.Lock()
		s.counts[entity] = count
		s.mutex.Unlock()

		s.logger.Info("entity synced",
			slog.String("run_id", runID),
			slog.String("entity", entity),
			slog.Int("records", count),
		)
	}

	return nil
}

func (s *Syncer) replaceEntity(ctx context.Context, entity string, snapshot *dataset.Snapshot) (int, error) {
	switch entity {
	case "products":
		return len(snapshot.Products), s.full.ReplaceProducts(ctx, snapshot.Products)
	case "orders":
		return len(snapshot.Orders), s.full.ReplaceOrders(ctx, snapshot.Orders)
	case "order_items":
		return len(snapshot.OrderItems), s.full.ReplaceOrderItems(ctx, snapshot.OrderItems)
	case "returns":
		return len(snapshot.Returns), s.full.ReplaceReturns(ctx, snapshot.Returns)
	case "customers":
		return len(snapshot.Customers), s.full.ReplaceCustomers(ctx, snapshot.Customers)
	default:
		return 0, fmt.Errorf("%w: %s", dataset.ErrUnknownEntity, entity)
	}
}

func (s *Syncer) writeSnapshot(ctx context.Context, w storage.Writer, snapshot *dataset.Snapshot) error {
	if err := w.ReplaceProducts(ctx, snapshot.Products); err != nil {
		return err
	}

	if err := w.ReplaceOrders(ctx, snapshot.Orders); err != nil {
		return err
	}

	if err := w.ReplaceOrderItems(ctx, snapshot.OrderItems); err != nil {
		return err
	}

	if err := w.ReplaceReturns(ctx, snapshot.Returns); err != nil {
		return err
	}

	return w.ReplaceCustomers(ctx, snapshot.Customers)
}

func (s *Syncer) notify(ctx context.Context, mode analytics.DataSourceMode) {
	if s.onChange != nil {
		s.onChange(ctx, mode)
	}
}
