package sync

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/segmentio/kafka-go"

	"github.com/vajra-io/vajra/internal/config"
)

// Notifier consumes the dataset refresh topic: each message means the
// upstream export pipeline published new snapshot files, and triggers a full
// re-sync. Optional; deployments without a broker skip it entirely.
type Notifier struct {
	reader  *kafka.Reader
	trigger func(ctx context.Context)
	logger  *slog.Logger
}

// NewNotifier creates a refresh notifier. Returns nil when no brokers are
// configured, which callers treat as "notifications disabled".
func NewNotifier(cfg *NotifierConfig, trigger func(ctx context.Context)) *Notifier {
	if len(cfg.Brokers) == 0 {
		return nil
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})

	return &Notifier{
		reader:  reader,
		trigger: trigger,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		})),
	}
}

// Run consumes refresh messages until the context is cancelled. Read errors
// other than cancellation are logged and retried; the consumer group resumes
// from the committed offset.
func (n *Notifier) Run(ctx context.Context) error {
	n.logger.Info("dataset refresh notifier started",
		slog.String("topic", n.reader.Config().Topic),
	)

	for {
		message, err := n.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}

			n.logger.Error("failed to read refresh message", slog.String("error", err.Error()))

			continue
		}

		n.logger.Info("dataset refresh requested",
			slog.String("key", string(message.Key)),
			slog.Int64("offset", message.Offset),
		)

		n.trigger(ctx)
	}
}

// Close shuts the underlying reader down.
func (n *Notifier) Close() error {
	return n.reader.Close()
}
