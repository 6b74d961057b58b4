package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/vajra-io/vajra/internal/config"
	"github.com/vajra-io/vajra/internal/storage"
)

const defaultFetchTimeout = 5 * time.Minute

var (
	// ErrSnapshotUnavailable is returned when a snapshot URL cannot be
	// fetched or returns a non-2xx status.
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")

	// ErrUnknownEntity is returned for an entity name outside the snapshot set.
	ErrUnknownEntity = errors.New("unknown entity")
)

// Snapshot holds one decoded snapshot set. Records are normalized at decode
// time so downstream consumers never defend against malformed fields inline.
type Snapshot struct {
	Products   []storage.Product
	Orders     []storage.Order
	OrderItems []storage.OrderItem
	Returns    []storage.Return
	Customers  []storage.Customer
}

// Client fetches bulk JSON snapshots over HTTP.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a snapshot client. A nil httpClient gets a default with a
// generous timeout sized for multi-megabyte exports.
func NewClient(cfg *Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFetchTimeout}
	}

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		})),
	}
}

// FetchPreview downloads and decodes the small snapshot set.
func (c *Client) FetchPreview(ctx context.Context) (*Snapshot, error) {
	return c.fetchSet(ctx, c.config.PreviewURL)
}

// FetchFull downloads and decodes the full snapshot set.
func (c *Client) FetchFull(ctx context.Context) (*Snapshot, error) {
	return c.fetchSet(ctx, c.config.FullURL)
}

func (c *Client) fetchSet(ctx context.Context, urlFor func(string) string) (*Snapshot, error) {
	snapshot := &Snapshot{}

	for _, entity := range Entities {
		url := urlFor(entity)
		if url == "" {
			return nil, fmt.Errorf("%w: no URL configured for %s", ErrSnapshotUnavailable, entity)
		}

		body, err := c.fetch(ctx, url)
		if err != nil {
			return nil, err
		}

		if err := snapshot.decodeEntity(entity, body); err != nil {
			return nil, fmt.Errorf("failed to decode %s snapshot: %w", entity, err)
		}
	}

	c.logger.Info("snapshot set fetched",
		slog.Int("products", len(snapshot.Products)),
		slog.Int("orders", len(snapshot.Orders)),
		slog.Int("order_items", len(snapshot.OrderItems)),
		slog.Int("returns", len(snapshot.Returns)),
		slog.Int("customers", len(snapshot.Customers)),
	)

	return snapshot, nil
}

// FetchEntity downloads and decodes one entity's snapshot into the given
// snapshot, using the full URLs. Lets the sync pipeline load entities one at
// a time instead of holding the whole set in memory.
func (c *Client) FetchEntity(ctx context.Context, entity string, snapshot *Snapshot) error {
	url := c.config.FullURL(entity)
	if url == "" {
		return fmt.Errorf("%w: no URL configured for %s", ErrSnapshotUnavailable, entity)
	}

	body, err := c.fetch(ctx, url)
	if err != nil {
		return err
	}

	return snapshot.decodeEntity(entity, body)
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSnapshotUnavailable, url, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrSnapshotUnavailable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}

	return body, nil
}

func (s *Snapshot) decodeEntity(entity string, body []byte) error {
	switch entity {
	case "products":
		return json.Unmarshal(body, &s.Products)
	case "orders":
		if err := json.Unmarshal(body, &s.Orders); err != nil {
			return err
		}

		for i := range s.Orders {
			s.Orders[i] = storage.NormalizeOrder(s.Orders[i])
		}

		return nil
	case "order_items":
		return json.Unmarshal(body, &s.OrderItems)
	case "returns":
		if err := json.Unmarshal(body, &s.Returns); err != nil {
			return err
		}

		for i := range s.Returns {
			s.Returns[i] = storage.NormalizeReturn(s.Returns[i])
		}

		return nil
	case "customers":
		return json.Unmarshal(body, &s.Customers)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
}
