package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/vajra-io/vajra/internal/config"
	"github.com/vajra-io/vajra/internal/storage"
)

const (
	// hydrateAllThreshold is the collection size below which ranked entries
	// are hydrated wholesale from a full-scan lookup map. At or above it,
	// only the top hydrateTopLimit entries get individual point lookups and
	// the rest fall back to a placeholder. A deliberate precision/performance
	// tradeoff; keep both sides of it intact.
	hydrateAllThreshold = 20000
	hydrateTopLimit     = 500

	// Progress callback cadence.
	orderProgressStride = 2000
	itemProgressStride  = 5000

	// DefaultTopN is the ranked-list length when the caller does not ask for
	// a specific one.
	DefaultTopN = 5

	percentFactor = 100
)

type (
	// ProgressFunc receives coarse scan progress: the stage name, records
	// visited so far, and the total record count. Side-channel only; it never
	// affects results.
	ProgressFunc func(stage string, visited, total int)

	// Engine computes dashboard aggregates over the record store. Every call
	// takes the data-source mode and a filter snapshot explicitly, so a pass
	// is reproducible from its arguments alone.
	Engine struct {
		preview storage.Store
		full    storage.Store
		logger  *slog.Logger

		progress ProgressFunc

		hydrateAllThreshold int
		hydrateTopLimit     int
	}

	// EngineOption configures optional Engine behavior.
	EngineOption func(*Engine)

	// orderFact is what the item-join pass needs to know about an order.
	orderFact struct {
		date  string
		class Classification
	}
)

// WithProgress sets the scan progress callback.
func WithProgress(fn ProgressFunc) EngineOption {
	return func(e *Engine) {
		e.progress = fn
	}
}

// WithHydrationLimits overrides the hydration threshold and truncation limit.
func WithHydrationLimits(threshold, topLimit int) EngineOption {
	return func(e *Engine) {
		e.hydrateAllThreshold = threshold
		e.hydrateTopLimit = topLimit
	}
}

// NewEngine creates an aggregation engine over the two store tiers. The
// preview store serves ModePreview and ModeSyncing; the full store serves
// ModeFullySynced.
func NewEngine(preview, full storage.Store, opts ...EngineOption) *Engine {
	engine := &Engine{
		preview: preview,
		full:    full,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		})),
		hydrateAllThreshold: hydrateAllThreshold,
		hydrateTopLimit:     hydrateTopLimit,
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// store selects the tier for a mode. During ModeSyncing the full dataset is
// still landing, so reads stay on the preview snapshot.
func (e *Engine) store(mode DataSourceMode) storage.Store {
	if mode == ModeFullySynced {
		return e.full
	}

	return e.preview
}

func (e *Engine) reportProgress(stage string, visited, total int) {
	if e.progress != nil {
		e.progress(stage, visited, total)
	}
}

// returnedOrders loads the set of order IDs present in the returns
// collection. Membership overrides the order's own status literal.
func (e *Engine) returnedOrders(ctx context.Context, store storage.Store) (map[int64]struct{}, error) {
	set := make(map[int64]struct{})

	err := store.ScanReturns(ctx, func(r storage.Return) error {
		set[r.OrderID] = struct{}{}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return set, nil
}

// scanFilteredOrders streams orders through classification and the active
// filters. Orders failing the date range or status filter are skipped before
// the visitor sees them. Emits progress every orderProgressStride records.
func (e *Engine) scanFilteredOrders(
	ctx context.Context,
	store storage.Store,
	filters Filters,
	returnSet map[int64]struct{},
	visit func(order storage.Order, class Classification) error,
) error {
	total, err := store.CountOrders(ctx)
	if err != nil {
		return err
	}

	visited := 0

	visitOrder := func(o storage.Order) error {
		visited++
		if visited%orderProgressStride == 0 {
			e.reportProgress("orders", visited, total)
		}

		_, hasReturn := returnSet[o.ID]
		class := Classify(o.Status, hasReturn)

		if !filters.MatchesStatus(class) {
			return nil
		}

		return visit(o, class)
	}

	if filters.Bounded() {
		// The range scan already excludes undated orders and serves from the
		// order_date index on the persistent tier.
		lower, upper := filters.DateBounds()

		err = store.ScanOrdersByDateRange(ctx, lower, upper, visitOrder)
	} else {
		err = store.ScanOrders(ctx, visitOrder)
	}

	if err != nil {
		return err
	}

	e.reportProgress("orders", visited, total)

	return nil
}

// productLookup resolves products for item joins. Below the hydration
// threshold it holds the whole catalog in a map; above it, point lookups with
// a per-pass cache.
type productLookup struct {
	store storage.Store
	byID  map[int64]storage.Product
	lazy  bool
}

// newProductLookup builds the product join side for a pass.
func (e *Engine) newProductLookup(ctx context.Context, store storage.Store) (*productLookup, error) {
	count, err := store.CountProducts(ctx)
	if err != nil {
		return nil, err
	}

	lookup := &productLookup{
		store: store,
		byID:  make(map[int64]storage.Product),
	}

	if count >= e.hydrateAllThreshold {
		lookup.lazy = true

		return lookup, nil
	}

	err = store.ScanProducts(ctx, func(p storage.Product) error {
		lookup.byID[p.ID] = p

		return nil
	})
	if err != nil {
		return nil, err
	}

	return lookup, nil
}

// get resolves one product. The bool is false for dangling references; the
// caller skips the item's contribution in that case.
func (l *productLookup) get(ctx context.Context, id int64) (storage.Product, bool, error) {
	if p, ok := l.byID[id]; ok {
		return p, true, nil
	}

	if !l.lazy {
		return storage.Product{}, false, nil
	}

	p, found, err := l.store.GetProduct(ctx, id)
	if err != nil || !found {
		return storage.Product{}, false, err
	}

	l.byID[id] = *p

	return *p, true, nil
}

// estimateQuantity recovers an item's quantity from its line amount and the
// product's current selling price: round(amount / price), defaulting to 1
// when the price is zero/negative or the rounding lands on zero. The source
// data carries no reliable quantity field, so this exact heuristic is load
// bearing for historical comparability.
func estimateQuantity(itemAmount, sellingPrice float64) int {
	if sellingPrice <= 0 {
		return 1
	}

	quantity := int(math.Round(itemAmount / sellingPrice))
	if quantity == 0 {
		quantity = 1
	}

	return quantity
}

// monthKey truncates a "YYYY-MM-DD" date to its month bucket.
func monthKey(date string) string {
	if len(date) < 7 {
		return ""
	}

	return date[:7]
}

var monthNames = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// monthLabel renders a "YYYY-MM" bucket key as "Jan 2023".
func monthLabel(key string) string {
	if len(key) != 7 {
		return key
	}

	month := int(key[5]-'0')*10 + int(key[6]-'0')
	if month < 1 || month > 12 {
		return key
	}

	return fmt.Sprintf("%s %s", monthNames[month-1], key[:4])
}

// sortedBuckets flattens a bucket map into a series ordered ascending by key.
func sortedBuckets(buckets map[string]*SeriesBucket) []SeriesBucket {
	series := make([]SeriesBucket, 0, len(buckets))

	for _, bucket := range buckets {
		series = append(series, *bucket)
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Key < series[j].Key
	})

	return series
}

// topN sorts accumulated totals descending and truncates to n. Ties keep
// map-iteration order, which is unspecified; no tie-break is documented.
func topN(totals map[int64]float64, n int) []RankedEntry {
	entries := make([]RankedEntry, 0, len(totals))

	for id, value := range totals {
		entries = append(entries, RankedEntry{ID: id, Value: value})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}

	return entries
}

// sortedLabelValues flattens a label totals map descending by value.
func sortedLabelValues(totals map[string]float64) []LabelValue {
	values := make([]LabelValue, 0, len(totals))

	for label, value := range totals {
		values = append(values, LabelValue{Label: label, Value: value})
	}

	sort.SliceStable(values, func(i, j int) bool {
		return values[i].Value > values[j].Value
	})

	return values
}

// statusBreakdown renders classification counts in a stable display order,
// omitting zero counts.
func statusBreakdown(counts map[Classification]int) []StatusCount {
	order := []Classification{ClassCompleted, ClassReturned, ClassCancelled, ClassActive}

	breakdown := make([]StatusCount, 0, len(order))

	for _, class := range order {
		if counts[class] == 0 {
			continue
		}

		breakdown = append(breakdown, StatusCount{Status: class.String(), Count: counts[class]})
	}

	return breakdown
}

// marginPercent computes profit as a percentage of revenue.
func marginPercent(revenue, profit float64) float64 {
	if revenue == 0 {
		return 0
	}

	return profit / revenue * percentFactor
}
