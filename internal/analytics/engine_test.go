package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vajra-io/vajra/internal/storage"
)

// newFixtureStore loads the canonical three-order dataset:
//   - order 1: 2023-01-05, $100, Delivered, customer 1
//   - order 2: 2023-01-20, $50, Cancelled, customer 2
//   - order 3: 2023-02-01, $75, Pending, customer 3, present in returns
func newFixtureStore(t *testing.T) *storage.MemoryStore {
	t.Helper()

	ctx := context.Background()
	store := storage.NewMemoryStore()

	require.NoError(t, store.ReplaceProducts(ctx, []storage.Product{
		{
			ID: 1, Name: "Alpine Jacket", Category: "Outerwear", Department: "Men",
			Brand: "Northway", SellingPrice: 50, UnitCost: 20, MarginPercent: 0.6,
			Active: true, StockLevel: 12,
		},
		{
			ID: 2, Name: "Strider Sneaker", Category: "Footwear", Department: "Women",
			Brand: "Strider", SellingPrice: 25, UnitCost: 10, MarginPercent: 0.4,
			Active: false, StockLevel: 4,
		},
	}))

	require.NoError(t, store.ReplaceOrders(ctx, []storage.Order{
		{ID: 1, CustomerID: 1, Date: "2023-01-05", Status: "Delivered", TotalAmount: 100},
		{ID: 2, CustomerID: 2, Date: "2023-01-20", Status: "Cancelled", TotalAmount: 50},
		{ID: 3, CustomerID: 3, Date: "2023-02-01", Status: "Pending", TotalAmount: 75},
	}))

	require.NoError(t, store.ReplaceOrderItems(ctx, []storage.OrderItem{
		{ID: 1, OrderID: 1, ProductID: 1, TotalAmount: 100}, // quantity 2, cost 40
		{ID: 2, OrderID: 3, ProductID: 2, TotalAmount: 75},  // quantity 3, cost 30
		{ID: 3, OrderID: 2, ProductID: 2, TotalAmount: 50},  // cancelled order, excluded
	}))

	require.NoError(t, store.ReplaceReturns(ctx, []storage.Return{
		{
			ID: 1, OrderID: 3, ReturnDate: "2023-02-10",
			PickupScheduledDate: "2023-02-12", RefundProcessedDate: "2023-02-15",
		},
	}))

	require.NoError(t, store.ReplaceCustomers(ctx, []storage.Customer{
		{ID: 1, FirstName: "Ada", LastName: "Lovelace"},
		{ID: 2, FirstName: "Grace", LastName: "Hopper"},
		{ID: 3, FirstName: "Alan", LastName: "Turing"},
	}))

	return store
}

func newFixtureEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()

	store := newFixtureStore(t)

	return NewEngine(store, store, opts...)
}

func TestOverviewWithDateFilter(t *testing.T) {
	engine := newFixtureEngine(t)

	filters := DefaultFilters()
	filters.StartDate = "2023-01-01"
	filters.EndDate = "2023-01-31"

	result, err := engine.Overview(context.Background(), ModePreview, filters, DefaultTopN)
	require.NoError(t, err)

	// Order 1 only: order 2 is cancelled, order 3 falls outside the range.
	require.InDelta(t, 100.0, result.TotalRevenue, 0.001)
	require.Equal(t, []StatusCount{{Status: "Completed", Count: 1}}, result.StatusBreakdown)

	require.Len(t, result.MonthlySeries, 1)
	require.Equal(t, "2023-01", result.MonthlySeries[0].Key)
	require.Equal(t, "Jan 2023", result.MonthlySeries[0].Label)
	require.InDelta(t, 100.0, result.MonthlySeries[0].Revenue, 0.001)
}

func TestOverviewWithoutDateFilter(t *testing.T) {
	engine := newFixtureEngine(t)

	result, err := engine.Overview(context.Background(), ModePreview, DefaultFilters(), DefaultTopN)
	require.NoError(t, err)

	// Orders 1 and 3; order 2 excluded as cancelled.
	require.InDelta(t, 175.0, result.TotalRevenue, 0.001)
	require.Equal(t, []StatusCount{
		{Status: "Completed", Count: 1},
		{Status: "Returned", Count: 1},
		{Status: "Cancelled", Count: 1},
	}, result.StatusBreakdown)

	require.Len(t, result.MonthlySeries, 2)
	require.Equal(t, "2023-01", result.MonthlySeries[0].Key)
	require.Equal(t, "2023-02", result.MonthlySeries[1].Key)

	require.Equal(t, 3, result.TotalOrders)
	require.Equal(t, 3, result.TotalCustomers)
	require.Equal(t, 2, result.TotalProducts)

	// Item costs: 2×20 for order 1, 3×10 for order 3.
	require.InDelta(t, 70.0, result.TotalCost, 0.001)
	require.InDelta(t, 105.0, result.GrossProfit, 0.001)
}

func TestOverviewIdempotent(t *testing.T) {
	engine := newFixtureEngine(t)
	ctx := context.Background()

	first, err := engine.Overview(ctx, ModePreview, DefaultFilters(), DefaultTopN)
	require.NoError(t, err)

	second, err := engine.Overview(ctx, ModePreview, DefaultFilters(), DefaultTopN)
	require.NoError(t, err)

	require.InDelta(t, first.TotalRevenue, second.TotalRevenue, 0.001)
	require.Equal(t, first.StatusBreakdown, second.StatusBreakdown)
	require.Equal(t, first.TopCustomers, second.TopCustomers)
}

func TestOverviewTopListsProperties(t *testing.T) {
	engine := newFixtureEngine(t)

	result, err := engine.Overview(context.Background(), ModePreview, DefaultFilters(), 2)
	require.NoError(t, err)

	require.LessOrEqual(t, len(result.TopCustomers), 2)
	require.LessOrEqual(t, len(result.TopProducts), 2)

	seen := make(map[int64]bool)

	for i, entry := range result.TopCustomers {
		require.False(t, seen[entry.ID], "duplicate identifier in top list")
		seen[entry.ID] = true

		if i > 0 {
			require.GreaterOrEqual(t, result.TopCustomers[i-1].Value, entry.Value)
		}
	}

	// All three customers fit below the hydration threshold, so every ranked
	// entry carries a resolved name.
	require.Equal(t, "Ada Lovelace", result.TopCustomers[0].Name)
	require.InDelta(t, 100.0, result.TopCustomers[0].Value, 0.001)
}

func TestOverviewNotReady(t *testing.T) {
	empty := storage.NewMemoryStore()
	engine := NewEngine(empty, empty)

	_, err := engine.Overview(context.Background(), ModePreview, DefaultFilters(), DefaultTopN)
	require.ErrorIs(t, err, storage.ErrStoreNotReady)
}

func TestOverviewStatusFilter(t *testing.T) {
	engine := newFixtureEngine(t)

	filters := DefaultFilters()
	filters.Status = "Completed"

	result, err := engine.Overview(context.Background(), ModePreview, filters, DefaultTopN)
	require.NoError(t, err)

	require.InDelta(t, 100.0, result.TotalRevenue, 0.001)
	require.Equal(t, []StatusCount{{Status: "Completed", Count: 1}}, result.StatusBreakdown)
}

func TestOverviewReportsProgress(t *testing.T) {
	var calls int

	engine := newFixtureEngine(t, WithProgress(func(stage string, visited, total int) {
		calls++

		require.LessOrEqual(t, visited, total)
	}))

	_, err := engine.Overview(context.Background(), ModePreview, DefaultFilters(), DefaultTopN)
	require.NoError(t, err)

	// At least the final flush for orders and order items.
	require.GreaterOrEqual(t, calls, 2)
}

func TestEstimateQuantity(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		price  float64
		want   int
	}{
		{"exact multiple", 100, 50, 2},
		{"rounds up", 80, 30, 3},
		{"rounds down", 70, 30, 2},
		{"zero price", 100, 0, 1},
		{"negative price", 100, -5, 1},
		{"rounds to zero", 10, 50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, estimateQuantity(tt.amount, tt.price))
		})
	}
}

func TestHydrationAboveThreshold(t *testing.T) {
	// Force the point-lookup path with a tiny threshold and a top limit of 1:
	// only the first ranked entry resolves, everything beyond keeps the
	// placeholder.
	engine := newFixtureEngine(t, WithHydrationLimits(1, 1))

	result, err := engine.Overview(context.Background(), ModePreview, DefaultFilters(), DefaultTopN)
	require.NoError(t, err)

	require.Len(t, result.TopCustomers, 2)
	require.Equal(t, "Ada Lovelace", result.TopCustomers[0].Name)
	require.Equal(t, "Customer 3", result.TopCustomers[1].Name)

	require.Equal(t, "Alpine Jacket", result.TopProducts[0].Name)
	require.Equal(t, "ID 2", result.TopProducts[1].Name)
}

func TestHydrationBelowThreshold(t *testing.T) {
	engine := newFixtureEngine(t)

	result, err := engine.Overview(context.Background(), ModePreview, DefaultFilters(), DefaultTopN)
	require.NoError(t, err)

	for _, entry := range result.TopCustomers {
		require.NotRegexp(t, `^Customer \d+$`, entry.Name)
	}

	for _, entry := range result.TopProducts {
		require.NotRegexp(t, `^ID \d+$`, entry.Name)
	}
}

func TestMonthLabel(t *testing.T) {
	require.Equal(t, "Jan 2023", monthLabel("2023-01"))
	require.Equal(t, "Dec 2024", monthLabel("2024-12"))
	require.Equal(t, "garbage", monthLabel("garbage"))
}
