package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vajra-io/vajra/internal/storage"
)

func TestRevenueKPIs(t *testing.T) {
	engine := newFixtureEngine(t)

	result, err := engine.Revenue(context.Background(), ModePreview, DefaultFilters(), DefaultTopN)
	require.NoError(t, err)

	require.InDelta(t, 175.0, result.TotalRevenue, 0.001)
	require.InDelta(t, 70.0, result.TotalCost, 0.001)
	require.InDelta(t, 105.0, result.GrossProfit, 0.001)
	require.InDelta(t, 60.0, result.MarginPercent, 0.001)

	require.Len(t, result.MonthlySeries, 2)
	require.InDelta(t, 100.0, result.MonthlySeries[0].Revenue, 0.001)
	require.InDelta(t, 40.0, result.MonthlySeries[0].Cost, 0.001)
	require.InDelta(t, 60.0, result.MonthlySeries[0].Profit, 0.001)

	require.Len(t, result.TopProducts, 2)
	require.Equal(t, "Alpine Jacket", result.TopProducts[0].Name)
	require.InDelta(t, 100.0, result.TopProducts[0].Revenue, 0.001)
	require.InDelta(t, 40.0, result.TopProducts[0].Cost, 0.001)
	require.InDelta(t, 60.0, result.TopProducts[0].Profit, 0.001)
}

func TestRevenueExcludesReturnedItems(t *testing.T) {
	ctx := context.Background()
	store := newFixtureStore(t)

	// Flag order 1's item as returned: its cost drops out of the item-level
	// aggregation while the order's own revenue stays.
	require.NoError(t, store.ReplaceOrderItems(ctx, []storage.OrderItem{
		{ID: 1, OrderID: 1, ProductID: 1, TotalAmount: 100, Returned: true},
		{ID: 2, OrderID: 3, ProductID: 2, TotalAmount: 75},
	}))

	engine := NewEngine(store, store)

	result, err := engine.Revenue(ctx, ModePreview, DefaultFilters(), DefaultTopN)
	require.NoError(t, err)

	require.InDelta(t, 175.0, result.TotalRevenue, 0.001)
	require.InDelta(t, 30.0, result.TotalCost, 0.001)
	require.Len(t, result.TopProducts, 1)
	require.Equal(t, int64(2), result.TopProducts[0].ID)
}

func TestRevenueSkipsDanglingReferences(t *testing.T) {
	ctx := context.Background()
	store := newFixtureStore(t)

	// An item pointing at a missing product or order contributes nothing and
	// never aborts the pass.
	require.NoError(t, store.ReplaceOrderItems(ctx, []storage.OrderItem{
		{ID: 1, OrderID: 1, ProductID: 999, TotalAmount: 100},
		{ID: 2, OrderID: 888, ProductID: 1, TotalAmount: 40},
		{ID: 3, OrderID: 3, ProductID: 2, TotalAmount: 75},
	}))

	engine := NewEngine(store, store)

	result, err := engine.Revenue(ctx, ModePreview, DefaultFilters(), DefaultTopN)
	require.NoError(t, err)

	require.InDelta(t, 175.0, result.TotalRevenue, 0.001)
	require.InDelta(t, 30.0, result.TotalCost, 0.001)
}

func TestSalesBreakdowns(t *testing.T) {
	engine := newFixtureEngine(t)

	result, err := engine.Sales(context.Background(), ModePreview, DefaultFilters())
	require.NoError(t, err)

	require.InDelta(t, 175.0, result.TotalRevenue, 0.001)
	require.Len(t, result.DailyTrend, 2)
	require.Equal(t, "2023-01-05", result.DailyTrend[0].Key)

	require.Equal(t, []LabelValue{
		{Label: "Outerwear", Value: 100},
		{Label: "Footwear", Value: 75},
	}, result.CategoryBreakdown)

	require.Equal(t, []LabelValue{
		{Label: "Northway", Value: 100},
		{Label: "Strider", Value: 75},
	}, result.BrandBreakdown)

	require.Equal(t, []LabelValue{
		{Label: "Men", Value: 100},
		{Label: "Women", Value: 75},
	}, result.DepartmentBreakdown)
}

func TestSalesHonorsProductFilters(t *testing.T) {
	engine := newFixtureEngine(t)

	filters := DefaultFilters()
	filters.Category = "Footwear"

	result, err := engine.Sales(context.Background(), ModePreview, filters)
	require.NoError(t, err)

	// The category filter applies to item-level breakdowns; only the sneaker
	// line survives.
	require.Equal(t, []LabelValue{{Label: "Footwear", Value: 75}}, result.CategoryBreakdown)
	require.InDelta(t, 30.0, result.TotalCost, 0.001)
}

func TestReturnsMetrics(t *testing.T) {
	engine := newFixtureEngine(t)

	result, err := engine.Returns(context.Background(), ModePreview, DefaultFilters())
	require.NoError(t, err)

	require.Equal(t, 1, result.TotalReturns)
	require.InDelta(t, 5.0, result.AvgRefundDays, 0.001)
	require.InDelta(t, 2.0, result.AvgPickupDelayDays, 0.001)
	require.Equal(t, []MonthCount{{Month: "2023-02", Count: 1}}, result.MonthlyCounts)
}

func TestReturnsDateFilter(t *testing.T) {
	engine := newFixtureEngine(t)

	filters := DefaultFilters()
	filters.StartDate = "2023-01-01"
	filters.EndDate = "2023-01-31"

	result, err := engine.Returns(context.Background(), ModePreview, filters)
	require.NoError(t, err)

	// The only return happened in February.
	require.Equal(t, 0, result.TotalReturns)
	require.Empty(t, result.MonthlyCounts)
}

func TestCustomersLifetimeValue(t *testing.T) {
	engine := newFixtureEngine(t)

	result, err := engine.Customers(context.Background(), ModePreview, DefaultFilters(), 0)
	require.NoError(t, err)

	require.Equal(t, 3, result.TotalCustomers)

	// Customer 2's order is cancelled and customer 3's is returned: neither
	// counts toward realized spend.
	require.Len(t, result.Customers, 1)
	require.Equal(t, int64(1), result.Customers[0].ID)
	require.Equal(t, "Ada Lovelace", result.Customers[0].Name)
	require.InDelta(t, 100.0, result.Customers[0].TotalSpend, 0.001)
	require.Equal(t, 1, result.Customers[0].Orders)
	require.Equal(t, "2023-01-05", result.Customers[0].LastOrderDate)
}

func TestProductsQuery(t *testing.T) {
	engine := newFixtureEngine(t)
	ctx := context.Background()

	t.Run("unfiltered returns everything sorted by name", func(t *testing.T) {
		result, err := engine.Products(ctx, ModePreview, ProductQuery{})
		require.NoError(t, err)

		require.Equal(t, 2, result.Total)
		require.Equal(t, "Alpine Jacket", result.Products[0].Name)
		require.Equal(t, "Strider Sneaker", result.Products[1].Name)
	})

	t.Run("search", func(t *testing.T) {
		result, err := engine.Products(ctx, ModePreview, ProductQuery{Search: "sneaker"})
		require.NoError(t, err)

		require.Equal(t, 1, result.Total)
		require.Equal(t, "Strider Sneaker", result.Products[0].Name)
	})

	t.Run("status filter", func(t *testing.T) {
		result, err := engine.Products(ctx, ModePreview, ProductQuery{Status: "Inactive"})
		require.NoError(t, err)

		require.Equal(t, 1, result.Total)
		require.Equal(t, int64(2), result.Products[0].ID)
	})

	t.Run("price range", func(t *testing.T) {
		min := 30.0

		result, err := engine.Products(ctx, ModePreview, ProductQuery{MinPrice: &min})
		require.NoError(t, err)

		require.Equal(t, 1, result.Total)
		require.Equal(t, int64(1), result.Products[0].ID)
	})

	t.Run("margin range in percent", func(t *testing.T) {
		min, max := 30.0, 50.0

		result, err := engine.Products(ctx, ModePreview, ProductQuery{MinMargin: &min, MaxMargin: &max})
		require.NoError(t, err)

		require.Equal(t, 1, result.Total)
		require.Equal(t, int64(2), result.Products[0].ID)
	})

	t.Run("sort by price descending", func(t *testing.T) {
		result, err := engine.Products(ctx, ModePreview, ProductQuery{SortBy: "price", SortDesc: true})
		require.NoError(t, err)

		require.Equal(t, int64(1), result.Products[0].ID)
		require.Equal(t, int64(2), result.Products[1].ID)
	})
}
