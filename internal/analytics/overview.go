package analytics

import (
	"context"
	"time"

	"github.com/vajra-io/vajra/internal/storage"
)

// Overview computes the main dashboard: KPIs, the monthly revenue series, the
// status breakdown, and top-N products and customers. Revenue follows the
// gross convention: cancelled orders are excluded, returned orders count.
func (e *Engine) Overview(
	ctx context.Context,
	mode DataSourceMode,
	filters Filters,
	limit int,
) (*OverviewResult, error) {
	if limit <= 0 {
		limit = DefaultTopN
	}

	store := e.store(mode)

	totalCustomers, err := store.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}

	totalProducts, err := store.CountProducts(ctx)
	if err != nil {
		return nil, err
	}

	returnSet, err := e.returnedOrders(ctx, store)
	if err != nil {
		return nil, err
	}

	var (
		totalRevenue   float64
		totalOrders    int
		statusCounts   = make(map[Classification]int)
		buckets        = make(map[string]*SeriesBucket)
		customerTotals = make(map[int64]float64)
		orderFacts     = make(map[int64]orderFact)
	)

	err = e.scanFilteredOrders(ctx, store, filters, returnSet, func(o storage.Order, class Classification) error {
		totalOrders++

		// A date-filtered breakdown tracks revenue-eligible orders only;
		// cancelled orders appear in the breakdown just for unfiltered views.
		if class != ClassCancelled || !filters.Bounded() {
			statusCounts[class]++
		}

		if class == ClassCancelled {
			return nil
		}

		totalRevenue += o.TotalAmount
		customerTotals[o.CustomerID] += o.TotalAmount
		orderFacts[o.ID] = orderFact{date: o.Date, class: class}

		if key := monthKey(o.Date); key != "" {
			bucket, ok := buckets[key]
			if !ok {
				bucket = &SeriesBucket{Key: key, Label: monthLabel(key)}
				buckets[key] = bucket
			}

			bucket.Revenue += o.TotalAmount
			bucket.Orders++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	products, err := e.newProductLookup(ctx, store)
	if err != nil {
		return nil, err
	}

	totalItems, err := store.CountOrderItems(ctx)
	if err != nil {
		return nil, err
	}

	var (
		totalCost     float64
		productTotals = make(map[int64]float64)
		visitedItems  int
	)

	err = store.ScanOrderItems(ctx, func(item storage.OrderItem) error {
		visitedItems++
		if visitedItems%itemProgressStride == 0 {
			e.reportProgress("order_items", visitedItems, totalItems)
		}

		// Items of cancelled, filtered-out, or dangling orders never
		// contribute; returned items are excluded from cost and profit.
		fact, ok := orderFacts[item.OrderID]
		if !ok || item.Returned {
			return nil
		}

		product, found, err := products.get(ctx, item.ProductID)
		if err != nil {
			return err
		}

		if !found || !filters.MatchesProduct(product) {
			return nil
		}

		productTotals[item.ProductID] += item.TotalAmount

		quantity := estimateQuantity(item.TotalAmount, product.SellingPrice)
		cost := product.UnitCost * float64(quantity)
		totalCost += cost

		if key := monthKey(fact.date); key != "" {
			if bucket, ok := buckets[key]; ok {
				bucket.Cost += cost
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.reportProgress("order_items", visitedItems, totalItems)

	for _, bucket := range buckets {
		bucket.Profit = bucket.Revenue - bucket.Cost
	}

	topProducts := topN(productTotals, limit)
	if err := e.hydrateProductNames(ctx, store, topProducts); err != nil {
		return nil, err
	}

	topCustomers := topN(customerTotals, limit)
	if err := e.hydrateCustomerNames(ctx, store, topCustomers); err != nil {
		return nil, err
	}

	grossProfit := totalRevenue - totalCost

	return &OverviewResult{
		Mode:            mode.String(),
		TotalRevenue:    totalRevenue,
		TotalCost:       totalCost,
		GrossProfit:     grossProfit,
		MarginPercent:   marginPercent(totalRevenue, grossProfit),
		TotalOrders:     totalOrders,
		TotalCustomers:  totalCustomers,
		TotalProducts:   totalProducts,
		MonthlySeries:   sortedBuckets(buckets),
		StatusBreakdown: statusBreakdown(statusCounts),
		TopProducts:     topProducts,
		TopCustomers:    topCustomers,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}
