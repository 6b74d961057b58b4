package analytics

import (
	"context"

	"github.com/vajra-io/vajra/internal/storage"
)

// Sales computes the sales analytics dashboard: a daily revenue/cost/profit
// trend plus category, brand, and department revenue breakdowns. The
// dimensional breakdowns are item-level and honor every product filter; the
// daily revenue line is order-level.
func (e *Engine) Sales(
	ctx context.Context,
	mode DataSourceMode,
	filters Filters,
) (*SalesResult, error) {
	store := e.store(mode)

	returnSet, err := e.returnedOrders(ctx, store)
	if err != nil {
		return nil, err
	}

	var (
		totalRevenue float64
		buckets      = make(map[string]*SeriesBucket)
		orderFacts   = make(map[int64]orderFact)
	)

	err = e.scanFilteredOrders(ctx, store, filters, returnSet, func(o storage.Order, class Classification) error {
		if class == ClassCancelled {
			return nil
		}

		totalRevenue += o.TotalAmount
		orderFacts[o.ID] = orderFact{date: o.Date, class: class}

		if o.Date != "" {
			bucket, ok := buckets[o.Date]
			if !ok {
				bucket = &SeriesBucket{Key: o.Date, Label: o.Date}
				buckets[o.Date] = bucket
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
		totalCost        float64
		categoryTotals   = make(map[string]float64)
		brandTotals      = make(map[string]float64)
		departmentTotals = make(map[string]float64)
		visitedItems     int
	)

	err = store.ScanOrderItems(ctx, func(item storage.OrderItem) error {
		visitedItems++
		if visitedItems%itemProgressStride == 0 {
			e.reportProgress("order_items", visitedItems, totalItems)
		}

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

		categoryTotals[product.Category] += item.TotalAmount
		brandTotals[product.Brand] += item.TotalAmount
		departmentTotals[product.Department] += item.TotalAmount

		quantity := estimateQuantity(item.TotalAmount, product.SellingPrice)
		cost := product.UnitCost * float64(quantity)
		totalCost += cost

		if fact.date != "" {
			if bucket, ok := buckets[fact.date]; ok {
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

	return &SalesResult{
		Mode:                mode.String(),
		TotalRevenue:        totalRevenue,
		TotalCost:           totalCost,
		GrossProfit:         totalRevenue - totalCost,
		DailyTrend:          sortedBuckets(buckets),
		CategoryBreakdown:   sortedLabelValues(categoryTotals),
		BrandBreakdown:      sortedLabelValues(brandTotals),
		DepartmentBreakdown: sortedLabelValues(departmentTotals),
	}, nil
}
