package analytics

import (
	"context"
	"sort"

	"github.com/vajra-io/vajra/internal/storage"
)

// Revenue computes the revenue dashboard: revenue/cost/profit KPIs, the
// monthly series, and a per-product profit breakdown.
func (e *Engine) Revenue(
	ctx context.Context,
	mode DataSourceMode,
	filters Filters,
	limit int,
) (*RevenueResult, error) {
	if limit <= 0 {
		limit = DefaultTopN
	}

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
		totalCost    float64
		perProduct   = make(map[int64]*ProductProfit)
		visitedItems int
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

		quantity := estimateQuantity(item.TotalAmount, product.SellingPrice)
		cost := product.UnitCost * float64(quantity)
		totalCost += cost

		entry, ok := perProduct[item.ProductID]
		if !ok {
			entry = &ProductProfit{ID: item.ProductID, Name: product.Name}
			perProduct[item.ProductID] = entry
		}

		entry.Revenue += item.TotalAmount
		entry.Cost += cost
		entry.Profit = entry.Revenue - entry.Cost

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

	top := make([]ProductProfit, 0, len(perProduct))
	for _, entry := range perProduct {
		top = append(top, *entry)
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Revenue > top[j].Revenue
	})

	if len(top) > limit {
		top = top[:limit]
	}

	grossProfit := totalRevenue - totalCost

	return &RevenueResult{
		Mode:          mode.String(),
		TotalRevenue:  totalRevenue,
		TotalCost:     totalCost,
		GrossProfit:   grossProfit,
		MarginPercent: marginPercent(totalRevenue, grossProfit),
		MonthlySeries: sortedBuckets(buckets),
		TopProducts:   top,
	}, nil
}
