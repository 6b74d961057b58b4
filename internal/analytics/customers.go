package analytics

import (
	"context"
	"sort"

	"github.com/vajra-io/vajra/internal/storage"
)

// Customers computes lifetime value per customer: total spend, order count,
// and last order date over orders that are neither cancelled nor returned,
// sorted descending by spend and truncated to limit (0 = all). Names follow
// the two-tier hydration policy.
func (e *Engine) Customers(
	ctx context.Context,
	mode DataSourceMode,
	filters Filters,
	limit int,
) (*CustomersResult, error) {
	store := e.store(mode)

	totalCustomers, err := store.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}

	returnSet, err := e.returnedOrders(ctx, store)
	if err != nil {
		return nil, err
	}

	type accumulator struct {
		spend    float64
		orders   int
		lastDate string
	}

	perCustomer := make(map[int64]*accumulator)

	err = e.scanFilteredOrders(ctx, store, filters, returnSet, func(o storage.Order, class Classification) error {
		// Lifetime value counts realized spend only.
		if class == ClassCancelled || class == ClassReturned {
			return nil
		}

		acc, ok := perCustomer[o.CustomerID]
		if !ok {
			acc = &accumulator{}
			perCustomer[o.CustomerID] = acc
		}

		acc.spend += o.TotalAmount
		acc.orders++

		if o.Date > acc.lastDate {
			acc.lastDate = o.Date
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	values := make([]CustomerValue, 0, len(perCustomer))

	for id, acc := range perCustomer {
		values = append(values, CustomerValue{
			ID:            id,
			TotalSpend:    acc.spend,
			Orders:        acc.orders,
			LastOrderDate: acc.lastDate,
		})
	}

	sort.SliceStable(values, func(i, j int) bool {
		return values[i].TotalSpend > values[j].TotalSpend
	})

	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}

	ranked := make([]RankedEntry, len(values))
	for i, v := range values {
		ranked[i] = RankedEntry{ID: v.ID, Value: v.TotalSpend}
	}

	if err := e.hydrateCustomerNames(ctx, store, ranked); err != nil {
		return nil, err
	}

	for i := range values {
		values[i].Name = ranked[i].Name
	}

	return &CustomersResult{
		Mode:           mode.String(),
		TotalCustomers: totalCustomers,
		Customers:      values,
	}, nil
}
