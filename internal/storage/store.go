package storage

import "context"

type (
	// Store is the read interface the analytics engine aggregates over. Scan
	// methods stream records to the visitor one at a time so neither backend
	// has to materialize a full collection slice; a visitor error aborts the
	// scan and is returned unwrapped.
	//
	// Both MemoryStore (preview snapshot) and PersistentStore (full dataset)
	// implement it, which is what lets the engine recompute every dashboard
	// without knowing which tier is live.
	Store interface {
		CountProducts(ctx context.Context) (int, error)
		CountOrders(ctx context.Context) (int, error)
		CountOrderItems(ctx context.Context) (int, error)
		CountReturns(ctx context.Context) (int, error)
		CountCustomers(ctx context.Context) (int, error)

		ScanProducts(ctx context.Context, visit func(Product) error) error
		ScanOrders(ctx context.Context, visit func(Order) error) error
		ScanOrderItems(ctx context.Context, visit func(OrderItem) error) error
		ScanReturns(ctx context.Context, visit func(Return) error) error
		ScanCustomers(ctx context.Context, visit func(Customer) error) error

		// ScanOrdersByDateRange streams orders whose date satisfies
		// lower <= date <= upper. Empty bounds are open ends. Orders with a
		// missing date never match a bounded range.
		ScanOrdersByDateRange(ctx context.Context, lower, upper string, visit func(Order) error) error

		// GetProduct and GetCustomer are point lookups used for selective
		// hydration of large collections. The bool reports presence.
		GetProduct(ctx context.Context, id int64) (*Product, bool, error)
		GetCustomer(ctx context.Context, id int64) (*Customer, bool, error)
	}

	// Writer is the load interface the sync pipeline writes through. Replace
	// semantics: each call swaps the entire collection atomically with respect
	// to readers.
	Writer interface {
		ReplaceProducts(ctx context.Context, records []Product) error
		ReplaceOrders(ctx context.Context, records []Order) error
		ReplaceOrderItems(ctx context.Context, records []OrderItem) error
		ReplaceReturns(ctx context.Context, records []Return) error
		ReplaceCustomers(ctx context.Context, records []Customer) error
	}
)
