package storage

import (
	"context"
	"sort"
	"sync"
)

// Compile-time interface assertions to ensure MemoryStore satisfies both the
// read and write contracts.
var (
	_ Store  = (*MemoryStore)(nil)
	_ Writer = (*MemoryStore)(nil)
)

type (
	// MemoryStore holds the preview snapshot of the retail collections. It is
	// the serving tier until the full dataset lands in PostgreSQL, and stays
	// useful afterwards for tests.
	//
	// Each Replace call swaps one collection wholesale under the write lock,
	// so readers always see a collection that is either entirely old or
	// entirely new.
	MemoryStore struct {
		mutex sync.RWMutex

		products   []Product
		orders     []Order
		orderItems []OrderItem
		returns    []Return
		customers  []Customer

		productsByID  map[int64]int
		customersByID map[int64]int

		// ordersByDate holds indexes into orders sorted by date so range
		// scans avoid a full pass. Orders with "" dates are excluded.
		ordersByDate []int

		loaded bool
	}
)

// NewMemoryStore creates an empty in-memory store. It reports ErrStoreNotReady
// until the first Replace call.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		productsByID:  make(map[int64]int),
		customersByID: make(map[int64]int),
	}
}

// ReplaceProducts swaps the product collection.
func (s *MemoryStore) ReplaceProducts(_ context.Context, records []Product) error {
	byID := make(map[int64]int, len(records))
	for i, p := range records {
		byID[p.ID] = i
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.products = records
	s.productsByID = byID
	s.loaded = true

	return nil
}

// ReplaceOrders swaps the order collection. Records are normalized on the way
// in so downstream scans never see malformed dates.
func (s *MemoryStore) ReplaceOrders(_ context.Context, records []Order) error {
	for i := range records {
		records[i] = NormalizeOrder(records[i])
	}

	byDate := make([]int, 0, len(records))

	for i, o := range records {
		if o.Date != "" {
			byDate = append(byDate, i)
		}
	}

	sort.Slice(byDate, func(a, b int) bool {
		return records[byDate[a]].Date < records[byDate[b]].Date
	})

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.orders = records
	s.ordersByDate = byDate
	s.loaded = true

	return nil
}

// ReplaceOrderItems swaps the order item collection.
func (s *MemoryStore) ReplaceOrderItems(_ context.Context, records []OrderItem) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.orderItems = records
	s.loaded = true

	return nil
}

// ReplaceReturns swaps the return collection.
func (s *MemoryStore) ReplaceReturns(_ context.Context, records []Return) error {
	for i := range records {
		records[i] = NormalizeReturn(records[i])
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.returns = records
	s.loaded = true

	return nil
}

// ReplaceCustomers swaps the customer collection.
func (s *MemoryStore) ReplaceCustomers(_ context.Context, records []Customer) error {
	byID := make(map[int64]int, len(records))
	for i, c := range records {
		byID[c.ID] = i
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.customers = records
	s.customersByID = byID
	s.loaded = true

	return nil
}

// CountProducts returns the number of products in the snapshot.
func (s *MemoryStore) CountProducts(_ context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return 0, ErrStoreNotReady
	}

	return len(s.products), nil
}

// CountOrders returns the number of orders in the snapshot.
func (s *MemoryStore) CountOrders(_ context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return 0, ErrStoreNotReady
	}

	return len(s.orders), nil
}

// CountOrderItems returns the number of order items in the snapshot.
func (s *MemoryStore) CountOrderItems(_ context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return 0, ErrStoreNotReady
	}

	return len(s.orderItems), nil
}

// CountReturns returns the number of returns in the snapshot.
func (s *MemoryStore) CountReturns(_ context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return 0, ErrStoreNotReady
	}

	return len(s.returns), nil
}

// CountCustomers returns the number of customers in the snapshot.
func (s *MemoryStore) CountCustomers(_ context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return 0, ErrStoreNotReady
	}

	return len(s.customers), nil
}

// ScanProducts streams every product to the visitor.
func (s *MemoryStore) ScanProducts(ctx context.Context, visit func(Product) error) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return ErrStoreNotReady
	}

	for _, p := range s.products {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := visit(p); err != nil {
			return err
		}
	}

	return nil
}

// ScanOrders streams every order to the visitor.
func (s *MemoryStore) ScanOrders(ctx context.Context, visit func(Order) error) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return ErrStoreNotReady
	}

	for _, o := range s.orders {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := visit(o); err != nil {
			return err
		}
	}

	return nil
}

// ScanOrderItems streams every order item to the visitor.
func (s *MemoryStore) ScanOrderItems(ctx context.Context, visit func(OrderItem) error) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return ErrStoreNotReady
	}

	for _, item := range s.orderItems {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := visit(item); err != nil {
			return err
		}
	}

	return nil
}

// ScanReturns streams every return to the visitor.
func (s *MemoryStore) ScanReturns(ctx context.Context, visit func(Return) error) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return ErrStoreNotReady
	}

	for _, r := range s.returns {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := visit(r); err != nil {
			return err
		}
	}

	return nil
}

// ScanCustomers streams every customer to the visitor.
func (s *MemoryStore) ScanCustomers(ctx context.Context, visit func(Customer) error) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return ErrStoreNotReady
	}

	for _, c := range s.customers {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := visit(c); err != nil {
			return err
		}
	}

	return nil
}

// ScanOrdersByDateRange streams orders within the inclusive date range using
// the sorted date index. Empty bounds are open ends.
func (s *MemoryStore) ScanOrdersByDateRange(
	ctx context.Context,
	lower, upper string,
	visit func(Order) error,
) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return ErrStoreNotReady
	}

	// Binary search for the first index >= lower.
	start := 0
	if lower != "" {
		start = sort.Search(len(s.ordersByDate), func(i int) bool {
			return s.orders[s.ordersByDate[i]].Date >= lower
		})
	}

	for _, idx := range s.ordersByDate[start:] {
		o := s.orders[idx]

		if upper != "" && o.Date > upper {
			break
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if err := visit(o); err != nil {
			return err
		}
	}

	return nil
}

// GetProduct looks up a product by ID.
func (s *MemoryStore) GetProduct(_ context.Context, id int64) (*Product, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return nil, false, ErrStoreNotReady
	}

	idx, ok := s.productsByID[id]
	if !ok {
		return nil, false, nil
	}

	p := s.products[idx]

	return &p, true, nil
}

// GetCustomer looks up a customer by ID.
func (s *MemoryStore) GetCustomer(_ context.Context, id int64) (*Customer, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.loaded {
		return nil, false, ErrStoreNotReady
	}

	idx, ok := s.customersByID[id]
	if !ok {
		return nil, false, nil
	}

	c := s.customers[idx]

	return &c, true, nil
}
