package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreNotReady(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.CountOrders(ctx); !errors.Is(err, ErrStoreNotReady) {
		t.Errorf("CountOrders before load: err = %v, want ErrStoreNotReady", err)
	}

	err := store.ScanOrders(ctx, func(Order) error { return nil })
	if !errors.Is(err, ErrStoreNotReady) {
		t.Errorf("ScanOrders before load: err = %v, want ErrStoreNotReady", err)
	}

	if _, _, err := store.GetProduct(ctx, 1); !errors.Is(err, ErrStoreNotReady) {
		t.Errorf("GetProduct before load: err = %v, want ErrStoreNotReady", err)
	}
}

func TestMemoryStoreReplaceAndCount(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	orders := []Order{
		{ID: 1, CustomerID: 10, Date: "2023-01-05", Status: "Delivered", TotalAmount: 100},
		{ID: 2, CustomerID: 11, Date: "2023-01-20", Status: "Cancelled", TotalAmount: 50},
	}

	if err := store.ReplaceOrders(ctx, orders); err != nil {
		t.Fatalf("ReplaceOrders() unexpected error: %v", err)
	}

	count, err := store.CountOrders(ctx)
	if err != nil {
		t.Fatalf("CountOrders() unexpected error: %v", err)
	}

	if count != 2 {
		t.Errorf("CountOrders() = %d, want 2", count)
	}

	// A second replace swaps the collection wholesale.
	if err := store.ReplaceOrders(ctx, []Order{{ID: 3, Date: "2023-02-01"}}); err != nil {
		t.Fatalf("ReplaceOrders() unexpected error: %v", err)
	}

	count, err = store.CountOrders(ctx)
	if err != nil {
		t.Fatalf("CountOrders() unexpected error: %v", err)
	}

	if count != 1 {
		t.Errorf("CountOrders() after replace = %d, want 1", count)
	}
}

func TestMemoryStoreScanVisitsAll(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	items := []OrderItem{
		{ID: 1, OrderID: 1, ProductID: 5, TotalAmount: 40},
		{ID: 2, OrderID: 1, ProductID: 6, TotalAmount: 60, Returned: true},
	}

	if err := store.ReplaceOrderItems(ctx, items); err != nil {
		t.Fatalf("ReplaceOrderItems() unexpected error: %v", err)
	}

	var seen []int64

	err := store.ScanOrderItems(ctx, func(item OrderItem) error {
		seen = append(seen, item.ID)

		return nil
	})
	if err != nil {
		t.Fatalf("ScanOrderItems() unexpected error: %v", err)
	}

	if len(seen) != 2 {
		t.Errorf("visited %d items, want 2", len(seen))
	}
}

func TestMemoryStoreScanVisitorErrorAborts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.ReplaceProducts(ctx, []Product{{ID: 1}, {ID: 2}, {ID: 3}}); err != nil {
		t.Fatalf("ReplaceProducts() unexpected error: %v", err)
	}

	errStop := errors.New("stop")
	visited := 0

	err := store.ScanProducts(ctx, func(Product) error {
		visited++

		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Errorf("ScanProducts() err = %v, want errStop", err)
	}

	if visited != 1 {
		t.Errorf("visitor ran %d times after error, want 1", visited)
	}
}

func TestMemoryStoreScanOrdersByDateRange(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	orders := []Order{
		{ID: 1, Date: "2023-01-05"},
		{ID: 2, Date: "2023-01-20"},
		{ID: 3, Date: "2023-02-01"},
		{ID: 4, Date: "bad-date"}, // normalized to "" and excluded from ranges
	}

	if err := store.ReplaceOrders(ctx, orders); err != nil {
		t.Fatalf("ReplaceOrders() unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		lower   string
		upper   string
		wantIDs []int64
	}{
		{"bounded", "2023-01-10", "2023-01-31", []int64{2}},
		{"open lower", "", "2023-01-31", []int64{1, 2}},
		{"open upper", "2023-01-20", "", []int64{2, 3}},
		{"inclusive bounds", "2023-01-05", "2023-02-01", []int64{1, 2, 3}},
		{"empty range", "2023-03-01", "2023-03-31", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int64

			err := store.ScanOrdersByDateRange(ctx, tt.lower, tt.upper, func(o Order) error {
				got = append(got, o.ID)

				return nil
			})
			if err != nil {
				t.Fatalf("ScanOrdersByDateRange() unexpected error: %v", err)
			}

			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got IDs %v, want %v", got, tt.wantIDs)
			}

			for i, id := range tt.wantIDs {
				if got[i] != id {
					t.Errorf("got IDs %v, want %v", got, tt.wantIDs)

					break
				}
			}
		})
	}
}

func TestMemoryStorePointLookups(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.ReplaceProducts(ctx, []Product{{ID: 7, Name: "Trail Shoe"}}); err != nil {
		t.Fatalf("ReplaceProducts() unexpected error: %v", err)
	}

	if err := store.ReplaceCustomers(ctx, []Customer{{ID: 42, FirstName: "Ada", LastName: "Lovelace"}}); err != nil {
		t.Fatalf("ReplaceCustomers() unexpected error: %v", err)
	}

	product, found, err := store.GetProduct(ctx, 7)
	if err != nil {
		t.Fatalf("GetProduct() unexpected error: %v", err)
	}

	if !found || product.Name != "Trail Shoe" {
		t.Errorf("GetProduct(7) = %+v, found=%v", product, found)
	}

	if _, found, _ := store.GetProduct(ctx, 999); found {
		t.Error("GetProduct(999) should not be found")
	}

	customer, found, err := store.GetCustomer(ctx, 42)
	if err != nil {
		t.Fatalf("GetCustomer() unexpected error: %v", err)
	}

	if !found || customer.FullName() != "Ada Lovelace" {
		t.Errorf("GetCustomer(42) = %+v, found=%v", customer, found)
	}
}

func TestMemoryStoreScanHonorsContextCancel(t *testing.T) {
	store := NewMemoryStore()

	if err := store.ReplaceOrders(context.Background(), []Order{{ID: 1, Date: "2023-01-05"}}); err != nil {
		t.Fatalf("ReplaceOrders() unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.ScanOrders(ctx, func(Order) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ScanOrders() with cancelled context: err = %v, want context.Canceled", err)
	}
}
