// Package storage provides the retail record store: typed entities plus
// in-memory (preview) and PostgreSQL (full dataset) implementations behind
// one Store interface.
package storage

import (
	"errors"
	"strings"
)

var (
	// ErrStoreNotReady is returned when the backing store has not been initialized
	// or no snapshot has been loaded yet. Callers should treat this as "no data
	// yet", not as a fatal error.
	ErrStoreNotReady = errors.New("record store not ready")

	// ErrNoDatabaseConnection is returned when a persistent store is constructed
	// without a database connection.
	ErrNoDatabaseConnection = errors.New("database connection is required")
)

type (
	// Product is a catalog entry. Prices are unit prices; MarginPercent is a
	// fraction (0.35 = 35%).
	Product struct {
		ID            int64   `json:"product_id"`
		Name          string  `json:"product_name"`
		Category      string  `json:"product_category"`
		Department    string  `json:"product_department"`
		Brand         string  `json:"product_brand"`
		SellingPrice  float64 `json:"selling_unit_price"`
		UnitCost      float64 `json:"cost_unit_price"`
		MarginPercent float64 `json:"product_margin_percent"`
		Active        bool    `json:"is_product_active"`
		StockLevel    int     `json:"stock_level"`
	}

	// Order is a customer purchase transaction. Date is an ISO "YYYY-MM-DD"
	// string so lexicographic comparison matches calendar ordering; a missing
	// or malformed date is normalized to "".
	//
	// CustomerID may not resolve to a present Customer record; consumers must
	// tolerate dangling references.
	Order struct {
		ID          int64   `json:"order_id"`
		CustomerID  int64   `json:"customer_id"`
		Date        string  `json:"order_date"`
		Status      string  `json:"order_status"`
		TotalAmount float64 `json:"order_total_amount"`
	}

	// OrderItem is one product line within an order. OrderID and ProductID
	// may dangle; consumers skip the item where the missing side is needed.
	OrderItem struct {
		ID          int64   `json:"order_item_id"`
		OrderID     int64   `json:"order_id"`
		ProductID   int64   `json:"product_id"`
		TotalAmount float64 `json:"total_amount"`
		Returned    bool    `json:"is_returned"`
	}

	// Return records that an order's items were sent back. Presence of a
	// return is the authoritative signal for "Returned" classification,
	// regardless of the order's own status literal.
	Return struct {
		ID                  int64  `json:"return_id"`
		OrderID             int64  `json:"order_id"`
		ReturnDate          string `json:"return_date"`
		PickupScheduledDate string `json:"pickup_scheduled_date"`
		RefundProcessedDate string `json:"refund_processed_date"`
	}

	// Customer is a registered buyer.
	Customer struct {
		ID        int64  `json:"customer_id"`
		FirstName string `json:"customer_first_name"`
		LastName  string `json:"customer_last_name"`
		Email     string `json:"customer_email"`
		City      string `json:"customer_city"`
		State     string `json:"customer_state"`
		Address   string `json:"customer_address"`
	}
)

// FullName returns the customer's display name.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// NormalizeDate validates an ISO calendar date string ("YYYY-MM-DD" prefix;
// longer timestamp strings are truncated to the date part). It returns the
// normalized date and true, or "" and false when the value is missing or
// malformed. Normalizing at the store boundary means aggregation code never
// has to defend against bad dates inline.
func NormalizeDate(value string) (string, bool) {
	if len(value) < 10 {
		return "", false
	}

	value = value[:10]

	for i, r := range value {
		if i == 4 || i == 7 {
			if r != '-' {
				return "", false
			}

			continue
		}

		if r < '0' || r > '9' {
			return "", false
		}
	}

	return value, true
}

// NormalizeOrder cleans up a decoded order record: malformed dates become ""
// and the status literal is trimmed. Returns the normalized order.
func NormalizeOrder(o Order) Order {
	if date, ok := NormalizeDate(o.Date); ok {
		o.Date = date
	} else {
		o.Date = ""
	}

	o.Status = strings.TrimSpace(o.Status)

	return o
}

// NormalizeReturn cleans up a decoded return record: each malformed date
// field becomes "".
func NormalizeReturn(r Return) Return {
	if date, ok := NormalizeDate(r.ReturnDate); ok {
		r.ReturnDate = date
	} else {
		r.ReturnDate = ""
	}

	if date, ok := NormalizeDate(r.PickupScheduledDate); ok {
		r.PickupScheduledDate = date
	} else {
		r.PickupScheduledDate = ""
	}

	if date, ok := NormalizeDate(r.RefundProcessedDate); ok {
		r.RefundProcessedDate = date
	} else {
		r.RefundProcessedDate = ""
	}

	return r
}
