package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lib/pq"

	"github.com/vajra-io/vajra/internal/config"
)

// Compile-time interface assertions.
var (
	_ Store  = (*PersistentStore)(nil)
	_ Writer = (*PersistentStore)(nil)

	// ErrBulkLoadFailed is returned when a collection replace cannot be
	// committed. The previous collection contents remain untouched.
	ErrBulkLoadFailed = errors.New("bulk load failed")
)

// PersistentStore implements Store and Writer against PostgreSQL. It becomes
// the serving tier once the full dataset sync commits.
//
// Bulk loads use COPY inside a single transaction per collection: readers on
// other connections keep seeing the old rows until commit.
type PersistentStore struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPersistentStore creates a PostgreSQL-backed record store.
// Returns ErrNoDatabaseConnection if conn is nil.
func NewPersistentStore(conn *Connection) (*PersistentStore, error) {
	if conn == nil {
		return nil, ErrNoDatabaseConnection
	}

	return &PersistentStore{
		conn: conn,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		})),
	}, nil
}

// Close closes the underlying connection pool.
func (s *PersistentStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}

	return nil
}

// Ping verifies database connectivity for readiness checks.
func (s *PersistentStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// ReplaceProducts atomically replaces the products table contents.
func (s *PersistentStore) ReplaceProducts(ctx context.Context, records []Product) error {
	return s.replace(ctx, "products",
		[]string{
			"product_id", "product_name", "product_category", "product_department",
			"product_brand", "selling_unit_price", "cost_unit_price",
			"product_margin_percent", "is_product_active", "stock_level",
		},
		len(records),
		func(stmt *sql.Stmt, i int) error {
			p := records[i]
			_, err := stmt.ExecContext(ctx,
				p.ID, p.Name, p.Category, p.Department, p.Brand,
				p.SellingPrice, p.UnitCost, p.MarginPercent, p.Active, p.StockLevel,
			)

			return err
		},
	)
}

// ReplaceOrders atomically replaces the orders table contents. Records are
// normalized before loading.
func (s *PersistentStore) ReplaceOrders(ctx context.Context, records []Order) error {
	return s.replace(ctx, "orders",
		[]string{"order_id", "customer_id", "order_date", "order_status", "order_total_amount"},
		len(records),
		func(stmt *sql.Stmt, i int) error {
			o := NormalizeOrder(records[i])
			_, err := stmt.ExecContext(ctx, o.ID, o.CustomerID, o.Date, o.Status, o.TotalAmount)

			return err
		},
	)
}

// ReplaceOrderItems atomically replaces the order_items table contents.
func (s *PersistentStore) ReplaceOrderItems(ctx context.Context, records []OrderItem) error {
	return s.replace(ctx, "order_items",
		[]string{"order_item_id", "order_id", "product_id", "total_amount", "is_returned"},
		len(records),
		func(stmt *sql.Stmt, i int) error {
			item := records[i]
			_, err := stmt.ExecContext(ctx, item.ID, item.OrderID, item.ProductID, item.TotalAmount, item.Returned)

			return err
		},
	)
}

// ReplaceReturns atomically replaces the returns table contents.
func (s *PersistentStore) ReplaceReturns(ctx context.Context, records []Return) error {
	return s.replace(ctx, "returns",
		[]string{"return_id", "order_id", "return_date", "pickup_scheduled_date", "refund_processed_date"},
		len(records),
		func(stmt *sql.Stmt, i int) error {
			r := NormalizeReturn(records[i])
			_, err := stmt.ExecContext(ctx, r.ID, r.OrderID, r.ReturnDate, r.PickupScheduledDate, r.RefundProcessedDate)

			return err
		},
	)
}

// ReplaceCustomers atomically replaces the customers table contents.
func (s *PersistentStore) ReplaceCustomers(ctx context.Context, records []Customer) error {
	return s.replace(ctx, "customers",
		[]string{
			"customer_id", "customer_first_name", "customer_last_name",
			"customer_email", "customer_city", "customer_state", "customer_address",
		},
		len(records),
		func(stmt *sql.Stmt, i int) error {
			c := records[i]
			_, err := stmt.ExecContext(ctx, c.ID, c.FirstName, c.LastName, c.Email, c.City, c.State, c.Address)

			return err
		},
	)
}

// replace clears a table and bulk-loads new rows with COPY in one transaction.
func (s *PersistentStore) replace(
	ctx context.Context,
	table string,
	columns []string,
	count int,
	writeRow func(stmt *sql.Stmt, i int) error,
) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction for %s: %w", ErrBulkLoadFailed, table, err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("%w: clear %s: %w", ErrBulkLoadFailed, table, err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return fmt.Errorf("%w: prepare copy for %s: %w", ErrBulkLoadFailed, table, err)
	}

	for i := range count {
		if err := writeRow(stmt, i); err != nil {
			_ = stmt.Close()

			return fmt.Errorf("%w: copy row into %s: %w", ErrBulkLoadFailed, table, err)
		}
	}

	// Flush the COPY buffer.
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()

		return fmt.Errorf("%w: flush copy for %s: %w", ErrBulkLoadFailed, table, err)
	}

	if err := stmt.Close(); err != nil {
		return fmt.Errorf("%w: close copy for %s: %w", ErrBulkLoadFailed, table, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit %s: %w", ErrBulkLoadFailed, table, err)
	}

	s.logger.Info("collection replaced",
		slog.String("table", table),
		slog.Int("records", count),
	)

	return nil
}

// CountProducts returns the number of rows in products.
func (s *PersistentStore) CountProducts(ctx context.Context) (int, error) {
	return s.count(ctx, "products")
}

// CountOrders returns the number of rows in orders.
func (s *PersistentStore) CountOrders(ctx context.Context) (int, error) {
	return s.count(ctx, "orders")
}

// CountOrderItems returns the number of rows in order_items.
func (s *PersistentStore) CountOrderItems(ctx context.Context) (int, error) {
	return s.count(ctx, "order_items")
}

// CountReturns returns the number of rows in returns.
func (s *PersistentStore) CountReturns(ctx context.Context) (int, error) {
	return s.count(ctx, "returns")
}

// CountCustomers returns the number of rows in customers.
func (s *PersistentStore) CountCustomers(ctx context.Context) (int, error) {
	return s.count(ctx, "customers")
}

func (s *PersistentStore) count(ctx context.Context, table string) (int, error) {
	var n int

	err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	return n, nil
}

// ScanProducts streams every product row to the visitor.
func (s *PersistentStore) ScanProducts(ctx context.Context, visit func(Product) error) error {
	query := `
		SELECT product_id, product_name, product_category, product_department,
		       product_brand, selling_unit_price, cost_unit_price,
		       product_margin_percent, is_product_active, stock_level
		FROM products
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query products: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var p Product

		err := rows.Scan(
			&p.ID, &p.Name, &p.Category, &p.Department, &p.Brand,
			&p.SellingPrice, &p.UnitCost, &p.MarginPercent, &p.Active, &p.StockLevel,
		)
		if err != nil {
			return fmt.Errorf("failed to scan product row: %w", err)
		}

		if err := visit(p); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating product rows: %w", err)
	}

	return nil
}

// ScanOrders streams every order row to the visitor.
func (s *PersistentStore) ScanOrders(ctx context.Context, visit func(Order) error) error {
	return s.scanOrders(ctx, `
		SELECT order_id, customer_id, order_date, order_status, order_total_amount
		FROM orders
	`, nil, visit)
}

// ScanOrdersByDateRange streams orders within the inclusive date range. The
// idx_orders_order_date index serves the lexicographic comparison directly.
func (s *PersistentStore) ScanOrdersByDateRange(
	ctx context.Context,
	lower, upper string,
	visit func(Order) error,
) error {
	switch {
	case lower != "" && upper != "":
		return s.scanOrders(ctx, `
			SELECT order_id, customer_id, order_date, order_status, order_total_amount
			FROM orders
			WHERE order_date >= $1 AND order_date <= $2
		`, []any{lower, upper}, visit)
	case lower != "":
		return s.scanOrders(ctx, `
			SELECT order_id, customer_id, order_date, order_status, order_total_amount
			FROM orders
			WHERE order_date >= $1 AND order_date <> ''
		`, []any{lower}, visit)
	case upper != "":
		return s.scanOrders(ctx, `
			SELECT order_id, customer_id, order_date, order_status, order_total_amount
			FROM orders
			WHERE order_date <= $1 AND order_date <> ''
		`, []any{upper}, visit)
	default:
		return s.ScanOrders(ctx, visit)
	}
}

func (s *PersistentStore) scanOrders(
	ctx context.Context,
	query string,
	args []any,
	visit func(Order) error,
) error {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query orders: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var o Order

		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Date, &o.Status, &o.TotalAmount); err != nil {
			return fmt.Errorf("failed to scan order row: %w", err)
		}

		if err := visit(o); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order rows: %w", err)
	}

	return nil
}

// ScanOrderItems streams every order item row to the visitor.
func (s *PersistentStore) ScanOrderItems(ctx context.Context, visit func(OrderItem) error) error {
	query := `
		SELECT order_item_id, order_id, product_id, total_amount, is_returned
		FROM order_items
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var item OrderItem

		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.TotalAmount, &item.Returned); err != nil {
			return fmt.Errorf("failed to scan order item row: %w", err)
		}

		if err := visit(item); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order item rows: %w", err)
	}

	return nil
}

// ScanReturns streams every return row to the visitor.
func (s *PersistentStore) ScanReturns(ctx context.Context, visit func(Return) error) error {
	query := `
		SELECT return_id, order_id, return_date, pickup_scheduled_date, refund_processed_date
		FROM returns
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query returns: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var r Return

		if err := rows.Scan(&r.ID, &r.OrderID, &r.ReturnDate, &r.PickupScheduledDate, &r.RefundProcessedDate); err != nil {
			return fmt.Errorf("failed to scan return row: %w", err)
		}

		if err := visit(r); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating return rows: %w", err)
	}

	return nil
}

// ScanCustomers streams every customer row to the visitor.
func (s *PersistentStore) ScanCustomers(ctx context.Context, visit func(Customer) error) error {
	query := `
		SELECT customer_id, customer_first_name, customer_last_name,
		       customer_email, customer_city, customer_state, customer_address
		FROM customers
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query customers: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var c Customer

		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.City, &c.State, &c.Address); err != nil {
			return fmt.Errorf("failed to scan customer row: %w", err)
		}

		if err := visit(c); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating customer rows: %w", err)
	}

	return nil
}

// GetProduct looks up a product by ID.
func (s *PersistentStore) GetProduct(ctx context.Context, id int64) (*Product, bool, error) {
	query := `
		SELECT product_id, product_name, product_category, product_department,
		       product_brand, selling_unit_price, cost_unit_price,
		       product_margin_percent, is_product_active, stock_level
		FROM products
		WHERE product_id = $1
	`

	var p Product

	err := s.conn.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Category, &p.Department, &p.Brand,
		&p.SellingPrice, &p.UnitCost, &p.MarginPercent, &p.Active, &p.StockLevel,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to get product %d: %w", id, err)
	}

	return &p, true, nil
}

// GetCustomer looks up a customer by ID.
func (s *PersistentStore) GetCustomer(ctx context.Context, id int64) (*Customer, bool, error) {
	query := `
		SELECT customer_id, customer_first_name, customer_last_name,
		       customer_email, customer_city, customer_state, customer_address
		FROM customers
		WHERE customer_id = $1
	`

	var c Customer

	err := s.conn.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.City, &c.State, &c.Address,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to get customer %d: %w", id, err)
	}

	return &c, true, nil
}
