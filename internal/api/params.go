// Package api provides the HTTP API server for the admin analytics service.
package api

import (
	"net/http"
	"strconv"

	"github.com/vajra-io/vajra/internal/analytics"
	"github.com/vajra-io/vajra/internal/storage"
)

const (
	// Top-N list bounds.
	defaultLimit = 0 // engine default applies
	maxLimit     = 100
)

// paramError represents a query parameter validation error.
type paramError struct {
	param string
	msg   string
}

func (e *paramError) Error() string {
	return "Invalid parameter '" + e.param + "': " + e.msg
}

// parseFilters builds the dashboard filter snapshot from query parameters.
//
// Query Parameters:
//   - start_date, end_date: inclusive "YYYY-MM-DD" bounds
//   - category, brand, department: product dimension filters ("All" matches everything)
//   - status: order status filter (Active | Completed | Returned | Cancelled | All)
func parseFilters(r *http.Request) (analytics.Filters, error) {
	q := r.URL.Query()

	filters := analytics.DefaultFilters()

	if start := q.Get("start_date"); start != "" {
		date, ok := storage.NormalizeDate(start)
		if !ok {
			return filters, &paramError{param: "start_date", msg: "must be a YYYY-MM-DD date"}
		}

		filters.StartDate = date
	}

	if end := q.Get("end_date"); end != "" {
		date, ok := storage.NormalizeDate(end)
		if !ok {
			return filters, &paramError{param: "end_date", msg: "must be a YYYY-MM-DD date"}
		}

		filters.EndDate = date
	}

	if category := q.Get("category"); category != "" {
		filters.Category = category
	}

	if brand := q.Get("brand"); brand != "" {
		filters.Brand = brand
	}

	if department := q.Get("department"); department != "" {
		filters.Department = department
	}

	if status := q.Get("status"); status != "" {
		filters.Status = status
	}

	return filters, nil
}

// parseLimit parses the top-N list size. Zero means the caller-specific
// default (engine top-N default, or "all" for the customers list).
func parseLimit(r *http.Request) (int, error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, &paramError{param: "limit", msg: "must be a valid integer"}
	}

	if limit < 0 || limit > maxLimit {
		return 0, &paramError{param: "limit", msg: "must be between 0 and 100"}
	}

	return limit, nil
}

// parseProductQuery builds the product catalog query from query parameters.
//
// Query Parameters:
//   - search: case-insensitive substring match on the product name
//   - category, department: dimension filters ("All" matches everything)
//   - status: "Active" | "Inactive" | "All"
//   - min_price, max_price: inclusive selling price bounds
//   - min_margin, max_margin: inclusive margin bounds in percent
//   - sort_by: "name" | "price" | "margin" | "stock" (default: name)
//   - sort_desc: "true" flips the sort order
func parseProductQuery(r *http.Request) (analytics.ProductQuery, error) {
	q := r.URL.Query()

	query := analytics.ProductQuery{
		Search:     q.Get("search"),
		Category:   q.Get("category"),
		Department: q.Get("department"),
		Status:     q.Get("status"),
		SortBy:     q.Get("sort_by"),
	}

	for _, bound := range []struct {
		param string
		dest  **float64
	}{
		{"min_price", &query.MinPrice},
		{"max_price", &query.MaxPrice},
		{"min_margin", &query.MinMargin},
		{"max_margin", &query.MaxMargin},
	} {
		raw := q.Get(bound.param)
		if raw == "" {
			continue
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, &paramError{param: bound.param, msg: "must be a valid number"}
		}

		*bound.dest = &value
	}

	if desc := q.Get("sort_desc"); desc != "" {
		sortDesc, err := strconv.ParseBool(desc)
		if err != nil {
			return query, &paramError{param: "sort_desc", msg: "must be true or false"}
		}

		query.SortDesc = sortDesc
	}

	return query, nil
}
