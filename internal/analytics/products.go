package analytics

import (
	"context"
	"sort"
	"strings"

	"github.com/vajra-io/vajra/internal/storage"
)

type (
	// ProductQuery filters and sorts the product catalog. Nil range bounds
	// are unbounded; margin bounds are in percent (MarginPercent × 100).
	ProductQuery struct {
		Search     string
		Category   string
		Department string
		// Status is "Active", "Inactive", or the wildcard.
		Status string

		MinPrice  *float64
		MaxPrice  *float64
		MinMargin *float64
		MaxMargin *float64

		// SortBy is one of "name", "price", "margin", "stock"; SortDesc
		// flips the order. Default: name ascending.
		SortBy   string
		SortDesc bool
	}

	// ProductsResult is the products dashboard payload.
	ProductsResult struct {
		Mode     string            `json:"mode"`
		Total    int               `json:"total"`
		Products []storage.Product `json:"products"`
	}
)

// Products queries the catalog with search, dimension, status, price-range,
// and margin-range filters. The same code path runs over both store tiers.
func (e *Engine) Products(
	ctx context.Context,
	mode DataSourceMode,
	query ProductQuery,
) (*ProductsResult, error) {
	store := e.store(mode)

	search := strings.ToLower(strings.TrimSpace(query.Search))

	var matched []storage.Product

	err := store.ScanProducts(ctx, func(p storage.Product) error {
		if !productMatches(p, query, search) {
			return nil
		}

		matched = append(matched, p)

		return nil
	})
	if err != nil {
		return nil, err
	}

	sortProducts(matched, query.SortBy, query.SortDesc)

	return &ProductsResult{
		Mode:     mode.String(),
		Total:    len(matched),
		Products: matched,
	}, nil
}

func productMatches(p storage.Product, query ProductQuery, search string) bool {
	if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
		return false
	}

	if !matchesFilter(query.Category, p.Category) {
		return false
	}

	if !matchesFilter(query.Department, p.Department) {
		return false
	}

	if query.Status != "" && query.Status != Wildcard {
		active := strings.EqualFold(query.Status, "Active")
		if p.Active != active {
			return false
		}
	}

	if query.MinPrice != nil && p.SellingPrice < *query.MinPrice {
		return false
	}

	if query.MaxPrice != nil && p.SellingPrice > *query.MaxPrice {
		return false
	}

	// Stored margin is a fraction; the query bounds are percentages.
	margin := p.MarginPercent * percentFactor

	if query.MinMargin != nil && margin < *query.MinMargin {
		return false
	}

	if query.MaxMargin != nil && margin > *query.MaxMargin {
		return false
	}

	return true
}

func sortProducts(products []storage.Product, sortBy string, desc bool) {
	less := func(i, j int) bool {
		return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
	}

	switch sortBy {
	case "price":
		less = func(i, j int) bool { return products[i].SellingPrice < products[j].SellingPrice }
	case "margin":
		less = func(i, j int) bool { return products[i].MarginPercent < products[j].MarginPercent }
	case "stock":
		less = func(i, j int) bool { return products[i].StockLevel < products[j].StockLevel }
	}

	if desc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}

	sort.SliceStable(products, less)
}
