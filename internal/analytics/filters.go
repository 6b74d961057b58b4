package analytics

import (
	"strings"

	"github.com/vajra-io/vajra/internal/storage"
)

// Wildcard is the filter value matching everything. An empty string behaves
// the same way.
const Wildcard = "All"

// Filters is the value-object snapshot of the active dashboard filters. The
// engine only reads it; mutation happens at the API boundary before a pass
// starts.
type Filters struct {
	// StartDate and EndDate are inclusive "YYYY-MM-DD" bounds; empty means
	// unbounded on that side.
	StartDate string
	EndDate   string

	Category   string
	Brand      string
	Department string
	Status     string
}

// DefaultFilters returns the unfiltered state.
func DefaultFilters() Filters {
	return Filters{
		Category:   Wildcard,
		Brand:      Wildcard,
		Department: Wildcard,
		Status:     Wildcard,
	}
}

// Reset restores every field to its default.
func (f *Filters) Reset() {
	*f = DefaultFilters()
}

// DateBounds translates the date filter into inclusive scan bounds for the
// record store's indexed range query.
func (f Filters) DateBounds() (lower, upper string) {
	return f.StartDate, f.EndDate
}

// Bounded reports whether any date bound is set.
func (f Filters) Bounded() bool {
	return f.StartDate != "" || f.EndDate != ""
}

// InDateRange reports whether an order date satisfies the active range. A
// missing date never matches a bounded range but always matches an unbounded
// one.
func (f Filters) InDateRange(date string) bool {
	if !f.Bounded() {
		return true
	}

	if date == "" {
		return false
	}

	if f.StartDate != "" && date < f.StartDate {
		return false
	}

	if f.EndDate != "" && date > f.EndDate {
		return false
	}

	return true
}

// MatchesProduct reports whether a product satisfies the category, brand, and
// department filters. These are properties of the product an item references,
// never of the order.
func (f Filters) MatchesProduct(p storage.Product) bool {
	return matchesFilter(f.Category, p.Category) &&
		matchesFilter(f.Brand, p.Brand) &&
		matchesFilter(f.Department, p.Department)
}

// MatchesStatus reports whether a classification satisfies the status filter.
func (f Filters) MatchesStatus(class Classification) bool {
	return matchesFilter(f.Status, class.String())
}

func matchesFilter(filter, value string) bool {
	if filter == "" || filter == Wildcard {
		return true
	}

	return strings.EqualFold(filter, value)
}
