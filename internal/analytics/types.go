// Package analytics implements the join and aggregation engine behind the
// admin dashboards: status classification, revenue/cost/profit accumulation,
// time bucketing, top-N ranking, and two-tier name hydration over the record
// store.
package analytics

import "time"

// DataSourceMode identifies which data tier an aggregation pass reads from.
// It is passed explicitly into every call so a pass is a pure function of its
// inputs, never of ambient sync state.
type DataSourceMode int

const (
	// ModePreview aggregates over the small in-memory snapshot.
	ModePreview DataSourceMode = iota
	// ModeSyncing means the full sync is in flight; aggregation still reads
	// the preview snapshot until the full dataset has landed.
	ModeSyncing
	// ModeFullySynced aggregates over the persistent store.
	ModeFullySynced
)

// String returns the wire label for the mode.
func (m DataSourceMode) String() string {
	switch m {
	case ModePreview:
		return "preview"
	case ModeSyncing:
		return "syncing"
	case ModeFullySynced:
		return "fully_synced"
	default:
		return "unknown"
	}
}

type (
	// SeriesBucket is one time bucket in a revenue series, keyed by day
	// ("2023-01-05") or month ("2023-01") depending on the consumer.
	SeriesBucket struct {
		Key     string  `json:"key"`
		Label   string  `json:"label"`
		Revenue float64 `json:"revenue"`
		Cost    float64 `json:"cost"`
		Profit  float64 `json:"profit"`
		Orders  int     `json:"orders"`
	}

	// StatusCount is one entry in a status breakdown. Zero-count labels are
	// omitted from results.
	StatusCount struct {
		Status string `json:"status"`
		Count  int    `json:"count"`
	}

	// RankedEntry is one row of a top-N list: an identifier, a display name
	// resolved by the hydration policy, and the accumulated value.
	RankedEntry struct {
		ID    int64   `json:"id"`
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}

	// LabelValue is one row of a dimensional revenue breakdown
	// (category/brand/department).
	LabelValue struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}

	// OverviewResult is the main dashboard payload.
	OverviewResult struct {
		Mode            string        `json:"mode"`
		TotalRevenue    float64       `json:"totalRevenue"`
		TotalCost       float64       `json:"totalCost"`
		GrossProfit     float64       `json:"grossProfit"`
		MarginPercent   float64       `json:"marginPercent"`
		TotalOrders     int           `json:"totalOrders"`
		TotalCustomers  int           `json:"totalCustomers"`
		TotalProducts   int           `json:"totalProducts"`
		MonthlySeries   []SeriesBucket `json:"monthlySeries"`
		StatusBreakdown []StatusCount `json:"statusBreakdown"`
		TopProducts     []RankedEntry `json:"topProducts"`
		TopCustomers    []RankedEntry `json:"topCustomers"`
		GeneratedAt     time.Time     `json:"generatedAt"`
	}

	// ProductProfit is one row of the revenue dashboard's per-product
	// breakdown.
	ProductProfit struct {
		ID      int64   `json:"id"`
		Name    string  `json:"name"`
		Revenue float64 `json:"revenue"`
		Cost    float64 `json:"cost"`
		Profit  float64 `json:"profit"`
	}

	// RevenueResult is the revenue dashboard payload.
	RevenueResult struct {
		Mode          string          `json:"mode"`
		TotalRevenue  float64         `json:"totalRevenue"`
		TotalCost     float64         `json:"totalCost"`
		GrossProfit   float64         `json:"grossProfit"`
		MarginPercent float64         `json:"marginPercent"`
		MonthlySeries []SeriesBucket  `json:"monthlySeries"`
		TopProducts   []ProductProfit `json:"topProducts"`
	}

	// SalesResult is the sales analytics payload: a daily trend plus
	// dimensional revenue breakdowns honoring the product filters.
	SalesResult struct {
		Mode                string         `json:"mode"`
		TotalRevenue        float64        `json:"totalRevenue"`
		TotalCost           float64        `json:"totalCost"`
		GrossProfit         float64        `json:"grossProfit"`
		DailyTrend          []SeriesBucket `json:"dailyTrend"`
		CategoryBreakdown   []LabelValue   `json:"categoryBreakdown"`
		BrandBreakdown      []LabelValue   `json:"brandBreakdown"`
		DepartmentBreakdown []LabelValue   `json:"departmentBreakdown"`
	}

	// MonthCount is one month's return count ("2023-01" keys).
	MonthCount struct {
		Month string `json:"month"`
		Count int    `json:"count"`
	}

	// ReturnsResult is the returns dashboard payload.
	ReturnsResult struct {
		Mode               string       `json:"mode"`
		TotalReturns       int          `json:"totalReturns"`
		AvgRefundDays      float64      `json:"avgRefundDays"`
		AvgPickupDelayDays float64      `json:"avgPickupDelayDays"`
		MonthlyCounts      []MonthCount `json:"monthlyCounts"`
	}

	// CustomerValue is one customer's lifetime-value row. Spend covers orders
	// that are neither cancelled nor returned.
	CustomerValue struct {
		ID            int64   `json:"id"`
		Name          string  `json:"name"`
		TotalSpend    float64 `json:"totalSpend"`
		Orders        int     `json:"orders"`
		LastOrderDate string  `json:"lastOrderDate"`
	}

	// CustomersResult is the customers dashboard payload, sorted descending
	// by spend.
	CustomersResult struct {
		Mode           string          `json:"mode"`
		TotalCustomers int             `json:"totalCustomers"`
		Customers      []CustomerValue `json:"customers"`
	}
)
