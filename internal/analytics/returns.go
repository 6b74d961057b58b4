package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/vajra-io/vajra/internal/storage"
)

const dateLayout = "2006-01-02"

const hoursPerDay = 24

// Returns computes the returns dashboard: total return count, average
// refund-processing and pickup-delay durations in days, and monthly return
// counts. The date filter applies to the return date; returns with a missing
// or malformed date are excluded from date-dependent outputs but still count
// toward the raw total.
func (e *Engine) Returns(
	ctx context.Context,
	mode DataSourceMode,
	filters Filters,
) (*ReturnsResult, error) {
	store := e.store(mode)

	var (
		total        int
		refundDays   float64
		refundCount  int
		pickupDays   float64
		pickupCount  int
		monthlyCount = make(map[string]int)
	)

	err := store.ScanReturns(ctx, func(r storage.Return) error {
		if filters.Bounded() && !filters.InDateRange(r.ReturnDate) {
			return nil
		}

		total++

		if key := monthKey(r.ReturnDate); key != "" {
			monthlyCount[key]++
		}

		returned, ok := parseDate(r.ReturnDate)
		if !ok {
			return nil
		}

		if refunded, ok := parseDate(r.RefundProcessedDate); ok {
			refundDays += refunded.Sub(returned).Hours() / hoursPerDay
			refundCount++
		}

		if pickup, ok := parseDate(r.PickupScheduledDate); ok {
			pickupDays += pickup.Sub(returned).Hours() / hoursPerDay
			pickupCount++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	months := make([]MonthCount, 0, len(monthlyCount))
	for month, count := range monthlyCount {
		months = append(months, MonthCount{Month: month, Count: count})
	}

	sort.Slice(months, func(i, j int) bool {
		return months[i].Month < months[j].Month
	})

	result := &ReturnsResult{
		Mode:          mode.String(),
		TotalReturns:  total,
		MonthlyCounts: months,
	}

	if refundCount > 0 {
		result.AvgRefundDays = refundDays / float64(refundCount)
	}

	if pickupCount > 0 {
		result.AvgPickupDelayDays = pickupDays / float64(pickupCount)
	}

	return result, nil
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}
