package cost

import (
	"cmp"
	"slices"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// DailyRange returns the first and last calendar day (UTC midnight) of a
// daily report covering days days up to and including today.
func DailyRange(now time.Time, days int) (time.Time, time.Time) {
	today := now.UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, -days), today
}

// MonthStart returns UTC midnight of the first day of now's month.
func MonthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// FillDaily returns exactly one entry per day in [start, end], oldest first.
// Costs reported for the same day are summed; days without a report read 0
// and reports outside the range are dropped.
func FillDaily(start, end time.Time, reported []domain.DailyCost) []domain.DailyCost {
	byDay := make(map[string]decimal.Decimal, len(reported))
	for _, r := range reported {
		byDay[r.Date] = byDay[r.Date].Add(decimal.NewFromFloat(r.Cost))
	}

	var out []domain.DailyCost
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(domain.DateLayout)
		out = append(out, domain.DailyCost{
			Date: key,
			Cost: byDay[key].Round(2).InexactFloat64(),
		})
	}
	return out
}

// SortByCost orders line items by cost descending, then by project and service.
func SortByCost(items []domain.CostLineItem) {
	slices.SortStableFunc(items, func(a, b domain.CostLineItem) int {
		if c := cmp.Compare(b.Cost, a.Cost); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Project, b.Project); c != 0 {
			return c
		}
		return cmp.Compare(a.Service, b.Service)
	})
}

// RoundCost rounds a currency amount to cents.
func RoundCost(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
