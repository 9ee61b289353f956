package domain

import "github.com/shopspring/decimal"

const (
	DateLayout      = "2006-01-02"
	DefaultCurrency = "USD"
)

// CostLineItem is the month-to-date spend of one service within one
// project or account. Cost may be negative when credits apply.
type CostLineItem struct {
	Project  string
	Service  string
	Cost     float64
	Currency string
}

// DailyCost is the total spend of a single calendar day (YYYY-MM-DD).
type DailyCost struct {
	Date string
	Cost float64
}

// TotalCost sums item costs in decimal so cent values do not drift.
func TotalCost(items []CostLineItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Cost))
	}
	return total.InexactFloat64()
}
