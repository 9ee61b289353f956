package cost

import (
	"context"
	"io"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

// Provider is the capability contract every cloud vendor variant implements.
// Configuration is validated by the Factory; after construction operations
// never return Go errors, failures travel inside the Result.
type Provider interface {
	Name() string
	// MTDCosts returns month-to-date spend grouped by project or account and
	// service, sorted by cost descending.
	MTDCosts(ctx context.Context) domain.Result[[]domain.CostLineItem]
	// DailyCosts returns one entry per calendar day, oldest first, covering
	// the last days days up to today.
	DailyCosts(ctx context.Context, days int) domain.Result[[]domain.DailyCost]
	// LiveMetrics returns the tiles for the trailing five minutes.
	LiveMetrics(ctx context.Context) domain.Result[domain.LiveMetrics]
	Timeseries(ctx context.Context, metric domain.MetricType, minutes int) domain.Result[domain.Timeline]
}

// Factory validates cfg and builds a Provider. It performs no network I/O
// and returns a *domain.ConfigurationError for invalid settings.
type Factory func(cfg domain.ProviderConfig) (Provider, error)

// MTDTotalResult sums the month-to-date line items of p.
func MTDTotalResult(ctx context.Context, p Provider) domain.Result[float64] {
	return domain.MapResult(p.MTDCosts(ctx), domain.TotalCost)
}

// MTDTotal is the month-to-date total of p, or 0 when the query fails.
func MTDTotal(ctx context.Context, p Provider) float64 {
	return MTDTotalResult(ctx, p).ValueOr(0)
}

// Release closes p when it holds connections that outlive a single call.
func Release(p Provider) {
	if c, ok := p.(io.Closer); ok {
		_ = c.Close()
	}
}
