package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/de-tools/cloud-atlas/pkg/clock"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	"github.com/rs/zerolog"
)

// Provider reads subscription spend from Azure Cost Management. Azure
// Monitor metrics are not wired, so live metrics and timeseries report an
// unsupported operation.
type Provider struct {
	cfg     Config
	clock   clock.Clock
	connect querierFactory
}

type Option func(*Provider)

func WithClock(c clock.Clock) Option {
	return func(p *Provider) { p.clock = c }
}

func NewProvider(raw domain.ProviderConfig, opts ...Option) (*Provider, error) {
	cfg, err := LoadConfig(raw)
	if err != nil {
		return nil, err
	}

	p := &Provider{cfg: cfg, clock: clock.RealClock{}, connect: newQuerier}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func Factory(raw domain.ProviderConfig) (cost.Provider, error) {
	return NewProvider(raw)
}

func (p *Provider) Name() string {
	return Name
}

func (p *Provider) MTDCosts(ctx context.Context) domain.Result[[]domain.CostLineItem] {
	const op = "mtd costs"

	query := costQuery(armcostmanagement.TimeframeTypeMonthToDate)
	query.Dataset.Grouping = []*armcostmanagement.QueryGrouping{
		{Name: to.Ptr("ServiceName"), Type: to.Ptr(armcostmanagement.QueryColumnTypeDimension)},
	}

	result, err := p.usage(ctx, query)
	if err != nil {
		return cost.QueryFailed[[]domain.CostLineItem](ctx, Name, op, err)
	}

	items, err := parseServiceCosts(result, p.cfg.SubscriptionID)
	if err != nil {
		return cost.QueryFailed[[]domain.CostLineItem](ctx, Name, op, err)
	}
	cost.SortByCost(items)
	return domain.Ok(items)
}

func (p *Provider) DailyCosts(ctx context.Context, days int) domain.Result[[]domain.DailyCost] {
	const op = "daily costs"

	start, end := cost.DailyRange(p.clock.Now(), days)
	until := end.Add(24*time.Hour - time.Second)

	query := costQuery(armcostmanagement.TimeframeTypeCustom)
	query.TimePeriod = &armcostmanagement.QueryTimePeriod{From: &start, To: &until}
	query.Dataset.Granularity = to.Ptr(armcostmanagement.GranularityTypeDaily)

	result, err := p.usage(ctx, query)
	if err != nil {
		return cost.QueryFailed[[]domain.DailyCost](ctx, Name, op, err)
	}

	reported, err := parseDailyCosts(result)
	if err != nil {
		return cost.QueryFailed[[]domain.DailyCost](ctx, Name, op, err)
	}
	return domain.Ok(cost.FillDaily(start, end, reported))
}

func (p *Provider) LiveMetrics(context.Context) domain.Result[domain.LiveMetrics] {
	return cost.Unsupported[domain.LiveMetrics](Name, "live metrics")
}

func (p *Provider) Timeseries(_ context.Context, metric domain.MetricType, _ int) domain.Result[domain.Timeline] {
	return cost.Unsupported[domain.Timeline](Name, fmt.Sprintf("%s timeseries", metric))
}

func (p *Provider) usage(ctx context.Context, query armcostmanagement.QueryDefinition) (armcostmanagement.QueryResult, error) {
	client, err := p.connect(ctx, p.cfg)
	if err != nil {
		return armcostmanagement.QueryResult{}, err
	}

	resp, err := client.Usage(ctx, p.cfg.Scope(), query, nil)
	if err != nil {
		return armcostmanagement.QueryResult{}, fmt.Errorf("failed to query costs: %w", err)
	}

	// The query client exposes no continuation call, so only the first page is read.
	if props := resp.Properties; props != nil && props.NextLink != nil && *props.NextLink != "" {
		zerolog.Ctx(ctx).Warn().
			Str("provider", Name).
			Str("scope", p.cfg.Scope()).
			Int("rows", len(props.Rows)).
			Msg("cost query result is paged, totals cover the first page only")
	}
	return resp.QueryResult, nil
}

func costQuery(timeframe armcostmanagement.TimeframeType) armcostmanagement.QueryDefinition {
	return armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeUsage),
		Timeframe: &timeframe,
		Dataset: &armcostmanagement.QueryDataset{
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     to.Ptr("PreTaxCost"),
					Function: to.Ptr(armcostmanagement.FunctionTypeSum),
				},
			},
		},
	}
}
