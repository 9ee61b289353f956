package snowflake

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/cloud-atlas/pkg/clock"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	"github.com/shopspring/decimal"
)

var mtdQuery = `
		SELECT
		  service_type,
		  SUM(credits_billed) AS credits
		FROM snowflake.account_usage.metering_daily_history
		WHERE usage_date >= ?
		GROUP BY 1
		ORDER BY credits DESC`

var dailyQuery = `
		SELECT
		  TO_VARCHAR(usage_date, 'YYYY-MM-DD') AS day,
		  SUM(credits_billed) AS credits
		FROM snowflake.account_usage.metering_daily_history
		WHERE usage_date >= ? AND usage_date <= ?
		GROUP BY 1
		ORDER BY 1`

// Provider prices Snowflake credit consumption at a flat credit price.
// Snowflake exposes no host metrics.
type Provider struct {
	cfg   Config
	clock clock.Clock
	db    *sql.DB
	price decimal.Decimal
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

	db, err := openDB(cfg)
	if err != nil {
		return nil, &domain.ConfigurationError{Provider: Name, Reason: "invalid connection settings", Err: err}
	}
	return newProvider(cfg, db, opts...), nil
}

func newProvider(cfg Config, db *sql.DB, opts ...Option) *Provider {
	p := &Provider{
		cfg:   cfg,
		clock: clock.RealClock{},
		db:    db,
		price: decimal.NewFromFloat(cfg.CreditPrice),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func Factory(raw domain.ProviderConfig) (cost.Provider, error) {
	return NewProvider(raw)
}

func (p *Provider) Name() string {
	return Name
}

func (p *Provider) Close() error {
	return p.db.Close()
}

func (p *Provider) MTDCosts(ctx context.Context) domain.Result[[]domain.CostLineItem] {
	const op = "mtd costs"

	monthStart := cost.MonthStart(p.clock.Now()).Format(domain.DateLayout)
	rows, err := p.db.QueryContext(ctx, mtdQuery, monthStart)
	if err != nil {
		return cost.QueryFailed[[]domain.CostLineItem](ctx, Name, op, fmt.Errorf("metering query failed: %w", err))
	}
	defer rows.Close()

	var items []domain.CostLineItem
	for rows.Next() {
		var service string
		var credits sql.NullFloat64
		if err := rows.Scan(&service, &credits); err != nil {
			return cost.QueryFailed[[]domain.CostLineItem](ctx, Name, op, err)
		}
		items = append(items, domain.CostLineItem{
			Project:  p.cfg.Account,
			Service:  service,
			Cost:     p.creditCost(credits.Float64),
			Currency: domain.DefaultCurrency,
		})
	}
	if err := rows.Err(); err != nil {
		return cost.QueryFailed[[]domain.CostLineItem](ctx, Name, op, err)
	}

	cost.SortByCost(items)
	return domain.Ok(items)
}

func (p *Provider) DailyCosts(ctx context.Context, days int) domain.Result[[]domain.DailyCost] {
	const op = "daily costs"

	start, end := cost.DailyRange(p.clock.Now(), days)
	rows, err := p.db.QueryContext(ctx, dailyQuery, start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	if err != nil {
		return cost.QueryFailed[[]domain.DailyCost](ctx, Name, op, fmt.Errorf("metering query failed: %w", err))
	}
	defer rows.Close()

	var reported []domain.DailyCost
	for rows.Next() {
		var day string
		var credits sql.NullFloat64
		if err := rows.Scan(&day, &credits); err != nil {
			return cost.QueryFailed[[]domain.DailyCost](ctx, Name, op, err)
		}
		reported = append(reported, domain.DailyCost{Date: day, Cost: p.creditCost(credits.Float64)})
	}
	if err := rows.Err(); err != nil {
		return cost.QueryFailed[[]domain.DailyCost](ctx, Name, op, err)
	}

	return domain.Ok(cost.FillDaily(start, end, reported))
}

func (p *Provider) LiveMetrics(context.Context) domain.Result[domain.LiveMetrics] {
	return cost.Unsupported[domain.LiveMetrics](Name, "live metrics")
}

func (p *Provider) Timeseries(_ context.Context, metric domain.MetricType, _ int) domain.Result[domain.Timeline] {
	return cost.Unsupported[domain.Timeline](Name, string(metric)+" timeseries")
}

func (p *Provider) creditCost(credits float64) float64 {
	return decimal.NewFromFloat(credits).Mul(p.price).Round(2).InexactFloat64()
}
