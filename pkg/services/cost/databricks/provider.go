package databricks

import (
	"context"
	"database/sql"

	"github.com/de-tools/cloud-atlas/pkg/clock"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	sqlapi "github.com/databricks/databricks-sdk-go/service/sql"
)

// Provider reads Databricks spend from the system.billing tables through a
// SQL warehouse. Live metrics only report the running warehouse fleet.
type Provider struct {
	cfg     Config
	clock   clock.Clock
	db      *sql.DB
	connect func(Config) (warehouseLister, error)
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

	p := &Provider{cfg: cfg, clock: clock.RealClock{}, db: db, connect: newWarehouseLister}
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

func (p *Provider) Close() error {
	return p.db.Close()
}

func (p *Provider) LiveMetrics(ctx context.Context) domain.Result[domain.LiveMetrics] {
	const op = "live metrics"

	warehouses, err := p.connect(p.cfg)
	if err != nil {
		return cost.QueryFailed[domain.LiveMetrics](ctx, Name, op, err)
	}
	list, err := warehouses.ListAll(ctx, sqlapi.ListWarehousesRequest{})
	if err != nil {
		return cost.QueryFailed[domain.LiveMetrics](ctx, Name, op, err)
	}

	running := 0
	for _, wh := range list {
		if wh.State == sqlapi.StateRunning {
			running++
		}
	}
	return domain.Ok(domain.LiveMetrics{
		UpdatedAt:          p.clock.Now(),
		InstancesMonitored: running,
	})
}

func (p *Provider) Timeseries(_ context.Context, metric domain.MetricType, _ int) domain.Result[domain.Timeline] {
	return cost.Unsupported[domain.Timeline](Name, string(metric)+" timeseries")
}
