package gcp

import (
	"context"

	"github.com/de-tools/cloud-atlas/pkg/clock"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	"github.com/rs/zerolog"
)

// Provider reads spend from the BigQuery billing export and instance
// metrics from Cloud Monitoring.
type Provider struct {
	cfg            Config
	clock          clock.Clock
	connectBilling func(ctx context.Context, cfg Config) (queryRunner, error)
	connectMetrics func(ctx context.Context, cfg Config) (seriesLister, error)
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

	p := &Provider{
		cfg:            cfg,
		clock:          clock.RealClock{},
		connectBilling: newQueryRunner,
		connectMetrics: newSeriesLister,
	}
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

func (p *Provider) LiveMetrics(ctx context.Context) domain.Result[domain.LiveMetrics] {
	lister, err := p.connectMetrics(ctx, p.cfg)
	if err != nil {
		return cost.QueryFailed[domain.LiveMetrics](ctx, Name, "live metrics", err)
	}
	defer closeQuietly(ctx, lister)

	return cost.SampledLiveMetrics(ctx, Name, p.metricSource(lister), p.clock.Now())
}

func (p *Provider) Timeseries(ctx context.Context, metric domain.MetricType, minutes int) domain.Result[domain.Timeline] {
	lister, err := p.connectMetrics(ctx, p.cfg)
	if err != nil {
		return cost.QueryFailed[domain.Timeline](ctx, Name, "timeseries", err)
	}
	defer closeQuietly(ctx, lister)

	return cost.SampledTimeseries(ctx, Name, p.metricSource(lister), p.clock.Now(), metric, minutes)
}

func (p *Provider) metricSource(lister seriesLister) *metricSource {
	return &metricSource{project: p.cfg.ProjectID, lister: lister}
}

type closer interface {
	Close() error
}

func closeQuietly(ctx context.Context, c closer) {
	if err := c.Close(); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("provider", Name).Msg("failed to close client")
	}
}
