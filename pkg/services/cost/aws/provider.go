package aws

import (
	"context"

	"github.com/de-tools/cloud-atlas/pkg/clock"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
)

type Provider struct {
	cfg     Config
	clock   clock.Clock
	connect clientFactory
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
		cfg:     cfg,
		clock:   clock.RealClock{},
		connect: newClients,
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
	c, err := p.connect(ctx, p.cfg)
	if err != nil {
		return cost.QueryFailed[domain.LiveMetrics](ctx, Name, "live metrics", err)
	}
	return cost.SampledLiveMetrics(ctx, Name, &metricSource{client: c, detailed: p.cfg.DetailedMonitoring}, p.clock.Now())
}

func (p *Provider) Timeseries(ctx context.Context, metric domain.MetricType, minutes int) domain.Result[domain.Timeline] {
	c, err := p.connect(ctx, p.cfg)
	if err != nil {
		return cost.QueryFailed[domain.Timeline](ctx, Name, "timeseries", err)
	}
	return cost.SampledTimeseries(ctx, Name, &metricSource{client: c, detailed: p.cfg.DetailedMonitoring}, p.clock.Now(), metric, minutes)
}
