package hetzner

import (
	"context"

	"github.com/de-tools/cloud-atlas/pkg/clock"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// Provider estimates Hetzner Cloud spend from the running fleet and its
// list prices, and reads per-server metrics.
type Provider struct {
	cfg     Config
	clock   clock.Clock
	servers serverAPI
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

	p := &Provider{cfg: cfg, clock: clock.RealClock{}, servers: newServerAPI(cfg)}
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
	servers, err := p.listServers(ctx)
	if err != nil {
		return cost.QueryFailed[domain.LiveMetrics](ctx, Name, "live metrics", err)
	}
	return cost.SampledLiveMetrics(ctx, Name, &metricSource{api: p.servers, servers: servers}, p.clock.Now())
}

func (p *Provider) Timeseries(ctx context.Context, metric domain.MetricType, minutes int) domain.Result[domain.Timeline] {
	servers, err := p.listServers(ctx)
	if err != nil {
		return cost.QueryFailed[domain.Timeline](ctx, Name, "timeseries", err)
	}
	src := &metricSource{api: p.servers, servers: servers}
	return cost.SampledTimeseries(ctx, Name, src, p.clock.Now(), metric, minutes)
}

func (p *Provider) listServers(ctx context.Context) ([]*hcloud.Server, error) {
	opts := hcloud.ServerListOpts{}
	opts.LabelSelector = p.cfg.LabelSelector

	servers, err := p.servers.AllWithOpts(ctx, opts)
	if err != nil {
		return nil, mapError("failed to list servers", err)
	}
	return servers, nil
}
