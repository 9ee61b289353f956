package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	"github.com/de-tools/cloud-atlas/pkg/services/summary"
	"github.com/rs/zerolog"
)

const (
	DefaultDays    = 30
	MaxDays        = 365
	DefaultMinutes = 30
	MaxMinutes     = 24 * 60
)

// Service is the entry point of the web API and the CLI. Every call builds
// a fresh provider from its configuration and releases it on return.
//
// The returned Go error is only ever *domain.NotConfiguredError,
// *domain.UnsupportedProviderError, *domain.ConfigurationError or
// *domain.InvalidParameterError. Vendor failures travel inside the Result.
type Service interface {
	ListProviders() []domain.ProviderInfo
	MTDCosts(ctx context.Context, provider string) (domain.Result[[]domain.CostLineItem], error)
	DailyCosts(ctx context.Context, provider string, days int) (domain.Result[[]domain.DailyCost], error)
	LiveMetrics(ctx context.Context, provider string) (domain.Result[domain.LiveMetrics], error)
	Timeseries(ctx context.Context, provider, metric string, minutes int) (domain.Result[domain.Timeline], error)
	CostSummary(ctx context.Context) []domain.ProviderReport
}

type service struct {
	registry   cost.Registry
	source     summary.Source
	timeout    time.Duration
	observer   summary.Observer
	aggregator *summary.Aggregator
}

type Options struct {
	Registry cost.Registry
	Source   summary.Source
	Timeout  time.Duration
	Observer summary.Observer
}

func NewService(opts Options) Service {
	return &service{
		registry:   opts.Registry,
		source:     opts.Source,
		timeout:    opts.Timeout,
		observer:   opts.Observer,
		aggregator: summary.NewAggregator(opts.Registry, opts.Source, opts.Timeout, opts.Observer),
	}
}

func (s *service) ListProviders() []domain.ProviderInfo {
	var providers []domain.ProviderInfo
	for _, name := range s.source.Names() {
		info := domain.NewProviderInfo(name)
		info.Configured = s.registry.IsRegistered(name)
		providers = append(providers, info)
	}
	return providers
}

func (s *service) MTDCosts(ctx context.Context, provider string) (domain.Result[[]domain.CostLineItem], error) {
	return call(ctx, s, provider, "mtd_costs", func(ctx context.Context, p cost.Provider) domain.Result[[]domain.CostLineItem] {
		return p.MTDCosts(ctx)
	})
}

func (s *service) DailyCosts(ctx context.Context, provider string, days int) (domain.Result[[]domain.DailyCost], error) {
	if days < 1 || days > MaxDays {
		return domain.Result[[]domain.DailyCost]{}, &domain.InvalidParameterError{
			Name:   "days",
			Value:  strconv.Itoa(days),
			Reason: fmt.Sprintf("must be between 1 and %d", MaxDays),
		}
	}
	return call(ctx, s, provider, "daily_costs", func(ctx context.Context, p cost.Provider) domain.Result[[]domain.DailyCost] {
		return p.DailyCosts(ctx, days)
	})
}

func (s *service) LiveMetrics(ctx context.Context, provider string) (domain.Result[domain.LiveMetrics], error) {
	return call(ctx, s, provider, "live_metrics", func(ctx context.Context, p cost.Provider) domain.Result[domain.LiveMetrics] {
		return p.LiveMetrics(ctx)
	})
}

func (s *service) Timeseries(
	ctx context.Context,
	provider, metric string,
	minutes int,
) (domain.Result[domain.Timeline], error) {
	mt, ok := domain.ParseMetricType(strings.ToLower(strings.TrimSpace(metric)))
	if !ok {
		return domain.Result[domain.Timeline]{}, &domain.InvalidParameterError{
			Name:   "type",
			Value:  metric,
			Reason: "must be one of cpu, traffic, disk, errors",
		}
	}
	if minutes < 1 || minutes > MaxMinutes {
		return domain.Result[domain.Timeline]{}, &domain.InvalidParameterError{
			Name:   "minutes",
			Value:  strconv.Itoa(minutes),
			Reason: fmt.Sprintf("must be between 1 and %d", MaxMinutes),
		}
	}
	return call(ctx, s, provider, "timeseries", func(ctx context.Context, p cost.Provider) domain.Result[domain.Timeline] {
		return p.Timeseries(ctx, mt, minutes)
	})
}

func (s *service) CostSummary(ctx context.Context) []domain.ProviderReport {
	return s.aggregator.Summarize(ctx)
}

// resolve builds a provider for name from its configuration.
func (s *service) resolve(name string) (cost.Provider, error) {
	name = cost.NormalizeName(name)
	if !s.registry.IsRegistered(name) {
		return nil, &domain.UnsupportedProviderError{Provider: name}
	}
	cfg, ok := s.source.Get(name)
	if !ok {
		return nil, &domain.NotConfiguredError{Provider: name}
	}
	return s.registry.Create(name, cfg)
}

func call[T any](
	ctx context.Context,
	s *service,
	name, operation string,
	fn func(context.Context, cost.Provider) domain.Result[T],
) (domain.Result[T], error) {
	provider, err := s.resolve(name)
	if err != nil {
		return domain.Result[T]{}, err
	}
	defer cost.Release(provider)

	name = provider.Name()
	logger := zerolog.Ctx(ctx).With().Str("provider", name).Str("operation", operation).Logger()
	ctx = logger.WithContext(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	result := fn(ctx, provider)
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveProviderCall(name, operation, string(result.Status), elapsed)
	}
	logger.Debug().Dur("elapsed", elapsed).Str("status", string(result.Status)).Msg("provider call finished")

	return result, nil
}
