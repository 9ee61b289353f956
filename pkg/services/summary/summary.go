package summary

import (
	"context"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Source enumerates configured providers in configuration order.
type Source interface {
	Names() []string
	Get(name string) (domain.ProviderConfig, bool)
}

// Observer is notified of every provider call the aggregator makes.
type Observer interface {
	ObserveProviderCall(provider, operation, status string, elapsed time.Duration)
}

type Aggregator struct {
	registry cost.Registry
	source   Source
	timeout  time.Duration
	observer Observer
}

func NewAggregator(registry cost.Registry, source Source, timeout time.Duration, observer Observer) *Aggregator {
	return &Aggregator{
		registry: registry,
		source:   source,
		timeout:  timeout,
		observer: observer,
	}
}

// Summarize reports the month-to-date total of every configured provider.
// Providers are queried concurrently; a failing provider yields an error
// entry and never affects the others. Entries keep configuration order.
func (a *Aggregator) Summarize(ctx context.Context) []domain.ProviderReport {
	names := a.source.Names()
	reports := make([]domain.ProviderReport, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			reports[i] = a.report(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

func (a *Aggregator) report(ctx context.Context, name string) domain.ProviderReport {
	logger := zerolog.Ctx(ctx).With().Str("provider", name).Logger()

	cfg, _ := a.source.Get(name)
	provider, err := a.registry.Create(name, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("provider construction failed")
		return domain.ProviderReport{Provider: name, Status: domain.StatusError, Error: err.Error()}
	}
	defer cost.Release(provider)

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	total := cost.MTDTotalResult(logger.WithContext(callCtx), provider)
	if a.observer != nil {
		a.observer.ObserveProviderCall(name, "mtd_total", string(total.Status), time.Since(start))
	}

	if !total.OK() {
		return domain.ProviderReport{Provider: name, Status: domain.StatusError, Error: total.Message}
	}
	return domain.ProviderReport{Provider: name, MTDCost: total.Value, Status: domain.StatusActive}
}
