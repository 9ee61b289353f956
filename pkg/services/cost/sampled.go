package cost

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/timeseries"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MetricSource fetches raw vendor samples of one metric type. Returned
// channels are named after the domain.Channel* constants.
type MetricSource interface {
	Supports(metric domain.MetricType) bool
	Fetch(ctx context.Context, metric domain.MetricType, window domain.Window, step time.Duration) ([]domain.ChannelSeries, error)
}

var liveMetricTypes = []domain.MetricType{
	domain.MetricCPU,
	domain.MetricTraffic,
	domain.MetricDisk,
	domain.MetricErrors,
}

// SampledTimeseries fetches metric from src over the last minutes and
// aligns it on one-minute windows ending at now.
func SampledTimeseries(
	ctx context.Context,
	provider string,
	src MetricSource,
	now time.Time,
	metric domain.MetricType,
	minutes int,
) domain.Result[domain.Timeline] {
	if !src.Supports(metric) {
		return domain.Failed[domain.Timeline](&domain.UnsupportedOperationError{
			Provider:  provider,
			Operation: fmt.Sprintf("%s timeseries", metric),
		})
	}

	lookback := time.Duration(minutes) * time.Minute
	window := domain.Window{Start: now.Add(-lookback), End: now}
	fetched := fetchOrEmpty(ctx, provider, src, metric, window, timeseries.DefaultStep)

	q := timeseries.TimelineProfile(metric).Query(now, lookback, timeseries.DefaultStep)
	return domain.Ok(timeseries.BuildTimeline(q, timeseries.OrderChannels(metric, fetched)...))
}

// SampledLiveMetrics builds the five-minute tiles for every metric type src
// supports. Tiles of unsupported types stay nil.
func SampledLiveMetrics(ctx context.Context, provider string, src MetricSource, now time.Time) domain.Result[domain.LiveMetrics] {
	window := domain.Window{Start: now.Add(-timeseries.LiveLookback), End: now}
	fetched := make([][]domain.ChannelSeries, len(liveMetricTypes))

	g, gctx := errgroup.WithContext(ctx)
	for i, metric := range liveMetricTypes {
		if !src.Supports(metric) {
			continue
		}
		g.Go(func() error {
			fetched[i] = fetchOrEmpty(gctx, provider, src, metric, window, timeseries.LiveLookback)
			return nil
		})
	}
	_ = g.Wait()

	tile := func(metric domain.MetricType, ch domain.ChannelSeries) float64 {
		q := timeseries.TileProfile(metric).Query(now, timeseries.LiveLookback, timeseries.LiveLookback)
		return timeseries.Tile(q, ch)
	}

	cpu := timeseries.OrderChannels(domain.MetricCPU, fetched[0])
	live := domain.LiveMetrics{
		UpdatedAt:          now,
		CPUPercent:         tile(domain.MetricCPU, cpu[0]),
		InstancesMonitored: len(cpu[0].Series),
	}

	if src.Supports(domain.MetricTraffic) {
		ch := timeseries.OrderChannels(domain.MetricTraffic, fetched[1])
		live.Traffic = &domain.TrafficTile{
			MbpsIn:  tile(domain.MetricTraffic, ch[0]),
			MbpsOut: tile(domain.MetricTraffic, ch[1]),
		}
	}
	if src.Supports(domain.MetricDisk) {
		ch := timeseries.OrderChannels(domain.MetricDisk, fetched[2])
		live.Disk = &domain.DiskTile{
			ReadMBs:  tile(domain.MetricDisk, ch[0]),
			WriteMBs: tile(domain.MetricDisk, ch[1]),
		}
	}
	if src.Supports(domain.MetricErrors) {
		ch := timeseries.OrderChannels(domain.MetricErrors, fetched[3])
		count := int64(tile(domain.MetricErrors, ch[0]))
		live.Errors5m = &count
	}

	return domain.Ok(live)
}

func fetchOrEmpty(
	ctx context.Context,
	provider string,
	src MetricSource,
	metric domain.MetricType,
	window domain.Window,
	step time.Duration,
) []domain.ChannelSeries {
	channels, err := src.Fetch(ctx, metric, window, step)
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("provider", provider).
			Str("metric", string(metric)).
			Msg("metric query failed, treating as no samples")
		return nil
	}
	return channels
}

// QueryFailed logs err and turns it into a transient soft failure.
func QueryFailed[T any](ctx context.Context, provider, operation string, err error) domain.Result[T] {
	zerolog.Ctx(ctx).Warn().
		Err(err).
		Str("provider", provider).
		Str("operation", operation).
		Msg("provider query failed")
	return domain.Failed[T](&domain.TransientQueryError{Provider: provider, Operation: operation, Err: err})
}

// Unsupported is the soft result of an operation a vendor does not offer.
func Unsupported[T any](provider, operation string) domain.Result[T] {
	return domain.Failed[T](&domain.UnsupportedOperationError{Provider: provider, Operation: operation})
}
