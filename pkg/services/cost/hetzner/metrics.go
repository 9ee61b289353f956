package hetzner

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentMetricCalls = 4

// hetznerSeries maps a Hetzner time series name onto a channel.
type hetznerSeries struct {
	name    string
	channel string
}

var hetznerMetrics = map[domain.MetricType]struct {
	kind   hcloud.ServerMetricType
	series []hetznerSeries
}{
	domain.MetricCPU: {
		kind:   hcloud.ServerMetricCPU,
		series: []hetznerSeries{{name: "cpu", channel: domain.ChannelCPUPercent}},
	},
	domain.MetricTraffic: {
		kind: hcloud.ServerMetricNetwork,
		series: []hetznerSeries{
			{name: "network.0.bandwidth.in", channel: domain.ChannelMbpsIn},
			{name: "network.0.bandwidth.out", channel: domain.ChannelMbpsOut},
		},
	},
	domain.MetricDisk: {
		kind: hcloud.ServerMetricDisk,
		series: []hetznerSeries{
			{name: "disk.0.bandwidth.read", channel: domain.ChannelReadMBs},
			{name: "disk.0.bandwidth.write", channel: domain.ChannelWriteMBs},
		},
	},
}

type metricSource struct {
	api     serverAPI
	servers []*hcloud.Server
}

func (s *metricSource) Supports(metric domain.MetricType) bool {
	_, ok := hetznerMetrics[metric]
	return ok
}

func (s *metricSource) Fetch(
	ctx context.Context,
	metric domain.MetricType,
	window domain.Window,
	step time.Duration,
) ([]domain.ChannelSeries, error) {
	def := hetznerMetrics[metric]
	opts := hcloud.ServerGetMetricsOpts{
		Types: []hcloud.ServerMetricType{def.kind},
		Start: window.Start,
		End:   window.End,
		Step:  max(1, int(step.Seconds())),
	}

	channels := make([]domain.ChannelSeries, len(def.series))
	for i, hs := range def.series {
		channels[i] = domain.ChannelSeries{Name: hs.channel}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentMetricCalls)
	for _, server := range s.servers {
		g.Go(func() error {
			metrics, _, err := s.api.GetMetrics(gctx, server, opts)
			if err != nil {
				return mapError("failed to get server metrics", err)
			}

			id := strconv.FormatInt(server.ID, 10)
			scale := valueScale(metric, server)

			mu.Lock()
			defer mu.Unlock()
			for i, hs := range def.series {
				channels[i].Series = append(channels[i].Series, domain.RawSeries{
					ID:      id,
					Samples: toSamples(metrics.TimeSeries[hs.name], scale),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return channels, nil
}

// valueScale converts Hetzner CPU percent, summed over all cores, into a
// utilisation fraction. Bandwidth series are already bytes per second.
func valueScale(metric domain.MetricType, server *hcloud.Server) float64 {
	if metric != domain.MetricCPU {
		return 1
	}
	cores := 1
	if server.ServerType != nil && server.ServerType.Cores > 0 {
		cores = server.ServerType.Cores
	}
	return 1 / (100 * float64(cores))
}

// toSamples parses Hetzner string values; unparsable points are skipped.
func toSamples(values []hcloud.ServerMetricsValue, scale float64) []domain.MetricSample {
	samples := make([]domain.MetricSample, 0, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			continue
		}
		sec, frac := math.Modf(v.Timestamp)
		samples = append(samples, domain.MetricSample{
			Timestamp: time.Unix(int64(sec), int64(frac*1e9)).UTC(),
			Value:     f * scale,
		})
	}
	return samples
}
