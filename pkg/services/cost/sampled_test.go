package cost

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleNow = time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	supported map[domain.MetricType]bool
	channels  map[domain.MetricType][]domain.ChannelSeries
	errs      map[domain.MetricType]error
}

func (f *fakeSource) Supports(metric domain.MetricType) bool {
	return f.supported[metric]
}

func (f *fakeSource) Fetch(
	_ context.Context,
	metric domain.MetricType,
	_ domain.Window,
	_ time.Duration,
) ([]domain.ChannelSeries, error) {
	if err := f.errs[metric]; err != nil {
		return nil, err
	}
	return f.channels[metric], nil
}

func sample(offset time.Duration, v float64) domain.MetricSample {
	return domain.MetricSample{Timestamp: sampleNow.Add(offset), Value: v}
}

func TestSampledTimeseries(t *testing.T) {
	src := &fakeSource{
		supported: map[domain.MetricType]bool{domain.MetricCPU: true, domain.MetricDisk: true},
		channels: map[domain.MetricType][]domain.ChannelSeries{
			domain.MetricCPU: {{Name: domain.ChannelCPUPercent, Series: []domain.RawSeries{
				{ID: "a", Samples: []domain.MetricSample{sample(-90*time.Second, 0.5), sample(-30*time.Second, 0.25)}},
			}}},
		},
		errs: map[domain.MetricType]error{domain.MetricDisk: errors.New("permission denied")},
	}

	t.Run("aligned timeline", func(t *testing.T) {
		result := SampledTimeseries(context.Background(), "gcp", src, sampleNow, domain.MetricCPU, 2)

		require.True(t, result.OK())
		assert.Equal(t, []time.Time{sampleNow.Add(-time.Minute), sampleNow}, result.Value.Timestamps)
		values, _ := result.Value.Channel(domain.ChannelCPUPercent)
		assert.Equal(t, []float64{50, 25}, values)
	})

	t.Run("query failure yields empty timeline", func(t *testing.T) {
		result := SampledTimeseries(context.Background(), "gcp", src, sampleNow, domain.MetricDisk, 30)

		require.True(t, result.OK())
		assert.Empty(t, result.Value.Timestamps)
		require.Len(t, result.Value.Channels, 2)
		assert.Equal(t, domain.ChannelReadMBs, result.Value.Channels[0].Name)
		assert.Equal(t, domain.ChannelWriteMBs, result.Value.Channels[1].Name)
	})

	t.Run("unsupported type", func(t *testing.T) {
		result := SampledTimeseries(context.Background(), "gcp", src, sampleNow, domain.MetricErrors, 30)

		assert.Equal(t, domain.ErrorKindUnsupportedOperation, result.Kind)
	})
}

func TestSampledLiveMetrics(t *testing.T) {
	src := &fakeSource{
		supported: map[domain.MetricType]bool{
			domain.MetricCPU:     true,
			domain.MetricTraffic: true,
			domain.MetricErrors:  true,
		},
		channels: map[domain.MetricType][]domain.ChannelSeries{
			domain.MetricCPU: {{Name: domain.ChannelCPUPercent, Series: []domain.RawSeries{
				{ID: "a", Samples: []domain.MetricSample{sample(-time.Minute, 0.2)}},
				{ID: "b", Samples: []domain.MetricSample{sample(-time.Minute, 0.4)}},
			}}},
			domain.MetricTraffic: {
				{Name: domain.ChannelMbpsIn, Series: []domain.RawSeries{
					{ID: "a", Samples: []domain.MetricSample{sample(-time.Minute, 250_000)}},
				}},
			},
		},
		errs: map[domain.MetricType]error{domain.MetricErrors: errors.New("quota")},
	}

	result := SampledLiveMetrics(context.Background(), "gcp", src, sampleNow)

	require.True(t, result.OK())
	live := result.Value
	assert.Equal(t, sampleNow, live.UpdatedAt)
	assert.Equal(t, 30.0, live.CPUPercent)
	assert.Equal(t, 2, live.InstancesMonitored)
	require.NotNil(t, live.Traffic)
	assert.Equal(t, domain.TrafficTile{MbpsIn: 2, MbpsOut: 0}, *live.Traffic)
	assert.Nil(t, live.Disk)
	require.NotNil(t, live.Errors5m)
	assert.Equal(t, int64(0), *live.Errors5m)
}
