package timeseries

import (
	"testing"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)

func series(id string, samples ...domain.MetricSample) domain.RawSeries {
	return domain.RawSeries{ID: id, Samples: samples}
}

func at(offset time.Duration, v float64) domain.MetricSample {
	return domain.MetricSample{Timestamp: now.Add(offset), Value: v}
}

func TestWindows_Partition(t *testing.T) {
	tests := []struct {
		name     string
		lookback time.Duration
		period   time.Duration
		expected []domain.Window
	}{
		{
			name:     "lookback multiple of period",
			lookback: 3 * time.Minute,
			period:   time.Minute,
			expected: []domain.Window{
				{Start: now.Add(-3 * time.Minute), End: now.Add(-2 * time.Minute)},
				{Start: now.Add(-2 * time.Minute), End: now.Add(-time.Minute)},
				{Start: now.Add(-time.Minute), End: now},
			},
		},
		{
			name:     "oldest window clipped",
			lookback: 150 * time.Second,
			period:   time.Minute,
			expected: []domain.Window{
				{Start: now.Add(-150 * time.Second), End: now.Add(-2 * time.Minute)},
				{Start: now.Add(-2 * time.Minute), End: now.Add(-time.Minute)},
				{Start: now.Add(-time.Minute), End: now},
			},
		},
		{
			name:     "single window",
			lookback: 5 * time.Minute,
			period:   5 * time.Minute,
			expected: []domain.Window{{Start: now.Add(-5 * time.Minute), End: now}},
		},
		{
			name:     "zero period",
			lookback: time.Minute,
			period:   0,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := Windows(now, tt.lookback, tt.period)
			assert.Equal(t, tt.expected, windows)

			for i := 1; i < len(windows); i++ {
				assert.Equal(t, windows[i-1].End, windows[i].Start, "windows must be contiguous")
			}
			if len(windows) > 0 {
				assert.Equal(t, now.Add(-tt.lookback), windows[0].Start)
				assert.Equal(t, now, windows[len(windows)-1].End)
			}
		})
	}
}

func TestWindowIndex_BoundaryBelongsToStartingWindow(t *testing.T) {
	windows := Windows(now, 2*time.Minute, time.Minute)

	assert.Equal(t, 0, windowIndex(windows, now.Add(-2*time.Minute)))
	assert.Equal(t, 1, windowIndex(windows, now.Add(-time.Minute)))
	assert.Equal(t, 0, windowIndex(windows, now.Add(-time.Minute-time.Nanosecond)))
	assert.Equal(t, -1, windowIndex(windows, now))
	assert.Equal(t, -1, windowIndex(windows, now.Add(-3*time.Minute)))
}

func TestAlignChannel_EverySampleCountedOnce(t *testing.T) {
	ch := domain.ChannelSeries{Name: "errors", Series: []domain.RawSeries{
		series("a", at(-120*time.Second, 1), at(-90*time.Second, 1), at(-60*time.Second, 1), at(-1*time.Second, 1)),
		series("b", at(-60*time.Second, 1), at(0, 100), at(-5*time.Minute, 100)),
	}}
	q := Query{End: now, Lookback: 2 * time.Minute, Period: time.Minute, Aligner: AlignSum, Reducer: ReduceSum, Conversion: Count}

	points := AlignChannel(q, ch)

	require.Len(t, points, 2)
	total := points[0].Value + points[1].Value
	assert.Equal(t, 5.0, total, "samples outside [start, end) are ignored, the rest counted exactly once")
	assert.Equal(t, 2.0, points[0].Value)
	assert.Equal(t, 3.0, points[1].Value)
}

func TestAlignChannel_AlignersAndReducers(t *testing.T) {
	ch := domain.ChannelSeries{Name: "x", Series: []domain.RawSeries{
		series("a", at(-50*time.Second, 2), at(-10*time.Second, 4)),
		series("b", at(-30*time.Second, 9)),
	}}

	tests := []struct {
		name     string
		aligner  Aligner
		reducer  Reducer
		expected float64
	}{
		{name: "mean of means", aligner: AlignMean, reducer: ReduceMean, expected: 6},
		{name: "sum of means", aligner: AlignMean, reducer: ReduceSum, expected: 12},
		{name: "sum of sums", aligner: AlignSum, reducer: ReduceSum, expected: 15},
		{name: "rate sums per-sample rates", aligner: AlignRate, reducer: ReduceSum, expected: 15},
		{name: "mean of sums", aligner: AlignSum, reducer: ReduceMean, expected: 7.5},
		{name: "pooled mean", aligner: AlignMean, reducer: ReducePooledMean, expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Query{
				End:        now,
				Lookback:   time.Minute,
				Period:     time.Minute,
				Aligner:    tt.aligner,
				Reducer:    tt.reducer,
				Conversion: Conversion{Precision: 6},
			}
			points := AlignChannel(q, ch)
			require.Len(t, points, 1)
			assert.Equal(t, now, points[0].Timestamp)
			assert.InDelta(t, tt.expected, points[0].Value, 1e-9)
		})
	}
}

func TestAlignChannel_EmptyWindowsAreAbsent(t *testing.T) {
	ch := domain.ChannelSeries{Name: "x", Series: []domain.RawSeries{
		series("a", at(-170*time.Second, 1)),
	}}
	q := Query{End: now, Lookback: 3 * time.Minute, Period: time.Minute, Aligner: AlignMean, Reducer: ReduceMean}

	points := AlignChannel(q, ch)

	require.Len(t, points, 1)
	assert.Equal(t, now.Add(-2*time.Minute), points[0].Timestamp)
}

func TestConversion_Apply(t *testing.T) {
	tests := []struct {
		name     string
		conv     Conversion
		in       float64
		expected float64
	}{
		{name: "cpu fraction to percent", conv: CPUPercent, in: 0.4567, expected: 45.7},
		{name: "cpu clamps above 100", conv: CPUPercent, in: 1.37, expected: 100},
		{name: "cpu clamps below 0", conv: CPUPercent, in: -0.2, expected: 0},
		{name: "network bytes to mbps", conv: MegabitsPerSecond, in: 1_234_567, expected: 9.877},
		{name: "network tile precision", conv: MegabitsPerSecondTile, in: 1_234_567, expected: 9.88},
		{name: "disk bytes to MB/s", conv: MegabytesPerSecond, in: 2_345_678, expected: 2.35},
		{name: "counts are integral", conv: Count, in: 6.6, expected: 7},
		{name: "zero factor leaves value", conv: Conversion{Precision: 1}, in: 1.26, expected: 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.conv.Apply(tt.in), 1e-9)
		})
	}
}

func TestBuildTimeline_TrafficScenario(t *testing.T) {
	// Given: inbound samples in both minutes, outbound only in the first
	in := domain.ChannelSeries{Name: domain.ChannelMbpsIn, Series: []domain.RawSeries{
		series("vm-1", at(-2*time.Minute, 100_000), at(-time.Minute, 200_000)),
	}}
	out := domain.ChannelSeries{Name: domain.ChannelMbpsOut, Series: []domain.RawSeries{
		series("vm-1", at(-2*time.Minute, 50_000)),
	}}
	q := TimelineProfile(domain.MetricTraffic).Query(now, 2*time.Minute, time.Minute)

	// When
	timeline := BuildTimeline(q, in, out)

	// Then
	assert.Equal(t, []time.Time{now.Add(-time.Minute), now}, timeline.Timestamps)
	mbpsIn, ok := timeline.Channel(domain.ChannelMbpsIn)
	require.True(t, ok)
	assert.Equal(t, []float64{0.8, 1.6}, mbpsIn)
	mbpsOut, ok := timeline.Channel(domain.ChannelMbpsOut)
	require.True(t, ok)
	assert.Equal(t, []float64{0.4, 0.0}, mbpsOut)
}

func TestBuildTimeline_ArraysIndexAligned(t *testing.T) {
	a := domain.ChannelSeries{Name: "a", Series: []domain.RawSeries{series("1", at(-150*time.Second, 1))}}
	b := domain.ChannelSeries{Name: "b", Series: []domain.RawSeries{series("1", at(-30*time.Second, 2))}}
	q := Query{End: now, Lookback: 3 * time.Minute, Period: time.Minute, Aligner: AlignSum, Reducer: ReduceSum}

	timeline := BuildTimeline(q, a, b)

	require.Len(t, timeline.Timestamps, 2)
	for _, ch := range timeline.Channels {
		assert.Len(t, ch.Values, len(timeline.Timestamps), ch.Name)
	}
	for i := 1; i < len(timeline.Timestamps); i++ {
		assert.True(t, timeline.Timestamps[i].After(timeline.Timestamps[i-1]))
	}
	assert.Equal(t, []float64{1, 0}, timeline.Channels[0].Values)
	assert.Equal(t, []float64{0, 2}, timeline.Channels[1].Values)
}

func TestBuildTimeline_NoSamples(t *testing.T) {
	q := TimelineProfile(domain.MetricCPU).Query(now, 30*time.Minute, DefaultStep)

	timeline := BuildTimeline(q, domain.ChannelSeries{Name: domain.ChannelCPUPercent})

	assert.Empty(t, timeline.Timestamps)
	require.Len(t, timeline.Channels, 1)
	assert.Equal(t, domain.ChannelCPUPercent, timeline.Channels[0].Name)
	assert.Empty(t, timeline.Channels[0].Values)
}

func TestTile(t *testing.T) {
	t.Run("no cpu samples reads zero", func(t *testing.T) {
		q := TileProfile(domain.MetricCPU).Query(now, LiveLookback, LiveLookback)
		assert.Equal(t, 0.0, Tile(q, domain.ChannelSeries{Name: domain.ChannelCPUPercent}))
	})

	t.Run("cpu uses per-sample mean across instances", func(t *testing.T) {
		ch := domain.ChannelSeries{Name: domain.ChannelCPUPercent, Series: []domain.RawSeries{
			series("busy", at(-4*time.Minute, 0.9), at(-3*time.Minute, 0.9), at(-2*time.Minute, 0.9)),
			series("idle", at(-1*time.Minute, 0.1)),
		}}
		q := TileProfile(domain.MetricCPU).Query(now, LiveLookback, time.Minute)
		assert.Equal(t, 70.0, Tile(q, ch))
	})

	t.Run("traffic sums instance rates", func(t *testing.T) {
		ch := domain.ChannelSeries{Name: domain.ChannelMbpsIn, Series: []domain.RawSeries{
			series("a", at(-time.Minute, 1_000_000)),
			series("b", at(-time.Minute, 500_000)),
		}}
		q := TileProfile(domain.MetricTraffic).Query(now, LiveLookback, LiveLookback)
		assert.Equal(t, 12.0, Tile(q, ch))
	})
}

func TestOrderChannels(t *testing.T) {
	fetched := []domain.ChannelSeries{
		{Name: domain.ChannelMbpsOut, Series: []domain.RawSeries{series("a")}},
		{Name: "ignored"},
		{Name: domain.ChannelMbpsOut, Series: []domain.RawSeries{series("b")}},
	}

	ordered := OrderChannels(domain.MetricTraffic, fetched)

	require.Len(t, ordered, 2)
	assert.Equal(t, domain.ChannelMbpsIn, ordered[0].Name)
	assert.Empty(t, ordered[0].Series)
	assert.Equal(t, domain.ChannelMbpsOut, ordered[1].Name)
	assert.Len(t, ordered[1].Series, 2)
}
