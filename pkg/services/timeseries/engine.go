package timeseries

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

// Aligner reduces the samples of one raw series inside one window.
type Aligner int

const (
	AlignMean Aligner = iota
	AlignSum
	// AlignRate sums per-sample rates; vendors already deliver bytes/sec samples.
	AlignRate
)

// Reducer combines the aligned values of every series in a window.
type Reducer int

const (
	ReduceMean Reducer = iota
	ReduceSum
	// ReducePooledMean divides the sum of every raw sample in the window by
	// the total sample count, ignoring series boundaries.
	ReducePooledMean
)

// Conversion scales, optionally clamps and rounds a reduced value.
// A zero Factor leaves the value unscaled.
type Conversion struct {
	Factor    float64
	Precision int
	Clamp     bool
	Min       float64
	Max       float64
}

var (
	CPUPercent            = Conversion{Factor: 100, Precision: 1, Clamp: true, Min: 0, Max: 100}
	MegabitsPerSecond     = Conversion{Factor: 8 / 1e6, Precision: 3}
	MegabitsPerSecondTile = Conversion{Factor: 8 / 1e6, Precision: 2}
	MegabytesPerSecond    = Conversion{Factor: 1 / 1e6, Precision: 2}
	Count                 = Conversion{Factor: 1, Precision: 0}
)

func (c Conversion) Apply(v float64) float64 {
	if c.Factor != 0 {
		v *= c.Factor
	}
	if c.Clamp {
		v = math.Max(c.Min, math.Min(c.Max, v))
	}
	return Round(v, c.Precision)
}

func Round(v float64, precision int) float64 {
	p := math.Pow10(precision)
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}

// Query describes one alignment pass ending at End and looking back Lookback.
type Query struct {
	End        time.Time
	Lookback   time.Duration
	Period     time.Duration
	Aligner    Aligner
	Reducer    Reducer
	Conversion Conversion
}

// Windows partitions [end-lookback, end) into contiguous windows of length
// period, generated backward from end. The oldest window is clipped at the
// lookback start when lookback is not a multiple of period.
func Windows(end time.Time, lookback, period time.Duration) []domain.Window {
	if lookback <= 0 || period <= 0 {
		return nil
	}

	start := end.Add(-lookback)
	windows := make([]domain.Window, 0, int(lookback/period)+1)
	for wEnd := end; wEnd.After(start); wEnd = wEnd.Add(-period) {
		wStart := wEnd.Add(-period)
		if wStart.Before(start) {
			wStart = start
		}
		windows = append(windows, domain.Window{Start: wStart, End: wEnd})
	}
	slices.Reverse(windows)
	return windows
}

// windowIndex returns the window holding t or -1. Windows must be sorted
// and contiguous.
func windowIndex(windows []domain.Window, t time.Time) int {
	i := sort.Search(len(windows), func(i int) bool {
		return windows[i].End.After(t)
	})
	if i < len(windows) && windows[i].Contains(t) {
		return i
	}
	return -1
}

type bucket struct {
	aligned     float64
	series      int
	sampleSum   float64
	sampleCount int
}

// AlignChannel returns one point per window that received at least one
// sample. Empty windows are absent, never zero.
func AlignChannel(q Query, ch domain.ChannelSeries) []domain.AlignedPoint {
	windows := Windows(q.End, q.Lookback, q.Period)
	if len(windows) == 0 {
		return nil
	}

	buckets := make([]bucket, len(windows))
	sums := make([]float64, len(windows))
	counts := make([]int, len(windows))

	for _, series := range ch.Series {
		clear(sums)
		clear(counts)

		for _, sample := range series.Samples {
			i := windowIndex(windows, sample.Timestamp)
			if i < 0 {
				continue
			}
			sums[i] += sample.Value
			counts[i]++
		}

		for i := range windows {
			if counts[i] == 0 {
				continue
			}
			buckets[i].aligned += align(q.Aligner, sums[i], counts[i])
			buckets[i].series++
			buckets[i].sampleSum += sums[i]
			buckets[i].sampleCount += counts[i]
		}
	}

	points := make([]domain.AlignedPoint, 0, len(windows))
	for i, w := range windows {
		b := buckets[i]
		if b.series == 0 {
			continue
		}
		points = append(points, domain.AlignedPoint{
			Timestamp: w.End,
			Value:     q.Conversion.Apply(reduce(q.Reducer, b)),
		})
	}
	return points
}

func align(a Aligner, sum float64, count int) float64 {
	switch a {
	case AlignSum, AlignRate:
		return sum
	default:
		return sum / float64(count)
	}
}

func reduce(r Reducer, b bucket) float64 {
	switch r {
	case ReduceSum:
		return b.aligned
	case ReducePooledMean:
		return b.sampleSum / float64(b.sampleCount)
	default:
		return b.aligned / float64(b.series)
	}
}

// BuildTimeline aligns every channel with the same query and merges them on
// the sorted union of window ends. A channel without a value at a timestamp
// reads 0.
func BuildTimeline(q Query, channels ...domain.ChannelSeries) domain.Timeline {
	aligned := make([][]domain.AlignedPoint, len(channels))
	seen := make(map[int64]time.Time)
	for i, ch := range channels {
		aligned[i] = AlignChannel(q, ch)
		for _, p := range aligned[i] {
			seen[p.Timestamp.UnixNano()] = p.Timestamp
		}
	}

	keys := make([]int64, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	timeline := domain.Timeline{
		Timestamps: make([]time.Time, len(keys)),
		Channels:   make([]domain.TimelineChannel, len(channels)),
	}
	index := make(map[int64]int, len(keys))
	for i, k := range keys {
		timeline.Timestamps[i] = seen[k]
		index[k] = i
	}

	for i, ch := range channels {
		values := make([]float64, len(keys))
		for _, p := range aligned[i] {
			values[index[p.Timestamp.UnixNano()]] = p.Value
		}
		timeline.Channels[i] = domain.TimelineChannel{Name: ch.Name, Values: values}
	}
	return timeline
}

// Tile reduces a channel to a scalar using a single window spanning the
// whole lookback. No samples yields 0.
func Tile(q Query, ch domain.ChannelSeries) float64 {
	q.Period = q.Lookback
	points := AlignChannel(q, ch)
	if len(points) == 0 {
		return 0
	}
	return points[len(points)-1].Value
}
