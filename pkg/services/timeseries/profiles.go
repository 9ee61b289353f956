package timeseries

import (
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

const (
	DefaultStep  = 60 * time.Second
	LiveLookback = 5 * time.Minute
)

// Profile is the aligner/reducer/conversion triple used for a metric type.
type Profile struct {
	Aligner    Aligner
	Reducer    Reducer
	Conversion Conversion
}

func (p Profile) Query(end time.Time, lookback, period time.Duration) Query {
	return Query{
		End:        end,
		Lookback:   lookback,
		Period:     period,
		Aligner:    p.Aligner,
		Reducer:    p.Reducer,
		Conversion: p.Conversion,
	}
}

var timelineProfiles = map[domain.MetricType]Profile{
	domain.MetricCPU:     {Aligner: AlignMean, Reducer: ReduceMean, Conversion: CPUPercent},
	domain.MetricTraffic: {Aligner: AlignRate, Reducer: ReduceSum, Conversion: MegabitsPerSecond},
	domain.MetricDisk:    {Aligner: AlignRate, Reducer: ReduceSum, Conversion: MegabytesPerSecond},
	domain.MetricErrors:  {Aligner: AlignSum, Reducer: ReduceSum, Conversion: Count},
}

var tileProfiles = map[domain.MetricType]Profile{
	domain.MetricCPU:     {Aligner: AlignMean, Reducer: ReducePooledMean, Conversion: CPUPercent},
	domain.MetricTraffic: {Aligner: AlignRate, Reducer: ReduceSum, Conversion: MegabitsPerSecondTile},
	domain.MetricDisk:    {Aligner: AlignRate, Reducer: ReduceSum, Conversion: MegabytesPerSecond},
	domain.MetricErrors:  {Aligner: AlignSum, Reducer: ReduceSum, Conversion: Count},
}

func TimelineProfile(mt domain.MetricType) Profile {
	return timelineProfiles[mt]
}

func TileProfile(mt domain.MetricType) Profile {
	return tileProfiles[mt]
}

// ChannelNames lists the output channels of a metric type in display order.
func ChannelNames(mt domain.MetricType) []string {
	switch mt {
	case domain.MetricCPU:
		return []string{domain.ChannelCPUPercent}
	case domain.MetricTraffic:
		return []string{domain.ChannelMbpsIn, domain.ChannelMbpsOut}
	case domain.MetricDisk:
		return []string{domain.ChannelReadMBs, domain.ChannelWriteMBs}
	case domain.MetricErrors:
		return []string{domain.ChannelErrors}
	default:
		return nil
	}
}

// OrderChannels returns one channel per name of mt, in order, taking
// samples from fetched by name. Missing channels come back empty.
func OrderChannels(mt domain.MetricType, fetched []domain.ChannelSeries) []domain.ChannelSeries {
	names := ChannelNames(mt)
	out := make([]domain.ChannelSeries, len(names))
	for i, name := range names {
		out[i] = domain.ChannelSeries{Name: name}
		for _, ch := range fetched {
			if ch.Name == name {
				out[i].Series = append(out[i].Series, ch.Series...)
			}
		}
	}
	return out
}
