package domain

import "time"

// MetricSample is a single timestamped observation from a vendor series.
type MetricSample struct {
	Timestamp time.Time
	Value     float64
}

// RawSeries is one vendor series, e.g. the samples of a single instance.
type RawSeries struct {
	ID      string
	Samples []MetricSample
}

// ChannelSeries groups every raw series feeding one logical channel.
type ChannelSeries struct {
	Name   string
	Series []RawSeries
}

// Window is a half-open alignment interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// AlignedPoint is the reduced value of one window, stamped with the window end.
type AlignedPoint struct {
	Timestamp time.Time
	Value     float64
}

type TimelineChannel struct {
	Name   string
	Values []float64
}

// Timeline holds index-aligned channel values over a shared timestamp axis.
type Timeline struct {
	Timestamps []time.Time
	Channels   []TimelineChannel
}

func (t Timeline) Channel(name string) ([]float64, bool) {
	for _, c := range t.Channels {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

func (t Timeline) Empty() bool {
	return len(t.Timestamps) == 0
}

type MetricType string

const (
	MetricCPU     MetricType = "cpu"
	MetricTraffic MetricType = "traffic"
	MetricDisk    MetricType = "disk"
	MetricErrors  MetricType = "errors"
)

const (
	ChannelCPUPercent = "cpu_percent"
	ChannelMbpsIn     = "mbps_in"
	ChannelMbpsOut    = "mbps_out"
	ChannelReadMBs    = "read_mbs"
	ChannelWriteMBs   = "write_mbs"
	ChannelErrors     = "errors"
)

func ParseMetricType(s string) (MetricType, bool) {
	switch mt := MetricType(s); mt {
	case MetricCPU, MetricTraffic, MetricDisk, MetricErrors:
		return mt, true
	default:
		return "", false
	}
}
