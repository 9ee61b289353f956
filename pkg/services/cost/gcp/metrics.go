package gcp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const errorLogFilter = `resource.type = "gce_instance" AND ` +
	`metric.label.severity = one_of("ERROR", "CRITICAL", "ALERT", "EMERGENCY")`

// gcpMetric describes one Cloud Monitoring metric feeding a channel. Rate
// metrics are aligned server side to per-second rates at the engine period.
type gcpMetric struct {
	channel    string
	metricType string
	rate       bool
	filter     string
}

var gcpMetrics = map[domain.MetricType][]gcpMetric{
	domain.MetricCPU: {
		{channel: domain.ChannelCPUPercent, metricType: "compute.googleapis.com/instance/cpu/utilization"},
	},
	domain.MetricTraffic: {
		{channel: domain.ChannelMbpsIn, metricType: "compute.googleapis.com/instance/network/received_bytes_count", rate: true},
		{channel: domain.ChannelMbpsOut, metricType: "compute.googleapis.com/instance/network/sent_bytes_count", rate: true},
	},
	domain.MetricDisk: {
		{channel: domain.ChannelReadMBs, metricType: "compute.googleapis.com/instance/disk/read_bytes_count", rate: true},
		{channel: domain.ChannelWriteMBs, metricType: "compute.googleapis.com/instance/disk/write_bytes_count", rate: true},
	},
	domain.MetricErrors: {
		{channel: domain.ChannelErrors, metricType: "logging.googleapis.com/log_entry_count", filter: errorLogFilter},
	},
}

type metricSource struct {
	project string
	lister  seriesLister
}

func (s *metricSource) Supports(metric domain.MetricType) bool {
	_, ok := gcpMetrics[metric]
	return ok
}

func (s *metricSource) Fetch(
	ctx context.Context,
	metric domain.MetricType,
	window domain.Window,
	step time.Duration,
) ([]domain.ChannelSeries, error) {
	var channels []domain.ChannelSeries
	for _, m := range gcpMetrics[metric] {
		series, err := s.lister.ListTimeSeries(ctx, s.request(m, window, step))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.metricType, err)
		}
		var period time.Duration
		if m.rate {
			period = step
		}
		channels = append(channels, domain.ChannelSeries{Name: m.channel, Series: toRawSeries(series, period)})
	}
	return channels, nil
}

func (s *metricSource) request(m gcpMetric, window domain.Window, step time.Duration) *monitoringpb.ListTimeSeriesRequest {
	filter := fmt.Sprintf("metric.type = %q", m.metricType)
	if m.filter != "" {
		filter += " AND " + m.filter
	}

	req := &monitoringpb.ListTimeSeriesRequest{
		Name:   "projects/" + s.project,
		Filter: filter,
		Interval: &monitoringpb.TimeInterval{
			StartTime: timestamppb.New(window.Start),
			EndTime:   timestamppb.New(window.End),
		},
		View: monitoringpb.ListTimeSeriesRequest_FULL,
	}
	if m.rate {
		req.Aggregation = &monitoringpb.Aggregation{
			AlignmentPeriod:  durationpb.New(step),
			PerSeriesAligner: monitoringpb.Aggregation_ALIGN_RATE,
		}
	}
	return req
}

// toRawSeries stamps each point with the start of its measurement interval.
// ALIGN_RATE output is a gauge whose point marks the end of the aligned
// period, so a non-zero period moves those points back to the period start.
func toRawSeries(series []*monitoringpb.TimeSeries, period time.Duration) []domain.RawSeries {
	out := make([]domain.RawSeries, 0, len(series))
	for i, ts := range series {
		id := ts.GetResource().GetLabels()["instance_id"]
		if id == "" {
			id = strconv.Itoa(i)
		}

		raw := domain.RawSeries{ID: id}
		for _, point := range ts.GetPoints() {
			value, ok := pointValue(point.GetValue())
			if !ok {
				continue
			}
			raw.Samples = append(raw.Samples, domain.MetricSample{
				Timestamp: pointTime(point.GetInterval(), period),
				Value:     value,
			})
		}
		out = append(out, raw)
	}
	return out
}

func pointTime(interval *monitoringpb.TimeInterval, period time.Duration) time.Time {
	end := interval.GetEndTime().AsTime()
	if period > 0 {
		return end.Add(-period)
	}
	if start := interval.GetStartTime(); start != nil && start.AsTime().Before(end) {
		return start.AsTime()
	}
	return end
}

func pointValue(v *monitoringpb.TypedValue) (float64, bool) {
	switch tv := v.GetValue().(type) {
	case *monitoringpb.TypedValue_DoubleValue:
		return tv.DoubleValue, true
	case *monitoringpb.TypedValue_Int64Value:
		return float64(tv.Int64Value), true
	default:
		return 0, false
	}
}
