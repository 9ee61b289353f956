package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

const (
	ec2Namespace      = "AWS/EC2"
	maxQueriesPerCall = 500
	minPeriod         = 60 * time.Second
	// basicPeriod is how often EC2 publishes without detailed monitoring.
	// Each datapoint then sums five minutes regardless of the requested period.
	basicPeriod = 5 * time.Minute
)

// ec2Metric maps a CloudWatch EC2 metric onto an output channel. Sum
// statistics are divided by the span a datapoint covers to yield per-second rates.
type ec2Metric struct {
	name    string
	stat    cwtypes.Statistic
	channel string
	perSec  bool
	scale   float64
}

var ec2Metrics = map[domain.MetricType][]ec2Metric{
	domain.MetricCPU: {
		{name: "CPUUtilization", stat: cwtypes.StatisticAverage, channel: domain.ChannelCPUPercent, scale: 0.01},
	},
	domain.MetricTraffic: {
		{name: "NetworkIn", stat: cwtypes.StatisticSum, channel: domain.ChannelMbpsIn, perSec: true, scale: 1},
		{name: "NetworkOut", stat: cwtypes.StatisticSum, channel: domain.ChannelMbpsOut, perSec: true, scale: 1},
	},
	domain.MetricDisk: {
		{name: "EBSReadBytes", stat: cwtypes.StatisticSum, channel: domain.ChannelReadMBs, perSec: true, scale: 1},
		{name: "EBSWriteBytes", stat: cwtypes.StatisticSum, channel: domain.ChannelWriteMBs, perSec: true, scale: 1},
	},
}

type metricSource struct {
	client   *clients
	detailed bool
}

func (s *metricSource) Supports(metric domain.MetricType) bool {
	_, ok := ec2Metrics[metric]
	return ok
}

type queryRef struct {
	metric   ec2Metric
	instance string
}

func (s *metricSource) Fetch(
	ctx context.Context,
	metric domain.MetricType,
	window domain.Window,
	step time.Duration,
) ([]domain.ChannelSeries, error) {
	instances, err := s.runningInstances(ctx)
	if err != nil {
		return nil, err
	}

	period := max(step, minPeriod)
	span := period
	if !s.detailed {
		span = max(period, basicPeriod)
	}
	refs := make(map[string]queryRef)
	var queries []cwtypes.MetricDataQuery
	for _, m := range ec2Metrics[metric] {
		for _, instance := range instances {
			id := fmt.Sprintf("q%d", len(queries))
			refs[id] = queryRef{metric: m, instance: instance}
			queries = append(queries, cwtypes.MetricDataQuery{
				Id: aws.String(id),
				MetricStat: &cwtypes.MetricStat{
					Metric: &cwtypes.Metric{
						Namespace:  aws.String(ec2Namespace),
						MetricName: aws.String(m.name),
						Dimensions: []cwtypes.Dimension{
							{Name: aws.String("InstanceId"), Value: aws.String(instance)},
						},
					},
					Period: aws.Int32(int32(period.Seconds())),
					Stat:   aws.String(string(m.stat)),
				},
				ReturnData: aws.Bool(true),
			})
		}
	}

	samples := make(map[string][]domain.MetricSample, len(queries))
	for start := 0; start < len(queries); start += maxQueriesPerCall {
		end := min(start+maxQueriesPerCall, len(queries))
		paginator := cloudwatch.NewGetMetricDataPaginator(s.client.metrics, &cloudwatch.GetMetricDataInput{
			StartTime:         aws.Time(window.Start),
			EndTime:           aws.Time(window.End),
			MetricDataQueries: queries[start:end],
			ScanBy:            cwtypes.ScanByTimestampAscending,
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to get metric data: %w", err)
			}
			for _, result := range page.MetricDataResults {
				id := aws.ToString(result.Id)
				ref, ok := refs[id]
				if !ok {
					continue
				}
				for i, ts := range result.Timestamps {
					if i >= len(result.Values) {
						break
					}
					samples[id] = append(samples[id], domain.MetricSample{
						Timestamp: ts,
						Value:     ref.metric.convert(result.Values[i], span),
					})
				}
			}
		}
	}

	return groupChannels(queries, refs, samples), nil
}

func (m ec2Metric) convert(v float64, span time.Duration) float64 {
	if m.perSec {
		v /= span.Seconds()
	}
	return v * m.scale
}

func groupChannels(
	queries []cwtypes.MetricDataQuery,
	refs map[string]queryRef,
	samples map[string][]domain.MetricSample,
) []domain.ChannelSeries {
	var channels []domain.ChannelSeries
	index := make(map[string]int)
	for _, q := range queries {
		id := aws.ToString(q.Id)
		ref := refs[id]
		i, ok := index[ref.metric.channel]
		if !ok {
			i = len(channels)
			index[ref.metric.channel] = i
			channels = append(channels, domain.ChannelSeries{Name: ref.metric.channel})
		}
		channels[i].Series = append(channels[i].Series, domain.RawSeries{
			ID:      ref.instance,
			Samples: samples[id],
		})
	}
	return channels
}

func (s *metricSource) runningInstances(ctx context.Context) ([]string, error) {
	paginator := ec2.NewDescribeInstancesPaginator(s.client.instances, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("instance-state-name"), Values: []string{"running"}},
		},
	})

	var ids []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				if id := aws.ToString(instance.InstanceId); id != "" {
					ids = append(ids, id)
				}
			}
		}
	}
	return ids, nil
}
