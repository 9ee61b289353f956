package adapters

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDomainTimelineToAPI_JSONShape(t *testing.T) {
	t0 := time.Date(2025, 7, 3, 12, 0, 0, 0, time.UTC)
	timeline := domain.Timeline{
		Timestamps: []time.Time{t0, t0.Add(time.Minute)},
		Channels: []domain.TimelineChannel{
			{Name: domain.ChannelMbpsIn, Values: []float64{0.8, 1.6}},
			{Name: domain.ChannelMbpsOut, Values: []float64{0.4, 0}},
		},
	}

	body, err := json.Marshal(MapDomainTimelineToAPI(timeline))

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"ts": ["2025-07-03T12:00:00Z", "2025-07-03T12:01:00Z"],
		"mbps_in": [0.8, 1.6],
		"mbps_out": [0.4, 0]
	}`, string(body))
}

func TestMapDomainTimelineToAPI_Empty(t *testing.T) {
	timeline := domain.Timeline{Channels: []domain.TimelineChannel{{Name: domain.ChannelCPUPercent}}}

	body, err := json.Marshal(MapDomainTimelineToAPI(timeline))

	require.NoError(t, err)
	assert.Equal(t, `{"ts":[],"cpu_percent":[]}`, string(body))
}

func TestMapDomainLiveMetricsToAPI(t *testing.T) {
	errors5m := int64(3)
	live := domain.LiveMetrics{
		UpdatedAt:          time.Date(2025, 7, 3, 12, 0, 0, 0, time.UTC),
		CPUPercent:         42.5,
		InstancesMonitored: 2,
		Traffic:            &domain.TrafficTile{MbpsIn: 1.25, MbpsOut: 0.5},
		Errors5m:           &errors5m,
	}

	body, err := json.Marshal(MapDomainLiveMetricsToAPI(live))

	require.NoError(t, err)
	assert.JSONEq(t, `{
		"updated_at": "2025-07-03T12:00:00Z",
		"cpu_percent": 42.5,
		"instances_monitored": 2,
		"traffic": {"mbps_in": 1.25, "mbps_out": 0.5},
		"errors_5m": 3
	}`, string(body))
}

func TestMapDomainReportsToAPI(t *testing.T) {
	reports := []domain.ProviderReport{
		{Provider: "gcp", MTDCost: 0, Status: domain.StatusActive},
		{Provider: "aws", Status: domain.StatusError, Error: "aws: mtd costs failed: throttled"},
	}

	body, err := json.Marshal(MapDomainReportsToAPI(reports))

	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"provider": "gcp", "mtd_cost": 0, "status": "active"},
		{"provider": "aws", "status": "error", "error": "aws: mtd costs failed: throttled"}
	]`, string(body))
}

func TestMapResultErrorToAPI(t *testing.T) {
	r := domain.Failed[domain.LiveMetrics](&domain.UnsupportedOperationError{Provider: "azure", Operation: "live metrics"})

	assert.Equal(t, "azure: live metrics not yet implemented", MapResultErrorToAPI(r).Error)
	assert.Equal(t, "unsupported_operation", MapResultErrorToAPI(r).Kind)
	assert.Equal(t, "error", MapResultErrorToAPI(r).Status)
}
