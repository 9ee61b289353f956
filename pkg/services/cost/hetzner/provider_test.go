package hetzner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/clock"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 7, 3, 12, 0, 0, 0, time.UTC)

type fakeServers struct {
	mu       sync.Mutex
	servers  []*hcloud.Server
	listErr  error
	metrics  map[int64]*hcloud.ServerMetrics
	opts     []hcloud.ServerGetMetricsOpts
	selector string
}

func (f *fakeServers) AllWithOpts(_ context.Context, opts hcloud.ServerListOpts) ([]*hcloud.Server, error) {
	f.selector = opts.LabelSelector
	return f.servers, f.listErr
}

func (f *fakeServers) GetMetrics(
	_ context.Context,
	server *hcloud.Server,
	opts hcloud.ServerGetMetricsOpts,
) (*hcloud.ServerMetrics, *hcloud.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = append(f.opts, opts)

	m, ok := f.metrics[server.ID]
	if !ok {
		return nil, nil, fmt.Errorf("server %d not found", server.ID)
	}
	return m, nil, nil
}

func serverType(name string, cores int, hourly, monthly string) *hcloud.ServerType {
	return &hcloud.ServerType{
		Name:  name,
		Cores: cores,
		Pricings: []hcloud.ServerTypeLocationPricing{
			{
				Location: &hcloud.Location{Name: "nbg1"},
				Hourly:   hcloud.Price{Currency: "EUR", Net: "9.9999", Gross: "9.9999"},
				Monthly:  hcloud.Price{Currency: "EUR", Net: "999", Gross: "999"},
			},
			{
				Location: &hcloud.Location{Name: "fsn1"},
				Hourly:   hcloud.Price{Currency: "EUR", Net: hourly, Gross: hourly},
				Monthly:  hcloud.Price{Currency: "EUR", Net: monthly, Gross: monthly},
			},
		},
	}
}

func newTestProvider(t *testing.T, api *fakeServers) *Provider {
	t.Helper()
	p, err := NewProvider(domain.ProviderConfig{"token": "secret", "label_selector": "env=prod"},
		WithClock(clock.FixedClock{T: testNow}))
	require.NoError(t, err)
	p.servers = api
	return p
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(domain.ProviderConfig{"token": "abc"})
	require.NoError(t, err)
	assert.Equal(t, Config{Token: "abc", Project: DefaultProject}, cfg)

	_, err = LoadConfig(domain.ProviderConfig{})
	assert.EqualError(t, err, `hetzner: invalid configuration for "token": value is required`)
}

func TestMTDCosts(t *testing.T) {
	api := &fakeServers{servers: []*hcloud.Server{
		{
			ID:         1,
			Created:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Location:   &hcloud.Location{Name: "fsn1"},
			ServerType: serverType("cx22", 2, "0.0060", "3.79"),
		},
		{
			ID:         2,
			Created:    time.Date(2025, 7, 3, 2, 0, 0, 0, time.UTC),
			Location:   &hcloud.Location{Name: "fsn1"},
			ServerType: serverType("cx22", 2, "0.0060", "3.79"),
		},
		{
			ID:         3,
			Created:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Location:   &hcloud.Location{Name: "fsn1"},
			ServerType: serverType("ccx63", 48, "0.5", "300"),
		},
		{ID: 4, Location: &hcloud.Location{Name: "ash"}, ServerType: serverType("cpx11", 2, "1", "5")},
	}}
	p := newTestProvider(t, api)

	result := p.MTDCosts(context.Background())

	require.True(t, result.OK(), result.Message)
	// 60h: ccx63 0.5*60 = 30; cx22 0.006*60 + 0.006*10 = 0.42
	assert.Equal(t, []domain.CostLineItem{
		{Project: DefaultProject, Service: "ccx63", Cost: 30, Currency: "EUR"},
		{Project: DefaultProject, Service: "cx22", Cost: 0.42, Currency: "EUR"},
	}, result.Value)
	assert.Equal(t, "env=prod", api.selector)
}

func TestMTDCosts_CappedAtMonthlyPrice(t *testing.T) {
	api := &fakeServers{servers: []*hcloud.Server{{
		ID:         1,
		Created:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Location:   &hcloud.Location{Name: "fsn1"},
		ServerType: serverType("cx22", 2, "1", "10"),
	}}}
	p := newTestProvider(t, api)

	result := p.MTDCosts(context.Background())

	require.True(t, result.OK())
	assert.Equal(t, 10.0, result.Value[0].Cost)
}

func TestMTDCosts_Unauthorized(t *testing.T) {
	api := &fakeServers{listErr: hcloud.Error{Code: hcloud.ErrorCodeUnauthorized, Message: "unable to authenticate"}}
	p := newTestProvider(t, api)

	result := p.MTDCosts(context.Background())

	assert.Equal(t, domain.StatusError, result.Status)
	assert.Contains(t, result.Message, ErrUnauthorized.Error())
}

func TestDailyCosts(t *testing.T) {
	api := &fakeServers{servers: []*hcloud.Server{{
		ID:         1,
		Created:    time.Date(2025, 7, 2, 12, 0, 0, 0, time.UTC),
		Location:   &hcloud.Location{Name: "fsn1"},
		ServerType: serverType("cx22", 2, "0.5", "300"),
	}}}
	p := newTestProvider(t, api)

	result := p.DailyCosts(context.Background(), 2)

	require.True(t, result.OK())
	assert.Equal(t, []domain.DailyCost{
		{Date: "2025-07-01", Cost: 0},
		{Date: "2025-07-02", Cost: 6},
		{Date: "2025-07-03", Cost: 6},
	}, result.Value)
}

func TestTimeseries_CPU(t *testing.T) {
	ts := func(offset time.Duration) float64 { return float64(testNow.Add(offset).Unix()) }
	api := &fakeServers{
		servers: []*hcloud.Server{
			{ID: 7, ServerType: &hcloud.ServerType{Cores: 2}},
		},
		metrics: map[int64]*hcloud.ServerMetrics{
			7: {TimeSeries: map[string][]hcloud.ServerMetricsValue{
				"cpu": {
					{Timestamp: ts(-90 * time.Second), Value: "50"},
					{Timestamp: ts(-30 * time.Second), Value: "150"},
					{Timestamp: ts(-20 * time.Second), Value: "NaN?"},
				},
			}},
		},
	}
	p := newTestProvider(t, api)

	result := p.Timeseries(context.Background(), domain.MetricCPU, 2)

	require.True(t, result.OK())
	assert.Equal(t, []time.Time{testNow.Add(-time.Minute), testNow}, result.Value.Timestamps)
	values, _ := result.Value.Channel(domain.ChannelCPUPercent)
	assert.Equal(t, []float64{25, 75}, values)
	require.Len(t, api.opts, 1)
	assert.Equal(t, 60, api.opts[0].Step)
	assert.Equal(t, []hcloud.ServerMetricType{hcloud.ServerMetricCPU}, api.opts[0].Types)
}

func TestLiveMetrics(t *testing.T) {
	ts := float64(testNow.Add(-2 * time.Minute).Unix())
	api := &fakeServers{
		servers: []*hcloud.Server{
			{ID: 1, ServerType: &hcloud.ServerType{Cores: 1}},
			{ID: 2, ServerType: &hcloud.ServerType{Cores: 1}},
		},
		metrics: map[int64]*hcloud.ServerMetrics{
			1: {TimeSeries: map[string][]hcloud.ServerMetricsValue{
				"cpu":                    {{Timestamp: ts, Value: "20"}},
				"network.0.bandwidth.in": {{Timestamp: ts, Value: "125000"}},
				"disk.0.bandwidth.write": {{Timestamp: ts, Value: "3000000"}},
			}},
			2: {TimeSeries: map[string][]hcloud.ServerMetricsValue{
				"cpu":                     {{Timestamp: ts, Value: "40"}},
				"network.0.bandwidth.in":  {{Timestamp: ts, Value: "125000"}},
				"network.0.bandwidth.out": {{Timestamp: ts, Value: "62500"}},
			}},
		},
	}
	p := newTestProvider(t, api)

	result := p.LiveMetrics(context.Background())

	require.True(t, result.OK())
	live := result.Value
	assert.Equal(t, 30.0, live.CPUPercent)
	assert.Equal(t, 2, live.InstancesMonitored)
	assert.Equal(t, &domain.TrafficTile{MbpsIn: 2, MbpsOut: 0.5}, live.Traffic)
	assert.Equal(t, &domain.DiskTile{ReadMBs: 0, WriteMBs: 3}, live.Disk)
	assert.Nil(t, live.Errors5m)
}

func TestLiveMetrics_ListFailure(t *testing.T) {
	p := newTestProvider(t, &fakeServers{listErr: errors.New("connection reset")})

	result := p.LiveMetrics(context.Background())

	assert.Equal(t, domain.ErrorKindTransient, result.Kind)
}
