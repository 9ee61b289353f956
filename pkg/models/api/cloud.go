package api

import (
	"bytes"
	"encoding/json"
	"time"
)

type Health struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

type Provider struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Configured  bool   `json:"configured"`
}

type CostLineItem struct {
	Project  string  `json:"project"`
	Service  string  `json:"service"`
	Cost     float64 `json:"cost"`
	Currency string  `json:"currency"`
}

type DailyCost struct {
	Date string  `json:"date"`
	Cost float64 `json:"cost"`
}

type TrafficTile struct {
	MbpsIn  float64 `json:"mbps_in"`
	MbpsOut float64 `json:"mbps_out"`
}

type DiskTile struct {
	ReadMBs  float64 `json:"read_mbs"`
	WriteMBs float64 `json:"write_mbs"`
}

type LiveMetrics struct {
	UpdatedAt          time.Time    `json:"updated_at"`
	CPUPercent         float64      `json:"cpu_percent"`
	InstancesMonitored int          `json:"instances_monitored"`
	Traffic            *TrafficTile `json:"traffic,omitempty"`
	Disk               *DiskTile    `json:"disk,omitempty"`
	Errors5m           *int64       `json:"errors_5m,omitempty"`
}

type TimelineChannel struct {
	Name   string
	Values []float64
}

// Timeline is rendered as {"ts": [...], "<channel>": [...], ...} with the
// channels in display order.
type Timeline struct {
	Timestamps []time.Time
	Channels   []TimelineChannel
}

func (t Timeline) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"ts":`)
	if err := writeJSON(&buf, nonNil(t.Timestamps)); err != nil {
		return nil, err
	}
	for _, ch := range t.Channels {
		buf.WriteByte(',')
		if err := writeJSON(&buf, ch.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, nonNil(ch.Values)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ProviderReport is one entry of GET /api/costs/summary.
type ProviderReport struct {
	Provider string   `json:"provider"`
	MTDCost  *float64 `json:"mtd_cost,omitempty"`
	Status   string   `json:"status"`
	Error    string   `json:"error,omitempty"`
}

// ErrorResponse is the body of every failed request. Soft provider failures
// are served with status 200 and carry Status and Kind.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
	Kind   string `json:"kind,omitempty"`
}
