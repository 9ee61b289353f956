package domain

import "time"

type TrafficTile struct {
	MbpsIn  float64
	MbpsOut float64
}

type DiskTile struct {
	ReadMBs  float64
	WriteMBs float64
}

// LiveMetrics is the snapshot of the trailing five minutes. Optional tiles
// are nil when the vendor has no source for them.
type LiveMetrics struct {
	UpdatedAt          time.Time
	CPUPercent         float64
	InstancesMonitored int
	Traffic            *TrafficTile
	Disk               *DiskTile
	Errors5m           *int64
}
