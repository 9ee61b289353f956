package adapters

import (
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/api"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

func MapDomainProvidersToAPI(providers []domain.ProviderInfo) []api.Provider {
	out := make([]api.Provider, 0, len(providers))
	for _, p := range providers {
		out = append(out, api.Provider{Name: p.Name, DisplayName: p.DisplayName, Configured: p.Configured})
	}
	return out
}

func MapDomainCostLineItemsToAPI(items []domain.CostLineItem) []api.CostLineItem {
	out := make([]api.CostLineItem, 0, len(items))
	for _, item := range items {
		out = append(out, api.CostLineItem{
			Project:  item.Project,
			Service:  item.Service,
			Cost:     item.Cost,
			Currency: item.Currency,
		})
	}
	return out
}

func MapDomainDailyCostsToAPI(days []domain.DailyCost) []api.DailyCost {
	out := make([]api.DailyCost, 0, len(days))
	for _, d := range days {
		out = append(out, api.DailyCost{Date: d.Date, Cost: d.Cost})
	}
	return out
}

func MapDomainLiveMetricsToAPI(live domain.LiveMetrics) api.LiveMetrics {
	out := api.LiveMetrics{
		UpdatedAt:          live.UpdatedAt.UTC(),
		CPUPercent:         live.CPUPercent,
		InstancesMonitored: live.InstancesMonitored,
		Errors5m:           live.Errors5m,
	}
	if live.Traffic != nil {
		out.Traffic = &api.TrafficTile{MbpsIn: live.Traffic.MbpsIn, MbpsOut: live.Traffic.MbpsOut}
	}
	if live.Disk != nil {
		out.Disk = &api.DiskTile{ReadMBs: live.Disk.ReadMBs, WriteMBs: live.Disk.WriteMBs}
	}
	return out
}

func MapDomainTimelineToAPI(t domain.Timeline) api.Timeline {
	out := api.Timeline{Timestamps: make([]time.Time, 0, len(t.Timestamps))}
	for _, ts := range t.Timestamps {
		out.Timestamps = append(out.Timestamps, ts.UTC())
	}
	for _, ch := range t.Channels {
		out.Channels = append(out.Channels, api.TimelineChannel{Name: ch.Name, Values: ch.Values})
	}
	return out
}

func MapDomainReportsToAPI(reports []domain.ProviderReport) []api.ProviderReport {
	out := make([]api.ProviderReport, 0, len(reports))
	for _, r := range reports {
		report := api.ProviderReport{Provider: r.Provider, Status: string(r.Status), Error: r.Error}
		if r.Status == domain.StatusActive {
			cost := r.MTDCost
			report.MTDCost = &cost
		}
		out = append(out, report)
	}
	return out
}

// MapResultErrorToAPI is the body of a soft provider failure.
func MapResultErrorToAPI[T any](r domain.Result[T]) api.ErrorResponse {
	return api.ErrorResponse{Error: r.Message, Status: string(r.Status), Kind: string(r.Kind)}
}
