package commands

import (
	"fmt"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cloud-atlas/pkg/services/dashboard"
	"github.com/spf13/cobra"
)

type MetricsCmd struct {
	metric   string
	minutes  int
	svc      dashboard.Service
	reporter *export.Reporter
}

func NewMetricsCmd(svc dashboard.Service, reporter *export.Reporter) *cobra.Command {
	mc := &MetricsCmd{svc: svc, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show operational metrics",
	}

	live := &cobra.Command{
		Use:   "live <provider>",
		Short: "Snapshot of the last five minutes",
		Args:  cobra.ExactArgs(1),
		RunE:  mc.runLive,
	}

	timeseries := &cobra.Command{
		Use:   "timeseries <provider>",
		Short: "Aligned timeseries for one metric",
		Args:  cobra.ExactArgs(1),
		RunE:  mc.runTimeseries,
	}
	timeseries.Flags().StringVar(&mc.metric, "type", string(domain.MetricCPU), "Metric type (cpu, traffic, disk, errors)")
	timeseries.Flags().IntVar(&mc.minutes, "minutes", dashboard.DefaultMinutes, "Number of minutes to look back")

	cmd.AddCommand(live, timeseries)
	return cmd
}

func (mc *MetricsCmd) runLive(cmd *cobra.Command, args []string) error {
	provider := args[0]
	res, err := mc.svc.LiveMetrics(cmd.Context(), provider)
	if err != nil {
		return fmt.Errorf("failed to query live metrics: %w", err)
	}
	return render(mc.reporter, provider, res, func(live domain.LiveMetrics) error {
		return mc.reporter.LiveMetrics(provider, live)
	})
}

func (mc *MetricsCmd) runTimeseries(cmd *cobra.Command, args []string) error {
	provider := args[0]
	res, err := mc.svc.Timeseries(cmd.Context(), provider, mc.metric, mc.minutes)
	if err != nil {
		return fmt.Errorf("failed to query timeseries: %w", err)
	}
	return render(mc.reporter, provider, res, func(timeline domain.Timeline) error {
		return mc.reporter.Timeline(provider, domain.MetricType(mc.metric), timeline)
	})
}
