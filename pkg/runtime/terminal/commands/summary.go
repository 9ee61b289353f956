package commands

import (
	"github.com/de-tools/cloud-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cloud-atlas/pkg/services/dashboard"
	"github.com/spf13/cobra"
)

func NewSummaryCmd(svc dashboard.Service, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Month-to-date totals across all configured providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return reporter.Summary(svc.CostSummary(cmd.Context()))
		},
	}
}
