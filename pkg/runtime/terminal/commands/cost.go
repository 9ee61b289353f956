package commands

import (
	"fmt"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cloud-atlas/pkg/services/dashboard"
	"github.com/spf13/cobra"
)

type CostCmd struct {
	days     int
	svc      dashboard.Service
	reporter *export.Reporter
}

func NewCostCmd(svc dashboard.Service, reporter *export.Reporter) *cobra.Command {
	cc := &CostCmd{svc: svc, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "costs",
		Short: "Show provider costs",
	}

	mtd := &cobra.Command{
		Use:   "mtd <provider>",
		Short: "Month-to-date cost per project and service",
		Args:  cobra.ExactArgs(1),
		RunE:  cc.runMTD,
	}

	daily := &cobra.Command{
		Use:   "daily <provider>",
		Short: "Daily cost series ending today",
		Args:  cobra.ExactArgs(1),
		RunE:  cc.runDaily,
	}
	daily.Flags().IntVar(&cc.days, "days", dashboard.DefaultDays, "Number of days to look back")

	cmd.AddCommand(mtd, daily)
	return cmd
}

func (cc *CostCmd) runMTD(cmd *cobra.Command, args []string) error {
	provider := args[0]
	res, err := cc.svc.MTDCosts(cmd.Context(), provider)
	if err != nil {
		return fmt.Errorf("failed to query month-to-date costs: %w", err)
	}
	return render(cc.reporter, provider, res, func(items []domain.CostLineItem) error {
		return cc.reporter.CostLines(provider, items)
	})
}

func (cc *CostCmd) runDaily(cmd *cobra.Command, args []string) error {
	provider := args[0]
	res, err := cc.svc.DailyCosts(cmd.Context(), provider, cc.days)
	if err != nil {
		return fmt.Errorf("failed to query daily costs: %w", err)
	}
	return render(cc.reporter, provider, res, func(days []domain.DailyCost) error {
		return cc.reporter.DailyCosts(provider, days)
	})
}
