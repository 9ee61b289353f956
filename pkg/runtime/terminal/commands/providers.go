package commands

import (
	"github.com/de-tools/cloud-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cloud-atlas/pkg/services/dashboard"
	"github.com/spf13/cobra"
)

func NewProvidersCmd(svc dashboard.Service, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List configured cloud providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return reporter.Providers(svc.ListProviders())
		},
	}
}
