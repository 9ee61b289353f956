package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/cloud-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/cloud-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cloud-atlas/pkg/services/dashboard"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	service  dashboard.Service
	reporter *export.Reporter
	output   string
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Service dashboard.Service
	Output  io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		service:  opts.Service,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, mainly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cloud-atlas",
		Short:         "Multi-cloud cost and metrics dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			format, err := export.ParseFormat(cli.output)
			if err != nil {
				return err
			}
			cli.reporter.SetFormat(format)
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVarP(&cli.output, "output", "o", string(export.FormatText), "Output format (text or json)")

	cmd.AddCommand(commands.NewProvidersCmd(cli.service, cli.reporter))
	cmd.AddCommand(commands.NewCostCmd(cli.service, cli.reporter))
	cmd.AddCommand(commands.NewMetricsCmd(cli.service, cli.reporter))
	cmd.AddCommand(commands.NewSummaryCmd(cli.service, cli.reporter))

	return cmd
}
