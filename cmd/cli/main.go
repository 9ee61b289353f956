package main

import (
	"fmt"
	"os"

	"github.com/de-tools/cloud-atlas/pkg/runtime/terminal"
	"github.com/de-tools/cloud-atlas/pkg/services/config"
	"github.com/de-tools/cloud-atlas/pkg/services/dashboard"
	"github.com/de-tools/cloud-atlas/pkg/services/registry"
	"github.com/joho/godotenv"
)

// settingsEnv optionally names a settings file, since the CLI flags are
// parsed after the service is built.
const settingsEnv = "CLOUD_ATLAS_SETTINGS"

func main() {
	_ = godotenv.Load()

	settings, err := config.LoadSettings(config.NewViper(), os.Getenv(settingsEnv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	clouds, err := config.LoadClouds(settings.CloudConfigPath, os.LookupEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := terminal.NewCLI(terminal.Options{
		Service: dashboard.NewService(dashboard.Options{
			Registry: registry.NewDefaultRegistry(),
			Source:   clouds,
			Timeout:  settings.QueryTimeout,
		}),
		Output: os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
