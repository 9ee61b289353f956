package main

import (
	"fmt"
	"os"

	"github.com/de-tools/cloud-atlas/pkg/metrics"
	"github.com/de-tools/cloud-atlas/pkg/server"
	"github.com/de-tools/cloud-atlas/pkg/services/config"
	"github.com/de-tools/cloud-atlas/pkg/services/dashboard"
	"github.com/de-tools/cloud-atlas/pkg/services/registry"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Cloud Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to an optional settings file (yaml, json or toml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	settings, err := config.LoadSettings(config.NewViper(), cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(settings.Level())

	clouds, err := config.LoadClouds(settings.CloudConfigPath, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("failed to load cloud configuration: %w", err)
	}

	reg := registry.NewDefaultRegistry()
	m := metrics.New()

	logger.Info().Msgf("Cloud configuration loaded from `%s` and the environment.", settings.CloudConfigPath)
	for _, name := range clouds.Names() {
		logger.Info().
			Str("provider", name).
			Bool("registered", reg.IsRegistered(name)).
			Msg("provider configured")
	}

	svc := dashboard.NewService(dashboard.Options{
		Registry: reg,
		Source:   clouds,
		Timeout:  settings.QueryTimeout,
		Observer: m,
	})

	api := server.NewWebAPI(server.Config{
		Addr: settings.Addr(),
		Dependencies: server.Dependencies{
			Service: svc,
			Metrics: m,
			Logger:  logger,
		},
	})
	return api.Start()
}
