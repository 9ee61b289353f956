package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
)

const (
	Name               = "aws"
	DefaultRegion      = "us-east-1"
	costExplorerRegion = "us-east-1"
)

type Config struct {
	AccountID    string `mapstructure:"account_id"`
	Region       string `mapstructure:"region"`
	Profile      string `mapstructure:"profile"`
	CostExplorer bool   `mapstructure:"cost_explorer"`
	// DetailedMonitoring marks instances publishing one-minute EC2 metrics.
	DetailedMonitoring bool `mapstructure:"detailed_monitoring"`
}

func LoadConfig(raw domain.ProviderConfig) (Config, error) {
	cfg := Config{Region: DefaultRegion, CostExplorer: true}
	if err := cost.DecodeConfig(Name, raw, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.AccountID == "" {
		return Config{}, domain.MissingField(Name, "account_id")
	}
	return cfg, nil
}

type costExplorerAPI interface {
	GetCostAndUsage(
		ctx context.Context,
		params *costexplorer.GetCostAndUsageInput,
		optFns ...func(*costexplorer.Options),
	) (*costexplorer.GetCostAndUsageOutput, error)
}

type clients struct {
	costs     costExplorerAPI
	metrics   cloudwatch.GetMetricDataAPIClient
	instances ec2.DescribeInstancesAPIClient
}

type clientFactory func(ctx context.Context, cfg Config) (*clients, error)

func newClients(ctx context.Context, cfg Config) (*clients, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return &clients{
		costs: costexplorer.NewFromConfig(awsCfg, func(o *costexplorer.Options) {
			o.Region = costExplorerRegion
		}),
		metrics:   cloudwatch.NewFromConfig(awsCfg),
		instances: ec2.NewFromConfig(awsCfg),
	}, nil
}

