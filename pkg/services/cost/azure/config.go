package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
)

const Name = "azure"

type Config struct {
	SubscriptionID string `mapstructure:"subscription_id"`
	TenantID       string `mapstructure:"tenant_id"`
	UseCLIAuth     bool   `mapstructure:"use_cli_auth"`
}

func LoadConfig(raw domain.ProviderConfig) (Config, error) {
	cfg := Config{UseCLIAuth: true}
	if err := cost.DecodeConfig(Name, raw, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.SubscriptionID == "" {
		return Config{}, domain.MissingField(Name, "subscription_id")
	}
	return cfg, nil
}

func (c Config) Scope() string {
	return fmt.Sprintf("/subscriptions/%s", c.SubscriptionID)
}

type usageQuerier interface {
	Usage(
		ctx context.Context,
		scope string,
		parameters armcostmanagement.QueryDefinition,
		options *armcostmanagement.QueryClientUsageOptions,
	) (armcostmanagement.QueryClientUsageResponse, error)
}

type querierFactory func(ctx context.Context, cfg Config) (usageQuerier, error)

func newQuerier(_ context.Context, cfg Config) (usageQuerier, error) {
	cred, err := credentials(cfg)
	if err != nil {
		return nil, err
	}

	factory, err := armcostmanagement.NewClientFactory(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client: %w", err)
	}
	return factory.NewQueryClient(), nil
}

func credentials(cfg Config) (azcore.TokenCredential, error) {
	if cfg.UseCLIAuth {
		cred, err := azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{TenantID: cfg.TenantID})
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure CLI credential: %w", err)
		}
		return cred, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{TenantID: cfg.TenantID})
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}
	return cred, nil
}
