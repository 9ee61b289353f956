package hetzner

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

const (
	Name           = "hetzner"
	DefaultProject = "hetzner"
	appName        = "cloud-atlas"
	appVersion     = "1.0.0"
)

var (
	ErrUnauthorized = errors.New("hetzner: invalid or expired token")
	ErrRateLimited  = errors.New("hetzner: rate limit exceeded")
)

type Config struct {
	Token         string `mapstructure:"token"`
	Project       string `mapstructure:"project"`
	LabelSelector string `mapstructure:"label_selector"`
}

func LoadConfig(raw domain.ProviderConfig) (Config, error) {
	cfg := Config{Project: DefaultProject}
	if err := cost.DecodeConfig(Name, raw, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Token == "" {
		return Config{}, domain.MissingField(Name, "token")
	}
	return cfg, nil
}

type serverAPI interface {
	AllWithOpts(ctx context.Context, opts hcloud.ServerListOpts) ([]*hcloud.Server, error)
	GetMetrics(
		ctx context.Context,
		server *hcloud.Server,
		opts hcloud.ServerGetMetricsOpts,
	) (*hcloud.ServerMetrics, *hcloud.Response, error)
}

func newServerAPI(cfg Config) serverAPI {
	client := hcloud.NewClient(
		hcloud.WithToken(cfg.Token),
		hcloud.WithApplication(appName, appVersion),
	)
	return &client.Server
}

func mapError(op string, err error) error {
	switch {
	case hcloud.IsError(err, hcloud.ErrorCodeUnauthorized):
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	case hcloud.IsError(err, hcloud.ErrorCodeRateLimitExceeded):
		return fmt.Errorf("%s: %w", op, ErrRateLimited)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
