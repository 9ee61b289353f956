package databricks

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/databricks/databricks-sdk-go"
	sqlapi "github.com/databricks/databricks-sdk-go/service/sql"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"

	_ "github.com/databricks/databricks-sql-go"
)

const (
	Name       = "databricks"
	driverName = "databricks"
)

type Config struct {
	Host     string `mapstructure:"host"`
	Token    string `mapstructure:"token"`
	HTTPPath string `mapstructure:"http_path"`
	Catalog  string `mapstructure:"catalog"`
	Schema   string `mapstructure:"schema"`
}

func LoadConfig(raw domain.ProviderConfig) (Config, error) {
	var cfg Config
	if err := cost.DecodeConfig(Name, raw, &cfg); err != nil {
		return Config{}, err
	}

	required := []struct{ field, value string }{
		{"host", cfg.Host},
		{"token", cfg.Token},
		{"http_path", cfg.HTTPPath},
	}
	for _, r := range required {
		if r.value == "" {
			return Config{}, domain.MissingField(Name, r.field)
		}
	}
	if !strings.HasPrefix(cfg.HTTPPath, "/") {
		return Config{}, &domain.ConfigurationError{
			Provider: Name,
			Field:    "http_path",
			Reason:   "must start with /",
		}
	}
	cfg.Host = strings.TrimSuffix(strings.TrimPrefix(cfg.Host, "https://"), "/")
	return cfg, nil
}

// Workspace is the host reported as the project of every cost line.
func (c Config) Workspace() string {
	host, _, _ := strings.Cut(c.Host, ":")
	return host
}

// DSN is the databricks-sql-go connection string for the SQL warehouse.
func (c Config) DSN() string {
	host := c.Host
	if !strings.Contains(host, ":") {
		host += ":443"
	}
	dsn := fmt.Sprintf("token:%s@%s%s", c.Token, host, c.HTTPPath)

	params := url.Values{}
	if c.Catalog != "" {
		params.Set("catalog", c.Catalog)
	}
	if c.Schema != "" {
		params.Set("schema", c.Schema)
	}
	if qp := params.Encode(); qp != "" {
		dsn = dsn + "?" + qp
	}
	return dsn
}

type warehouseLister interface {
	ListAll(ctx context.Context, request sqlapi.ListWarehousesRequest) ([]sqlapi.EndpointInfo, error)
}

func openDB(cfg Config) (*sql.DB, error) {
	db, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open databricks connection: %w", err)
	}
	return db, nil
}

func newWarehouseLister(cfg Config) (warehouseLister, error) {
	client, err := databricks.NewWorkspaceClient(&databricks.Config{
		Host:  "https://" + cfg.Host,
		Token: cfg.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace client: %w", err)
	}
	return client.Warehouses, nil
}
