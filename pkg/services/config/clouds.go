package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	key string
	env string
}

// envProvider lists the variables that configure one provider. The first
// binding is the primary one: a provider with no file section is configured
// only when its primary variable is set.
type envProvider struct {
	name     string
	bindings []envBinding
}

var envProviders = []envProvider{
	{name: "gcp", bindings: []envBinding{
		{"project_id", "GCP_PROJECT_ID"},
		{"credentials_path", "GOOGLE_APPLICATION_CREDENTIALS"},
		{"billing_dataset", "BILLING_DATASET"},
		{"billing_table", "BQ_BILLING_TABLE"},
	}},
	{name: "aws", bindings: []envBinding{
		{"account_id", "AWS_ACCOUNT_ID"},
		{"region", "AWS_REGION"},
		{"profile", "AWS_PROFILE"},
		{"cost_explorer", "AWS_COST_EXPLORER"},
		{"detailed_monitoring", "AWS_DETAILED_MONITORING"},
	}},
	{name: "azure", bindings: []envBinding{
		{"subscription_id", "AZURE_SUBSCRIPTION_ID"},
		{"tenant_id", "AZURE_TENANT_ID"},
		{"use_cli_auth", "AZURE_USE_CLI"},
	}},
	{name: "hetzner", bindings: []envBinding{
		{"token", "HCLOUD_TOKEN"},
	}},
	{name: "databricks", bindings: []envBinding{
		{"host", "DATABRICKS_HOST"},
		{"token", "DATABRICKS_TOKEN"},
		{"http_path", "DATABRICKS_HTTP_PATH"},
	}},
	{name: "snowflake", bindings: []envBinding{
		{"account", "SNOWFLAKE_ACCOUNT"},
		{"user", "SNOWFLAKE_USER"},
		{"password", "SNOWFLAKE_PASSWORD"},
		{"warehouse", "SNOWFLAKE_WAREHOUSE"},
		{"role", "SNOWFLAKE_ROLE"},
		{"credit_price", "SNOWFLAKE_CREDIT_PRICE"},
	}},
}

// Clouds is the ordered set of configured providers.
type Clouds struct {
	order   []string
	configs map[string]domain.ProviderConfig
}

// LoadClouds reads provider sections from the INI file at path and overlays
// environment variables read through lookup. A missing file is not an error;
// a malformed one is.
func LoadClouds(path string, lookup LookupFunc) (*Clouds, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	c := &Clouds{configs: make(map[string]domain.ProviderConfig)}
	if err := c.loadFile(path); err != nil {
		return nil, err
	}
	c.overlayEnv(lookup)
	return c, nil
}

func (c *Clouds) loadFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load cloud config %s: %w", path, err)
	}

	for _, section := range file.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		name := normalize(section.Name())
		if name == "" || name == strings.ToLower(ini.DefaultSection) {
			continue
		}
		c.add(name, section.KeysHash())
	}
	return nil
}

func (c *Clouds) overlayEnv(lookup LookupFunc) {
	for _, p := range envProviders {
		values := make(map[string]string)
		for _, b := range p.bindings {
			if v, ok := lookup(b.env); ok && strings.TrimSpace(v) != "" {
				values[b.key] = strings.TrimSpace(v)
			}
		}

		_, inFile := c.configs[p.name]
		_, hasPrimary := values[p.bindings[0].key]
		if !inFile && !hasPrimary {
			continue
		}
		c.add(p.name, values)
	}
}

func (c *Clouds) add(name string, values map[string]string) {
	cfg, ok := c.configs[name]
	if !ok {
		cfg = make(domain.ProviderConfig)
		c.configs[name] = cfg
		c.order = append(c.order, name)
	}
	for k, v := range values {
		cfg[strings.ToLower(k)] = v
	}
}

// Names returns the configured provider identifiers in configuration order.
func (c *Clouds) Names() []string {
	return slices.Clone(c.order)
}

// Get returns a copy of the configuration of provider name.
func (c *Clouds) Get(name string) (domain.ProviderConfig, bool) {
	cfg, ok := c.configs[normalize(name)]
	if !ok {
		return nil, false
	}
	return cfg.Clone(), true
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
