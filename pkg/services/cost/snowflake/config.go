package snowflake

import (
	"database/sql"
	"fmt"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	sf "github.com/snowflakedb/gosnowflake"
)

const (
	Name               = "snowflake"
	DefaultCreditPrice = 3.0
	usageDatabase      = "SNOWFLAKE"
)

type Config struct {
	Account     string  `mapstructure:"account"`
	User        string  `mapstructure:"user"`
	Password    string  `mapstructure:"password"`
	Warehouse   string  `mapstructure:"warehouse"`
	Role        string  `mapstructure:"role"`
	CreditPrice float64 `mapstructure:"credit_price"`
}

func LoadConfig(raw domain.ProviderConfig) (Config, error) {
	cfg := Config{CreditPrice: DefaultCreditPrice}
	if err := cost.DecodeConfig(Name, raw, &cfg); err != nil {
		return Config{}, err
	}

	required := []struct{ field, value string }{
		{"account", cfg.Account},
		{"user", cfg.User},
		{"password", cfg.Password},
	}
	for _, r := range required {
		if r.value == "" {
			return Config{}, domain.MissingField(Name, r.field)
		}
	}
	if cfg.CreditPrice <= 0 {
		return Config{}, &domain.ConfigurationError{Provider: Name, Field: "credit_price", Reason: "must be positive"}
	}
	return cfg, nil
}

// DSN builds the gosnowflake connection string. Usage views live in the
// shared SNOWFLAKE database.
func (c Config) DSN() (string, error) {
	return sf.DSN(&sf.Config{
		Account:   c.Account,
		User:      c.User,
		Password:  c.Password,
		Warehouse: c.Warehouse,
		Role:      c.Role,
		Database:  usageDatabase,
		Schema:    "ACCOUNT_USAGE",
	})
}

func openDB(cfg Config) (*sql.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, fmt.Errorf("failed to create DSN: %w", err)
	}
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snowflake connection: %w", err)
	}
	return db, nil
}
