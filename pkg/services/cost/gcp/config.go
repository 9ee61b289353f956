package gcp

import (
	"context"
	"fmt"
	"regexp"

	"cloud.google.com/go/bigquery"
	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/cost"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	Name                  = "gcp"
	DefaultBillingDataset = "billing_export"
	DefaultBillingTable   = "gcp_billing_export_v1_"
)

var identifier = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

type Config struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsPath string `mapstructure:"credentials_path"`
	BillingDataset  string `mapstructure:"billing_dataset"`
	BillingTable    string `mapstructure:"billing_table"`
}

func LoadConfig(raw domain.ProviderConfig) (Config, error) {
	cfg := Config{BillingDataset: DefaultBillingDataset, BillingTable: DefaultBillingTable}
	if err := cost.DecodeConfig(Name, raw, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.ProjectID == "" {
		return Config{}, domain.MissingField(Name, "project_id")
	}
	for field, value := range map[string]string{
		"billing_dataset": cfg.BillingDataset,
		"billing_table":   cfg.BillingTable,
	} {
		if !identifier.MatchString(value) {
			return Config{}, &domain.ConfigurationError{Provider: Name, Field: field, Reason: "not a BigQuery identifier"}
		}
	}
	return cfg, nil
}

func (c Config) clientOptions() []option.ClientOption {
	if c.CredentialsPath == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(c.CredentialsPath)}
}

func (c Config) billingSource() string {
	return fmt.Sprintf("`%s.%s*`", c.BillingDataset, c.BillingTable)
}

type rowIterator interface {
	Next(dst interface{}) error
}

type queryRunner interface {
	Read(ctx context.Context, sql string, params []bigquery.QueryParameter) (rowIterator, error)
	Close() error
}

type seriesLister interface {
	ListTimeSeries(ctx context.Context, req *monitoringpb.ListTimeSeriesRequest) ([]*monitoringpb.TimeSeries, error)
	Close() error
}

type bigqueryRunner struct {
	client *bigquery.Client
}

func newQueryRunner(ctx context.Context, cfg Config) (queryRunner, error) {
	client, err := bigquery.NewClient(ctx, cfg.ProjectID, cfg.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}
	return &bigqueryRunner{client: client}, nil
}

func (r *bigqueryRunner) Read(ctx context.Context, sql string, params []bigquery.QueryParameter) (rowIterator, error) {
	q := r.client.Query(sql)
	q.Parameters = params
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run billing query: %w", err)
	}
	return it, nil
}

func (r *bigqueryRunner) Close() error {
	return r.client.Close()
}

type metricClient struct {
	client *monitoring.MetricClient
}

func newSeriesLister(ctx context.Context, cfg Config) (seriesLister, error) {
	client, err := monitoring.NewMetricClient(ctx, cfg.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create monitoring client: %w", err)
	}
	return &metricClient{client: client}, nil
}

func (m *metricClient) ListTimeSeries(
	ctx context.Context,
	req *monitoringpb.ListTimeSeriesRequest,
) ([]*monitoringpb.TimeSeries, error) {
	it := m.client.ListTimeSeries(ctx, req)

	var out []*monitoringpb.TimeSeries
	for {
		ts, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list time series: %w", err)
		}
		out = append(out, ts)
	}
}

func (m *metricClient) Close() error {
	return m.client.Close()
}
