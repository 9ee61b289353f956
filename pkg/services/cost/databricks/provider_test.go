package databricks

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	sqlapi "github.com/databricks/databricks-sdk-go/service/sql"
	"github.com/de-tools/cloud-atlas/pkg/clock"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 7, 3, 12, 0, 0, 0, time.UTC)

type fakeWarehouses struct {
	list []sqlapi.EndpointInfo
	err  error
}

func (f *fakeWarehouses) ListAll(context.Context, sqlapi.ListWarehousesRequest) ([]sqlapi.EndpointInfo, error) {
	return f.list, f.err
}

func newTestProvider(t *testing.T) (*Provider, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg, err := LoadConfig(domain.ProviderConfig{
		"host":      "https://adb-123.azuredatabricks.net/",
		"token":     "dapi-secret",
		"http_path": "/sql/1.0/warehouses/abc",
	})
	require.NoError(t, err)

	return &Provider{cfg: cfg, clock: clock.FixedClock{T: testNow}, db: db}, mock
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		raw     domain.ProviderConfig
		want    Config
		wantErr string
	}{
		{
			name: "normalizes host",
			raw: domain.ProviderConfig{
				"host":      "https://example.cloud.databricks.com/",
				"token":     "tok",
				"http_path": "/sql/1.0/warehouses/wh",
				"catalog":   "main",
			},
			want: Config{
				Host:     "example.cloud.databricks.com",
				Token:    "tok",
				HTTPPath: "/sql/1.0/warehouses/wh",
				Catalog:  "main",
			},
		},
		{
			name:    "missing token",
			raw:     domain.ProviderConfig{"host": "example.com", "http_path": "/sql"},
			wantErr: `databricks: invalid configuration for "token": value is required`,
		},
		{
			name:    "relative http path",
			raw:     domain.ProviderConfig{"host": "example.com", "token": "tok", "http_path": "sql/1.0"},
			wantErr: `databricks: invalid configuration for "http_path": must start with /`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.raw)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "example.com", Token: "tok", HTTPPath: "/sql/1.0/warehouses/wh", Schema: "default"}
	assert.Equal(t, "token:tok@example.com:443/sql/1.0/warehouses/wh?schema=default", cfg.DSN())

	cfg = Config{Host: "example.com:8443", Token: "tok", HTTPPath: "/sql"}
	assert.Equal(t, "token:tok@example.com:8443/sql", cfg.DSN())
	assert.Equal(t, "example.com", cfg.Workspace())
}

func TestMTDCosts(t *testing.T) {
	// Given
	p, mock := newTestProvider(t)
	rows := sqlmock.NewRows([]string{"workspace_id", "product", "cost", "currency"}).
		AddRow("123", "SQL", 12.5, "USD").
		AddRow(nil, "JOBS", 40.0, nil)
	mock.ExpectQuery(regexp.QuoteMeta(mtdQuery)).
		WithArgs("2025-07-01").
		WillReturnRows(rows)

	// When
	result := p.MTDCosts(context.Background())

	// Then
	require.True(t, result.OK(), result.Message)
	assert.Equal(t, []domain.CostLineItem{
		{Project: "adb-123.azuredatabricks.net", Service: "JOBS", Cost: 40, Currency: "USD"},
		{Project: "123", Service: "SQL", Cost: 12.5, Currency: "USD"},
	}, result.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMTDCosts_QueryFailure(t *testing.T) {
	// Given
	p, mock := newTestProvider(t)
	mock.ExpectQuery(regexp.QuoteMeta(mtdQuery)).
		WillReturnError(errors.New("warehouse is stopped"))

	// When
	result := p.MTDCosts(context.Background())

	// Then
	assert.Equal(t, domain.StatusError, result.Status)
	assert.Equal(t, domain.ErrorKindTransient, result.Kind)
	assert.Contains(t, result.Message, "warehouse is stopped")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyCosts(t *testing.T) {
	// Given
	p, mock := newTestProvider(t)
	rows := sqlmock.NewRows([]string{"day", "cost"}).
		AddRow("2025-07-01", 3.25).
		AddRow("2025-07-03", 1.0)
	mock.ExpectQuery(regexp.QuoteMeta(dailyQuery)).
		WithArgs("2025-07-01", "2025-07-03").
		WillReturnRows(rows)

	// When
	result := p.DailyCosts(context.Background(), 2)

	// Then
	require.True(t, result.OK(), result.Message)
	assert.Equal(t, []domain.DailyCost{
		{Date: "2025-07-01", Cost: 3.25},
		{Date: "2025-07-02", Cost: 0},
		{Date: "2025-07-03", Cost: 1},
	}, result.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLiveMetrics_CountsRunningWarehouses(t *testing.T) {
	p, _ := newTestProvider(t)
	p.connect = func(Config) (warehouseLister, error) {
		return &fakeWarehouses{list: []sqlapi.EndpointInfo{
			{Id: "a", State: sqlapi.StateRunning},
			{Id: "b", State: sqlapi.StateStopped},
			{Id: "c", State: sqlapi.StateRunning},
		}}, nil
	}

	result := p.LiveMetrics(context.Background())

	require.True(t, result.OK())
	assert.Equal(t, 2, result.Value.InstancesMonitored)
	assert.Equal(t, testNow, result.Value.UpdatedAt)
	assert.Nil(t, result.Value.Traffic)
}

func TestLiveMetrics_ListFailure(t *testing.T) {
	p, _ := newTestProvider(t)
	p.connect = func(Config) (warehouseLister, error) {
		return &fakeWarehouses{err: errors.New("403 forbidden")}, nil
	}

	result := p.LiveMetrics(context.Background())

	assert.Equal(t, domain.ErrorKindTransient, result.Kind)
}

func TestTimeseries_Unsupported(t *testing.T) {
	p, _ := newTestProvider(t)

	result := p.Timeseries(context.Background(), domain.MetricCPU, 30)

	assert.Equal(t, domain.StatusError, result.Status)
	assert.Equal(t, domain.ErrorKindUnsupportedOperation, result.Kind)
	assert.Equal(t, "databricks: cpu timeseries not yet implemented", result.Message)
}
