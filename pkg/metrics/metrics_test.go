package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveProviderCall(t *testing.T) {
	m := New()

	m.ObserveProviderCall("gcp", "mtd_costs", "active", 120*time.Millisecond)
	m.ObserveProviderCall("gcp", "mtd_costs", "active", 80*time.Millisecond)
	m.ObserveProviderCall("gcp", "mtd_costs", "error", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderCallsTotal.WithLabelValues("gcp", "mtd_costs", "active")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderCallsTotal.WithLabelValues("gcp", "mtd_costs", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ProviderCallDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveProviderCall("aws", "live_metrics", "active", time.Second)
		m.ObserveHTTPRequest("GET", "/api/health", "200", time.Millisecond)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest("GET", "/api/providers", "200", 5*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `cloud_atlas_http_requests_total{method="GET",route="/api/providers",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
