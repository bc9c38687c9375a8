package rest

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordRouteTemplate(t *testing.T) {
	api := newTestAPI(t)

	api.do(http.MethodGet, "/films/"+newHopeID, api.tokenFor(t, userEmail), "")
	api.do(http.MethodGet, "/films/"+newHopeID, "", "")

	ok := api.metrics.Requests.WithLabelValues(http.MethodGet, "/films/{id}", "200")
	unauthorized := api.metrics.Requests.WithLabelValues(http.MethodGet, "/films/{id}", "401")

	assert.Equal(t, 1.0, testutil.ToFloat64(ok))
	assert.Equal(t, 1.0, testutil.ToFloat64(unauthorized))
	assert.Positive(t, testutil.CollectAndCount(api.metrics.Duration))
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.do(http.MethodGet, "/health", "", "")

	rr := api.do(http.MethodGet, "/metrics", "", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "holocron_http_requests_total")
}

func TestNewMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewMetrics(reg)
	require.NoError(t, err)
	second, err := NewMetrics(reg)
	require.NoError(t, err)

	assert.Same(t, first.Requests, second.Requests)
	assert.Same(t, first.Duration, second.Duration)
}

func TestNilMetricsMiddlewarePassesThrough(t *testing.T) {
	var m *Metrics
	called := false
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	h.ServeHTTP(nil, nil)

	assert.True(t, called)
}
