package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"go.ngs.io/panchanga-api/internal/config"
)

func TestCollector_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveRequest(http.MethodGet, "/v1/panchanga", 200, 15*time.Millisecond)
	c.ObserveRequest(http.MethodGet, "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/v1/panchanga", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestCollector_ObserveBoundarySearch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveBoundarySearch("tithi", 2, nil)
	c.ObserveBoundarySearch("tithi", 0, nil)
	c.ObserveBoundarySearch("karana", 0, errors.New("boom"))
	c.ObserveEphemerisFailure("facts")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.BoundarySearches.WithLabelValues("tithi", "found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.BoundarySearches.WithLabelValues("tithi", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.BoundarySearches.WithLabelValues("karana", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.EphemerisFailures.WithLabelValues("facts")))
}

func TestCollector_RegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewCollector(reg)
	require.NoError(t, err)
	b, err := NewCollector(reg)
	require.NoError(t, err)

	a.ObserveRequest("GET", "/health", 200, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(b.HTTPRequests.WithLabelValues("GET", "/health", "200")))
}

func TestCollector_NilIsSafe(t *testing.T) {
	var c *Collector
	c.ObserveRequest("GET", "/", 200, 0)
	c.ObserveBoundarySearch("tithi", 1, nil)
	c.ObserveEphemerisFailure("facts")
}

func TestCollector_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.ObserveRequest("GET", "/v1/yogas", 200, time.Millisecond)

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "panchanga_http_requests_total"))
	assert.True(t, strings.Contains(body, "panchanga_http_request_duration_seconds"))
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{}, nil)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "zipkin", SampleRatio: 1}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported tracing exporter")
}

func TestShutdownWithTimeout(t *testing.T) {
	called := false
	ShutdownWithTimeout(context.Background(), func(ctx context.Context) error {
		called = true
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return errors.New("flush failed")
	}, nil)
	assert.True(t, called)

	ShutdownWithTimeout(context.Background(), nil, nil)
}
