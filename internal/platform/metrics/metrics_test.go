package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"pulse/internal/platform/metrics"
)

func TestObserveCountsByResult(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	m.ObserveOperation("save", nil)
	m.ObserveOperation("save", errors.New("boom"))
	m.ObserveOperation("save", nil)
	m.ObserveStoreCall("query", nil)

	require.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("save", metrics.ResultOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("save", metrics.ResultError)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.StoreCalls.WithLabelValues("query", metrics.ResultOK)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.ObserveOperation("load", nil)
		m.ObserveStoreCall("insert", errors.New("x"))
	})
}

func TestHandlerExposesPrivateRegistry(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	m.ObserveOperation("load", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `pulse_heartrate_operations_total{op="load",result="ok"} 1`)
	require.NotContains(t, string(body), "go_goroutines")
}
