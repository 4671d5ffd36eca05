package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics owns a private registry so tests and multiple sessions in one
// process never collide on the default registerer.
type Metrics struct {
	registry   *prometheus.Registry
	Operations *prometheus.CounterVec
	StoreCalls *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "heartrate",
			Name:      "operations_total",
			Help:      "Heart-rate session operations by outcome.",
		}, []string{"op", "result"}),
		StoreCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "healthstore",
			Name:      "calls_total",
			Help:      "Health store calls by outcome.",
		}, []string{"call", "result"}),
	}
	reg.MustRegister(m.Operations, m.StoreCalls)
	return m
}

func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) ObserveStoreCall(call string, err error) {
	if m == nil {
		return
	}
	m.StoreCalls.WithLabelValues(call, result(err)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
