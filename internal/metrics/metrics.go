// Package metrics exposes Prometheus metrics for the HTTP layer and the
// session actions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "binamite"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ActionMetrics counts session actions by outcome. It satisfies
// service.Recorder.
type ActionMetrics struct {
	ActionsTotal *prometheus.CounterVec
}

// NewActionMetrics creates and registers action metrics on the given registry.
func NewActionMetrics(reg prometheus.Registerer) *ActionMetrics {
	m := &ActionMetrics{
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "actions_total",
			Help:      "Total number of session actions, by action and outcome.",
		}, []string{"action", "outcome"}),
	}

	reg.MustRegister(m.ActionsTotal)
	return m
}

// RecordAction increments the counter for one finished action.
func (m *ActionMetrics) RecordAction(action, outcome string) {
	m.ActionsTotal.WithLabelValues(action, outcome).Inc()
}

// RegisterActiveStores exposes the number of live session stores as a gauge.
// count is read at scrape time.
func RegisterActiveStores(reg prometheus.Registerer, count func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "active_stores",
		Help:      "Number of in-memory session stores currently held.",
	}, func() float64 { return float64(count()) }))
}
