// Package metrics provides the minimal Prometheus instrumentation named in
// A6: registry size, open connections, and commands dispatched.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the gauges/counters the gateway updates as it runs.
type Metrics struct {
	RegistrySize      prometheus.Gauge
	OpenConnections   prometheus.Gauge
	CommandsTotal     *prometheus.CounterVec
	CommandErrorsTotal *prometheus.CounterVec
}

// New registers and returns a Metrics bundle against reg. Passing nil uses
// the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		RegistrySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "py4jgateway",
			Name:      "registry_size",
			Help:      "Number of objects currently bound in the gateway object registry.",
		}),
		OpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "py4jgateway",
			Name:      "open_connections",
			Help:      "Number of currently open peer connections.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "py4jgateway",
			Name:      "commands_dispatched_total",
			Help:      "Total commands dispatched, by group.",
		}, []string{"group"}),
		CommandErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "py4jgateway",
			Name:      "command_errors_total",
			Help:      "Total commands that returned an error envelope, by group and error kind.",
		}, []string{"group", "kind"}),
	}

	reg.MustRegister(m.RegistrySize, m.OpenConnections, m.CommandsTotal, m.CommandErrorsTotal)
	return m
}

// ObserveDispatch records one dispatched command and, if it failed, its
// error kind.
func (m *Metrics) ObserveDispatch(group, errKind string) {
	m.CommandsTotal.WithLabelValues(group).Inc()
	if errKind != "" {
		m.CommandErrorsTotal.WithLabelValues(group, errKind).Inc()
	}
}
