// internal/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the server's prometheus instruments. A fresh registry
// is used per instance so tests can build servers side by side without
// duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	GamesRegistered     prometheus.Counter
	DuplicateRejections prometheus.Counter
	ActiveConnections   prometheus.Gauge
	MessagesHandled     prometheus.Counter
}

// New creates and registers the server's instruments under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GamesRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_registered_total",
			Help:      "Total number of games registered",
		}),
		DuplicateRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_rejections_total",
			Help:      "Total number of registrations rejected for a duplicate id",
		}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of open realtime connections",
		}),
		MessagesHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_handled_total",
			Help:      "Total number of realtime messages handled",
		}),
	}

	m.registry.MustRegister(
		m.GamesRegistered,
		m.DuplicateRejections,
		m.ActiveConnections,
		m.MessagesHandled,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this instance.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
