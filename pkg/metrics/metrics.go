package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the mutation engine's Prometheus collectors. It satisfies
// optimistic.Recorder; a nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	MutationsApplied  *prometheus.CounterVec
	MutationsQueued   *prometheus.CounterVec
	MutationsSent     *prometheus.CounterVec
	MutationsResolved *prometheus.CounterVec
	MutationDuration  *prometheus.HistogramVec
	MutationsPending  prometheus.Gauge

	LiveEvents *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		MutationsApplied: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inkwell_mutations_applied_total",
				Help: "Mutations applied optimistically to the local store",
			},
			[]string{"kind"},
		),
		MutationsQueued: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inkwell_mutations_queued_total",
				Help: "Mutations queued behind an in-flight mutation on the same slot",
			},
			[]string{"kind"},
		),
		MutationsSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inkwell_mutations_sent_total",
				Help: "Mutations dispatched to the server",
			},
			[]string{"kind"},
		),
		MutationsResolved: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inkwell_mutations_total",
				Help: "Resolved mutations by outcome",
			},
			[]string{"kind", "outcome"},
		),
		MutationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inkwell_mutation_duration_seconds",
				Help:    "Time from dispatch to server resolution",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),
		MutationsPending: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "inkwell_mutations_pending",
				Help: "Mutations applied locally and not yet resolved",
			},
		),
		LiveEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inkwell_live_events_total",
				Help: "Live-sync events received over the websocket",
			},
			[]string{"type"},
		),
	}
}

func (m *Metrics) Applied(kind string) {
	if m == nil {
		return
	}
	m.MutationsApplied.WithLabelValues(kind).Inc()
	m.MutationsPending.Inc()
}

func (m *Metrics) Queued(kind string) {
	if m == nil {
		return
	}
	m.MutationsQueued.WithLabelValues(kind).Inc()
}

func (m *Metrics) Sent(kind string) {
	if m == nil {
		return
	}
	m.MutationsSent.WithLabelValues(kind).Inc()
}

// Resolved records a terminal outcome. Superseded mutations were never
// sent, so they carry no duration.
func (m *Metrics) Resolved(kind, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.MutationsResolved.WithLabelValues(kind, outcome).Inc()
	m.MutationsPending.Dec()
	if outcome != "superseded" {
		m.MutationDuration.WithLabelValues(kind).Observe(seconds)
	}
}

// LiveEvent counts one websocket message by type
func (m *Metrics) LiveEvent(typ string) {
	if m == nil {
		return
	}
	m.LiveEvents.WithLabelValues(typ).Inc()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
