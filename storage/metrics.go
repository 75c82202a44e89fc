package storage

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts facade decisions. A nil *Metrics records nothing.
type Metrics struct {
	probes   *prometheus.CounterVec
	fallback *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewMetrics creates the facade counters and registers them with reg.
// Create it once per registry and share it between facades.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webstorage",
			Subsystem: "facade",
			Name:      "probes_total",
			Help:      "Availability probes run at facade construction, by backend and result",
		}, []string{"backend", "result"}),
		fallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webstorage",
			Subsystem: "facade",
			Name:      "fallback_total",
			Help:      "Facades constructed in fallback mode, by backend",
		}, []string{"backend"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webstorage",
			Subsystem: "facade",
			Name:      "rejected_total",
			Help:      "Fallback operations dropped because the key is not granted",
		}, []string{"backend", "op"}),
	}

	if reg != nil {
		reg.MustRegister(m.probes, m.fallback, m.rejected)
	}
	return m
}

func (m *Metrics) probe(backend, result string) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(backend, result).Inc()
}

func (m *Metrics) fellBack(backend string) {
	if m == nil {
		return
	}
	m.fallback.WithLabelValues(backend).Inc()
}

func (m *Metrics) reject(backend, op string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(backend, op).Inc()
}
