package differ

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the collectors recorded by StateDiffer.
type Metrics struct {
	diffDuration    *prometheus.HistogramVec
	protocolsDiffed prometheus.Counter
}

// NewMetrics creates the differ collectors and registers them with reg.
// It panics if they are already registered, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		diffDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "defistate",
				Subsystem: "differ",
				Name:      "diff_duration_seconds",
				Help:      "Time spent computing a state diff.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{},
		),
		protocolsDiffed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "defistate",
				Subsystem: "differ",
				Name:      "protocols_diffed_total",
				Help:      "Number of protocol views compared.",
			},
		),
	}
	reg.MustRegister(m.diffDuration, m.protocolsDiffed)
	return m
}
