package differ

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks differ check timings and violations.
type Metrics struct {
	checkDuration *prometheus.HistogramVec
	violations    *prometheus.CounterVec
}

// NewMetrics creates and registers the differ's metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		checkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "listing_verifier",
			Subsystem: "differ",
			Name:      "check_duration_seconds",
			Help:      "Time taken by each snapshot comparison check.",
		}, []string{"check"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listing_verifier",
			Subsystem: "differ",
			Name:      "violations_total",
			Help:      "Number of violated snapshot invariants, by check.",
		}, []string{"check"}),
	}
	reg.MustRegister(m.checkDuration, m.violations)
	return m
}
