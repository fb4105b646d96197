package checks

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	checkDuration *prometheus.HistogramVec
	violations    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		checkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "listing_verifier",
			Subsystem: "checks",
			Name:      "check_duration_seconds",
			Help:      "Time taken by each absolute validator.",
		}, []string{"check"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listing_verifier",
			Subsystem: "checks",
			Name:      "violations_total",
			Help:      "Number of violated listing invariants, by check.",
		}, []string{"check"}),
	}
	reg.MustRegister(m.checkDuration, m.violations)
	return m
}
