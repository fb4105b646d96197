package actions

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	actionDuration *prometheus.HistogramVec
	failures       *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "listing_verifier",
			Subsystem: "actions",
			Name:      "action_duration_seconds",
			Help:      "Time taken by each simulated pool action.",
		}, []string{"action"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "listing_verifier",
			Subsystem: "actions",
			Name:      "failures_total",
			Help:      "Number of failed simulated pool actions, by action.",
		}, []string{"action"}),
	}
	reg.MustRegister(m.actionDuration, m.failures)
	return m
}
