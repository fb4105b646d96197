package snapshot

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	readDuration prometheus.Histogram
	readErrors   prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		readDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "listing_verifier",
			Subsystem: "snapshot",
			Name:      "read_duration_seconds",
			Help:      "Time taken to read a full reserve snapshot.",
		}),
		readErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "listing_verifier",
			Subsystem: "snapshot",
			Name:      "read_errors_total",
			Help:      "Number of snapshot reads aborted by a failed asset query.",
		}),
	}
	reg.MustRegister(m.readDuration, m.readErrors)
	return m
}
