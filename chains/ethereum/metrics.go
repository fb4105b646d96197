package ethereum

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	callDuration *prometheus.HistogramVec
	txDuration   *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "listing_verifier",
			Subsystem: "fork_client",
			Name:      "call_duration_seconds",
			Help:      "Duration of read-only contract calls, by method.",
		}, []string{"method"}),
		txDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "listing_verifier",
			Subsystem: "fork_client",
			Name:      "tx_duration_seconds",
			Help:      "Duration of impersonated transactions from submission to receipt, by operation.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.callDuration, m.txDuration)
	return m
}
