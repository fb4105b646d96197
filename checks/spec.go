package checks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/listing-verifier-go/reserve"
)

// ValidateReserveSpec locates the expected symbol in the snapshot and asserts
// every configuration field matches the expected record. Address fields left
// zero in expected are unconstrained: token and strategy addresses are
// assigned dynamically at listing time and often unknown when the expectation
// is written. The first divergent field aborts the check.
func (c *Checker) ValidateReserveSpec(expected reserve.Reserve, snap reserve.Snapshot) error {
	timer := prometheus.NewTimer(c.metrics.checkDuration.WithLabelValues("reserve_spec"))
	defer timer.ObserveDuration()

	actual, ok := snap.BySymbol(expected.Symbol)
	if !ok {
		c.metrics.violations.WithLabelValues("reserve_spec").Inc()
		return &ReserveNotFoundError{Symbol: expected.Symbol}
	}

	if mismatch, found := reserve.FirstMismatch(expected, actual, true); found {
		c.metrics.violations.WithLabelValues("reserve_spec").Inc()
		return &FieldMismatchError{
			Symbol:   expected.Symbol,
			Field:    mismatch.Field,
			Expected: mismatch.Expected,
			Actual:   mismatch.Actual,
		}
	}

	c.logger.Debug("reserve spec matches", "symbol", expected.Symbol)
	return nil
}
