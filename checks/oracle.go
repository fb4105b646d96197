package checks

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
)

// ValidateOracleSource checks that the protocol's price oracle resolves asset
// to the expected feed contract.
func (c *Checker) ValidateOracleSource(ctx context.Context, asset common.Address, expectedSource common.Address) error {
	timer := prometheus.NewTimer(c.metrics.checkDuration.WithLabelValues("oracle_source"))
	defer timer.ObserveDuration()

	actual, err := c.client.OracleSource(ctx, asset)
	if err != nil {
		return fmt.Errorf("resolving oracle source for asset %s: %w", asset.Hex(), err)
	}
	if actual != expectedSource {
		c.metrics.violations.WithLabelValues("oracle_source").Inc()
		return &OracleSourceMismatchError{
			Asset:    asset,
			Expected: expectedSource,
			Actual:   actual,
		}
	}

	c.logger.Debug("oracle source matches", "asset", asset.Hex(), "source", actual.Hex())
	return nil
}
