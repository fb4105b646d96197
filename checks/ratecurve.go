package checks

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/listing-verifier-go/reserve"
)

// ValidateRateCurve resolves the strategy contract attached to asset, checks
// it is the expected deployment, and compares all seven curve coefficients
// plus the derived maximum variable borrow rate against expected. All
// comparisons are exact integer equality in ray units: rate parameters are
// set literally by configuration, so no rounding tolerance applies here.
func (c *Checker) ValidateRateCurve(ctx context.Context, asset common.Address, expectedStrategy common.Address, expected reserve.StrategySpec) error {
	timer := prometheus.NewTimer(c.metrics.checkDuration.WithLabelValues("rate_curve"))
	defer timer.ObserveDuration()

	actualStrategy, err := c.client.ReserveStrategy(ctx, asset)
	if err != nil {
		return fmt.Errorf("resolving strategy for asset %s: %w", asset.Hex(), err)
	}
	if actualStrategy != expectedStrategy {
		c.metrics.violations.WithLabelValues("rate_curve").Inc()
		return &StrategyAddressMismatchError{
			Asset:    asset,
			Expected: expectedStrategy,
			Actual:   actualStrategy,
		}
	}

	actual, err := c.client.StrategyCurve(ctx, actualStrategy)
	if err != nil {
		return fmt.Errorf("reading curve of strategy %s: %w", actualStrategy.Hex(), err)
	}

	coefficients := []struct {
		name string
		want *big.Int
		got  *big.Int
	}{
		{"optimalUtilization", expected.OptimalUtilization, actual.OptimalUtilization},
		{"excessUtilization", expected.ExcessUtilization, actual.ExcessUtilization},
		{"baseVariableBorrowRate", expected.BaseVariableBorrowRate, actual.BaseVariableBorrowRate},
		{"variableRateSlope1", expected.VariableRateSlope1, actual.VariableRateSlope1},
		{"variableRateSlope2", expected.VariableRateSlope2, actual.VariableRateSlope2},
		{"stableRateSlope1", expected.StableRateSlope1, actual.StableRateSlope1},
		{"stableRateSlope2", expected.StableRateSlope2, actual.StableRateSlope2},
	}
	for _, coef := range coefficients {
		if coef.want.Cmp(coef.got) != 0 {
			c.metrics.violations.WithLabelValues("rate_curve").Inc()
			return &CurveParameterMismatchError{
				Strategy: actualStrategy,
				Field:    coef.name,
				Expected: coef.want,
				Actual:   coef.got,
			}
		}
	}

	derived, err := expected.MaxVariableBorrowRate()
	if err != nil {
		return fmt.Errorf("deriving max variable borrow rate: %w", err)
	}
	reported, err := c.client.StrategyMaxVariableRate(ctx, actualStrategy)
	if err != nil {
		return fmt.Errorf("reading max variable borrow rate of strategy %s: %w", actualStrategy.Hex(), err)
	}
	if derived.Cmp(reported) != 0 {
		c.metrics.violations.WithLabelValues("rate_curve").Inc()
		return &DerivedRateMismatchError{
			Strategy: actualStrategy,
			Expected: derived,
			Actual:   reported,
		}
	}

	c.logger.Debug("rate curve matches", "asset", asset.Hex(), "strategy", actualStrategy.Hex())
	return nil
}
