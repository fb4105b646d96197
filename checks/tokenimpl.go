package checks

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/listing-verifier-go/reserve"
)

// ValidateTokenImpls reads the implementation address currently behind each
// of the reserve's upgradeable token proxies and asserts it matches the
// expected deployment. A zero address in expected leaves that token
// unconstrained, so callers can check only the aToken or all three.
func (c *Checker) ValidateTokenImpls(ctx context.Context, r reserve.Reserve, expected reserve.TokenImpls) error {
	timer := prometheus.NewTimer(c.metrics.checkDuration.WithLabelValues("token_impls"))
	defer timer.ObserveDuration()

	var zero common.Address
	proxies := []struct {
		token string
		proxy common.Address
		want  common.Address
	}{
		{"aToken", r.AToken, expected.AToken},
		{"stableDebtToken", r.StableDebtToken, expected.StableDebtToken},
		{"variableDebtToken", r.VariableDebtToken, expected.VariableDebtToken},
	}

	for _, p := range proxies {
		if p.want == zero {
			continue
		}
		actual, err := c.client.ProxyImplementation(ctx, p.proxy)
		if err != nil {
			return fmt.Errorf("reading implementation behind %s proxy %s: %w", p.token, p.proxy.Hex(), err)
		}
		if actual != p.want {
			c.metrics.violations.WithLabelValues("token_impls").Inc()
			return &ImplementationMismatchError{
				Token:    p.token,
				Proxy:    p.proxy,
				Expected: p.want,
				Actual:   actual,
			}
		}
		c.logger.Debug("token implementation matches", "token", p.token, "proxy", p.proxy.Hex(), "implementation", actual.Hex())
	}

	return nil
}
