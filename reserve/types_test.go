package reserve

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defistate/listing-verifier-go/raymath"
)

func TestStrategySpecMaxVariableBorrowRate(t *testing.T) {
	pct := func(n int64) *big.Int {
		return new(big.Int).Div(new(big.Int).Mul(raymath.Ray, big.NewInt(n)), big.NewInt(100))
	}

	t.Run("should sum base rate and variable slopes", func(t *testing.T) {
		spec := StrategySpec{
			OptimalUtilization:     pct(80),
			ExcessUtilization:      pct(20),
			BaseVariableBorrowRate: pct(1),
			VariableRateSlope1:     pct(7),
			VariableRateSlope2:     pct(200),
			StableRateSlope1:       pct(10),
			StableRateSlope2:       pct(300),
		}

		got, err := spec.MaxVariableBorrowRate()

		require.NoError(t, err)
		assert.Zero(t, got.Cmp(pct(208)), "stable slopes must not contribute")
	})

	t.Run("should surface width violations from oversized coefficients", func(t *testing.T) {
		spec := StrategySpec{
			BaseVariableBorrowRate: new(big.Int).Lsh(big.NewInt(1), 256),
			VariableRateSlope1:     new(big.Int),
			VariableRateSlope2:     new(big.Int),
		}

		_, err := spec.MaxVariableBorrowRate()

		assert.ErrorIs(t, err, raymath.ErrOutOfRange)
	})
}
