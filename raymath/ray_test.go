package raymath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	t.Run("should add ray terms exactly", func(t *testing.T) {
		base := new(big.Int) // 0
		slope1 := new(big.Int).Div(new(big.Int).Mul(Ray, big.NewInt(7)), big.NewInt(100))
		slope2 := new(big.Int).Mul(Ray, big.NewInt(3))

		got, err := Sum(base, slope1, slope2)

		require.NoError(t, err)
		want := new(big.Int).Add(slope1, slope2)
		assert.Zero(t, got.Cmp(want), "Sum should equal the exact big.Int addition")
	})

	t.Run("should return zero for no terms", func(t *testing.T) {
		got, err := Sum()

		require.NoError(t, err)
		assert.Zero(t, got.Sign())
	})

	t.Run("should report overflow past uint256", func(t *testing.T) {
		maxUint256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

		_, err := Sum(maxUint256, big.NewInt(1))

		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("should reject terms outside uint256 range", func(t *testing.T) {
		tooWide := new(big.Int).Lsh(big.NewInt(1), 256)

		_, err := Sum(tooWide)
		assert.ErrorIs(t, err, ErrOutOfRange)

		_, err = Sum(big.NewInt(-1))
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
}

func TestWholeUnits(t *testing.T) {
	t.Run("should scale by the asset's decimals", func(t *testing.T) {
		got := WholeUnits(666, 18)

		want, ok := new(big.Int).SetString("666000000000000000000", 10)
		require.True(t, ok)
		assert.Zero(t, got.Cmp(want))
	})

	t.Run("should be the identity at zero decimals", func(t *testing.T) {
		assert.Zero(t, WholeUnits(42, 0).Cmp(big.NewInt(42)))
	})
}
