package reserve

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReserve() Reserve {
	return Reserve{
		Symbol:               "LINK",
		Underlying:           common.HexToAddress("0x01"),
		AToken:               common.HexToAddress("0x02"),
		StableDebtToken:      common.HexToAddress("0x03"),
		VariableDebtToken:    common.HexToAddress("0x04"),
		Decimals:             18,
		LoanToValue:          5000,
		LiquidationThreshold: 6000,
		LiquidationBonus:     10800,
		ReserveFactor:        2000,
		UsageAsCollateral:    true,
		BorrowingEnabled:     true,
		StableBorrowEnabled:  false,
		InterestRateStrategy: common.HexToAddress("0x05"),
		IsActive:             true,
		IsFrozen:             false,
	}
}

func TestFirstMismatch(t *testing.T) {
	t.Run("should report no mismatch for identical records", func(t *testing.T) {
		r := testReserve()

		_, found := FirstMismatch(r, r, false)

		assert.False(t, found)
	})

	t.Run("should name the divergent field with literal values", func(t *testing.T) {
		want := testReserve()
		got := testReserve()
		got.LoanToValue = 4500

		mismatch, found := FirstMismatch(want, got, false)

		require.True(t, found)
		assert.Equal(t, "loanToValue", mismatch.Field)
		assert.Equal(t, "5000", mismatch.Expected)
		assert.Equal(t, "4500", mismatch.Actual)
	})

	t.Run("should report the first divergence in declaration order", func(t *testing.T) {
		want := testReserve()
		got := testReserve()
		got.Decimals = 6
		got.ReserveFactor = 1000

		mismatch, found := FirstMismatch(want, got, false)

		require.True(t, found)
		assert.Equal(t, "decimals", mismatch.Field, "decimals precedes reserveFactor")
	})

	t.Run("should treat zero addresses as unconstrained when requested", func(t *testing.T) {
		want := testReserve()
		want.AToken = common.Address{}
		want.StableDebtToken = common.Address{}
		want.VariableDebtToken = common.Address{}
		want.InterestRateStrategy = common.Address{}
		got := testReserve()

		_, found := FirstMismatch(want, got, true)

		assert.False(t, found, "unset addresses should not constrain the comparison")
	})

	t.Run("should still compare zero addresses in strict mode", func(t *testing.T) {
		want := testReserve()
		want.AToken = common.Address{}
		got := testReserve()

		mismatch, found := FirstMismatch(want, got, false)

		require.True(t, found)
		assert.Equal(t, "aToken", mismatch.Field)
	})

	t.Run("should catch boolean flag changes", func(t *testing.T) {
		want := testReserve()
		got := testReserve()
		got.StableBorrowEnabled = true

		mismatch, found := FirstMismatch(want, got, false)

		require.True(t, found)
		assert.Equal(t, "stableBorrowRateEnabled", mismatch.Field)
		assert.Equal(t, "false", mismatch.Expected)
		assert.Equal(t, "true", mismatch.Actual)
	})
}

func TestSnapshot(t *testing.T) {
	a := testReserve()
	b := testReserve()
	b.Symbol = "AAVE"
	snap := Snapshot{a, b}

	t.Run("should find a reserve by symbol", func(t *testing.T) {
		got, ok := snap.BySymbol("AAVE")

		require.True(t, ok)
		assert.Equal(t, "AAVE", got.Symbol)
	})

	t.Run("should report absent symbols", func(t *testing.T) {
		_, ok := snap.BySymbol("GHO")

		assert.False(t, ok)
	})

	t.Run("should list symbols in registry order", func(t *testing.T) {
		assert.Equal(t, []string{"LINK", "AAVE"}, snap.Symbols())
	})
}
