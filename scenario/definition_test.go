package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `name: list-link
description: List LINK with borrowing enabled and stable borrowing off.
newListings: 1
reserve:
  symbol: LINK
  underlying: "0x00000000000000000000000000000000000000a0"
  decimals: 18
  loanToValue: 5000
  liquidationThreshold: 6000
  liquidationBonus: 10800
  reserveFactor: 2000
  usageAsCollateralEnabled: true
  borrowingEnabled: true
  stableBorrowRateEnabled: false
  isActive: true
  isFrozen: false
strategy: "0x00000000000000000000000000000000000000a4"
curve:
  optimalUtilization: "450000000000000000000000000"
  excessUtilization: "550000000000000000000000000"
  baseVariableBorrowRate: "0"
  variableRateSlope1: "70000000000000000000000000"
  variableRateSlope2: "3000000000000000000000000000"
  stableRateSlope1: "100000000000000000000000000"
  stableRateSlope2: "3000000000000000000000000000"
impls:
  aToken: "0x00000000000000000000000000000000000000a5"
oracleSource: "0x00000000000000000000000000000000000000a6"
whale: "0x00000000000000000000000000000000000000e1"
depositAmount: "666000000000000000000"
`

func writeScenario(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("should parse a full scenario file", func(t *testing.T) {
		def, err := Load(writeScenario(t, scenarioYAML))

		require.NoError(t, err)
		assert.Equal(t, "list-link", def.Name)
		assert.Equal(t, 1, def.NewListings)
		assert.Equal(t, "LINK", def.Reserve.Symbol)
		assert.Equal(t, uint64(5000), def.Reserve.LoanToValue)
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

		assert.Error(t, err)
	})

	t.Run("should fail on malformed yaml", func(t *testing.T) {
		_, err := Load(writeScenario(t, "reserve: [unclosed"))

		assert.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	t.Run("should produce a fully typed plan", func(t *testing.T) {
		def, err := Load(writeScenario(t, scenarioYAML))
		require.NoError(t, err)

		plan, err := def.Resolve()

		require.NoError(t, err)
		assert.Equal(t, 1, plan.NewListings)
		assert.Equal(t, common.HexToAddress("0xa0"), plan.Reserve.Underlying)
		assert.Equal(t, uint64(10800), plan.Reserve.LiquidationBonus)
		assert.False(t, plan.Reserve.StableBorrowEnabled)
		assert.Equal(t, common.HexToAddress("0xa4"), plan.Strategy)
		assert.Equal(t, common.HexToAddress("0xa5"), plan.Impls.AToken)
		assert.Equal(t, common.Address{}, plan.Impls.StableDebtToken, "omitted impls stay unconstrained")
		assert.Equal(t, common.HexToAddress("0xa6"), plan.OracleSource)
		assert.Equal(t, common.HexToAddress("0xe1"), plan.Whale)
		require.NotNil(t, plan.DepositAmount)
		assert.Equal(t, "666000000000000000000", plan.DepositAmount.String())
		assert.Nil(t, plan.BorrowAmount, "omitted amounts stay nil")
		assert.Equal(t, "70000000000000000000000000", plan.Curve.VariableRateSlope1.String())
	})

	t.Run("should leave omitted addresses unconstrained", func(t *testing.T) {
		def := Definition{
			NewListings: 1,
			Reserve:     ReserveDef{Symbol: "LINK", Decimals: 18, IsActive: true},
		}

		plan, err := def.Resolve()

		require.NoError(t, err)
		assert.Equal(t, common.Address{}, plan.Reserve.Underlying)
		assert.Equal(t, common.Address{}, plan.Strategy)
		assert.Nil(t, plan.DepositAmount)
		assert.Zero(t, plan.Curve.OptimalUtilization.Sign(), "omitted ray values default to zero")
	})

	t.Run("should reject a malformed address", func(t *testing.T) {
		def := Definition{
			NewListings: 1,
			Reserve:     ReserveDef{Symbol: "LINK", Underlying: "not-an-address"},
		}

		_, err := def.Resolve()

		assert.ErrorContains(t, err, "reserve.underlying")
	})

	t.Run("should reject a negative amount", func(t *testing.T) {
		def := Definition{
			NewListings:   1,
			Reserve:       ReserveDef{Symbol: "LINK"},
			DepositAmount: "-5",
		}

		_, err := def.Resolve()

		assert.ErrorContains(t, err, "depositAmount")
	})
}
