package reserve

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// Mismatch describes the first field on which two reserve records diverge.
// Values are pre-formatted for error reporting.
type Mismatch struct {
	Field    string
	Expected string
	Actual   string
}

// FirstMismatch compares two records field by field in declaration order and
// reports the first divergence. When skipUnsetAddresses is set, address
// fields left zero in want are treated as unconstrained: token and strategy
// addresses are assigned dynamically at listing time and often unknown when
// the expectation is written.
func FirstMismatch(want, got Reserve, skipUnsetAddresses bool) (Mismatch, bool) {
	var zero common.Address
	fields := []struct {
		name      string
		want, got string
		unsetAddr bool
	}{
		{name: "symbol", want: want.Symbol, got: got.Symbol},
		{name: "underlying", want: want.Underlying.Hex(), got: got.Underlying.Hex(), unsetAddr: want.Underlying == zero},
		{name: "aToken", want: want.AToken.Hex(), got: got.AToken.Hex(), unsetAddr: want.AToken == zero},
		{name: "stableDebtToken", want: want.StableDebtToken.Hex(), got: got.StableDebtToken.Hex(), unsetAddr: want.StableDebtToken == zero},
		{name: "variableDebtToken", want: want.VariableDebtToken.Hex(), got: got.VariableDebtToken.Hex(), unsetAddr: want.VariableDebtToken == zero},
		{name: "decimals", want: strconv.Itoa(int(want.Decimals)), got: strconv.Itoa(int(got.Decimals))},
		{name: "loanToValue", want: strconv.FormatUint(want.LoanToValue, 10), got: strconv.FormatUint(got.LoanToValue, 10)},
		{name: "liquidationThreshold", want: strconv.FormatUint(want.LiquidationThreshold, 10), got: strconv.FormatUint(got.LiquidationThreshold, 10)},
		{name: "liquidationBonus", want: strconv.FormatUint(want.LiquidationBonus, 10), got: strconv.FormatUint(got.LiquidationBonus, 10)},
		{name: "reserveFactor", want: strconv.FormatUint(want.ReserveFactor, 10), got: strconv.FormatUint(got.ReserveFactor, 10)},
		{name: "usageAsCollateralEnabled", want: strconv.FormatBool(want.UsageAsCollateral), got: strconv.FormatBool(got.UsageAsCollateral)},
		{name: "borrowingEnabled", want: strconv.FormatBool(want.BorrowingEnabled), got: strconv.FormatBool(got.BorrowingEnabled)},
		{name: "stableBorrowRateEnabled", want: strconv.FormatBool(want.StableBorrowEnabled), got: strconv.FormatBool(got.StableBorrowEnabled)},
		{name: "interestRateStrategy", want: want.InterestRateStrategy.Hex(), got: got.InterestRateStrategy.Hex(), unsetAddr: want.InterestRateStrategy == zero},
		{name: "isActive", want: strconv.FormatBool(want.IsActive), got: strconv.FormatBool(got.IsActive)},
		{name: "isFrozen", want: strconv.FormatBool(want.IsFrozen), got: strconv.FormatBool(got.IsFrozen)},
	}

	for _, f := range fields {
		if skipUnsetAddresses && f.unsetAddr {
			continue
		}
		if f.want != f.got {
			return Mismatch{Field: f.name, Expected: f.want, Actual: f.got}, true
		}
	}
	return Mismatch{}, false
}
