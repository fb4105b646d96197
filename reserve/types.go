package reserve

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/listing-verifier-go/raymath"
)

// TokenDescriptor is the registry's minimal identity for a listed asset.
type TokenDescriptor struct {
	Symbol  string         `json:"symbol"`
	Address common.Address `json:"address"`
}

// Reserve is a safe, structured snapshot of one listed asset's full
// configuration. Instances are value objects: constructed fresh on every
// snapshot read and never mutated in place.
type Reserve struct {
	Symbol               string         `json:"symbol"`
	Underlying           common.Address `json:"underlying"`
	AToken               common.Address `json:"aToken"`
	StableDebtToken      common.Address `json:"stableDebtToken"`
	VariableDebtToken    common.Address `json:"variableDebtToken"`
	Decimals             uint8          `json:"decimals"`
	LoanToValue          uint64         `json:"loanToValue"`          // bps
	LiquidationThreshold uint64         `json:"liquidationThreshold"` // bps
	LiquidationBonus     uint64         `json:"liquidationBonus"`     // bps
	ReserveFactor        uint64         `json:"reserveFactor"`        // bps
	UsageAsCollateral    bool           `json:"usageAsCollateralEnabled"`
	BorrowingEnabled     bool           `json:"borrowingEnabled"`
	StableBorrowEnabled  bool           `json:"stableBorrowRateEnabled"`
	InterestRateStrategy common.Address `json:"interestRateStrategy"`
	IsActive             bool           `json:"isActive"`
	IsFrozen             bool           `json:"isFrozen"`
}

// StrategySpec holds the seven curve coefficients of an interest-rate
// strategy contract. All values are ray-scaled (1e27) ratios.
type StrategySpec struct {
	OptimalUtilization     *big.Int `json:"optimalUtilization"`
	ExcessUtilization      *big.Int `json:"excessUtilization"`
	BaseVariableBorrowRate *big.Int `json:"baseVariableBorrowRate"`
	VariableRateSlope1     *big.Int `json:"variableRateSlope1"`
	VariableRateSlope2     *big.Int `json:"variableRateSlope2"`
	StableRateSlope1       *big.Int `json:"stableRateSlope1"`
	StableRateSlope2       *big.Int `json:"stableRateSlope2"`
}

// MaxVariableBorrowRate derives the curve's ceiling rate. The deployed
// strategy must report exactly base + variableSlope1 + variableSlope2; the
// value is derived here under the same uint256 width constraints the contract
// computes it with.
func (s StrategySpec) MaxVariableBorrowRate() (*big.Int, error) {
	return raymath.Sum(s.BaseVariableBorrowRate, s.VariableRateSlope1, s.VariableRateSlope2)
}

// TokenImpls names the implementation contracts expected behind the three
// upgradeable token proxies of a listed reserve. A zero address leaves that
// token unconstrained.
type TokenImpls struct {
	AToken            common.Address `json:"aToken"`
	StableDebtToken   common.Address `json:"stableDebtToken"`
	VariableDebtToken common.Address `json:"variableDebtToken"`
}
