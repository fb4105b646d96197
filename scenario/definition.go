package scenario

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/defistate/listing-verifier-go/reserve"
)

// Definition is the YAML-loadable form of a listing scenario. Addresses are
// hex strings and ray/token amounts are decimal strings, converted into a
// typed Plan by Resolve.
type Definition struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	NewListings int        `yaml:"newListings"`
	Reserve     ReserveDef `yaml:"reserve"`
	Strategy    string     `yaml:"strategy,omitempty"`
	Curve       CurveDef   `yaml:"curve"`
	Impls       ImplsDef   `yaml:"impls,omitempty"`

	OracleSource string `yaml:"oracleSource,omitempty"`

	Whale         string `yaml:"whale,omitempty"`
	DepositAmount string `yaml:"depositAmount,omitempty"`
	BorrowAmount  string `yaml:"borrowAmount,omitempty"`

	LogReserves bool `yaml:"logReserves,omitempty"`
}

// ReserveDef is the expected reserve configuration. Omitted addresses stay
// unconstrained.
type ReserveDef struct {
	Symbol               string `yaml:"symbol"`
	Underlying           string `yaml:"underlying,omitempty"`
	AToken               string `yaml:"aToken,omitempty"`
	StableDebtToken      string `yaml:"stableDebtToken,omitempty"`
	VariableDebtToken    string `yaml:"variableDebtToken,omitempty"`
	Decimals             uint8  `yaml:"decimals"`
	LoanToValue          uint64 `yaml:"loanToValue"`
	LiquidationThreshold uint64 `yaml:"liquidationThreshold"`
	LiquidationBonus     uint64 `yaml:"liquidationBonus"`
	ReserveFactor        uint64 `yaml:"reserveFactor"`
	UsageAsCollateral    bool   `yaml:"usageAsCollateralEnabled"`
	BorrowingEnabled     bool   `yaml:"borrowingEnabled"`
	StableBorrowEnabled  bool   `yaml:"stableBorrowRateEnabled"`
	InterestRateStrategy string `yaml:"interestRateStrategy,omitempty"`
	IsActive             bool   `yaml:"isActive"`
	IsFrozen             bool   `yaml:"isFrozen"`
}

// CurveDef is the expected strategy curve, ray values as decimal strings.
type CurveDef struct {
	OptimalUtilization     string `yaml:"optimalUtilization"`
	ExcessUtilization      string `yaml:"excessUtilization"`
	BaseVariableBorrowRate string `yaml:"baseVariableBorrowRate"`
	VariableRateSlope1     string `yaml:"variableRateSlope1"`
	VariableRateSlope2     string `yaml:"variableRateSlope2"`
	StableRateSlope1       string `yaml:"stableRateSlope1"`
	StableRateSlope2       string `yaml:"stableRateSlope2"`
}

// ImplsDef names the expected token implementations; omitted entries are
// skipped.
type ImplsDef struct {
	AToken            string `yaml:"aToken,omitempty"`
	StableDebtToken   string `yaml:"stableDebtToken,omitempty"`
	VariableDebtToken string `yaml:"variableDebtToken,omitempty"`
}

// Load reads and parses a scenario definition file.
func Load(path string) (Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("reading scenario file: %w", err)
	}
	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return Definition{}, fmt.Errorf("parsing scenario file %s: %w", path, err)
	}
	return def, nil
}

// Resolve converts the definition into a typed Plan.
func (d Definition) Resolve() (Plan, error) {
	var plan Plan
	var err error

	plan.NewListings = d.NewListings
	if plan.Reserve, err = d.Reserve.resolve(); err != nil {
		return Plan{}, err
	}
	if plan.Strategy, err = parseAddress("strategy", d.Strategy); err != nil {
		return Plan{}, err
	}
	if plan.Curve, err = d.Curve.resolve(); err != nil {
		return Plan{}, err
	}
	if plan.Impls.AToken, err = parseAddress("impls.aToken", d.Impls.AToken); err != nil {
		return Plan{}, err
	}
	if plan.Impls.StableDebtToken, err = parseAddress("impls.stableDebtToken", d.Impls.StableDebtToken); err != nil {
		return Plan{}, err
	}
	if plan.Impls.VariableDebtToken, err = parseAddress("impls.variableDebtToken", d.Impls.VariableDebtToken); err != nil {
		return Plan{}, err
	}
	if plan.OracleSource, err = parseAddress("oracleSource", d.OracleSource); err != nil {
		return Plan{}, err
	}
	if plan.Whale, err = parseAddress("whale", d.Whale); err != nil {
		return Plan{}, err
	}
	if plan.DepositAmount, err = parseAmount("depositAmount", d.DepositAmount); err != nil {
		return Plan{}, err
	}
	if plan.BorrowAmount, err = parseAmount("borrowAmount", d.BorrowAmount); err != nil {
		return Plan{}, err
	}
	plan.LogReserves = d.LogReserves

	return plan, nil
}

func (r ReserveDef) resolve() (reserve.Reserve, error) {
	out := reserve.Reserve{
		Symbol:               r.Symbol,
		Decimals:             r.Decimals,
		LoanToValue:          r.LoanToValue,
		LiquidationThreshold: r.LiquidationThreshold,
		LiquidationBonus:     r.LiquidationBonus,
		ReserveFactor:        r.ReserveFactor,
		UsageAsCollateral:    r.UsageAsCollateral,
		BorrowingEnabled:     r.BorrowingEnabled,
		StableBorrowEnabled:  r.StableBorrowEnabled,
		IsActive:             r.IsActive,
		IsFrozen:             r.IsFrozen,
	}
	var err error
	if out.Underlying, err = parseAddress("reserve.underlying", r.Underlying); err != nil {
		return reserve.Reserve{}, err
	}
	if out.AToken, err = parseAddress("reserve.aToken", r.AToken); err != nil {
		return reserve.Reserve{}, err
	}
	if out.StableDebtToken, err = parseAddress("reserve.stableDebtToken", r.StableDebtToken); err != nil {
		return reserve.Reserve{}, err
	}
	if out.VariableDebtToken, err = parseAddress("reserve.variableDebtToken", r.VariableDebtToken); err != nil {
		return reserve.Reserve{}, err
	}
	if out.InterestRateStrategy, err = parseAddress("reserve.interestRateStrategy", r.InterestRateStrategy); err != nil {
		return reserve.Reserve{}, err
	}
	return out, nil
}

func (c CurveDef) resolve() (reserve.StrategySpec, error) {
	var spec reserve.StrategySpec
	var err error
	if spec.OptimalUtilization, err = parseRay("curve.optimalUtilization", c.OptimalUtilization); err != nil {
		return reserve.StrategySpec{}, err
	}
	if spec.ExcessUtilization, err = parseRay("curve.excessUtilization", c.ExcessUtilization); err != nil {
		return reserve.StrategySpec{}, err
	}
	if spec.BaseVariableBorrowRate, err = parseRay("curve.baseVariableBorrowRate", c.BaseVariableBorrowRate); err != nil {
		return reserve.StrategySpec{}, err
	}
	if spec.VariableRateSlope1, err = parseRay("curve.variableRateSlope1", c.VariableRateSlope1); err != nil {
		return reserve.StrategySpec{}, err
	}
	if spec.VariableRateSlope2, err = parseRay("curve.variableRateSlope2", c.VariableRateSlope2); err != nil {
		return reserve.StrategySpec{}, err
	}
	if spec.StableRateSlope1, err = parseRay("curve.stableRateSlope1", c.StableRateSlope1); err != nil {
		return reserve.StrategySpec{}, err
	}
	if spec.StableRateSlope2, err = parseRay("curve.stableRateSlope2", c.StableRateSlope2); err != nil {
		return reserve.StrategySpec{}, err
	}
	return spec, nil
}

func parseAddress(field, raw string) (common.Address, error) {
	if raw == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%s: %q is not a hex address", field, raw)
	}
	return common.HexToAddress(raw), nil
}

func parseAmount(field, raw string) (*big.Int, error) {
	if raw == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%s: %q is not a non-negative decimal integer", field, raw)
	}
	return v, nil
}

func parseRay(field, raw string) (*big.Int, error) {
	if raw == "" {
		return new(big.Int), nil
	}
	return parseAmount(field, raw)
}
