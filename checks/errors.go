package checks

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ReserveNotFoundError reports an expected symbol absent from a snapshot.
type ReserveNotFoundError struct {
	Symbol string
}

func (e *ReserveNotFoundError) Error() string {
	return fmt.Sprintf("reserve %s not found in snapshot", e.Symbol)
}

// FieldMismatchError reports a listed reserve whose configuration diverges
// from the expected spec on one field.
type FieldMismatchError struct {
	Symbol   string
	Field    string
	Expected string
	Actual   string
}

func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("reserve %s: %s expected %s, got %s", e.Symbol, e.Field, e.Expected, e.Actual)
}

// StrategyAddressMismatchError reports an asset attached to the wrong
// interest-rate strategy contract.
type StrategyAddressMismatchError struct {
	Asset    common.Address
	Expected common.Address
	Actual   common.Address
}

func (e *StrategyAddressMismatchError) Error() string {
	return fmt.Sprintf("asset %s: strategy expected %s, got %s",
		e.Asset.Hex(), e.Expected.Hex(), e.Actual.Hex())
}

// CurveParameterMismatchError reports a strategy curve coefficient that
// differs from the expected ray value.
type CurveParameterMismatchError struct {
	Strategy common.Address
	Field    string
	Expected *big.Int
	Actual   *big.Int
}

func (e *CurveParameterMismatchError) Error() string {
	return fmt.Sprintf("strategy %s: %s expected %s, got %s",
		e.Strategy.Hex(), e.Field, e.Expected, e.Actual)
}

// DerivedRateMismatchError reports a strategy whose reported maximum variable
// borrow rate is not the sum of its base rate and variable slopes.
type DerivedRateMismatchError struct {
	Strategy common.Address
	Expected *big.Int
	Actual   *big.Int
}

func (e *DerivedRateMismatchError) Error() string {
	return fmt.Sprintf("strategy %s: max variable borrow rate expected %s (base + slope1 + slope2), got %s",
		e.Strategy.Hex(), e.Expected, e.Actual)
}

// ImplementationMismatchError reports an upgradeable token proxy pointing at
// an unexpected implementation contract.
type ImplementationMismatchError struct {
	Token    string
	Proxy    common.Address
	Expected common.Address
	Actual   common.Address
}

func (e *ImplementationMismatchError) Error() string {
	return fmt.Sprintf("%s proxy %s: implementation expected %s, got %s",
		e.Token, e.Proxy.Hex(), e.Expected.Hex(), e.Actual.Hex())
}

// OracleSourceMismatchError reports an asset resolving to the wrong price
// feed.
type OracleSourceMismatchError struct {
	Asset    common.Address
	Expected common.Address
	Actual   common.Address
}

func (e *OracleSourceMismatchError) Error() string {
	return fmt.Sprintf("asset %s: oracle source expected %s, got %s",
		e.Asset.Hex(), e.Expected.Hex(), e.Actual.Hex())
}
