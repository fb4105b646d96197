package raymath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// Ray is the 1e27 fixed-point scaling unit the protocol uses for rates and
// indexes.
var Ray = new(big.Int).Exp(big.NewInt(10), big.NewInt(27), nil)

// PercentageFactor is the 1e4 basis-point scaling unit used by risk
// parameters (loan-to-value, liquidation threshold, etc.).
var PercentageFactor = big.NewInt(10_000)

var ErrOverflow = errors.New("raymath: uint256 overflow")
var ErrOutOfRange = errors.New("raymath: value outside uint256 range")

// Sum adds ray-scaled terms with uint256 overflow checking. The protocol's
// strategy contracts compute their maximum variable borrow rate this way, so
// the harness must reproduce the addition under the same width constraints.
func Sum(terms ...*big.Int) (*big.Int, error) {
	acc := uint256.NewInt(0)
	for _, term := range terms {
		u, overflow := uint256.FromBig(term)
		if overflow || term.Sign() < 0 {
			return nil, ErrOutOfRange
		}
		var carry bool
		acc, carry = acc.AddOverflow(acc, u)
		if carry {
			return nil, ErrOverflow
		}
	}
	return acc.ToBig(), nil
}

// WholeUnits scales a whole-token amount by the asset's decimal precision.
func WholeUnits(amount int64, decimals uint8) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return scale.Mul(scale, big.NewInt(amount))
}
