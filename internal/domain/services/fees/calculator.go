// Package fees computes the protocol fee on a transfer principal.
package fees

import (
	"math"

	"github.com/holiman/uint256"
)

// basisPointDivisor converts basis points to a fraction.
const basisPointDivisor = 10000

// Calculate returns floor(feeBp*amount/10000) + flatFee.
//
// The product feeBp*amount is taken in 256-bit space so it cannot overflow
// for any pair of uint64 inputs; the final addition saturates at
// math.MaxUint64 instead of wrapping. Pure function, zero is a valid result.
func Calculate(amount, feeBp, flatFee uint64) uint64 {
	pct := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(feeBp))
	pct.Div(pct, uint256.NewInt(basisPointDivisor))
	if !pct.IsUint64() {
		return math.MaxUint64
	}
	p := pct.Uint64()
	if flatFee > math.MaxUint64-p {
		return math.MaxUint64
	}
	return p + flatFee
}
