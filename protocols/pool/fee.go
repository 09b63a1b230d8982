package pool

import (
	"github.com/defistate/defistate-amm-go/protocols/pool/fullmath"
)

// BasisPointDivisor represents 100% in basis points.
const BasisPointDivisor = 10_000

// SplitFee splits amountIn into the fee kept by the pool and the net amount that
// moves along the curve. fee = amountIn * feeBps / 10000, truncated.
// feeBps must already be validated (< BasisPointDivisor).
func SplitFee(amountIn uint64, feeBps uint16) (fee uint64, net uint64) {
	// amountIn * feeBps / 10000 <= amountIn, so MulDiv cannot overflow.
	fee, _ = fullmath.MulDiv(amountIn, uint64(feeBps), BasisPointDivisor)
	return fee, amountIn - fee
}

// ValidateFee reports whether feeBps is a usable fee rate.
func ValidateFee(feeBps uint16) error {
	if feeBps >= BasisPointDivisor {
		return ErrInvalidFee
	}
	return nil
}
