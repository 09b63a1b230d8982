package calculator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/defistate/defistate-amm-go/protocols/pool"
	"github.com/holiman/uint256"
)

var (
	// basisPointDivisor is a constant representing 100% in basis points (10000).
	basisPointDivisor = uint256.NewInt(pool.BasisPointDivisor)
	one               = uint256.NewInt(1)

	// ErrInvalidState is returned for internal calculation errors, like division by zero.
	ErrInvalidState = errors.New("invalid internal state")
)

// Calculator holds reusable 256-bit integers to avoid allocations during calculations.
// Instances of this struct are NOT safe for concurrent use by themselves.
// They are intended to be managed by the sync.Pool below.
type Calculator struct {
	// Reusable objects for GetAmountOut
	amountInAfterFee *uint256.Int
	numerator        *uint256.Int
	denominator      *uint256.Int

	// Reusable objects for GetAmountIn
	feeMultiplier *uint256.Int
	numeratorIn   *uint256.Int
	denominatorIn *uint256.Int
	amountIn      *uint256.Int
}

// calculatorPool manages a pool of Calculator objects, allowing for safe concurrent use
// and reducing memory allocations.
var calculatorPool = sync.Pool{
	New: func() any {
		return &Calculator{
			amountInAfterFee: new(uint256.Int),
			numerator:        new(uint256.Int),
			denominator:      new(uint256.Int),
			feeMultiplier:    new(uint256.Int),
			numeratorIn:      new(uint256.Int),
			denominatorIn:    new(uint256.Int),
			amountIn:         new(uint256.Int),
		}
	},
}

// GetAmountOut calculates the output of an exact-input swap on an x*y=k curve:
//
//	fee       = amountIn * feeBps / 10000
//	amountOut = reserveOut * (amountIn - fee) / (reserveIn + amountIn - fee)
//
// Every product is formed in 256 bits, so no intermediate can wrap.
func GetAmountOut(amountIn, reserveIn, reserveOut uint64, feeBps uint16) (amountOut uint64, fee uint64, err error) {
	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)
	return calc.getAmountOut(amountIn, reserveIn, reserveOut, feeBps)
}

// GetAmountIn calculates the input required for a desired output. The result is
// rounded up so that GetAmountOut(GetAmountIn(x)) >= x.
func GetAmountIn(amountOut, reserveIn, reserveOut uint64, feeBps uint16) (uint64, error) {
	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)
	return calc.getAmountIn(amountOut, reserveIn, reserveOut, feeBps)
}

// getAmountOut is the internal calculation method that uses the pre-allocated fields.
func (c *Calculator) getAmountOut(amountIn, reserveIn, reserveOut uint64, feeBps uint16) (uint64, uint64, error) {
	if amountIn == 0 {
		return 0, 0, pool.ErrAmountIsZero
	}
	if err := pool.ValidateFee(feeBps); err != nil {
		return 0, 0, err
	}

	fee, net := pool.SplitFee(amountIn, feeBps)

	c.amountInAfterFee.SetUint64(net)
	c.numerator.SetUint64(reserveOut)
	c.numerator.Mul(c.numerator, c.amountInAfterFee)
	c.denominator.SetUint64(reserveIn)
	c.denominator.Add(c.denominator, c.amountInAfterFee)

	if c.denominator.IsZero() {
		return 0, 0, fmt.Errorf("%w: pool denominator is zero", ErrInvalidState)
	}

	// numerator / denominator <= reserveOut, so the quotient always fits.
	c.numerator.Div(c.numerator, c.denominator)
	amountOut := c.numerator.Uint64()

	if amountOut >= reserveOut {
		return 0, 0, fmt.Errorf("%w: amountOut (%d) is >= reserveOut (%d)", pool.ErrInsufficientLiquidity, amountOut, reserveOut)
	}
	return amountOut, fee, nil
}

// getAmountIn is the internal calculation method for finding the required input for a desired output.
func (c *Calculator) getAmountIn(amountOut, reserveIn, reserveOut uint64, feeBps uint16) (uint64, error) {
	if amountOut == 0 {
		return 0, pool.ErrAmountIsZero
	}
	if err := pool.ValidateFee(feeBps); err != nil {
		return 0, err
	}
	if reserveIn == 0 || amountOut >= reserveOut {
		return 0, fmt.Errorf("%w: requested amountOut (%d) is >= reserveOut (%d)", pool.ErrInsufficientLiquidity, amountOut, reserveOut)
	}

	// amountIn = (reserveIn * amountOut * 10000) / ((reserveOut - amountOut) * (10000 - feeBps)) + 1
	c.numeratorIn.SetUint64(reserveIn)
	c.amountIn.SetUint64(amountOut)
	c.numeratorIn.Mul(c.numeratorIn, c.amountIn)
	c.numeratorIn.Mul(c.numeratorIn, basisPointDivisor)

	c.feeMultiplier.SetUint64(uint64(feeBps))
	c.feeMultiplier.Sub(basisPointDivisor, c.feeMultiplier)
	c.denominatorIn.SetUint64(reserveOut - amountOut)
	c.denominatorIn.Mul(c.denominatorIn, c.feeMultiplier)

	c.amountIn.Div(c.numeratorIn, c.denominatorIn)
	c.amountIn.Add(c.amountIn, one)

	if !c.amountIn.IsUint64() {
		return 0, fmt.Errorf("%w: required amountIn %s", pool.ErrOverflow, c.amountIn.Dec())
	}
	return c.amountIn.Uint64(), nil
}
