// Package solver finds the output side of a stable-swap trade by solving
//
//	x'·y'³ + x'³·y' = x³·y + y³·x
//
// for y' with Newton-Raphson. Floating point is confined to this package:
// callers pass integer reserves in and get an integer amount out, and the
// settled amount is checked against the curve in exact integer arithmetic.
package solver

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/defistate/defistate-amm-go/protocols/pool"
)

const (
	// MaxIterations caps the number of Newton steps per solve.
	MaxIterations = 10
	// Tolerance is the step size below which the solve is considered converged,
	// and the derivative magnitude below which it is abandoned.
	Tolerance = 1e-12
)

var (
	// ErrFlatDerivative is returned when f'(y) vanishes and no step can be taken.
	ErrFlatDerivative = errors.New("derivative below tolerance")
	// ErrNoSolution is returned when the solved reserve cannot yield a valid output.
	ErrNoSolution = errors.New("no valid output reserve")
)

// Result describes a finished solve.
type Result struct {
	NewY float64 // solved output reserve
	// AmountOut is floor(y - NewY), lowered to the largest amount for which
	// the settled reserves keep x³y + y³x from decreasing.
	AmountOut  uint64
	Iterations int // Newton steps taken
	// Converged is false when MaxIterations was reached first; NewY is then
	// the last iterate.
	Converged bool
}

// Invariant returns x³y + y³x exactly. The value can exceed 256 bits for
// 64-bit reserves.
func Invariant(x, y uint64) *big.Int {
	return invariant(new(big.Int).SetUint64(x), new(big.Int).SetUint64(y))
}

func invariant(x, y *big.Int) *big.Int {
	// x³y + y³x = xy(x² + y²)
	sum := new(big.Int).Mul(x, x)
	sum.Add(sum, new(big.Int).Mul(y, y))
	k := new(big.Int).Mul(x, y)
	return k.Mul(k, sum)
}

// Solve returns the output of adding dx to reserve x of a pool holding (x, y).
// All failures wrap pool.ErrInsufficientLiquidity.
func Solve(x, y, dx uint64) (Result, error) {
	if x == 0 || y == 0 {
		return Result{}, fmt.Errorf("%w: %w: reserves (%d, %d)", pool.ErrInsufficientLiquidity, ErrNoSolution, x, y)
	}

	fx, fy := float64(x), float64(y)
	k := fx*fx*fx*fy + fy*fy*fy*fx
	newX := fx + float64(dx)
	newX3 := newX * newX * newX

	// f(y) = newX·y³ + newX³·y - k is increasing and convex for y > 0, and
	// f(y) > 0 at the starting point, so the iterates descend toward the root.
	res := Result{NewY: fy}
	for res.Iterations < MaxIterations {
		res.Iterations++
		ny := res.NewY
		f := newX*ny*ny*ny + newX3*ny - k
		fPrime := 3*newX*ny*ny + newX3

		if math.Abs(fPrime) < Tolerance {
			return Result{}, fmt.Errorf("%w: %w: f'(%g) = %g", pool.ErrInsufficientLiquidity, ErrFlatDerivative, ny, fPrime)
		}

		next := ny - f/fPrime
		if math.Abs(next-ny) < Tolerance {
			res.Converged = true
			break
		}
		res.NewY = next
	}

	if err := res.settle(x, y, dx); err != nil {
		return Result{}, err
	}
	return res, nil
}

// settle converts the solved reserve into an integer output.
func (r *Result) settle(x, y, dx uint64) error {
	fy := float64(y)
	switch {
	case math.IsNaN(r.NewY) || math.IsInf(r.NewY, 0):
		return fmt.Errorf("%w: %w: solved reserve is %g", pool.ErrInsufficientLiquidity, ErrNoSolution, r.NewY)
	case r.NewY <= 0:
		return fmt.Errorf("%w: %w: solved reserve %g is not positive", pool.ErrInsufficientLiquidity, ErrNoSolution, r.NewY)
	case r.NewY >= fy:
		return fmt.Errorf("%w: %w: solved reserve %g does not decrease from %g", pool.ErrInsufficientLiquidity, ErrNoSolution, r.NewY, fy)
	}

	diff := fy - r.NewY
	if diff >= fy {
		return fmt.Errorf("%w: %w: output %g drains the reserve", pool.ErrInsufficientLiquidity, ErrNoSolution, diff)
	}
	r.AmountOut = min(uint64(diff), y-1)
	r.AmountOut = maxOutput(x, y, dx, r.AmountOut)
	if r.AmountOut == 0 {
		return fmt.Errorf("%w: %w: output rounds to zero", pool.ErrInsufficientLiquidity, ErrNoSolution)
	}
	return nil
}

// maxOutput returns the largest output <= upper that leaves the reserves
// (x+dx, y-output) on or above the curve through (x, y). Rounding in the
// float solve can place NewY below the true root at large reserves.
func maxOutput(x, y, dx, upper uint64) uint64 {
	k := Invariant(x, y)
	newX := new(big.Int).SetUint64(x)
	newX.Add(newX, new(big.Int).SetUint64(dx))

	newY := new(big.Int)
	holds := func(out uint64) bool {
		newY.SetUint64(y - out)
		return invariant(newX, newY).Cmp(k) >= 0
	}

	if holds(upper) {
		return upper
	}
	// holds(0) is always true and holds(upper) is false.
	lo, hi := uint64(0), upper
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if holds(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
