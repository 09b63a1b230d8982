package solver

import (
	"math"
	"testing"

	"github.com/defistate/defistate-amm-go/protocols/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve(t *testing.T) {
	testCases := []struct {
		name        string
		x, y, dx    uint64
		expectedOut uint64
	}{
		{name: "balanced pool, small trade", x: 1000, y: 1000, dx: 10, expectedOut: 9},
		{name: "balanced pool, large trade", x: 1000, y: 1000, dx: 997, expectedOut: 752},
		{name: "balanced pool, medium trade", x: 1000, y: 1000, dx: 798, expectedOut: 667},
		{name: "imbalanced pool", x: 1000, y: 2000, dx: 100, expectedOut: 105},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Solve(tc.x, tc.y, tc.dx)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedOut, res.AmountOut)
			assert.True(t, res.Converged)
			assert.LessOrEqual(t, res.Iterations, MaxIterations)
			assert.Greater(t, res.NewY, 0.0)
			assert.Less(t, res.NewY, float64(tc.y))
		})
	}
}

func TestSolve_ConvergesNearPeg(t *testing.T) {
	res, err := Solve(1000, 1000, 10)
	require.NoError(t, err)
	assert.InDelta(t, 990.000005, res.NewY, 1e-6)
	assert.Less(t, res.Iterations, MaxIterations)
}

func TestSolve_IterationCap(t *testing.T) {
	// Starting far above the root, Newton needs well over ten steps here.
	res, err := Solve(1, 1_000_000_000_000_000_000, 1_000_000_000_000_000)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, MaxIterations, res.Iterations)
	assert.InEpsilon(t, 1.7326158252e16, res.NewY, 1e-6)
	assert.Greater(t, res.AmountOut, uint64(0))
	assert.Less(t, res.AmountOut, uint64(1_000_000_000_000_000_000))
}

func TestSolve_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		x, y, dx    uint64
		expectedErr error
	}{
		{name: "empty input reserve", x: 0, y: 1000, dx: 10, expectedErr: ErrNoSolution},
		{name: "empty output reserve", x: 1000, y: 0, dx: 10, expectedErr: ErrNoSolution},
		{name: "output rounds to zero", x: 1000, y: 1000, dx: 1, expectedErr: ErrNoSolution},
		{name: "nothing added", x: 1000, y: 1000, dx: 0, expectedErr: ErrNoSolution},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Solve(tc.x, tc.y, tc.dx)
			require.Error(t, err)
			assert.ErrorIs(t, err, pool.ErrInsufficientLiquidity)
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Equal(t, Result{}, res)
		})
	}
}

func TestSolve_PreservesInvariant(t *testing.T) {
	reserves := []struct{ x, y uint64 }{
		{1000, 1000},
		{1_000_000_000_000, 1_000_000_000_000},
		{1_000_000_000_000, 3_000_000_000_000},
		{1_000_000_000_000_000, 1_000_000_000_000_000},
		{1_000_000_000_000_000_000, 1_000_000_000_000_000_000},
		{1_000_000_000_000_000_000, 300_000_000_000_000_000},
		{5_000_000_000_000_000_000, 1_000_000_000_000_000_000},
	}
	trades := []uint64{7, 10, 997, 1_000_000, 1_000_000_000, 1_000_000_000_000, 1_000_000_000_000_000}

	for _, r := range reserves {
		k := Invariant(r.x, r.y)
		for _, dx := range trades {
			res, err := Solve(r.x, r.y, dx)
			if err != nil {
				assert.ErrorIs(t, err, pool.ErrInsufficientLiquidity)
				continue
			}
			require.Less(t, res.AmountOut, r.y)

			after := Invariant(r.x+dx, r.y-res.AmountOut)
			assert.GreaterOrEqual(t, after.Cmp(k), 0, "k decreased: reserves=(%d, %d) dx=%d out=%d", r.x, r.y, dx, res.AmountOut)
		}
	}
}

func TestSolve_LargeReservesDoNotOverpay(t *testing.T) {
	testCases := []struct {
		name        string
		x, y, dx    uint64
		expectedOut uint64
	}{
		// The float solve alone would pay 1024 and 9 here.
		{name: "18-decimal balanced pool", x: 1_000_000_000_000_000_000, y: 1_000_000_000_000_000_000, dx: 1000, expectedOut: 999},
		{name: "12-decimal imbalanced pool", x: 1_000_000_000_000, y: 3_000_000_000_000, dx: 7, expectedOut: 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Solve(tc.x, tc.y, tc.dx)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedOut, res.AmountOut)

			// One more unit of output would cross the curve.
			k := Invariant(tc.x, tc.y)
			assert.GreaterOrEqual(t, Invariant(tc.x+tc.dx, tc.y-res.AmountOut).Cmp(k), 0)
			assert.Negative(t, Invariant(tc.x+tc.dx, tc.y-res.AmountOut-1).Cmp(k))
		})
	}
}

func TestSolve_KeepsIterateBeforeConvergedStep(t *testing.T) {
	// Reference loop: a step smaller than the tolerance ends the solve
	// without being applied.
	reference := func(x, y, dx uint64) float64 {
		fx, fy := float64(x), float64(y)
		k := fx*fx*fx*fy + fy*fy*fy*fx
		newX := fx + float64(dx)
		newX3 := newX * newX * newX
		ny := fy
		for i := 0; i < MaxIterations; i++ {
			f := newX*ny*ny*ny + newX3*ny - k
			fPrime := 3*newX*ny*ny + newX3
			next := ny - f/fPrime
			if math.Abs(next-ny) < Tolerance {
				break
			}
			ny = next
		}
		return ny
	}

	for _, tc := range []struct{ x, y, dx uint64 }{
		{1000, 1000, 10},
		{1000, 1000, 997},
		{1000, 2000, 100},
		{1_000_000, 1_000_000, 10_000},
	} {
		res, err := Solve(tc.x, tc.y, tc.dx)
		require.NoError(t, err)
		require.True(t, res.Converged)
		assert.Equal(t, reference(tc.x, tc.y, tc.dx), res.NewY, "x=%d y=%d dx=%d", tc.x, tc.y, tc.dx)
	}
}

func TestInvariant(t *testing.T) {
	assert.Equal(t, "2000000000000", Invariant(1000, 1000).String())
	assert.Equal(t, "0", Invariant(0, 1000).String())

	// (2^64-1)^4 * 2 needs more than 256 bits.
	k := Invariant(math.MaxUint64, math.MaxUint64)
	assert.Greater(t, k.BitLen(), 256)
}

func BenchmarkSolve(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Solve(1_000_000, 1_000_000, 10_000)
	}
}
