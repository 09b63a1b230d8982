package fullmath

import (
	"errors"
	"sync"

	"github.com/holiman/uint256"
)

var (
	// ErrDivisionByZero is returned when MulDiv is called with a zero denominator.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOverflow is returned when a widened result does not fit back into a uint64.
	ErrOverflow = errors.New("result overflows uint64")
)

// scratch holds reusable 256-bit values so that a MulDiv call does not allocate.
// Instances are NOT safe for concurrent use; they are handed out by scratchPool.
type scratch struct {
	a *uint256.Int
	b *uint256.Int
	d *uint256.Int
	z *uint256.Int
}

var scratchPool = sync.Pool{
	New: func() any {
		return &scratch{
			a: new(uint256.Int),
			b: new(uint256.Int),
			d: new(uint256.Int),
			z: new(uint256.Int),
		}
	},
}

// MulDiv computes floor(a * b / d) with a 256-bit intermediate product,
// so a*b never wraps. The quotient must fit in a uint64.
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}

	s := scratchPool.Get().(*scratch)
	defer scratchPool.Put(s)

	s.a.SetUint64(a)
	s.b.SetUint64(b)
	s.d.SetUint64(d)

	// a and b are both < 2^64, so the product is < 2^128 and MulDivOverflow
	// can never report a 256-bit overflow here.
	s.z.MulDivOverflow(s.a, s.b, s.d)
	if !s.z.IsUint64() {
		return 0, ErrOverflow
	}
	return s.z.Uint64(), nil
}

// SqrtProduct returns floor(sqrt(a * b)). The product is formed in 256 bits
// and its root is always < 2^64.
func SqrtProduct(a, b uint64) uint64 {
	s := scratchPool.Get().(*scratch)
	defer scratchPool.Put(s)

	s.a.SetUint64(a)
	s.b.SetUint64(b)
	s.z.Mul(s.a, s.b)
	s.z.Sqrt(s.z)
	return s.z.Uint64()
}

// Product returns a * b as a freshly allocated 256-bit value.
func Product(a, b uint64) *uint256.Int {
	z := uint256.NewInt(a)
	return z.Mul(z, uint256.NewInt(b))
}
