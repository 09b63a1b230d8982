package pool

import (
	"errors"
	"fmt"

	"github.com/defistate/defistate-amm-go/protocols/pool/fullmath"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// Policy is the add/remove-liquidity rule. Every pool variant delegates to a
// Policy so that liquidity accounting cannot drift between variants.
//
// The Mint/Burn methods are pure quotes over a State value; AddLiquidity and
// RemoveLiquidity apply the quoted result to the State they are given.
type Policy interface {
	MintAmount(s State, amountOne, amountTwo uint64) (uint64, error)
	AddLiquidity(s *State, amountOne, amountTwo uint64) (uint64, error)
	BurnAmounts(s State, liquidity uint64) (amountOne, amountTwo uint64, err error)
	RemoveLiquidity(s *State, liquidity uint64) (amountOne, amountTwo uint64, err error)
}

// ProRata is the liquidity policy used by both pool variants: geometric-mean
// bootstrap, proportional mint on the more constraining side, pro-rata burn.
var ProRata Policy = proRata{}

var _ Policy = proRata{}

type proRata struct{}

// MintAmount returns the liquidity that AddLiquidity would mint.
func (proRata) MintAmount(s State, amountOne, amountTwo uint64) (uint64, error) {
	if amountOne == 0 || amountTwo == 0 {
		return 0, ErrAmountIsZero
	}

	if s.IsEmpty() {
		return fullmath.SqrtProduct(amountOne, amountTwo), nil
	}

	if s.ReserveOne == 0 || s.ReserveTwo == 0 {
		return 0, fmt.Errorf("%w: one-sided reserves (%d, %d)", ErrInsufficientLiquidity, s.ReserveOne, s.ReserveTwo)
	}

	liquidityOne, err := fullmath.MulDiv(amountOne, s.TotalSupply, s.ReserveOne)
	if err != nil {
		return 0, wrapMathErr(err)
	}
	liquidityTwo, err := fullmath.MulDiv(amountTwo, s.TotalSupply, s.ReserveTwo)
	if err != nil {
		return 0, wrapMathErr(err)
	}

	minted := min(liquidityOne, liquidityTwo)
	if minted == 0 {
		return 0, fmt.Errorf("%w: deposit (%d, %d) mints no liquidity", ErrInsufficientLiquidity, amountOne, amountTwo)
	}
	return minted, nil
}

// AddLiquidity deposits both amounts and mints liquidity shares. The deposit
// ratio is not checked against the reserve ratio; excess on the non-limiting
// side stays in the pool.
func (p proRata) AddLiquidity(s *State, amountOne, amountTwo uint64) (uint64, error) {
	minted, err := p.MintAmount(*s, amountOne, amountTwo)
	if err != nil {
		return 0, err
	}

	reserveOne, err := smath.Add(s.ReserveOne, amountOne)
	if err != nil {
		return 0, fmt.Errorf("%w: reserve one %d + %d", ErrOverflow, s.ReserveOne, amountOne)
	}
	reserveTwo, err := smath.Add(s.ReserveTwo, amountTwo)
	if err != nil {
		return 0, fmt.Errorf("%w: reserve two %d + %d", ErrOverflow, s.ReserveTwo, amountTwo)
	}
	totalSupply, err := smath.Add(s.TotalSupply, minted)
	if err != nil {
		return 0, fmt.Errorf("%w: total supply %d + %d", ErrOverflow, s.TotalSupply, minted)
	}

	s.ReserveOne, s.ReserveTwo, s.TotalSupply = reserveOne, reserveTwo, totalSupply
	return minted, nil
}

// BurnAmounts returns the reserves RemoveLiquidity would pay out for liquidity.
func (proRata) BurnAmounts(s State, liquidity uint64) (uint64, uint64, error) {
	if liquidity == 0 {
		return 0, 0, ErrAmountIsZero
	}
	if liquidity > s.TotalSupply {
		return 0, 0, fmt.Errorf("%w: burning %d of %d outstanding", ErrInsufficientLiquidity, liquidity, s.TotalSupply)
	}

	// liquidity <= TotalSupply, so both quotients are bounded by the reserves.
	amountOne, err := fullmath.MulDiv(s.ReserveOne, liquidity, s.TotalSupply)
	if err != nil {
		return 0, 0, wrapMathErr(err)
	}
	amountTwo, err := fullmath.MulDiv(s.ReserveTwo, liquidity, s.TotalSupply)
	if err != nil {
		return 0, 0, wrapMathErr(err)
	}
	return amountOne, amountTwo, nil
}

// RemoveLiquidity burns liquidity and pays out the pro-rata share of both reserves.
func (p proRata) RemoveLiquidity(s *State, liquidity uint64) (uint64, uint64, error) {
	amountOne, amountTwo, err := p.BurnAmounts(*s, liquidity)
	if err != nil {
		return 0, 0, err
	}

	s.ReserveOne -= amountOne
	s.ReserveTwo -= amountTwo
	s.TotalSupply -= liquidity
	return amountOne, amountTwo, nil
}

// Quote returns the amount of the other asset that matches amountA at the
// current reserve ratio: amountA * reserveB / reserveA. Callers use it to build
// deposits that do not leave an unrewarded excess on one side.
func Quote(amountA, reserveA, reserveB uint64) (uint64, error) {
	if amountA == 0 {
		return 0, ErrAmountIsZero
	}
	if reserveA == 0 || reserveB == 0 {
		return 0, ErrInsufficientLiquidity
	}
	amountB, err := fullmath.MulDiv(amountA, reserveB, reserveA)
	if err != nil {
		return 0, wrapMathErr(err)
	}
	return amountB, nil
}

func wrapMathErr(err error) error {
	switch {
	case errors.Is(err, fullmath.ErrOverflow):
		return fmt.Errorf("%w: %v", ErrOverflow, err)
	case errors.Is(err, fullmath.ErrDivisionByZero):
		return fmt.Errorf("%w: %v", ErrInsufficientLiquidity, err)
	default:
		return err
	}
}
