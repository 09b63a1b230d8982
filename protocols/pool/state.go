package pool

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// State is the accounting record shared by every pool variant.
// It is a plain value: copying a State copies the whole pool.
type State struct {
	TokenOne      common.Address `json:"tokenOne"`
	TokenTwo      common.Address `json:"tokenTwo"`
	ReserveOne    uint64         `json:"reserveOne"`
	ReserveTwo    uint64         `json:"reserveTwo"`
	FeeBps        uint16         `json:"feeBps"` // i.e 30 for 0.3%
	FeeOneAccrued uint64         `json:"feeOneAccrued"`
	FeeTwoAccrued uint64         `json:"feeTwoAccrued"`
	TotalSupply   uint64         `json:"totalSupply"`
}

// NewState returns an empty pool record for the given pair.
// Token identifiers are never interpreted; checking that they differ is the caller's job.
func NewState(tokenOne, tokenTwo common.Address, feeBps uint16) (State, error) {
	if err := ValidateFee(feeBps); err != nil {
		return State{}, fmt.Errorf("%w: got %d", err, feeBps)
	}
	return State{
		TokenOne: tokenOne,
		TokenTwo: tokenTwo,
		FeeBps:   feeBps,
	}, nil
}

// IsEmpty reports whether the pool holds no reserves at all.
func (s State) IsEmpty() bool {
	return s.ReserveOne == 0 && s.ReserveTwo == 0
}

// Reserves returns (reserveIn, reserveOut) ordered by the input side of a swap.
func (s State) Reserves(inputIsTokenOne bool) (reserveIn, reserveOut uint64) {
	if inputIsTokenOne {
		return s.ReserveOne, s.ReserveTwo
	}
	return s.ReserveTwo, s.ReserveOne
}

// ApplySwap settles a computed swap: the full amountIn (fee included) joins the
// input reserve, amountOut leaves the output reserve and fee is accrued on the
// input side. All new values are computed before any field is written, so an
// error leaves the State untouched.
func (s *State) ApplySwap(amountIn, amountOut, fee uint64, inputIsTokenOne bool) error {
	reserveIn, reserveOut := s.Reserves(inputIsTokenOne)
	feeAccrued := s.FeeTwoAccrued
	if inputIsTokenOne {
		feeAccrued = s.FeeOneAccrued
	}

	newReserveIn, err := smath.Add(reserveIn, amountIn)
	if err != nil {
		return fmt.Errorf("%w: input reserve %d + %d", ErrOverflow, reserveIn, amountIn)
	}
	if amountOut >= reserveOut {
		return fmt.Errorf("%w: amountOut (%d) is >= reserveOut (%d)", ErrInsufficientLiquidity, amountOut, reserveOut)
	}
	newReserveOut := reserveOut - amountOut
	newFeeAccrued, err := smath.Add(feeAccrued, fee)
	if err != nil {
		return fmt.Errorf("%w: accrued fee %d + %d", ErrOverflow, feeAccrued, fee)
	}

	if inputIsTokenOne {
		s.ReserveOne, s.ReserveTwo, s.FeeOneAccrued = newReserveIn, newReserveOut, newFeeAccrued
	} else {
		s.ReserveTwo, s.ReserveOne, s.FeeTwoAccrued = newReserveIn, newReserveOut, newFeeAccrued
	}
	return nil
}
