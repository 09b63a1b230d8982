package constantproduct

import (
	"fmt"
	"math/big"

	"github.com/defistate/defistate-amm-go/protocols/constantproduct/calculator"
	"github.com/defistate/defistate-amm-go/protocols/pool"
	"github.com/defistate/defistate-amm-go/protocols/pool/fullmath"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// PriceDecimals is the number of fractional digits SpotPrice keeps.
const PriceDecimals = 18

// Pool is an x*y=k liquidity pool.
// A Pool is NOT safe for concurrent use; callers serialize access.
type Pool struct {
	state  pool.State
	policy pool.Policy
}

// New creates an empty pool for the pair.
func New(tokenOne, tokenTwo common.Address, feeBps uint16) (*Pool, error) {
	state, err := pool.NewState(tokenOne, tokenTwo, feeBps)
	if err != nil {
		return nil, err
	}
	return &Pool{state: state, policy: pool.ProRata}, nil
}

// NewFromState restores a pool from a previously captured State.
func NewFromState(state pool.State) (*Pool, error) {
	if err := pool.ValidateFee(state.FeeBps); err != nil {
		return nil, fmt.Errorf("%w: got %d", err, state.FeeBps)
	}
	return &Pool{state: state, policy: pool.ProRata}, nil
}

// State returns a copy of the pool record.
func (p *Pool) State() pool.State {
	return p.state
}

// QuoteSwap returns what Swap would pay out for amountIn without touching the pool.
func (p *Pool) QuoteSwap(amountIn uint64, inputIsTokenOne bool) (amountOut uint64, fee uint64, err error) {
	reserveIn, reserveOut := p.state.Reserves(inputIsTokenOne)
	return calculator.GetAmountOut(amountIn, reserveIn, reserveOut, p.state.FeeBps)
}

// Swap sells amountIn of one token for the other. The full amountIn, fee
// included, joins the input reserve.
func (p *Pool) Swap(amountIn uint64, inputIsTokenOne bool) (uint64, error) {
	amountOut, fee, err := p.QuoteSwap(amountIn, inputIsTokenOne)
	if err != nil {
		return 0, err
	}
	if err := p.state.ApplySwap(amountIn, amountOut, fee, inputIsTokenOne); err != nil {
		return 0, err
	}
	return amountOut, nil
}

// QuoteAmountIn returns the input needed for Swap to pay out at least amountOut.
func (p *Pool) QuoteAmountIn(amountOut uint64, inputIsTokenOne bool) (uint64, error) {
	reserveIn, reserveOut := p.state.Reserves(inputIsTokenOne)
	return calculator.GetAmountIn(amountOut, reserveIn, reserveOut, p.state.FeeBps)
}

// AddLiquidity deposits both tokens and returns the minted liquidity.
func (p *Pool) AddLiquidity(amountOne, amountTwo uint64) (uint64, error) {
	return p.policy.AddLiquidity(&p.state, amountOne, amountTwo)
}

// RemoveLiquidity burns liquidity and returns the withdrawn amounts.
func (p *Pool) RemoveLiquidity(liquidity uint64) (uint64, uint64, error) {
	return p.policy.RemoveLiquidity(&p.state, liquidity)
}

// Invariant returns k = ReserveOne * ReserveTwo.
func (p *Pool) Invariant() *uint256.Int {
	return fullmath.Product(p.state.ReserveOne, p.state.ReserveTwo)
}

// SpotPrice returns the price of token one in units of token two.
func (p *Pool) SpotPrice() (decimal.Decimal, error) {
	if p.state.ReserveOne == 0 || p.state.ReserveTwo == 0 {
		return decimal.Zero, fmt.Errorf("%w: reserves (%d, %d)", pool.ErrInsufficientLiquidity, p.state.ReserveOne, p.state.ReserveTwo)
	}
	one := decimal.NewFromBigInt(new(big.Int).SetUint64(p.state.ReserveOne), 0)
	two := decimal.NewFromBigInt(new(big.Int).SetUint64(p.state.ReserveTwo), 0)
	return two.DivRound(one, PriceDecimals), nil
}
