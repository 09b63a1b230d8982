package stableswap

import (
	"fmt"
	"math/big"

	"github.com/defistate/defistate-amm-go/protocols/pool"
	"github.com/defistate/defistate-amm-go/protocols/stableswap/solver"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// PriceDecimals is the number of fractional digits SpotPrice keeps.
const PriceDecimals = 18

var three = decimal.NewFromInt(3)

// Pool is a stable-swap pool on the curve x³y + y³x = k, which stays close
// to a 1:1 price while the reserves are balanced.
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
	if amountIn == 0 {
		return 0, 0, pool.ErrAmountIsZero
	}

	fee, net := pool.SplitFee(amountIn, p.state.FeeBps)
	reserveIn, reserveOut := p.state.Reserves(inputIsTokenOne)

	res, err := solver.Solve(reserveIn, reserveOut, net)
	if err != nil {
		return 0, 0, err
	}
	if res.AmountOut >= reserveOut {
		return 0, 0, fmt.Errorf("%w: amountOut (%d) is >= reserveOut (%d)", pool.ErrInsufficientLiquidity, res.AmountOut, reserveOut)
	}
	return res.AmountOut, fee, nil
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

// AddLiquidity deposits both tokens and returns the minted liquidity.
func (p *Pool) AddLiquidity(amountOne, amountTwo uint64) (uint64, error) {
	return p.policy.AddLiquidity(&p.state, amountOne, amountTwo)
}

// RemoveLiquidity burns liquidity and returns the withdrawn amounts.
func (p *Pool) RemoveLiquidity(liquidity uint64) (uint64, uint64, error) {
	return p.policy.RemoveLiquidity(&p.state, liquidity)
}

// Invariant returns k = x³y + y³x over the current reserves.
func (p *Pool) Invariant() float64 {
	x, y := float64(p.state.ReserveOne), float64(p.state.ReserveTwo)
	return x*x*x*y + y*y*y*x
}

// SpotPrice returns the marginal price of token one in units of token two,
// -dy/dx = (3x²y + y³) / (x³ + 3xy²), evaluated exactly and rounded.
func (p *Pool) SpotPrice() (decimal.Decimal, error) {
	if p.state.ReserveOne == 0 || p.state.ReserveTwo == 0 {
		return decimal.Zero, fmt.Errorf("%w: reserves (%d, %d)", pool.ErrInsufficientLiquidity, p.state.ReserveOne, p.state.ReserveTwo)
	}
	x := decimal.NewFromBigInt(new(big.Int).SetUint64(p.state.ReserveOne), 0)
	y := decimal.NewFromBigInt(new(big.Int).SetUint64(p.state.ReserveTwo), 0)

	num := three.Mul(x).Mul(x).Mul(y).Add(y.Mul(y).Mul(y))
	den := x.Mul(x).Mul(x).Add(three.Mul(x).Mul(y).Mul(y))
	return num.DivRound(den, PriceDecimals), nil
}
