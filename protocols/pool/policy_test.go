package pool

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProRata_AddLiquidity(t *testing.T) {
	testCases := []struct {
		name           string
		state          State
		amountOne      uint64
		amountTwo      uint64
		expectedMinted uint64
		expectedErr    error
	}{
		{
			name:           "bootstrap uses the geometric mean",
			state:          State{},
			amountOne:      1000,
			amountTwo:      2000,
			expectedMinted: 1414,
		},
		{
			name:           "proportional deposit",
			state:          State{ReserveOne: 1000, ReserveTwo: 2000, TotalSupply: 1000},
			amountOne:      100,
			amountTwo:      200,
			expectedMinted: 100,
		},
		{
			name:           "mismatched ratio mints on the constraining side",
			state:          State{ReserveOne: 1000, ReserveTwo: 2000, TotalSupply: 1000},
			amountOne:      100,
			amountTwo:      500,
			expectedMinted: 100,
		},
		{
			name:        "zero amount one",
			state:       State{ReserveOne: 1000, ReserveTwo: 2000, TotalSupply: 1000},
			amountOne:   0,
			amountTwo:   100,
			expectedErr: ErrAmountIsZero,
		},
		{
			name:        "zero amount two",
			state:       State{},
			amountOne:   100,
			amountTwo:   0,
			expectedErr: ErrAmountIsZero,
		},
		{
			name:        "one-sided reserves",
			state:       State{ReserveOne: 1000, TotalSupply: 10},
			amountOne:   100,
			amountTwo:   100,
			expectedErr: ErrInsufficientLiquidity,
		},
		{
			name:        "deposit too small to mint",
			state:       State{ReserveOne: 1_000_000, ReserveTwo: 1_000_000, TotalSupply: 1000},
			amountOne:   1,
			amountTwo:   1,
			expectedErr: ErrInsufficientLiquidity,
		},
		{
			name:        "minted amount overflows",
			state:       State{ReserveOne: 1, ReserveTwo: 1, TotalSupply: math.MaxUint64},
			amountOne:   2,
			amountTwo:   2,
			expectedErr: ErrOverflow,
		},
		{
			name:        "reserve overflows",
			state:       State{ReserveOne: math.MaxUint64 - 1, ReserveTwo: math.MaxUint64 - 1, TotalSupply: math.MaxUint64 - 1},
			amountOne:   5,
			amountTwo:   5,
			expectedErr: ErrOverflow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.state
			minted, err := ProRata.AddLiquidity(&s, tc.amountOne, tc.amountTwo)

			if tc.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Equal(t, tc.state, s, "failed add must not mutate the pool")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedMinted, minted)
			assert.Equal(t, tc.state.ReserveOne+tc.amountOne, s.ReserveOne)
			assert.Equal(t, tc.state.ReserveTwo+tc.amountTwo, s.ReserveTwo)
			assert.Equal(t, tc.state.TotalSupply+minted, s.TotalSupply)

			quoted, err := ProRata.MintAmount(tc.state, tc.amountOne, tc.amountTwo)
			require.NoError(t, err)
			assert.Equal(t, minted, quoted)
		})
	}
}

func TestProRata_RemoveLiquidity(t *testing.T) {
	t.Run("pro-rata exactness", func(t *testing.T) {
		s := State{ReserveOne: 1000, ReserveTwo: 2000, TotalSupply: 1000}

		amountOne, amountTwo, err := ProRata.RemoveLiquidity(&s, 100)
		require.NoError(t, err)

		assert.Equal(t, uint64(100), amountOne)
		assert.Equal(t, uint64(200), amountTwo)
		assert.Equal(t, uint64(900), s.ReserveOne)
		assert.Equal(t, uint64(1800), s.ReserveTwo)
		assert.Equal(t, uint64(900), s.TotalSupply)
	})

	t.Run("burning all supply empties the pool", func(t *testing.T) {
		s := State{ReserveOne: 1337, ReserveTwo: 4242, TotalSupply: 777}

		amountOne, amountTwo, err := ProRata.RemoveLiquidity(&s, 777)
		require.NoError(t, err)

		assert.Equal(t, uint64(1337), amountOne)
		assert.Equal(t, uint64(4242), amountTwo)
		assert.True(t, s.IsEmpty())
		assert.Zero(t, s.TotalSupply)
	})

	t.Run("zero amount", func(t *testing.T) {
		s := State{ReserveOne: 1000, ReserveTwo: 2000, TotalSupply: 1000}
		before := s

		_, _, err := ProRata.RemoveLiquidity(&s, 0)
		assert.ErrorIs(t, err, ErrAmountIsZero)
		assert.Equal(t, before, s)
	})

	t.Run("insufficient supply", func(t *testing.T) {
		s := State{ReserveOne: 1000, ReserveTwo: 2000, TotalSupply: 100}
		before := s

		_, _, err := ProRata.RemoveLiquidity(&s, 200)
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
		assert.Equal(t, before, s)
	})

	t.Run("large reserves do not overflow", func(t *testing.T) {
		s := State{ReserveOne: math.MaxUint64, ReserveTwo: math.MaxUint64, TotalSupply: math.MaxUint64}

		amountOne, amountTwo, err := ProRata.RemoveLiquidity(&s, math.MaxUint64/2)
		require.NoError(t, err)
		assert.Equal(t, uint64(math.MaxUint64/2), amountOne)
		assert.Equal(t, uint64(math.MaxUint64/2), amountTwo)
	})
}

func TestProRata_RoundTrip(t *testing.T) {
	t.Run("on an empty pool amounts come back exactly", func(t *testing.T) {
		var s State

		minted, err := ProRata.AddLiquidity(&s, 1000, 2000)
		require.NoError(t, err)

		amountOne, amountTwo, err := ProRata.RemoveLiquidity(&s, minted)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), amountOne)
		assert.Equal(t, uint64(2000), amountTwo)
		assert.Zero(t, s.TotalSupply)
	})

	t.Run("on a funded pool amounts never exceed the deposit", func(t *testing.T) {
		s := State{ReserveOne: 1000, ReserveTwo: 2000, TotalSupply: 1414}

		minted, err := ProRata.AddLiquidity(&s, 100, 200)
		require.NoError(t, err)
		assert.Equal(t, uint64(141), minted)

		amountOne, amountTwo, err := ProRata.RemoveLiquidity(&s, minted)
		require.NoError(t, err)
		assert.Equal(t, uint64(99), amountOne)
		assert.Equal(t, uint64(199), amountTwo)
		assert.Equal(t, uint64(1414), s.TotalSupply)
	})
}

func TestQuote(t *testing.T) {
	got, err := Quote(100, 1000, 2000)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), got)

	_, err = Quote(0, 1000, 2000)
	assert.ErrorIs(t, err, ErrAmountIsZero)

	_, err = Quote(100, 0, 2000)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	_, err = Quote(math.MaxUint64, 1, 2)
	assert.ErrorIs(t, err, ErrOverflow)
}
