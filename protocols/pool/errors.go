package pool

import "errors"

var (
	// ErrAmountIsZero is returned when a zero amount is passed where a positive amount is required.
	ErrAmountIsZero = errors.New("amount is zero")
	// ErrInsufficientLiquidity is returned when an operation would violate a reserve,
	// invariant or supply bound.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrOverflow is returned when a result does not fit into a uint64 balance.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrInvalidFee is returned when a fee is not strictly below 10000 basis points.
	ErrInvalidFee = errors.New("fee must be below 10000 basis points")
	// ErrSameToken is returned when both sides of a pool are the same token.
	ErrSameToken = errors.New("token one and token two are equal")
)
