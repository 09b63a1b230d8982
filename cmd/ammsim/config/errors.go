package config

import "errors"

var (
	// ErrNoPools indicates that the configuration declares no pools.
	ErrNoPools = errors.New("config: at least one pool is required")
	// ErrInvalidVariant indicates a pool variant that is not recognized.
	ErrInvalidVariant = errors.New("config: invalid pool variant")
	// ErrInvalidTokenAddress indicates a token that is not a 20-byte hex address.
	ErrInvalidTokenAddress = errors.New("config: invalid token address")
	// ErrInvalidFee indicates a fee of 10000 basis points or more.
	ErrInvalidFee = errors.New("config: fee_bps must be below 10000")
	// ErrPartialSeed indicates a pool seeded on one side only.
	ErrPartialSeed = errors.New("config: seed_one and seed_two must both be set or both be zero")
	// ErrPoolIndexOutOfRange indicates an operation that targets an undeclared pool.
	ErrPoolIndexOutOfRange = errors.New("config: operation pool index out of range")
	// ErrUnknownOperation indicates an operation kind that is not recognized.
	ErrUnknownOperation = errors.New("config: unknown operation kind")
	// ErrInvalidDirection indicates a swap direction that is not recognized.
	ErrInvalidDirection = errors.New("config: invalid swap direction")
	// ErrInvalidLogLevel indicates a log level that is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log_level")
)
