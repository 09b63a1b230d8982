package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/defistate/defistate-amm-go/protocols/pool"
	"github.com/defistate/defistate-amm-go/protocols/poolregistry"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Operation kinds.
const (
	KindSwap            = "swap"
	KindAddLiquidity    = "add_liquidity"
	KindRemoveLiquidity = "remove_liquidity"
)

// Swap directions.
const (
	DirectionOneToTwo = "one_to_two"
	DirectionTwoToOne = "two_to_one"
)

// SimConfig describes the pools to create and the operations to run on them.
type SimConfig struct {
	LogLevel   string            `yaml:"log_level"`
	Pools      []PoolConfig      `yaml:"pools"`
	Operations []OperationConfig `yaml:"operations"`
}

// PoolConfig declares one pool. A pool with both seeds set receives them as
// its first deposit.
type PoolConfig struct {
	Variant  string `yaml:"variant"`
	TokenOne string `yaml:"token_one"`
	TokenTwo string `yaml:"token_two"`
	FeeBps   uint16 `yaml:"fee_bps"`
	SeedOne  uint64 `yaml:"seed_one"`
	SeedTwo  uint64 `yaml:"seed_two"`
}

// OperationConfig is one step of the simulation. Pool is an index into Pools.
type OperationConfig struct {
	Pool      int    `yaml:"pool"`
	Kind      string `yaml:"kind"`
	AmountIn  uint64 `yaml:"amount_in"`
	Direction string `yaml:"direction"`
	AmountOne uint64 `yaml:"amount_one"`
	AmountTwo uint64 `yaml:"amount_two"`
	Liquidity uint64 `yaml:"liquidity"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration.
func Parse(data []byte) (*SimConfig, error) {
	var cfg SimConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *SimConfig) validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if len(c.Pools) == 0 {
		return ErrNoPools
	}

	var errs []error
	for i, p := range c.Pools {
		if err := p.validate(); err != nil {
			errs = append(errs, fmt.Errorf("pools[%d]: %w", i, err))
		}
	}
	for i, op := range c.Operations {
		if err := op.validate(len(c.Pools)); err != nil {
			errs = append(errs, fmt.Errorf("operations[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (p PoolConfig) validate() error {
	if _, err := poolregistry.ParseVariant(p.Variant); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidVariant, p.Variant)
	}
	for _, token := range []string{p.TokenOne, p.TokenTwo} {
		if !common.IsHexAddress(token) {
			return fmt.Errorf("%w: %q", ErrInvalidTokenAddress, token)
		}
	}
	if pool.ValidateFee(p.FeeBps) != nil {
		return fmt.Errorf("%w: got %d", ErrInvalidFee, p.FeeBps)
	}
	if (p.SeedOne == 0) != (p.SeedTwo == 0) {
		return ErrPartialSeed
	}
	return nil
}

// VariantValue returns the parsed pool variant.
func (p PoolConfig) VariantValue() poolregistry.Variant {
	v, _ := poolregistry.ParseVariant(p.Variant)
	return v
}

// Tokens returns the parsed token addresses.
func (p PoolConfig) Tokens() (common.Address, common.Address) {
	return common.HexToAddress(p.TokenOne), common.HexToAddress(p.TokenTwo)
}

func (o OperationConfig) validate(pools int) error {
	if o.Pool < 0 || o.Pool >= pools {
		return fmt.Errorf("%w: %d of %d", ErrPoolIndexOutOfRange, o.Pool, pools)
	}
	switch o.Kind {
	case KindSwap:
		if o.Direction != DirectionOneToTwo && o.Direction != DirectionTwoToOne {
			return fmt.Errorf("%w: %q", ErrInvalidDirection, o.Direction)
		}
	case KindAddLiquidity, KindRemoveLiquidity:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, o.Kind)
	}
	return nil
}

// InputIsTokenOne reports whether a swap sells token one.
func (o OperationConfig) InputIsTokenOne() bool {
	return o.Direction == DirectionOneToTwo
}

// ParseLevel maps a log_level value to a slog level. An empty value is info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
	}
}
