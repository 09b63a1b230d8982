package poolregistry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/defistate/defistate-amm-go/engine"
	"github.com/defistate/defistate-amm-go/protocols/constantproduct"
	"github.com/defistate/defistate-amm-go/protocols/pool"
	"github.com/defistate/defistate-amm-go/protocols/stableswap"
)

// ErrUnknownVariant is returned for a variant with no registered model.
var ErrUnknownVariant = errors.New("unknown pool variant")

// Variant identifies a pool's pricing curve.
type Variant uint8

const (
	InvalidVariant Variant = iota
	ConstantProduct
	StableSwap
)

const (
	ConstantProductSchema engine.ProtocolSchema = "defistate/constant-product/poolView@v1"
	StableSwapSchema      engine.ProtocolSchema = "defistate/stable-swap/poolView@v1"
)

// Pool is the behavior the registry needs from a pool variant.
type Pool interface {
	Swap(amountIn uint64, inputIsTokenOne bool) (uint64, error)
	AddLiquidity(amountOne, amountTwo uint64) (uint64, error)
	RemoveLiquidity(liquidity uint64) (uint64, uint64, error)
	State() pool.State
}

var (
	_ Pool = (*constantproduct.Pool)(nil)
	_ Pool = (*stableswap.Pool)(nil)
)

// NewModel builds a pool of one variant from a pool record.
type NewModel func(state pool.State) (Pool, error)

// Models maps each variant to its constructor.
var Models map[Variant]NewModel

func init() {
	Models = make(map[Variant]NewModel)

	Models[ConstantProduct] = func(state pool.State) (Pool, error) {
		p, err := constantproduct.NewFromState(state)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	Models[StableSwap] = func(state pool.State) (Pool, error) {
		p, err := stableswap.NewFromState(state)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (v Variant) String() string {
	switch v {
	case ConstantProduct:
		return "constant_product"
	case StableSwap:
		return "stable_swap"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// ParseVariant accepts the names produced by Variant.String, with either
// underscores or dashes.
func ParseVariant(s string) (Variant, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "constant_product":
		return ConstantProduct, nil
	case "stable_swap":
		return StableSwap, nil
	default:
		return InvalidVariant, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Schema returns the decode contract of the variant's published view.
func (v Variant) Schema() engine.ProtocolSchema {
	switch v {
	case ConstantProduct:
		return ConstantProductSchema
	case StableSwap:
		return StableSwapSchema
	default:
		return ""
	}
}

// ProtocolID returns the key of the variant's view in engine.State.
func (v Variant) ProtocolID() engine.ProtocolID {
	return engine.ProtocolID(v.String())
}

func (v Variant) meta() engine.ProtocolMeta {
	switch v {
	case ConstantProduct:
		return engine.ProtocolMeta{Name: "Constant Product", Tags: []string{"amm", "xyk"}}
	case StableSwap:
		return engine.ProtocolMeta{Name: "Stable Swap", Tags: []string{"amm", "stable"}}
	default:
		return engine.ProtocolMeta{}
	}
}

// variantForSchema is the inverse of Variant.Schema.
func variantForSchema(schema engine.ProtocolSchema) (Variant, error) {
	switch schema {
	case ConstantProductSchema:
		return ConstantProduct, nil
	case StableSwapSchema:
		return StableSwap, nil
	default:
		return InvalidVariant, fmt.Errorf("%w: schema %q", ErrUnknownVariant, schema)
	}
}

// variants lists every registered variant in a fixed order.
func variants() []Variant {
	return []Variant{ConstantProduct, StableSwap}
}
