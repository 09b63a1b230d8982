package main

import (
	"fmt"

	"github.com/defistate/defistate-amm-go/cmd/ammsim/config"
	"github.com/defistate/defistate-amm-go/differ"
	"github.com/defistate/defistate-amm-go/engine"
	"github.com/defistate/defistate-amm-go/protocols/pool"
	"github.com/defistate/defistate-amm-go/protocols/poolregistry"
)

// StateOps is the subset of poolregistry.StateOps the simulator needs.
type StateOps interface {
	Diff(old *engine.State, new *engine.State) (*differ.StateDiff, error)
	Patch(oldState *engine.State, diff *differ.StateDiff) (*engine.State, error)
}

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Report summarizes a finished simulation.
type Report struct {
	Initial   *engine.State
	Final     *engine.State
	Diff      *differ.StateDiff
	Succeeded int
	Failed    int
}

// simulate creates and seeds the configured pools, then runs every operation.
// A rejected operation is logged and counted; it does not stop the run.
func simulate(cfg *config.SimConfig, system *poolregistry.PoolSystem, ops StateOps, logger Logger) (*Report, error) {
	ids := make([]uint64, len(cfg.Pools))
	for i, p := range cfg.Pools {
		tokenOne, tokenTwo := p.Tokens()
		id, err := system.CreatePool(p.VariantValue(), tokenOne, tokenTwo, p.FeeBps)
		if err != nil {
			return nil, fmt.Errorf("create pool %d: %w", i, err)
		}
		ids[i] = id

		if p.SeedOne == 0 {
			continue
		}
		minted, err := system.AddLiquidity(id, p.SeedOne, p.SeedTwo)
		if err != nil {
			return nil, fmt.Errorf("seed pool %d: %w", i, err)
		}
		logger.Info("pool seeded", "id", id, "amountOne", p.SeedOne, "amountTwo", p.SeedTwo, "minted", minted)
	}

	report := &Report{Initial: system.View()}
	for i, op := range cfg.Operations {
		id := ids[op.Pool]
		if err := runOperation(system, id, op, logger); err != nil {
			report.Failed++
			logger.Warn("operation failed", "index", i, "id", id, "kind", op.Kind, "error", err)
			continue
		}
		report.Succeeded++
	}
	report.Final = system.View()

	diff, err := ops.Diff(report.Initial, report.Final)
	if err != nil {
		return nil, fmt.Errorf("diff views: %w", err)
	}
	report.Diff = diff

	// A replica holding only the initial view must reach the same state.
	patched, err := ops.Patch(report.Initial, diff)
	if err != nil {
		return nil, fmt.Errorf("patch initial view: %w", err)
	}
	if patched.Sequence != report.Final.Sequence {
		return nil, fmt.Errorf("patched view is at sequence %d, want %d", patched.Sequence, report.Final.Sequence)
	}

	for protocolID, protocolDiff := range diff.Protocols {
		if d, ok := protocolDiff.Data.(pool.SystemDiff); ok {
			logger.Info("protocol diff",
				"protocol", protocolID,
				"additions", len(d.Additions),
				"updates", len(d.Updates),
				"deletions", len(d.Deletions),
			)
		}
	}
	return report, nil
}

func runOperation(system *poolregistry.PoolSystem, id uint64, op config.OperationConfig, logger Logger) error {
	switch op.Kind {
	case config.KindSwap:
		out, err := system.Swap(id, op.AmountIn, op.InputIsTokenOne())
		if err != nil {
			return err
		}
		logger.Info("swap", "id", id, "amountIn", op.AmountIn, "direction", op.Direction, "amountOut", out)
	case config.KindAddLiquidity:
		minted, err := system.AddLiquidity(id, op.AmountOne, op.AmountTwo)
		if err != nil {
			return err
		}
		logger.Info("liquidity added", "id", id, "amountOne", op.AmountOne, "amountTwo", op.AmountTwo, "minted", minted)
	case config.KindRemoveLiquidity:
		one, two, err := system.RemoveLiquidity(id, op.Liquidity)
		if err != nil {
			return err
		}
		logger.Info("liquidity removed", "id", id, "liquidity", op.Liquidity, "amountOne", one, "amountTwo", two)
	default:
		return fmt.Errorf("%w: %q", config.ErrUnknownOperation, op.Kind)
	}
	return nil
}
