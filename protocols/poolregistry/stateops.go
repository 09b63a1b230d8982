package poolregistry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/defistate/defistate-amm-go/differ"
	"github.com/defistate/defistate-amm-go/engine"
	"github.com/defistate/defistate-amm-go/patcher"
	"github.com/defistate/defistate-amm-go/protocols/pool"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrUnexpectedData is returned when a protocol view or diff has the wrong Go type.
var ErrUnexpectedData = errors.New("unexpected protocol data")

// StateDiffers returns a differ for the view of every variant.
func StateDiffers() map[engine.ProtocolSchema]differ.ProtocolDiffer {
	differs := make(map[engine.ProtocolSchema]differ.ProtocolDiffer, len(Models))
	for _, variant := range variants() {
		differs[variant.Schema()] = func(old, new any) (any, error) {
			oldSnapshots, err := snapshotsOf(old)
			if err != nil {
				return nil, err
			}
			newSnapshots, err := snapshotsOf(new)
			if err != nil {
				return nil, err
			}
			return pool.Differ(oldSnapshots, newSnapshots), nil
		}
	}
	return differs
}

// StatePatchers returns a patcher for the view of every variant.
func StatePatchers() map[engine.ProtocolSchema]patcher.PatcherFunc {
	patchers := make(map[engine.ProtocolSchema]patcher.PatcherFunc, len(Models))
	for _, variant := range variants() {
		patchers[variant.Schema()] = func(prevState, diffData any) (any, error) {
			prev, err := snapshotsOf(prevState)
			if err != nil {
				return nil, err
			}
			diff, ok := diffData.(pool.SystemDiff)
			if !ok {
				return nil, fmt.Errorf("%w: diff is %T", ErrUnexpectedData, diffData)
			}
			return pool.Patcher(prev, diff)
		}
	}
	return patchers
}

// snapshotsOf unwraps a view's Data. A nil view is an empty pool list.
func snapshotsOf(data any) ([]pool.Snapshot, error) {
	if data == nil {
		return nil, nil
	}
	snapshots, ok := data.([]pool.Snapshot)
	if !ok {
		return nil, fmt.Errorf("%w: view is %T", ErrUnexpectedData, data)
	}
	return snapshots, nil
}

// StateOps bundles the differ and patcher for pool views.
//
// The differ computes the delta between two views (used by the publisher),
// and the patcher applies a delta to rebuild the later view (used by a replica).
type StateOps struct {
	*differ.StateDiffer
	*patcher.StatePatcher
}

// NewStateOps wires StateDiffers and StatePatchers into the generic engines.
func NewStateOps(logger Logger, prometheusRegistry prometheus.Registerer) (*StateOps, error) {
	stateDiffer, err := differ.NewStateDiffer(&differ.StateDifferConfig{
		ProtocolDiffers: StateDiffers(),
		Logger:          logger,
		Registry:        prometheusRegistry,
	})
	if err != nil {
		return nil, err
	}

	statePatcher, err := patcher.NewStatePatcher(&patcher.StatePatcherConfig{
		Patchers: StatePatchers(),
	})
	if err != nil {
		return nil, err
	}

	return &StateOps{
		StateDiffer:  stateDiffer,
		StatePatcher: statePatcher,
	}, nil
}

// DecodeStateJSON decodes a protocol view that was serialized as JSON.
func (ops *StateOps) DecodeStateJSON(schema engine.ProtocolSchema, data json.RawMessage) (any, error) {
	if _, err := variantForSchema(schema); err != nil {
		return nil, err
	}
	var typedData []pool.Snapshot
	if err := json.Unmarshal(data, &typedData); err != nil {
		return nil, err
	}
	return typedData, nil
}

// DecodeStateDiffJSON decodes a protocol diff that was serialized as JSON.
func (ops *StateOps) DecodeStateDiffJSON(schema engine.ProtocolSchema, data json.RawMessage) (any, error) {
	if _, err := variantForSchema(schema); err != nil {
		return nil, err
	}
	var typedDiff pool.SystemDiff
	if err := json.Unmarshal(data, &typedDiff); err != nil {
		return nil, err
	}
	return typedDiff, nil
}
