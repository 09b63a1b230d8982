package patcher

import (
	"errors"
	"fmt"
	"maps"

	differ "github.com/defistate/defistate-amm-go/differ"
	engine "github.com/defistate/defistate-amm-go/engine"
)

var (
	// ErrSequenceMismatch is returned when a diff does not start at the state's sequence.
	ErrSequenceMismatch = errors.New("patcher: mismatch fromSequence")
	// ErrSequenceRegression is returned when a diff would move the sequence backwards.
	ErrSequenceRegression = errors.New("patcher: toSequence precedes fromSequence")
)

// --- Type Definitions ---

// PatcherFunc applies a diff to a previous state to produce a new state.
//
// CONTRACT:
// 1. Immutability: Implementations MUST NOT mutate 'prevState'. They must create a copy.
// 2. nil Handling: 'prevState' may be nil if this is a newly added protocol.
type PatcherFunc func(prevState any, diffData any) (newState any, err error)

// --- Config and Main Struct ---

type StatePatcherConfig struct {
	// Map Schema -> Patcher Function
	// Example: "defistate/constant-product/poolView@v1" -> constant product patcher
	Patchers map[engine.ProtocolSchema]PatcherFunc
}

func (c *StatePatcherConfig) validate() error {
	for _, patcher := range c.Patchers {
		if patcher == nil {
			return errors.New("patcher cannot be nil")
		}
	}
	return nil
}

// StatePatcher is the generic engine for applying state updates.
type StatePatcher struct {
	patchers map[engine.ProtocolSchema]PatcherFunc
}

// NewStatePatcher constructs a new patcher from a configuration.
func NewStatePatcher(cfg *StatePatcherConfig) (*StatePatcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &StatePatcher{
		patchers: maps.Clone(cfg.Patchers),
	}, nil
}

// --- Implementation ---

// Patch creates a new State by applying the diff to oldState, which is never mutated.
// Protocol views the diff does not mention are shared by reference with oldState.
func (p *StatePatcher) Patch(oldState *engine.State, diff *differ.StateDiff) (*engine.State, error) {
	// 1. Sequence checks
	if oldState.Sequence != diff.FromSequence {
		return nil, fmt.Errorf("%w (state=%d, diff=%d)", ErrSequenceMismatch, oldState.Sequence, diff.FromSequence)
	}
	if diff.ToSequence < diff.FromSequence {
		return nil, fmt.Errorf("%w (from=%d, to=%d)", ErrSequenceRegression, diff.FromSequence, diff.ToSequence)
	}

	// 2. Shallow copy; unchanged protocol views carry over as-is.
	newProtocols := maps.Clone(oldState.Protocols)
	if newProtocols == nil {
		newProtocols = make(map[engine.ProtocolID]engine.ProtocolState, len(diff.Protocols))
	}

	// 3. Patch each protocol the diff names
	for protocolID, protocolDiff := range diff.Protocols {
		patched, err := p.patchProtocol(oldState, protocolID, protocolDiff)
		if err != nil {
			return nil, err
		}
		newProtocols[protocolID] = patched
	}

	return &engine.State{
		Sequence:  diff.ToSequence,
		Timestamp: diff.Timestamp,
		Protocols: newProtocols,
	}, nil
}

// patchProtocol runs the schema's PatcherFunc against the protocol's previous
// view, or nil when the protocol is new.
func (p *StatePatcher) patchProtocol(oldState *engine.State, id engine.ProtocolID, protocolDiff differ.ProtocolDiff) (engine.ProtocolState, error) {
	patcherFunc, ok := p.patchers[protocolDiff.Schema]
	if !ok {
		return engine.ProtocolState{}, fmt.Errorf("patcher: no patcher registered for schema %q (protocol=%s)", protocolDiff.Schema, id)
	}

	var oldData any
	if oldResult, exists := oldState.Protocols[id]; exists {
		// Pool views never change schema in place; a new schema means a new protocol.
		if oldResult.Schema != protocolDiff.Schema {
			return engine.ProtocolState{}, fmt.Errorf("patcher: schema mismatch for protocol %s (old=%s, diff=%s)", id, oldResult.Schema, protocolDiff.Schema)
		}
		oldData = oldResult.Data
	}

	newData, err := patcherFunc(oldData, protocolDiff.Data)
	if err != nil {
		return engine.ProtocolState{}, fmt.Errorf("patcher: failed to patch protocol %s: %w", id, err)
	}

	// Meta and Error come from the diff, which reflects the newer view.
	return engine.ProtocolState{
		Meta:   protocolDiff.Meta,
		Schema: protocolDiff.Schema,
		Data:   newData,
		Error:  protocolDiff.Error,
	}, nil
}
