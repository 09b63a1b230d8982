package differ

import (
	"errors"
	"fmt"
	"time"

	"github.com/defistate/defistate-amm-go/engine"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ErrStateHasErrors is returned when either view carries a protocol error.
	ErrStateHasErrors = errors.New("differ: state has errors")
	// ErrNoDiffer is returned when a protocol's schema has no registered differ.
	ErrNoDiffer = errors.New("differ: no differ registered")
)

// --- Config and Main Struct ---

// ProtocolDiffer compares two views of the same schema. old is nil when the
// protocol is new in the second state.
type ProtocolDiffer func(old, new any) (diff any, err error)

// StateDifferConfig holds all the individual differ functions and dependencies.
type StateDifferConfig struct {
	// One differ per schema (data contract), not per protocol identity.
	ProtocolDiffers map[engine.ProtocolSchema]ProtocolDiffer
	Registry        prometheus.Registerer // Required for metrics.
	Logger          Logger                // Required for logging.
}

// validate checks if the configuration is valid, ensuring required dependencies are present.
func (c *StateDifferConfig) validate() error {
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	for schema, fn := range c.ProtocolDiffers {
		if fn == nil {
			return fmt.Errorf("config: differ for schema %q cannot be nil", schema)
		}
	}
	return nil
}

// StateDiffer is the main differ engine, with metrics and logging.
type StateDiffer struct {
	metrics         *Metrics
	logger          Logger
	protocolDiffers map[engine.ProtocolSchema]ProtocolDiffer
}

// NewStateDiffer constructs a new differ from a configuration, returning an error if the config is invalid.
func NewStateDiffer(cfg *StateDifferConfig) (*StateDiffer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	protocolDiffers := make(map[engine.ProtocolSchema]ProtocolDiffer, len(cfg.ProtocolDiffers))
	for schema, protocolDiffer := range cfg.ProtocolDiffers {
		protocolDiffers[schema] = protocolDiffer
	}

	return &StateDiffer{
		metrics:         NewMetrics(cfg.Registry),
		logger:          cfg.Logger,
		protocolDiffers: protocolDiffers,
	}, nil
}

// Diff compares two error-free states. Protocols present only in new are
// diffed against a nil old view.
func (d *StateDiffer) Diff(old, new *engine.State) (*StateDiff, error) {
	totalTimer := prometheus.NewTimer(d.metrics.diffDuration.WithLabelValues())
	defer totalTimer.ObserveDuration()

	if old.HasErrors() || new.HasErrors() {
		return nil, ErrStateHasErrors
	}

	protocolDiffs := make(map[engine.ProtocolID]ProtocolDiff, len(new.Protocols))
	for protocolID, newProtocolState := range new.Protocols {
		var oldData any
		if oldProtocolState, ok := old.Protocols[protocolID]; ok {
			if oldProtocolState.Schema != newProtocolState.Schema {
				return nil, fmt.Errorf("differ: schema changed for protocol %s (old=%s, new=%s)", protocolID, oldProtocolState.Schema, newProtocolState.Schema)
			}
			oldData = oldProtocolState.Data
		}

		differFunc, exists := d.protocolDiffers[newProtocolState.Schema]
		if !exists {
			return nil, fmt.Errorf("%w for schema %q", ErrNoDiffer, newProtocolState.Schema)
		}
		diffData, err := differFunc(oldData, newProtocolState.Data)
		if err != nil {
			return nil, fmt.Errorf("differ: protocol %s: %w", protocolID, err)
		}
		d.metrics.protocolsDiffed.Inc()

		protocolDiffs[protocolID] = ProtocolDiff{
			Meta:   newProtocolState.Meta,
			Schema: newProtocolState.Schema,
			Data:   diffData,
		}
	}

	d.logger.Debug("state diff computed",
		"fromSequence", old.Sequence,
		"toSequence", new.Sequence,
		"protocols", len(protocolDiffs),
	)

	return &StateDiff{
		Timestamp:    uint64(time.Now().UnixNano()),
		FromSequence: old.Sequence,
		ToSequence:   new.Sequence,
		Protocols:    protocolDiffs,
	}, nil
}
