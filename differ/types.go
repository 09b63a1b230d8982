package differ

import "github.com/defistate/defistate-amm-go/engine"

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type ProtocolDiff struct {
	Meta engine.ProtocolMeta `json:"meta"`

	// Schema is the decode contract for Data.
	// Examples:
	// "defistate/constant-product/poolView@v1"
	// "defistate/stable-swap/poolView@v1"
	Schema engine.ProtocolSchema `json:"schema"`

	// Data is the protocol diff, shaped by Schema.
	Data any `json:"data,omitempty"`

	// Error is populated if this protocol could not produce a view.
	Error string `json:"error,omitempty"`
}

// StateDiff represents a summary of changes FromSequence to ToSequence.
type StateDiff struct {
	Timestamp    uint64                             `json:"timestamp"`
	FromSequence uint64                             `json:"fromSequence"`
	ToSequence   uint64                             `json:"toSequence"`
	Protocols    map[engine.ProtocolID]ProtocolDiff `json:"protocols"`
}
