package engine

type ProtocolName string
type ProtocolID string

// ProtocolSchema defines the decode contract for a protocol's data
type ProtocolSchema string

type ProtocolMeta struct {
	Name ProtocolName `json:"name"`           // human label
	Tags []string     `json:"tags,omitempty"` // "amm", "stable", etc.
}

type ProtocolState struct {
	Meta ProtocolMeta `json:"meta"`

	// Schema is the decode contract for Data.
	// Example:
	// "defistate/constant-product/poolView@v1"
	Schema ProtocolSchema `json:"schema"`

	// Data is the protocol view, shaped by Schema.
	Data any `json:"data,omitempty"`

	// Error is populated if this protocol could not produce a view.
	Error string `json:"error,omitempty"`
}

// State is a point-in-time view of every pool the system holds.
// Sequence increases by one with each successful mutation.
type State struct {
	Sequence  uint64                       `json:"sequence"`
	Timestamp uint64                       `json:"timestamp"`
	Protocols map[ProtocolID]ProtocolState `json:"protocols"`
}

func (state *State) HasErrors() bool {
	for _, pr := range state.Protocols {
		if pr.Error != "" {
			return true
		}
	}
	return false
}
