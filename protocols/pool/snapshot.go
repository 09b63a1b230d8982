package pool

// Snapshot is a point-in-time copy of one pool as published by a registry.
type Snapshot struct {
	ID    uint64 `json:"id"`
	State State  `json:"state"`
}
