package pool

// SystemDiff is the set of changes between two lists of pool snapshots.
type SystemDiff struct {
	Additions []Snapshot `json:"additions,omitempty"`
	Updates   []Snapshot `json:"updates,omitempty"`
	Deletions []uint64   `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d SystemDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

// Differ calculates the difference between two states of a pool list.
// Both lists are indexed by pool ID; a pool present in both is an update when
// any field of its record changed.
func Differ(old, new []Snapshot) SystemDiff {
	oldPoolsMap := make(map[uint64]Snapshot, len(old))
	for _, p := range old {
		oldPoolsMap[p.ID] = p
	}

	newPoolsMap := make(map[uint64]Snapshot, len(new))
	for _, p := range new {
		newPoolsMap[p.ID] = p
	}

	var additions []Snapshot
	var updates []Snapshot
	var deletions []uint64

	for newID, newPool := range newPoolsMap {
		oldPool, exists := oldPoolsMap[newID]
		if !exists {
			additions = append(additions, newPool)
			continue
		}
		// State holds only comparable values, so == is a full field comparison.
		if oldPool.State != newPool.State {
			updates = append(updates, newPool)
		}
	}

	for oldID := range oldPoolsMap {
		if _, exists := newPoolsMap[oldID]; !exists {
			deletions = append(deletions, oldID)
		}
	}

	return SystemDiff{
		Additions: additions,
		Updates:   updates,
		Deletions: deletions,
	}
}
