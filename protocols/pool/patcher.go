package pool

import (
	"fmt"
	"sort"
)

// Patcher constructs a new pool list by applying a diff to a previous one.
// prevState is never mutated. The result is ordered by pool ID.
func Patcher(prevState []Snapshot, diff SystemDiff) ([]Snapshot, error) {
	newStateMap := make(map[uint64]Snapshot, len(prevState))
	for _, p := range prevState {
		newStateMap[p.ID] = p
	}

	for _, id := range diff.Deletions {
		if _, ok := newStateMap[id]; !ok {
			return nil, fmt.Errorf("cannot delete unknown pool %d", id)
		}
		delete(newStateMap, id)
	}

	for _, updated := range diff.Updates {
		if _, ok := newStateMap[updated.ID]; !ok {
			return nil, fmt.Errorf("cannot update unknown pool %d", updated.ID)
		}
		newStateMap[updated.ID] = updated
	}

	for _, added := range diff.Additions {
		newStateMap[added.ID] = added
	}

	finalState := make([]Snapshot, 0, len(newStateMap))
	for _, p := range newStateMap {
		finalState = append(finalState, p)
	}
	sort.Slice(finalState, func(i, j int) bool { return finalState[i].ID < finalState[j].ID })

	return finalState, nil
}
