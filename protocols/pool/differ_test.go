package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(id, reserveOne, reserveTwo uint64) Snapshot {
	return Snapshot{ID: id, State: State{ReserveOne: reserveOne, ReserveTwo: reserveTwo, FeeBps: 30}}
}

func TestDiffer(t *testing.T) {
	pool1Old := snap(1, 1000, 2000)
	pool2Old := snap(2, 3000, 4000)
	pool3Old := snap(3, 5000, 6000)

	t.Run("should identify additions correctly", func(t *testing.T) {
		diff := Differ([]Snapshot{pool1Old}, []Snapshot{pool1Old, pool2Old})

		assert.Len(t, diff.Additions, 1, "Should have one addition")
		assert.Equal(t, pool2Old.ID, diff.Additions[0].ID)
		assert.Empty(t, diff.Updates)
		assert.Empty(t, diff.Deletions)
	})

	t.Run("should identify deletions correctly", func(t *testing.T) {
		diff := Differ([]Snapshot{pool1Old, pool2Old}, []Snapshot{pool1Old})

		assert.Empty(t, diff.Additions)
		assert.Empty(t, diff.Updates)
		require.Len(t, diff.Deletions, 1)
		assert.Equal(t, pool2Old.ID, diff.Deletions[0])
	})

	t.Run("should identify reserve updates", func(t *testing.T) {
		pool1Updated := snap(1, 1001, 2000)

		diff := Differ([]Snapshot{pool1Old}, []Snapshot{pool1Updated})

		assert.Empty(t, diff.Additions)
		require.Len(t, diff.Updates, 1)
		assert.Equal(t, pool1Updated, diff.Updates[0])
		assert.Empty(t, diff.Deletions)
	})

	t.Run("should identify fee and supply updates", func(t *testing.T) {
		feeOnly := pool1Old
		feeOnly.State.FeeOneAccrued = 3
		supplyOnly := pool2Old
		supplyOnly.State.TotalSupply = 10

		diff := Differ([]Snapshot{pool1Old, pool2Old}, []Snapshot{feeOnly, supplyOnly})

		assert.Len(t, diff.Updates, 2)
	})

	t.Run("should handle a mix of additions, updates, and deletions", func(t *testing.T) {
		pool1Updated := snap(1, 1001, 2000)
		pool4New := snap(4, 7000, 8000)

		diff := Differ([]Snapshot{pool1Old, pool2Old, pool3Old}, []Snapshot{pool1Updated, pool2Old, pool4New})

		require.Len(t, diff.Additions, 1)
		assert.Equal(t, pool4New.ID, diff.Additions[0].ID)
		require.Len(t, diff.Updates, 1)
		assert.Equal(t, pool1Updated.ID, diff.Updates[0].ID)
		require.Len(t, diff.Deletions, 1)
		assert.Equal(t, pool3Old.ID, diff.Deletions[0])
		assert.False(t, diff.IsEmpty())
	})

	t.Run("should produce an empty diff when there are no changes", func(t *testing.T) {
		diff := Differ([]Snapshot{pool1Old, pool2Old}, []Snapshot{pool1Old, pool2Old})
		assert.True(t, diff.IsEmpty())
	})

	t.Run("should handle empty initial and new states", func(t *testing.T) {
		diff := Differ([]Snapshot{}, nil)
		assert.True(t, diff.IsEmpty())
	})
}
