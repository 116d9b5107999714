package clockx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allUnpinned(int) bool { return false }

func TestClock_New_DefaultCapacity(t *testing.T) {
	c := New(0)
	require.NotNil(t, c)
	require.Equal(t, 1, c.Capacity())
}

func TestClock_Evict_FreshSlotsAreVictimsImmediately(t *testing.T) {
	c := New(3)

	// Freshly constructed: no reference bits set, nothing pinned.
	id, ok := c.Evict(allUnpinned)
	require.True(t, ok)
	require.Equal(t, 0, id)
}

func TestClock_Evict_SkipsPinnedSlots(t *testing.T) {
	c := New(2)

	pinned := func(id int) bool { return id == 0 }

	id, ok := c.Evict(pinned)
	require.True(t, ok)
	require.Equal(t, 1, id)
}

func TestClock_Evict_NoVictimWhenAllPinned(t *testing.T) {
	c := New(2)

	allPinned := func(int) bool { return true }

	id, ok := c.Evict(allPinned)
	require.False(t, ok)
	require.Equal(t, -1, id)
}

func TestClock_Evict_SecondChanceDefersEviction(t *testing.T) {
	c := New(2)
	c.Touch(0)
	c.Touch(1)

	// Both referenced: first sweep clears both bits, second sweep evicts slot 0.
	id, ok := c.Evict(allUnpinned)
	require.True(t, ok)
	require.Equal(t, 0, id)

	// The hand now rests on slot 1, whose bit the first sweep cleared, so
	// the next victim is slot 1.
	id2, ok := c.Evict(allUnpinned)
	require.True(t, ok)
	require.Equal(t, 1, id2)
}

func TestClock_Touch_GrantsOneMoreSweep(t *testing.T) {
	c := New(2)
	c.Touch(0)

	// Slot 0 referenced, slot 1 not: hand starts at 0, clears its bit and
	// moves on, then evicts slot 1 on the same sweep.
	id, ok := c.Evict(allUnpinned)
	require.True(t, ok)
	require.Equal(t, 1, id)
}

func TestClock_OutOfRangeTouchAndClearAreNoops(t *testing.T) {
	c := New(2)
	c.Touch(-1)
	c.Touch(5)
	c.Clear(-1)
	c.Clear(5)

	id, ok := c.Evict(allUnpinned)
	require.True(t, ok)
	require.Equal(t, 0, id)
}
