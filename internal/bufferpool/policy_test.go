package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/bufcache/pkg/clockx"
)

func noneP(int) bool { return false }

func TestFIFOPolicy_EvictsInInstallOrder(t *testing.T) {
	p := &fifoPolicy{capacity: 3}

	idx, ok := p.evict(noneP)
	require.True(t, ok)
	require.Equal(t, 0, idx)

	idx, ok = p.evict(noneP)
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func TestFIFOPolicy_SkipsPinnedFrames(t *testing.T) {
	p := &fifoPolicy{capacity: 3}
	pinned := func(i int) bool { return i == 0 }

	idx, ok := p.evict(pinned)
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func TestFIFOPolicy_NoVictimWhenAllPinned(t *testing.T) {
	p := &fifoPolicy{capacity: 2}
	_, ok := p.evict(func(int) bool { return true })
	require.False(t, ok)
}

func TestLRUPolicy_EvictsSmallestStamp(t *testing.T) {
	p := &lruPolicy{recentHit: make([]uint64, 3)}
	p.onInstall(0, 1)
	p.onInstall(1, 2)
	p.onInstall(2, 3)
	p.onHit(0, 4) // touch frame 0 again, now frame 1 is oldest

	idx, ok := p.evict(noneP)
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func TestLRUPolicy_TiesBreakToLowestIndex(t *testing.T) {
	p := &lruPolicy{recentHit: []uint64{5, 5, 5}}
	idx, ok := p.evict(noneP)
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

func TestClockPolicy_InstallClearsSecondChance(t *testing.T) {
	p := &clockPolicy{c: clockx.New(2)}
	p.onHit(0, 0) // set frame 0's reference bit so the install has one to clear
	p.onInstall(0, 0)
	p.onInstall(1, 0)

	idx, ok := p.evict(noneP)
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

func TestClockPolicy_HitGrantsSecondChance(t *testing.T) {
	p := &clockPolicy{c: clockx.New(2)}
	p.onInstall(0, 0)
	p.onInstall(1, 0)
	p.onHit(0, 0)

	idx, ok := p.evict(noneP)
	require.True(t, ok)
	require.Equal(t, 1, idx)
}
