package bufferpool

import (
	"fmt"

	"github.com/tuannm99/bufcache/pkg/clockx"
)

// Policy names one of the three replacement strategies a Pool may use.
// The set is closed: it is selected once at construction and is
// immutable thereafter.
type Policy string

const (
	FIFO  Policy = "fifo"
	LRU   Policy = "lru"
	Clock Policy = "clock"
)

// replacementPolicy selects an eviction victim among the frames a Pool
// manages. Implementations hold only cursor/bookkeeping state (FIFO's
// sweep index, LRU's per-frame stamps, CLOCK's hand and reference
// bits); pin counts are never duplicated into policy state. Instead
// evict is handed a pinned callback that consults the frame table
// directly, so eviction eligibility always has exactly one source of
// truth.
type replacementPolicy interface {
	// onHit runs when a resident frame is touched by a pin hit. stamp
	// is the pool's freshly incremented recent_hit_counter.
	onHit(frameIdx int, stamp uint64)
	// onInstall runs when a frame is freshly populated with a page,
	// whether from an empty slot or by overwriting an eviction victim.
	onInstall(frameIdx int, stamp uint64)
	// evict picks a victim among frames for which pinned reports
	// false. ok is false if no such frame exists.
	evict(pinned func(frameIdx int) bool) (frameIdx int, ok bool)
}

func newReplacementPolicy(p Policy, capacity int) (replacementPolicy, error) {
	switch p {
	case FIFO:
		return &fifoPolicy{capacity: capacity}, nil
	case LRU:
		return &lruPolicy{recentHit: make([]uint64, capacity)}, nil
	case Clock:
		return &clockPolicy{c: clockx.New(capacity)}, nil
	default:
		return nil, fmt.Errorf("bufferpool: unknown replacement policy %q", p)
	}
}

// fifoPolicy evicts by order of frame installation: a cursor sweeps
// the table from its current position to the first unpinned frame,
// which is the victim, and then moves to the frame just after it, so
// pinned frames skipped on the way are not revisited until the cursor
// wraps around. Hits and installs leave no trace.
type fifoPolicy struct {
	capacity int
	next     int
}

func (p *fifoPolicy) onHit(int, uint64)     {}
func (p *fifoPolicy) onInstall(int, uint64) {}

func (p *fifoPolicy) evict(pinned func(int) bool) (int, bool) {
	n := p.capacity
	for step := 0; step < n; step++ {
		idx := (p.next + step) % n
		if !pinned(idx) {
			p.next = (idx + 1) % n
			return idx, true
		}
	}
	return -1, false
}

// lruPolicy evicts the unpinned frame with the smallest recent-hit
// stamp, ties broken by lowest frame index.
type lruPolicy struct {
	recentHit []uint64
}

func (p *lruPolicy) onHit(frameIdx int, stamp uint64)     { p.recentHit[frameIdx] = stamp }
func (p *lruPolicy) onInstall(frameIdx int, stamp uint64) { p.recentHit[frameIdx] = stamp }

func (p *lruPolicy) evict(pinned func(int) bool) (int, bool) {
	victim := -1
	var victimStamp uint64
	for idx, stamp := range p.recentHit {
		if pinned(idx) {
			continue
		}
		if victim == -1 || stamp < victimStamp {
			victim, victimStamp = idx, stamp
		}
	}
	if victim == -1 {
		return -1, false
	}
	return victim, true
}

// clockPolicy evicts via the CLOCK second-chance algorithm, delegating
// the hand sweep and reference bits to clockx.Clock.
type clockPolicy struct {
	c *clockx.Clock
}

func (p *clockPolicy) onHit(frameIdx int, _ uint64)     { p.c.Touch(frameIdx) }
func (p *clockPolicy) onInstall(frameIdx int, _ uint64) { p.c.Clear(frameIdx) }

func (p *clockPolicy) evict(pinned func(int) bool) (int, bool) {
	return p.c.Evict(pinned)
}
