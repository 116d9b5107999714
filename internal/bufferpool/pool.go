// Package bufferpool implements a fixed-size, in-memory pool of page
// frames mediating all access to a page file. Clients pin pages by
// number, read or mutate their bytes in place, mark them dirty, and
// unpin them; the pool loads pages from disk on miss, selects
// eviction victims under a configurable replacement policy, and
// writes dirty pages back before reuse or on demand.
//
// A Pool serves a single cooperating caller at a time. Each operation
// holds the pool's mutex for its whole duration, so operations never
// interleave; beyond that the package provides no concurrency control,
// transactions, or recovery.
package bufferpool

import (
	"log/slog"
	"sync"

	"github.com/tuannm99/bufcache/internal/pagefile"
)

var logPrefix = "bufferpool: "

// Handle is a client's reference to a pinned page: a page number
// paired with a borrowed view into the frame's buffer. It is valid
// only until the matching Unpin; clients must not retain Data past
// that point.
type Handle struct {
	PageNumber int
	Data       []byte
}

// Pool is the top-level buffer pool: a frame table, a replacement
// policy, a page file, and the pin/dirty/I/O bookkeeping tying them
// together.
type Pool struct {
	mu sync.Mutex

	initialized bool
	fileName    string
	file        *pagefile.File

	frames    []frame
	pageIndex map[int]int // page number -> frame index, for O(1) hit lookup

	policy           replacementPolicy
	recentHitCounter uint64

	readIO  uint64
	writeIO uint64
}

// New initializes a pool with the given capacity, backing page-file
// name, and replacement policy. It allocates the (empty) frame table
// and resets every counter and cursor, but does not open or otherwise
// touch the page file — that happens lazily on first disk access.
//
// numPages must be positive and fileName non-empty, or New returns
// ErrInvalidArgument.
func New(fileName string, numPages int, policy Policy) (*Pool, error) {
	if fileName == "" || numPages <= 0 {
		return nil, wrap(ErrInvalidArgument, "New", nil)
	}

	rp, err := newReplacementPolicy(policy, numPages)
	if err != nil {
		return nil, wrap(ErrInvalidArgument, "New", err)
	}

	frames := make([]frame, numPages)
	for i := range frames {
		frames[i] = emptyFrame()
	}

	return &Pool{
		initialized: true,
		fileName:    fileName,
		frames:      frames,
		pageIndex:   make(map[int]int, numPages),
		policy:      rp,
	}, nil
}

func (p *Pool) checkInitialized(op string) error {
	if !p.initialized {
		return wrap(ErrPoolNotInitialized, op, nil)
	}
	return nil
}

// ensureFileOpen lazily opens the backing page file on first disk
// touch, keeping the handle open for the remainder of the pool's
// lifetime (an allowed deviation from the reference design's
// per-operation open/close, per the observable-semantics contract).
func (p *Pool) ensureFileOpen(op string) (*pagefile.File, error) {
	if p.file != nil {
		return p.file, nil
	}
	f, err := pagefile.Open(p.fileName)
	if err != nil {
		return nil, wrap(ErrPageFileNotFound, op, err)
	}
	p.file = f
	return f, nil
}

// Shutdown flushes every dirty, unpinned frame, then releases all
// pool state. If any frame is still pinned, it returns
// ErrPinnedPagesInBuffer without releasing anything: the caller must
// unpin the offending pages and retry.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkInitialized("Shutdown"); err != nil {
		return err
	}
	if err := p.forceFlushPoolLocked(); err != nil {
		return err
	}

	for i := range p.frames {
		if p.frames[i].pinCount > 0 {
			return wrap(ErrPinnedPagesInBuffer, "Shutdown", nil)
		}
	}

	if p.file != nil {
		_ = p.file.Close()
		p.file = nil
	}
	p.frames = nil
	p.pageIndex = nil
	p.fileName = ""
	p.initialized = false
	return nil
}

// Pin loads page pageNum into a frame (from cache, an empty slot, or
// by evicting a victim) and increments its pin count. The returned
// handle's Data is valid until the matching Unpin.
func (p *Pool) Pin(pageNum int) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkInitialized("Pin"); err != nil {
		return nil, err
	}
	if pageNum < 0 {
		return nil, wrap(ErrInvalidArgument, "Pin", nil)
	}

	if idx, ok := p.pageIndex[pageNum]; ok {
		f := &p.frames[idx]
		f.pinCount++
		p.recentHitCounter++
		p.policy.onHit(idx, p.recentHitCounter)
		slog.Debug(logPrefix+"pin hit", "pageNum", pageNum, "frame", idx, "pinCount", f.pinCount)
		return &Handle{PageNumber: pageNum, Data: f.data}, nil
	}

	if idx, ok := p.firstEmptyFrame(); ok {
		return p.installFresh(idx, pageNum)
	}

	return p.installByEviction(pageNum)
}

func (p *Pool) firstEmptyFrame() (int, bool) {
	for i := range p.frames {
		if p.frames[i].isEmpty() {
			return i, true
		}
	}
	return -1, false
}

// installFresh loads pageNum from disk into the empty frame at idx.
func (p *Pool) installFresh(idx, pageNum int) (*Handle, error) {
	file, err := p.ensureFileOpen("Pin")
	if err != nil {
		return nil, err
	}
	if err := file.EnsureCapacity(pageNum + 1); err != nil {
		return nil, wrap(ErrWriteFailed, "Pin", err)
	}

	buf := make([]byte, pagefile.PageSize)
	if err := file.ReadBlock(pageNum, buf); err != nil {
		// Nothing was installed; the frame remains empty (I1).
		return nil, wrap(ErrReadFailed, "Pin", err)
	}

	f := &p.frames[idx]
	f.pageNumber = pageNum
	f.data = buf
	f.pinCount = 1
	f.dirty = false
	p.pageIndex[pageNum] = idx

	p.readIO++
	p.recentHitCounter++
	p.policy.onInstall(idx, p.recentHitCounter)

	slog.Debug(logPrefix+"pin miss, empty frame", "pageNum", pageNum, "frame", idx)
	return &Handle{PageNumber: pageNum, Data: f.data}, nil
}

// installByEviction picks a victim frame via the active policy,
// flushes it if dirty, and installs pageNum in its place.
func (p *Pool) installByEviction(pageNum int) (*Handle, error) {
	idx, ok := p.policy.evict(func(i int) bool { return p.frames[i].pinCount > 0 })
	if !ok {
		return nil, wrap(ErrNoVictimAvailable, "Pin", nil)
	}
	victim := &p.frames[idx]

	if victim.dirty {
		file, err := p.ensureFileOpen("Pin")
		if err != nil {
			return nil, err
		}
		if err := file.WriteBlock(victim.pageNumber, victim.data); err != nil {
			// Victim is left in place, still dirty; the incoming pin fails.
			return nil, wrap(ErrWriteFailed, "Pin", err)
		}
		victim.dirty = false
		p.writeIO++
	}

	delete(p.pageIndex, victim.pageNumber)

	file, err := p.ensureFileOpen("Pin")
	if err != nil {
		victim.reset()
		return nil, err
	}
	if err := file.EnsureCapacity(pageNum + 1); err != nil {
		// The old page is already evicted and durably flushed; restore
		// the frame to empty rather than leaving it stale and unindexed.
		victim.reset()
		return nil, wrap(ErrWriteFailed, "Pin", err)
	}

	buf := victim.data
	if len(buf) != pagefile.PageSize {
		buf = make([]byte, pagefile.PageSize)
	}
	if err := file.ReadBlock(pageNum, buf); err != nil {
		// The old page is already evicted; restore the frame to empty.
		victim.reset()
		return nil, wrap(ErrReadFailed, "Pin", err)
	}

	victim.pageNumber = pageNum
	victim.data = buf
	victim.pinCount = 1
	victim.dirty = false
	p.pageIndex[pageNum] = idx

	p.readIO++
	p.recentHitCounter++
	p.policy.onInstall(idx, p.recentHitCounter)

	slog.Debug(logPrefix+"pin miss, evicted", "pageNum", pageNum, "frame", idx)
	return &Handle{PageNumber: pageNum, Data: victim.data}, nil
}

// Unpin decrements a page's pin count. Unpinning a page that is not
// resident, or already at a zero pin count, is a benign no-op.
func (p *Pool) Unpin(h *Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkInitialized("Unpin"); err != nil {
		return err
	}
	if h == nil {
		return wrap(ErrInvalidArgument, "Unpin", nil)
	}

	idx, ok := p.pageIndex[h.PageNumber]
	if !ok {
		return nil
	}
	f := &p.frames[idx]
	if f.pinCount > 0 {
		f.pinCount--
	}
	return nil
}

// MarkDirty marks the page referenced by h as dirty. It returns
// ErrPageNotInPool if the page is not currently resident.
func (p *Pool) MarkDirty(h *Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkInitialized("MarkDirty"); err != nil {
		return err
	}
	if h == nil {
		return wrap(ErrInvalidArgument, "MarkDirty", nil)
	}

	idx, ok := p.pageIndex[h.PageNumber]
	if !ok {
		return wrap(ErrPageNotInPool, "MarkDirty", nil)
	}
	p.frames[idx].dirty = true
	return nil
}

// ForcePage writes the page referenced by h to disk unconditionally,
// whether pinned or not, and clears its dirty flag. A page that is no
// longer resident is a no-op returning success: under well-formed
// handle-lifetime usage (§ handle validity ends at unpin) the page
// can only be absent here if the client violated that contract, so
// leniency costs nothing in practice.
func (p *Pool) ForcePage(h *Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkInitialized("ForcePage"); err != nil {
		return err
	}
	if h == nil {
		return wrap(ErrInvalidArgument, "ForcePage", nil)
	}

	idx, ok := p.pageIndex[h.PageNumber]
	if !ok {
		return nil
	}
	f := &p.frames[idx]

	file, err := p.ensureFileOpen("ForcePage")
	if err != nil {
		return err
	}
	if err := file.WriteBlock(f.pageNumber, f.data); err != nil {
		return wrap(ErrWriteFailed, "ForcePage", err)
	}
	f.dirty = false
	p.writeIO++
	return nil
}

// ForceFlushPool writes back every dirty, unpinned frame. Dirty
// frames that are still pinned are skipped, not an error. It returns
// the first write error encountered, aborting further flushes.
func (p *Pool) ForceFlushPool() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkInitialized("ForceFlushPool"); err != nil {
		return err
	}
	return p.forceFlushPoolLocked()
}

func (p *Pool) forceFlushPoolLocked() error {
	for i := range p.frames {
		f := &p.frames[i]
		if f.isEmpty() || !f.dirty || f.pinCount != 0 {
			continue
		}
		file, err := p.ensureFileOpen("ForceFlushPool")
		if err != nil {
			return err
		}
		if err := file.WriteBlock(f.pageNumber, f.data); err != nil {
			return wrap(ErrWriteFailed, "ForceFlushPool", err)
		}
		f.dirty = false
		p.writeIO++
	}
	return nil
}
