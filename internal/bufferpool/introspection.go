package bufferpool

// FrameSnapshot bundles one frame's introspectable state, for callers
// (such as cmd/bufpoolctl) that want the whole table at once rather
// than four parallel arrays.
type FrameSnapshot struct {
	PageNumber int
	Dirty      bool
	PinCount   int32
}

// FrameContents returns, for each frame, its resident page number or
// pagefile.NoPage if the frame is empty.
func (p *Pool) FrameContents() []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]int, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.pageNumber
	}
	return out
}

// DirtyFlags returns, for each frame, whether its buffer has been
// modified since it was loaded or last written.
func (p *Pool) DirtyFlags() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]bool, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.dirty
	}
	return out
}

// FixCounts returns, for each frame, its current pin count.
func (p *Pool) FixCounts() []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]int32, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.pinCount
	}
	return out
}

// NumReadIO returns the cumulative count of pages read from disk.
func (p *Pool) NumReadIO() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readIO
}

// NumWriteIO returns the cumulative count of pages written to disk.
func (p *Pool) NumWriteIO() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writeIO
}

// Snapshot returns a per-frame view combining FrameContents,
// DirtyFlags, and FixCounts in one atomic pass.
func (p *Pool) Snapshot() []FrameSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]FrameSnapshot, len(p.frames))
	for i, f := range p.frames {
		out[i] = FrameSnapshot{PageNumber: f.pageNumber, Dirty: f.dirty, PinCount: f.pinCount}
	}
	return out
}
