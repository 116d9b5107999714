package bufferpool

import "github.com/tuannm99/bufcache/internal/pagefile"

// frame is one slot of the frame table. An empty frame (pageNumber ==
// pagefile.NoPage) carries no buffer, is never dirty, and has a zero
// pin count (invariant I1). A resident frame always owns exactly
// pagefile.PageSize bytes of data (invariant I2).
//
// second_chance and recent_hit from the data model are not stored
// here: they are policy-specific and live inside whichever
// replacementPolicy is active, so a frame occupied under FIFO never
// carries dead CLOCK/LRU bookkeeping it will never use.
type frame struct {
	pageNumber int
	data       []byte
	dirty      bool
	pinCount   int32
}

func emptyFrame() frame {
	return frame{pageNumber: pagefile.NoPage}
}

func (f *frame) isEmpty() bool { return f.pageNumber == pagefile.NoPage }

func (f *frame) reset() {
	f.pageNumber = pagefile.NoPage
	f.data = nil
	f.dirty = false
	f.pinCount = 0
}
