// Package pagefile implements the Page File external collaborator: a
// positional, byte-addressed reader/writer over a file laid out as a
// contiguous sequence of equally sized pages. The buffer pool consumes
// it through this narrow interface and otherwise treats it as opaque.
package pagefile

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// PageSize is the fixed size, in bytes, of every page. It never varies
// across files or pools.
const PageSize = 4096

// NoPage is the sentinel page number denoting an empty frame.
const NoPage = -1

// File is an open handle onto a page file.
type File struct {
	f         *os.File
	mu        sync.Mutex
	pageCount int
}

// Create creates a new file containing exactly one zero-filled page.
// It fails if name already exists.
func Create(name string) error {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o664)
	if err != nil {
		return fmt.Errorf("pagefile: create %s: %w", name, err)
	}
	defer f.Close()

	zero := make([]byte, PageSize)
	if _, err := f.WriteAt(zero, 0); err != nil {
		return fmt.Errorf("pagefile: create %s: %w", name, err)
	}
	return nil
}

// Open opens an existing page file. The returned handle exposes the
// file's current page count.
func Open(name string) (*File, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0o664)
	if err != nil {
		return nil, fmt.Errorf("pagefile: open %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("pagefile: stat %s: %w", name, err)
	}
	return &File{
		f:         f,
		pageCount: int(info.Size() / PageSize),
	}, nil
}

// Close closes the handle.
func (pf *File) Close() error {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.f.Close()
}

// PageCount returns the number of whole pages currently in the file.
func (pf *File) PageCount() int {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.pageCount
}

// ReadBlock reads PageSize bytes at offset n*PageSize into dest. It
// fails if n is out of range or dest is not exactly PageSize long.
func (pf *File) ReadBlock(n int, dest []byte) error {
	if n < 0 {
		return fmt.Errorf("pagefile: negative page number %d", n)
	}
	if len(dest) != PageSize {
		return fmt.Errorf("pagefile: dest must be exactly %d bytes, got %d", PageSize, len(dest))
	}

	pf.mu.Lock()
	defer pf.mu.Unlock()

	if n >= pf.pageCount {
		return fmt.Errorf("pagefile: page %d out of range (file holds %d pages)", n, pf.pageCount)
	}
	if _, err := pf.f.ReadAt(dest, int64(n)*PageSize); err != nil && err != io.EOF {
		return fmt.Errorf("pagefile: read page %d: %w", n, err)
	}
	return nil
}

// WriteBlock writes PageSize bytes from src at offset n*PageSize,
// extending the file if necessary.
func (pf *File) WriteBlock(n int, src []byte) error {
	if n < 0 {
		return fmt.Errorf("pagefile: negative page number %d", n)
	}
	if len(src) != PageSize {
		return fmt.Errorf("pagefile: src must be exactly %d bytes, got %d", PageSize, len(src))
	}

	pf.mu.Lock()
	defer pf.mu.Unlock()

	if _, err := pf.f.WriteAt(src, int64(n)*PageSize); err != nil {
		return fmt.Errorf("pagefile: write page %d: %w", n, err)
	}
	if n+1 > pf.pageCount {
		pf.pageCount = n + 1
	}
	return nil
}

// EnsureCapacity grows the file to at least k pages, appending
// zero-filled pages as needed. It is a no-op if the file already holds
// k or more pages.
func (pf *File) EnsureCapacity(k int) error {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	if k <= pf.pageCount {
		return nil
	}
	zero := make([]byte, PageSize)
	for n := pf.pageCount; n < k; n++ {
		if _, err := pf.f.WriteAt(zero, int64(n)*PageSize); err != nil {
			return fmt.Errorf("pagefile: grow to %d pages: %w", k, err)
		}
	}
	pf.pageCount = k
	return nil
}
