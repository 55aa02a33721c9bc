package mmap

import (
	"io"
	"os"
	"sync/atomic"
)

// View is a writable window into a Mapping.
// A view holds a reference on its parent, so it remains usable after the
// parent Mapping has been closed. Write advances an internal cursor the way a
// file stream does.
type View struct {
	parent *Mapping
	offset int
	size   int
	pos    int
	closed atomic.Bool
}

// View derives a new view covering [offset, offset+size) of the mapping.
// Views of the same mapping may overlap; keeping them disjoint is the caller's job.
func (m *Mapping) View(offset, size int64) (*View, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 || offset+size > int64(m.size) {
		return nil, ErrOutOfBounds
	}
	if !m.acquire() {
		return nil, ErrClosed
	}
	return &View{
		parent: m,
		offset: int(offset),
		size:   int(size),
	}, nil
}

// Offset returns the view's start offset within the mapping.
func (v *View) Offset() int64 { return int64(v.offset) }

// Len returns the length of the view in bytes.
func (v *View) Len() int64 { return int64(v.size) }

// Written returns how far the write cursor has advanced.
func (v *View) Written() int64 { return int64(v.pos) }

// Bytes returns the byte slice for this view, or nil once the view is closed.
func (v *View) Bytes() []byte {
	if v.closed.Load() {
		return nil
	}
	return v.parent.data[v.offset : v.offset+v.size]
}

// Write copies p at the cursor. When p does not fit into the remaining window,
// the fitting prefix is written and io.ErrShortWrite is returned.
func (v *View) Write(p []byte) (int, error) {
	if v.closed.Load() {
		return 0, ErrViewClosed
	}
	n := copy(v.parent.data[v.offset+v.pos:v.offset+v.size], p)
	v.pos += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Seek moves the write cursor. Offsets are relative to the start of the view.
func (v *View) Seek(offset int64, whence int) (int64, error) {
	if v.closed.Load() {
		return 0, ErrViewClosed
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(v.pos) + offset
	case io.SeekEnd:
		abs = int64(v.size) + offset
	default:
		return 0, os.ErrInvalid
	}
	if abs < 0 || abs > int64(v.size) {
		return 0, ErrOutOfBounds
	}
	v.pos = int(abs)
	return abs, nil
}

// Advise provides hints to the kernel about how this view will be accessed.
func (v *View) Advise(pattern AccessPattern) error {
	if v.closed.Load() {
		return ErrViewClosed
	}
	return osAdvise(v.pageAligned(), pattern)
}

// Flush synchronously writes the view's dirty pages back to the file.
func (v *View) Flush() error {
	if v.closed.Load() {
		return ErrViewClosed
	}
	return osFlush(v.pageAligned())
}

// Close releases the view's reference on the parent mapping. It is idempotent.
func (v *View) Close() error {
	if v.closed.Swap(true) {
		return nil
	}
	return v.parent.release()
}

// pageAligned widens the view to start on a page boundary, as msync and
// madvise require. The mapping itself always starts page aligned.
func (v *View) pageAligned() []byte {
	if v.size == 0 {
		return nil
	}
	start := v.offset &^ (os.Getpagesize() - 1)
	return v.parent.data[start : v.offset+v.size]
}
