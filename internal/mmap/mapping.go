package mmap

import (
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/regionfill/internal/conv"
)

// Mapping represents a writable memory-mapped file.
// It owns the mapped byte slice; the slice is unmapped once the mapping and
// every view derived from it have been closed.
type Mapping struct {
	data []byte
	size int

	refs   atomic.Int64
	closed atomic.Bool // owner reference dropped

	// unmap is the platform-specific function to unmap the memory.
	unmap    func([]byte) error
	unmapErr error
}

// Map maps the first size bytes of the file behind fd read-write and shared.
// The file must already be at least size bytes long.
// The descriptor may be closed once Map returns; the mapping keeps its own reference
// to the underlying file.
func Map(fd Descriptor, size int64) (*Mapping, error) {
	n, err := conv.NonNegativeInt(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	m := &Mapping{size: n}
	m.refs.Store(1)

	if size == 0 {
		return m, nil
	}

	data, unmapFunc, err := osMap(fd, n)
	if err != nil {
		return nil, err
	}
	m.data = data
	m.unmap = unmapFunc

	return m, nil
}

// Close drops the owner's reference. It is idempotent.
// The memory stays mapped while views are outstanding; the returned error is the
// unmap error only if this call released the last reference.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	return m.release()
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Refs returns the number of outstanding references (owner plus open views).
func (m *Mapping) Refs() int64 {
	return m.refs.Load()
}

// Bytes returns the whole mapped slice.
// Warning: The slice is valid only while the owner reference is held, i.e. until Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// Flush synchronously writes dirty pages of the whole mapping back to the file.
func (m *Mapping) Flush() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osFlush(m.data)
}

// acquire takes a reference unless the count already dropped to zero.
func (m *Mapping) acquire() bool {
	for {
		n := m.refs.Load()
		if n <= 0 {
			return false
		}
		if m.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (m *Mapping) release() error {
	n := m.refs.Add(-1)
	if n > 0 {
		return nil
	}
	if n < 0 {
		panic("mmap: reference count underflow")
	}
	if m.unmap != nil && m.data != nil {
		m.unmapErr = m.unmap(m.data)
	}
	return m.unmapErr
}
