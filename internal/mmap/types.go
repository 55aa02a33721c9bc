package mmap

import "errors"

// AccessPattern provides hints to the kernel about how the data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom expects data to be accessed randomly.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
	// AccessDontNeed expects data to not be accessed in the near future.
	AccessDontNeed
)

var (
	// ErrClosed is returned when deriving a view from, or accessing, a released mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the requested mapping size is invalid (e.g. negative or too large).
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrOutOfBounds is returned when a view would extend outside the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrViewClosed is returned when using a view after Close.
	ErrViewClosed = errors.New("mmap: view is closed")
)

// Descriptor is implemented by *os.File and anything else exposing a file descriptor.
type Descriptor interface {
	Fd() uintptr
}
