// Package mmap provides shared, writable memory-mapped files with
// reference-counted region views.
//
// # Overview
//
// A Mapping maps a file (or a prefix of it) read-write with MAP_SHARED
// semantics, so stores into the mapped bytes reach the file through the page
// cache. Callers carve the mapping into Views: non-overlapping windows that
// can be handed to independent goroutines.
//
// # Usage
//
//	m, err := mmap.Map(f, size)
//	if err != nil { ... }
//
//	v, _ := m.View(offset, length)
//	m.Close() // the view keeps the mapping alive
//
//	go func() {
//	    defer v.Close()
//	    v.Write(data)
//	}()
//
// # Lifetime
//
// The creator of a Mapping holds one reference; every View holds another.
// Close on the Mapping and Close on a View each drop one reference, and the
// memory is unmapped when the last reference is dropped. A View therefore stays
// valid after its parent Mapping has been closed.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), msync(2) and madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile and FlushViewOfFile (advice is a no-op)
//
// # Thread Safety
//
// Reference counting is atomic. Views are not safe for concurrent Write calls;
// each View is meant to be owned by exactly one goroutine.
package mmap
