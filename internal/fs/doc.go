// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file that can be read, written, sized, synced and mapped
//   - [FileSystem]: filesystem operations (open, remove, rename, stat, truncate)
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (failed opens, short reads, write limits)
//
// # Usage
//
// Production code uses fs.Default (which is [LocalFS]):
//
//	file, err := fs.Default.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
//
// Tests inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("fill.bin", fs.Fault{TruncateReadsAt: 4096})
//	// the verifier now sees the file end after 4 KiB
//
// Filesystem calls take no context.Context: local syscalls are not
// interruptible. Remote stores live in package blobstore, which does.
package fs
