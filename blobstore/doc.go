// Package blobstore provides the storage abstraction for archived fill images.
//
// A Store holds named blobs that are written once as a stream and read back
// sequentially. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: a directory, written through a temporary file and renamed on commit
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3 with multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Stream a new blob
//	    Delete(ctx, name) error
//	}
//
// A WritableBlob is committed by Close and discarded by Abort.
package blobstore
