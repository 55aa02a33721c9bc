// Package s3 implements blobstore.Store on Amazon S3.
//
// Blobs are streamed to S3 through the SDK's multipart upload manager, so an
// archive of any size is uploaded without being buffered in memory:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "fills/")
//
// Reads use a single GetObject per reader and stream the body.
package s3
