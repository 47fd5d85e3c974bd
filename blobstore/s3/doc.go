// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("ngram/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	n, err := v.SaveBlob(ctx, store, "counts.hcv")
//	v, n, err := hashvec.LoadBlob[uint64](ctx, store, "counts.hcv")
//
// # Features
//
//   - Range reads, so loads stream the object instead of buffering it
//   - Multipart uploads for large vectors
//   - CRC32C integrity checks on Put
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
