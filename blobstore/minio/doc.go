// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible servers such as Ceph,
// SeaweedFS and Garage without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.New("localhost:9000", "minioadmin", "minioadmin", "my-bucket",
//	    minioblob.WithPrefix("ngram/"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	n, err := v.SaveBlob(ctx, store, "counts.hcv")
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
