// Package blobstore abstracts where dataset samples live.
//
// Store is the read side the ingestion pipeline resolves image and mask
// bytes through. Implementations must be safe for concurrent use — the
// producer pool reads from many goroutines.
//
// # Built-in Implementations
//
//   - Local: local filesystem, optionally rooted at a directory
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: Amazon S3
package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store reads named immutable blobs.
type Store interface {
	// Read returns the full contents of the named blob. The bytes are
	// owned by the caller.
	Read(ctx context.Context, name string) ([]byte, error)
}
