// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO, AWS S3).
package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the interface for writing, removing, and granting read access
// to blobs. The bucket is private; reads go through presigned URLs.
type Storage interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// PresignedURL returns a time-limited, credential-free read URL for key.
	// It does not check whether the key exists.
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
