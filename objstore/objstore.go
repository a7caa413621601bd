// Package objstore provides the object-storage collaborator: opaque byte
// blobs addressed by key, plus short-lived signed URLs for direct client
// upload and download.
package objstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrSigningUnavailable indicates the backend cannot issue signed URLs.
	ErrSigningUnavailable = errors.New("signed urls unavailable")
)

// DefaultSignedURLTTL bounds how long an issued signed URL stays valid.
const DefaultSignedURLTTL = 15 * time.Minute

// Store is the object-storage collaborator boundary.
// Implementations must be thread-safe for concurrent use.
type Store interface {
	// Put stores the blob under key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the blob stored under key.
	// Returns ErrNotFound if no object exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object under key. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, key string) error

	// SignedUploadURL issues a short-lived URL a client can PUT the object to.
	SignedUploadURL(ctx context.Context, key string) (string, error)

	// SignedDownloadURL issues a short-lived URL a client can GET the object from.
	SignedDownloadURL(ctx context.Context, key string) (string, error)

	// Close releases resources held by the store.
	Close() error
}
