package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore implements Store on a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
	ttl    time.Duration
	logger *slog.Logger
}

var _ Store = (*GCSStore)(nil)

// GCSOption configures a GCSStore.
type GCSOption func(*gcsConfig)

type gcsConfig struct {
	ttl        time.Duration
	clientOpts []option.ClientOption
}

// WithSignedURLTTL sets the validity window for issued signed URLs.
func WithSignedURLTTL(ttl time.Duration) GCSOption {
	return func(c *gcsConfig) {
		c.ttl = ttl
	}
}

// WithCredentialsFile points the client at a service-account key file.
func WithCredentialsFile(path string) GCSOption {
	return func(c *gcsConfig) {
		c.clientOpts = append(c.clientOpts, option.WithCredentialsFile(path))
	}
}

// NewGCSStore creates a Store backed by the named GCS bucket.
func NewGCSStore(ctx context.Context, bucket string, opts ...GCSOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs store: bucket name required")
	}

	cfg := &gcsConfig{ttl: DefaultSignedURLTTL}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := storage.NewClient(ctx, cfg.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gcs store: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
		ttl:    cfg.ttl,
		logger: slog.Default().With("component", "gcs-store", "bucket", bucket),
	}, nil
}

// Put stores the blob under key, overwriting any existing object.
func (s *GCSStore) Put(ctx context.Context, key string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs put %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs put %q: %w", key, err)
	}
	return nil
}

// Get retrieves the blob stored under key.
func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gcs get %q: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs get %q: %w", key, err)
	}
	return data, nil
}

// Delete removes the object under key. Missing objects are not an error.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %q: %w", key, err)
	}
	return nil
}

// SignedUploadURL issues a short-lived URL a client can PUT the object to.
func (s *GCSStore) SignedUploadURL(ctx context.Context, key string) (string, error) {
	return s.signedURL(key, http.MethodPut)
}

// SignedDownloadURL issues a short-lived URL a client can GET the object from.
func (s *GCSStore) SignedDownloadURL(ctx context.Context, key string) (string, error) {
	return s.signedURL(key, http.MethodGet)
}

func (s *GCSStore) signedURL(key, method string) (string, error) {
	url, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  method,
		Expires: time.Now().Add(s.ttl),
	})
	if err != nil {
		s.logger.Error("signing failed", "key", key, "method", method, "err", err)
		return "", fmt.Errorf("%w: %v", ErrSigningUnavailable, err)
	}
	return url, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
