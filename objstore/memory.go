package objstore

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore implements Store with an in-process map. It backs tests and
// local single-node runs; signed URLs are opaque pseudo-URLs that only this
// process understands.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Put stores the blob under key, overwriting any existing object.
func (s *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[key] = cp
	return nil
}

// Get retrieves the blob stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Delete removes the object under key. Missing objects are not an error.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// SignedUploadURL issues a pseudo-URL naming the key.
func (s *MemoryStore) SignedUploadURL(ctx context.Context, key string) (string, error) {
	return fmt.Sprintf("memory://upload/%s", key), nil
}

// SignedDownloadURL issues a pseudo-URL naming the key.
func (s *MemoryStore) SignedDownloadURL(ctx context.Context, key string) (string, error) {
	return fmt.Sprintf("memory://download/%s", key), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored objects, for test assertions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
