package cache

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BlobScheme prefixes every handle minted by a BlobStore.
const BlobScheme = "blob:"

// ErrUnknownHandle is returned for a handle the store never issued or has revoked.
var ErrUnknownHandle = errors.New("unknown blob handle")

// Blob is an encoded clip held in memory.
type Blob struct {
	Data      []byte
	MediaType string
	Created   time.Time
}

// BlobStore maps opaque blob: handles to encoded clips. Handles stay valid
// until revoked or the process exits; nothing is evicted behind a caller's back.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
	size  int64
}

func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]Blob)}
}

// Register stores data and returns a fresh handle for it.
func (s *BlobStore) Register(data []byte, mediaType string) string {
	handle := BlobScheme + uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[handle] = Blob{Data: data, MediaType: mediaType, Created: time.Now()}
	s.size += int64(len(data))
	return handle
}

// Lookup returns the blob for handle.
func (s *BlobStore) Lookup(handle string) (Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[handle]
	if !ok {
		return Blob{}, ErrUnknownHandle
	}
	return b, nil
}

// Revoke forgets handle. Revoking an unknown handle is a no-op.
func (s *BlobStore) Revoke(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.blobs[handle]; ok {
		s.size -= int64(len(b.Data))
		delete(s.blobs, handle)
	}
}

// Len returns the number of live handles.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Size returns the bytes held by live handles.
func (s *BlobStore) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// IsBlobHandle reports whether handle was minted by a BlobStore.
func IsBlobHandle(handle string) bool {
	return strings.HasPrefix(handle, BlobScheme)
}
