package content

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ReferencePrefix marks handles issued by a Store
const ReferencePrefix = "blob:"

// ErrUnknownReference is returned for handles that were never issued or were released
var ErrUnknownReference = errors.New("unknown content reference")

// Blob is fetched document content with its declared type
type Blob struct {
	Data        []byte
	ContentType string
}

// Size returns the content length in bytes
func (b Blob) Size() int {
	return len(b.Data)
}

// Store holds transient content references, the local equivalent of
// object URLs: content is fetched once and displayed without re-fetching.
type Store struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

// NewStore creates an empty reference store
func NewStore() *Store {
	return &Store{blobs: make(map[string]Blob)}
}

// Register stores a blob and returns a new handle for it
func (s *Store) Register(blob Blob) string {
	ref := ReferencePrefix + uuid.NewString()

	s.mu.Lock()
	s.blobs[ref] = blob
	s.mu.Unlock()

	return ref
}

// RegisterText stores UTF-8 text as a text/plain blob
func (s *Store) RegisterText(text string) string {
	return s.Register(Blob{Data: []byte(text), ContentType: "text/plain; charset=utf-8"})
}

// Fetch returns the blob behind a handle
func (s *Store) Fetch(ref string) (Blob, error) {
	if !IsReference(ref) {
		return Blob{}, ErrUnknownReference
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[ref]
	if !ok {
		return Blob{}, ErrUnknownReference
	}
	return blob, nil
}

// Release drops a handle; later fetches fail
func (s *Store) Release(ref string) {
	s.mu.Lock()
	delete(s.blobs, ref)
	s.mu.Unlock()
}

// Len returns the number of live handles
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// IsReference reports whether ref has the shape of a Store handle
func IsReference(ref string) bool {
	rest, ok := strings.CutPrefix(ref, ReferencePrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
