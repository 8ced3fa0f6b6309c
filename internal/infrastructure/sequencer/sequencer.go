// Package sequencer issues per-key monotonic request tokens.
//
// Every asynchronous operation whose completion mutates shared state takes a
// token before it starts. When it completes, the update is applied only if the
// token is still the latest issued for its key; older completions are dropped.
//
//	tok := seq.Next("folder:7")
//	docs := fetch(ctx)
//	if seq.IsLatest(tok) {
//	    apply(docs)
//	}
package sequencer

import (
	"fmt"
	"sync"
)

// Token identifies one issued operation for a key
type Token struct {
	Key string
	Seq uint64
}

func (t Token) String() string {
	return fmt.Sprintf("%s#%d", t.Key, t.Seq)
}

// Sequencer tracks the latest token per key
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// New creates an empty sequencer
func New() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Next issues a new token for key, superseding all earlier ones
func (s *Sequencer) Next(key string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest[key]++
	return Token{Key: key, Seq: s.latest[key]}
}

// IsLatest reports whether tok is the most recent token issued for its key
func (s *Sequencer) IsLatest(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return tok.Seq != 0 && s.latest[tok.Key] == tok.Seq
}

// Latest returns the sequence number of the newest token for key (0 if none)
func (s *Sequencer) Latest(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.latest[key]
}

// Invalidate supersedes every outstanding token for key without issuing a new one
func (s *Sequencer) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest[key]++
}

// InvalidateAll supersedes every outstanding token
func (s *Sequencer) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.latest {
		s.latest[key]++
	}
}

// FolderKey is the token key for a folder's contents fetch
func FolderKey(folderID int64) string {
	return fmt.Sprintf("folder:%d", folderID)
}

// MoveKey is the token key for moves of a single document
func MoveKey(documentID int64) string {
	return fmt.Sprintf("move:%d", documentID)
}

// Keys for workspace-wide fetches
const (
	FoldersKey   = "folders"
	DocumentsKey = "documents"
	LoginKey     = "login"
)
