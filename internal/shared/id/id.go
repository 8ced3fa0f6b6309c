// Package id provides ULID-based identifiers for docdesk.
//
// Identifiers are prefixed so they read well in logs:
//   - sess_<ulid>: document Q&A sessions
//   - req_<ulid>: outbound backend requests (sent as X-Request-ID)
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionID identifies a document Q&A session
type SessionID string

// RequestID identifies a single backend request
type RequestID string

const (
	SessionPrefix = "sess"
	RequestPrefix = "req"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewSessionID generates a new session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

func (id SessionID) String() string { return string(id) }
func (id RequestID) String() string { return string(id) }

// ParseSessionID validates a session ID received from a caller
func ParseSessionID(s string) (SessionID, error) {
	prefix, rest, ok := strings.Cut(s, "_")
	if !ok || prefix != SessionPrefix {
		return "", fmt.Errorf("invalid session id %q: missing %s_ prefix", s, SessionPrefix)
	}
	if _, err := ulid.Parse(rest); err != nil {
		return "", fmt.Errorf("invalid session id %q: %w", s, err)
	}
	return SessionID(s), nil
}
