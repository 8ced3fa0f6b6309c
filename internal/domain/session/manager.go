package session

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/docdesk/internal/content"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docdesk/internal/shared/id"
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
	"go.uber.org/zap"
)

// Querier answers questions about a document
type Querier interface {
	QueryDocument(ctx context.Context, documentID int64, question string) (string, error)
}

// ContentSource resolves and releases content references
type ContentSource interface {
	Fetch(ref string) (content.Blob, error)
	Release(ref string)
}

// Manager keeps open document sessions by id, so a session view can be
// reloaded while the process runs.
type Manager struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*Session
	querier  Querier
	source   ContentSource
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// NewManager creates a new session manager
func NewManager(querier Querier, source ContentSource, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		sessions: make(map[id.SessionID]*Session),
		querier:  querier,
		source:   source,
		logger:   logger.Component("session"),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Open starts a session for a navigation and resolves its content once
func (m *Manager) Open(nav types.Navigation) *Session {
	s := newSession(nav, m.querier, m.logger, m.metrics)
	s.init(m.source)

	m.mu.Lock()
	m.sessions[s.id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetSessionsActive(count)
	m.logger.Info("session opened",
		zap.String("session_id", s.id.String()),
		zap.Bool("has_document", s.documentID != nil),
		zap.Bool("has_content", s.Content() != nil))
	return s
}

// Get retrieves a session by id
func (m *Manager) Get(sessionID id.SessionID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// Close discards a session. Answers still in flight are dropped and the
// content reference is released.
func (m *Manager) Close(sessionID id.SessionID) bool {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return false
	}

	s.close()
	if s.reference != "" {
		m.source.Release(s.reference)
	}
	m.metrics.SetSessionsActive(count)
	m.logger.Info("session closed", zap.String("session_id", sessionID.String()))
	return true
}

// CloseAll discards every session
func (m *Manager) CloseAll() {
	m.mu.RLock()
	ids := make([]id.SessionID, 0, len(m.sessions))
	for sessionID := range m.sessions {
		ids = append(ids, sessionID)
	}
	m.mu.RUnlock()

	for _, sessionID := range ids {
		m.Close(sessionID)
	}
}

// Count returns the number of open sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
