package session

import (
	"context"
	"sync"
	"time"

	"github.com/GriffinCanCode/docdesk/internal/content"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docdesk/internal/shared/id"
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
	"github.com/GriffinCanCode/docdesk/internal/shared/utils"
	"go.uber.org/zap"
)

// AnswerUnavailable is recorded as the answer when a query fails
const AnswerUnavailable = "Error fetching answer, please try again."

// Session is a question/answer dialogue about one document.
// Its identity (id, document, content reference) is fixed at creation.
type Session struct {
	id         id.SessionID
	documentID *int64
	reference  string
	createdAt  time.Time

	querier Querier
	logger  *logging.Logger
	metrics *monitoring.Metrics

	// done is cancelled when the session is closed
	done   context.Context
	cancel context.CancelFunc

	// submit serializes submissions so the transcript follows submission order
	submit sync.Mutex

	mu         sync.RWMutex
	content    *content.Content
	questions  []string
	transcript []types.QAPair
	pending    string
	input      string
	closed     bool
}

func newSession(nav types.Navigation, querier Querier, logger *logging.Logger, metrics *monitoring.Metrics) *Session {
	done, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:         id.NewSessionID(),
		reference:  nav.ContentReference,
		createdAt:  time.Now(),
		querier:    querier,
		metrics:    metrics,
		done:       done,
		cancel:     cancel,
		questions:  []string{},
		transcript: []types.QAPair{},
	}
	if nav.DocumentID != nil {
		docID := *nav.DocumentID
		s.documentID = &docID
	}
	s.logger = logging.Wrap(logger.With(zap.String("session_id", s.id.String())))
	return s
}

// ID returns the session id
func (s *Session) ID() id.SessionID { return s.id }

// DocumentID returns the bound document, or nil when none is bound
func (s *Session) DocumentID() *int64 {
	if s.documentID == nil {
		return nil
	}
	docID := *s.documentID
	return &docID
}

// Reference returns the content reference the session was opened with
func (s *Session) Reference() string { return s.reference }

// CreatedAt returns when the session was opened
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// init resolves the content reference once. Without a reference, when
// the fetch fails, or when no content type was declared, the placeholder stays.
func (s *Session) init(source ContentSource) {
	if s.reference == "" {
		return
	}

	blob, err := source.Fetch(s.reference)
	if err != nil {
		s.logger.Warn("error fetching file content", zap.String("reference", s.reference), zap.Error(err))
		return
	}

	resolved, ok := content.Resolve(s.reference, blob)
	if !ok {
		s.logger.Warn("content type missing", zap.String("reference", s.reference))
		return
	}
	s.metrics.RecordContentKind(resolved.Kind.String())

	s.mu.Lock()
	s.content = &resolved
	s.mu.Unlock()
}

// Content returns the resolved content, or nil while the placeholder shows
func (s *Session) Content() *content.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.content == nil {
		return nil
	}
	c := *s.content
	return &c
}

// SetInput updates the question input
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = text
}

// Input returns the question input
func (s *Session) Input() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.input
}

// Transcript returns a copy of the question/answer pairs in order
func (s *Session) Transcript() []types.QAPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.QAPair(nil), s.transcript...)
}

// Questions returns every accepted question in submission order
func (s *Session) Questions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.questions...)
}

// Pending returns the question awaiting an answer, if any
func (s *Session) Pending() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// Closed reports whether the session has been discarded
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Submit asks a question about the bound document. An empty question or a
// session without a document fails with a ValidationError and makes no
// call. Otherwise exactly one transcript entry is appended: the answer, or
// AnswerUnavailable when the query fails. The input is cleared after every
// attempt, rejected or not.
func (s *Session) Submit(ctx context.Context, text string) (types.QAPair, error) {
	if err := utils.ValidateQuestion(text, s.documentID); err != nil {
		s.logger.Warn("question rejected", zap.Error(err))
		s.metrics.IncQuestionsRejected()
		s.mu.Lock()
		s.input = ""
		s.mu.Unlock()
		return types.QAPair{}, err
	}

	s.submit.Lock()
	defer s.submit.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return types.QAPair{}, types.ErrSessionClosed
	}
	s.questions = append(s.questions, text)
	s.pending = text
	s.mu.Unlock()

	queryCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.done, cancel)
	defer stop()

	pair := types.QAPair{Question: text}
	outcome := monitoring.OutcomeSuccess
	answer, err := s.querier.QueryDocument(queryCtx, *s.documentID, text)
	if err != nil {
		s.logger.Error("error fetching answer",
			zap.Int64("document_id", *s.documentID),
			zap.Error(err))
		pair.Answer = AnswerUnavailable
		outcome = outcomeOf(err)
	} else {
		pair.Answer = answer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = ""
	s.input = ""
	if s.closed {
		s.logger.Debug("dropping answer for closed session")
		return types.QAPair{}, types.ErrSessionClosed
	}
	s.transcript = append(s.transcript, pair)
	s.metrics.RecordTranscriptEntry(outcome)
	return pair, nil
}

// close marks the session discarded and aborts an in-flight query
func (s *Session) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

func outcomeOf(err error) string {
	switch {
	case types.IsBackend(err):
		return monitoring.OutcomeBackend
	case types.IsValidation(err):
		return monitoring.OutcomeValidation
	default:
		return monitoring.OutcomeNetwork
	}
}
