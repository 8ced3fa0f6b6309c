package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/GriffinCanCode/docdesk/internal/content"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) QueryDocument(ctx context.Context, documentID int64, question string) (string, error) {
	args := m.Called(ctx, documentID, question)
	if fn, ok := args.Get(0).(func(context.Context, int64, string) (string, error)); ok {
		return fn(ctx, documentID, question)
	}
	return args.String(0), args.Error(1)
}

func docID(id int64) *int64 { return &id }

func newManager(q Querier) (*Manager, *content.Store) {
	refs := content.NewStore()
	return NewManager(q, refs, logging.NewNop()), refs
}

func TestOpen(t *testing.T) {
	t.Run("no reference shows placeholder", func(t *testing.T) {
		m, _ := newManager(&mockQuerier{})
		s := m.Open(types.Navigation{})

		assert.Nil(t, s.Content())
		v := s.View()
		assert.Equal(t, content.ModePlaceholder, v.Document.Mode)
		assert.Equal(t, "Click the document to upload", v.Document.Body)
	})

	t.Run("text content", func(t *testing.T) {
		m, refs := newManager(&mockQuerier{})
		ref := refs.Register(content.Blob{Data: []byte("a,b,c"), ContentType: "text/plain; charset=utf-8"})

		s := m.Open(types.Navigation{ContentReference: ref, DocumentID: docID(3)})

		v := s.View()
		assert.Equal(t, content.ModeText, v.Document.Mode)
		assert.Equal(t, "a,b,c", v.Document.Body)
		assert.Equal(t, int64(3), *v.DocumentID)
	})

	t.Run("pdf content embeds reference", func(t *testing.T) {
		m, refs := newManager(&mockQuerier{})
		ref := refs.Register(content.Blob{Data: []byte("%PDF-1.4"), ContentType: "application/pdf"})

		s := m.Open(types.Navigation{ContentReference: ref, DocumentID: docID(3)})

		v := s.View()
		assert.Equal(t, content.ModeEmbed, v.Document.Mode)
		assert.Equal(t, ref, v.Document.Source)
	})

	t.Run("unsupported content names the type", func(t *testing.T) {
		m, refs := newManager(&mockQuerier{})
		ref := refs.Register(content.Blob{Data: []byte{1, 2}, ContentType: "application/vnd.ms-powerpoint"})

		s := m.Open(types.Navigation{ContentReference: ref})

		assert.Equal(t, "Unsupported file type: application/vnd.ms-powerpoint", s.View().Document.Body)
	})

	t.Run("octet-stream is unsupported", func(t *testing.T) {
		m, refs := newManager(&mockQuerier{})
		ref := refs.Register(content.Blob{Data: []byte("%PDF-1.4"), ContentType: "application/octet-stream"})

		s := m.Open(types.Navigation{ContentReference: ref})

		v := s.View()
		assert.Equal(t, content.ModeNotice, v.Document.Mode)
		assert.Equal(t, "Unsupported file type: application/octet-stream", v.Document.Body)
	})

	t.Run("missing content type keeps placeholder", func(t *testing.T) {
		m, refs := newManager(&mockQuerier{})
		ref := refs.Register(content.Blob{Data: []byte("%PDF-1.4")})

		s := m.Open(types.Navigation{ContentReference: ref})

		assert.Nil(t, s.Content())
		assert.Equal(t, content.ModePlaceholder, s.View().Document.Mode)
	})

	t.Run("html shows decoded markup", func(t *testing.T) {
		m, refs := newManager(&mockQuerier{})
		ref := refs.Register(content.Blob{Data: []byte("<p>a &lt;b&gt;</p>"), ContentType: "text/html"})

		s := m.Open(types.Navigation{ContentReference: ref})

		assert.Equal(t, "<p>a &lt;b&gt;</p>", s.View().Document.Body)
	})

	t.Run("unknown reference keeps placeholder", func(t *testing.T) {
		m, _ := newManager(&mockQuerier{})
		s := m.Open(types.Navigation{ContentReference: "blob:00000000-0000-0000-0000-000000000000"})

		assert.Nil(t, s.Content())
		assert.Equal(t, content.ModePlaceholder, s.View().Document.Mode)
	})

	t.Run("identity is copied", func(t *testing.T) {
		m, _ := newManager(&mockQuerier{})
		id := int64(4)
		s := m.Open(types.Navigation{DocumentID: &id})
		id = 99

		assert.Equal(t, int64(4), *s.DocumentID())
		got, ok := m.Get(s.ID())
		require.True(t, ok)
		assert.Same(t, s, got)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("answer is appended", func(t *testing.T) {
		q := &mockQuerier{}
		q.On("QueryDocument", mock.Anything, int64(42), "What is this?").Return("It is a report.", nil).Once()
		m, _ := newManager(q)
		s := m.Open(types.Navigation{DocumentID: docID(42)})
		s.SetInput("What is this?")

		pair, err := s.Submit(ctx, "What is this?")
		require.NoError(t, err)

		assert.Equal(t, types.QAPair{Question: "What is this?", Answer: "It is a report."}, pair)
		assert.Equal(t, []types.QAPair{pair}, s.Transcript())
		assert.Empty(t, s.Input())
		assert.Empty(t, s.Pending())
		q.AssertExpectations(t)
	})

	t.Run("failure appends fixed answer", func(t *testing.T) {
		q := &mockQuerier{}
		q.On("QueryDocument", mock.Anything, int64(42), "Summarize").
			Return("", &types.BackendError{Op: "query_document", Status: 500, Message: "boom"}).Once()
		m, _ := newManager(q)
		s := m.Open(types.Navigation{DocumentID: docID(42)})
		s.SetInput("Summarize")

		pair, err := s.Submit(ctx, "Summarize")
		require.NoError(t, err)

		assert.Equal(t, types.QAPair{Question: "Summarize", Answer: "Error fetching answer, please try again."}, pair)
		assert.Len(t, s.Transcript(), 1)
		assert.Empty(t, s.Input())
	})

	t.Run("empty question makes no call", func(t *testing.T) {
		q := &mockQuerier{}
		m, _ := newManager(q)
		s := m.Open(types.Navigation{DocumentID: docID(42)})

		_, err := s.Submit(ctx, "")

		assert.True(t, types.IsValidation(err))
		assert.Empty(t, s.Transcript())
		assert.Empty(t, s.Questions())
		q.AssertNotCalled(t, "QueryDocument", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no bound document makes no call", func(t *testing.T) {
		q := &mockQuerier{}
		m, _ := newManager(q)
		s := m.Open(types.Navigation{})
		s.SetInput("hello")

		_, err := s.Submit(ctx, "hello")

		var ve *types.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Missing user input or document ID", ve.Message)
		assert.Empty(t, s.Transcript())
		assert.Empty(t, s.Input())
		q.AssertNotCalled(t, "QueryDocument", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTranscriptFollowsSubmissionOrder(t *testing.T) {
	ctx := context.Background()
	q := &mockQuerier{}
	q.On("QueryDocument", mock.Anything, int64(1), mock.Anything).
		Return(func(_ context.Context, _ int64, question string) (string, error) {
			if question == "q3" {
				return "", errors.New("connection refused")
			}
			return "a-" + question, nil
		})
	m, _ := newManager(q)
	s := m.Open(types.Navigation{DocumentID: docID(1)})

	questions := []string{"q1", "q2", "q3", "q4", "q5"}
	for _, text := range questions {
		_, err := s.Submit(ctx, text)
		require.NoError(t, err)
	}

	transcript := s.Transcript()
	require.Len(t, transcript, len(questions))
	for i, pair := range transcript {
		assert.Equal(t, questions[i], pair.Question)
	}
	assert.Equal(t, AnswerUnavailable, transcript[2].Answer)
	assert.Equal(t, questions, s.Questions())
}

func TestConcurrentSubmissionsAreSerialized(t *testing.T) {
	ctx := context.Background()
	q := &mockQuerier{}

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	q.On("QueryDocument", mock.Anything, int64(1), mock.Anything).
		Run(func(mock.Arguments) {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()
		}).
		Return(func(_ context.Context, _ int64, question string) (string, error) {
			mu.Lock()
			inFlight--
			mu.Unlock()
			return "a-" + question, nil
		})

	m, _ := newManager(q)
	s := m.Open(types.Navigation{DocumentID: docID(1)})

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Submit(ctx, fmt.Sprintf("q%d", i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight)
	transcript := s.Transcript()
	require.Len(t, transcript, n)
	assert.Equal(t, s.Questions(), questionsOf(transcript))
}

func questionsOf(pairs []types.QAPair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Question
	}
	return out
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	t.Run("releases the reference", func(t *testing.T) {
		m, refs := newManager(&mockQuerier{})
		ref := refs.RegisterText("hello")
		s := m.Open(types.Navigation{ContentReference: ref})

		assert.True(t, m.Close(s.ID()))
		assert.False(t, m.Close(s.ID()))

		_, ok := m.Get(s.ID())
		assert.False(t, ok)
		assert.True(t, s.Closed())
		_, err := refs.Fetch(ref)
		assert.ErrorIs(t, err, content.ErrUnknownReference)
	})

	t.Run("in-flight answer is dropped", func(t *testing.T) {
		q := &mockQuerier{}
		started := make(chan struct{})
		q.On("QueryDocument", mock.Anything, int64(1), "slow").
			Run(func(args mock.Arguments) {
				close(started)
				<-args.Get(0).(context.Context).Done()
			}).
			Return("", context.Canceled).Once()
		m, _ := newManager(q)
		s := m.Open(types.Navigation{DocumentID: docID(1)})

		errc := make(chan error, 1)
		go func() {
			_, err := s.Submit(ctx, "slow")
			errc <- err
		}()
		<-started

		m.Close(s.ID())

		assert.ErrorIs(t, <-errc, types.ErrSessionClosed)
		assert.Empty(t, s.Transcript())
	})

	t.Run("submit after close", func(t *testing.T) {
		m, _ := newManager(&mockQuerier{})
		s := m.Open(types.Navigation{DocumentID: docID(1)})
		m.Close(s.ID())

		_, err := s.Submit(ctx, "late")
		assert.ErrorIs(t, err, types.ErrSessionClosed)
	})

	t.Run("close all", func(t *testing.T) {
		m, _ := newManager(&mockQuerier{})
		m.Open(types.Navigation{})
		m.Open(types.Navigation{})
		require.Equal(t, 2, m.Count())

		m.CloseAll()
		assert.Zero(t, m.Count())
	})
}

func TestSessionMetrics(t *testing.T) {
	ctx := context.Background()
	q := &mockQuerier{}
	q.On("QueryDocument", mock.Anything, int64(1), "ok").Return("yes", nil)
	q.On("QueryDocument", mock.Anything, int64(1), "bad").Return("", &types.NetworkError{Op: "query_document", Err: errors.New("eof")})

	metrics := monitoring.NewMetrics()
	refs := content.NewStore()
	m := NewManager(q, refs, nil).WithMetrics(metrics)
	s := m.Open(types.Navigation{ContentReference: refs.RegisterText("x"), DocumentID: docID(1)})

	_, _ = s.Submit(ctx, "ok")
	_, _ = s.Submit(ctx, "bad")
	_, _ = s.Submit(ctx, "")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TranscriptEntries.WithLabelValues(monitoring.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TranscriptEntries.WithLabelValues(monitoring.OutcomeNetwork)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.QuestionsRejected))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ContentKindsServed.WithLabelValues("text")))
}
