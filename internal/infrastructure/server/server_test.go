package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/GriffinCanCode/docdesk/internal/content"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/config"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docdesk/internal/testutil"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *testutil.Backend) {
	t.Helper()
	fake := testutil.NewBackend(t)

	cfg := config.Default()
	cfg.Backend = fake.Config()
	cfg.Logging.Development = true
	cfg.CORS.AllowOrigins = []string{"http://ui.test"}

	srv, err := NewServer(cfg, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, fake
}

func TestNewServerRejectsBadBackendURL(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.BaseURL = "://nope"

	_, err := NewServer(cfg, WithLogger(logging.NewNop()))
	assert.Error(t, err)
}

func TestServerRoutesAndMiddleware(t *testing.T) {
	srv, fake := newTestServer(t)
	fake.AddFolder("Reports")

	req := httptest.NewRequest(http.MethodPost, "/api/workspace/init", nil)
	req.Header.Set("Origin", "http://ui.test")
	req.Header.Set("X-Request-ID", "req-from-ui")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://ui.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "req-from-ui", w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), "Reports")
	// The local request id follows the backend calls it triggers.
	assert.Equal(t, "req-from-ui", fake.LastRequestID())
}

func TestServerExposesMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/workspace/init", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "docdesk_backend_calls_total")
}

func TestShutdownReleasesSessions(t *testing.T) {
	srv, fake := newTestServer(t)
	doc := fake.AddDocument("notes.txt", nil, content.Blob{Data: []byte("x"), ContentType: "text/plain"})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/documents/"+strconv.FormatInt(doc.ID, 10)+"/open", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, srv.sessions.Count())

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Zero(t, srv.sessions.Count())
	assert.Zero(t, srv.refs.Len())
}

func TestServerCompressesLargeResponses(t *testing.T) {
	srv, fake := newTestServer(t)
	text := strings.Repeat("All work and no play. ", 400)
	doc := fake.AddDocument("long.txt", nil, content.Blob{Data: []byte(text), ContentType: "text/plain"})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/documents/"+strconv.FormatInt(doc.ID, 10)+"/open", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var opened struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+opened.Session.ID, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), "All work and no play.")
}
