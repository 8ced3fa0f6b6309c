// Package testutil provides testing utilities shared by package tests.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/GriffinCanCode/docdesk/internal/content"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/config"
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// Route keys used for call counting and failure injection
const (
	RouteCheckLogin      = "check-login"
	RouteFoldersView     = "folders-view"
	RouteDocumentsView   = "documents-view"
	RouteFolderDocuments = "folder-documents"
	RouteCreateFolder    = "create-folder"
	RouteMoveDocument    = "move-document"
	RouteFetchDocument   = "fetch-document"
	RouteUploadDocument  = "upload-document"
	RouteLogout          = "logout"
	RouteQueryDocument   = "query-document"
)

// Disconnect as a failure status drops the connection without a response
const Disconnect = -1

// SessionCookieName is the cookie the fake backend authenticates with
const SessionCookieName = "session_id"

type failure struct {
	status  int
	message string
}

// Upload records a received multipart upload
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Backend is an in-memory document backend served over HTTP.
// Handlers answer from the stored state and every call is counted.
type Backend struct {
	server *httptest.Server
	cookie string

	mu        sync.Mutex
	loggedIn  bool
	folders   []types.Folder
	documents map[int64]types.Document
	blobs     map[int64]content.Blob
	nextID    int64
	failures  map[string]failure
	calls     map[string]int
	rejected  int
	requestID string
	uploads   []Upload
	queries   []types.QueryRequest
	answer    func(documentID int64, question string) string
}

// NewBackend starts a fake backend that is logged in and closes with the test
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		cookie:    "test-session",
		loggedIn:  true,
		documents: make(map[int64]types.Document),
		blobs:     make(map[int64]content.Blob),
		nextID:    1,
		failures:  make(map[string]failure),
		calls:     make(map[string]int),
		answer: func(documentID int64, question string) string {
			return fmt.Sprintf("answer to %q about %d", question, documentID)
		},
	}

	router := gin.New()
	router.GET("/check-login/", b.handle(RouteCheckLogin, false, b.checkLogin))
	router.GET("/folders-view/", b.handle(RouteFoldersView, true, b.listFolders))
	router.GET("/documents-view/", b.handle(RouteDocumentsView, true, b.listDocuments))
	router.GET("/folders/:folderId/documents/", b.handle(RouteFolderDocuments, true, b.folderDocuments))
	router.POST("/folders/", b.handle(RouteCreateFolder, true, b.createFolder))
	router.PATCH("/folders/:folderId/documents/:docId", b.handle(RouteMoveDocument, true, b.moveDocument))
	router.GET("/documents/:docId/", b.handle(RouteFetchDocument, true, b.fetchDocument))
	router.POST("/upload-document/", b.handle(RouteUploadDocument, true, b.uploadDocument))
	router.POST("/logout/", b.handle(RouteLogout, true, b.logout))
	router.POST("/query-document/", b.handle(RouteQueryDocument, true, b.queryDocument))

	b.server = httptest.NewServer(router)
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the backend base URL
func (b *Backend) URL() string {
	return b.server.URL
}

// Config returns client configuration carrying the session cookie
func (b *Backend) Config() config.BackendConfig {
	return config.BackendConfig{
		BaseURL:         b.server.URL,
		SessionCookie:   SessionCookieName + "=" + b.cookie,
		UserAgent:       "docdesk-test",
		BreakerFailures: 100,
	}
}

// SetLoggedIn toggles the session state reported by check-login
func (b *Backend) SetLoggedIn(loggedIn bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loggedIn = loggedIn
}

// LoggedIn reports the session state
func (b *Backend) LoggedIn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loggedIn
}

// SetAnswer replaces the query answer function
func (b *Backend) SetAnswer(fn func(documentID int64, question string) string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answer = fn
}

// Fail makes every call to route answer with status and message.
// Use Disconnect to drop the connection instead.
func (b *Backend) Fail(route string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = failure{status: status, message: message}
}

// Recover clears an injected failure
func (b *Backend) Recover(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, route)
}

// Calls returns how many requests reached route
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// TotalCalls returns the number of requests across all routes
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

// Unauthenticated returns how many requests arrived without the session cookie
func (b *Backend) Unauthenticated() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rejected
}

// LastRequestID returns the X-Request-ID of the most recent call
func (b *Backend) LastRequestID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requestID
}

// AddFolder stores a folder and returns it
func (b *Backend) AddFolder(name string) types.Folder {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addFolderLocked(name)
}

// AddDocument stores a document with optional content
func (b *Backend) AddDocument(fileName string, folderID *int64, blob content.Blob) types.Document {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc := types.Document{ID: b.nextID, FileName: fileName, FolderID: folderID}
	b.nextID++
	b.documents[doc.ID] = doc
	b.blobs[doc.ID] = blob
	return doc
}

// Document returns the stored document
func (b *Backend) Document(id int64) (types.Document, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, ok := b.documents[id]
	return doc, ok
}

// Folders returns the stored folders in creation order
func (b *Backend) Folders() []types.Folder {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.Folder(nil), b.folders...)
}

// Uploads returns received uploads in order
func (b *Backend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

// Queries returns received queries in order
func (b *Backend) Queries() []types.QueryRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.QueryRequest(nil), b.queries...)
}

func (b *Backend) addFolderLocked(name string) types.Folder {
	folder := types.Folder{ID: b.nextID, Name: name}
	b.nextID++
	b.folders = append(b.folders, folder)
	return folder
}

func (b *Backend) sortedDocumentsLocked(keep func(types.Document) bool) []types.Document {
	docs := make([]types.Document, 0, len(b.documents))
	for _, doc := range b.documents {
		if keep(doc) {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func (b *Backend) folderExistsLocked(id int64) bool {
	for _, f := range b.folders {
		if f.ID == id {
			return true
		}
	}
	return false
}

// handle counts the call, applies injected failures and checks the cookie
func (b *Backend) handle(route string, auth bool, fn gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		b.calls[route]++
		b.requestID = c.GetHeader("X-Request-ID")
		fail, failing := b.failures[route]
		cookieOK := b.hasCookie(c)
		if !cookieOK {
			b.rejected++
		}
		b.mu.Unlock()

		if failing {
			if fail.status == Disconnect {
				if conn, _, err := c.Writer.Hijack(); err == nil {
					conn.Close()
				}
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(fail.status, gin.H{"message": fail.message})
			return
		}
		if auth && !cookieOK {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		fn(c)
	}
}

func (b *Backend) hasCookie(c *gin.Context) bool {
	value, err := c.Cookie(SessionCookieName)
	return err == nil && value == b.cookie
}

func (b *Backend) checkLogin(c *gin.Context) {
	b.mu.Lock()
	loggedIn := b.loggedIn && b.hasCookie(c)
	b.mu.Unlock()

	if loggedIn {
		c.JSON(http.StatusOK, types.LoginStatus{Status: types.LoggedIn})
		return
	}
	c.JSON(http.StatusOK, types.LoginStatus{Status: "Not logged in"})
}

func (b *Backend) listFolders(c *gin.Context) {
	c.JSON(http.StatusOK, b.Folders())
}

func (b *Backend) listDocuments(c *gin.Context) {
	b.mu.Lock()
	docs := b.sortedDocumentsLocked(func(types.Document) bool { return true })
	b.mu.Unlock()
	c.JSON(http.StatusOK, docs)
}

func (b *Backend) folderDocuments(c *gin.Context) {
	folderID, ok := pathID(c, "folderId")
	if !ok {
		return
	}

	b.mu.Lock()
	docs := b.sortedDocumentsLocked(func(d types.Document) bool { return d.InFolder(folderID) })
	b.mu.Unlock()
	c.JSON(http.StatusOK, docs)
}

func (b *Backend) createFolder(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "name is required"})
		return
	}

	b.mu.Lock()
	folder := b.addFolderLocked(body.Name)
	b.mu.Unlock()
	c.JSON(http.StatusOK, folder)
}

func (b *Backend) moveDocument(c *gin.Context) {
	folderID, ok := pathID(c, "folderId")
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}
	var body struct {
		FolderID int64 `json:"folder_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.FolderID != folderID {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "folder_id mismatch"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	doc, exists := b.documents[docID]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "Document not found"})
		return
	}
	if !b.folderExistsLocked(folderID) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Folder not found"})
		return
	}
	doc = doc.WithFolder(folderID)
	b.documents[docID] = doc
	c.JSON(http.StatusOK, doc)
}

func (b *Backend) fetchDocument(c *gin.Context) {
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}

	b.mu.Lock()
	blob, exists := b.blobs[docID]
	b.mu.Unlock()
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "Document not found"})
		return
	}
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}

func (b *Backend) uploadDocument(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file provided"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	contentType := header.Header.Get("Content-Type")
	b.mu.Lock()
	b.uploads = append(b.uploads, Upload{FileName: header.Filename, ContentType: contentType, Data: data})
	doc := types.Document{ID: b.nextID, FileName: header.Filename}
	b.nextID++
	b.documents[doc.ID] = doc
	b.blobs[doc.ID] = content.Blob{Data: data, ContentType: contentType}
	b.mu.Unlock()

	c.JSON(http.StatusOK, types.UploadResult{
		Message:     "File uploaded successfully",
		FileContent: string(data),
	})
}

func (b *Backend) logout(c *gin.Context) {
	b.SetLoggedIn(false)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (b *Backend) queryDocument(c *gin.Context) {
	var req types.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	b.queries = append(b.queries, req)
	answer := b.answer
	b.mu.Unlock()

	c.JSON(http.StatusOK, types.QueryResponse{Answer: answer(req.DocumentID, req.Question)})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid " + name})
		return 0, false
	}
	return id, true
}
