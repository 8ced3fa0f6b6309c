package http

import (
	"net/http"

	"github.com/GriffinCanCode/docdesk/internal/domain/workspace"
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetWorkspace renders the current workspace without contacting the backend
func (h *Handlers) GetWorkspace(c *gin.Context) {
	c.JSON(http.StatusOK, h.organizer.View())
}

// InitWorkspace checks the login state and loads folders and documents
func (h *Handlers) InitWorkspace(c *gin.Context) {
	snap := h.organizer.Init(c.Request.Context())
	c.JSON(http.StatusOK, workspace.Render(snap))
}

// NavigateHome tells the client where the home link leads
func (h *Handlers) NavigateHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"route": h.organizer.NavigateHome()})
}

// Logout ends the backend session and discards every open document session
func (h *Handlers) Logout(c *gin.Context) {
	route, err := h.organizer.Logout(c.Request.Context())
	if err != nil {
		h.abort(c, err, gin.H{"workspace": h.organizer.View()})
		return
	}

	h.sessions.CloseAll()
	c.JSON(http.StatusOK, gin.H{
		"route":     route,
		"workspace": h.organizer.View(),
	})
}

type folderRequest struct {
	Name *string `json:"name"`
}

// CreateFolder creates a folder from the body name, or from the modal
// input when the body carries none.
func (h *Handlers) CreateFolder(c *gin.Context) {
	var req folderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	var (
		folder types.Folder
		err    error
	)
	if req.Name != nil {
		folder, err = h.organizer.CreateFolderNamed(ctx, *req.Name)
	} else {
		folder, err = h.organizer.CreateFolder(ctx)
	}
	if err != nil {
		h.abort(c, err, gin.H{"workspace": h.organizer.View()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"folder":    folder,
		"workspace": h.organizer.View(),
	})
}

type folderNameRequest struct {
	Name string `json:"name"`
}

// SetFolderName updates the create-folder modal input
func (h *Handlers) SetFolderName(c *gin.Context) {
	var req folderNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, workspace.Render(h.organizer.SetFolderName(req.Name)))
}

// OpenCreateFolder opens the create-folder modal. A logged-out client is
// routed to registration instead.
func (h *Handlers) OpenCreateFolder(c *gin.Context) {
	route := h.organizer.OpenCreateFolder()
	c.JSON(http.StatusOK, gin.H{
		"route":     route,
		"workspace": h.organizer.View(),
	})
}

// CloseCreateFolder closes the create-folder modal
func (h *Handlers) CloseCreateFolder(c *gin.Context) {
	c.JSON(http.StatusOK, workspace.Render(h.organizer.CloseCreateFolder()))
}

// ToggleFolder expands or collapses a folder
func (h *Handlers) ToggleFolder(c *gin.Context) {
	folderID, err := paramID(c, "folder_id")
	if err != nil {
		h.abort(c, err, nil)
		return
	}
	snap := h.organizer.ToggleFolderExpansion(c.Request.Context(), folderID)
	c.JSON(http.StatusOK, workspace.Render(snap))
}

// FolderDocuments lists one folder's documents straight from the backend
func (h *Handlers) FolderDocuments(c *gin.Context) {
	folderID, err := paramID(c, "folder_id")
	if err != nil {
		h.abort(c, err, nil)
		return
	}
	docs := h.organizer.FetchDocumentsForFolder(c.Request.Context(), folderID)
	c.JSON(http.StatusOK, gin.H{
		"folder_id": folderID,
		"documents": docs,
	})
}

// DragStart picks up a known document as the drag source
func (h *Handlers) DragStart(c *gin.Context) {
	documentID, err := paramID(c, "document_id")
	if err != nil {
		h.abort(c, err, nil)
		return
	}

	doc, ok := h.organizer.Snapshot().Document(documentID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	c.JSON(http.StatusOK, workspace.Render(h.organizer.DragStart(doc)))
}

// Drop moves the dragged document into the folder
func (h *Handlers) Drop(c *gin.Context) {
	folderID, err := paramID(c, "folder_id")
	if err != nil {
		h.abort(c, err, nil)
		return
	}

	snap, err := h.organizer.Drop(c.Request.Context(), folderID)
	if err != nil {
		h.abort(c, err, gin.H{"workspace": workspace.Render(snap)})
		return
	}
	c.JSON(http.StatusOK, workspace.Render(snap))
}

// OpenDocument downloads a document and opens a session on it
func (h *Handlers) OpenDocument(c *gin.Context) {
	documentID, err := paramID(c, "document_id")
	if err != nil {
		h.abort(c, err, nil)
		return
	}

	ctx := c.Request.Context()
	nav, err := h.organizer.OpenDocument(ctx, documentID)
	if err != nil {
		h.abort(c, err, nil)
		return
	}

	s := h.sessions.Open(nav)
	c.JSON(http.StatusOK, gin.H{
		"navigation": nav,
		"session":    s.View(),
	})
}

// Upload sends the multipart "file" field to the backend and opens a
// session on the extracted text.
func (h *Handlers) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	header, err := c.FormFile("file")
	if err != nil {
		// Lets the organizer report "No file selected".
		_, err = h.organizer.UploadDocument(ctx, "", "", nil)
		h.abort(c, err, gin.H{"workspace": h.organizer.View()})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("failed to open upload", zap.String("file", header.Filename), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	nav, err := h.organizer.UploadDocument(ctx, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.abort(c, err, gin.H{"workspace": h.organizer.View()})
		return
	}

	s := h.sessions.Open(nav)
	c.JSON(http.StatusCreated, gin.H{
		"navigation": nav,
		"session":    s.View(),
		"workspace":  h.organizer.View(),
	})
}
