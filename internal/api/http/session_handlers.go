package http

import (
	"net/http"

	"github.com/GriffinCanCode/docdesk/internal/domain/session"
	"github.com/GriffinCanCode/docdesk/internal/shared/id"
	"github.com/gin-gonic/gin"
)

// lookupSession resolves the :id parameter, writing the error response
// itself when the session is invalid or gone.
func (h *Handlers) lookupSession(c *gin.Context) (*session.Session, bool) {
	sessionID, err := id.ParseSessionID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	s, ok := h.sessions.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return s, true
}

// GetSession renders a document session
func (h *Handlers) GetSession(c *gin.Context) {
	s, ok := h.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// CloseSession discards a session when the client navigates away
func (h *Handlers) CloseSession(c *gin.Context) {
	sessionID, err := id.ParseSessionID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    h.sessions.Close(sessionID),
		"session_id": sessionID,
	})
}

type inputRequest struct {
	Text string `json:"text"`
}

// SetInput stores the question being typed
func (h *Handlers) SetInput(c *gin.Context) {
	s, ok := h.lookupSession(c)
	if !ok {
		return
	}

	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.SetInput(req.Text)
	c.JSON(http.StatusOK, s.View())
}

type questionRequest struct {
	Question *string `json:"question"`
}

// Ask submits a question, or the stored input when the body has none
func (h *Handlers) Ask(c *gin.Context) {
	s, ok := h.lookupSession(c)
	if !ok {
		return
	}

	var req questionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	text := s.Input()
	if req.Question != nil {
		text = *req.Question
	}

	entry, err := s.Submit(c.Request.Context(), text)
	if err != nil {
		h.abort(c, err, gin.H{"session": s.View()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entry":   entry,
		"session": s.View(),
	})
}
