package http

import (
	"net/http"

	"github.com/GriffinCanCode/docdesk/internal/content"
	"github.com/gin-gonic/gin"
)

// Content serves the bytes behind a content reference so an embedded
// viewer can load them. With ?format=text a textual blob is served as
// plain readable text instead.
func (h *Handlers) Content(c *gin.Context) {
	ref := c.Param("ref")
	if !content.IsReference(ref) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content reference"})
		return
	}

	blob, err := h.refs.Fetch(ref)
	if err != nil {
		h.abort(c, err, nil)
		return
	}

	c.Header("Cache-Control", "no-store")
	if c.Query("format") == "text" {
		text, ok := content.Readable(blob)
		if !ok {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "content has no text rendering"})
			return
		}
		c.String(http.StatusOK, text)
		return
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", "inline")
	c.Data(http.StatusOK, contentType, blob.Data)
}
