package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/GriffinCanCode/docdesk/internal/content"
	"github.com/GriffinCanCode/docdesk/internal/domain/session"
	"github.com/GriffinCanCode/docdesk/internal/domain/workspace"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/docdesk/internal/shared/types"
	"github.com/GriffinCanCode/docdesk/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// BreakerReporter exposes the backend circuit for health checks
type BreakerReporter interface {
	BreakerName() string
	BreakerState() resilience.State
	BreakerCounts() resilience.Counts
}

// Handlers contains all local API handlers
type Handlers struct {
	organizer *workspace.Organizer
	sessions  *session.Manager
	refs      *content.Store
	backend   BreakerReporter
	logger    *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	organizer *workspace.Organizer,
	sessions *session.Manager,
	refs *content.Store,
	backend BreakerReporter,
	logger *logging.Logger,
) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		organizer: organizer,
		sessions:  sessions,
		refs:      refs,
		backend:   backend,
		logger:    logger.Component("api"),
	}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	api := r.Group("/api")

	api.GET("/workspace", h.GetWorkspace)
	api.POST("/workspace/init", h.InitWorkspace)
	api.GET("/navigate-home", h.NavigateHome)
	api.POST("/logout", h.Logout)

	api.POST("/folders", h.CreateFolder)
	api.PUT("/folder-name", h.SetFolderName)
	api.POST("/folders/modal", h.OpenCreateFolder)
	api.DELETE("/folders/modal", h.CloseCreateFolder)
	api.POST("/folders/:id/toggle", h.ToggleFolder)
	api.GET("/folders/:id/documents", h.FolderDocuments)
	api.POST("/folders/:id/drop", h.Drop)

	api.POST("/documents/:id/drag", h.DragStart)
	api.POST("/documents/:id/open", h.OpenDocument)
	api.POST("/uploads", h.Upload)

	api.GET("/sessions/:id", h.GetSession)
	api.DELETE("/sessions/:id", h.CloseSession)
	api.PUT("/sessions/:id/input", h.SetInput)
	api.POST("/sessions/:id/questions", h.Ask)

	api.GET("/content/:ref", h.Content)
}

// Root handles the liveness probe
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "docdesk",
	})
}

// Health reports workspace, session and backend circuit state
func (h *Handlers) Health(c *gin.Context) {
	status := "healthy"
	breaker := gin.H{"state": "unknown"}
	if h.backend != nil {
		state := h.backend.BreakerState()
		breaker = gin.H{
			"name":   h.backend.BreakerName(),
			"state":  state.String(),
			"counts": h.backend.BreakerCounts(),
		}
		if state == resilience.StateOpen {
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"logged_in":    h.organizer.Snapshot().LoggedIn,
		"sessions":     h.sessions.Count(),
		"content_refs": h.refs.Len(),
		"breaker":      breaker,
	})
}

// statusFor maps a domain error onto an HTTP status
func statusFor(err error) int {
	var be *types.BackendError
	switch {
	case types.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, types.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, content.ErrUnknownReference):
		return http.StatusNotFound
	case errors.As(err, &be) && be.Status == http.StatusUnauthorized:
		return http.StatusUnauthorized
	case types.IsBackend(err), types.IsNetwork(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// abort writes err with its mapped status. Extra fields are merged into
// the body so failed actions still return the rendered state.
func (h *Handlers) abort(c *gin.Context, err error, extra gin.H) {
	body := gin.H{"error": err.Error()}
	var ve *types.ValidationError
	if errors.As(err, &ve) {
		body["error"] = ve.Message
		body["field"] = ve.Field
	}
	for k, v := range extra {
		body[k] = v
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

// paramID parses a positive backend id from the named path parameter
func paramID(c *gin.Context, field string) (int64, error) {
	raw := c.Param("id")
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &types.ValidationError{Field: field, Message: "invalid " + field + ": " + raw}
	}
	if err := utils.ValidateID(field, value); err != nil {
		return 0, err
	}
	return value, nil
}
