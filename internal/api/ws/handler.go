package ws

import (
	"net/http"
	"time"

	"github.com/GriffinCanCode/docdesk/internal/domain/workspace"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/logging"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Message types
const (
	TypeWorkspace = "workspace"
	TypePong      = "pong"
	TypeError     = "error"
)

// Message is one frame sent to the client
type Message struct {
	Type      string          `json:"type"`
	Workspace *workspace.View `json:"workspace,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

type inbound struct {
	Type string `json:"type"`
}

// Handler streams the rendered workspace to connected clients
type Handler struct {
	organizer *workspace.Organizer
	upgrader  websocket.Upgrader
	logger    *logging.Logger
}

// NewHandler creates a stream handler accepting the given origins.
// An empty list or "*" accepts any origin.
func NewHandler(organizer *workspace.Organizer, origins []string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		organizer: organizer,
		upgrader:  websocket.Upgrader{CheckOrigin: originChecker(origins)},
		logger:    logger.Component("stream"),
	}
}

// HandleConnection sends the current workspace, then a fresh one after
// every change until the client goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	out := make(chan Message, sendBuffer)
	push := func(m Message) {
		m.Timestamp = time.Now().Unix()
		select {
		case out <- m:
		default:
			// Each view supersedes the previous one, so the oldest queued
			// frame is the one to lose.
			select {
			case <-out:
			default:
			}
			select {
			case out <- m:
			default:
			}
		}
	}

	cancel := h.organizer.Subscribe(func(v workspace.View) {
		push(Message{Type: TypeWorkspace, Workspace: &v})
	})
	defer cancel()

	current := h.organizer.View()
	push(Message{Type: TypeWorkspace, Workspace: &current})

	done := make(chan struct{})
	go h.readLoop(conn, push, done)
	h.writeLoop(conn, out, done)
}

func (h *Handler) readLoop(conn *websocket.Conn, push func(Message), done chan<- struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "ping":
			push(Message{Type: TypePong})
		case "refresh":
			current := h.organizer.View()
			push(Message{Type: TypeWorkspace, Workspace: &current})
		default:
			push(Message{Type: TypeError, Message: "unknown message type"})
		}
	}
}

func (h *Handler) writeLoop(conn *websocket.Conn, out <-chan Message, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(allowed) == 0 || allowed[origin]
	}
}
