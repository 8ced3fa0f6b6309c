package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	handlers "github.com/GriffinCanCode/docdesk/internal/api/http"
	"github.com/GriffinCanCode/docdesk/internal/api/middleware"
	"github.com/GriffinCanCode/docdesk/internal/api/ws"
	"github.com/GriffinCanCode/docdesk/internal/backend"
	"github.com/GriffinCanCode/docdesk/internal/content"
	"github.com/GriffinCanCode/docdesk/internal/domain/session"
	"github.com/GriffinCanCode/docdesk/internal/domain/workspace"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/config"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docdesk/internal/infrastructure/tracing"
)

// Server wraps the local API and its dependencies
type Server struct {
	router    *gin.Engine
	handler   http.Handler
	http      *http.Server
	client    *backend.Client
	organizer *workspace.Organizer
	sessions  *session.Manager
	refs      *content.Store
	tracer    *tracing.Tracer
	logger    *logging.Logger
	config    *config.Config
	metrics   *monitoring.Metrics
}

// Option customizes server construction
type Option func(*Server)

// WithLogger replaces the logger built from configuration
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{config: cfg}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		logger, err := logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		s.logger = logger
	}
	logger := s.logger

	logger.Info("Initializing docdesk",
		zap.String("addr", cfg.Addr()),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	// Metrics first, every other component reports into them
	s.metrics = monitoring.NewMetrics()
	s.tracer = tracing.New("docdesk", logger)

	client, err := backend.New(cfg.Backend,
		backend.WithLogger(logger),
		backend.WithMetrics(s.metrics),
		backend.WithTracer(s.tracer),
	)
	if err != nil {
		s.tracer.Close()
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	s.client = client

	s.refs = content.NewStore()
	s.organizer = workspace.NewOrganizer(client, s.refs, logger).WithMetrics(s.metrics)
	s.sessions = session.NewManager(client, s.refs, logger).WithMetrics(s.metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(s.tracer))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	handlers.NewHandlers(s.organizer, s.sessions, s.refs, client, logger).Register(router)
	router.GET("/api/stream", ws.NewHandler(s.organizer, cfg.CORS.AllowOrigins, logger).HandleConnection)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.router = router
	s.handler = compress(router)
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// Handler returns the routed local API
func (s *Server) Handler() http.Handler {
	return s.handler
}

// compress gzips responses for clients that accept it. WebSocket upgrades
// bypass it since the connection is hijacked.
func compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// Run serves the local API until Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and
// discards every open session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Failed to drain HTTP server", zap.Error(err))
	}

	s.sessions.CloseAll()
	s.tracer.Close()
	_ = s.logger.Sync()

	if err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
