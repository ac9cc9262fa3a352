// Package http provides HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to workflow and
// directory calls and hands committed intents to the dispatcher.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/garyjia/leave-approval/internal/application/dispatcher"
	"github.com/garyjia/leave-approval/internal/application/service"
	"github.com/garyjia/leave-approval/internal/application/workflow"
	"github.com/garyjia/leave-approval/internal/i18n"
)

// RequestIDHeader carries the per-request correlation ID
const RequestIDHeader = "X-Request-ID"

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// HealthFunc reports whether the service is healthy plus per-component details
type HealthFunc func(ctx context.Context) (bool, interface{})

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Mode            string

	// AsyncNotify dispatches intents in the background instead of before the response
	AsyncNotify bool

	// Locales offered to Accept-Language negotiation; the first one is the fallback
	Locales []language.Tag

	// RateLimit caps /api requests per second per client IP; 0 disables it
	RateLimit float64
	RateBurst int
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Mode:            gin.ReleaseMode,
		AsyncNotify:     true,
	}
}

// Dependencies are the application components the server routes to
type Dependencies struct {
	Workflow   workflow.ApprovalWorkflow
	Directory  service.DirectoryService
	Dispatcher dispatcher.Dispatcher
	Health     HealthFunc
	Logger     Logger
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	matcher    language.Matcher
	logger     Logger
}

// NewServer creates a new HTTP server with the given dependencies
func NewServer(config ServerConfig, deps Dependencies) (*Server, error) {
	if deps.Workflow == nil || deps.Directory == nil || deps.Dispatcher == nil {
		return nil, fmt.Errorf("workflow, directory and dispatcher are required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: NewHandlers(deps, config.AsyncNotify),
		logger:   deps.Logger,
	}
	if len(config.Locales) > 0 {
		server.matcher = language.NewMatcher(config.Locales)
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server, nil
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.localeMiddleware())
}

// requestIDMiddleware echoes the caller's request ID or assigns a new one
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString("request_id"),
		)
	}
}

// localeMiddleware stores the negotiated Accept-Language locale on the request
// context so intents rendered after the response keep it
func (s *Server) localeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.matcher == nil {
			c.Next()
			return
		}
		tags, _, err := language.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
		if err != nil || len(tags) == 0 {
			c.Next()
			return
		}
		_, idx, conf := s.matcher.Match(tags...)
		if conf != language.No {
			base, _ := s.config.Locales[idx].Base()
			ctx := i18n.WithLocale(c.Request.Context(), base.String())
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api")
	if s.config.RateLimit > 0 {
		api.Use(rateLimitByIP(s.config.RateLimit, s.config.RateBurst))
	}
	{
		requests := api.Group("/requests")
		requests.POST("", h.SubmitRequest)
		requests.GET("/:id", h.GetRequest)
		requests.GET("/:id/history", h.GetHistory)
		requests.POST("/:id/head/approve", h.ApproveByHead)
		requests.POST("/:id/head/reject", h.RejectByHead)
		requests.POST("/:id/manager/approve", h.ApproveByManager)
		requests.POST("/:id/manager/reject", h.RejectByManager)
		requests.POST("/:id/cancel", h.CancelRequest)

		api.GET("/pending", h.ListPending)

		api.GET("/employees", h.ListEmployees)
		api.POST("/employees", h.RegisterEmployee)
		api.GET("/employees/:id", h.GetEmployee)
		api.GET("/employees/:id/balance", h.GetBalance)
		api.GET("/employees/:id/requests", h.ListEmployeeRequests)

		api.GET("/departments/heads", h.ListHeads)
		api.PUT("/departments/:name/head", h.AssignHead)
		api.DELETE("/departments/:name/head", h.RemoveHead)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.Address(),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", s.httpServer.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
