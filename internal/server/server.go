// Package server exposes the chat system over HTTP: a JSON API for
// programmatic clients and a small HTML surface for browsers.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"graphchat/internal/chat"
	"graphchat/internal/document"
	"graphchat/internal/graph"
	"graphchat/pkg/config"
	"graphchat/pkg/logger"
)

// pageHistoryLimit bounds how many turns the HTML chat page renders.
const pageHistoryLimit = 20

// Server wires the orchestrator, processor, and store behind a gin router.
type Server struct {
	store        graph.Store
	orchestrator *chat.Orchestrator
	processor    *document.Processor
	cfg          *config.Config
	logger       *zap.Logger

	// The browser page keeps one shared conversation per process.
	mu               sync.Mutex
	pageConversation []chat.Turn
	pageConvID       string
}

// New creates a Server around already-constructed dependencies.
func New(store graph.Store, orchestrator *chat.Orchestrator, processor *document.Processor, cfg *config.Config) *Server {
	return &Server{
		store:        store,
		orchestrator: orchestrator,
		processor:    processor,
		cfg:          cfg,
		logger:       logger.Get(),
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.SetHTMLTemplate(loadTemplates())

	router.GET("/health", s.handleHealth)
	router.GET("/", s.handleChatPage)
	router.POST("/", s.handleChatForm)
	router.GET("/status", s.handleStatusPage)

	api := router.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.POST("/search", s.handleSearch)
		api.POST("/documents", s.handleUpload)
	}

	return router
}

// Run serves HTTP until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.WebHost, s.cfg.WebPort),
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.Info("Server started",
		zap.String("addr", srv.Addr),
		zap.String("backend", s.cfg.GraphBackend),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("Server exited")
	return nil
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
