// Package server provides the HTTP server for the gpuwatch service.
// It handles routing, middleware, and serves the GPU telemetry API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gpuwatch-project/gpuwatch/internal/api/gpus"
	"github.com/gpuwatch-project/gpuwatch/internal/gpu"
	"github.com/gpuwatch-project/gpuwatch/internal/logger"
	"github.com/gpuwatch-project/gpuwatch/internal/monitor"
	"github.com/gpuwatch-project/gpuwatch/internal/version"
	"github.com/gpuwatch-project/gpuwatch/internal/websocket"
)

// Config contains server configuration
type Config struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	TelemetryInterval time.Duration
}

// Server represents the HTTP server
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	config     *Config

	provider gpu.Provider
	hostMon  *monitor.HostMonitor
	wsMgr    *websocket.Manager
	handler  *gpus.Handler

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewServer creates a new HTTP server around the resolved device provider
func NewServer(config *Config, provider gpu.Provider) *Server {
	gin.SetMode(gin.ReleaseMode)

	hostMon := monitor.NewHostMonitor()
	s := &Server{
		engine:   gin.New(),
		config:   config,
		provider: provider,
		hostMon:  hostMon,
		wsMgr:    websocket.NewManager(provider, hostMon, config.TelemetryInterval),
		handler:  gpus.NewHandler(provider),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures server middleware
func (s *Server) setupMiddleware() {
	s.engine.Use(
		gin.Recovery(),
		s.corsMiddleware(),
		s.loggerMiddleware(),
	)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.engine.GET("/", s.handleHealth)

	v1 := s.engine.Group("/api/v1")
	{
		s.handler.RegisterRoutes(v1)

		v1.GET("/host", s.handleHost)
		v1.GET("/version", s.handleVersion)
		v1.GET("/telemetry/ws", s.wsMgr.HandleConnection)
	}
}

// handleHealth reports a short service summary. Reports "limited" when
// the service is running on the mock backend.
func (s *Server) handleHealth(c *gin.Context) {
	status := s.provider.Status()

	state := "ok"
	message := fmt.Sprintf("gpuwatch is running with %d GPU(s) detected", status.DeviceCount)
	if status.BackendActive == gpu.BackendMock {
		state = "limited"
		message += " (hardware initialization failed, serving simulated data)"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    state,
		"message":   message,
		"gpu_count": status.DeviceCount,
	})
}

// handleHost returns a host telemetry snapshot
func (s *Server) handleHost(c *gin.Context) {
	c.JSON(http.StatusOK, s.hostMon.Snapshot())
}

// handleVersion returns build information
func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.GetVersionInfo())
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return fmt.Errorf("server already started")
	}

	s.wsMgr.Start()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		logger.Infof("HTTP server listening on %s", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("HTTP server error: %v", err)
		}
		logger.Info("HTTP server stopped")
	}()

	return nil
}

// Shutdown stops the HTTP server gracefully. The websocket hub has its
// own shutdown hook and is stopped separately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv == nil {
		return fmt.Errorf("server not started")
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP server shutdown failed: %v", err)
		srv.Close()
	}

	s.wg.Wait()
	return nil
}

// Engine returns the Gin engine (for testing)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// WebSocketManager returns the WebSocket manager
func (s *Server) WebSocketManager() *websocket.Manager {
	return s.wsMgr
}

// corsMiddleware handles CORS
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// loggerMiddleware logs requests
func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		logFields := map[string]interface{}{
			"method":  c.Request.Method,
			"path":    path,
			"status":  status,
			"latency": time.Since(start).String(),
		}

		if status >= 500 {
			logger.WithFields(logFields).Error("request failed")
		} else if status >= 400 {
			logger.WithFields(logFields).Warn("client error")
		} else {
			logger.WithFields(logFields).Debug("request served")
		}
	}
}
