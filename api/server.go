// Package api exposes the relayer over HTTP. Build and query endpoints are
// synchronous; execute and reveal return 202 once their inputs are accepted
// and the chain work continues in the background.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/atomicport/relay-lib/relayer"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

// Server serves the relayer HTTP API.
type Server struct {
	relayer *relayer.Relayer
	logger  *logrus.Logger
	server  *http.Server
}

// NewServer creates the HTTP server with all routes registered.
//
// Parameters:
// - relay: the relayer facade.
// - addr: the listen address, e.g. ":8080".
// - logger: the logger for logging events.
//
// Returns:
// - *Server: the new server instance.
func NewServer(relay *relayer.Relayer, addr string, logger *logrus.Logger) *Server {
	s := &Server{
		relayer: relay,
		logger:  logger,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	engine.GET("/health", s.handleHealth)

	orders := engine.Group("/api")
	{
		orders.GET("/chains", s.handleChains)
		orders.POST("/orders", s.handleBuildOrder)
		orders.GET("/orders", s.handleListOrders)
		orders.GET("/orders/:hash", s.handleGetOrder)
		orders.POST("/orders/:hash/execute", s.handleExecute)
		orders.POST("/orders/:hash/reveal", s.handleReveal)
		orders.POST("/orders/:hash/cancel", s.handleCancel)
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return s
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.WithField("addr", s.server.Addr).Info("HTTP API listening")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
