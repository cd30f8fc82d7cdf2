// Package http provides the HTTP server hosting the expense API.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	expenseHTTP "github.com/allisson/expenses/internal/expense/http"
)

// RouterConfig carries the handlers and middleware mounted on the router.
// Optional middleware may be nil.
type RouterConfig struct {
	ExpenseHandler      *expenseHTTP.ExpenseHandler
	AuthMiddleware      gin.HandlerFunc
	RateLimitMiddleware gin.HandlerFunc
	MetricsMiddleware   gin.HandlerFunc
	CORSEnabled         bool
	CORSAllowOrigins    string
}

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the HTTP server and assembles its router.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
	routerConfig RouterConfig,
) *Server {
	server := &Server{
		db:     db,
		logger: logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))

	if routerConfig.MetricsMiddleware != nil {
		router.Use(routerConfig.MetricsMiddleware)
	}
	if corsMiddleware := createCORSMiddleware(
		routerConfig.CORSEnabled,
		routerConfig.CORSAllowOrigins,
		logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", server.healthHandler)
	router.GET("/ready", server.readinessHandler)

	if routerConfig.ExpenseHandler != nil {
		v1 := router.Group("/v1")
		if routerConfig.AuthMiddleware != nil {
			v1.Use(routerConfig.AuthMiddleware)
		}
		if routerConfig.RateLimitMiddleware != nil {
			v1.Use(routerConfig.RateLimitMiddleware)
		}

		v1.POST("/expenses", routerConfig.ExpenseHandler.SubmitHandler)
		v1.GET("/expenses", routerConfig.ExpenseHandler.ListHandler)
		v1.GET("/expenses/:id", routerConfig.ExpenseHandler.GetHandler)
		v1.DELETE("/expenses/:id", routerConfig.ExpenseHandler.DeleteHandler)
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can reach its dependencies.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else if err := s.db.PingContext(c.Request.Context()); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
