// Package api exposes the reconciled service view over a local HTTP
// API using the Echo framework. It is the presentation-facing surface
// of the engine: read-only snapshot endpoints plus the single
// apply-proxy-config write entry point.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"evalgo.org/proxium/internal/caddy"
	"evalgo.org/proxium/internal/config"
	"evalgo.org/proxium/internal/reconcile"
)

// Server is the Proxium API server.
type Server struct {
	echo       *echo.Echo
	config     *config.Config
	reconciler *reconcile.Reconciler
	admin      *caddy.AdminClient
	control    *caddy.Controller
}

// New creates a new API server instance.
func New(cfg *config.Config, reconciler *reconcile.Reconciler, admin *caddy.AdminClient, control *caddy.Controller) *Server {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug
	e.HTTPErrorHandler = HTTPErrorHandler

	server := &Server{
		echo:       e,
		config:     cfg,
		reconciler: reconciler,
		admin:      admin,
		control:    control,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
	}))

	s.echo.Use(middleware.Recover())

	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	s.echo.Use(middleware.RequestID())

	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/", s.healthCheck)

	v1 := s.echo.Group("/api/v1")

	v1.GET("/services", s.listServices)
	v1.GET("/status", s.getStatus)
	v1.GET("/services/:view/:index/form", s.getProxyForm)
	v1.POST("/services/:view/:index/proxy", s.applyProxy)
	v1.POST("/caddy/:action", s.caddyAction)
}

// Start runs the HTTP server until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	fmt.Printf("Starting Proxium API server on http://%s\n", addr)

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	return nil
}
