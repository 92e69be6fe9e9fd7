// Package http assembles the phimark HTTP API: the gin route tree and the
// server that runs it.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/phimark/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/phimark/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/phimark/internal/interfaces/http/handlers"
	"github.com/turtacn/phimark/internal/interfaces/http/middleware"
	"github.com/turtacn/phimark/pkg/errors"
)

// RouterConfig aggregates the handlers and middleware dependencies of the
// route tree.  Nil handlers leave their routes unregistered.
type RouterConfig struct {
	MarkupHandler *handlers.MarkupHandler
	HealthHandler *handlers.HealthHandler

	Logger  logging.Logger
	Logging middleware.LoggingConfig

	// MetricsCollector serves MetricsPath when set; Metrics instruments
	// every request when set.
	MetricsCollector prometheus.MetricsCollector
	Metrics          *prometheus.MarkupMetrics
	MetricsPath      string

	// Mode is the gin mode; empty keeps the current one.
	Mode        string
	MaxBodySize int64
}

// NewRouter builds the gin engine.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Order matters: the request ID must exist before anything logs.
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsCollector != nil {
		r.GET(cfg.MetricsPath, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	if cfg.MarkupHandler != nil {
		api := r.Group("/api/v1")
		api.Use(middleware.MaxBodySize(cfg.MaxBodySize))
		cfg.MarkupHandler.RegisterRoutes(api)
	}

	r.NoRoute(routeError(errors.ErrCodeNotFound))
	r.NoMethod(routeError(errors.ErrCodeMethodNotAllowed))
	return r
}

// routeError answers requests gin could not route with the JSON error body
// for code.
func routeError(code errors.ErrorCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(errors.HTTPStatusForCode(code), handlers.ErrorResponse{
			Code:      code.String(),
			Message:   errors.DefaultMessageForCode(code),
			RequestID: middleware.GetRequestID(c),
		})
	}
}
