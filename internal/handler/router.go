package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/tier-events/internal/web"
	"github.com/prohmpiriya/tier-events/pkg/logger"
	"github.com/prohmpiriya/tier-events/pkg/middleware"
	"github.com/prohmpiriya/tier-events/pkg/telemetry"
)

// RouterConfig wires handlers and middleware into the HTTP router
type RouterConfig struct {
	Page   *PageHandler
	Tier   *TierHandler
	Viewer *ViewerHandler
	Health *HealthHandler

	Session *middleware.SessionConfig
	// IdempotencyStore enables X-Idempotency-Key replay on tier updates when set
	IdempotencyStore middleware.RedisClient
	IdempotencyTTL   time.Duration

	Logger  *logger.Logger
	Tracing bool
}

// NewRouter builds the gin engine with every route registered
func NewRouter(cfg *RouterConfig) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.Tracing {
		router.Use(telemetry.TracingMiddleware())
	}
	if cfg.Logger != nil {
		router.Use(middleware.Logger(cfg.Logger))
	}

	router.GET("/health", cfg.Health.Health)
	router.GET("/ready", cfg.Health.Ready)

	router.GET("/", middleware.OptionalSession(cfg.Session), cfg.Page.Gallery)

	api := router.Group("/api")
	{
		api.POST("/update-tier",
			middleware.OptionalSession(cfg.Session),
			middleware.Idempotency(cfg.IdempotencyStore, cfg.IdempotencyTTL),
			cfg.Tier.UpdateTier,
		)

		authed := api.Group("")
		authed.Use(middleware.SessionAuth(cfg.Session))
		{
			authed.GET("/me", cfg.Viewer.Me)
			authed.GET("/events", cfg.Viewer.Events)
		}
	}

	return router, nil
}
