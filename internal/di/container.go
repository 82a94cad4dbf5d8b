package di

import (
	"time"

	"github.com/prohmpiriya/tier-events/internal/handler"
	"github.com/prohmpiriya/tier-events/internal/repository"
	"github.com/prohmpiriya/tier-events/internal/service"
	"github.com/prohmpiriya/tier-events/pkg/database"
	"github.com/prohmpiriya/tier-events/pkg/kafka"
	"github.com/prohmpiriya/tier-events/pkg/logger"
	"github.com/prohmpiriya/tier-events/pkg/middleware"
	"github.com/prohmpiriya/tier-events/pkg/redis"
)

// Container holds all dependencies for the tier events service
type Container struct {
	// Infrastructure
	DB       *database.PostgresDB
	Redis    *redis.Client
	Producer *kafka.Producer

	// Repositories
	EventRepo  repository.EventRepository
	ViewerRepo repository.ViewerRepository

	// Services
	TierPublisher service.TierChangePublisher
	EventService  service.EventService
	ViewerService service.ViewerService

	// Handlers
	HealthHandler *handler.HealthHandler
	PageHandler   *handler.PageHandler
	TierHandler   *handler.TierHandler
	ViewerHandler *handler.ViewerHandler

	session        *middleware.SessionConfig
	idempotencyTTL time.Duration
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB       *database.PostgresDB
	Redis    *redis.Client   // nil disables caching and idempotency
	Producer *kafka.Producer // nil disables the tier change feed

	ServiceName    string
	TierTopic      string
	PublishTimeout time.Duration
	EventsCacheTTL time.Duration
	IdempotencyTTL time.Duration
	Session        *middleware.SessionConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		Producer:       cfg.Producer,
		session:        cfg.Session,
		idempotencyTTL: cfg.IdempotencyTTL,
	}

	// Initialize repositories
	pgEventRepo := repository.NewPostgresEventRepository(c.DB.Pool())

	// Wrap with cache if Redis is available
	if c.Redis != nil {
		c.EventRepo = repository.NewCachedEventRepository(pgEventRepo, c.Redis, cfg.EventsCacheTTL)
	} else {
		c.EventRepo = pgEventRepo
	}
	c.ViewerRepo = repository.NewPostgresViewerRepository(c.DB.Pool())

	// Initialize services
	if c.Producer != nil {
		c.TierPublisher = service.NewKafkaTierChangePublisher(c.Producer, cfg.TierTopic, cfg.ServiceName, cfg.PublishTimeout)
	} else {
		c.TierPublisher = service.NoopTierChangePublisher{}
	}
	c.EventService = service.NewEventService(c.EventRepo)
	c.ViewerService = service.NewViewerService(c.ViewerRepo, c.TierPublisher)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.healthChecks())
	c.PageHandler = handler.NewPageHandler(c.EventService, c.ViewerService)
	c.TierHandler = handler.NewTierHandler(c.ViewerService)
	c.ViewerHandler = handler.NewViewerHandler(c.ViewerService, c.EventService)

	return c
}

// RouterConfig returns the handler wiring for handler.NewRouter
func (c *Container) RouterConfig(log *logger.Logger, tracing bool) *handler.RouterConfig {
	rc := &handler.RouterConfig{
		Page:           c.PageHandler,
		Tier:           c.TierHandler,
		Viewer:         c.ViewerHandler,
		Health:         c.HealthHandler,
		Session:        c.session,
		IdempotencyTTL: c.idempotencyTTL,
		Logger:         log,
		Tracing:        tracing,
	}
	if c.Redis != nil {
		rc.IdempotencyStore = c.Redis
	}
	return rc
}

// healthChecks avoids storing typed nil pointers in the interface map
func (c *Container) healthChecks() map[string]handler.HealthChecker {
	checks := map[string]handler.HealthChecker{
		"database": c.DB,
		"redis":    nil,
		"kafka":    nil,
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	}
	if c.Producer != nil {
		checks["kafka"] = c.Producer
	}
	return checks
}
