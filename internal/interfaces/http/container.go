package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/agendapay/agendapay/internal/infrastructure/config"
	"github.com/agendapay/agendapay/internal/interfaces/http/middleware"
	"github.com/agendapay/agendapay/internal/shared/logger"
)

// Container holds the infrastructure components, repositories, use cases
// and handlers, and wires them together.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB      // Optional, only for the database ledger
	redis  *redis.Client // Optional, only for redis backends and rate limiting
	cfg    *config.Config
	log    logger.Interface

	// Repositories
	repos *repositories

	// Use cases
	ucs *allUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	rateLimiter *middleware.RateLimiter
}

// NewContainer creates a new Container with all dependencies wired together.
// db and redisClient may be nil when no configured backend needs them.
func NewContainer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		redis:  redisClient,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - stores selected by backend
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Payments - gateway, ledger, reconciler, use cases
	if err := c.initPayments(); err != nil {
		return nil, err
	}

	// Section 3: Handlers and middlewares
	c.initHandlers()

	return c, nil
}
