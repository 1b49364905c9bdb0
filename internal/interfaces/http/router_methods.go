package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/agendapay/agendapay/docs"
	"github.com/agendapay/agendapay/internal/interfaces/http/middleware"
	"github.com/agendapay/agendapay/internal/interfaces/http/routes"
)

// Router is the HTTP entry point built on top of the Container.
type Router struct {
	*Container
}

// NewRouter wraps a wired container.
func NewRouter(c *Container) *Router {
	return &Router{Container: c}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.SecurityHeaders())
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))

	r.engine.GET("/health", r.health)
	if r.cfg.Server.Mode != gin.ReleaseMode {
		r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	routes.SetupPaymentRoutes(r.engine, &routes.PaymentRouteConfig{
		PaymentHandler: r.hdlrs.paymentHandler,
	})
	routes.SetupPaymentLinkRoutes(r.engine, &routes.PaymentLinkRouteConfig{
		PaymentLinkHandler: r.hdlrs.paymentLinkHandler,
		RateLimiter:        r.rateLimiter,
	})
}

func (r *Router) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"links_backend":  r.cfg.Links.Backend,
		"ledger_backend": r.cfg.Ledger.Backend,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
