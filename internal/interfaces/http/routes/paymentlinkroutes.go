package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/agendapay/agendapay/internal/interfaces/http/handlers"
	"github.com/agendapay/agendapay/internal/interfaces/http/middleware"
)

// PaymentLinkRouteConfig holds dependencies for payment link routes.
type PaymentLinkRouteConfig struct {
	PaymentLinkHandler *handlers.PaymentLinkHandler
	RateLimiter        *middleware.RateLimiter // Optional
}

// SetupPaymentLinkRoutes configures the short payment link API.
func SetupPaymentLinkRoutes(engine *gin.Engine, cfg *PaymentLinkRouteConfig) {
	links := engine.Group("/payment-links")
	if cfg.RateLimiter != nil {
		links.Use(cfg.RateLimiter.Limit())
	}
	{
		links.POST("", cfg.PaymentLinkHandler.Create)
		links.GET("", cfg.PaymentLinkHandler.Get)
		links.DELETE("", cfg.PaymentLinkHandler.Release)
		links.PATCH("", cfg.PaymentLinkHandler.Stats)

		links.POST("/:id/order", cfg.PaymentLinkHandler.CreateOrder)
	}
}
