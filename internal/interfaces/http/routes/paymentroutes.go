package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/agendapay/agendapay/internal/interfaces/http/handlers"
)

// PaymentRouteConfig holds dependencies for payment routes.
type PaymentRouteConfig struct {
	PaymentHandler *handlers.PaymentHandler
}

// SetupPaymentRoutes configures payment routes.
// The webhook and return routes are called by the gateway and the payer's
// browser, so none of them sit behind the rate limiter.
func SetupPaymentRoutes(engine *gin.Engine, cfg *PaymentRouteConfig) {
	payments := engine.Group("/payments")
	{
		payments.POST("", cfg.PaymentHandler.CreateOrder)
		payments.POST("/webhook", cfg.PaymentHandler.HandleWebhook)

		payments.GET("/status", cfg.PaymentHandler.PollStatus)
		payments.POST("/status", cfg.PaymentHandler.PollStatus)

		payments.GET("/return", cfg.PaymentHandler.Return)
		payments.POST("/return", cfg.PaymentHandler.Return)
	}
}
