package http

import (
	"github.com/agendapay/agendapay/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	paymentHandler     *handlers.PaymentHandler
	paymentLinkHandler *handlers.PaymentLinkHandler
}
