package paymentgateway

import (
	"context"

	"github.com/agendapay/agendapay/internal/domain/payment"
)

// Gateway is the external payment processor. Implementations are stateless
// and never retry; callers decide what to retry.
type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error)
	// GetOrderStatus is the only trusted source for whether an order is paid.
	GetOrderStatus(ctx context.Context, token string) (*payment.Order, error)
}

// CreateOrderRequest contains the data needed to create a gateway order.
type CreateOrderRequest struct {
	CommerceOrder   string
	Subject         string
	Currency        string
	Amount          int64 // whole currency units
	PayerEmail      string
	PaymentMethod   int
	ConfirmationURL string
	ReturnURL       string
}

type CreateOrderResponse struct {
	Token          string
	RedirectURL    string
	GatewayOrderID string
}

// NotificationVerifier checks the signature of an inbound gateway notification.
type NotificationVerifier interface {
	VerifyNotification(params map[string]string) bool
}
