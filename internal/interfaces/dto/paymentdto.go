package dto

import (
	"github.com/agendapay/agendapay/internal/application/payment/usecases"
)

// CreateOrderRequest represents HTTP request to open a gateway order
type CreateOrderRequest struct {
	SessionID     string `json:"sessionId" validate:"required,max=64"`
	Subject       string `json:"subject" validate:"required,max=255"`
	Currency      string `json:"currency" validate:"omitempty,len=3,alpha"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	PayerEmail    string `json:"email" validate:"required,email"`
	PaymentMethod int    `json:"paymentMethod" validate:"omitempty,gte=1"`
}

func (r *CreateOrderRequest) ToCommand() usecases.CreateOrderCommand {
	return usecases.CreateOrderCommand{
		SessionID:     r.SessionID,
		Subject:       r.Subject,
		Currency:      r.Currency,
		Amount:        r.Amount,
		PayerEmail:    r.PayerEmail,
		PaymentMethod: r.PaymentMethod,
	}
}

// PollStatusRequest is accepted as a JSON body or as query parameters.
type PollStatusRequest struct {
	Token         string `json:"token" form:"token" validate:"required,max=256"`
	SessionID     string `json:"sessionId" form:"sessionId" validate:"max=64"`
	CommerceOrder string `json:"commerceOrder" form:"commerceOrder" validate:"max=128"`
}

func (r *PollStatusRequest) ToCommand(source string) usecases.PollStatusCommand {
	return usecases.PollStatusCommand{
		Token:         r.Token,
		SessionID:     r.SessionID,
		CommerceOrder: r.CommerceOrder,
		Source:        source,
	}
}

// OrderFromLinkRequest opens a gateway order from a stored payment link.
// SessionID defaults to the link id.
type OrderFromLinkRequest struct {
	SessionID string `json:"sessionId" validate:"max=64"`
}
