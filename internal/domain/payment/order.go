package payment

import (
	"fmt"

	vo "github.com/agendapay/agendapay/internal/domain/payment/valueobjects"
)

// Payer is the payer identity as reported by the gateway.
type Payer struct {
	Name  string
	Email string
}

// Order is a read-only snapshot of a gateway-owned order. It is only ever
// built from a gateway response and never mutated locally; a fresher view
// comes from fetching the order again.
type Order struct {
	token           string
	commerceOrder   string
	gatewayOrderID  string
	subject         string
	amount          vo.Money
	payerEmail      string
	payer           Payer
	status          vo.OrderStatus
	confirmationURL string
	returnURL       string
}

// OrderParams carries the fields of a gateway order view.
type OrderParams struct {
	Token           string
	CommerceOrder   string
	GatewayOrderID  string
	Subject         string
	Amount          int64
	Currency        string
	PayerEmail      string
	Payer           Payer
	Status          vo.OrderStatus
	ConfirmationURL string
	ReturnURL       string
}

// NewOrder builds an order snapshot. Token and commerce order are required
// because every reconciliation path keys on them.
func NewOrder(p OrderParams) (*Order, error) {
	if p.Token == "" {
		return nil, fmt.Errorf("order token is required")
	}
	if p.CommerceOrder == "" {
		return nil, fmt.Errorf("commerce order is required")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid order status %q", p.Status)
	}
	amount, err := vo.NewMoney(p.Amount, p.Currency)
	if err != nil {
		return nil, err
	}

	payerEmail := p.PayerEmail
	if payerEmail == "" {
		payerEmail = p.Payer.Email
	}

	return &Order{
		token:           p.Token,
		commerceOrder:   p.CommerceOrder,
		gatewayOrderID:  p.GatewayOrderID,
		subject:         p.Subject,
		amount:          amount,
		payerEmail:      payerEmail,
		payer:           p.Payer,
		status:          p.Status,
		confirmationURL: p.ConfirmationURL,
		returnURL:       p.ReturnURL,
	}, nil
}

func (o *Order) Token() string { return o.token }
func (o *Order) CommerceOrder() string { return o.commerceOrder }
func (o *Order) GatewayOrderID() string { return o.gatewayOrderID }
func (o *Order) Subject() string { return o.subject }
func (o *Order) Amount() vo.Money { return o.amount }
func (o *Order) PayerEmail() string { return o.payerEmail }
func (o *Order) Payer() Payer { return o.payer }
func (o *Order) Status() vo.OrderStatus { return o.status }
func (o *Order) ConfirmationURL() string { return o.confirmationURL }
func (o *Order) ReturnURL() string { return o.returnURL }

func (o *Order) IsPaid() bool {
	return o.status.IsPaid()
}

// SessionID recovers the booking session this order was created for.
func (o *Order) SessionID() (string, error) {
	ref, err := ParseCommerceOrder(o.commerceOrder)
	if err != nil {
		return "", err
	}
	return ref.SessionID, nil
}
