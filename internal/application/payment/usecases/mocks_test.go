package usecases

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/agendapay/agendapay/internal/application/payment/paymentgateway"
	"github.com/agendapay/agendapay/internal/domain/payment"
	vo "github.com/agendapay/agendapay/internal/domain/payment/valueobjects"
	"github.com/agendapay/agendapay/internal/domain/paymentlink"
)

type mockGateway struct {
	mu         sync.Mutex
	orders     map[string]*payment.Order
	statusErrs []error
	createErr  error
	createReqs []paymentgateway.CreateOrderRequest
	statusCall atomic.Int32
}

func newMockGateway() *mockGateway {
	return &mockGateway{orders: make(map[string]*payment.Order)}
}

func (m *mockGateway) setOrder(token, commerceOrder string, status vo.OrderStatus, amount int64) {
	order, err := payment.NewOrder(payment.OrderParams{
		Token:         token,
		CommerceOrder: commerceOrder,
		Amount:        amount,
		Currency:      "CLP",
		Payer:         payment.Payer{Name: "Ana", Email: "ana@example.com"},
		Status:        status,
	})
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	m.orders[token] = order
	m.mu.Unlock()
}

func (m *mockGateway) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.CreateOrderResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createReqs = append(m.createReqs, req)
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &paymentgateway.CreateOrderResponse{
		Token:          "TOK1",
		RedirectURL:    "https://pay.example.com/TOK1",
		GatewayOrderID: "8765",
	}, nil
}

func (m *mockGateway) GetOrderStatus(ctx context.Context, token string) (*payment.Order, error) {
	m.statusCall.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.statusErrs) > 0 {
		err := m.statusErrs[0]
		m.statusErrs = m.statusErrs[1:]
		return nil, err
	}
	order, ok := m.orders[token]
	if !ok {
		return nil, &paymentgateway.GatewayError{Op: "getStatus", StatusCode: 400, Message: "token not found"}
	}
	return order, nil
}

type mockConfirmer struct {
	mu    sync.Mutex
	calls []BookingConfirmation
	err   error
}

func (m *mockConfirmer) ConfirmBooking(ctx context.Context, cmd BookingConfirmation) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, cmd)
	if m.err != nil {
		return nil, m.err
	}
	return map[string]any{"bookingId": "b-" + cmd.SessionID}, nil
}

func (m *mockConfirmer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockAlerter struct {
	alerts chan ConfirmationAlert
}

func newMockAlerter() *mockAlerter {
	return &mockAlerter{alerts: make(chan ConfirmationAlert, 8)}
}

func (m *mockAlerter) AlertConfirmationFailed(ctx context.Context, alert ConfirmationAlert) error {
	m.alerts <- alert
	return nil
}

type mockVerifier struct {
	valid bool
}

func (m mockVerifier) VerifyNotification(params map[string]string) bool {
	return m.valid
}

type mockLinks struct {
	link *paymentlink.Link
	used bool
}

func (m *mockLinks) Consume(ctx context.Context, linkID string) (*paymentlink.Link, error) {
	if m.link == nil || m.link.ID != linkID {
		return nil, paymentlink.ErrNotFound
	}
	if m.used {
		return nil, paymentlink.ErrAlreadyUsed
	}
	m.used = true
	return m.link, nil
}

var errTransport = &paymentgateway.GatewayError{Op: "getStatus", Err: errors.New("connection reset")}
