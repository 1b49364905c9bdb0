package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendapay/agendapay/internal/application/payment/paymentgateway"
	"github.com/agendapay/agendapay/internal/domain/paymentlink"
	apperrors "github.com/agendapay/agendapay/internal/shared/errors"
	"github.com/agendapay/agendapay/internal/shared/logger"
)

func newCreateOrderUseCase(gw *mockGateway) *CreateOrderUseCase {
	uc := NewCreateOrderUseCase(gw, OrderConfig{
		CallbackBaseURL:      "https://api.example.com/",
		DefaultPaymentMethod: 9,
	}, logger.NewNopLogger())
	uc.SetClock(func() time.Time { return time.UnixMilli(1699999999000) })
	return uc
}

func validCreateCommand() CreateOrderCommand {
	return CreateOrderCommand{
		SessionID:  "abc123",
		Subject:    "Consulta <b>general</b>",
		Currency:   "clp",
		Amount:     2990,
		PayerEmail: "ana@example.com",
	}
}

func TestCreateOrder_Execute(t *testing.T) {
	gw := newMockGateway()
	uc := newCreateOrderUseCase(gw)

	result, err := uc.Execute(context.Background(), validCreateCommand())
	require.NoError(t, err)
	assert.Equal(t, "TOK1", result.Token)
	assert.Equal(t, "https://pay.example.com/TOK1", result.RedirectURL)
	assert.Equal(t, "abc123-1699999999000", result.CommerceOrder)

	require.Len(t, gw.createReqs, 1)
	req := gw.createReqs[0]
	assert.Equal(t, "abc123-1699999999000", req.CommerceOrder)
	assert.Equal(t, "Consulta general", req.Subject)
	assert.Equal(t, "CLP", req.Currency)
	assert.Equal(t, int64(2990), req.Amount)
	assert.Equal(t, 9, req.PaymentMethod)
	assert.Equal(t, "https://api.example.com/payments/webhook", req.ConfirmationURL)
	assert.Equal(t, "https://api.example.com/payments/return", req.ReturnURL)
}

func TestCreateOrder_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *CreateOrderCommand)
	}{
		{"session", func(c *CreateOrderCommand) { c.SessionID = "" }},
		{"session whitespace", func(c *CreateOrderCommand) { c.SessionID = "a b" }},
		{"subject", func(c *CreateOrderCommand) { c.Subject = "<i></i>" }},
		{"amount", func(c *CreateOrderCommand) { c.Amount = 0 }},
		{"email", func(c *CreateOrderCommand) { c.PayerEmail = "nope" }},
		{"currency", func(c *CreateOrderCommand) { c.Currency = "PESOS" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newMockGateway()
			cmd := validCreateCommand()
			tt.mutate(&cmd)

			_, err := newCreateOrderUseCase(gw).Execute(context.Background(), cmd)
			assert.True(t, apperrors.IsValidationError(err), "got %v", err)
			assert.Empty(t, gw.createReqs)
		})
	}
}

func TestCreateOrder_GatewayFailure(t *testing.T) {
	gw := newMockGateway()
	gw.createErr = &paymentgateway.GatewayError{Op: "create", StatusCode: 400, Message: "invalid amount"}

	_, err := newCreateOrderUseCase(gw).Execute(context.Background(), validCreateCommand())
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeGateway, appErr.Type)
}

func TestCreateOrder_ExecuteFromLink(t *testing.T) {
	gw := newMockGateway()
	uc := newCreateOrderUseCase(gw)

	link, err := paymentlink.NewLink("aB3dE5fG", paymentlink.Payload{
		Version:     paymentlink.CurrentPayloadVersion,
		Patient:     paymentlink.Patient{Name: "Ana", Email: "ana@example.com"},
		Appointment: paymentlink.Appointment{ProfessionalID: "p1", Date: "2024-05-10", Time: "10:00"},
		Subject:     "Consulta",
		Currency:    "CLP",
	}, 2990, time.Now(), time.Hour)
	require.NoError(t, err)

	_, err = uc.ExecuteFromLink(context.Background(), link.ID, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal), "links not enabled")

	uc.SetLinkConsumer(&mockLinks{link: link})

	result, err := uc.ExecuteFromLink(context.Background(), link.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "aB3dE5fG-1699999999000", result.CommerceOrder)
	require.Len(t, gw.createReqs, 1)
	assert.Equal(t, int64(2990), gw.createReqs[0].Amount)
	assert.Equal(t, "ana@example.com", gw.createReqs[0].PayerEmail)

	_, err = uc.ExecuteFromLink(context.Background(), link.ID, "")
	assert.ErrorIs(t, err, paymentlink.ErrAlreadyUsed)
	assert.Len(t, gw.createReqs, 1)
}
