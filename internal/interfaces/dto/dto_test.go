package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendapay/agendapay/internal/domain/paymentlink"
	apperrors "github.com/agendapay/agendapay/internal/shared/errors"
	"github.com/agendapay/agendapay/internal/shared/utils"
)

func validLinkRequest() CreatePaymentLinkRequest {
	return CreatePaymentLinkRequest{
		Patient: PatientRequest{
			Name:  "Ana Pérez",
			Email: "ana@example.com",
			RUT:   "12.345.678-5",
		},
		Appointment: AppointmentRequest{
			ProfessionalID: "pro-7",
			Date:           "2024-05-10",
			Time:           "09:30",
		},
		Subject: "Consulta general",
		Amount:  2990,
	}
}

func TestCreatePaymentLinkRequest_Valid(t *testing.T) {
	req := validLinkRequest()
	require.NoError(t, utils.ValidateStruct(&req))

	payload := req.ToPayload()
	assert.Equal(t, paymentlink.CurrentPayloadVersion, payload.Version)
	assert.Equal(t, "pro-7", payload.Appointment.ProfessionalID)
	assert.Equal(t, time.Duration(0), req.TTL())
}

func TestCreatePaymentLinkRequest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreatePaymentLinkRequest)
		detail string
	}{
		{"missing name", func(r *CreatePaymentLinkRequest) { r.Patient.Name = "" }, "name is required"},
		{"bad email", func(r *CreatePaymentLinkRequest) { r.Patient.Email = "nope" }, "email must be a valid email address"},
		{"bad date", func(r *CreatePaymentLinkRequest) { r.Appointment.Date = "10/05/2024" }, "date must be a date"},
		{"bad time", func(r *CreatePaymentLinkRequest) { r.Appointment.Time = "9h" }, "time must be a time"},
		{"bad rut", func(r *CreatePaymentLinkRequest) { r.Patient.RUT = "12.345.678-9" }, "rut must be a valid RUT"},
		{"zero amount", func(r *CreatePaymentLinkRequest) { r.Amount = 0 }, "amount is required"},
		{"future version", func(r *CreatePaymentLinkRequest) { r.Version = 2 }, "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validLinkRequest()
			tt.mutate(&req)

			err := utils.ValidateStruct(&req)
			require.Error(t, err)
			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Contains(t, appErr.Details, tt.detail)
		})
	}
}

func TestCreateOrderRequest_ToCommand(t *testing.T) {
	req := CreateOrderRequest{
		SessionID:  "abc123",
		Subject:    "Consulta",
		Amount:     2990,
		PayerEmail: "ana@example.com",
	}
	require.NoError(t, utils.ValidateStruct(&req))

	cmd := req.ToCommand()
	assert.Equal(t, "abc123", cmd.SessionID)
	assert.Equal(t, int64(2990), cmd.Amount)

	req.Currency = "CL"
	assert.Error(t, utils.ValidateStruct(&req))
}
