package dto

import (
	"time"

	"github.com/agendapay/agendapay/internal/domain/paymentlink"
)

type PatientRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"max=32"`
	RUT   string `json:"rut" validate:"rut"`
}

type AppointmentRequest struct {
	ProfessionalID string `json:"professionalId" validate:"required,max=64"`
	Date           string `json:"date" validate:"required,isodate"`
	Time           string `json:"time" validate:"required,hhmm"`
	Service        string `json:"service" validate:"max=120"`
	Notes          string `json:"notes" validate:"max=1000"`
}

// CreatePaymentLinkRequest carries the full booking payload and the amount
// to charge.
type CreatePaymentLinkRequest struct {
	Version     int                `json:"version" validate:"omitempty,eq=1"`
	Patient     PatientRequest     `json:"patient"`
	Appointment AppointmentRequest `json:"appointment"`
	Subject     string             `json:"subject" validate:"required,max=255"`
	Currency    string             `json:"currency" validate:"omitempty,len=3,alpha"`
	Amount      int64              `json:"amount" validate:"required,gt=0"`
	TTLMinutes  int                `json:"ttlMinutes" validate:"omitempty,gte=1,lte=1440"`
}

func (r *CreatePaymentLinkRequest) ToPayload() paymentlink.Payload {
	version := r.Version
	if version == 0 {
		version = paymentlink.CurrentPayloadVersion
	}
	return paymentlink.Payload{
		Version: version,
		Patient: paymentlink.Patient{
			Name:  r.Patient.Name,
			Email: r.Patient.Email,
			Phone: r.Patient.Phone,
			RUT:   r.Patient.RUT,
		},
		Appointment: paymentlink.Appointment{
			ProfessionalID: r.Appointment.ProfessionalID,
			Date:           r.Appointment.Date,
			Time:           r.Appointment.Time,
			Service:        r.Appointment.Service,
			Notes:          r.Appointment.Notes,
		},
		Subject:  r.Subject,
		Currency: r.Currency,
	}
}

func (r *CreatePaymentLinkRequest) TTL() time.Duration {
	return time.Duration(r.TTLMinutes) * time.Minute
}

type CreatePaymentLinkResponse struct {
	ShortURL  string    `json:"shortUrl"`
	ShortID   string    `json:"shortId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type PaymentLinkResponse struct {
	ID        string              `json:"id"`
	Payload   paymentlink.Payload `json:"payload"`
	Amount    int64               `json:"amount"`
	ExpiresAt time.Time           `json:"expiresAt"`
}

func ToPaymentLinkResponse(link *paymentlink.Link) *PaymentLinkResponse {
	return &PaymentLinkResponse{
		ID:        link.ID,
		Payload:   link.Payload,
		Amount:    link.Amount,
		ExpiresAt: link.ExpiresAt,
	}
}

type ReleasePaymentLinkResponse struct {
	ID         string `json:"id"`
	MarkAsUsed bool   `json:"markAsUsed"`
	Affected   bool   `json:"affected"`
}
