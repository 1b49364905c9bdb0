package paymentlink

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// CurrentPayloadVersion is the booking payload schema written by this build.
const CurrentPayloadVersion = 1

// Patient identifies who the appointment is for and who pays.
type Patient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	RUT   string `json:"rut,omitempty"`
}

// Appointment is the slot being paid for.
type Appointment struct {
	ProfessionalID string `json:"professionalId"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Service        string `json:"service,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// Payload is everything needed to build a gateway order later and to confirm
// the booking once paid.
type Payload struct {
	Version     int         `json:"version"`
	Patient     Patient     `json:"patient"`
	Appointment Appointment `json:"appointment"`
	Subject     string      `json:"subject"`
	Currency    string      `json:"currency"`
}

func (p *Payload) Validate() error {
	if p.Version != CurrentPayloadVersion {
		return fmt.Errorf("unsupported payload version %d", p.Version)
	}
	if strings.TrimSpace(p.Patient.Name) == "" {
		return fmt.Errorf("patient name is required")
	}
	if _, err := mail.ParseAddress(p.Patient.Email); err != nil {
		return fmt.Errorf("invalid patient email: %w", err)
	}
	if p.Appointment.ProfessionalID == "" {
		return fmt.Errorf("professional id is required")
	}
	if _, err := time.Parse("2006-01-02", p.Appointment.Date); err != nil {
		return fmt.Errorf("invalid appointment date %q", p.Appointment.Date)
	}
	if _, err := time.Parse("15:04", p.Appointment.Time); err != nil {
		return fmt.Errorf("invalid appointment time %q", p.Appointment.Time)
	}
	if strings.TrimSpace(p.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	return nil
}
