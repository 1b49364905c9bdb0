package paymentlink

import (
	"strings"

	vo "github.com/agendapay/agendapay/internal/domain/payment/valueobjects"
	"github.com/agendapay/agendapay/internal/domain/paymentlink"
	"github.com/agendapay/agendapay/internal/shared/utils"
)

// SanitizePayload strips markup from every free-text field and normalizes
// identifiers.
func SanitizePayload(p paymentlink.Payload) paymentlink.Payload {
	p.Patient.Name = utils.SanitizeText(p.Patient.Name)
	p.Patient.Email = strings.ToLower(strings.TrimSpace(p.Patient.Email))
	p.Patient.Phone = utils.SanitizeText(p.Patient.Phone)
	p.Patient.RUT = strings.ToUpper(strings.TrimSpace(p.Patient.RUT))
	p.Appointment.ProfessionalID = strings.TrimSpace(p.Appointment.ProfessionalID)
	p.Appointment.Service = utils.SanitizeText(p.Appointment.Service)
	p.Appointment.Notes = utils.SanitizeText(p.Appointment.Notes)
	p.Subject = utils.SanitizeText(p.Subject)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = vo.DefaultCurrency
	}
	return p
}
