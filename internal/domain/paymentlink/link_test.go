package paymentlink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() Payload {
	return Payload{
		Version: CurrentPayloadVersion,
		Patient: Patient{Name: "Ana Pérez", Email: "ana@example.com", Phone: "+56911112222"},
		Appointment: Appointment{
			ProfessionalID: "pro-7",
			Date:           "2024-05-10",
			Time:           "15:30",
			Service:        "Kinesiología",
		},
		Subject:  "Sesión kinesiología",
		Currency: "CLP",
	}
}

func TestNewLink(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	l, err := NewLink("aB3dE5fG", validPayload(), 2990, now, 0)
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTTL), l.ExpiresAt)
	assert.False(t, l.Used)

	_, err = NewLink("", validPayload(), 2990, now, time.Minute)
	assert.Error(t, err)
	_, err = NewLink("x", validPayload(), 0, now, time.Minute)
	assert.Error(t, err)
}

func TestLink_Readable(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l, err := NewLink("id", validPayload(), 100, now, 30*time.Minute)
	require.NoError(t, err)

	assert.True(t, l.Readable(now.Add(29*time.Minute)))
	assert.False(t, l.Readable(now.Add(30*time.Minute)))
	assert.ErrorIs(t, l.CheckReadable(now.Add(31*time.Minute)), ErrExpired)

	l.MarkUsed(now.Add(time.Minute))
	first := *l.UsedAt
	l.MarkUsed(now.Add(2 * time.Minute))
	assert.Equal(t, first, *l.UsedAt)
	assert.ErrorIs(t, l.CheckReadable(now.Add(5*time.Minute)), ErrAlreadyUsed)
}

func TestStats_Tally(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	active, _ := NewLink("a", validPayload(), 100, now, time.Hour)
	used, _ := NewLink("b", validPayload(), 100, now, time.Hour)
	used.MarkUsed(now)

	var s Stats
	s.Tally(active, now)
	s.Tally(used, now)
	assert.Equal(t, Stats{Total: 2, Used: 1, Active: 1}, s)
}

func TestPayload_Validate(t *testing.T) {
	p := validPayload()
	require.NoError(t, p.Validate())

	tests := []struct {
		name   string
		mutate func(p *Payload)
	}{
		{"version", func(p *Payload) { p.Version = 2 }},
		{"name", func(p *Payload) { p.Patient.Name = "  " }},
		{"email", func(p *Payload) { p.Patient.Email = "not-an-email" }},
		{"professional", func(p *Payload) { p.Appointment.ProfessionalID = "" }},
		{"date", func(p *Payload) { p.Appointment.Date = "10/05/2024" }},
		{"time", func(p *Payload) { p.Appointment.Time = "3pm" }},
		{"subject", func(p *Payload) { p.Subject = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}
