package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/agendapay/agendapay/internal/application/payment/usecases"
	"github.com/agendapay/agendapay/internal/shared/biztime"
	sharedConfig "github.com/agendapay/agendapay/internal/shared/config"
	"github.com/agendapay/agendapay/internal/shared/logger"
	"github.com/agendapay/agendapay/internal/shared/services/markdown"
)

// Alerter mails operators when a paid order could not be confirmed.
type Alerter struct {
	from       string
	recipients []string
	renderer   *markdown.Renderer
	send       func(m *gomail.Message) error
	logger     logger.Interface
}

var _ usecases.ConfirmationAlerter = (*Alerter)(nil)

func NewAlerter(cfg sharedConfig.EmailConfig, recipients []string, log logger.Interface) *Alerter {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)

	from := cfg.FromAddress
	if cfg.FromName != "" {
		m := gomail.NewMessage()
		from = m.FormatAddress(cfg.FromAddress, cfg.FromName)
	}

	return &Alerter{
		from:       from,
		recipients: recipients,
		renderer:   markdown.NewRenderer(),
		send:       func(m *gomail.Message) error { return dialer.DialAndSend(m) },
		logger:     log,
	}
}

func (a *Alerter) AlertConfirmationFailed(ctx context.Context, alert usecases.ConfirmationAlert) error {
	if len(a.recipients) == 0 {
		return fmt.Errorf("no alert recipients configured")
	}

	subject, body := BuildAlert(alert)
	htmlBody, err := a.renderer.Render(body)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", a.from)
	m.SetHeader("To", a.recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	m.AddAlternative("text/html", htmlBody)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.send(m); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	a.logger.Infow("confirmation alert sent",
		"token", alert.Token,
		"recipients", len(a.recipients),
	)
	return nil
}

// BuildAlert returns the subject and markdown body of an alert mail.
func BuildAlert(alert usecases.ConfirmationAlert) (string, string) {
	subject := fmt.Sprintf("[agendapay] Paid order not confirmed: %s", alert.CommerceOrder)
	if alert.CommerceOrder == "" {
		subject = fmt.Sprintf("[agendapay] Paid order not confirmed: %s", alert.Token)
	}

	occurred := alert.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	var b strings.Builder
	b.WriteString("## Payment received but booking not confirmed\n\n")
	b.WriteString("The gateway reports this order as paid and the booking confirmation failed. ")
	b.WriteString("It will not be retried automatically.\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	rows := [][2]string{
		{"Token", alert.Token},
		{"Session", alert.SessionID},
		{"Commerce order", alert.CommerceOrder},
		{"Amount", fmt.Sprintf("%d %s", alert.Amount, alert.Currency)},
		{"Payer", alert.PayerEmail},
		{"Trigger", alert.Source},
		{"Occurred at", occurred.Format(time.RFC3339)},
		{"Local time", biztime.FormatInBizTimezone(occurred, "2006-01-02 15:04 MST")},
		{"Error", alert.Error},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", row[0], markdown.EscapeCell(row[1]))
	}

	return subject, b.String()
}

// LogAlerter records alerts in the application log only. Used when SMTP is
// not configured.
type LogAlerter struct {
	logger logger.Interface
}

var _ usecases.ConfirmationAlerter = (*LogAlerter)(nil)

func NewLogAlerter(log logger.Interface) *LogAlerter {
	return &LogAlerter{logger: log}
}

func (a *LogAlerter) AlertConfirmationFailed(ctx context.Context, alert usecases.ConfirmationAlert) error {
	a.logger.Errorw("paid order requires manual confirmation",
		"token", alert.Token,
		"session_id", alert.SessionID,
		"commerce_order", alert.CommerceOrder,
		"amount", alert.Amount,
		"currency", alert.Currency,
		"payer_email", alert.PayerEmail,
		"source", alert.Source,
		"error", alert.Error,
	)
	return nil
}

// NewConfirmationAlerter returns the SMTP alerter when mail is configured and
// the log alerter otherwise.
func NewConfirmationAlerter(cfg sharedConfig.EmailConfig, alerts sharedConfig.AlertsConfig, log logger.Interface) usecases.ConfirmationAlerter {
	if cfg.IsConfigured() && len(alerts.Recipients) > 0 {
		return NewAlerter(cfg, alerts.Recipients, log)
	}
	return NewLogAlerter(log)
}
