package usecases

import (
	"context"
	"time"

	ledgerApp "github.com/agendapay/agendapay/internal/application/ledger"
	"github.com/agendapay/agendapay/internal/domain/paymentlink"
)

// BookingConfirmer is the downstream side effect that must run at most once
// per paid order.
type BookingConfirmer interface {
	ConfirmBooking(ctx context.Context, cmd BookingConfirmation) (map[string]any, error)
}

// BookingConfirmation carries the authoritative order data for a booking.
type BookingConfirmation struct {
	Token          string
	SessionID      string
	CommerceOrder  string
	GatewayOrderID string
	Amount         int64
	Currency       string
	PayerName      string
	PayerEmail     string
	Source         string
}

// ConfirmationAlerter notifies operators that a paid order could not be
// confirmed and needs manual attention.
type ConfirmationAlerter interface {
	AlertConfirmationFailed(ctx context.Context, alert ConfirmationAlert) error
}

type ConfirmationAlert struct {
	Token         string
	SessionID     string
	CommerceOrder string
	Amount        int64
	Currency      string
	PayerEmail    string
	Error         string
	Source        string
	OccurredAt    time.Time
}

// ConfirmationLedger runs a confirmation at most once per token.
type ConfirmationLedger interface {
	TryConfirm(ctx context.Context, token, sessionID string, confirm ledgerApp.ConfirmFunc) (*ledgerApp.Outcome, error)
}

// LinkConsumer hands out a payment link exactly once.
type LinkConsumer interface {
	Consume(ctx context.Context, linkID string) (*paymentlink.Link, error)
}

// Reconciliation trigger names, used in logs and alerts.
const (
	SourceWebhook = "webhook"
	SourcePoll    = "poll"
	SourceReturn  = "return"
)
