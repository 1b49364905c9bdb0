package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agendapay/agendapay/internal/application/payment/paymentgateway"
	"github.com/agendapay/agendapay/internal/domain/ledger"
	"github.com/agendapay/agendapay/internal/domain/payment"
	"github.com/agendapay/agendapay/internal/shared/biztime"
	"github.com/agendapay/agendapay/internal/shared/goroutine"
	"github.com/agendapay/agendapay/internal/shared/logger"
	"github.com/agendapay/agendapay/internal/shared/utils"
)

const (
	defaultStatusAttempts = 3
	defaultStatusBackoff  = 300 * time.Millisecond
	alertTimeout          = 30 * time.Second
)

// ReconcilerConfig tunes the authoritative status fetch.
type ReconcilerConfig struct {
	StatusAttempts int
	StatusBackoff  time.Duration
}

// ReconcileResult is what a webhook or poll observed for a paid order.
type ReconcileResult struct {
	SessionID string
	Processed bool
	Replayed  bool
	Response  map[string]any
	Error     string
}

// Reconciler turns a paid order into exactly one booking confirmation. It is
// shared by the webhook, poll and return paths.
type Reconciler struct {
	gateway   paymentgateway.Gateway
	ledger    ConfirmationLedger
	confirmer BookingConfirmer
	alerter   ConfirmationAlerter // Optional
	attempts  int
	backoff   time.Duration
	logger    logger.Interface
}

func NewReconciler(
	gateway paymentgateway.Gateway,
	ledger ConfirmationLedger,
	confirmer BookingConfirmer,
	cfg ReconcilerConfig,
	logger logger.Interface,
) *Reconciler {
	r := &Reconciler{
		gateway:   gateway,
		ledger:    ledger,
		confirmer: confirmer,
		attempts:  cfg.StatusAttempts,
		backoff:   cfg.StatusBackoff,
		logger:    logger,
	}
	if r.attempts <= 0 {
		r.attempts = defaultStatusAttempts
	}
	if r.backoff <= 0 {
		r.backoff = defaultStatusBackoff
	}
	return r
}

// SetAlerter sets the operator alerter (optional dependency injection)
func (r *Reconciler) SetAlerter(alerter ConfirmationAlerter) {
	r.alerter = alerter
}

// FetchOrder asks the gateway for the authoritative order, retrying
// transport failures and 5xx answers with linear backoff.
func (r *Reconciler) FetchOrder(ctx context.Context, token string) (*payment.Order, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		order, err := r.gateway.GetOrderStatus(ctx, token)
		if err == nil {
			return order, nil
		}
		lastErr = err

		if !paymentgateway.IsRetryable(err) || attempt == r.attempts {
			break
		}

		r.logger.Warnw("gateway status fetch failed, retrying",
			"token", utils.MaskToken(token),
			"attempt", attempt,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}
	return nil, fmt.Errorf("failed to fetch order status: %w", lastErr)
}

// Reconcile confirms the booking behind a paid order through the ledger.
// Callers must only pass orders fetched from the gateway.
func (r *Reconciler) Reconcile(ctx context.Context, order *payment.Order, source string) (*ReconcileResult, error) {
	if !order.IsPaid() {
		return &ReconcileResult{Processed: false}, nil
	}

	sessionID, parseErr := order.SessionID()
	if parseErr != nil {
		r.logger.Errorw("cannot recover session from commerce order",
			"token", utils.MaskToken(order.Token()),
			"commerce_order", order.CommerceOrder(),
			"error", parseErr,
		)
	}

	outcome, err := r.ledger.TryConfirm(ctx, order.Token(), sessionID, func(ctx context.Context) (map[string]any, error) {
		if parseErr != nil {
			return nil, parseErr
		}
		return r.confirmer.ConfirmBooking(ctx, BookingConfirmation{
			Token:          order.Token(),
			SessionID:      sessionID,
			CommerceOrder:  order.CommerceOrder(),
			GatewayOrderID: order.GatewayOrderID(),
			Amount:         order.Amount().Amount(),
			Currency:       order.Amount().Currency(),
			PayerName:      order.Payer().Name,
			PayerEmail:     order.PayerEmail(),
			Source:         source,
		})
	})
	if err != nil {
		if errors.Is(err, ledger.ErrConfirmationInProgress) {
			r.logger.Warnw("confirmation still in progress elsewhere",
				"token", utils.MaskToken(order.Token()),
				"source", source,
			)
			r.alert(order, sessionID, "confirmation still pending after wait timeout; the holder may have crashed", source)
		}
		return nil, err
	}

	result := &ReconcileResult{
		SessionID: sessionID,
		Processed: outcome.Result.Success,
		Replayed:  outcome.Replayed,
		Response:  outcome.Result.Response,
		Error:     outcome.Result.Error,
	}

	switch {
	case outcome.Unrecorded:
		reason := "confirmation result could not be recorded; ledger entry left pending"
		if outcome.Result.Error != "" {
			reason += ": " + outcome.Result.Error
		}
		r.alert(order, sessionID, reason, source)
	case !outcome.Result.Success && !outcome.Replayed:
		r.alert(order, sessionID, outcome.Result.Error, source)
	}
	return result, nil
}

func (r *Reconciler) alert(order *payment.Order, sessionID, reason, source string) {
	if r.alerter == nil {
		return
	}
	alert := ConfirmationAlert{
		Token:         order.Token(),
		SessionID:     sessionID,
		CommerceOrder: order.CommerceOrder(),
		Amount:        order.Amount().Amount(),
		Currency:      order.Amount().Currency(),
		PayerEmail:    order.PayerEmail(),
		Error:         reason,
		Source:        source,
		OccurredAt:    biztime.NowUTC(),
	}
	goroutine.SafeGo(r.logger, "confirmation-alert", alertTimeout, func(ctx context.Context) {
		if err := r.alerter.AlertConfirmationFailed(ctx, alert); err != nil {
			r.logger.Errorw("failed to send confirmation alert", "token", utils.MaskToken(alert.Token), "error", err)
		}
	})
}
