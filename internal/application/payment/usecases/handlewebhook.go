package usecases

import (
	"context"
	"errors"

	"github.com/agendapay/agendapay/internal/application/payment/paymentgateway"
	"github.com/agendapay/agendapay/internal/domain/ledger"
	vo "github.com/agendapay/agendapay/internal/domain/payment/valueobjects"
	apperrors "github.com/agendapay/agendapay/internal/shared/errors"
	"github.com/agendapay/agendapay/internal/shared/logger"
	"github.com/agendapay/agendapay/internal/shared/utils"
)

// WebhookResult is the acknowledgement returned to the gateway.
type WebhookResult struct {
	Received  bool `json:"received"`
	Processed bool `json:"processed"`
}

// HandleWebhookUseCase processes gateway notifications. Only the signature
// and token of the body are trusted; everything else comes from a fresh
// status fetch.
type HandleWebhookUseCase struct {
	verifier   paymentgateway.NotificationVerifier
	reconciler *Reconciler
	logger     logger.Interface
}

func NewHandleWebhookUseCase(
	verifier paymentgateway.NotificationVerifier,
	reconciler *Reconciler,
	logger logger.Interface,
) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		verifier:   verifier,
		reconciler: reconciler,
		logger:     logger,
	}
}

func (uc *HandleWebhookUseCase) Execute(ctx context.Context, params map[string]string) (*WebhookResult, error) {
	if !uc.verifier.VerifyNotification(params) {
		uc.logger.Warnw("rejected webhook with invalid signature",
			"token", utils.MaskToken(params["token"]),
			"commerce_order", params["commerceOrder"],
		)
		return nil, apperrors.NewSignatureError("invalid webhook signature")
	}

	token := params["token"]
	if token == "" {
		return nil, apperrors.NewValidationError("token is required")
	}

	// A notification may carry only the token. When it does report a status,
	// anything but paid is acknowledged without further work.
	if reported, ok := params["status"]; ok && !vo.IsPaidCode(reported) {
		uc.logger.Infow("webhook reports non-paid status, acknowledging",
			"token", utils.MaskToken(token),
			"reported_status", reported,
		)
		return &WebhookResult{Received: true, Processed: false}, nil
	}

	order, err := uc.reconciler.FetchOrder(ctx, token)
	if err != nil {
		uc.logger.Errorw("failed to fetch authoritative order status",
			"token", utils.MaskToken(token),
			"error", err,
		)
		return nil, apperrors.NewGatewayError("failed to fetch payment status").WithCause(err)
	}

	if !order.IsPaid() {
		uc.logger.Infow("authoritative status is not paid, not confirming",
			"token", utils.MaskToken(token),
			"status", order.Status(),
			"reported_status", params["status"],
			"reported_amount", params["amount"],
		)
		return &WebhookResult{Received: true, Processed: false}, nil
	}

	result, err := uc.reconciler.Reconcile(ctx, order, SourceWebhook)
	if err != nil {
		if errors.Is(err, ledger.ErrConfirmationInProgress) {
			return &WebhookResult{Received: true, Processed: false}, nil
		}
		uc.logger.Errorw("failed to reconcile paid order", "token", utils.MaskToken(token), "error", err)
		return nil, apperrors.NewInternalError("failed to reconcile payment").WithCause(err)
	}

	uc.logger.Infow("webhook reconciled",
		"token", utils.MaskToken(token),
		"session_id", result.SessionID,
		"processed", result.Processed,
		"replayed", result.Replayed,
	)
	return &WebhookResult{Received: true, Processed: result.Processed}, nil
}
