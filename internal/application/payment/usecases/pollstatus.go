package usecases

import (
	"context"
	"errors"

	"github.com/agendapay/agendapay/internal/domain/ledger"
	vo "github.com/agendapay/agendapay/internal/domain/payment/valueobjects"
	apperrors "github.com/agendapay/agendapay/internal/shared/errors"
	"github.com/agendapay/agendapay/internal/shared/logger"
	"github.com/agendapay/agendapay/internal/shared/utils"
)

// Poll statuses reported to the browser.
const (
	PollStatusPaid    = "paid"
	PollStatusPending = "pending"
	PollStatusError   = "error"
)

type PollStatusCommand struct {
	Token         string
	SessionID     string
	CommerceOrder string
	Source        string
}

type PaymentDetails struct {
	CommerceOrder string `json:"commerceOrder"`
	SessionID     string `json:"sessionId,omitempty"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Payer         string `json:"payer,omitempty"`
	Confirmed     bool   `json:"confirmed"`
	Replayed      bool   `json:"replayed"`
}

type PollStatusResult struct {
	Success        bool            `json:"success"`
	Status         string          `json:"status"`
	PaymentDetails *PaymentDetails `json:"paymentDetails,omitempty"`
}

// PollStatusUseCase is the synchronous counterpart of the webhook, used when
// the payer returns from the gateway.
type PollStatusUseCase struct {
	reconciler *Reconciler
	logger     logger.Interface
}

func NewPollStatusUseCase(reconciler *Reconciler, logger logger.Interface) *PollStatusUseCase {
	return &PollStatusUseCase{
		reconciler: reconciler,
		logger:     logger,
	}
}

func (uc *PollStatusUseCase) Execute(ctx context.Context, cmd PollStatusCommand) (*PollStatusResult, error) {
	if cmd.Token == "" {
		return nil, apperrors.NewValidationError("token is required")
	}
	source := cmd.Source
	if source == "" {
		source = SourcePoll
	}

	order, err := uc.reconciler.FetchOrder(ctx, cmd.Token)
	if err != nil {
		uc.logger.Errorw("failed to fetch order status for poll", "token", utils.MaskToken(cmd.Token), "error", err)
		return nil, apperrors.NewGatewayError("failed to fetch payment status").WithCause(err)
	}

	if cmd.CommerceOrder != "" && cmd.CommerceOrder != order.CommerceOrder() {
		uc.logger.Warnw("poll commerce order disagrees with gateway, using gateway value",
			"token", utils.MaskToken(cmd.Token),
			"claimed", cmd.CommerceOrder,
			"authoritative", order.CommerceOrder(),
		)
	}
	sessionID, _ := order.SessionID()
	if cmd.SessionID != "" && cmd.SessionID != sessionID {
		uc.logger.Warnw("poll session id disagrees with gateway, using gateway value",
			"token", utils.MaskToken(cmd.Token),
			"claimed", cmd.SessionID,
			"authoritative", sessionID,
		)
	}

	details := &PaymentDetails{
		CommerceOrder: order.CommerceOrder(),
		SessionID:     sessionID,
		Amount:        order.Amount().Amount(),
		Currency:      order.Amount().Currency(),
		Payer:         order.PayerEmail(),
	}

	switch order.Status() {
	case vo.OrderStatusPaid:
	case vo.OrderStatusRejected, vo.OrderStatusExpired:
		return &PollStatusResult{Success: false, Status: PollStatusError, PaymentDetails: details}, nil
	default:
		return &PollStatusResult{Success: false, Status: PollStatusPending, PaymentDetails: details}, nil
	}

	result, err := uc.reconciler.Reconcile(ctx, order, source)
	if err != nil {
		if errors.Is(err, ledger.ErrConfirmationInProgress) {
			return &PollStatusResult{Success: true, Status: PollStatusPaid, PaymentDetails: details}, nil
		}
		uc.logger.Errorw("failed to reconcile paid order from poll", "token", utils.MaskToken(cmd.Token), "error", err)
		return nil, apperrors.NewInternalError("failed to reconcile payment").WithCause(err)
	}

	details.Confirmed = result.Processed
	details.Replayed = result.Replayed
	return &PollStatusResult{Success: true, Status: PollStatusPaid, PaymentDetails: details}, nil
}
