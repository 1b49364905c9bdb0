package usecases

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/agendapay/agendapay/internal/application/payment/paymentgateway"
	"github.com/agendapay/agendapay/internal/domain/payment"
	vo "github.com/agendapay/agendapay/internal/domain/payment/valueobjects"
	"github.com/agendapay/agendapay/internal/shared/biztime"
	apperrors "github.com/agendapay/agendapay/internal/shared/errors"
	"github.com/agendapay/agendapay/internal/shared/logger"
	"github.com/agendapay/agendapay/internal/shared/utils"
)

const (
	WebhookPath = "/payments/webhook"
	ReturnPath  = "/payments/return"
)

type CreateOrderCommand struct {
	SessionID     string
	Subject       string
	Currency      string
	Amount        int64 // whole currency units
	PayerEmail    string
	PaymentMethod int // 0 uses the configured default
}

type CreateOrderResult struct {
	Token          string `json:"token"`
	RedirectURL    string `json:"redirectUrl"`
	GatewayOrderID string `json:"gatewayOrderId"`
	CommerceOrder  string `json:"commerceOrder"`
}

type OrderConfig struct {
	CallbackBaseURL      string
	DefaultPaymentMethod int
}

type CreateOrderUseCase struct {
	gateway paymentgateway.Gateway
	links   LinkConsumer // Optional
	config  OrderConfig
	now     func() time.Time
	logger  logger.Interface
}

func NewCreateOrderUseCase(
	gateway paymentgateway.Gateway,
	config OrderConfig,
	logger logger.Interface,
) *CreateOrderUseCase {
	config.CallbackBaseURL = strings.TrimRight(config.CallbackBaseURL, "/")
	return &CreateOrderUseCase{
		gateway: gateway,
		config:  config,
		now:     biztime.NowUTC,
		logger:  logger,
	}
}

// SetLinkConsumer enables order creation from payment links (optional dependency injection)
func (uc *CreateOrderUseCase) SetLinkConsumer(links LinkConsumer) {
	uc.links = links
}

// SetClock overrides the time source used for commerce order timestamps.
func (uc *CreateOrderUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	if err := uc.validate(&cmd); err != nil {
		return nil, err
	}

	commerceOrder, err := payment.NewCommerceOrder(cmd.SessionID, uc.now())
	if err != nil {
		return nil, apperrors.NewValidationError("invalid session id", err.Error())
	}

	paymentMethod := cmd.PaymentMethod
	if paymentMethod == 0 {
		paymentMethod = uc.config.DefaultPaymentMethod
	}

	resp, err := uc.gateway.CreateOrder(ctx, paymentgateway.CreateOrderRequest{
		CommerceOrder:   commerceOrder,
		Subject:         cmd.Subject,
		Currency:        cmd.Currency,
		Amount:          cmd.Amount,
		PayerEmail:      cmd.PayerEmail,
		PaymentMethod:   paymentMethod,
		ConfirmationURL: uc.config.CallbackBaseURL + WebhookPath,
		ReturnURL:       uc.config.CallbackBaseURL + ReturnPath,
	})
	if err != nil {
		uc.logger.Errorw("failed to create gateway order",
			"commerce_order", commerceOrder,
			"amount", cmd.Amount,
			"error", err,
		)
		return nil, apperrors.NewGatewayError("failed to create payment order").WithCause(err)
	}

	uc.logger.Infow("payment order created",
		"session_id", cmd.SessionID,
		"commerce_order", commerceOrder,
		"amount", cmd.Amount,
		"currency", cmd.Currency,
		"email", utils.MaskEmail(cmd.PayerEmail),
	)

	return &CreateOrderResult{
		Token:          resp.Token,
		RedirectURL:    resp.RedirectURL,
		GatewayOrderID: resp.GatewayOrderID,
		CommerceOrder:  commerceOrder,
	}, nil
}

// ExecuteFromLink consumes a payment link and creates the order from its
// payload. The link is spent even if the gateway then rejects the order.
func (uc *CreateOrderUseCase) ExecuteFromLink(ctx context.Context, linkID, sessionID string) (*CreateOrderResult, error) {
	if uc.links == nil {
		return nil, apperrors.NewInternalError("payment links are not enabled")
	}

	link, err := uc.links.Consume(ctx, linkID)
	if err != nil {
		return nil, err
	}

	if sessionID == "" {
		sessionID = link.ID
	}

	uc.logger.Infow("creating order from payment link", "link_id", link.ID, "session_id", sessionID)

	return uc.Execute(ctx, CreateOrderCommand{
		SessionID:  sessionID,
		Subject:    link.Payload.Subject,
		Currency:   link.Payload.Currency,
		Amount:     link.Amount,
		PayerEmail: link.Payload.Patient.Email,
	})
}

func (uc *CreateOrderUseCase) validate(cmd *CreateOrderCommand) error {
	cmd.Subject = utils.SanitizeText(cmd.Subject)
	cmd.PayerEmail = strings.TrimSpace(cmd.PayerEmail)
	cmd.Currency = strings.ToUpper(strings.TrimSpace(cmd.Currency))
	if cmd.Currency == "" {
		cmd.Currency = vo.DefaultCurrency
	}

	if err := payment.ValidateSessionID(cmd.SessionID); err != nil {
		return apperrors.NewValidationError("invalid session id", err.Error())
	}
	if cmd.Subject == "" {
		return apperrors.NewValidationError("subject is required")
	}
	if cmd.Amount <= 0 {
		return apperrors.NewValidationError("amount must be a positive integer", fmt.Sprintf("got %d", cmd.Amount))
	}
	if _, err := vo.NewMoney(cmd.Amount, cmd.Currency); err != nil {
		return apperrors.NewValidationError("invalid amount", err.Error())
	}
	if _, err := mail.ParseAddress(cmd.PayerEmail); err != nil || cmd.PayerEmail == "" {
		return apperrors.NewValidationError("a valid payer email is required")
	}
	return nil
}
