package handlers

import (
	"context"
	"time"

	"github.com/agendapay/agendapay/internal/application/payment/usecases"
	"github.com/agendapay/agendapay/internal/domain/paymentlink"
)

// Use case interfaces for PaymentHandler and PaymentLinkHandler

type createOrderUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateOrderCommand) (*usecases.CreateOrderResult, error)
	ExecuteFromLink(ctx context.Context, linkID, sessionID string) (*usecases.CreateOrderResult, error)
}

type handleWebhookUseCase interface {
	Execute(ctx context.Context, params map[string]string) (*usecases.WebhookResult, error)
}

type pollStatusUseCase interface {
	Execute(ctx context.Context, cmd usecases.PollStatusCommand) (*usecases.PollStatusResult, error)
}

type paymentLinkService interface {
	Create(ctx context.Context, payload paymentlink.Payload, amount int64, ttl time.Duration) (*paymentlink.Link, error)
	Get(ctx context.Context, linkID string) (*paymentlink.Link, error)
	Release(ctx context.Context, linkID string, markAsUsed bool) (bool, error)
	Stats(ctx context.Context) (paymentlink.Stats, error)
}
