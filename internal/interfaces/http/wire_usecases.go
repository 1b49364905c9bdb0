package http

import (
	ledgerApp "github.com/agendapay/agendapay/internal/application/ledger"
	"github.com/agendapay/agendapay/internal/application/payment/usecases"
	paymentLinkApp "github.com/agendapay/agendapay/internal/application/paymentlink"
)

// allUseCases holds the application services and use cases.
type allUseCases struct {
	linkService   *paymentLinkApp.Service
	ledgerService *ledgerApp.Service
	reconciler    *usecases.Reconciler

	createOrderUC   *usecases.CreateOrderUseCase
	handleWebhookUC *usecases.HandleWebhookUseCase
	pollStatusUC    *usecases.PollStatusUseCase
}
