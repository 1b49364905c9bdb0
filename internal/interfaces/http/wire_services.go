package http

import (
	"fmt"

	ledgerApp "github.com/agendapay/agendapay/internal/application/ledger"
	"github.com/agendapay/agendapay/internal/application/payment/usecases"
	paymentLinkApp "github.com/agendapay/agendapay/internal/application/paymentlink"
	"github.com/agendapay/agendapay/internal/infrastructure/booking"
	"github.com/agendapay/agendapay/internal/infrastructure/cache"
	"github.com/agendapay/agendapay/internal/infrastructure/email"
	"github.com/agendapay/agendapay/internal/infrastructure/memory"
	"github.com/agendapay/agendapay/internal/infrastructure/payment/flow"
	"github.com/agendapay/agendapay/internal/infrastructure/repository"
	"github.com/agendapay/agendapay/internal/interfaces/http/handlers"
	"github.com/agendapay/agendapay/internal/interfaces/http/middleware"
	"github.com/agendapay/agendapay/internal/shared/constants"
)

// ============================================================
// Section 1: Infrastructure - stores selected by backend
// ============================================================

// initInfrastructure picks the link store and ledger backends and the
// rate limiter.
func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	c.repos = &repositories{}

	switch cfg.Links.Backend {
	case constants.BackendRedis:
		if c.redis == nil {
			return fmt.Errorf("links.backend redis requires a redis client")
		}
		c.repos.linkRepo = cache.NewRedisLinkStore(c.redis, cfg.Links.Retention)
	default:
		c.repos.linkRepo = memory.NewLinkRepository()
	}

	switch cfg.Ledger.Backend {
	case constants.BackendRedis:
		if c.redis == nil {
			return fmt.Errorf("ledger.backend redis requires a redis client")
		}
		c.repos.ledgerRepo = cache.NewRedisLedger(c.redis)
	case constants.BackendDatabase:
		if c.db == nil {
			return fmt.Errorf("ledger.backend database requires a database connection")
		}
		c.repos.ledgerRepo = repository.NewLedgerRepository(c.db)
	default:
		c.repos.ledgerRepo = memory.NewLedgerRepository()
	}

	if cfg.RateLimit.Enabled {
		if c.redis == nil {
			c.log.Warnw("rate limiting enabled but redis is not configured, skipping")
		} else {
			c.rateLimiter = middleware.NewRateLimiter(c.redis, "links", cfg.RateLimit.Limit, cfg.RateLimit.Window, c.log)
		}
	}

	c.log.Infow("stores initialized",
		"links_backend", cfg.Links.Backend,
		"ledger_backend", cfg.Ledger.Backend,
		"rate_limit", c.rateLimiter != nil,
	)
	return nil
}

// ============================================================
// Section 2: Payments - gateway, ledger, reconciler, use cases
// ============================================================

func (c *Container) initPayments() error {
	cfg := c.cfg
	log := c.log

	gateway := flow.NewClient(cfg.Gateway, log.Named("gateway"))

	confirmer, err := booking.NewHTTPConfirmer(cfg.Booking, log.Named("booking"))
	if err != nil {
		return fmt.Errorf("failed to create booking confirmer: %w", err)
	}

	ledgerService := ledgerApp.NewService(c.repos.ledgerRepo, cfg.Ledger, log.Named("ledger"))

	reconciler := usecases.NewReconciler(gateway, ledgerService, confirmer, usecases.ReconcilerConfig{
		StatusAttempts: cfg.Gateway.StatusAttempts,
		StatusBackoff:  cfg.Gateway.StatusBackoff,
	}, log.Named("reconciler"))
	reconciler.SetAlerter(email.NewConfirmationAlerter(cfg.Email, cfg.Alerts, log.Named("alerts")))

	linkService := paymentLinkApp.NewService(c.repos.linkRepo, cfg.Links, log.Named("links"))

	createOrderUC := usecases.NewCreateOrderUseCase(gateway, usecases.OrderConfig{
		CallbackBaseURL:      cfg.Server.CallbackBaseURL,
		DefaultPaymentMethod: cfg.Gateway.PaymentMethod,
	}, log)
	createOrderUC.SetLinkConsumer(linkService)

	c.ucs = &allUseCases{
		linkService:     linkService,
		ledgerService:   ledgerService,
		reconciler:      reconciler,
		createOrderUC:   createOrderUC,
		handleWebhookUC: usecases.NewHandleWebhookUseCase(gateway, reconciler, log),
		pollStatusUC:    usecases.NewPollStatusUseCase(reconciler, log),
	}
	return nil
}

// ============================================================
// Section 3: Handlers and middlewares
// ============================================================

func (c *Container) initHandlers() {
	c.hdlrs = &allHandlers{
		paymentHandler: handlers.NewPaymentHandler(
			c.ucs.createOrderUC,
			c.ucs.handleWebhookUC,
			c.ucs.pollStatusUC,
			c.cfg.Server.FrontendReturnURL,
			c.log,
		),
		paymentLinkHandler: handlers.NewPaymentLinkHandler(
			c.ucs.linkService,
			c.ucs.createOrderUC,
			c.cfg.Server.ShortLinkBaseURL,
			c.log,
		),
	}
}
