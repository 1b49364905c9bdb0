package http

import (
	"github.com/agendapay/agendapay/internal/domain/ledger"
	"github.com/agendapay/agendapay/internal/domain/paymentlink"
)

// repositories holds the store for each domain, chosen by configuration.
type repositories struct {
	linkRepo   paymentlink.Repository
	ledgerRepo ledger.Repository
}
