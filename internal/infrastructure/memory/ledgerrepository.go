package memory

import (
	"context"
	"sync"
	"time"

	"github.com/agendapay/agendapay/internal/domain/ledger"
)

// LedgerRepository keeps ledger entries in process memory. It is only
// suitable for single-instance deployments and tests.
type LedgerRepository struct {
	mu      sync.Mutex
	entries map[string]*ledger.Entry
}

var _ ledger.Repository = (*LedgerRepository)(nil)

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{entries: make(map[string]*ledger.Entry)}
}

func (r *LedgerRepository) Claim(ctx context.Context, entry *ledger.Entry) (*ledger.Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[entry.Token]; ok {
		return existing.Clone(), false, nil
	}
	r.entries[entry.Token] = entry.Clone()
	return nil, true, nil
}

func (r *LedgerRepository) Complete(ctx context.Context, token string, result ledger.Result, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[token]
	if !ok {
		return ledger.ErrEntryNotFound
	}
	return entry.Complete(result, at)
}

func (r *LedgerRepository) Get(ctx context.Context, token string) (*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[token]
	if !ok {
		return nil, ledger.ErrEntryNotFound
	}
	return entry.Clone(), nil
}
