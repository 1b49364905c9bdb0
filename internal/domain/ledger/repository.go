package ledger

import (
	"context"
	"time"
)

// Repository persists ledger entries.
type Repository interface {
	// Claim inserts entry if no entry exists for its token. When one exists
	// it is returned with claimed=false and nothing is written.
	Claim(ctx context.Context, entry *Entry) (existing *Entry, claimed bool, err error)
	// Complete writes the final result of a pending entry. A final entry is
	// never rewritten; completing one returns ErrAlreadyFinal.
	Complete(ctx context.Context, token string, result Result, at time.Time) error
	Get(ctx context.Context, token string) (*Entry, error)
}
