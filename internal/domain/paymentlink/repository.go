package paymentlink

import (
	"context"
	"time"
)

// Repository stores payment links. Implementations must be safe for
// concurrent use and must make Insert and Consume atomic.
type Repository interface {
	// Insert stores link unless its id is taken; inserted=false on collision.
	Insert(ctx context.Context, link *Link) (inserted bool, err error)
	// Get returns the stored link, expired or used, or ErrNotFound.
	Get(ctx context.Context, id string) (*Link, error)
	// MarkUsed flags the link as used. Marking twice is not an error.
	MarkUsed(ctx context.Context, id string, at time.Time) error
	// Consume returns a readable link and marks it used in one step.
	Consume(ctx context.Context, id string, now time.Time) (*Link, error)
	Delete(ctx context.Context, id string) (deleted bool, err error)
	// SweepExpired removes every link with now >= ExpiresAt.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	Stats(ctx context.Context, now time.Time) (Stats, error)
}
