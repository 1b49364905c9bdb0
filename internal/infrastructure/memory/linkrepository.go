package memory

import (
	"context"
	"sync"
	"time"

	"github.com/agendapay/agendapay/internal/domain/paymentlink"
)

// LinkRepository keeps payment links in a mutex-guarded map.
type LinkRepository struct {
	mu    sync.Mutex
	links map[string]*paymentlink.Link
}

var _ paymentlink.Repository = (*LinkRepository)(nil)

func NewLinkRepository() *LinkRepository {
	return &LinkRepository{links: make(map[string]*paymentlink.Link)}
}

func (r *LinkRepository) Insert(ctx context.Context, link *paymentlink.Link) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[link.ID]; ok {
		return false, nil
	}
	stored := *link
	r.links[link.ID] = &stored
	return true, nil
}

func (r *LinkRepository) Get(ctx context.Context, id string) (*paymentlink.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[id]
	if !ok {
		return nil, paymentlink.ErrNotFound
	}
	out := *link
	return &out, nil
}

func (r *LinkRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[id]
	if !ok {
		return paymentlink.ErrNotFound
	}
	link.MarkUsed(at)
	return nil
}

func (r *LinkRepository) Consume(ctx context.Context, id string, now time.Time) (*paymentlink.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[id]
	if !ok {
		return nil, paymentlink.ErrNotFound
	}
	if err := link.CheckReadable(now); err != nil {
		return nil, err
	}
	link.MarkUsed(now)
	out := *link
	return &out, nil
}

func (r *LinkRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[id]; !ok {
		return false, nil
	}
	delete(r.links, id)
	return true, nil
}

func (r *LinkRepository) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, link := range r.links {
		if link.IsExpired(now) {
			delete(r.links, id)
			removed++
		}
	}
	return removed, nil
}

func (r *LinkRepository) Stats(ctx context.Context, now time.Time) (paymentlink.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats paymentlink.Stats
	for _, link := range r.links {
		stats.Tally(link, now)
	}
	return stats, nil
}
