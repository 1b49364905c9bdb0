package paymentlink

import (
	"errors"
	"fmt"
	"time"
)

// DefaultTTL is how long a link stays readable after creation.
const DefaultTTL = 30 * time.Minute

var (
	ErrNotFound    = errors.New("payment link not found")
	ErrExpired     = errors.New("payment link expired")
	ErrAlreadyUsed = errors.New("payment link already used")
	ErrDuplicateID = errors.New("payment link id already exists")
)

// Link is a short-lived, single-use reference to a booking payload.
type Link struct {
	ID        string     `json:"id"`
	Payload   Payload    `json:"payload"`
	Amount    int64      `json:"amount"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
}

func NewLink(id string, payload Payload, amount int64, now time.Time, ttl time.Duration) (*Link, error) {
	if id == "" {
		return nil, fmt.Errorf("link id is required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amount)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now = now.UTC()
	return &Link{
		ID:        id,
		Payload:   payload,
		Amount:    amount,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

func (l *Link) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// Readable reports now < ExpiresAt && !Used.
func (l *Link) Readable(now time.Time) bool {
	return !l.IsExpired(now) && !l.Used
}

// CheckReadable maps an unreadable link to its sentinel error. Expiry wins
// over use.
func (l *Link) CheckReadable(now time.Time) error {
	if l.IsExpired(now) {
		return ErrExpired
	}
	if l.Used {
		return ErrAlreadyUsed
	}
	return nil
}

// MarkUsed is idempotent; the first use time is kept.
func (l *Link) MarkUsed(at time.Time) {
	if l.Used {
		return
	}
	at = at.UTC()
	l.Used = true
	l.UsedAt = &at
}

// Stats is a snapshot of the store after a sweep.
type Stats struct {
	Total  int `json:"total"`
	Used   int `json:"used"`
	Active int `json:"active"`
}

// Tally adds a link to the stats as seen at now.
func (s *Stats) Tally(l *Link, now time.Time) {
	s.Total++
	if l.Used {
		s.Used++
	} else if !l.IsExpired(now) {
		s.Active++
	}
}
