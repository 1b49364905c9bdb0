package paymentlink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agendapay/agendapay/internal/domain/paymentlink"
	"github.com/agendapay/agendapay/internal/shared/biztime"
	sharedConfig "github.com/agendapay/agendapay/internal/shared/config"
	apperrors "github.com/agendapay/agendapay/internal/shared/errors"
	"github.com/agendapay/agendapay/internal/shared/id"
	"github.com/agendapay/agendapay/internal/shared/logger"
	"github.com/agendapay/agendapay/internal/shared/utils"
)

const maxIDAttempts = 5

// Service manages short, single-use payment links.
type Service struct {
	repo     paymentlink.Repository
	ttl      time.Duration
	idLength int
	now      func() time.Time
	logger   logger.Interface
}

func NewService(repo paymentlink.Repository, cfg sharedConfig.LinksConfig, log logger.Interface) *Service {
	s := &Service{
		repo:     repo,
		ttl:      cfg.TTL,
		idLength: cfg.IDLength,
		now:      biztime.NowUTC,
		logger:   log,
	}
	if s.ttl <= 0 {
		s.ttl = paymentlink.DefaultTTL
	}
	if s.idLength <= 0 {
		s.idLength = id.PaymentLinkLength
	}
	return s
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create stores payload under a fresh short id. ttl <= 0 uses the configured TTL.
func (s *Service) Create(ctx context.Context, payload paymentlink.Payload, amount int64, ttl time.Duration) (*paymentlink.Link, error) {
	payload = SanitizePayload(payload)
	if err := payload.Validate(); err != nil {
		return nil, apperrors.NewValidationError("invalid booking payload", err.Error())
	}
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be a positive integer")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.now()
	s.sweep(ctx, now)

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		shortID, err := id.Generate(s.idLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate link id: %w", err)
		}

		link, err := paymentlink.NewLink(shortID, payload, amount, now, ttl)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}

		inserted, err := s.repo.Insert(ctx, link)
		if err != nil {
			s.logger.Errorw("failed to store payment link", "error", err)
			return nil, fmt.Errorf("failed to store payment link: %w", err)
		}
		if inserted {
			s.logger.Infow("payment link created",
				"link_id", shortID,
				"amount", amount,
				"expires_at", link.ExpiresAt,
				"email", utils.MaskEmail(payload.Patient.Email),
			)
			return link, nil
		}
		s.logger.Warnw("payment link id collision, retrying", "attempt", attempt)
	}

	return nil, fmt.Errorf("failed to allocate payment link id: %w", paymentlink.ErrDuplicateID)
}

// Get returns a readable link. An expired link is reported as expired once
// and removed, so later reads see not found.
func (s *Service) Get(ctx context.Context, linkID string) (*paymentlink.Link, error) {
	if !id.IsValid(linkID) {
		return nil, apperrors.NewValidationError("invalid link id")
	}

	now := s.now()
	link, err := s.repo.Get(ctx, linkID)
	if err != nil && !errors.Is(err, paymentlink.ErrNotFound) {
		return nil, fmt.Errorf("failed to read payment link: %w", err)
	}

	if link != nil && link.IsExpired(now) {
		if _, delErr := s.repo.Delete(ctx, linkID); delErr != nil {
			s.logger.Warnw("failed to delete expired payment link", "link_id", linkID, "error", delErr)
		}
	}
	s.sweep(ctx, now)

	if link == nil {
		return nil, toAppError(paymentlink.ErrNotFound)
	}
	if err := link.CheckReadable(now); err != nil {
		return nil, toAppError(err)
	}
	return link, nil
}

// Release marks the link used, or deletes it when markAsUsed is false.
// It reports whether a link was affected.
func (s *Service) Release(ctx context.Context, linkID string, markAsUsed bool) (bool, error) {
	if !id.IsValid(linkID) {
		return false, apperrors.NewValidationError("invalid link id")
	}

	if markAsUsed {
		if err := s.repo.MarkUsed(ctx, linkID, s.now()); err != nil {
			if errors.Is(err, paymentlink.ErrNotFound) {
				return false, toAppError(err)
			}
			return false, fmt.Errorf("failed to mark payment link used: %w", err)
		}
		s.logger.Infow("payment link marked used", "link_id", linkID)
		return true, nil
	}

	deleted, err := s.repo.Delete(ctx, linkID)
	if err != nil {
		return false, fmt.Errorf("failed to delete payment link: %w", err)
	}
	if deleted {
		s.logger.Infow("payment link deleted", "link_id", linkID)
	}
	return deleted, nil
}

// Consume returns the link and marks it used in one atomic step. Only one
// caller ever succeeds for a given id.
func (s *Service) Consume(ctx context.Context, linkID string) (*paymentlink.Link, error) {
	if !id.IsValid(linkID) {
		return nil, apperrors.NewValidationError("invalid link id")
	}

	now := s.now()
	link, err := s.repo.Consume(ctx, linkID, now)
	if err != nil {
		if errors.Is(err, paymentlink.ErrExpired) {
			if _, delErr := s.repo.Delete(ctx, linkID); delErr != nil {
				s.logger.Warnw("failed to delete expired payment link", "link_id", linkID, "error", delErr)
			}
		}
		if appErr := toAppError(err); appErr != nil {
			return nil, appErr
		}
		return nil, fmt.Errorf("failed to consume payment link: %w", err)
	}

	s.logger.Infow("payment link consumed", "link_id", linkID)
	return link, nil
}

// Stats sweeps and then counts what is left.
func (s *Service) Stats(ctx context.Context) (paymentlink.Stats, error) {
	now := s.now()
	s.sweep(ctx, now)

	stats, err := s.repo.Stats(ctx, now)
	if err != nil {
		return paymentlink.Stats{}, fmt.Errorf("failed to collect payment link stats: %w", err)
	}
	return stats, nil
}

func (s *Service) sweep(ctx context.Context, now time.Time) {
	removed, err := s.repo.SweepExpired(ctx, now)
	if err != nil {
		s.logger.Warnw("payment link sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Debugw("expired payment links swept", "count", removed)
	}
}

// toAppError maps link sentinels to their HTTP-facing errors; other errors
// yield nil.
func toAppError(err error) error {
	switch {
	case errors.Is(err, paymentlink.ErrNotFound):
		return apperrors.NewNotFoundError("payment link not found")
	case errors.Is(err, paymentlink.ErrExpired):
		return apperrors.NewExpiredError("payment link expired")
	case errors.Is(err, paymentlink.ErrAlreadyUsed):
		return apperrors.NewConflictError("payment link already used")
	default:
		return nil
	}
}
