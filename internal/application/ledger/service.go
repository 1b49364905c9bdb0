package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/agendapay/agendapay/internal/domain/ledger"
	"github.com/agendapay/agendapay/internal/shared/biztime"
	sharedConfig "github.com/agendapay/agendapay/internal/shared/config"
	"github.com/agendapay/agendapay/internal/shared/logger"
)

const (
	defaultWaitTimeout  = 5 * time.Second
	defaultPollInterval = 100 * time.Millisecond
	repoTimeout         = 5 * time.Second
)

// ConfirmFunc performs the downstream booking confirmation.
type ConfirmFunc func(ctx context.Context) (map[string]any, error)

// Outcome is what a TryConfirm caller observes.
type Outcome struct {
	Result ledger.Result
	// Replayed is true when this caller did not run the confirmation itself.
	Replayed bool
	// Unrecorded is true when the result could not be written and the entry
	// was left pending.
	Unrecorded bool
}

// Service gates the downstream confirmation so it runs at most once per token.
type Service struct {
	repo         ledger.Repository
	group        singleflight.Group
	waitTimeout  time.Duration
	pollInterval time.Duration
	now          func() time.Time
	logger       logger.Interface
}

func NewService(repo ledger.Repository, cfg sharedConfig.LedgerConfig, log logger.Interface) *Service {
	s := &Service{
		repo:         repo,
		waitTimeout:  cfg.WaitTimeout,
		pollInterval: cfg.PollInterval,
		now:          biztime.NowUTC,
		logger:       log,
	}
	if s.waitTimeout <= 0 {
		s.waitTimeout = defaultWaitTimeout
	}
	if s.pollInterval <= 0 {
		s.pollInterval = defaultPollInterval
	}
	return s
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// TryConfirm runs confirm exactly once for token across all callers sharing
// the repository. Failed confirmations are stored too and replayed as-is.
func (s *Service) TryConfirm(ctx context.Context, token, sessionID string, confirm ConfirmFunc) (*Outcome, error) {
	if token == "" {
		return nil, fmt.Errorf("ledger token is required")
	}

	ran := false
	v, err, _ := s.group.Do(token, func() (any, error) {
		ran = true
		// Joined callers share this flight, so it must not end with the
		// first caller's request.
		return s.tryConfirm(context.WithoutCancel(ctx), token, sessionID, confirm)
	})
	if err != nil {
		return nil, err
	}

	out := *v.(*Outcome)
	if !ran {
		out.Replayed = true
	}
	return &out, nil
}

func (s *Service) tryConfirm(ctx context.Context, token, sessionID string, confirm ConfirmFunc) (*Outcome, error) {
	entry, err := ledger.NewPendingEntry(token, sessionID, s.now())
	if err != nil {
		return nil, err
	}

	claimCtx, cancel := context.WithTimeout(ctx, repoTimeout)
	existing, claimed, err := s.repo.Claim(claimCtx, entry)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to claim ledger entry: %w", err)
	}

	if !claimed {
		if existing.IsFinal() {
			s.logger.Infow("confirmation replayed from ledger",
				"token", token,
				"state", existing.State,
			)
			return &Outcome{Result: *existing.Result, Replayed: true}, nil
		}
		return s.waitForResult(ctx, token)
	}

	result := s.runConfirm(ctx, token, confirm)
	out := &Outcome{Result: result}

	completeCtx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()
	if err := s.repo.Complete(completeCtx, token, result, s.now()); err != nil {
		// Never rerun a confirmation that already happened; the entry stays
		// pending until an operator resolves it.
		out.Unrecorded = true
		s.logger.Errorw("failed to persist confirmation result",
			"token", token,
			"session_id", sessionID,
			"success", result.Success,
			"error", err,
		)
	}

	if result.Success {
		s.logger.Infow("booking confirmed", "token", token, "session_id", sessionID)
	} else {
		s.logger.Warnw("booking confirmation failed", "token", token, "session_id", sessionID, "error", result.Error)
	}

	return out, nil
}

func (s *Service) runConfirm(ctx context.Context, token string, confirm ConfirmFunc) (result ledger.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("confirmation panicked", "token", token, "panic", fmt.Sprintf("%v", r))
			result = ledger.FailureResult(fmt.Errorf("confirmation panicked: %v", r))
		}
	}()

	response, err := confirm(ctx)
	if err != nil {
		return ledger.FailureResult(err)
	}
	return ledger.SuccessResult(response)
}

// waitForResult polls an entry claimed by another process until it is final.
func (s *Service) waitForResult(ctx context.Context, token string) (*Outcome, error) {
	s.logger.Infow("confirmation in progress elsewhere, waiting", "token", token)

	deadline := time.NewTimer(s.waitTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			s.logger.Warnw("timed out waiting for confirmation", "token", token, "wait_timeout", s.waitTimeout)
			return nil, ledger.ErrConfirmationInProgress
		case <-ticker.C:
			getCtx, cancel := context.WithTimeout(ctx, repoTimeout)
			entry, err := s.repo.Get(getCtx, token)
			cancel()
			if err != nil {
				if errors.Is(err, ledger.ErrEntryNotFound) {
					continue
				}
				return nil, fmt.Errorf("failed to read ledger entry: %w", err)
			}
			if entry.IsFinal() {
				return &Outcome{Result: *entry.Result, Replayed: true}, nil
			}
		}
	}
}

// Lookup returns the stored entry for token, if any.
func (s *Service) Lookup(ctx context.Context, token string) (*ledger.Entry, error) {
	return s.repo.Get(ctx, token)
}
