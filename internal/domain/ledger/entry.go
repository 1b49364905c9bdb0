package ledger

import (
	"errors"
	"fmt"
	"time"
)

// State is the confirmation state of a ledger entry.
type State string

const (
	// StatePending means a caller holds the claim and the confirmation is in flight.
	StatePending   State = "pending"
	StateConfirmed State = "confirmed"
	StateFailed    State = "failed"
)

func (s State) IsFinal() bool {
	return s == StateConfirmed || s == StateFailed
}

func (s State) IsValid() bool {
	return s == StatePending || s.IsFinal()
}

var (
	ErrEntryNotFound = errors.New("ledger entry not found")
	// ErrAlreadyFinal is returned when completing an entry that already holds a result.
	ErrAlreadyFinal = errors.New("ledger entry already final")
	// ErrConfirmationInProgress is returned when another process holds the
	// claim and does not finish within the wait timeout.
	ErrConfirmationInProgress = errors.New("confirmation in progress")
)

// Result is the outcome of the single downstream confirmation for a token.
type Result struct {
	Success  bool           `json:"success"`
	Response map[string]any `json:"response,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func SuccessResult(response map[string]any) Result {
	return Result{Success: true, Response: response}
}

// State is the final state an entry takes when completed with r.
func (r Result) State() State {
	if r.Success {
		return StateConfirmed
	}
	return StateFailed
}

func FailureResult(err error) Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Result{Success: false, Error: msg}
}

// Entry records that a token has been claimed for confirmation. At most one
// entry exists per token and it is never deleted.
type Entry struct {
	Token       string     `json:"token"`
	SessionID   string     `json:"sessionId"`
	State       State      `json:"state"`
	Result      *Result    `json:"result,omitempty"`
	ClaimedAt   time.Time  `json:"claimedAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
}

// NewPendingEntry builds the entry a caller tries to claim.
func NewPendingEntry(token, sessionID string, claimedAt time.Time) (*Entry, error) {
	if token == "" {
		return nil, fmt.Errorf("ledger token is required")
	}
	return &Entry{
		Token:     token,
		SessionID: sessionID,
		State:     StatePending,
		ClaimedAt: claimedAt.UTC(),
	}, nil
}

// Complete moves a pending entry to its final state.
func (e *Entry) Complete(result Result, at time.Time) error {
	if e.State.IsFinal() {
		return ErrAlreadyFinal
	}
	at = at.UTC()
	e.Result = &result
	e.ConfirmedAt = &at
	e.State = result.State()
	return nil
}

func (e *Entry) IsFinal() bool {
	return e.State.IsFinal()
}

// Clone returns a deep copy so stores never hand out shared state.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	if e.Result != nil {
		r := *e.Result
		if e.Result.Response != nil {
			r.Response = make(map[string]any, len(e.Result.Response))
			for k, v := range e.Result.Response {
				r.Response[k] = v
			}
		}
		c.Result = &r
	}
	if e.ConfirmedAt != nil {
		t := *e.ConfirmedAt
		c.ConfirmedAt = &t
	}
	return &c
}
