package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// CommerceOrderSeparator joins the session id and the attempt timestamp.
// Session ids may contain the separator themselves; the timestamp is always
// the segment after the last one.
const CommerceOrderSeparator = "-"

var (
	ErrInvalidSessionID     = errors.New("invalid session id")
	ErrInvalidCommerceOrder = errors.New("invalid commerce order")
)

// CommerceOrderRef is a decoded commerceOrder.
type CommerceOrderRef struct {
	SessionID string
	Timestamp time.Time
}

// ValidateSessionID rejects ids that would not survive a round trip through
// the commerceOrder encoding.
func ValidateSessionID(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSessionID)
	}
	for _, r := range sessionID {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: contains whitespace", ErrInvalidSessionID)
		}
	}
	return nil
}

// NewCommerceOrder encodes a unique per-attempt order reference as
// "<sessionId>-<unix millis>".
func NewCommerceOrder(sessionID string, at time.Time) (string, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return "", err
	}
	return sessionID + CommerceOrderSeparator + strconv.FormatInt(at.UnixMilli(), 10), nil
}

// ParseCommerceOrder splits at the last separator and requires a numeric
// timestamp suffix.
func ParseCommerceOrder(commerceOrder string) (CommerceOrderRef, error) {
	idx := strings.LastIndex(commerceOrder, CommerceOrderSeparator)
	if idx <= 0 || idx == len(commerceOrder)-1 {
		return CommerceOrderRef{}, fmt.Errorf("%w: %q", ErrInvalidCommerceOrder, commerceOrder)
	}

	sessionID, suffix := commerceOrder[:idx], commerceOrder[idx+1:]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return CommerceOrderRef{}, fmt.Errorf("%w: non-numeric timestamp %q", ErrInvalidCommerceOrder, suffix)
		}
	}
	millis, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return CommerceOrderRef{}, fmt.Errorf("%w: %v", ErrInvalidCommerceOrder, err)
	}
	if err := ValidateSessionID(sessionID); err != nil {
		return CommerceOrderRef{}, fmt.Errorf("%w: %v", ErrInvalidCommerceOrder, err)
	}

	return CommerceOrderRef{
		SessionID: sessionID,
		Timestamp: time.UnixMilli(millis).UTC(),
	}, nil
}
