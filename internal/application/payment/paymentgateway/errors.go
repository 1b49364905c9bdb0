package paymentgateway

import (
	"errors"
	"fmt"
	"net/http"
)

// GatewayError is a failed or malformed exchange with the gateway.
// StatusCode is 0 when the request never got an HTTP response.
type GatewayError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("gateway %s failed (status %d, code %s): %s", e.Op, e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("gateway %s failed (status %d): %s", e.Op, e.StatusCode, msg)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Retryable reports transport failures and 5xx answers.
func (e *GatewayError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError
}

// IsRetryable reports whether err is a GatewayError worth retrying.
func IsRetryable(err error) bool {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Retryable()
	}
	return false
}
