package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agendapay/agendapay/internal/application/payment/usecases"
	sharedConfig "github.com/agendapay/agendapay/internal/shared/config"
	"github.com/agendapay/agendapay/internal/shared/logger"
)

const (
	defaultTimeout = 5 * time.Second
	// Maximum response body size accepted from the booking API (256KB)
	maxResponseSize = 256 << 10
)

// ConfirmError is returned when the booking API answers with a non-2xx status.
type ConfirmError struct {
	StatusCode int
	Body       string
}

func (e *ConfirmError) Error() string {
	return fmt.Sprintf("booking confirmation failed with status %d: %s", e.StatusCode, e.Body)
}

type confirmRequest struct {
	Token          string `json:"token"`
	SessionID      string `json:"sessionId"`
	CommerceOrder  string `json:"commerceOrder"`
	GatewayOrderID string `json:"gatewayOrderId,omitempty"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	PayerName      string `json:"payerName,omitempty"`
	PayerEmail     string `json:"payerEmail,omitempty"`
	Source         string `json:"source"`
}

// HTTPConfirmer confirms bookings by posting the paid order to the
// appointment service.
type HTTPConfirmer struct {
	url        string
	apiToken   string
	httpClient *http.Client
	logger     logger.Interface
}

var _ usecases.BookingConfirmer = (*HTTPConfirmer)(nil)

func NewHTTPConfirmer(cfg sharedConfig.BookingConfig, log logger.Interface) (*HTTPConfirmer, error) {
	if cfg.ConfirmURL == "" {
		return nil, fmt.Errorf("booking confirm url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPConfirmer{
		url:        cfg.ConfirmURL,
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}, nil
}

func (c *HTTPConfirmer) ConfirmBooking(ctx context.Context, cmd usecases.BookingConfirmation) (map[string]any, error) {
	body, err := json.Marshal(confirmRequest{
		Token:          cmd.Token,
		SessionID:      cmd.SessionID,
		CommerceOrder:  cmd.CommerceOrder,
		GatewayOrderID: cmd.GatewayOrderID,
		Amount:         cmd.Amount,
		Currency:       cmd.Currency,
		PayerName:      cmd.PayerName,
		PayerEmail:     cmd.PayerEmail,
		Source:         cmd.Source,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking confirmation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create booking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("booking request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read booking response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warnw("booking api rejected confirmation",
			"session_id", cmd.SessionID,
			"status", resp.StatusCode,
		)
		return nil, &ConfirmError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}

	result := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			// A 2xx without a JSON object still confirmed the booking.
			result = map[string]any{"raw": string(raw)}
		}
	}
	return result, nil
}
