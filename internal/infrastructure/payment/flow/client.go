package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agendapay/agendapay/internal/application/payment/paymentgateway"
	"github.com/agendapay/agendapay/internal/domain/payment"
	vo "github.com/agendapay/agendapay/internal/domain/payment/valueobjects"
	sharedConfig "github.com/agendapay/agendapay/internal/shared/config"
	"github.com/agendapay/agendapay/internal/shared/logger"
	"github.com/agendapay/agendapay/internal/shared/utils"
)

const (
	sandboxAPIBaseURL    = "https://sandbox.flow.cl/api"
	sandboxWebBaseURL    = "https://sandbox.flow.cl/app/web/pay.php"
	productionAPIBaseURL = "https://www.flow.cl/api"
	productionWebBaseURL = "https://www.flow.cl/app/web/pay.php"

	defaultTimeout = 8 * time.Second
	// Maximum response body size accepted from the gateway (1MB)
	maxResponseSize = 1 << 20

	createPath    = "/payment/create"
	getStatusPath = "/payment/getStatus"
)

// Client talks to the gateway's REST API. It is stateless and never retries.
type Client struct {
	apiKey     string
	apiBaseURL string
	webBaseURL string
	signer     *Signer
	httpClient *http.Client
	logger     logger.Interface
}

// Ensure Client implements the gateway ports
var (
	_ paymentgateway.Gateway              = (*Client)(nil)
	_ paymentgateway.NotificationVerifier = (*Client)(nil)
)

// NewClient builds a client from gateway config. Empty base URLs fall back to
// the environment's defaults.
func NewClient(cfg sharedConfig.GatewayConfig, log logger.Interface) *Client {
	apiBase, webBase := sandboxAPIBaseURL, sandboxWebBaseURL
	if cfg.IsProduction() {
		apiBase, webBase = productionAPIBaseURL, productionWebBaseURL
	}
	if cfg.APIBaseURL != "" {
		apiBase = cfg.APIBaseURL
	}
	if cfg.WebBaseURL != "" {
		webBase = cfg.WebBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:     cfg.APIKey,
		apiBaseURL: strings.TrimRight(apiBase, "/"),
		webBaseURL: strings.TrimRight(webBase, "/"),
		signer:     NewSigner(cfg.SecretKey),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

type createResponse struct {
	URL       string     `json:"url"`
	Token     string     `json:"token"`
	FlowOrder flexString `json:"flowOrder"`
}

type errorResponse struct {
	Code    flexString `json:"code"`
	Message string     `json:"message"`
}

type statusResponse struct {
	FlowOrder     flexString      `json:"flowOrder"`
	CommerceOrder string          `json:"commerceOrder"`
	Status        flexString      `json:"status"`
	Subject       string          `json:"subject"`
	Currency      string          `json:"currency"`
	Amount        flexString      `json:"amount"`
	Payer         json.RawMessage `json:"payer"`
}

func (c *Client) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.CreateOrderResponse, error) {
	params := c.signer.SignParams(Params{
		"apiKey":          c.apiKey,
		"commerceOrder":   req.CommerceOrder,
		"subject":         req.Subject,
		"currency":        req.Currency,
		"amount":          req.Amount,
		"email":           req.PayerEmail,
		"paymentMethod":   req.PaymentMethod,
		"urlConfirmation": req.ConfirmationURL,
		"urlReturn":       req.ReturnURL,
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+createPath,
		strings.NewReader(params.Values().Encode()))
	if err != nil {
		return nil, &paymentgateway.GatewayError{Op: "create", Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp createResponse
	if err := c.do(httpReq, "create", &resp); err != nil {
		return nil, err
	}

	if resp.Token == "" {
		return nil, &paymentgateway.GatewayError{
			Op:         "create",
			StatusCode: http.StatusOK,
			Message:    "response did not include a token",
		}
	}

	c.logger.Infow("gateway order created",
		"commerce_order", req.CommerceOrder,
		"gateway_order_id", string(resp.FlowOrder),
		"token", utils.MaskToken(resp.Token),
	)

	return &paymentgateway.CreateOrderResponse{
		Token:          resp.Token,
		RedirectURL:    c.webBaseURL + "/" + resp.Token,
		GatewayOrderID: string(resp.FlowOrder),
	}, nil
}

func (c *Client) GetOrderStatus(ctx context.Context, token string) (*payment.Order, error) {
	params := c.signer.SignParams(Params{
		"apiKey": c.apiKey,
		"token":  token,
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiBaseURL+getStatusPath+"?"+params.Values().Encode(), nil)
	if err != nil {
		return nil, &paymentgateway.GatewayError{Op: "getStatus", Err: fmt.Errorf("failed to create request: %w", err)}
	}

	var resp statusResponse
	if err := c.do(httpReq, "getStatus", &resp); err != nil {
		return nil, err
	}

	order, err := resp.toOrder(token)
	if err != nil {
		return nil, &paymentgateway.GatewayError{
			Op:         "getStatus",
			StatusCode: http.StatusOK,
			Message:    "malformed status response",
			Err:        err,
		}
	}

	c.logger.Debugw("gateway order status fetched",
		"token", utils.MaskToken(token),
		"commerce_order", order.CommerceOrder(),
		"status", order.Status(),
	)
	return order, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &paymentgateway.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &paymentgateway.GatewayError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gwErr := &paymentgateway.GatewayError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			gwErr.Code = string(errResp.Code)
			gwErr.Message = errResp.Message
		}
		c.logger.Warnw("gateway returned error",
			"op", op,
			"status", resp.StatusCode,
			"code", gwErr.Code,
			"message", gwErr.Message,
		)
		return gwErr
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &paymentgateway.GatewayError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "undecodable response",
			Err:        err,
		}
	}
	return nil
}

func (r *statusResponse) toOrder(token string) (*payment.Order, error) {
	status, err := vo.ParseGatewayStatus(string(r.Status))
	if err != nil {
		return nil, err
	}
	amount, err := parseWholeAmount(string(r.Amount))
	if err != nil {
		return nil, err
	}
	payer, err := parsePayer(r.Payer)
	if err != nil {
		return nil, err
	}

	return payment.NewOrder(payment.OrderParams{
		Token:          token,
		CommerceOrder:  r.CommerceOrder,
		GatewayOrderID: string(r.FlowOrder),
		Subject:        r.Subject,
		Amount:         amount,
		Currency:       r.Currency,
		Payer:          payer,
		Status:         status,
	})
}

// parseWholeAmount accepts "2990" and "2990.0" but rejects fractions.
func parseWholeAmount(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return int64(f), nil
}

// parsePayer accepts either a bare email string or {name, email}.
func parsePayer(raw json.RawMessage) (payment.Payer, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return payment.Payer{}, nil
	}
	var email string
	if err := json.Unmarshal(raw, &email); err == nil {
		return payment.Payer{Email: email}, nil
	}
	var p struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return payment.Payer{}, fmt.Errorf("invalid payer: %w", err)
	}
	return payment.Payer{Name: p.Name, Email: p.Email}, nil
}

// flexString decodes a JSON string or number into its literal text.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// VerifyNotification checks a webhook form with the merchant secret.
func (c *Client) VerifyNotification(params map[string]string) bool {
	p := make(Params, len(params))
	for k, v := range params {
		p[k] = v
	}
	return c.signer.Verify(p)
}
