package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendapay/agendapay/internal/application/payment/usecases"
	"github.com/agendapay/agendapay/internal/domain/paymentlink"
	"github.com/agendapay/agendapay/internal/interfaces/dto"
	"github.com/agendapay/agendapay/internal/interfaces/http/handlers/testutil"
	"github.com/agendapay/agendapay/internal/shared/errors"
)

type mockLinkService struct {
	link     *paymentlink.Link
	err      error
	affected bool
	stats    paymentlink.Stats

	lastAmount int64
	lastTTL    time.Duration
	lastMark   bool
}

func (m *mockLinkService) Create(ctx context.Context, payload paymentlink.Payload, amount int64, ttl time.Duration) (*paymentlink.Link, error) {
	m.lastAmount = amount
	m.lastTTL = ttl
	return m.link, m.err
}

func (m *mockLinkService) Get(ctx context.Context, linkID string) (*paymentlink.Link, error) {
	return m.link, m.err
}

func (m *mockLinkService) Release(ctx context.Context, linkID string, markAsUsed bool) (bool, error) {
	m.lastMark = markAsUsed
	return m.affected, m.err
}

func (m *mockLinkService) Stats(ctx context.Context) (paymentlink.Stats, error) {
	return m.stats, m.err
}

func sampleLink() *paymentlink.Link {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &paymentlink.Link{
		ID: "aB3dE5gH",
		Payload: paymentlink.Payload{
			Version: paymentlink.CurrentPayloadVersion,
			Patient: paymentlink.Patient{Name: "Ana", Email: "ana@example.com"},
			Appointment: paymentlink.Appointment{
				ProfessionalID: "pro-7",
				Date:           "2024-05-10",
				Time:           "09:30",
			},
			Subject:  "Consulta",
			Currency: "CLP",
		},
		Amount:    2990,
		CreatedAt: created,
		ExpiresAt: created.Add(30 * time.Minute),
	}
}

func newLinkHandler(links *mockLinkService, create *mockCreateOrderUC) *PaymentLinkHandler {
	return NewPaymentLinkHandler(links, create, "https://app.example.com/p/", testutil.NewMockLogger())
}

func TestPaymentLinkHandler_Create(t *testing.T) {
	links := &mockLinkService{link: sampleLink()}
	h := newLinkHandler(links, &mockCreateOrderUC{})

	c, w := testutil.NewTestContext(http.MethodPost, "/payment-links", map[string]any{
		"patient":     map[string]string{"name": "Ana", "email": "ana@example.com"},
		"appointment": map[string]string{"professionalId": "pro-7", "date": "2024-05-10", "time": "09:30"},
		"subject":     "Consulta",
		"amount":      2990,
		"ttlMinutes":  10,
	})
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var data dto.CreatePaymentLinkResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "aB3dE5gH", data.ShortID)
	assert.Equal(t, "https://app.example.com/p/aB3dE5gH", data.ShortURL)
	assert.True(t, data.ExpiresAt.Equal(sampleLink().ExpiresAt))
	assert.Equal(t, int64(2990), links.lastAmount)
	assert.Equal(t, 10*time.Minute, links.lastTTL)
}

func TestPaymentLinkHandler_Create_Invalid(t *testing.T) {
	h := newLinkHandler(&mockLinkService{}, &mockCreateOrderUC{})

	c, w := testutil.NewTestContext(http.MethodPost, "/payment-links", map[string]any{
		"patient": map[string]string{"name": "Ana", "email": "not-an-email"},
		"amount":  2990,
	})
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentLinkHandler_Get(t *testing.T) {
	tests := []struct {
		name string
		svc  *mockLinkService
		code int
	}{
		{"readable", &mockLinkService{link: sampleLink()}, http.StatusOK},
		{"not found", &mockLinkService{err: errors.NewNotFoundError("payment link not found")}, http.StatusNotFound},
		{"expired", &mockLinkService{err: errors.NewExpiredError("payment link expired")}, http.StatusGone},
		{"used", &mockLinkService{err: errors.NewConflictError("payment link already used")}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newLinkHandler(tt.svc, &mockCreateOrderUC{})

			c, w := testutil.NewTestContext(http.MethodGet, "/payment-links", nil)
			testutil.SetQueryParams(c, map[string]string{"id": "aB3dE5gH"})
			h.Get(c)

			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestPaymentLinkHandler_Get_MissingID(t *testing.T) {
	h := newLinkHandler(&mockLinkService{}, &mockCreateOrderUC{})

	c, w := testutil.NewTestContext(http.MethodGet, "/payment-links", nil)
	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentLinkHandler_Release(t *testing.T) {
	links := &mockLinkService{affected: true}
	h := newLinkHandler(links, &mockCreateOrderUC{})

	c, w := testutil.NewTestContext(http.MethodDelete, "/payment-links", nil)
	testutil.SetQueryParams(c, map[string]string{"id": "aB3dE5gH", "markAsUsed": "true"})
	h.Release(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, links.lastMark)

	c, w = testutil.NewTestContext(http.MethodDelete, "/payment-links", nil)
	testutil.SetQueryParams(c, map[string]string{"id": "aB3dE5gH", "markAsUsed": "maybe"})
	h.Release(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentLinkHandler_Stats(t *testing.T) {
	h := newLinkHandler(&mockLinkService{stats: paymentlink.Stats{Total: 3, Used: 1, Active: 2}}, &mockCreateOrderUC{})

	c, w := testutil.NewTestContext(http.MethodPatch, "/payment-links", nil)
	h.Stats(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var stats paymentlink.Stats
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, paymentlink.Stats{Total: 3, Used: 1, Active: 2}, stats)
}

func TestPaymentLinkHandler_CreateOrder(t *testing.T) {
	create := &mockCreateOrderUC{result: &usecases.CreateOrderResult{Token: "TOK1"}}
	h := newLinkHandler(&mockLinkService{}, create)

	c, w := testutil.NewTestContext(http.MethodPost, "/payment-links/aB3dE5gH/order", nil)
	testutil.SetURLParam(c, "id", "aB3dE5gH")
	h.CreateOrder(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "aB3dE5gH", create.lastLink)
	assert.Empty(t, create.lastSession)

	create.err = errors.NewConflictError("payment link already used")
	c, w = testutil.NewTestContext(http.MethodPost, "/payment-links/aB3dE5gH/order", map[string]string{"sessionId": "abc123"})
	testutil.SetURLParam(c, "id", "aB3dE5gH")
	h.CreateOrder(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "abc123", create.lastSession)
}
