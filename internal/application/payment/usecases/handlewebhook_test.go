package usecases

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/agendapay/agendapay/internal/domain/payment/valueobjects"
	apperrors "github.com/agendapay/agendapay/internal/shared/errors"
	"github.com/agendapay/agendapay/internal/shared/logger"
)

func newWebhookUseCase(f *reconcilerFixture, validSignature bool) *HandleWebhookUseCase {
	return NewHandleWebhookUseCase(mockVerifier{valid: validSignature}, f.reconciler, logger.NewNopLogger())
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	f := newReconcilerFixture()
	f.gateway.setOrder("TOK1", "abc123-1699999999000", vo.OrderStatusPaid, 2990)
	uc := newWebhookUseCase(f, false)

	_, err := uc.Execute(context.Background(), map[string]string{"token": "TOK1", "status": "2", "s": "forged"})

	assert.True(t, apperrors.IsSignatureError(err))
	assert.Equal(t, int32(0), f.gateway.statusCall.Load(), "status must not be fetched for a forged notification")
	assert.Equal(t, 0, f.confirmer.count())
}

func TestHandleWebhook_MissingToken(t *testing.T) {
	f := newReconcilerFixture()
	uc := newWebhookUseCase(f, true)

	_, err := uc.Execute(context.Background(), map[string]string{"status": "2"})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestHandleWebhook_ReportedNotPaid(t *testing.T) {
	f := newReconcilerFixture()
	uc := newWebhookUseCase(f, true)

	result, err := uc.Execute(context.Background(), map[string]string{"token": "TOK1", "status": "1"})
	require.NoError(t, err)
	assert.Equal(t, &WebhookResult{Received: true, Processed: false}, result)
	assert.Equal(t, int32(0), f.gateway.statusCall.Load())
}

func TestHandleWebhook_AuthoritativeStatusWins(t *testing.T) {
	f := newReconcilerFixture()
	f.gateway.setOrder("TOK1", "abc123-1699999999000", vo.OrderStatusPending, 2990)
	uc := newWebhookUseCase(f, true)

	result, err := uc.Execute(context.Background(), map[string]string{
		"token":  "TOK1",
		"status": "2",
		"amount": "999999",
	})
	require.NoError(t, err)
	assert.False(t, result.Processed)
	assert.Equal(t, 0, f.confirmer.count())
}

func TestHandleWebhook_TokenOnlyNotification(t *testing.T) {
	f := newReconcilerFixture()
	f.gateway.setOrder("TOK1", "abc123-1699999999000", vo.OrderStatusPaid, 2990)
	uc := newWebhookUseCase(f, true)

	result, err := uc.Execute(context.Background(), map[string]string{"token": "TOK1"})
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, 1, f.confirmer.count())
}

func TestHandleWebhook_StatusFetchFails(t *testing.T) {
	f := newReconcilerFixture()
	f.gateway.statusErrs = []error{errTransport, errTransport, errTransport}
	uc := newWebhookUseCase(f, true)

	_, err := uc.Execute(context.Background(), map[string]string{"token": "TOK1", "status": "2"})

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeGateway, appErr.Type)
	assert.Equal(t, 502, appErr.Code)
	assert.Equal(t, 0, f.confirmer.count())
}

func TestHandleWebhook_DuplicateDeliveries(t *testing.T) {
	f := newReconcilerFixture()
	f.gateway.setOrder("TOK1", "abc123-1699999999000", vo.OrderStatusPaid, 2990)
	uc := newWebhookUseCase(f, true)
	params := map[string]string{"token": "TOK1", "status": "2"}

	for i := 0; i < 5; i++ {
		result, err := uc.Execute(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, &WebhookResult{Received: true, Processed: true}, result)
	}
	assert.Equal(t, 1, f.confirmer.count())
}

func TestHandleWebhook_DownstreamFailureStillAcknowledged(t *testing.T) {
	f := newReconcilerFixture()
	f.confirmer.err = assert.AnError
	f.gateway.setOrder("TOK1", "abc123-1699999999000", vo.OrderStatusPaid, 2990)
	uc := newWebhookUseCase(f, true)

	for i := 0; i < 3; i++ {
		result, err := uc.Execute(context.Background(), map[string]string{"token": "TOK1", "status": "2"})
		require.NoError(t, err)
		assert.Equal(t, &WebhookResult{Received: true, Processed: false}, result)
	}
	assert.Equal(t, 1, f.confirmer.count())
}

func TestHandleWebhook_RacesWithPoll(t *testing.T) {
	f := newReconcilerFixture()
	f.gateway.setOrder("TOK1", "abc123-1699999999000", vo.OrderStatusPaid, 2990)
	webhook := newWebhookUseCase(f, true)
	poll := NewPollStatusUseCase(f.reconciler, logger.NewNopLogger())

	var wg sync.WaitGroup
	var webhookResult *WebhookResult
	var pollResult *PollStatusResult
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		webhookResult, err = webhook.Execute(context.Background(), map[string]string{"token": "TOK1", "status": "2"})
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		var err error
		pollResult, err = poll.Execute(context.Background(), PollStatusCommand{Token: "TOK1"})
		assert.NoError(t, err)
	}()
	wg.Wait()

	assert.Equal(t, 1, f.confirmer.count())
	require.NotNil(t, webhookResult)
	require.NotNil(t, pollResult)
	assert.True(t, webhookResult.Processed)
	assert.True(t, pollResult.PaymentDetails.Confirmed)
}
