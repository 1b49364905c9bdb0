package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/agendapay/agendapay/internal/domain/payment/valueobjects"
	apperrors "github.com/agendapay/agendapay/internal/shared/errors"
	"github.com/agendapay/agendapay/internal/shared/logger"
)

func TestPollStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    vo.OrderStatus
		want      string
		success   bool
		confirmed bool
	}{
		{"paid", vo.OrderStatusPaid, PollStatusPaid, true, true},
		{"pending", vo.OrderStatusPending, PollStatusPending, false, false},
		{"rejected", vo.OrderStatusRejected, PollStatusError, false, false},
		{"expired", vo.OrderStatusExpired, PollStatusError, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReconcilerFixture()
			f.gateway.setOrder("TOK1", "abc123-1699999999000", tt.status, 2990)
			uc := NewPollStatusUseCase(f.reconciler, logger.NewNopLogger())

			result, err := uc.Execute(context.Background(), PollStatusCommand{Token: "TOK1"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, tt.success, result.Success)
			require.NotNil(t, result.PaymentDetails)
			assert.Equal(t, tt.confirmed, result.PaymentDetails.Confirmed)
			assert.Equal(t, int64(2990), result.PaymentDetails.Amount)
			assert.Equal(t, "abc123", result.PaymentDetails.SessionID)
		})
	}
}

func TestPollStatus_CallerValuesAreAdvisory(t *testing.T) {
	f := newReconcilerFixture()
	f.gateway.setOrder("TOK1", "abc123-1699999999000", vo.OrderStatusPaid, 2990)
	uc := NewPollStatusUseCase(f.reconciler, logger.NewNopLogger())

	result, err := uc.Execute(context.Background(), PollStatusCommand{
		Token:         "TOK1",
		SessionID:     "someone-else",
		CommerceOrder: "someone-else-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123-1699999999000", result.PaymentDetails.CommerceOrder)
	require.Equal(t, 1, f.confirmer.count())
	assert.Equal(t, "abc123", f.confirmer.calls[0].SessionID)
}

func TestPollStatus_Replay(t *testing.T) {
	f := newReconcilerFixture()
	f.gateway.setOrder("TOK1", "abc123-1699999999000", vo.OrderStatusPaid, 2990)
	uc := NewPollStatusUseCase(f.reconciler, logger.NewNopLogger())

	first, err := uc.Execute(context.Background(), PollStatusCommand{Token: "TOK1"})
	require.NoError(t, err)
	assert.False(t, first.PaymentDetails.Replayed)

	second, err := uc.Execute(context.Background(), PollStatusCommand{Token: "TOK1"})
	require.NoError(t, err)
	assert.True(t, second.PaymentDetails.Replayed)
	assert.True(t, second.PaymentDetails.Confirmed)
	assert.Equal(t, 1, f.confirmer.count())
}

func TestPollStatus_Errors(t *testing.T) {
	f := newReconcilerFixture()
	uc := NewPollStatusUseCase(f.reconciler, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), PollStatusCommand{})
	assert.True(t, apperrors.IsValidationError(err))

	f.gateway.statusErrs = []error{errTransport, errTransport, errTransport}
	_, err = uc.Execute(context.Background(), PollStatusCommand{Token: "TOK1"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeGateway))
}
