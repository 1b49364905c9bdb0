package paymentlink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendapay/agendapay/internal/domain/paymentlink"
	"github.com/agendapay/agendapay/internal/infrastructure/memory"
	"github.com/agendapay/agendapay/internal/infrastructure/storetest"
	sharedConfig "github.com/agendapay/agendapay/internal/shared/config"
	apperrors "github.com/agendapay/agendapay/internal/shared/errors"
	"github.com/agendapay/agendapay/internal/shared/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(repo paymentlink.Repository) (*Service, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(repo, sharedConfig.LinksConfig{TTL: 30 * time.Minute, IDLength: 8}, logger.NewNopLogger())
	svc.SetClock(clock.Now)
	return svc, clock
}

func assertAppErrorType(t *testing.T, err error, want apperrors.ErrorType) {
	t.Helper()
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	assert.Equal(t, want, appErr.Type)
}

func TestService_Create(t *testing.T) {
	svc, clock := newTestService(memory.NewLinkRepository())

	payload := storetest.SamplePayload()
	payload.Appointment.Notes = "<b>primera</b> consulta"
	link, err := svc.Create(context.Background(), payload, 2990, 0)
	require.NoError(t, err)

	assert.Len(t, link.ID, 8)
	assert.Equal(t, clock.Now().Add(30*time.Minute), link.ExpiresAt)
	assert.Equal(t, "primera consulta", link.Payload.Appointment.Notes)
}

func TestService_Create_Invalid(t *testing.T) {
	svc, _ := newTestService(memory.NewLinkRepository())

	payload := storetest.SamplePayload()
	payload.Patient.Email = ""
	_, err := svc.Create(context.Background(), payload, 2990, 0)
	assertAppErrorType(t, err, apperrors.ErrorTypeValidation)

	_, err = svc.Create(context.Background(), storetest.SamplePayload(), 0, 0)
	assertAppErrorType(t, err, apperrors.ErrorTypeValidation)
}

type collidingRepo struct {
	*memory.LinkRepository
	collisions int
}

func (r *collidingRepo) Insert(ctx context.Context, link *paymentlink.Link) (bool, error) {
	if r.collisions > 0 {
		r.collisions--
		return false, nil
	}
	return r.LinkRepository.Insert(ctx, link)
}

func TestService_Create_RetriesCollisions(t *testing.T) {
	repo := &collidingRepo{LinkRepository: memory.NewLinkRepository(), collisions: 3}
	svc, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), storetest.SamplePayload(), 2990, 0)
	require.NoError(t, err)

	repo.collisions = maxIDAttempts
	_, err = svc.Create(context.Background(), storetest.SamplePayload(), 2990, 0)
	assert.ErrorIs(t, err, paymentlink.ErrDuplicateID)
}

func TestService_TTL(t *testing.T) {
	svc, clock := newTestService(memory.NewLinkRepository())
	ctx := context.Background()

	link, err := svc.Create(ctx, storetest.SamplePayload(), 2990, 30*time.Minute)
	require.NoError(t, err)

	clock.Advance(29 * time.Minute)
	got, err := svc.Get(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, link.ID, got.ID)

	clock.Advance(2 * time.Minute)
	_, err = svc.Get(ctx, link.ID)
	assertAppErrorType(t, err, apperrors.ErrorTypeGone)

	_, err = svc.Get(ctx, link.ID)
	assertAppErrorType(t, err, apperrors.ErrorTypeNotFound)
}

func TestService_SingleUse(t *testing.T) {
	svc, _ := newTestService(memory.NewLinkRepository())
	ctx := context.Background()

	link, err := svc.Create(ctx, storetest.SamplePayload(), 2990, 0)
	require.NoError(t, err)

	_, err = svc.Get(ctx, link.ID)
	require.NoError(t, err)

	affected, err := svc.Release(ctx, link.ID, true)
	require.NoError(t, err)
	assert.True(t, affected)

	// marking twice is fine
	_, err = svc.Release(ctx, link.ID, true)
	require.NoError(t, err)

	_, err = svc.Get(ctx, link.ID)
	assertAppErrorType(t, err, apperrors.ErrorTypeConflict)
}

func TestService_Consume(t *testing.T) {
	svc, clock := newTestService(memory.NewLinkRepository())
	ctx := context.Background()

	link, err := svc.Create(ctx, storetest.SamplePayload(), 2990, 0)
	require.NoError(t, err)

	got, err := svc.Consume(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2990), got.Amount)

	_, err = svc.Consume(ctx, link.ID)
	assertAppErrorType(t, err, apperrors.ErrorTypeConflict)

	expiring, err := svc.Create(ctx, storetest.SamplePayload(), 2990, time.Minute)
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	_, err = svc.Consume(ctx, expiring.ID)
	assertAppErrorType(t, err, apperrors.ErrorTypeGone)
	_, err = svc.Consume(ctx, expiring.ID)
	assertAppErrorType(t, err, apperrors.ErrorTypeNotFound)
}

func TestService_Release_Delete(t *testing.T) {
	svc, _ := newTestService(memory.NewLinkRepository())
	ctx := context.Background()

	link, err := svc.Create(ctx, storetest.SamplePayload(), 2990, 0)
	require.NoError(t, err)

	deleted, err := svc.Release(ctx, link.ID, false)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Release(ctx, link.ID, false)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = svc.Release(ctx, link.ID, true)
	assertAppErrorType(t, err, apperrors.ErrorTypeNotFound)

	_, err = svc.Release(ctx, "bad id!", true)
	assertAppErrorType(t, err, apperrors.ErrorTypeValidation)
}

func TestService_Stats(t *testing.T) {
	svc, clock := newTestService(memory.NewLinkRepository())
	ctx := context.Background()

	a, _ := svc.Create(ctx, storetest.SamplePayload(), 100, time.Hour)
	_, _ = svc.Create(ctx, storetest.SamplePayload(), 100, time.Hour)
	_, _ = svc.Create(ctx, storetest.SamplePayload(), 100, time.Minute)
	_, err := svc.Release(ctx, a.ID, true)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, paymentlink.Stats{Total: 2, Used: 1, Active: 1}, stats)
}
