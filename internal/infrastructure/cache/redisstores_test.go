package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendapay/agendapay/internal/domain/ledger"
	"github.com/agendapay/agendapay/internal/domain/paymentlink"
	"github.com/agendapay/agendapay/internal/infrastructure/storetest"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisLedger(t *testing.T) {
	storetest.RunLedgerRepository(t, func(t *testing.T) ledger.Repository {
		client, _ := setupTestRedis(t)
		return NewRedisLedger(client)
	})
}

func TestRedisLedger_EntriesNeverExpire(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewRedisLedger(client)
	ctx := context.Background()

	entry, _ := ledger.NewPendingEntry("TOK1", "abc123", time.Now())
	_, claimed, err := repo.Claim(ctx, entry)
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, repo.Complete(ctx, "TOK1", ledger.SuccessResult(nil), time.Now()))

	assert.Equal(t, time.Duration(0), mr.TTL(ledgerKeyPrefix+"TOK1"))
	mr.FastForward(365 * 24 * time.Hour)

	got, err := repo.Get(ctx, "TOK1")
	require.NoError(t, err)
	assert.Equal(t, ledger.StateConfirmed, got.State)
}

func TestRedisLinkStore(t *testing.T) {
	storetest.RunLinkRepository(t, time.Now().UTC(), func(t *testing.T) paymentlink.Repository {
		client, _ := setupTestRedis(t)
		return NewRedisLinkStore(client, time.Hour)
	})
}

func TestRedisLinkStore_KeyTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisLinkStore(client, time.Hour)
	ctx := context.Background()

	link, err := paymentlink.NewLink("ttl00001", storetest.SamplePayload(), 2990, time.Now(), 30*time.Minute)
	require.NoError(t, err)
	inserted, err := store.Insert(ctx, link)
	require.NoError(t, err)
	require.True(t, inserted)

	assert.Equal(t, 90*time.Minute, mr.TTL(paymentLinkPrefix+"ttl00001"))

	require.NoError(t, store.MarkUsed(ctx, "ttl00001", time.Now()))
	assert.Equal(t, 90*time.Minute, mr.TTL(paymentLinkPrefix+"ttl00001"), "updates keep the key TTL")

	mr.FastForward(91 * time.Minute)
	_, err = store.Get(ctx, "ttl00001")
	assert.ErrorIs(t, err, paymentlink.ErrNotFound)
}
