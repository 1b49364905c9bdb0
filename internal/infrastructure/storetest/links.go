package storetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendapay/agendapay/internal/domain/paymentlink"
)

// SamplePayload is a valid booking payload for store tests.
func SamplePayload() paymentlink.Payload {
	return paymentlink.Payload{
		Version: paymentlink.CurrentPayloadVersion,
		Patient: paymentlink.Patient{Name: "Ana Pérez", Email: "ana@example.com"},
		Appointment: paymentlink.Appointment{
			ProfessionalID: "pro-7",
			Date:           "2024-05-10",
			Time:           "15:30",
		},
		Subject:  "Consulta",
		Currency: "CLP",
	}
}

// RunLinkRepository exercises a paymentlink.Repository implementation. now
// must be close to the wall clock for backends whose keys carry a real TTL.
func RunLinkRepository(t *testing.T, now time.Time, newRepo func(t *testing.T) paymentlink.Repository) {
	ctx := context.Background()

	newLink := func(t *testing.T, id string, ttl time.Duration) *paymentlink.Link {
		t.Helper()
		l, err := paymentlink.NewLink(id, SamplePayload(), 2990, now, ttl)
		require.NoError(t, err)
		return l
	}

	t.Run("insert rejects duplicate id", func(t *testing.T) {
		repo := newRepo(t)
		inserted, err := repo.Insert(ctx, newLink(t, "dup00001", time.Hour))
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = repo.Insert(ctx, newLink(t, "dup00001", time.Hour))
		require.NoError(t, err)
		assert.False(t, inserted)
	})

	t.Run("get round trips payload", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Insert(ctx, newLink(t, "get00001", time.Hour))
		require.NoError(t, err)

		got, err := repo.Get(ctx, "get00001")
		require.NoError(t, err)
		assert.Equal(t, SamplePayload(), got.Payload)
		assert.Equal(t, int64(2990), got.Amount)
		assert.True(t, got.ExpiresAt.Equal(now.Add(time.Hour)))

		_, err = repo.Get(ctx, "missing1")
		assert.ErrorIs(t, err, paymentlink.ErrNotFound)
	})

	t.Run("mark used is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Insert(ctx, newLink(t, "use00001", time.Hour))
		require.NoError(t, err)

		require.NoError(t, repo.MarkUsed(ctx, "use00001", now))
		require.NoError(t, repo.MarkUsed(ctx, "use00001", now.Add(time.Minute)))

		got, err := repo.Get(ctx, "use00001")
		require.NoError(t, err)
		assert.True(t, got.Used)
		assert.ErrorIs(t, repo.MarkUsed(ctx, "missing1", now), paymentlink.ErrNotFound)
	})

	t.Run("consume succeeds once", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Insert(ctx, newLink(t, "con00001", time.Hour))
		require.NoError(t, err)

		const callers = 8
		var ok atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				link, err := repo.Consume(ctx, "con00001", now)
				if err == nil {
					assert.Equal(t, "con00001", link.ID)
					ok.Add(1)
					return
				}
				assert.ErrorIs(t, err, paymentlink.ErrAlreadyUsed)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), ok.Load())
	})

	t.Run("consume rejects expired", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Insert(ctx, newLink(t, "exp00001", time.Minute))
		require.NoError(t, err)

		_, err = repo.Consume(ctx, "exp00001", now.Add(2*time.Minute))
		assert.ErrorIs(t, err, paymentlink.ErrExpired)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Insert(ctx, newLink(t, "del00001", time.Hour))
		require.NoError(t, err)

		deleted, err := repo.Delete(ctx, "del00001")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "del00001")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("sweep and stats", func(t *testing.T) {
		repo := newRepo(t)
		for i := 0; i < 3; i++ {
			_, err := repo.Insert(ctx, newLink(t, fmt.Sprintf("act%05d", i), time.Hour))
			require.NoError(t, err)
		}
		_, err := repo.Insert(ctx, newLink(t, "short001", time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.MarkUsed(ctx, "act00000", now))

		later := now.Add(10 * time.Minute)
		removed, err := repo.SweepExpired(ctx, later)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		stats, err := repo.Stats(ctx, later)
		require.NoError(t, err)
		assert.Equal(t, paymentlink.Stats{Total: 3, Used: 1, Active: 2}, stats)
	})
}
