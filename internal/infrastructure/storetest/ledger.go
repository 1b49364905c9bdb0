// Package storetest holds behaviour suites shared by every store backend.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendapay/agendapay/internal/domain/ledger"
)

// RunLedgerRepository exercises a ledger.Repository implementation.
func RunLedgerRepository(t *testing.T, newRepo func(t *testing.T) ledger.Repository) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("claim then replay", func(t *testing.T) {
		repo := newRepo(t)
		entry, _ := ledger.NewPendingEntry("TOK1", "abc123", now)

		existing, claimed, err := repo.Claim(ctx, entry)
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.Nil(t, existing)

		again, _ := ledger.NewPendingEntry("TOK1", "other", now)
		existing, claimed, err = repo.Claim(ctx, again)
		require.NoError(t, err)
		assert.False(t, claimed)
		require.NotNil(t, existing)
		assert.Equal(t, "abc123", existing.SessionID)
		assert.Equal(t, ledger.StatePending, existing.State)
	})

	t.Run("complete once", func(t *testing.T) {
		repo := newRepo(t)
		entry, _ := ledger.NewPendingEntry("TOK2", "s", now)
		_, _, err := repo.Claim(ctx, entry)
		require.NoError(t, err)

		result := ledger.SuccessResult(map[string]any{"bookingId": "b-1"})
		require.NoError(t, repo.Complete(ctx, "TOK2", result, now.Add(time.Second)))

		err = repo.Complete(ctx, "TOK2", ledger.FailureResult(errors.New("late")), now.Add(2*time.Second))
		assert.ErrorIs(t, err, ledger.ErrAlreadyFinal)

		got, err := repo.Get(ctx, "TOK2")
		require.NoError(t, err)
		assert.Equal(t, ledger.StateConfirmed, got.State)
		require.NotNil(t, got.Result)
		assert.True(t, got.Result.Success)
		assert.Equal(t, "b-1", got.Result.Response["bookingId"])
		require.NotNil(t, got.ConfirmedAt)
		assert.True(t, got.ConfirmedAt.Equal(now.Add(time.Second)))
	})

	t.Run("failure is stored", func(t *testing.T) {
		repo := newRepo(t)
		entry, _ := ledger.NewPendingEntry("TOK3", "s", now)
		_, _, err := repo.Claim(ctx, entry)
		require.NoError(t, err)
		require.NoError(t, repo.Complete(ctx, "TOK3", ledger.FailureResult(errors.New("booking api 500")), now))

		existing, claimed, err := repo.Claim(ctx, entry)
		require.NoError(t, err)
		assert.False(t, claimed)
		assert.Equal(t, ledger.StateFailed, existing.State)
		assert.Equal(t, "booking api 500", existing.Result.Error)
	})

	t.Run("missing entry", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, "nope")
		assert.ErrorIs(t, err, ledger.ErrEntryNotFound)
		err = repo.Complete(ctx, "nope", ledger.SuccessResult(nil), now)
		assert.ErrorIs(t, err, ledger.ErrEntryNotFound)
	})

	t.Run("concurrent claims have one winner", func(t *testing.T) {
		repo := newRepo(t)
		const callers = 16
		var wins atomic.Int32
		var wg sync.WaitGroup

		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				entry, _ := ledger.NewPendingEntry("RACE", fmt.Sprintf("s%d", i), now)
				_, claimed, err := repo.Claim(ctx, entry)
				assert.NoError(t, err)
				if claimed {
					wins.Add(1)
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}
