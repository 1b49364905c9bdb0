package goroutine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agendapay/agendapay/internal/shared/logger"
)

func TestSafeGo_RunsWithDeadline(t *testing.T) {
	done := make(chan bool, 1)
	SafeGo(logger.NewNopLogger(), "deadline", time.Second, func(ctx context.Context) {
		_, ok := ctx.Deadline()
		done <- ok
	})

	select {
	case hasDeadline := <-done:
		assert.True(t, hasDeadline)
	case <-time.After(2 * time.Second):
		t.Fatal("goroutine did not run")
	}
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	finished := make(chan struct{})
	SafeGo(logger.NewNopLogger(), "panicky", time.Second, func(ctx context.Context) {
		defer close(finished)
		panic("boom")
	})

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutine did not run")
	}
}
