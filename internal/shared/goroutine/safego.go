// Package goroutine launches background work that must never take the
// request path or the process down with it.
package goroutine

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/agendapay/agendapay/internal/shared/logger"
)

// SafeGo runs fn in a goroutine with its own context bounded by timeout.
// A panic inside fn is logged with its stack instead of crashing the process.
func SafeGo(log logger.Interface, name string, timeout time.Duration, fn func(ctx context.Context)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn(ctx)
	}()
}
