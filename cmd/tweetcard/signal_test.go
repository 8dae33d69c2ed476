package main

// Notes:
// - notifyContext: we test context cancellation through stop() and through
//   the parent. Real signal delivery is platform-specific and not tested.

import (
	"context"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNotifyContext - Cancellation sources
// ---------------------------------------------------------------------------

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("live until stopped", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		if ctx.Err() != nil {
			t.Fatalf("fresh context already done: %v", ctx.Err())
		}

		stop()
		<-ctx.Done()
		if ctx.Err() == nil {
			t.Error("context should be canceled after stop()")
		}
	})

	t.Run("inherits parent cancellation", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent)
		defer stop()

		cancel()

		select {
		case <-ctx.Done():
		default:
			t.Fatal("context should be canceled with its parent")
		}
	})
}
