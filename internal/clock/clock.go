package clock

import (
	"context"
	"time"
)

// SleepFunc pauses the caller. Override in tests to avoid real backoff waits.
var SleepFunc = func(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Sleep waits for the duration or until the context is cancelled.
func Sleep(ctx context.Context, d time.Duration) { SleepFunc(ctx, d) }
