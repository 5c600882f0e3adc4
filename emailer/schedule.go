package emailer

import (
	"context"
	"errors"
	"time"
)

// RunEvery performs a delivery run immediately, then once per interval,
// until ctx is canceled. Run failures are logged and dropped so the next
// tick starts fresh.
func (e *Emailer) RunEvery(ctx context.Context, interval time.Duration) error {
	e.log.Info("scheduler started", "interval", interval)

	e.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.runOnce(ctx)
		case <-ctx.Done():
			e.log.Info("scheduler stopped")
			return ctx.Err()
		}
	}
}

// runOnce wraps Run with the run-level policy: catch, log, continue.
func (e *Emailer) runOnce(ctx context.Context) {
	err := e.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadySentToday):
	case errors.Is(err, context.Canceled):
	default:
		e.log.Error("delivery run failed", "error", err)
	}
}
