// Package pacer provides a fixed-interval pacer for loops that must respect
// an upstream rate limit. The carrier throttles API calls, so bulk operations
// and the tracking poll job space their calls instead of firing them
// back-to-back. The delay policy lives here so it is testable in isolation
// rather than being an inline sleep in every loop.
package pacer

import (
	"context"
	"time"
)

// Pacer spaces successive calls by a minimum interval. The first Wait returns
// immediately; each following Wait blocks until the interval since the
// previous return has elapsed, or the context is cancelled.
//
// Pacer is not safe for concurrent use; each sequential loop owns its own.
type Pacer struct {
	interval time.Duration
	last     time.Time

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Pacer with the given minimum interval between calls.
// A non-positive interval makes Wait a no-op.
func New(interval time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// NewWithClock creates a Pacer with injected time functions for tests.
func NewWithClock(
	interval time.Duration,
	now func() time.Time,
	sleep func(ctx context.Context, d time.Duration) error,
) *Pacer {
	return &Pacer{interval: interval, now: now, sleep: sleep}
}

// Wait blocks until the pacing interval since the previous Wait has elapsed.
// Returns the context error if the wait is interrupted.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}

	if !p.last.IsZero() {
		if remaining := p.interval - p.now().Sub(p.last); remaining > 0 {
			if err := p.sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}

	p.last = p.now()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
