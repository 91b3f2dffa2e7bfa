package app

import (
	"context"
	"time"
)

// Pacer is paid after every direct-message send attempt.
type Pacer interface {
	Pause(ctx context.Context) error
}

// DelayPacer sleeps a fixed delay, returning early with ctx.Err() on cancellation.
type DelayPacer struct {
	Delay time.Duration
}

func (p DelayPacer) Pause(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
