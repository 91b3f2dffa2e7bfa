package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAdmitOnceConcurrent(t *testing.T) {
	t.Parallel()
	for _, n := range []int{1, 2, 16, 256} {
		g := NewStartupGuard()
		var admitted atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if g.AdmitOnce() {
					admitted.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		if got := admitted.Load(); got != 1 {
			t.Fatalf("n=%d: admitted %d callers, want 1", n, got)
		}
		if !g.Admitted() {
			t.Fatalf("n=%d: Admitted() = false after admission", n)
		}
		if g.AdmitOnce() {
			t.Fatalf("n=%d: later call was admitted", n)
		}
	}
}

func TestDelayPacerHonoursCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := DelayPacer{Delay: time.Hour}
	if err := p.Pause(ctx); err != context.Canceled {
		t.Fatalf("Pause error = %v, want context.Canceled", err)
	}
}

func TestDelayPacerWaits(t *testing.T) {
	t.Parallel()
	p := DelayPacer{Delay: 20 * time.Millisecond}
	start := time.Now()
	if err := p.Pause(context.Background()); err != nil {
		t.Fatalf("Pause error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("Pause returned after %v, want >= 20ms", elapsed)
	}
}
