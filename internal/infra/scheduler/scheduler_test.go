package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"weather_notification_bot/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// kindFanOut blocks every tick of the blocked kind until ctx is cancelled and
// records ticks of every other kind.
type kindFanOut struct {
	blocked  notification.Kind
	started  chan time.Time
	ticks    chan notification.Kind
	calls    sync.Map // notification.Kind -> *atomic.Int32
	returned atomic.Bool
}

func newKindFanOut(blocked notification.Kind) *kindFanOut {
	return &kindFanOut{
		blocked: blocked,
		started: make(chan time.Time, 4),
		ticks:   make(chan notification.Kind, 64),
	}
}

func (f *kindFanOut) RunTick(ctx context.Context, now time.Time, kinds ...notification.Kind) {
	for _, kind := range kinds {
		n, _ := f.calls.LoadOrStore(kind, &atomic.Int32{})
		n.(*atomic.Int32).Add(1)
		if kind == f.blocked {
			f.started <- now
			<-ctx.Done()
			f.returned.Store(true)
			continue
		}
		f.ticks <- kind
	}
}

func (f *kindFanOut) callsFor(kind notification.Kind) int32 {
	n, ok := f.calls.Load(kind)
	if !ok {
		return 0
	}
	return n.(*atomic.Int32).Load()
}

func (f *kindFanOut) Dispatch(context.Context, notification.Kind) error { return nil }

type countingPinger struct{ ticks atomic.Int32 }

func (p *countingPinger) RunTick(context.Context) { p.ticks.Add(1) }

type countingJanitor struct{ ticks atomic.Int32 }

func (j *countingJanitor) RunTick(context.Context) error {
	j.ticks.Add(1)
	return nil
}

func newTestLogger() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

func TestSchedulerRunsJobsOnStartAndStopCancels(t *testing.T) {
	fan := newKindFanOut(notification.KindUVForecast)
	pinger := &countingPinger{}
	janitor := &countingJanitor{}
	loc := time.FixedZone("UTC-5", -5*3600)

	s := NewNotificationScheduler(fan, pinger, janitor,
		Intervals{FanOut: time.Hour, Health: time.Hour, Janitor: time.Hour}, loc, newTestLogger())
	s.Start()

	select {
	case now := <-fan.started:
		if now.Location() != loc {
			t.Fatalf("fan-out tick got location %v, want %v", now.Location(), loc)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fan-out did not run on start")
	}

	s.Stop()
	if !fan.returned.Load() {
		t.Fatal("Stop returned before the in-flight fan-out finished")
	}
	if pinger.ticks.Load() != 1 || janitor.ticks.Load() != 1 {
		t.Fatalf("pinger=%d janitor=%d, want one run each", pinger.ticks.Load(), janitor.ticks.Load())
	}
	if got := fan.callsFor(notification.KindAlerts); got != 1 {
		t.Fatalf("alerts fan-out ran %d times, want 1", got)
	}
}

func TestSlowFanOutDoesNotHoldBackOtherKinds(t *testing.T) {
	// UV pauses for the whole test, the way a long paced fan-out would, while the
	// alerts window opens right after it.
	fan := newKindFanOut(notification.KindUVForecast)
	s := NewNotificationScheduler(fan, &countingPinger{}, &countingJanitor{},
		Intervals{FanOut: time.Second, Health: time.Hour, Janitor: time.Hour}, time.UTC, newTestLogger())
	s.Start()
	defer s.Stop()

	select {
	case <-fan.started:
	case <-time.After(2 * time.Second):
		t.Fatal("uv fan-out did not run on start")
	}

	// The start-up run plus at least one scheduled tick must reach alerts.
	deadline := time.After(5 * time.Second)
	for seen := 0; seen < 2; {
		select {
		case kind := <-fan.ticks:
			if kind != notification.KindAlerts {
				t.Fatalf("unexpected tick for %s", kind)
			}
			seen++
		case <-deadline:
			t.Fatalf("alerts ticked %d times while uv was busy, want at least 2", seen)
		}
	}
	if got := fan.callsFor(notification.KindUVForecast); got != 1 {
		t.Fatalf("uv fan-out ran %d times, want 1 (overlapping ticks are skipped)", got)
	}
}

func TestStopBeforeStartPreventsJobs(t *testing.T) {
	fan := newKindFanOut("")
	pinger := &countingPinger{}
	janitor := &countingJanitor{}
	s := NewNotificationScheduler(fan, pinger, janitor,
		Intervals{FanOut: time.Hour, Health: time.Hour, Janitor: time.Hour}, time.UTC, newTestLogger())

	s.Stop()
	s.Start()
	s.Stop()

	if pinger.ticks.Load() != 0 || janitor.ticks.Load() != 0 || fan.callsFor(notification.KindAlerts) != 0 {
		t.Fatal("no job may run once the scheduler was stopped")
	}
}

func TestConcurrentStartAndStop(t *testing.T) {
	for i := 0; i < 20; i++ {
		fan := newKindFanOut("")
		pinger := &countingPinger{}
		s := NewNotificationScheduler(fan, pinger, &countingJanitor{},
			Intervals{FanOut: time.Hour, Health: time.Hour, Janitor: time.Hour}, time.UTC, newTestLogger())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); s.Start() }()
		go func() { defer wg.Done(); s.Stop() }()
		wg.Wait()
		s.Stop()

		// Either Stop won and nothing ran, or Start won and Stop waited for its runs.
		if n := pinger.ticks.Load(); n > 1 {
			t.Fatalf("iteration %d: pinger ran %d times", i, n)
		}
	}
}

func TestWarnNarrowWindows(t *testing.T) {
	t.Parallel()
	l, hook := test.NewNullLogger()
	cfg := &notification.Config{Subscriptions: []notification.Subscription{
		{Kind: notification.KindUVForecast, Window: notification.TriggerWindow{Start: notification.NewTimeOfDay(8, 0, 0), End: notification.NewTimeOfDay(8, 1, 0)}},
		{Kind: notification.KindAlerts, Window: notification.TriggerWindow{Start: notification.NewTimeOfDay(8, 30, 0), End: notification.NewTimeOfDay(8, 30, 30)}},
	}}

	if n := WarnNarrowWindows(cfg, time.Minute, logrus.NewEntry(l)); n != 1 {
		t.Fatalf("WarnNarrowWindows = %d, want 1", n)
	}
	if len(hook.Entries) != 1 || hook.LastEntry().Data["kind"] != notification.KindAlerts {
		t.Fatalf("unexpected log entries: %+v", hook.Entries)
	}
}
