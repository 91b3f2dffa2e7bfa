package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"weather_notification_bot/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type staticSource struct {
	cfg *notification.Config
	err error
}

func (s staticSource) Load(context.Context) (*notification.Config, error) { return s.cfg, s.err }

func newTestPinger(src notification.ConfigSource, watchdog WatchdogFunc) (*Pinger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewPinger(src, nil, watchdog, logrus.NewEntry(logger)), hook
}

func TestRunTickPingsMonitor(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var watchdogCalls atomic.Int32
	p, hook := newTestPinger(staticSource{cfg: &notification.Config{MonitorURL: srv.URL}}, func() (bool, error) {
		watchdogCalls.Add(1)
		return false, nil
	})

	p.RunTick(context.Background())
	p.RunTick(context.Background())

	if hits.Load() != 2 {
		t.Fatalf("monitor hits = %d, want 2", hits.Load())
	}
	if watchdogCalls.Load() != 2 {
		t.Fatalf("watchdog calls = %d, want 2", watchdogCalls.Load())
	}
	// Any response counts as success, even a 503.
	for _, e := range hook.AllEntries() {
		if e.Level <= logrus.WarnLevel {
			t.Fatalf("unexpected %s log: %s", e.Level, e.Message)
		}
	}
}

func TestRunTickDisabledWithoutURL(t *testing.T) {
	t.Parallel()
	p, hook := newTestPinger(staticSource{cfg: &notification.Config{}}, nil)
	p.RunTick(context.Background())
	if len(hook.AllEntries()) != 0 {
		t.Fatalf("expected silence when disabled, got %d entries", len(hook.AllEntries()))
	}
}

func TestRunTickSwallowsFailures(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p, hook := newTestPinger(staticSource{cfg: &notification.Config{MonitorURL: url}}, func() (bool, error) {
		return false, errors.New("socket gone")
	})
	p.RunTick(context.Background())

	warns := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warns++
		}
	}
	if warns != 2 {
		t.Fatalf("expected watchdog and ping warnings, got %d", warns)
	}

	p2, hook2 := newTestPinger(staticSource{err: errors.New("bad file")}, nil)
	p2.RunTick(context.Background())
	if last := hook2.LastEntry(); last == nil || last.Level != logrus.WarnLevel {
		t.Fatalf("expected config load warning, got %+v", last)
	}
}
