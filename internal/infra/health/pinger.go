// Package health reports liveness to an optional external monitor and to systemd.
package health

import (
	"context"
	"io"
	"net/http"
	"time"

	"weather_notification_bot/internal/domain/notification"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/sirupsen/logrus"
)

const defaultPingTimeout = 10 * time.Second

// WatchdogFunc notifies a supervisor that the process is alive. It reports whether
// the notification was delivered; (false, nil) means no supervisor is listening.
type WatchdogFunc func() (bool, error)

// SystemdWatchdog pings the systemd watchdog through $NOTIFY_SOCKET.
func SystemdWatchdog() (bool, error) {
	return daemon.SdNotify(false, daemon.SdNotifyWatchdog)
}

type Pinger struct {
	configSource notification.ConfigSource
	client       *http.Client
	watchdog     WatchdogFunc
	logger       *logrus.Entry
}

func NewPinger(cs notification.ConfigSource, client *http.Client, watchdog WatchdogFunc, logger *logrus.Entry) *Pinger {
	if client == nil {
		client = &http.Client{Timeout: defaultPingTimeout}
	}
	return &Pinger{
		configSource: cs,
		client:       client,
		watchdog:     watchdog,
		logger:       logger,
	}
}

// RunTick performs one best-effort ping. It never fails the caller.
func (p *Pinger) RunTick(ctx context.Context) {
	if p.watchdog != nil {
		if _, err := p.watchdog(); err != nil {
			p.logger.WithError(err).Warn("Failed to notify watchdog")
		}
	}

	cfg, err := p.configSource.Load(ctx)
	if err != nil {
		p.logger.WithError(err).Warn("Failed to load config for health ping")
		return
	}
	if cfg.MonitorURL == "" {
		return
	}

	entry := p.logger.WithField("url", cfg.MonitorURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.MonitorURL, http.NoBody)
	if err != nil {
		entry.WithError(err).Warn("Invalid monitor URL")
		return
	}
	resp, err := p.client.Do(req)
	if err != nil {
		entry.WithError(err).Warn("Health ping failed")
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()

	entry.WithField("status", resp.StatusCode).Debug("Health ping sent")
}
