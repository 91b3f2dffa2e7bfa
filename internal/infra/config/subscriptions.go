package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"weather_notification_bot/internal/domain/notification"

	"github.com/spf13/viper"
)

// ErrInvalidSubscriptions wraps every problem found in the subscriptions file.
var ErrInvalidSubscriptions = errors.New("invalid subscriptions config")

type subscriptionFile struct {
	Admin      int64             `mapstructure:"admin"`
	MonitorURL string            `mapstructure:"monitor_url"`
	Alerts     subscriptionEntry `mapstructure:"alerts"`
	UVForecast subscriptionEntry `mapstructure:"uv_forecast"`
}

type subscriptionEntry struct {
	WindowStart string   `mapstructure:"window_start"`
	WindowEnd   string   `mapstructure:"window_end"`
	Subjects    []string `mapstructure:"subjects"`
	Users       []int64  `mapstructure:"users"`
}

// FileSource reads the subscriptions file from disk on every Load, so edits take
// effect on the next tick without a restart. A zero or missing admin falls back to
// the admin id given at construction. Any format viper understands works;
// the format is picked from the file extension.
type FileSource struct {
	path           string
	defaultAdminID int64
}

func NewFileSource(path string, defaultAdminID int64) *FileSource {
	return &FileSource{path: path, defaultAdminID: defaultAdminID}
}

func (s *FileSource) Load(_ context.Context) (*notification.Config, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetDefault("uv_forecast.window_start", "08:00")
	v.SetDefault("uv_forecast.window_end", "08:01")
	v.SetDefault("alerts.window_start", "08:30")
	v.SetDefault("alerts.window_end", "08:31")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read subscriptions file %s: %w", s.path, err)
	}

	var raw subscriptionFile
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSubscriptions, s.path, err)
	}

	cfg := &notification.Config{
		AdminID:    raw.Admin,
		MonitorURL: strings.TrimSpace(raw.MonitorURL),
	}
	if cfg.AdminID == 0 {
		cfg.AdminID = s.defaultAdminID
	}

	entries := map[notification.Kind]subscriptionEntry{
		notification.KindUVForecast: raw.UVForecast,
		notification.KindAlerts:     raw.Alerts,
	}
	for _, kind := range notification.Kinds {
		sub, err := entries[kind].toSubscription(kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSubscriptions, kind, err)
		}
		cfg.Subscriptions = append(cfg.Subscriptions, sub)
	}
	return cfg, nil
}

func (e subscriptionEntry) toSubscription(kind notification.Kind) (notification.Subscription, error) {
	start, err := notification.ParseTimeOfDay(e.WindowStart)
	if err != nil {
		return notification.Subscription{}, fmt.Errorf("window_start: %w", err)
	}
	end, err := notification.ParseTimeOfDay(e.WindowEnd)
	if err != nil {
		return notification.Subscription{}, fmt.Errorf("window_end: %w", err)
	}
	window := notification.TriggerWindow{Start: start, End: end}
	if err := window.Validate(); err != nil {
		return notification.Subscription{}, err
	}

	subjects := make([]string, 0, len(e.Subjects))
	for _, subject := range e.Subjects {
		subject = strings.TrimSpace(subject)
		if subject == "" {
			return notification.Subscription{}, fmt.Errorf("empty subject key")
		}
		subjects = append(subjects, subject)
	}
	for _, id := range e.Users {
		if id == 0 {
			return notification.Subscription{}, fmt.Errorf("recipient id must not be zero")
		}
	}

	return notification.Subscription{
		Kind:       kind,
		Window:     window,
		Subjects:   subjects,
		Recipients: append([]int64(nil), e.Users...),
	}, nil
}
