package logger

import (
	"testing"

	"weather_notification_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
)

func TestInitLevels(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.AppConfig
		level logrus.Level
		json  bool
	}{
		{name: "info text", cfg: config.AppConfig{LogLevel: "info", Environment: "development"}, level: logrus.InfoLevel},
		{name: "invalid falls back", cfg: config.AppConfig{LogLevel: "loud"}, level: logrus.InfoLevel},
		{name: "debug flag wins", cfg: config.AppConfig{LogLevel: "warn", Debug: true}, level: logrus.DebugLevel},
		{name: "production json", cfg: config.AppConfig{LogLevel: "error", Environment: "production"}, level: logrus.ErrorLevel, json: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			Init(&cfg)
			if Log.GetLevel() != tt.level {
				t.Fatalf("level = %s, want %s", Log.GetLevel(), tt.level)
			}
			_, isJSON := Log.Formatter.(*logrus.JSONFormatter)
			if isJSON != tt.json {
				t.Fatalf("JSON formatter = %v, want %v", isJSON, tt.json)
			}
		})
	}

	if got := Component("scheduler").Data["component"]; got != "scheduler" {
		t.Fatalf("component field = %v", got)
	}
}
