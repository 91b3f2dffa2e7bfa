package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"weather_notification_bot/internal/app"
	"weather_notification_bot/internal/domain/notification"
	"weather_notification_bot/internal/infra/config"
	idb "weather_notification_bot/internal/infra/database"
	"weather_notification_bot/internal/infra/health"
	"weather_notification_bot/internal/infra/logger"
	"weather_notification_bot/internal/infra/scheduler"
	"weather_notification_bot/internal/infra/scratch"
	"weather_notification_bot/internal/infra/telegram"
	"weather_notification_bot/internal/infra/weather"

	"gopkg.in/telebot.v3"
)

// deps holds everything the commands share once configuration is loaded.
type deps struct {
	db           *sql.DB
	notifService *app.NotificationServiceImpl
	adminService *app.AdminService
	pinger       *health.Pinger
	janitor      *scratch.Janitor
}

func (d *deps) Close() {
	if d.db != nil {
		_ = d.db.Close()
	}
}

func wire(ctx context.Context, cfg *config.AppConfig, bot *telebot.Bot) (*deps, error) {
	mainLogger := logger.Component("main")
	d := &deps{}

	var runRepo notification.RunRepository
	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("could not connect to database: %w", err)
		}
		d.db = db
		pgRepo := idb.NewPostgresRunRepository(db)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			d.Close()
			return nil, fmt.Errorf("could not prepare run ledger schema: %w", err)
		}
		runRepo = pgRepo
		mainLogger.Info("Run ledger backed by PostgreSQL.")
	} else {
		runRepo = idb.NewMemoryRunRepository()
		mainLogger.Warn("DATABASE_URL is not set, run ledger kept in memory; a restart inside a window may resend.")
	}

	configSource := config.NewFileSource(cfg.SubscriptionsFile, cfg.AdminTelegramID)
	subs, err := configSource.Load(ctx)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("could not load subscriptions: %w", err)
	}
	scheduler.WarnNarrowWindows(subs, cfg.FanoutInterval, logger.Component("scheduler"))

	httpClient := &http.Client{Timeout: 20 * time.Second}
	aggregators := map[notification.Kind]notification.Aggregator{
		notification.KindAlerts: weather.NewAlertsAggregator(httpClient, cfg.UserAgent),
		notification.KindUVForecast: weather.NewUVForecastAggregator(
			httpClient, cfg.UserAgent, cfg.WeatherstackAPIKey, cfg.OpenUVAPIKey, cfg.Location),
	}
	if cfg.OpenUVAPIKey == "" || cfg.WeatherstackAPIKey == "" {
		mainLogger.Warn("OPENUV_API_KEY or WEATHERSTACK_API_KEY is not set, UV forecasts will fail to fetch.")
	}

	telegramClient := telegram.NewTelebotAdapter(bot, cfg.SendRatePerSec)
	d.notifService = app.NewNotificationServiceImpl(
		configSource,
		aggregators,
		telegramClient,
		runRepo,
		app.DelayPacer{Delay: cfg.PacingDelay},
		logger.Component("notification_service"),
	)
	d.adminService = app.NewAdminService(configSource, runRepo, d.notifService, logger.Component("admin_service"))
	d.pinger = health.NewPinger(configSource, nil, health.SystemdWatchdog, logger.Component("health"))
	d.janitor = scratch.NewJanitor(cfg.ScratchDir, logger.Component("janitor"))

	mainLogger.WithField("kinds", len(subs.Subscriptions)).Info("Services initialized.")
	return d, nil
}
