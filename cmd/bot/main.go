// Command bot runs the weather notification bot.
//
// Usage:
//
//	bot                      start the bot and the background scheduler (same as "bot run")
//	bot notify uv            fan out one notification kind right now and exit
//	bot clean-scratch        recreate the scratch directory and exit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather_notification_bot/internal/app"
	"weather_notification_bot/internal/domain/notification"
	"weather_notification_bot/internal/infra/config"
	"weather_notification_bot/internal/infra/logger"
	"weather_notification_bot/internal/infra/scheduler"
	"weather_notification_bot/internal/infra/scratch"
	"weather_notification_bot/internal/infra/telegram"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

func main() {
	root := &cobra.Command{
		Use:           "bot",
		Short:         "Weather notification bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
	}
	root.AddCommand(runCmd())
	root.AddCommand(notifyCmd())
	root.AddCommand(cleanScratchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot and the background scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
	}
}

func notifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify <alerts|uv>",
		Short: "Send one notification kind to its subscribers now, ignoring its window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := notification.ParseKind(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			bot, err := telebot.NewBot(telebot.Settings{Token: cfg.TelegramToken})
			if err != nil {
				return fmt.Errorf("could not create Telegram bot: %w", err)
			}
			d, err := wire(ctx, cfg, bot)
			if err != nil {
				return err
			}
			defer d.Close()

			start := time.Now()
			if err := d.notifService.Dispatch(ctx, kind); err != nil {
				return err
			}
			logger.Log.WithFields(logrus.Fields{
				"kind":     kind,
				"duration": time.Since(start).Round(time.Millisecond),
			}).Info("Forced dispatch finished")
			return nil
		},
	}
}

func cleanScratchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean-scratch",
		Short: "Remove and recreate the scratch directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return scratch.NewJanitor(cfg.ScratchDir, logger.Component("janitor")).RunTick(context.Background())
		},
	}
}

func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	return cfg, nil
}

func runBot() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment":   cfg.Environment,
		"admin_id":      cfg.AdminTelegramID,
		"subscriptions": cfg.SubscriptionsFile,
		"timezone":      cfg.Location.String(),
	}).Info("Weather Notification Bot starting...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notifScheduler *scheduler.NotificationScheduler
	guard := app.NewStartupGuard()
	startedAt := time.Now()

	connectPoller := &telegram.ConnectPoller{
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnConnect: func(b *telebot.Bot) {
			mainLogger.Infof("%s is connected.", b.Me.Username)
			if !guard.AdmitOnce() {
				mainLogger.Debug("Scheduler already running, ignoring reconnect")
				return
			}
			notifScheduler.Start()
			if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
				mainLogger.WithError(err).Warn("Failed to notify systemd readiness")
			} else if ok {
				mainLogger.Debug("Notified systemd readiness")
			}
		},
	}

	botLogger := logger.Component("telebot")
	bot, err := telebot.NewBot(telebot.Settings{
		Token:   cfg.TelegramToken,
		Poller:  connectPoller,
		Verbose: cfg.Debug,
		OnError: func(err error, c telebot.Context) {
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{
					"message":   c.Text(),
					"sender_id": c.Sender().ID,
					"chat_id":   c.Chat().ID,
				})
			}
			entry.Error("Telegram handler error")
		},
	})
	if err != nil {
		return fmt.Errorf("could not create Telegram bot: %w", err)
	}

	d, err := wire(ctx, cfg, bot)
	if err != nil {
		return err
	}
	defer d.Close()

	notifScheduler = scheduler.NewNotificationScheduler(
		d.notifService,
		d.pinger,
		d.janitor,
		scheduler.Intervals{FanOut: cfg.FanoutInterval, Health: cfg.HealthInterval, Janitor: cfg.JanitorInterval},
		cfg.Location,
		logger.Component("scheduler"),
	)

	telegram.RegisterBotCommands(ctx, bot, d.adminService, startedAt, logger.Component("telegram_handlers"))
	telegram.RegisterAdminHandlers(ctx, bot, d.adminService, logger.Component("admin_handlers"))
	mainLogger.Info("Command handlers registered.")

	go bot.Start()
	mainLogger.Info("Application setup complete. Waiting for Telegram connection...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	mainLogger.WithField("signal", sig.String()).Info("Shutting down application...")
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	bot.Stop()
	if !guard.Admitted() {
		mainLogger.Warn("Shutting down before Telegram connected, scheduler never started")
	}
	notifScheduler.Stop()
	cancel()
	mainLogger.Info("Application shut down gracefully.")
	return nil
}
