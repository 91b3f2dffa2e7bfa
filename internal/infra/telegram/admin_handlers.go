package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"weather_notification_bot/internal/app"
	"weather_notification_bot/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const maxRunsListed = 50

const notAllowedReply = "Error: you are not allowed to run this command."

// RegisterAdminHandlers registers handlers for admin commands. The admin id is taken
// from the current subscriptions snapshot on every command.
// ctx must outlive the handlers: forced dispatches started by /notify run under it.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, baseLogger *logrus.Entry) {
	b.Handle("/subscriptions", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/subscriptions",
			"sender_id": c.Sender().ID,
		})
		cfg, err := adminService.Subscriptions(ctx, c.Sender().ID)
		if errors.Is(err, app.ErrAdminNotAuthorized) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(notAllowedReply)
		}
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to load subscriptions")
			return c.Send(fmt.Sprintf("Could not load subscriptions: %s", err.Error()))
		}
		return c.Send(formatSubscriptions(cfg))
	})

	b.Handle("/runs", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/runs",
			"sender_id": c.Sender().ID,
		})
		if !adminService.IsAdmin(ctx, c.Sender().ID) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(notAllowedReply)
		}

		limit := 0
		if args := c.Args(); len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 || n > maxRunsListed {
				return c.Send(fmt.Sprintf("Usage: /runs [1-%d]", maxRunsListed))
			}
			limit = n
		}

		runs, err := adminService.RecentRuns(ctx, c.Sender().ID, limit)
		if errors.Is(err, app.ErrAdminNotAuthorized) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(notAllowedReply)
		}
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list runs")
			return c.Send(fmt.Sprintf("Could not list runs: %s", err.Error()))
		}
		return c.Send(formatRuns(runs))
	})

	b.Handle("/notify", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/notify",
			"sender_id": c.Sender().ID,
		})
		if !adminService.IsAdmin(ctx, c.Sender().ID) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(notAllowedReply)
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /notify <alerts|uv>")
		}
		kind, err := notification.ParseKind(args[0])
		if err != nil {
			return c.Send(err.Error())
		}
		handlerLogger = handlerLogger.WithField("kind", kind)

		if err := adminService.TriggerNotification(ctx, c.Sender().ID, kind); err != nil {
			if errors.Is(err, app.ErrAdminNotAuthorized) {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(notAllowedReply)
			}
			if errors.Is(err, app.ErrKindNotConfigured) {
				handlerLogger.WithError(err).Warn("Kind not configured")
				return c.Send(fmt.Sprintf("Kind %s is not configured.", kind))
			}
			handlerLogger.WithError(err).Error("Failed to trigger notification")
			return c.Send(fmt.Sprintf("Could not trigger %s: %s", kind, err.Error()))
		}
		handlerLogger.Info("Forced notification dispatch started")
		return c.Send(fmt.Sprintf("Sending %s notifications now.", kind))
	})
}

func formatSubscriptions(cfg *notification.Config) string {
	var sb strings.Builder
	sb.WriteString("--- Subscriptions ---\n")
	monitor := cfg.MonitorURL
	if monitor == "" {
		monitor = "disabled"
	}
	sb.WriteString(fmt.Sprintf("Health ping: %s\n", monitor))
	for _, sub := range cfg.Subscriptions {
		sb.WriteString(fmt.Sprintf("\n%s (window %s)\n", sub.Kind, sub.Window))
		if len(sub.Subjects) == 0 {
			sb.WriteString("  subjects: none\n")
		} else {
			sb.WriteString(fmt.Sprintf("  subjects: %s\n", strings.Join(sub.Subjects, ", ")))
		}
		sb.WriteString(fmt.Sprintf("  recipients: %d\n", len(sub.RecipientSet())))
	}
	return sb.String()
}

func formatRuns(runs []*notification.Run) string {
	if len(runs) == 0 {
		return "No notification runs recorded yet."
	}
	var sb strings.Builder
	sb.WriteString("--- Recent runs ---\n")
	for _, r := range runs {
		sb.WriteString(fmt.Sprintf("%s  %s  (at %s)\n", r.RunDate.Format("2006-01-02"), r.Kind, r.CreatedAt.Format("15:04:05")))
	}
	return sb.String()
}
