// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const userHelpText = "Weather notification bot\n\n" +
	"`/ping` - check the bot is alive\n" +
	"`/uptime` - how long the bot has been running\n" +
	"`/help` - this message\n\n" +
	"Daily UV forecasts and weather alerts are delivered by direct message to subscribed users."

const adminHelpText = "\n\nAdmin commands:\n" +
	"`/subscriptions` - show the current notification config\n" +
	"`/runs [n]` - list the latest fan-out runs\n" +
	"`/notify <alerts|uv>` - send a notification kind right now"

// adminChecker tells whether a user currently holds the admin role.
type adminChecker interface {
	IsAdmin(ctx context.Context, userID int64) bool
}

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	admins adminChecker,
	startedAt time.Time,
	baseLogger *logrus.Entry, // For contextual logging
) {
	commandLogger := baseLogger.WithField("handler_group", "meta")

	b.Handle("/start", func(c telebot.Context) error {
		commandLogger.WithFields(logrus.Fields{"command": "/start", "sender_id": c.Sender().ID}).Info("Processing command")
		return c.Send(helpFor(admins.IsAdmin(ctx, c.Sender().ID)), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/help", func(c telebot.Context) error {
		commandLogger.WithFields(logrus.Fields{"command": "/help", "sender_id": c.Sender().ID}).Info("Processing command")
		return c.Send(helpFor(admins.IsAdmin(ctx, c.Sender().ID)), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/ping", func(c telebot.Context) error {
		return c.Send("`Pong!`", &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/uptime", func(c telebot.Context) error {
		return c.Send("`"+formatUptime(startedAt, time.Now())+"`", &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

func helpFor(isAdmin bool) string {
	if isAdmin {
		return userHelpText + adminHelpText
	}
	return userHelpText
}

func formatUptime(startedAt, now time.Time) string {
	rel := strings.TrimSpace(humanize.RelTime(startedAt, now, "", ""))
	return "Up for " + rel + " (since " + startedAt.Format("2006-01-02 15:04 MST") + ")"
}
