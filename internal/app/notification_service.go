// internal/app/notification_service.go
package app

import (
	"context"
	"fmt"
	"slices"
	"time"

	"weather_notification_bot/internal/domain/notification"
	domainTelegram "weather_notification_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ErrKindNotConfigured is returned when a kind has no subscription or no aggregator.
var ErrKindNotConfigured = fmt.Errorf("notification kind is not configured")

// NotificationService fans daily notifications out to subscribers.
type NotificationService interface {
	// RunTick evaluates the given kinds (every configured kind when none are given)
	// against now and fans out the ones whose trigger window is open. It never returns
	// an error; failures are logged.
	RunTick(ctx context.Context, now time.Time, kinds ...notification.Kind)
	// Dispatch fans out one kind immediately, ignoring its window and the run ledger.
	Dispatch(ctx context.Context, kind notification.Kind) error
}

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	configSource   notification.ConfigSource
	aggregators    map[notification.Kind]notification.Aggregator
	telegramClient domainTelegram.Client
	runRepo        notification.RunRepository
	pacer          Pacer
	logger         *logrus.Entry
}

func NewNotificationServiceImpl(
	cs notification.ConfigSource,
	aggregators map[notification.Kind]notification.Aggregator,
	tc domainTelegram.Client,
	rr notification.RunRepository,
	pacer Pacer,
	logger *logrus.Entry,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		configSource:   cs,
		aggregators:    aggregators,
		telegramClient: tc,
		runRepo:        rr,
		pacer:          pacer,
		logger:         logger,
	}
}

func (s *NotificationServiceImpl) RunTick(ctx context.Context, now time.Time, kinds ...notification.Kind) {
	cfg, err := s.configSource.Load(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load notification config, skipping tick")
		return
	}

	tod := notification.TimeOfDayOf(now)
	for _, sub := range cfg.Subscriptions {
		if ctx.Err() != nil {
			return
		}
		if len(kinds) > 0 && !slices.Contains(kinds, sub.Kind) {
			continue
		}
		if !notification.InsideWindow(tod, sub.Window) {
			continue
		}

		kindLogger := s.logger.WithFields(logrus.Fields{
			"kind":   sub.Kind,
			"window": sub.Window.String(),
		})
		if len(sub.Subjects) == 0 || len(sub.Recipients) == 0 {
			kindLogger.Debug("Trigger window open but nothing is subscribed")
			continue
		}

		day := notification.RunDate(now)
		claimed, err := s.runRepo.ClaimRun(ctx, sub.Kind, day)
		if err != nil {
			kindLogger.WithError(err).Warn("Could not record run in ledger, sending anyway")
		} else if !claimed {
			kindLogger.WithField("run_date", day.Format("2006-01-02")).Debug("Kind already fired today")
			continue
		}

		s.fanOut(ctx, sub, kindLogger)
	}
}

func (s *NotificationServiceImpl) Dispatch(ctx context.Context, kind notification.Kind) error {
	cfg, err := s.configSource.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load notification config: %w", err)
	}
	sub, ok := cfg.Subscription(kind)
	if !ok {
		return fmt.Errorf("%w: %s", ErrKindNotConfigured, kind)
	}
	kindLogger := s.logger.WithFields(logrus.Fields{"kind": kind, "forced": true})
	if len(sub.Subjects) == 0 || len(sub.Recipients) == 0 {
		kindLogger.Info("Nothing is subscribed, forced dispatch is a no-op")
		return nil
	}
	s.fanOut(ctx, sub, kindLogger)
	return nil
}

// fanOut walks subjects in order and recipients per subject, pausing after every send.
// A fetch failure skips the subject without paying the pacing delay.
func (s *NotificationServiceImpl) fanOut(ctx context.Context, sub notification.Subscription, kindLogger *logrus.Entry) {
	aggregator, ok := s.aggregators[sub.Kind]
	if !ok {
		kindLogger.Error("No aggregator registered for kind, skipping fan-out")
		return
	}

	recipients := sub.RecipientSet()
	start := time.Now()
	kindLogger.WithFields(logrus.Fields{
		"subjects":   len(sub.Subjects),
		"recipients": len(recipients),
	}).Info("Starting notification fan-out")

	var sent, sendFailed, fetchFailed int
	for _, subject := range sub.Subjects {
		payload, err := aggregator.Fetch(ctx, subject)
		if err != nil {
			fetchFailed++
			s.logOutcome(notification.Outcome{
				Kind:    sub.Kind,
				Subject: subject,
				Status:  notification.OutcomeFetchFailed,
				Err:     fmt.Errorf("%w: %w", notification.ErrFetch, err),
			})
			continue
		}

		for _, recipient := range recipients {
			outcome := notification.Outcome{
				Kind:      sub.Kind,
				Subject:   subject,
				Recipient: recipient,
				Status:    notification.OutcomeSent,
			}
			if err := s.telegramClient.SendMessage(ctx, recipient, payload, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}); err != nil {
				outcome.Status = notification.OutcomeSendFailed
				outcome.Err = fmt.Errorf("%w: %w", notification.ErrSend, err)
				sendFailed++
			} else {
				sent++
			}
			s.logOutcome(outcome)

			if err := s.pacer.Pause(ctx); err != nil {
				kindLogger.WithError(err).Warn("Fan-out interrupted while pacing")
				return
			}
		}
	}

	summary := kindLogger.WithFields(logrus.Fields{
		"sent":         sent,
		"send_failed":  sendFailed,
		"fetch_failed": fetchFailed,
		"duration":     time.Since(start).Round(time.Millisecond).String(),
	})
	if sendFailed+fetchFailed > 0 {
		summary.Warn("Notification fan-out finished with failures")
	} else {
		summary.Info("Notification fan-out finished")
	}
}

func (s *NotificationServiceImpl) logOutcome(o notification.Outcome) {
	fields := logrus.Fields{
		"kind":    o.Kind,
		"subject": o.Subject,
		"outcome": o.Status,
	}
	if o.Status != notification.OutcomeFetchFailed {
		fields["recipient_id"] = o.Recipient
	}
	entry := s.logger.WithFields(fields)
	switch o.Status {
	case notification.OutcomeSent:
		entry.Info("Notification sent")
	case notification.OutcomeFetchFailed:
		entry.WithError(o.Err).Error("Failed to fetch notification payload, skipping subject")
	case notification.OutcomeSendFailed:
		entry.WithError(o.Err).Error("Failed to send notification")
	}
}
