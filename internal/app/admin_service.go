package app

import (
	"context"
	"fmt"

	"weather_notification_bot/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")

const defaultRecentRunsLimit = 10

// AdminService serves the admin commands. The admin is whoever the current
// configuration snapshot names, so a changed admin id applies on the next command.
type AdminService struct {
	configSource notification.ConfigSource
	runRepo      notification.RunRepository
	notifService NotificationService
	logger       *logrus.Entry
}

func NewAdminService(cs notification.ConfigSource, rr notification.RunRepository, ns NotificationService, logger *logrus.Entry) *AdminService {
	return &AdminService{
		configSource: cs,
		runRepo:      rr,
		notifService: ns,
		logger:       logger,
	}
}

func (s *AdminService) authorize(ctx context.Context, performingAdminID int64) (*notification.Config, error) {
	cfg, err := s.configSource.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification config: %w", err)
	}
	if cfg.AdminID == 0 || performingAdminID != cfg.AdminID {
		return nil, ErrAdminNotAuthorized
	}
	return cfg, nil
}

// IsAdmin reports whether userID is the admin in the current snapshot.
func (s *AdminService) IsAdmin(ctx context.Context, userID int64) bool {
	_, err := s.authorize(ctx, userID)
	return err == nil
}

// Subscriptions returns the current configuration snapshot.
func (s *AdminService) Subscriptions(ctx context.Context, performingAdminID int64) (*notification.Config, error) {
	return s.authorize(ctx, performingAdminID)
}

// RecentRuns lists the newest ledger entries.
func (s *AdminService) RecentRuns(ctx context.Context, performingAdminID int64, limit int) ([]*notification.Run, error) {
	if _, err := s.authorize(ctx, performingAdminID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentRunsLimit
	}
	runs, err := s.runRepo.ListRecentRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent runs: %w", err)
	}
	return runs, nil
}

// TriggerNotification checks that kind is configured and starts a forced fan-out in the
// background. The fan-out outlives the command that started it; ctx must be long-lived.
func (s *AdminService) TriggerNotification(ctx context.Context, performingAdminID int64, kind notification.Kind) error {
	cfg, err := s.authorize(ctx, performingAdminID)
	if err != nil {
		return err
	}
	if _, ok := cfg.Subscription(kind); !ok {
		return fmt.Errorf("%w: %s", ErrKindNotConfigured, kind)
	}

	go func() {
		if err := s.notifService.Dispatch(ctx, kind); err != nil {
			s.logger.WithError(err).WithField("kind", kind).Error("Forced notification dispatch failed")
		}
	}()
	return nil
}
