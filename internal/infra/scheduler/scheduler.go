package scheduler

import (
	"context"
	"sync"
	"time"

	"weather_notification_bot/internal/app"
	"weather_notification_bot/internal/domain/notification"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type healthTicker interface {
	RunTick(ctx context.Context)
}

type scratchTicker interface {
	RunTick(ctx context.Context) error
}

// Intervals between successive runs of each background task.
type Intervals struct {
	FanOut  time.Duration
	Health  time.Duration
	Janitor time.Duration
}

// NotificationScheduler drives the fan-out, health and janitor tasks on one cron
// engine. Every notification kind gets its own fan-out job, so a long fan-out of one
// kind never holds back another. Each job also runs once as soon as the scheduler starts.
type NotificationScheduler struct {
	cronEngine   *cron.Cron
	notifService app.NotificationService
	pinger       healthTicker
	janitor      scratchTicker
	intervals    Intervals
	location     *time.Location
	logger       *logrus.Entry

	ctx     context.Context
	cancel  context.CancelFunc
	kickoff sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

func NewNotificationScheduler(
	notifService app.NotificationService,
	pinger healthTicker,
	janitor scratchTicker,
	intervals Intervals,
	location *time.Location,
	logger *logrus.Entry,
) *NotificationScheduler {
	if location == nil {
		location = time.Local
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &NotificationScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.Recover(cron.PrintfLogger(logger))),
		),
		notifService: notifService,
		pinger:       pinger,
		janitor:      janitor,
		intervals:    intervals,
		location:     location,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start registers the jobs, runs each of them once and starts the cron engine.
// Calls after the first one, or after Stop, do nothing.
func (s *NotificationScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.logger.Info("Starting notification scheduler...")

	var ids []cron.EntryID
	// A fan-out tick can outlast its interval while pacing; overlapping ticks of the
	// same kind are dropped and the run ledger keeps the day from firing twice.
	for _, kind := range notification.Kinds {
		ids = append(ids, s.cronEngine.Schedule(cron.Every(s.intervals.FanOut),
			cron.NewChain(cron.SkipIfStillRunning(cron.PrintfLogger(s.logger))).Then(s.fanOutJob(kind))))
	}
	ids = append(ids,
		s.cronEngine.Schedule(cron.Every(s.intervals.Health), cron.FuncJob(s.runHealth)),
		s.cronEngine.Schedule(cron.Every(s.intervals.Janitor), cron.FuncJob(s.runJanitor)),
	)

	for _, id := range ids {
		job := s.cronEngine.Entry(id).WrappedJob
		s.kickoff.Add(1)
		go func() {
			defer s.kickoff.Done()
			job.Run()
		}()
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"fanout_jobs":      len(notification.Kinds),
		"fanout_interval":  s.intervals.FanOut,
		"health_interval":  s.intervals.Health,
		"janitor_interval": s.intervals.Janitor,
		"location":         s.location.String(),
	}).Info("Notification scheduler started with jobs.")
}

func (s *NotificationScheduler) fanOutJob(kind notification.Kind) cron.Job {
	return cron.FuncJob(func() {
		s.logger.WithField("kind", kind).Debug("Fan-out tick")
		s.notifService.RunTick(s.ctx, time.Now().In(s.location), kind)
	})
}

func (s *NotificationScheduler) runHealth() {
	s.pinger.RunTick(s.ctx)
}

func (s *NotificationScheduler) runJanitor() {
	if err := s.janitor.RunTick(s.ctx); err != nil {
		s.logger.WithError(err).Error("Scratch janitor tick failed")
	}
}

// Stop cancels in-flight work and waits for running jobs to return. It is safe to
// call before Start, concurrently with it, or more than once.
func (s *NotificationScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	if s.stopped {
		return
	}
	s.stopped = true
	if !s.started {
		s.logger.Info("Notification scheduler stopped before it started.")
		return
	}

	s.logger.Info("Stopping notification scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.kickoff.Wait()
	s.logger.Info("Notification scheduler gracefully stopped.")
}

// WarnNarrowWindows logs every subscription whose trigger window is narrower than
// the fan-out interval. Such a window can fall between two ticks and be missed.
func WarnNarrowWindows(cfg *notification.Config, fanOutInterval time.Duration, logger *logrus.Entry) int {
	narrow := 0
	for _, sub := range cfg.Subscriptions {
		if sub.Window.Width() < fanOutInterval {
			narrow++
			logger.WithFields(logrus.Fields{
				"kind":            sub.Kind,
				"window":          sub.Window.String(),
				"fanout_interval": fanOutInterval,
			}).Warn("Trigger window is narrower than the fan-out interval, a tick may miss it")
		}
	}
	return narrow
}
