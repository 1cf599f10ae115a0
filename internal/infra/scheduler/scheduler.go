package scheduler

import (
	"context"
	"sync"
	"time"

	"birthday_notification_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = 5 * time.Minute

// SweepScheduler drives the two recurring sweeps: the birthday notification
// sweep (every few hours) and the retention cleanup (daily). Runs of the same
// sweep never overlap; a trigger firing while the previous run is still going
// is skipped by the cron chain.
type SweepScheduler struct {
	cronEngine        *cron.Cron
	notifier          app.NotificationSweeper
	retention         app.RetentionSweeper
	logger            *logrus.Entry
	cronSpecNotify    string
	cronSpecRetention string

	ready     chan struct{}
	readyOnce sync.Once
}

func NewSweepScheduler(
	notifier app.NotificationSweeper,
	retention app.RetentionSweeper,
	logger *logrus.Entry,
	cronSpecNotify string, // e.g. "@every 4h"
	cronSpecRetention string, // e.g. "@every 24h"
) *SweepScheduler {
	cronLogger := cron.PrintfLogger(logger)
	return &SweepScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local), // sweeps operate on the server's local calendar
			cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
		),
		notifier:          notifier,
		retention:         retention,
		logger:            logger,
		cronSpecNotify:    cronSpecNotify,
		cronSpecRetention: cronSpecRetention,
		ready:             make(chan struct{}),
	}
}

// SignalReady opens the gate for the notification sweep. Until it is called
// the sweep does not run; the delivery side must be usable first.
func (s *SweepScheduler) SignalReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *SweepScheduler) Start() {
	s.logger.Info("Starting sweep scheduler")

	_, err := s.cronEngine.AddFunc(s.cronSpecNotify, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		// The first trigger may fire before the bot has connected; block on
		// the readiness gate rather than sweeping into a dead transport.
		select {
		case <-s.ready:
		case <-ctx.Done():
			s.logger.Warn("Notification sweep skipped: system not ready")
			return
		}

		s.logger.Info("Notification sweep triggered")
		if err := s.notifier.SweepDue(ctx); err != nil {
			s.logger.WithError(err).Error("Notification sweep failed")
		}
	})
	if err != nil {
		s.logger.WithError(err).Fatal("Could not add notification sweep cron job")
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecRetention, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		s.logger.Info("Retention sweep triggered")
		if err := s.retention.SweepExpired(ctx); err != nil {
			s.logger.WithError(err).Error("Retention sweep failed")
		}
	})
	if err != nil {
		s.logger.WithError(err).Fatal("Could not add retention sweep cron job")
	}

	s.cronEngine.Start()
	s.logger.Info("Sweep scheduler started")
}

func (s *SweepScheduler) Stop() {
	s.logger.Info("Stopping sweep scheduler")
	ctx := s.cronEngine.Stop() // no new runs; waits for in-flight jobs
	<-ctx.Done()
	s.logger.Info("Sweep scheduler gracefully stopped")
}
