package app

import (
	"context"
	"fmt"
	"time"

	"birthday_notification_bot/internal/domain/birthday"
	"birthday_notification_bot/internal/domain/greeting"
	domainTelegram "birthday_notification_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// NotificationSweeper is the operation the scheduler triggers every few hours.
type NotificationSweeper interface {
	// SweepDue finds today's not-yet-notified birthdays and fans out one
	// delivery attempt per record.
	SweepDue(ctx context.Context) error
}

// NotificationService implements the birthday notification sweep.
type NotificationService struct {
	birthdayRepo birthday.Repository
	client       domainTelegram.Client
	composer     *greeting.Composer
	logger       *logrus.Entry
	maxParallel  int
	now          func() time.Time
}

func NewNotificationService(
	br birthday.Repository,
	tc domainTelegram.Client,
	composer *greeting.Composer,
	logger *logrus.Entry,
	maxParallel int,
) *NotificationService {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	return &NotificationService{
		birthdayRepo: br,
		client:       tc,
		composer:     composer,
		logger:       logger,
		maxParallel:  maxParallel,
		now:          time.Now,
	}
}

// SweepDue runs one notification sweep. Eligibility is checked against the
// persisted last_notified timestamp versus start-of-today, so re-running any
// number of times on the same day (including after a restart) sends nothing
// twice. A record that fails today is not retried until next year.
func (s *NotificationService) SweepDue(ctx context.Context) error {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	due, err := s.birthdayRepo.ListDueForNotification(ctx, int(now.Month()), now.Day(), midnight)
	if err != nil {
		return fmt.Errorf("failed to list due birthdays: %w", err)
	}
	if len(due) == 0 {
		s.logger.Debug("No birthdays due for notification")
		return nil
	}
	s.logger.WithField("count", len(due)).Info("Dispatching birthday notifications")

	// Attempts run concurrently but bounded, and are joined before the sweep
	// is considered complete. Each attempt captures its own failure; no
	// attempt cancels or delays its siblings.
	group := new(errgroup.Group)
	group.SetLimit(s.maxParallel)
	for _, b := range due {
		b := b
		group.Go(func() error {
			if err := s.notify(ctx, b, midnight); err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"user_id":  b.UserID,
					"group_id": b.GroupID,
				}).Error("Birthday notification attempt abandoned for this run")
			}
			return nil
		})
	}
	return group.Wait()
}

// notify performs a single delivery attempt. Any resolution or delivery
// failure abandons the record for this run without touching its state;
// last_notified is persisted strictly after a successful send.
func (s *NotificationService) notify(ctx context.Context, b *birthday.Birthday, today time.Time) error {
	// The due query and this attempt can race a concurrent date change;
	// trust the record over the query result.
	if !b.IsOn(today) {
		return fmt.Errorf("record date is now %s, no longer due today", b.DateString())
	}

	group, err := s.client.ResolveGroup(b.GroupID)
	if err != nil {
		return fmt.Errorf("unable to resolve group %d (is the bot still in that chat?): %w", b.GroupID, err)
	}

	dest, err := s.client.ResolveDestination(group)
	if err != nil {
		return fmt.Errorf("no notification destination for group %d: %w", b.GroupID, err)
	}

	member, err := s.client.ResolveMember(group, b.UserID)
	if err != nil {
		return fmt.Errorf("unable to resolve member %d in group %d (did they leave?): %w", b.UserID, b.GroupID, err)
	}

	var age *int
	if years, ok := b.Age(today); ok {
		age = &years
	}

	text := s.composer.Compose(member.Mention, age)
	if err := s.client.Send(dest, text); err != nil {
		return fmt.Errorf("failed to send birthday notification: %w", err)
	}

	if err := s.birthdayRepo.SetLastNotified(ctx, b, s.now()); err != nil {
		// Delivered but unpersisted. An extra send next run is prevented only
		// for persisted state, so log loudly; the sweep itself carries on.
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":  b.UserID,
			"group_id": b.GroupID,
		}).Error("Notification sent but last_notified could not be persisted")
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  b.UserID,
		"group_id": b.GroupID,
	}).Info("Birthday notification delivered")
	return nil
}
