package app

import (
	"context"
	"fmt"
	"time"

	"birthday_notification_bot/internal/domain/birthday"

	"github.com/sirupsen/logrus"
)

// RetentionSweeper is the daily cleanup operation triggered by the scheduler.
type RetentionSweeper interface {
	// SweepExpired purges birthdays that have been disabled for longer than
	// the retention window.
	SweepExpired(ctx context.Context) error
}

// RetentionService deletes long-disabled birthday records so that the system
// eventually forgets users who left and never came back.
type RetentionService struct {
	birthdayRepo  birthday.Repository
	retentionDays int
	logger        *logrus.Entry
	now           func() time.Time
}

func NewRetentionService(br birthday.Repository, retentionDays int, logger *logrus.Entry) *RetentionService {
	return &RetentionService{
		birthdayRepo:  br,
		retentionDays: retentionDays,
		logger:        logger,
		now:           time.Now,
	}
}

// SweepExpired runs one retention pass. The cutoff is exclusive: a record
// updated exactly retentionDays ago is retained. Deletions are independent;
// one failure is logged and never aborts the rest of the sweep.
func (s *RetentionService) SweepExpired(ctx context.Context) error {
	cutoff := s.now().AddDate(0, 0, -s.retentionDays)

	stale, err := s.birthdayRepo.ListStaleDisabled(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale disabled birthdays: %w", err)
	}
	if len(stale) == 0 {
		s.logger.Debug("No stale disabled birthdays to purge")
		return nil
	}

	for _, b := range stale {
		logCtx := s.logger.WithFields(logrus.Fields{
			"user_id":  b.UserID,
			"group_id": b.GroupID,
		})
		if err := s.birthdayRepo.Delete(ctx, b.UserID, b.GroupID); err != nil {
			logCtx.WithError(err).Error("Failed to delete stale disabled birthday")
			continue
		}
		logCtx.Info("Deleted stale disabled birthday")
	}
	return nil
}
