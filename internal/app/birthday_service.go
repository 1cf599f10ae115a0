package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"birthday_notification_bot/internal/domain/birthday"
	idb "birthday_notification_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for the birthday command surface.
var ErrBirthdayNotSet = fmt.Errorf("no birthday has been set")

// BirthdayService handles the user-facing commands (set/get/delete) and the
// membership hooks that toggle or drop a record.
type BirthdayService struct {
	birthdayRepo birthday.Repository
	logger       *logrus.Entry
	now          func() time.Time
}

func NewBirthdayService(br birthday.Repository, logger *logrus.Entry) *BirthdayService {
	return &BirthdayService{
		birthdayRepo: br,
		logger:       logger,
		now:          time.Now,
	}
}

// SetBirthday parses the free-text date and creates or rewrites the record
// for (userID, groupID). Rewriting is a new configuration: the repository
// clears last_notified as part of the date update. Parse failures surface as
// birthday.ErrDateUnparsable / birthday.ErrDateInFuture untouched.
func (s *BirthdayService) SetBirthday(ctx context.Context, userID, groupID int64, text string) (*birthday.Birthday, error) {
	year, month, day, err := birthday.ParseDateAt(text, s.now())
	if err != nil {
		return nil, err
	}

	var nullYear sql.NullInt16
	if year != nil {
		nullYear = sql.NullInt16{Int16: int16(*year), Valid: true}
	}

	existing, err := s.birthdayRepo.Get(ctx, userID, groupID)
	if err == nil {
		existing.Year = nullYear
		existing.Month = month
		existing.Day = day
		if err := s.birthdayRepo.UpdateDate(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update birthday: %w", err)
		}
		s.logger.WithFields(logrus.Fields{"user_id": userID, "group_id": groupID}).Info("Birthday updated")
		return existing, nil
	}
	if err != idb.ErrBirthdayNotFound {
		return nil, fmt.Errorf("failed to check existing birthday: %w", err)
	}

	newBirthday := &birthday.Birthday{
		UserID:  userID,
		GroupID: groupID,
		Year:    nullYear,
		Month:   month,
		Day:     day,
		Enabled: true,
	}
	if err := s.birthdayRepo.Create(ctx, newBirthday); err != nil {
		return nil, fmt.Errorf("failed to create birthday: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "group_id": groupID}).Info("Birthday created")
	return newBirthday, nil
}

// GetBirthday returns the stored record or ErrBirthdayNotSet.
func (s *BirthdayService) GetBirthday(ctx context.Context, userID, groupID int64) (*birthday.Birthday, error) {
	b, err := s.birthdayRepo.Get(ctx, userID, groupID)
	if err != nil {
		if err == idb.ErrBirthdayNotFound {
			return nil, ErrBirthdayNotSet
		}
		return nil, fmt.Errorf("failed to get birthday: %w", err)
	}
	return b, nil
}

// DeleteBirthday removes the record on explicit user request.
func (s *BirthdayService) DeleteBirthday(ctx context.Context, userID, groupID int64) error {
	err := s.birthdayRepo.Delete(ctx, userID, groupID)
	if err != nil {
		if err == idb.ErrBirthdayNotFound {
			return ErrBirthdayNotSet
		}
		return fmt.Errorf("failed to delete birthday: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "group_id": groupID}).Info("Birthday deleted")
	return nil
}

// EnableNotifications re-enables an existing record when a user rejoins a
// group they previously shared their birthday with. Users without a record
// are ignored.
func (s *BirthdayService) EnableNotifications(ctx context.Context, userID, groupID int64) error {
	return s.setEnabled(ctx, userID, groupID, true)
}

// DisableNotifications suppresses notifications when a user leaves the group.
// The record stays around until the retention sweep forgets it.
func (s *BirthdayService) DisableNotifications(ctx context.Context, userID, groupID int64) error {
	return s.setEnabled(ctx, userID, groupID, false)
}

func (s *BirthdayService) setEnabled(ctx context.Context, userID, groupID int64, enabled bool) error {
	err := s.birthdayRepo.SetEnabled(ctx, userID, groupID, enabled)
	if err != nil {
		if err == idb.ErrBirthdayNotFound {
			return nil // membership events fire for users who never set a birthday
		}
		return fmt.Errorf("failed to toggle birthday notifications: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"group_id": groupID,
		"enabled":  enabled,
	}).Info("Birthday notifications toggled")
	return nil
}

// ForgetUser drops the record immediately, e.g. when the user is banned.
func (s *BirthdayService) ForgetUser(ctx context.Context, userID, groupID int64) error {
	err := s.birthdayRepo.Delete(ctx, userID, groupID)
	if err != nil && err != idb.ErrBirthdayNotFound {
		return fmt.Errorf("failed to forget user: %w", err)
	}
	return nil
}
