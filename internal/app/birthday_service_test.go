package app

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"birthday_notification_bot/internal/domain/birthday"
)

func newBirthdayFixture(now time.Time) (*BirthdayService, *fakeBirthdayRepo) {
	clock := func() time.Time { return now }
	repo := newFakeBirthdayRepo(clock)
	svc := NewBirthdayService(repo, testLogger())
	svc.now = clock
	return svc, repo
}

func TestSetBirthdayCreatesEnabledRecord(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc, repo := newBirthdayFixture(now)

	created, err := svc.SetBirthday(context.Background(), 1, 1, "14.02.2000")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := created.DateString(); got != "14.02.2000" {
		t.Errorf("echo: want 14.02.2000, got %s", got)
	}

	stored := repo.stored(1, 1)
	if stored == nil {
		t.Fatal("record was not persisted")
	}
	if !stored.Enabled {
		t.Error("new records must be enabled")
	}
	if !stored.Year.Valid || stored.Year.Int16 != 2000 || stored.Month != 2 || stored.Day != 14 {
		t.Errorf("stored date mismatch: %+v", stored)
	}
}

func TestSetBirthdayYearlessKeepsYearAbsent(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc, repo := newBirthdayFixture(now)

	created, err := svc.SetBirthday(context.Background(), 1, 1, "2-14")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if created.Year.Valid {
		t.Error("no year was disclosed; none may be fabricated")
	}
	if got := repo.stored(1, 1).DateString(); got != "14.02." {
		t.Errorf("echo: want 14.02., got %s", got)
	}
}

func TestResetClearsLastNotified(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc, repo := newBirthdayFixture(now)

	repo.put(&birthday.Birthday{
		UserID: 1, GroupID: 1, Month: 1, Day: 1, Enabled: true,
		LastNotified: sql.NullTime{Time: now.AddDate(0, -1, 0), Valid: true},
		UpdatedAt:    now.AddDate(0, -1, 0),
	})

	updated, err := svc.SetBirthday(context.Background(), 1, 1, "14.02.2000")
	if err != nil {
		t.Fatalf("re-set: %v", err)
	}
	if updated.LastNotified.Valid {
		t.Error("a date change is a new configuration; last_notified must be cleared")
	}

	stored := repo.stored(1, 1)
	if stored.LastNotified.Valid {
		t.Error("cleared last_notified must be persisted")
	}
	if !stored.UpdatedAt.Equal(now) {
		t.Errorf("updated_at must be bumped, got %s", stored.UpdatedAt)
	}
}

func TestToggleDoesNotTouchLastNotified(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc, repo := newBirthdayFixture(now)

	notified := now.AddDate(0, -1, 0)
	repo.put(&birthday.Birthday{
		UserID: 1, GroupID: 1, Month: 1, Day: 1, Enabled: true,
		LastNotified: sql.NullTime{Time: notified, Valid: true},
		UpdatedAt:    notified,
	})

	if err := svc.DisableNotifications(context.Background(), 1, 1); err != nil {
		t.Fatalf("disable: %v", err)
	}
	stored := repo.stored(1, 1)
	if stored.Enabled {
		t.Error("record should be disabled")
	}
	if !stored.LastNotified.Valid || !stored.LastNotified.Time.Equal(notified) {
		t.Error("toggling must never touch last_notified")
	}
	if !stored.UpdatedAt.Equal(now) {
		t.Error("toggling must bump updated_at")
	}

	if err := svc.EnableNotifications(context.Background(), 1, 1); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !repo.stored(1, 1).Enabled {
		t.Error("record should be re-enabled")
	}
}

func TestMembershipHooksIgnoreUnknownUsers(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newBirthdayFixture(now)

	if err := svc.DisableNotifications(context.Background(), 42, 1); err != nil {
		t.Errorf("leave event for a user without a record must be a no-op: %v", err)
	}
	if err := svc.EnableNotifications(context.Background(), 42, 1); err != nil {
		t.Errorf("join event for a user without a record must be a no-op: %v", err)
	}
	if err := svc.ForgetUser(context.Background(), 42, 1); err != nil {
		t.Errorf("ban event for a user without a record must be a no-op: %v", err)
	}
}

func TestSetBirthdayParseErrorsPropagate(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc, repo := newBirthdayFixture(now)

	if _, err := svc.SetBirthday(context.Background(), 1, 1, "not a date"); !errors.Is(err, birthday.ErrDateUnparsable) {
		t.Errorf("want ErrDateUnparsable, got %v", err)
	}
	if _, err := svc.SetBirthday(context.Background(), 1, 1, "16.06.2024"); !errors.Is(err, birthday.ErrDateInFuture) {
		t.Errorf("want ErrDateInFuture, got %v", err)
	}
	if repo.stored(1, 1) != nil {
		t.Error("nothing may be persisted on a parse failure")
	}
}

func TestDeleteBirthday(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc, repo := newBirthdayFixture(now)

	if err := svc.DeleteBirthday(context.Background(), 1, 1); !errors.Is(err, ErrBirthdayNotSet) {
		t.Errorf("want ErrBirthdayNotSet, got %v", err)
	}

	repo.put(&birthday.Birthday{UserID: 1, GroupID: 1, Month: 1, Day: 1, Enabled: true})
	if err := svc.DeleteBirthday(context.Background(), 1, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if repo.stored(1, 1) != nil {
		t.Error("record must be gone after deletion")
	}
}

func TestGetBirthday(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc, repo := newBirthdayFixture(now)

	if _, err := svc.GetBirthday(context.Background(), 1, 1); !errors.Is(err, ErrBirthdayNotSet) {
		t.Errorf("want ErrBirthdayNotSet, got %v", err)
	}

	repo.put(&birthday.Birthday{UserID: 1, GroupID: 1, Month: 7, Day: 4, Enabled: true})
	stored, err := svc.GetBirthday(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := stored.DateString(); got != "04.07." {
		t.Errorf("want 04.07., got %s", got)
	}
}
