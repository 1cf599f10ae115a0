package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"
	"time"

	"birthday_notification_bot/internal/domain/birthday"
	domainTelegram "birthday_notification_bot/internal/domain/telegram"
	idb "birthday_notification_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type recordKey struct {
	userID  int64
	groupID int64
}

// fakeBirthdayRepo mirrors the Postgres repository semantics in memory:
// exclusive cutoffs, last_notified cleared on date change and only ever
// moving forward.
type fakeBirthdayRepo struct {
	mu        sync.Mutex
	records   map[recordKey]*birthday.Birthday
	deleteErr map[recordKey]error
	clock     func() time.Time
}

func newFakeBirthdayRepo(clock func() time.Time) *fakeBirthdayRepo {
	return &fakeBirthdayRepo{
		records:   make(map[recordKey]*birthday.Birthday),
		deleteErr: make(map[recordKey]error),
		clock:     clock,
	}
}

func (r *fakeBirthdayRepo) put(b *birthday.Birthday) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *b
	r.records[recordKey{b.UserID, b.GroupID}] = &clone
}

func (r *fakeBirthdayRepo) stored(userID, groupID int64) *birthday.Birthday {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.records[recordKey{userID, groupID}]; ok {
		clone := *b
		return &clone
	}
	return nil
}

func (r *fakeBirthdayRepo) Get(_ context.Context, userID, groupID int64) (*birthday.Birthday, error) {
	b := r.stored(userID, groupID)
	if b == nil {
		return nil, idb.ErrBirthdayNotFound
	}
	return b, nil
}

func (r *fakeBirthdayRepo) Create(_ context.Context, b *birthday.Birthday) error {
	now := r.clock()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.put(b)
	return nil
}

func (r *fakeBirthdayRepo) UpdateDate(_ context.Context, b *birthday.Birthday) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[recordKey{b.UserID, b.GroupID}]
	if !ok {
		return idb.ErrBirthdayNotFound
	}
	stored.Year = b.Year
	stored.Month = b.Month
	stored.Day = b.Day
	stored.LastNotified = sql.NullTime{} // a date change is a new configuration
	stored.UpdatedAt = r.clock()
	*b = *stored
	return nil
}

func (r *fakeBirthdayRepo) SetEnabled(_ context.Context, userID, groupID int64, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[recordKey{userID, groupID}]
	if !ok {
		return idb.ErrBirthdayNotFound
	}
	stored.Enabled = enabled
	stored.UpdatedAt = r.clock()
	return nil
}

func (r *fakeBirthdayRepo) SetLastNotified(_ context.Context, b *birthday.Birthday, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[recordKey{b.UserID, b.GroupID}]
	if !ok {
		return idb.ErrBirthdayNotFound
	}
	if !stored.LastNotified.Valid || stored.LastNotified.Time.Before(at) {
		stored.LastNotified.Time = at
		stored.LastNotified.Valid = true
	}
	b.LastNotified = stored.LastNotified
	return nil
}

func (r *fakeBirthdayRepo) Delete(_ context.Context, userID, groupID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := recordKey{userID, groupID}
	if err := r.deleteErr[key]; err != nil {
		return err
	}
	if _, ok := r.records[key]; !ok {
		return idb.ErrBirthdayNotFound
	}
	delete(r.records, key)
	return nil
}

func (r *fakeBirthdayRepo) ListDueForNotification(_ context.Context, month, day int, midnight time.Time) ([]*birthday.Birthday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*birthday.Birthday
	for _, b := range r.records {
		if !b.Enabled || b.Month != month || b.Day != day {
			continue
		}
		if b.LastNotified.Valid && !b.LastNotified.Time.Before(midnight) {
			continue
		}
		clone := *b
		due = append(due, &clone)
	}
	return due, nil
}

func (r *fakeBirthdayRepo) ListStaleDisabled(_ context.Context, cutoff time.Time) ([]*birthday.Birthday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stale []*birthday.Birthday
	for _, b := range r.records {
		if b.Enabled || !b.UpdatedAt.Before(cutoff) {
			continue
		}
		clone := *b
		stale = append(stale, &clone)
	}
	return stale, nil
}

// fakeTelegramClient records sends and can be told to fail resolution or
// delivery for specific targets.
type fakeTelegramClient struct {
	mu          sync.Mutex
	sent        []string
	failGroups  map[int64]bool
	failMembers map[int64]bool
	failSend    bool
}

func newFakeTelegramClient() *fakeTelegramClient {
	return &fakeTelegramClient{
		failGroups:  make(map[int64]bool),
		failMembers: make(map[int64]bool),
	}
}

func (c *fakeTelegramClient) ResolveGroup(groupID int64) (*domainTelegram.Group, error) {
	if c.failGroups[groupID] {
		return nil, fmt.Errorf("group %d unavailable", groupID)
	}
	return &domainTelegram.Group{ID: groupID, Title: "test group"}, nil
}

func (c *fakeTelegramClient) ResolveDestination(g *domainTelegram.Group) (*domainTelegram.Destination, error) {
	return &domainTelegram.Destination{ChatID: g.ID}, nil
}

func (c *fakeTelegramClient) ResolveMember(g *domainTelegram.Group, userID int64) (*domainTelegram.Member, error) {
	if c.failMembers[userID] {
		return nil, fmt.Errorf("member %d unavailable", userID)
	}
	return &domainTelegram.Member{
		UserID:    userID,
		FirstName: "Test",
		Mention:   fmt.Sprintf("@user%d", userID),
	}, nil
}

func (c *fakeTelegramClient) Send(_ *domainTelegram.Destination, text string) error {
	if c.failSend {
		return fmt.Errorf("delivery failed")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

func (c *fakeTelegramClient) sentMessages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}
