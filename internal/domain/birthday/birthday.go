package birthday

import (
	"database/sql"
	"fmt"
	"time"
)

// Birthday represents one user's birthday configuration within one group.
// Identity is the composite (UserID, GroupID); it never changes once created.
// Corresponds to the 'birthdays' table in migration 001.
type Birthday struct {
	UserID       int64
	GroupID      int64
	Year         sql.NullInt16 // present only if the user disclosed a year
	Month        int           // 1-12
	Day          int           // 1-31, valid for Month
	LastNotified sql.NullTime  // NULL means "never notified under the current date"
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DateString renders the canonical human-readable form of the stored date:
// "dd.mm.yyyy" when a year is known, "dd.mm." (trailing dot, no year) otherwise.
func (b *Birthday) DateString() string {
	if b.Year.Valid {
		return time.Date(int(b.Year.Int16), time.Month(b.Month), b.Day, 0, 0, 0, 0, time.UTC).Format("02.01.2006")
	}
	return fmt.Sprintf("%02d.%02d.", b.Day, b.Month)
}

// Age returns the whole number of civil years between the stored full date and
// today. The second return value is false when no year was disclosed.
func (b *Birthday) Age(today time.Time) (int, bool) {
	if !b.Year.Valid {
		return 0, false
	}
	years := today.Year() - int(b.Year.Int16)
	// Not yet reached this year's anniversary.
	if int(today.Month()) < b.Month || (int(today.Month()) == b.Month && today.Day() < b.Day) {
		years--
	}
	return years, true
}

// IsOn reports whether the birthday falls on the given calendar date.
func (b *Birthday) IsOn(date time.Time) bool {
	return b.Month == int(date.Month()) && b.Day == date.Day()
}
