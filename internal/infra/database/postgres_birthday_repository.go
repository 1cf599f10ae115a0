package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"birthday_notification_bot/internal/domain/birthday"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrBirthdayNotFound = fmt.Errorf("birthday not found")

type PostgresBirthdayRepository struct {
	db *sql.DB
}

func NewPostgresBirthdayRepository(db *sql.DB) *PostgresBirthdayRepository {
	return &PostgresBirthdayRepository{db: db}
}

const birthdayColumns = `user_id, group_id, year, month, day, last_notified, enabled, created_at, updated_at`

func scanBirthday(row interface{ Scan(...any) error }) (*birthday.Birthday, error) {
	b := &birthday.Birthday{}
	err := row.Scan(&b.UserID, &b.GroupID, &b.Year, &b.Month, &b.Day, &b.LastNotified, &b.Enabled, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PostgresBirthdayRepository) Get(ctx context.Context, userID, groupID int64) (*birthday.Birthday, error) {
	query := `SELECT ` + birthdayColumns + ` FROM birthdays WHERE user_id = $1 AND group_id = $2`
	b, err := scanBirthday(r.db.QueryRowContext(ctx, query, userID, groupID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBirthdayNotFound
		}
		return nil, fmt.Errorf("error getting birthday: %w", err)
	}
	return b, nil
}

func (r *PostgresBirthdayRepository) Create(ctx context.Context, b *birthday.Birthday) error {
	query := `INSERT INTO birthdays (user_id, group_id, year, month, day, enabled)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, b.UserID, b.GroupID, b.Year, b.Month, b.Day, b.Enabled).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating birthday: %w", err)
	}
	return nil
}

// UpdateDate rewrites the date fields. The record now encodes a new
// configuration, so last_notified is cleared in the same statement.
func (r *PostgresBirthdayRepository) UpdateDate(ctx context.Context, b *birthday.Birthday) error {
	query := `UPDATE birthdays
               SET year = $1, month = $2, day = $3, last_notified = NULL, updated_at = NOW()
               WHERE user_id = $4 AND group_id = $5
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, b.Year, b.Month, b.Day, b.UserID, b.GroupID).Scan(&b.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrBirthdayNotFound
		}
		return fmt.Errorf("error updating birthday date: %w", err)
	}
	b.LastNotified = sql.NullTime{}
	return nil
}

func (r *PostgresBirthdayRepository) SetEnabled(ctx context.Context, userID, groupID int64, enabled bool) error {
	query := `UPDATE birthdays SET enabled = $1, updated_at = NOW()
               WHERE user_id = $2 AND group_id = $3`

	res, err := r.db.ExecContext(ctx, query, enabled, userID, groupID)
	if err != nil {
		return fmt.Errorf("error toggling birthday: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrBirthdayNotFound
	}
	return nil
}

// SetLastNotified only ever moves the timestamp forward; a concurrent writer
// with a later value wins.
func (r *PostgresBirthdayRepository) SetLastNotified(ctx context.Context, b *birthday.Birthday, at time.Time) error {
	query := `UPDATE birthdays SET last_notified = GREATEST(COALESCE(last_notified, $1), $1)
               WHERE user_id = $2 AND group_id = $3`

	_, err := r.db.ExecContext(ctx, query, at, b.UserID, b.GroupID)
	if err != nil {
		return fmt.Errorf("error persisting last_notified: %w", err)
	}
	b.LastNotified = sql.NullTime{Time: at, Valid: true}
	return nil
}

func (r *PostgresBirthdayRepository) Delete(ctx context.Context, userID, groupID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM birthdays WHERE user_id = $1 AND group_id = $2`, userID, groupID)
	if err != nil {
		return fmt.Errorf("error deleting birthday: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrBirthdayNotFound
	}
	return nil
}

func (r *PostgresBirthdayRepository) ListDueForNotification(ctx context.Context, month, day int, midnight time.Time) ([]*birthday.Birthday, error) {
	query := `SELECT ` + birthdayColumns + ` FROM birthdays
               WHERE enabled = TRUE AND month = $1 AND day = $2
                 AND (last_notified IS NULL OR last_notified < $3)
               ORDER BY group_id, user_id`

	rows, err := r.db.QueryContext(ctx, query, month, day, midnight)
	if err != nil {
		return nil, fmt.Errorf("error listing due birthdays: %w", err)
	}
	defer rows.Close()

	return collectBirthdays(rows)
}

func (r *PostgresBirthdayRepository) ListStaleDisabled(ctx context.Context, cutoff time.Time) ([]*birthday.Birthday, error) {
	query := `SELECT ` + birthdayColumns + ` FROM birthdays
               WHERE enabled = FALSE AND updated_at < $1
               ORDER BY group_id, user_id`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("error listing stale disabled birthdays: %w", err)
	}
	defer rows.Close()

	return collectBirthdays(rows)
}

func collectBirthdays(rows *sql.Rows) ([]*birthday.Birthday, error) {
	birthdays := make([]*birthday.Birthday, 0)
	for rows.Next() {
		b, err := scanBirthday(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning birthday: %w", err)
		}
		birthdays = append(birthdays, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating birthdays: %w", err)
	}
	return birthdays, nil
}
