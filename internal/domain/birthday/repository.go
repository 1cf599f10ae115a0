package birthday

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and querying Birthday
// records. Implementations are handed to the services explicitly; nothing in
// the application reaches for an ambient global store.
type Repository interface {
	Get(ctx context.Context, userID, groupID int64) (*Birthday, error)
	Create(ctx context.Context, b *Birthday) error

	// UpdateDate rewrites the date fields of an existing record. A date change
	// is a new configuration, so last_notified is cleared and updated_at bumped.
	UpdateDate(ctx context.Context, b *Birthday) error

	// SetEnabled toggles notification suppression. It bumps updated_at (which
	// drives retention) but never touches last_notified.
	SetEnabled(ctx context.Context, userID, groupID int64, enabled bool) error

	// SetLastNotified persists the delivery timestamp after a successful send.
	SetLastNotified(ctx context.Context, b *Birthday, at time.Time) error

	Delete(ctx context.Context, userID, groupID int64) error

	// ListDueForNotification returns enabled records whose month/day match and
	// which have not been notified since the given start-of-day instant.
	ListDueForNotification(ctx context.Context, month, day int, midnight time.Time) ([]*Birthday, error)

	// ListStaleDisabled returns disabled records last touched strictly before
	// cutoff. A record exactly at the cutoff is retained.
	ListStaleDisabled(ctx context.Context, cutoff time.Time) ([]*Birthday, error)
}
