// internal/domain/notification/run.go
package notification

import "time"

// Run records that a kind was fanned out on a given local calendar day.
// Corresponds to the 'notification_runs' table.
type Run struct {
	ID        int64
	Kind      Kind
	RunDate   time.Time // date part only
	CreatedAt time.Time
}

// RunDate normalizes t to midnight in its own location.
func RunDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
