// internal/domain/notification/repository.go
package notification

import (
	"context"
	"time"
)

// RunRepository is the per-day firing ledger.
type RunRepository interface {
	// ClaimRun records (kind, day) and reports whether this call was the one that created it.
	ClaimRun(ctx context.Context, kind Kind, day time.Time) (bool, error)
	// ListRecentRuns returns up to limit runs, newest first.
	ListRecentRuns(ctx context.Context, limit int) ([]*Run, error)
}
