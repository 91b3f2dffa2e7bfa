package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"weather_notification_bot/internal/domain/notification"
)

// MemoryRunRepository keeps the run ledger in process memory. It is used when no
// DATABASE_URL is configured; claims are then only deduplicated until restart.
type MemoryRunRepository struct {
	mu     sync.Mutex
	nextID int64
	runs   []*notification.Run
}

func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{}
}

func (r *MemoryRunRepository) ClaimRun(_ context.Context, kind notification.Kind, day time.Time) (bool, error) {
	dateOnly := notification.RunDate(day)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		if run.Kind == kind && run.RunDate.Equal(dateOnly) {
			return false, nil
		}
	}
	r.nextID++
	r.runs = append(r.runs, &notification.Run{
		ID:        r.nextID,
		Kind:      kind,
		RunDate:   dateOnly,
		CreatedAt: time.Now(),
	})
	return true, nil
}

func (r *MemoryRunRepository) ListRecentRuns(_ context.Context, limit int) ([]*notification.Run, error) {
	r.mu.Lock()
	out := make([]*notification.Run, len(r.runs))
	for i, run := range r.runs {
		cp := *run
		out[i] = &cp
	}
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RunDate.Equal(out[j].RunDate) {
			return out[i].RunDate.After(out[j].RunDate)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
