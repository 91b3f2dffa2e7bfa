// internal/infra/database/postgres_run_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"weather_notification_bot/internal/domain/notification"

	"github.com/lib/pq"
)

const createRunsTableQuery = `CREATE TABLE IF NOT EXISTS notification_runs (
	id         BIGSERIAL PRIMARY KEY,
	kind       TEXT NOT NULL,
	run_date   DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT notification_runs_kind_date_key UNIQUE (kind, run_date)
)`

// pq error code for undefined_table.
const pqUndefinedTable = "42P01"

type PostgresRunRepository struct {
	db *sql.DB
}

func NewPostgresRunRepository(db *sql.DB) *PostgresRunRepository {
	return &PostgresRunRepository{db: db}
}

// EnsureSchema creates the notification_runs table if it does not exist yet.
func (r *PostgresRunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createRunsTableQuery); err != nil {
		return fmt.Errorf("error creating notification_runs table: %w", err)
	}
	return nil
}

func (r *PostgresRunRepository) ClaimRun(ctx context.Context, kind notification.Kind, day time.Time) (bool, error) {
	query := `INSERT INTO notification_runs (kind, run_date)
               VALUES ($1, $2)
               ON CONFLICT (kind, run_date) DO NOTHING
               RETURNING id`
	// DATE is passed as text so the session time zone cannot shift the calendar day.
	dateOnly := notification.RunDate(day).Format("2006-01-02")

	var id int64
	err := r.db.QueryRowContext(ctx, query, kind, dateOnly).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error claiming notification run: %w", describePQError(err))
	}
	return true, nil
}

func (r *PostgresRunRepository) ListRecentRuns(ctx context.Context, limit int) ([]*notification.Run, error) {
	query := `SELECT id, kind, run_date, created_at
               FROM notification_runs ORDER BY run_date DESC, id DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing notification runs: %w", describePQError(err))
	}
	defer rows.Close()

	runs := make([]*notification.Run, 0, limit)
	for rows.Next() {
		run := &notification.Run{}
		if err := rows.Scan(&run.ID, &run.Kind, &run.RunDate, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning notification run: %w", err)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification runs: %w", err)
	}
	return runs, nil
}

// describePQError annotates the common "schema not migrated" failure.
func describePQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUndefinedTable {
		return fmt.Errorf("notification_runs table is missing (run with schema creation enabled): %w", err)
	}
	return err
}
