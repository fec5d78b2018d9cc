package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/guregu/null/v6"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ScheduledTasks returns every unpaused task waiting in the scheduler's
// table as a task-scheduled event.
func (repo *Repo) ScheduledTasks(ctx context.Context) ([]domain.Event, error) {
	const q = `
    SELECT id, name, due, retry_count, retry_reason
    FROM task
    WHERE paused = FALSE ORDER BY due
     `
	rows, err := repo.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query scheduled tasks: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			id          int64
			name        string
			due         time.Time
			retryCount  int64
			retryReason null.String
		)
		if err := rows.Scan(&id, &name, &due, &retryCount, &retryReason); err != nil {
			return nil, fmt.Errorf("scan scheduled task: %w", err)
		}
		events = append(events, scheduledEvent(id, name, due, retryCount, retryReason))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows scheduled tasks: %w", err)
	}
	return events, nil
}

func scheduledEvent(id int64, name string, due time.Time, retryCount int64, retryReason null.String) domain.Event {
	fields := map[string]any{
		"name":    name,
		"eta":     due.UTC().Format(time.RFC3339),
		"retries": retryCount,
	}
	if retryReason.Valid && retryReason.String != "" {
		fields["retry_reason"] = retryReason.String
	}
	// the due time is only an eta; the timestamp is left to worker events
	return domain.Event{
		Type:   domain.EventTaskScheduled,
		TaskID: strconv.FormatInt(id, 10),
		Fields: fields,
	}
}

// Schedule adds a task to the scheduler's table and notifies channel so
// listening views reload.
func (repo *Repo) Schedule(ctx context.Context, name string, args []byte, due time.Time, channel string) (id int64, err error) {
	const q = `
        INSERT INTO task
          (name, partition_key, args, due)
        VALUES
          ($1, '', $2, $3)
        RETURNING id
        `
	if err = repo.pool.QueryRow(ctx, q, name, args, due).Scan(&id); err != nil {
		return id, fmt.Errorf("insert task: %w", err)
	}
	if _, err = repo.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, channel, strconv.FormatInt(id, 10)); err != nil {
		return id, fmt.Errorf("notify %s for %d: %w", channel, id, err)
	}
	return id, nil
}
