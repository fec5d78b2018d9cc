package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/ecociel/taskview/lib/telemetry"
	"github.com/ecociel/taskview/metrics"
	"github.com/lib/pq"
)

// Runner mirrors the scheduler's pending tasks into the index. It reloads
// on every interval and whenever the scheduler notifies a change.
type Runner struct {
	interval time.Duration
	store    store
	index    applier
	notify   <-chan *pq.Notification
	metrics  metrics.IngestMetrics
	logger   *slog.Logger
}

type store interface {
	ScheduledTasks(ctx context.Context) ([]domain.Event, error)
}

type applier interface {
	Apply(ev domain.Event) *domain.Task
	Len() int
}

// New returns a runner. notify may be nil to reload on the interval only.
func New(interval time.Duration, store store, index applier, notify <-chan *pq.Notification, m metrics.IngestMetrics) *Runner {
	return &Runner{
		interval: interval,
		store:    store,
		index:    index,
		notify:   notify,
		metrics:  m,
		logger:   telemetry.Logger(),
	}
}

func (r *Runner) Run(ctx context.Context) {
	if err := r.process(ctx); err != nil {
		r.logger.ErrorContext(ctx, "initial scheduled task load", "error", err)
	}
	notify := r.notify
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.interval):
		case n, ok := <-notify:
			if !ok {
				notify = nil
				continue
			}
			if n != nil {
				r.logger.DebugContext(ctx, "scheduled tasks changed", "channel", n.Channel, "payload", n.Extra)
			}
		}
		if err := r.process(ctx); err != nil {
			r.logger.ErrorContext(ctx, "scheduled task reload", "error", err)
		}
	}
}

func (r *Runner) process(ctx context.Context) error {
	events, err := r.store.ScheduledTasks(ctx)
	if err != nil {
		return fmt.Errorf("fetching scheduled tasks: %w", err)
	}
	for _, ev := range events {
		r.index.Apply(ev)
	}
	r.metrics.ScheduledLoaded(len(events))
	r.metrics.IndexSize(r.index.Len())
	r.logger.DebugContext(ctx, "loaded scheduled tasks", "count", len(events))
	return nil
}
