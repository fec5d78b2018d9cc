package kafka

import (
	"context"
	"log/slog"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/ecociel/taskview/lib/telemetry"
	"github.com/ecociel/taskview/metrics"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fetcher interface {
	PollFetches(ctx context.Context) kgo.Fetches
}

type applier interface {
	Apply(ev domain.Event) *domain.Task
	Len() int
}

// Consumer feeds task events from the events topic into the index. The
// index is rebuilt from the start of the topic on every run, so nothing is
// committed.
type Consumer struct {
	client  fetcher
	index   applier
	metrics metrics.IngestMetrics
	logger  *slog.Logger
}

func NewConsumer(client *kgo.Client, index applier, m metrics.IngestMetrics) *Consumer {
	return &Consumer{client: client, index: index, metrics: m, logger: telemetry.Logger()}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			c.logger.InfoContext(ctx, "consuming client closed, returning")
			return
		}
		fetches.EachError(func(t string, p int32, err error) {
			c.logger.ErrorContext(ctx, "fetch error", "topic", t, "partition", p, "error", err)
		})
		c.handle(ctx, fetches)
	}
}

func (c *Consumer) handle(ctx context.Context, fetches kgo.Fetches) {
	applied := 0
	for record := range fetches.RecordsAll() {
		ev, err := recToEvent(record)
		if err != nil {
			c.metrics.EventDropped()
			c.logger.WarnContext(ctx, "dropping event",
				"partition", record.Partition, "offset", record.Offset, "error", err)
			continue
		}
		c.index.Apply(ev)
		c.metrics.EventApplied(ev.Type)
		applied++
	}
	if applied > 0 {
		c.metrics.IndexSize(c.index.Len())
	}
}
