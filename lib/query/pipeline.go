package query

import (
	"context"
	"slices"

	"github.com/ecociel/taskview/lib/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/ecociel/taskview/lib/query")

// Source provides the records a query runs over. Run never modifies the
// returned slice.
type Source interface {
	Snapshot() []*domain.Task
}

type Request struct {
	Offset int
	// Limit caps the page size. Negative means no limit, zero yields an
	// empty page.
	Limit          int
	SortField      string
	SortDescending bool
	Search         string
	NameFilter     string
	WorkerFilter   string
}

type Result struct {
	Page     []*domain.Task
	Total    int
	Filtered int
}

// Run filters, sorts and paginates the current snapshot of src.
func Run(ctx context.Context, src Source, req Request) Result {
	_, span := tracer.Start(ctx, "query.Run", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	snapshot := src.Snapshot()
	res := Result{Total: len(snapshot)}

	var terms []Term
	if req.Search != "" {
		terms = ParseSearchTerms(req.Search)
	}

	filtered := Filter(snapshot, terms, req.NameFilter, req.WorkerFilter)
	res.Filtered = len(filtered)

	if req.SortField != "" {
		sortTasks(filtered, req.SortField, req.SortDescending)
	}
	res.Page = paginate(filtered, req.Offset, req.Limit)

	span.SetAttributes(
		attribute.String("query.sort_field", req.SortField),
		attribute.Bool("query.sort_descending", req.SortDescending),
		attribute.Int("query.total", res.Total),
		attribute.Int("query.filtered", res.Filtered),
		attribute.Int("query.page", len(res.Page)),
	)
	return res
}

type keyed struct {
	task *domain.Task
	key  Value
}

// sortTasks orders tasks in place by field. Nulls stay last in both
// directions and ties keep their relative order.
func sortTasks(tasks []*domain.Task, field string, descending bool) {
	items := make([]keyed, len(tasks))
	for i, t := range tasks {
		items[i] = keyed{task: t, key: SortKey(t, field)}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		if a.key.IsNull() || b.key.IsNull() {
			return a.key.Compare(b.key)
		}
		if descending {
			return b.key.Compare(a.key)
		}
		return a.key.Compare(b.key)
	})
	for i := range items {
		tasks[i] = items[i].task
	}
}

func paginate(tasks []*domain.Task, offset, limit int) []*domain.Task {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(tasks) || limit == 0 {
		return []*domain.Task{}
	}
	end := len(tasks)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return tasks[offset:end]
}
