package datatable

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/guregu/null/v6"
)

// Row is one task flattened for the table widget.
type Row map[string]any

// FormatFunc lets the operator rewrite a task before it is rendered. It
// receives a copy and may modify and return it.
type FormatFunc func(t *domain.Task) (*domain.Task, error)

// Project flattens t. The worker is reduced to its hostname and timestamp
// is always present.
func Project(t *domain.Task) Row {
	row := make(Row, len(t.Fields)+9)
	for k, v := range t.Fields {
		row[k] = v
	}
	row["id"] = t.ID
	row["name"] = t.Name
	row["state"] = t.State
	setFloat(row, "received", t.Received)
	setFloat(row, "started", t.Started)
	setFloat(row, "runtime", t.Runtime)
	if t.Retries.Valid {
		row["retries"] = t.Retries.Int64
	} else if _, ok := row["retries"]; !ok {
		row["retries"] = nil
	}
	if t.Timestamp.Valid {
		row["timestamp"] = t.Timestamp.Float64
	} else {
		row["timestamp"] = nil
	}
	if t.Worker != nil {
		row["worker"] = t.Worker.Hostname
	} else {
		row["worker"] = nil
	}
	return row
}

func setFloat(row Row, key string, f null.Float) {
	if f.Valid {
		row[key] = f.Float64
		return
	}
	if _, ok := row[key]; !ok {
		row[key] = nil
	}
}

// applyFormat runs format on a copy of t. A failing or panicking hook is
// logged and the original record is used.
func applyFormat(ctx context.Context, logger *slog.Logger, format FormatFunc, t *domain.Task) (out *domain.Task) {
	if format == nil {
		return t
	}
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "failed to format task", "task_id", t.ID, "panic", fmt.Sprint(r))
			out = t
		}
	}()
	formatted, err := format(t.Clone())
	if err != nil {
		logger.ErrorContext(ctx, "failed to format task", "task_id", t.ID, "error", err)
		return t
	}
	if formatted == nil {
		return t
	}
	return formatted
}
