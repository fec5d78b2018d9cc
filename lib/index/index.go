package index

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/guregu/null/v6"
)

// Index keeps the latest version of every known task. Records are
// copy-on-write: Apply stores a fresh version and never touches one that a
// snapshot may still hold.
type Index struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.Task
	order    []string
	maxTasks int
}

// New returns an empty index retaining at most maxTasks records, oldest
// inserted first out. Zero keeps everything.
func New(maxTasks int) *Index {
	return &Index{tasks: make(map[string]*domain.Task), maxTasks: maxTasks}
}

func (idx *Index) Apply(ev domain.Event) *domain.Task {
	if ev.TaskID == "" {
		return nil
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	cur, ok := idx.tasks[ev.TaskID]
	var next *domain.Task
	switch {
	case ok && ev.Type == domain.EventTaskScheduled && cur.State != domain.StatePending:
		next = cur.Clone()
		fillMissing(next, ev)
	case ok:
		next = cur.Clone()
		applyEvent(next, ev)
	default:
		next = &domain.Task{ID: ev.TaskID, State: domain.StatePending, Fields: make(map[string]any)}
		idx.order = append(idx.order, ev.TaskID)
		applyEvent(next, ev)
	}
	idx.tasks[ev.TaskID] = next
	if !ok {
		idx.evictLocked()
	}
	return next
}

func (idx *Index) evictLocked() {
	for idx.maxTasks > 0 && len(idx.order) > idx.maxTasks {
		delete(idx.tasks, idx.order[0])
		idx.order = idx.order[1:]
	}
}

func (idx *Index) Get(id string) (*domain.Task, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	t, ok := idx.tasks[id]
	return t, ok
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.tasks)
}

// Snapshot returns the current record versions, newest timestamp first.
// Records without a timestamp come last; ties keep the most recently
// inserted record first.
func (idx *Index) Snapshot() []*domain.Task {
	idx.mu.RLock()
	tasks := make([]*domain.Task, 0, len(idx.order))
	for i := len(idx.order) - 1; i >= 0; i-- {
		tasks = append(tasks, idx.tasks[idx.order[i]])
	}
	idx.mu.RUnlock()

	slices.SortStableFunc(tasks, func(a, b *domain.Task) int {
		switch {
		case a.Timestamp.Valid && b.Timestamp.Valid:
			return cmp.Compare(b.Timestamp.Float64, a.Timestamp.Float64)
		case a.Timestamp.Valid:
			return -1
		case b.Timestamp.Valid:
			return 1
		}
		return 0
	})
	return tasks
}

var eventStates = map[string]string{
	domain.EventTaskScheduled: domain.StatePending,
	domain.EventTaskReceived:  domain.StateReceived,
	domain.EventTaskStarted:   domain.StateStarted,
	domain.EventTaskSucceeded: domain.StateSuccess,
	domain.EventTaskFailed:    domain.StateFailure,
	domain.EventTaskRetried:   domain.StateRetry,
	domain.EventTaskRevoked:   domain.StateRevoked,
}

func applyEvent(t *domain.Task, ev domain.Event) {
	for k, v := range ev.Fields {
		setField(t, k, v)
	}
	if ev.Hostname != "" {
		t.Worker = &domain.Worker{Hostname: ev.Hostname}
	}
	if ev.Timestamp > 0 {
		t.Timestamp = null.FloatFrom(ev.Timestamp)
	}

	switch ev.Type {
	case domain.EventTaskReceived:
		if _, ok := ev.Fields["received"]; !ok && ev.Timestamp > 0 {
			t.Received = null.FloatFrom(ev.Timestamp)
		}
	case domain.EventTaskStarted:
		if _, ok := ev.Fields["started"]; !ok && ev.Timestamp > 0 {
			t.Started = null.FloatFrom(ev.Timestamp)
		}
	case domain.EventTaskRetried:
		if _, ok := ev.Fields["retries"]; !ok {
			t.Retries = null.IntFrom(t.Retries.Int64 + 1)
		}
	case domain.EventTaskRevoked:
		if _, ok := ev.Fields["revoked"]; !ok && ev.Timestamp > 0 {
			t.Fields["revoked"] = ev.Timestamp
		}
	}

	state, ok := eventStates[ev.Type]
	if !ok {
		return
	}
	// late events never pull a task out of a ready state
	if domain.IsReady(t.State) && !domain.IsReady(state) {
		return
	}
	t.State = state
}

// fillMissing merges a scheduled event into a record workers already
// reported on. It only fills fields the record lacks; state, timestamp and
// retries stay with the worker events.
func fillMissing(t *domain.Task, ev domain.Event) {
	for k, v := range ev.Fields {
		switch k {
		case "state", "timestamp", "retries":
			continue
		}
		if missing(t, k) {
			setField(t, k, v)
		}
	}
}

func missing(t *domain.Task, field string) bool {
	switch field {
	case "name":
		return t.Name == ""
	case "hostname":
		return t.Worker == nil
	case "received":
		return !t.Received.Valid && t.Fields[field] == nil
	case "started":
		return !t.Started.Valid && t.Fields[field] == nil
	case "runtime":
		return !t.Runtime.Valid && t.Fields[field] == nil
	}
	_, ok := t.Fields[field]
	return !ok
}

func setField(t *domain.Task, key string, v any) {
	switch key {
	case "name":
		if v != nil {
			t.Name = fmt.Sprint(v)
		}
	case "state":
		if v != nil {
			t.State = fmt.Sprint(v)
		}
	case "hostname":
		if s, ok := v.(string); ok && s != "" {
			t.Worker = &domain.Worker{Hostname: s}
		}
	case "received":
		t.Received = floatField(t, key, v)
	case "started":
		t.Started = floatField(t, key, v)
	case "timestamp":
		t.Timestamp = floatField(t, key, v)
	case "runtime":
		t.Runtime = floatField(t, key, v)
	case "retries":
		if n, ok := asInt(v); ok {
			t.Retries = null.IntFrom(n)
			delete(t.Fields, key)
			return
		}
		t.Retries = null.Int{}
		if v != nil {
			t.Fields[key] = v
		}
	default:
		t.Fields[key] = v
	}
}

// floatField returns the typed value for a numeric field. Any other
// representation is kept raw in the bag so it can still be matched and
// normalized at query time.
func floatField(t *domain.Task, key string, v any) null.Float {
	if f, ok := asFloat(v); ok {
		delete(t.Fields, key)
		return null.FloatFrom(f)
	}
	if v == nil {
		delete(t.Fields, key)
	} else {
		t.Fields[key] = v
	}
	return null.Float{}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}
