package domain

import (
	"sync"

	"github.com/guregu/null/v6"
)

const HeaderID = "id"
const HeaderType = "type"
const HeaderHostname = "hostname"
const HeaderTimestamp = "timestamp"

// Event types as emitted by workers and by the scheduler.
const (
	EventTaskScheduled = "task-scheduled"
	EventTaskReceived  = "task-received"
	EventTaskStarted   = "task-started"
	EventTaskSucceeded = "task-succeeded"
	EventTaskFailed    = "task-failed"
	EventTaskRetried   = "task-retried"
	EventTaskRevoked   = "task-revoked"
)

const (
	StatePending  = "PENDING"
	StateReceived = "RECEIVED"
	StateStarted  = "STARTED"
	StateSuccess  = "SUCCESS"
	StateFailure  = "FAILURE"
	StateRetry    = "RETRY"
	StateRevoked  = "REVOKED"
)

// IsReady reports whether state is terminal.
func IsReady(state string) bool {
	switch state {
	case StateSuccess, StateFailure, StateRevoked:
		return true
	}
	return false
}

type Worker struct {
	Hostname string
}

// Task is one version of a task record. Published versions are never
// mutated; the index swaps in a Clone for every applied event.
type Task struct {
	ID        string
	Name      string
	State     string
	Received  null.Float
	Started   null.Float
	Timestamp null.Float
	Runtime   null.Float
	Retries   null.Int
	Worker    *Worker

	// Fields holds every other payload field, and the raw value of a known
	// field that did not arrive as a number.
	Fields map[string]any

	memoMu sync.Mutex
	memo   map[string]any
}

// Clone copies the record without its memoized values.
func (t *Task) Clone() *Task {
	fields := make(map[string]any, len(t.Fields))
	for k, v := range t.Fields {
		fields[k] = v
	}
	return &Task{
		ID:        t.ID,
		Name:      t.Name,
		State:     t.State,
		Received:  t.Received,
		Started:   t.Started,
		Timestamp: t.Timestamp,
		Runtime:   t.Runtime,
		Retries:   t.Retries,
		Worker:    t.Worker,
		Fields:    fields,
	}
}

// Memo returns the value cached under key, computing it once per record
// version.
func (t *Task) Memo(key string, compute func() any) any {
	t.memoMu.Lock()
	defer t.memoMu.Unlock()
	if v, ok := t.memo[key]; ok {
		return v
	}
	if t.memo == nil {
		t.memo = make(map[string]any, 1)
	}
	v := compute()
	t.memo[key] = v
	return v
}

// Event is a task lifecycle event as carried on the events topic.
type Event struct {
	Type      string
	TaskID    string
	Hostname  string
	Timestamp float64
	Fields    map[string]any
}
