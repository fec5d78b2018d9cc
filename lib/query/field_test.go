package query

import (
	"testing"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_KnownFields(t *testing.T) {
	task := &domain.Task{
		ID:        "6f1c",
		Name:      "tasks.add",
		State:     domain.StateSuccess,
		Received:  null.FloatFrom(100),
		Runtime:   null.FloatFrom(0.25),
		Retries:   null.IntFrom(2),
		Worker:    &domain.Worker{Hostname: "celery@w1"},
		Fields:    map[string]any{"args": "(1, 2)"},
		Timestamp: null.FloatFrom(101),
	}

	assert.Equal(t, "6f1c", Lookup(task, "id").String())
	assert.Equal(t, "6f1c", Lookup(task, "uuid").String())
	assert.Equal(t, "tasks.add", Lookup(task, "name").String())
	assert.Equal(t, domain.StateSuccess, Lookup(task, "state").String())
	assert.Equal(t, 100.0, Lookup(task, "received").Interface())
	assert.Equal(t, int64(2), Lookup(task, "retries").Interface())
	assert.Equal(t, "celery@w1", Lookup(task, "worker").String())
	assert.Equal(t, "(1, 2)", Lookup(task, "args").String())
	assert.True(t, Lookup(task, "started").IsNull())
	assert.True(t, Lookup(task, "no_such_field").IsNull())
}

func TestLookup_FallsBackToBag(t *testing.T) {
	task := &domain.Task{ID: "1", Fields: map[string]any{"received": "1700000000.5", "name": "from-bag"}}

	assert.Equal(t, "1700000000.5", Lookup(task, "received").Interface())
	assert.Equal(t, "from-bag", Lookup(task, "name").String())
	assert.True(t, Lookup(task, "worker").IsNull())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		field string
		in    Value
		want  Value
	}{
		{"numeric string to float", "received", String("12.5"), Float(12.5)},
		{"padded numeric string", "started", String(" 3 "), Float(3)},
		{"int to float", "runtime", Int(4), Float(4)},
		{"bad string left as is", "runtime", String("soon"), String("soon")},
		{"null stays null", "received", Null(), Null()},
		{"number to string", "name", Int(7), String("7")},
		{"string stays string", "state", String("SUCCESS"), String("SUCCESS")},
		{"other field untouched", "retries", String("3"), String("3")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.field, tt.in)
			assert.Equal(t, tt.want.Kind(), got.Kind())
			assert.Equal(t, tt.want.Interface(), got.Interface())
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []Value{String("1.5"), String("x"), Int(3), Float(2), Null(), Bool(true), String("")}
	for _, field := range []string{"name", "state", "received", "started", "runtime", "retries"} {
		for _, in := range inputs {
			once := Normalize(field, in)
			twice := Normalize(field, once)
			assert.Equal(t, once.Kind(), twice.Kind(), "%s %v", field, in)
			assert.Equal(t, once.Interface(), twice.Interface(), "%s %v", field, in)
		}
	}
}

func TestSortKey_DoesNotRewriteRecord(t *testing.T) {
	task := &domain.Task{ID: "1", Fields: map[string]any{"received": "42"}}

	key := SortKey(task, "received")
	require.Equal(t, KindNumber, key.Kind())
	assert.Equal(t, 42.0, key.Interface())

	assert.Equal(t, "42", task.Fields["received"], "stored value must stay as ingested")
	assert.False(t, task.Received.Valid)

	again := SortKey(task, "received")
	assert.True(t, key.Equal(again))
}

func TestSortKey_MemoizedPerVersion(t *testing.T) {
	task := &domain.Task{ID: "1", Fields: map[string]any{"runtime": "1.5"}}
	require.Equal(t, 1.5, SortKey(task, "runtime").Interface())

	next := task.Clone()
	next.Fields["runtime"] = "2.5"

	assert.Equal(t, 1.5, SortKey(task, "runtime").Interface())
	assert.Equal(t, 2.5, SortKey(next, "runtime").Interface())
}
