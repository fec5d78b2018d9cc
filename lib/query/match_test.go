package query

import (
	"testing"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
)

func matchFixture() *domain.Task {
	return &domain.Task{
		ID:      "a1b2",
		Name:    "tasks.Add",
		State:   domain.StateSuccess,
		Runtime: null.FloatFrom(1.5),
		Retries: null.IntFrom(2),
		Worker:  &domain.Worker{Hostname: "celery@Worker-1"},
		Fields:  map[string]any{"result": "3", "eta": nil},
	}
}

func TestMatches(t *testing.T) {
	task := matchFixture()
	tests := []struct {
		name   string
		search string
		task   string
		worker string
		want   bool
	}{
		{"no terms", "", "", "", true},
		{"bare term on name", "add", "", "", true},
		{"bare term is case-insensitive", "ADD", "", "", true},
		{"bare term never matches other fields", "success", "", "", false},
		{"keyed substring", "state:succ", "", "", true},
		{"keyed number", "runtime:1.5", "", "", true},
		{"keyed int", "retries:2", "", "", true},
		{"keyed worker", "worker:worker-1", "", "", true},
		{"keyed bag field", "result:3", "", "", true},
		{"keyed absent field", "expires:1", "", "", false},
		{"keyed null field", "eta:x", "", "", false},
		{"keyed mismatch", "state:fail", "", "", false},
		{"all terms must match", "add state:failure", "", "", false},
		{"name filter", "", "tasks.a", "", true},
		{"name filter mismatch", "", "sub", "", false},
		{"worker filter", "", "", "WORKER", true},
		{"worker filter mismatch", "", "", "w2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Matches(task, ParseSearchTerms(tt.search), tt.task, tt.worker)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatches_NoWorker(t *testing.T) {
	task := matchFixture()
	task.Worker = nil

	assert.False(t, Matches(task, nil, "", "w"))
	assert.True(t, Matches(task, nil, "", ""))
	assert.False(t, Matches(task, ParseSearchTerms("worker:w"), "", ""))
}

func TestMatches_Conjunction(t *testing.T) {
	task := matchFixture()
	sets := [][]Term{
		ParseSearchTerms("add"),
		ParseSearchTerms("state:success"),
		ParseSearchTerms("state:failure"),
		ParseSearchTerms("worker:w2"),
		ParseSearchTerms("retries:2 runtime:1"),
		nil,
	}
	for _, a := range sets {
		for _, b := range sets {
			both := append(append([]Term{}, a...), b...)
			want := Matches(task, a, "", "") && Matches(task, b, "", "")
			assert.Equal(t, want, Matches(task, both, "", ""), "%v + %v", a, b)
		}
	}
}

func TestFilter_KeepsOrder(t *testing.T) {
	tasks := []*domain.Task{
		{ID: "1", Name: "add"},
		{ID: "2", Name: "sub"},
		{ID: "3", Name: "add_many"},
	}
	got := Filter(tasks, ParseSearchTerms("add"), "", "")

	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}
