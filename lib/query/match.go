package query

import (
	"strings"

	"github.com/ecociel/taskview/lib/domain"
)

// Matches reports whether t satisfies every term and the optional name and
// worker filters. All comparisons are case-insensitive substring checks.
func Matches(t *domain.Task, terms []Term, nameFilter, workerFilter string) bool {
	for _, term := range terms {
		if !matchTerm(t, term) {
			return false
		}
	}
	if nameFilter != "" && !containsFold(t.Name, nameFilter) {
		return false
	}
	if workerFilter != "" && (t.Worker == nil || !containsFold(t.Worker.Hostname, workerFilter)) {
		return false
	}
	return true
}

func matchTerm(t *domain.Task, term Term) bool {
	if !term.Keyed() {
		return containsFold(t.Name, term.Value)
	}
	v := Lookup(t, term.Key)
	if v.IsNull() {
		return false
	}
	return containsFold(v.String(), term.Value)
}

// Filter returns the tasks of src that match, in src order.
func Filter(src []*domain.Task, terms []Term, nameFilter, workerFilter string) []*domain.Task {
	out := make([]*domain.Task, 0, len(src))
	for _, t := range src {
		if Matches(t, terms, nameFilter, workerFilter) {
			out = append(out, t)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
