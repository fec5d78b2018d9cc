package datatable

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ecociel/taskview/lib/query"
)

var ErrBadRequest = errors.New("bad request")

// Columns maps the table widget's column index to the task field sorted by.
var Columns = map[int]string{
	0:  "name",
	1:  "id",
	2:  "state",
	6:  "received",
	7:  "started",
	8:  "duration",
	9:  "runtime",
	10: "worker",
	13: "retries",
	14: "revoked",
}

type Params struct {
	Draw  int
	Query query.Request
}

// ParseParams reads the server-side processing parameters of the table
// widget. Any error wraps ErrBadRequest.
func ParseParams(form url.Values) (Params, error) {
	var p Params
	var err error

	if p.Draw, err = intParam(form, "draw"); err != nil {
		return p, err
	}
	if p.Query.Offset, err = intParam(form, "start"); err != nil {
		return p, err
	}
	if p.Query.Offset < 0 {
		return p, fmt.Errorf("%w: start must not be negative, got %d", ErrBadRequest, p.Query.Offset)
	}
	if p.Query.Limit, err = intParam(form, "length"); err != nil {
		return p, err
	}
	if p.Query.Limit < 0 {
		p.Query.Limit = -1
	}

	column, err := intParam(form, "order[0][column]")
	if err != nil {
		return p, err
	}
	field, ok := Columns[column]
	if !ok {
		return p, fmt.Errorf("%w: unknown sort column %d", ErrBadRequest, column)
	}
	p.Query.SortField = field

	switch dir := strings.TrimSpace(form.Get("order[0][dir]")); dir {
	case "asc":
	case "desc":
		p.Query.SortDescending = true
	default:
		return p, fmt.Errorf("%w: order[0][dir] must be asc or desc, got %q", ErrBadRequest, dir)
	}

	p.Query.Search = strings.TrimSpace(form.Get("search[value]"))
	p.Query.NameFilter = form.Get("taskname")
	p.Query.WorkerFilter = form.Get("workername")
	return p, nil
}

func intParam(form url.Values, name string) (int, error) {
	raw := strings.TrimSpace(form.Get(name))
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrBadRequest, name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrBadRequest, name, raw)
	}
	return n, nil
}
