package query

import (
	"strconv"
	"strings"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/guregu/null/v6"
)

// Accessor extracts one named field from a task record.
type Accessor func(t *domain.Task) Value

var accessors = map[string]Accessor{
	"id":   func(t *domain.Task) Value { return String(t.ID) },
	"uuid": func(t *domain.Task) Value { return String(t.ID) },
	"name": func(t *domain.Task) Value {
		if t.Name == "" {
			return bagValue(t, "name")
		}
		return String(t.Name)
	},
	"state": func(t *domain.Task) Value {
		if t.State == "" {
			return bagValue(t, "state")
		}
		return String(t.State)
	},
	"received":  func(t *domain.Task) Value { return floatValue(t, "received", t.Received) },
	"started":   func(t *domain.Task) Value { return floatValue(t, "started", t.Started) },
	"timestamp": func(t *domain.Task) Value { return floatValue(t, "timestamp", t.Timestamp) },
	"runtime":   func(t *domain.Task) Value { return floatValue(t, "runtime", t.Runtime) },
	"retries": func(t *domain.Task) Value {
		if t.Retries.Valid {
			return Int(t.Retries.Int64)
		}
		return bagValue(t, "retries")
	},
	"worker": func(t *domain.Task) Value {
		if t.Worker == nil {
			return Null()
		}
		return String(t.Worker.Hostname)
	},
}

// Field returns the accessor registered for name. Unknown names read the
// task's open field bag and yield null when the field is absent.
func Field(name string) Accessor {
	if a, ok := accessors[name]; ok {
		return a
	}
	return func(t *domain.Task) Value { return bagValue(t, name) }
}

// Lookup reads the named field of t.
func Lookup(t *domain.Task, name string) Value {
	return Field(name)(t)
}

func floatValue(t *domain.Task, name string, f null.Float) Value {
	if f.Valid {
		return Float(f.Float64)
	}
	return bagValue(t, name)
}

func bagValue(t *domain.Task, name string) Value {
	v, ok := t.Fields[name]
	if !ok {
		return Null()
	}
	return Of(v)
}

type coercion uint8

const (
	toString coercion = iota + 1
	toFloat
)

var normalizable = map[string]coercion{
	"name":     toString,
	"state":    toString,
	"received": toFloat,
	"started":  toFloat,
	"runtime":  toFloat,
}

// Normalizable reports whether values of field are coerced before sorting.
func Normalizable(field string) bool {
	_, ok := normalizable[field]
	return ok
}

// Normalize coerces v to the canonical sort type of field. A value that
// does not convert is returned unchanged; other fields pass through.
func Normalize(field string, v Value) Value {
	if v.IsNull() {
		return v
	}
	switch normalizable[field] {
	case toString:
		if v.kind == KindString {
			return v
		}
		return String(v.String())
	case toFloat:
		switch v.kind {
		case KindNumber:
			if _, ok := v.raw.(float64); ok {
				return v
			}
			return Float(v.num)
		case KindString:
			f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
			if err != nil {
				return v
			}
			return Float(f)
		}
	}
	return v
}

const sortKeyMemo = "sortkey:"

// SortKey returns the value t is ordered by for field. Normalized keys are
// computed once per record version and reused by later queries.
func SortKey(t *domain.Task, field string) Value {
	acc := Field(field)
	if !Normalizable(field) {
		return acc(t)
	}
	return t.Memo(sortKeyMemo+field, func() any {
		return Normalize(field, acc(t))
	}).(Value)
}
