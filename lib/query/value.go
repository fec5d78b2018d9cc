package query

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
)

// Value wraps one attribute value so that any two values, null included,
// are totally ordered. Null sorts after every non-null value.
type Value struct {
	kind Kind
	num  float64
	str  string
	// raw is what the value was built from, kept for projection
	raw any
}

func Null() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, str: s, raw: s} }

func Float(f float64) Value { return Value{kind: KindNumber, num: f, raw: f} }

func Int(i int64) Value { return Value{kind: KindNumber, num: float64(i), raw: i} }

func Bool(b bool) Value {
	v := Value{kind: KindNumber, raw: b}
	if b {
		v.num = 1
	}
	return v
}

// Of wraps a dynamically typed payload value.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case float64:
		return Float(x)
	case float32:
		return Float(float64(x))
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Int(int64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		return Value{kind: KindNumber, num: float64(x), raw: x}
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i)
		}
		if f, err := x.Float64(); err == nil {
			return Float(f)
		}
		return String(x.String())
	case null.Float:
		if !x.Valid {
			return Null()
		}
		return Float(x.Float64)
	case null.Int:
		if !x.Valid {
			return Null()
		}
		return Int(x.Int64)
	case null.String:
		if !x.Valid {
			return Null()
		}
		return String(x.String)
	case null.Bool:
		if !x.Valid {
			return Null()
		}
		return Bool(x.Bool)
	case fmt.Stringer:
		return String(x.String())
	}
	return Value{kind: KindString, str: fmt.Sprint(v), raw: v}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Interface returns the wrapped value, nil for null.
func (v Value) Interface() any { return v.raw }

// Compare returns -1, 0 or +1. Values of different non-null kinds never
// fail to compare: numbers order before strings.
func (v Value) Compare(o Value) int {
	switch {
	case v.kind == KindNull && o.kind == KindNull:
		return 0
	case v.kind == KindNull:
		return 1
	case o.kind == KindNull:
		return -1
	case v.kind != o.kind:
		return cmp.Compare(v.kind, o.kind)
	case v.kind == KindNumber:
		return compareNumbers(v.num, o.num)
	}
	return strings.Compare(v.str, o.str)
}

// compareNumbers orders NaN after every other number so the order stays
// total.
func compareNumbers(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	return cmp.Compare(a, b)
}

func (v Value) Less(o Value) bool { return v.Compare(o) < 0 }

func (v Value) Equal(o Value) bool { return v.Compare(o) == 0 }

// String renders the value the way search terms are matched against it.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	}
	switch x := v.raw.(type) {
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}
