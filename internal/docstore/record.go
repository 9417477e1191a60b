package docstore

import (
	"encoding/json"
	"fmt"
	"reflect"
)

const IDField = "id"

type Record map[string]any

type Collection []Record

func (r Record) ID() string {
	id, _ := r[IDField].(string)
	return id
}

// Clone is shallow: nested maps and slices are shared with r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (c Collection) indexOf(id string) int {
	for i, r := range c {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

type Filter struct {
	Field string
	Value any
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

func (f Filter) Match(r Record) bool {
	v, ok := r[f.Field]
	if !ok {
		return false
	}
	return equalValues(v, f.Value)
}

func matchAll(r Record, filters []Filter) bool {
	for _, f := range filters {
		if !f.Match(r) {
			return false
		}
	}
	return true
}

func equalValues(have, want any) bool {
	if have == nil || want == nil {
		return have == nil && want == nil
	}
	// stored numbers decode as float64, callers may filter with any numeric type
	if hf, ok := asFloat(have); ok {
		if wf, ok := asFloat(want); ok {
			return hf == wf
		}
	}
	if reflect.TypeOf(have).Comparable() && reflect.TypeOf(want).Comparable() && have == want {
		return true
	}
	// query strings carry every filter value as text
	if s, ok := want.(string); ok {
		switch have.(type) {
		case string, bool, float64, float32, int, int64, int32, uint, uint64:
			return fmt.Sprint(have) == s
		}
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
