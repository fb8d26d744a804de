package node

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Args holds the arguments of one invocation. A missing key and an explicit
// null are both absent; a present zero value is not.
type Args struct {
	values map[string]any
}

// NewArgs wraps a value map. Nil entries are treated as absent.
func NewArgs(values map[string]any) Args {
	m := make(map[string]any, len(values))
	for k, v := range values {
		if v != nil {
			m[k] = v
		}
	}

	return Args{values: m}
}

// Has reports whether the named argument is present.
func (a Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Value returns the raw argument and whether it is present.
func (a Args) Value(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Names returns the names of all present arguments, sorted.
func (a Args) Names() []string {
	names := make([]string, 0, len(a.values))
	for k := range a.values {
		names = append(names, k)
	}
	sort.Strings(names)

	return names
}

// Map returns a copy of the present arguments.
func (a Args) Map() map[string]any {
	m := make(map[string]any, len(a.values))
	for k, v := range a.values {
		m[k] = v
	}

	return m
}

// String returns the named argument if it is a string.
func (a Args) String(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// Bool returns the named argument if it is a bool.
func (a Args) Bool(name string) bool {
	b, _ := a.values[name].(bool)
	return b
}

// Tuple returns the named argument if it is a tuple.
func (a Args) Tuple(name string) []any {
	t, _ := a.values[name].([]any)
	return t
}

// Int64 returns the named argument as an int64. Absent or non-numeric
// arguments yield zero.
func (a Args) Int64(name string) int64 {
	switch v := a.values[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		i, _ := v.Int64()
		return i
	}

	return 0
}

// Uint64 returns the named argument as a uint64. Negative values yield zero.
func (a Args) Uint64(name string) uint64 {
	switch v := a.values[name].(type) {
	case uint64:
		return v
	case int64:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case int:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case float64:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case json.Number:
		u, _ := strconv.ParseUint(v.String(), 10, 64)
		return u
	}

	return 0
}

// Float64 returns the named argument as a float64.
func (a Args) Float64(name string) float64 {
	switch v := a.values[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}

	return 0
}
