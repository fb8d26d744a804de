package node

import (
	"context"
	"errors"
)

// Type is the host-level type tag of an input or output slot.
type Type string

// Slot type tags understood by the host.
const (
	Int           Type = "INT"
	Float         Type = "FLOAT"
	String        Type = "STRING"
	Boolean       Type = "BOOLEAN"
	Combo         Type = "COMBO"
	SamplerConfig Type = "KSamplerConfigTuple"
	Any           Type = "*"
)

// MaxSeed is the largest seed value the host accepts.
const MaxSeed = ^uint64(0)

// ErrInvalidInput is returned when an argument does not match its slot
// declaration at the host boundary.
var ErrInvalidInput = errors.New("invalid input")

// Values is the ordered output tuple of a node invocation.
type Values []any

// Handler executes a node with decoded arguments and returns its outputs in
// declaration order.
type Handler func(ctx context.Context, args Args) (Values, error)

// Slot declares one input of a node.
type Slot struct {
	Name        string
	Type        Type
	Required    bool
	Default     any
	Description string

	// FLOAT bounds. Step is a UI hint only.
	Min, Max, Step *float64

	// INT bounds.
	IntMin *int64
	IntMax *uint64

	// COMBO choices.
	Choices []string

	// ForceInput hides the widget so the slot only accepts a connection.
	ForceInput bool
	Multiline  bool
}

// Output declares one element of a node's output tuple.
type Output struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Node is a registered unit of computation: a unique name, a display title,
// typed input slots, an ordered output tuple and the handler that maps one to
// the other.
type Node struct {
	Name        string
	Title       string
	Category    string
	Description string
	Inputs      []Slot
	Outputs     []Output
	Handler     Handler
}

// Slot returns the input slot with the given name.
func (n Node) Slot(name string) (Slot, bool) {
	for _, s := range n.Inputs {
		if s.Name == name {
			return s, true
		}
	}

	return Slot{}, false
}

// OutputNames returns the output names in declaration order.
func (n Node) OutputNames() []string {
	names := make([]string, len(n.Outputs))
	for i, o := range n.Outputs {
		names[i] = o.Name
	}

	return names
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// NamedValue is one output value labelled with its declaration.
type NamedValue struct {
	Name  string `json:"name"`
	Type  Type   `json:"type"`
	Value any    `json:"value"`
}

// Label pairs output values with their declarations. Values beyond the
// declared outputs are dropped.
func (n Node) Label(values Values) []NamedValue {
	out := make([]NamedValue, 0, len(n.Outputs))
	for i, o := range n.Outputs {
		if i >= len(values) {
			break
		}
		out = append(out, NamedValue{Name: o.Name, Type: o.Type, Value: values[i]})
	}

	return out
}
