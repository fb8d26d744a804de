// Package choose provides the A_IfNotNone node, which forwards its first input
// when it is connected and its second otherwise.
package choose

import (
	"context"

	"github.com/karlmeister/kns/pkg/kns"
	"github.com/karlmeister/kns/pkg/nodes/node"
	"github.com/karlmeister/kns/pkg/nodes/registry"
)

// Optional is a value that may be absent. The zero Optional is absent.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FirstPresent returns a's value when a is present and b's value otherwise,
// together with whether a was absent. Presence decides, not the value: a
// present zero value is still chosen.
func FirstPresent[T any](a, b Optional[T]) (T, bool) {
	if a.Valid {
		return a.Value, false
	}

	return b.Value, true
}

// Nodes returns a Registry with the A_IfNotNone node.
func Nodes() *registry.Registry {
	r := registry.New()

	r.Register(node.Node{
		Name:        "A_IfNotNone",
		Title:       "A If Not None.",
		Category:    kns.Category,
		Description: "Outputs input_a when it is connected, input_b otherwise.",
		Inputs: []node.Slot{
			{Name: "input_a", Type: node.Any},
			{Name: "input_b", Type: node.Any},
		},
		Outputs: []node.Output{
			{Name: "output", Type: node.Any},
			{Name: "is_input_a_none", Type: node.Boolean},
		},
		Handler: handleChoose,
	})

	return r
}

func handleChoose(_ context.Context, args node.Args) (node.Values, error) {
	out, aAbsent := FirstPresent(optional(args, "input_a"), optional(args, "input_b"))

	return node.Values{out, aAbsent}, nil
}

func optional(args node.Args, name string) Optional[any] {
	v, ok := args.Value(name)
	if !ok {
		return None[any]()
	}

	return Some(v)
}
