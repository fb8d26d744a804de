package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/karlmeister/kns/pkg/nodes/node"
)

// ErrNotFound is returned when a call names a node that is not registered.
var ErrNotFound = errors.New("node not found")

// Call is a request from the host to evaluate one node instance.
type Call struct {
	ID        string
	Node      string
	Arguments json.RawMessage
}

// Result holds the outputs of one invocation. Err is set when the node was
// not found, its arguments did not decode, or the handler failed.
type Result struct {
	ID      string
	Node    string
	Outputs node.Values
	Err     error
}

// IsError reports whether the invocation failed.
func (r Result) IsError() bool { return r.Err != nil }

type callIDKey struct{}

// CallID returns the ID of the call being evaluated, if any.
func CallID(ctx context.Context) string {
	id, _ := ctx.Value(callIDKey{}).(string)
	return id
}

// Registry holds the nodes exposed to the host: the class mapping (name to
// node) and the display-name mapping (name to title). Registration happens
// before the registry is shared; Invoke is safe for concurrent use afterwards.
type Registry struct {
	nodes      map[string]node.Node
	middleware []Middleware
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		nodes: make(map[string]node.Node),
	}
}

// Register adds one or more nodes. A node with an existing name replaces the
// earlier one.
func (r *Registry) Register(nodes ...node.Node) {
	for _, n := range nodes {
		r.nodes[n.Name] = n
	}
}

// Use appends middleware applied to every handler on Invoke. The first
// middleware given is the outermost.
func (r *Registry) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// Get returns a node by name and whether it was found.
func (r *Registry) Get(name string) (node.Node, bool) {
	n, ok := r.nodes[name]
	return n, ok
}

// Merge registers all nodes from another Registry into this one. Middleware of
// the other registry is not carried over.
func (r *Registry) Merge(other *Registry) {
	for _, n := range other.nodes {
		r.nodes[n.Name] = n
	}
}

// Nodes returns all registered nodes sorted by name.
func (r *Registry) Nodes() []node.Node {
	result := make([]node.Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

// ClassMappings returns the name to node lookup table.
func (r *Registry) ClassMappings() map[string]node.Node {
	m := make(map[string]node.Node, len(r.nodes))
	for name, n := range r.nodes {
		m[name] = n
	}

	return m
}

// DisplayNameMappings returns the name to human-readable title lookup table.
func (r *Registry) DisplayNameMappings() map[string]string {
	m := make(map[string]string, len(r.nodes))
	for name, n := range r.nodes {
		m[name] = n.Title
	}

	return m
}

// Invoke decodes the call arguments against the node's slots and runs its
// handler through the middleware chain. Decode errors are returned through
// the chain without calling the handler.
func (r *Registry) Invoke(ctx context.Context, c Call) Result {
	res := Result{ID: c.ID, Node: c.Node}

	n, ok := r.nodes[c.Node]
	if !ok {
		res.Err = fmt.Errorf("%w: %s", ErrNotFound, c.Node)
		return res
	}

	// A decode failure still runs the chain so middleware sees it.
	h := n.Handler
	args, decodeErr := n.Decode(c.Arguments)
	if decodeErr != nil {
		h = func(context.Context, node.Args) (node.Values, error) { return nil, decodeErr }
	}

	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](n, h)
	}

	if c.ID != "" {
		ctx = context.WithValue(ctx, callIDKey{}, c.ID)
	}

	outputs, err := h(ctx, args)
	if err != nil {
		res.Err = err
		return res
	}

	if len(outputs) != len(n.Outputs) {
		res.Err = fmt.Errorf("node %s: returned %d outputs, declared %d", n.Name, len(outputs), len(n.Outputs))
		return res
	}

	res.Outputs = outputs

	return res
}
