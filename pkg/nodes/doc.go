// Package nodes provides the node model and the registry the host consumes.
//
// It is organized into sub-packages:
//   - [github.com/karlmeister/kns/pkg/nodes/node]: Node, Slot and Output declarations, host-boundary argument decoding and JSON Schema generation
//   - [github.com/karlmeister/kns/pkg/nodes/registry]: Registry holding the class and display-name mappings, invocation and handler middleware
//
// The node sub-package is the foundation layer. Node implementations live under
// [github.com/karlmeister/kns/pkg/kns] and host transports under
// [github.com/karlmeister/kns/pkg/host]; both depend on registry and node only.
package nodes
