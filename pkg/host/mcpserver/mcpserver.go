// Package mcpserver exposes a node registry over the MCP protocol using the
// official MCP Go SDK. Every node becomes a tool whose input schema is the
// node's slot schema and whose result is the labelled output tuple.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/karlmeister/kns/pkg/nodes/node"
	"github.com/karlmeister/kns/pkg/nodes/registry"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPServer serves nodes over the MCP protocol.
type MCPServer struct {
	server *mcp.Server
}

// New creates a new MCPServer with the given name and version.
func New(name, version string) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	return &MCPServer{server: server}
}

// Register exposes every node of reg as a tool. Calls are routed through
// reg.Invoke so the registry middleware applies.
func (s *MCPServer) Register(reg *registry.Registry) error {
	for _, n := range reg.Nodes() {
		tool, err := toSDKTool(n)
		if err != nil {
			return err
		}
		s.server.AddTool(tool, toSDKHandler(reg, n))
	}

	return nil
}

// Serve starts serving MCP requests. It reads requests from in and writes
// responses to out. It blocks until ctx is cancelled or the transport closes.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

// run starts the server with the given transport. Exported via Serve for
// production use; called directly by tests with InMemoryTransport.
func (s *MCPServer) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// toSDKTool converts a node declaration to an SDK *mcp.Tool.
func toSDKTool(n node.Node) (*mcp.Tool, error) {
	schema, err := n.RawSchema()
	if err != nil {
		return nil, err
	}

	return &mcp.Tool{
		Name:        n.Name,
		Title:       n.Title,
		Description: n.Description,
		InputSchema: schema,
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, nil
}

// toSDKHandler wraps a registry invocation as an SDK ToolHandler.
func toSDKHandler(reg *registry.Registry, n node.Node) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if args == nil {
			args = json.RawMessage("{}")
		}

		res := reg.Invoke(ctx, registry.Call{ID: uuid.NewString(), Node: n.Name, Arguments: args})
		if res.Err != nil {
			return errorResult(res.Err), nil
		}

		text, err := node.Codec.MarshalToString(n.Label(res.Outputs))
		if err != nil {
			return errorResult(err), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

// nopWriteCloser wraps an io.Writer as an io.WriteCloser with a no-op Close.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
