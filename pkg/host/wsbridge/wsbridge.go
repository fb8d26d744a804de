// Package wsbridge serves a node registry to a graph host over a websocket.
// The host sends one JSON frame per node evaluation and receives the labelled
// output tuple for it. Frames on one connection are answered in order.
package wsbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/karlmeister/kns/pkg/nodes/node"
	"github.com/karlmeister/kns/pkg/nodes/registry"
	"go.uber.org/zap"
)

// Frame types.
const (
	TypeCall       = "call"
	TypeObjectInfo = "object_info"
	TypeResult     = "result"
	TypeError      = "error"
)

const readLimit = 1 << 20

// Request is a frame sent by the host.
type Request struct {
	Type   string          `json:"type,omitempty"`
	ID     string          `json:"id,omitempty"`
	Node   string          `json:"node,omitempty"`
	Inputs json.RawMessage `json:"inputs,omitempty"`
}

// Response is a frame sent back to the host.
type Response struct {
	Type    string            `json:"type"`
	ID      string            `json:"id,omitempty"`
	Node    string            `json:"node,omitempty"`
	Outputs []node.NamedValue `json:"outputs,omitempty"`
	Nodes   []NodeInfo        `json:"nodes,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// NodeInfo describes a node for the host editor.
type NodeInfo struct {
	Name        string          `json:"name"`
	Title       string          `json:"display_name"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Input       json.RawMessage `json:"input"`
	Output      []node.Output   `json:"output"`
}

// Bridge is an http.Handler that upgrades requests to websocket connections.
type Bridge struct {
	reg  *registry.Registry
	log  *zap.Logger
	info []NodeInfo
}

// New creates a Bridge for reg. Node schemas are computed once here.
func New(reg *registry.Registry, log *zap.Logger) (*Bridge, error) {
	nodes := reg.Nodes()
	info := make([]NodeInfo, 0, len(nodes))

	for _, n := range nodes {
		schema, err := n.RawSchema()
		if err != nil {
			return nil, fmt.Errorf("wsbridge: %w", err)
		}
		info = append(info, NodeInfo{
			Name:        n.Name,
			Title:       n.Title,
			Category:    n.Category,
			Description: n.Description,
			Input:       schema,
			Output:      n.Outputs,
		})
	}

	return &Bridge{reg: reg, log: log, info: info}, nil
}

// ServeHTTP accepts a websocket connection and answers frames until the peer
// closes it or the request context ends.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		b.log.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.CloseNow() }()

	conn.SetReadLimit(readLimit)

	if err := b.serveConn(r.Context(), conn); err != nil {
		b.log.Debug("websocket closed", zap.Error(err))
		return
	}

	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func (b *Bridge) serveConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return err
		}

		resp := b.Handle(ctx, data)

		out, err := node.Codec.Marshal(resp)
		if err != nil {
			return fmt.Errorf("wsbridge: encode response: %w", err)
		}

		if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
			return err
		}
	}
}

// Handle answers a single frame.
func (b *Bridge) Handle(ctx context.Context, data []byte) Response {
	var req Request
	if err := node.Codec.Unmarshal(data, &req); err != nil {
		return Response{Type: TypeError, Error: fmt.Sprintf("invalid frame: %v", err)}
	}

	switch req.Type {
	case TypeObjectInfo:
		return Response{Type: TypeObjectInfo, ID: req.ID, Nodes: b.info}
	case TypeCall, "":
		res := b.reg.Invoke(ctx, registry.Call{ID: req.ID, Node: req.Node, Arguments: req.Inputs})
		if res.Err != nil {
			return Response{Type: TypeError, ID: req.ID, Node: req.Node, Error: res.Err.Error()}
		}

		n, _ := b.reg.Get(req.Node)

		return Response{Type: TypeResult, ID: req.ID, Node: req.Node, Outputs: n.Label(res.Outputs)}
	}

	return Response{Type: TypeError, ID: req.ID, Error: fmt.Sprintf("unknown frame type %q", req.Type)}
}

// ListenAndServe serves the bridge on addr until ctx is cancelled.
func (b *Bridge) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("wsbridge: listen: %w", err)
	}

	return b.Serve(ctx, ln)
}

// Serve serves the bridge on ln until ctx is cancelled.
func (b *Bridge) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           b,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	b.log.Info("websocket bridge listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return fmt.Errorf("wsbridge: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("wsbridge: shutdown: %w", err)
	}

	return nil
}
