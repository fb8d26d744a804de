package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/karlmeister/kns/pkg/nodes/node"
	"go.uber.org/zap"
)

// Middleware wraps a node handler, returning a handler with added behaviour.
type Middleware func(n node.Node, next node.Handler) node.Handler

// --- Timeout middleware ---

// Timeout returns a Middleware that wraps the handler's context with a deadline.
func Timeout(d time.Duration) Middleware {
	return func(_ node.Node, next node.Handler) node.Handler {
		return func(ctx context.Context, args node.Args) (node.Values, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			return next(ctx, args)
		}
	}
}

// --- Recovery middleware ---

// Recovery returns a Middleware that catches panics and converts them to errors.
func Recovery() Middleware {
	return func(n node.Node, next node.Handler) node.Handler {
		return func(ctx context.Context, args node.Args) (out node.Values, err error) {
			defer func() {
				if r := recover(); r != nil {
					out = nil
					err = fmt.Errorf("node %s panicked: %v", n.Name, r)
				}
			}()

			return next(ctx, args)
		}
	}
}

// --- Logger middleware ---

// Logger returns a Middleware that logs each invocation with its duration and
// error.
func Logger(log *zap.Logger) Middleware {
	return func(n node.Node, next node.Handler) node.Handler {
		return func(ctx context.Context, args node.Args) (node.Values, error) {
			start := time.Now()

			out, err := next(ctx, args)

			duration := time.Since(start)

			if err != nil {
				log.Error("node failed",
					zap.String("node", n.Name),
					zap.String("call_id", CallID(ctx)),
					zap.Duration("duration", duration),
					zap.Error(err),
				)
			} else {
				log.Debug("node evaluated",
					zap.String("node", n.Name),
					zap.String("call_id", CallID(ctx)),
					zap.Strings("inputs", args.Names()),
					zap.Duration("duration", duration),
				)
			}

			return out, err
		}
	}
}
