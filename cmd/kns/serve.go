package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/karlmeister/kns/pkg/host/mcpserver"
	"github.com/karlmeister/kns/pkg/host/wsbridge"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		transport string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the nodes to a graph host",
		Long: `Serves every node to a host until interrupted.

Transports:
  stdio  MCP over stdin/stdout; each node is a tool
  ws     websocket bridge answering "call" and "object_info" frames`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if addr == "" {
				addr = c.cfg.Server.WSAddr
			}

			return c.serve(ctx, transport, addr)
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "host transport: stdio or ws")
	cmd.Flags().StringVar(&addr, "addr", "", "websocket listen address (default: server.ws_addr)")

	return cmd
}

func (c *cli) serve(ctx context.Context, transport, addr string) error {
	reg, err := c.registry()
	if err != nil {
		return err
	}

	c.logger.Info("serving nodes",
		zap.String("transport", transport),
		zap.Int("nodes", len(reg.Nodes())),
	)

	switch transport {
	case "stdio":
		srv := mcpserver.New(c.cfg.Server.Name, c.cfg.Server.Version)
		if err := srv.Register(reg); err != nil {
			return err
		}
		return srv.Serve(ctx, os.Stdin, os.Stdout)
	case "ws":
		bridge, err := wsbridge.New(reg, c.logger)
		if err != nil {
			return err
		}
		return bridge.ListenAndServe(ctx, addr)
	}

	return fmt.Errorf("unknown transport %q (use stdio or ws)", transport)
}
