package main

import (
	"fmt"

	"github.com/karlmeister/kns/pkg/config"
	"github.com/karlmeister/kns/pkg/kns/defaults"
	"github.com/karlmeister/kns/pkg/nodes/registry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cli carries state shared by the subcommands. It is filled in by the root
// command's PersistentPreRunE.
type cli struct {
	configPath string
	knsDir     string
	envFile    string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "kns",
		Short: "Karlmeister node set for graph-based image generation hosts",
		Long: `kns serves the Karlmeister nodes (seed filename generation, sampler config
bundles, text concatenation and splitting, presence-based selection) to a
graph host over MCP or a websocket bridge, and lets you inspect and call
them from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to configuration file (default: .kns/config.yaml or kns.yaml)")
	root.PersistentFlags().StringVar(&c.knsDir, "kns-dir", ".kns", "path to .kns directory")
	root.PersistentFlags().StringVar(&c.envFile, "env", ".env", "path to .env file (ignored if missing)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log every node evaluation")

	root.AddCommand(
		newServeCmd(c),
		newListCmd(c),
		newDescribeCmd(c),
		newCallCmd(c),
		newInitCmd(c),
	)

	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if err := loadDotEnv(c.envFile); err != nil {
		return err
	}

	// init writes the config file, so it must not require one to be valid.
	if cmd.Name() == "init" {
		c.cfg = config.Default()
	} else {
		load := config.LoadOrDefault
		if c.configPath != "" {
			load = config.Load
		}

		cfg, err := load(resolveConfigPath(c.configPath, c.knsDir))
		if err != nil {
			return err
		}
		c.cfg = cfg
	}

	logger, err := newLogger(c.cfg.Log, c.verbose)
	if err != nil {
		return err
	}
	c.logger = logger

	return nil
}

func (c *cli) registry() (*registry.Registry, error) {
	return defaults.New(c.cfg, c.logger)
}

// newLogger builds a zap logger writing to stderr. Stdout stays free for the
// MCP stdio transport.
func newLogger(lc config.LogConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}

	if lc.Level != "" {
		level, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}
