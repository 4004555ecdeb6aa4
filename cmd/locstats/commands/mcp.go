package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstats/pkg/mcp"
	"github.com/Sumatoshi-tech/locstats/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the commit dataset as tools that AI agents can
discover and invoke:
  - locstats_summary: headline statistics, languages and largest files
  - locstats_window: the history as of a cutoff, progress or story step
  - locstats_selection: commits inside a brush on the scatterplot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := loadEnvironment(cmd, observability.ModeMCP)
			if err != nil {
				return err
			}

			obsCfg, err := observabilityConfig(env.cfg, observability.ModeMCP, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			// stdout carries the protocol.
			obsCfg.LogJSON = true

			if debug {
				obsCfg.LogLevel = slog.LevelDebug
			}

			providers, err := observability.Init(obsCfg)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			env.logger = providers.Logger

			red, redErr := observability.NewREDMetrics(providers.Meter)
			if redErr != nil {
				return redErr
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Source:    env.loader(),
				FileLimit: env.cfg.Server.FileLimit,
				Logger:    providers.Logger,
				Metrics:   red,
				Tracer:    providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}
