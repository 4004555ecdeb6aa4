// Package commands implements the locstats CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

// Global flag names.
const (
	flagConfig  = "config"
	flagInput   = "input"
	flagNoColor = "no-color"
	flagFormat  = "format"
	flagLimit   = "limit"
)

// NewRootCommand creates the locstats root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "locstats",
		Short: "Commit history statistics from a per-line code log",
		Long: `locstats ingests a CSV log with one row per source line per commit,
aggregates it into commits and files, and answers "what did the code look like
at time T" for a time slider, a scroll story or a brush on the commit scatterplot.

Commands:
  stats     Summary, languages, largest files and recent commits
  metrics   The commit metrics behind stats
  window    The history as of a cutoff, progress or story step
  select    Commits inside a brush rectangle on the scatterplot
  plot      Standalone HTML report
  cache     Build or validate the precomputed cache
  serve     HTTP and WebSocket API with the live report
  mcp       MCP server for AI agents`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String(flagConfig, "", "Config file (default: ./locstats.yaml or ~/.config/locstats/locstats.yaml)")
	root.PersistentFlags().StringP(flagInput, "i", "", "Line log CSV (overrides input.path)")
	root.PersistentFlags().Bool(flagNoColor, false, "Disable colored output")

	root.AddCommand(NewStatsCommand())
	root.AddCommand(NewMetricsCommand())
	root.AddCommand(NewWindowCommand())
	root.AddCommand(NewSelectCommand())
	root.AddCommand(NewPlotCommand())
	root.AddCommand(NewCacheCommand())
	root.AddCommand(NewServeCommand())
	root.AddCommand(NewMCPCommand())
	root.AddCommand(NewVersionCommand())

	return root
}
