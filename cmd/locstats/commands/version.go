package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstats/pkg/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeLine(cmd.OutOrStdout(), version.String())
		},
	}
}
