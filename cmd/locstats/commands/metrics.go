package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/terminal"
)

// NewMetricsCommand creates the command listing the registered commit metrics.
func NewMetricsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "List the commit metrics computed by stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formatErr := validateFormat(format)
			if formatErr != nil {
				return formatErr
			}

			infos := commits.NewRegistry().Describe()

			if format != FormatText {
				return writeStructured(cmd.OutOrStdout(), format, infos)
			}

			noColor, _ := cmd.Flags().GetBool(flagNoColor)

			cfg := terminal.NewConfig()
			cfg.NoColor = cfg.NoColor || noColor

			r := terminal.NewRenderer(cmd.OutOrStdout(), cfg)
			r.Metrics(infos)

			return r.Err()
		},
	}

	addFormatFlag(cmd, &format)

	return cmd
}
