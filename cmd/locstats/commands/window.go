package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstats/pkg/dataset"
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
	"github.com/Sumatoshi-tech/locstats/pkg/observability"
)

const (
	flagCutoff   = "cutoff"
	flagProgress = "progress"
	flagStep     = "step"
)

type windowCommand struct {
	format   string
	cutoff   string
	progress float64
	step     int
	limit    int
}

// NewWindowCommand creates the window command.
func NewWindowCommand() *cobra.Command {
	wc := &windowCommand{}

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Show the history as of a cutoff, slider progress or story step",
		Long: `Filter the commits and lines written at or before a cutoff instant.
The cutoff is given directly (--cutoff), as a slider position between the
first and last commit (--progress 0..100), or as a story step that ends at
the commit with that 0-based index (--step). Exactly one is required.`,
		Example: `  locstats window --progress 50
  locstats window --cutoff 2024-03-01T12:00:00Z --format json
  locstats window --step 0`,
		Args: cobra.NoArgs,
		RunE: wc.run,
	}

	addFormatFlag(cmd, &wc.format)
	cmd.Flags().StringVar(&wc.cutoff, flagCutoff, "", "Cutoff timestamp (RFC 3339)")
	cmd.Flags().Float64Var(&wc.progress, flagProgress, 0, "Slider position from 0 to 100")
	cmd.Flags().IntVar(&wc.step, flagStep, 0, "Story step (0-based commit index)")
	cmd.Flags().IntVarP(&wc.limit, flagLimit, "n", defaultListLimit, "Files to list in structured output (0 = all)")

	return cmd
}

func (wc *windowCommand) query(cmd *cobra.Command) (dataset.WindowQuery, error) {
	var query dataset.WindowQuery

	if cmd.Flags().Changed(flagCutoff) {
		cutoff, err := linelog.ParseTimestamp(wc.cutoff)
		if err != nil {
			return query, fmt.Errorf("--%s: %w", flagCutoff, err)
		}

		query.Cutoff = &cutoff
	}

	if cmd.Flags().Changed(flagProgress) {
		query.Progress = &wc.progress
	}

	if cmd.Flags().Changed(flagStep) {
		query.Step = &wc.step
	}

	return query, query.Validate()
}

func (wc *windowCommand) run(cmd *cobra.Command, _ []string) error {
	formatErr := validateFormat(wc.format)
	if formatErr != nil {
		return formatErr
	}

	query, err := wc.query(cmd)
	if err != nil {
		return err
	}

	env, err := loadEnvironment(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}

	ds, err := env.load(cmd.Context())
	if err != nil {
		return err
	}

	window, err := ds.Query(query)
	if err != nil {
		return err
	}

	view := ds.View(window, wc.limit)

	if wc.format != FormatText {
		return writeStructured(cmd.OutOrStdout(), wc.format, view)
	}

	r := env.renderer(cmd.OutOrStdout())
	r.Window(window, view.Progress)

	return r.Err()
}
