package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/observability"
	"github.com/Sumatoshi-tech/locstats/pkg/report"
	"github.com/Sumatoshi-tech/locstats/pkg/timeline"
)

var brushFlags = []string{"x0", "y0", "x1", "y1"}

// ErrPartialBrush indicates some but not all brush corners were given.
var ErrPartialBrush = errors.New("brush needs all of --x0, --y0, --x1, --y1")

// SelectOutput is the structured output of the select command.
type SelectOutput struct {
	Active    bool                    `json:"active"    yaml:"active"`
	Brush     *timeline.Brush         `json:"brush"     yaml:"brush"`
	Commits   []commits.CommitSummary `json:"commits"   yaml:"commits"`
	Breakdown commits.Breakdown       `json:"breakdown" yaml:"breakdown"`
}

type selectCommand struct {
	format string
	corner [4]float64
	width  float64
	height float64
}

// NewSelectCommand creates the select command.
func NewSelectCommand() *cobra.Command {
	sc := &selectCommand{}

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the commits inside a brush on the scatterplot",
		Long: `Project every commit onto a chart of the given size (x = commit time,
y = hour of day) and keep those inside the rectangle (x0, y0)-(x1, y1) in
pixels. Without a rectangle the language breakdown of all commits is shown.`,
		Example: `  locstats select --x0 100 --y0 50 --x1 400 --y1 300
  locstats select --width 800 --height 400 --x0 0 --y0 0 --x1 800 --y1 400 -f json`,
		Args: cobra.NoArgs,
		RunE: sc.run,
	}

	addFormatFlag(cmd, &sc.format)

	for i, name := range brushFlags {
		cmd.Flags().Float64Var(&sc.corner[i], name, 0, "Brush corner "+name+" in pixels")
	}

	cmd.Flags().Float64Var(&sc.width, "width", report.DefaultWidth, "Chart width in pixels")
	cmd.Flags().Float64Var(&sc.height, "height", report.DefaultHeight, "Chart height in pixels")

	return cmd
}

func (sc *selectCommand) brush(cmd *cobra.Command) (*timeline.Brush, error) {
	set := 0

	for _, name := range brushFlags {
		if cmd.Flags().Changed(name) {
			set++
		}
	}

	switch set {
	case 0:
		return nil, nil //nolint:nilnil // no brush is a valid state.
	case len(brushFlags):
		return &timeline.Brush{X0: sc.corner[0], Y0: sc.corner[1], X1: sc.corner[2], Y1: sc.corner[3]}, nil
	default:
		return nil, ErrPartialBrush
	}
}

func (sc *selectCommand) run(cmd *cobra.Command, _ []string) error {
	formatErr := validateFormat(sc.format)
	if formatErr != nil {
		return formatErr
	}

	brush, err := sc.brush(cmd)
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

	selection, err := ds.Select(sc.width, sc.height, brush)
	if err != nil {
		return err
	}

	if sc.format != FormatText {
		return writeStructured(cmd.OutOrStdout(), sc.format, SelectOutput{
			Active:    selection.Active,
			Brush:     selection.Brush,
			Commits:   commits.Summaries(selection.Commits),
			Breakdown: selection.Breakdown,
		})
	}

	r := env.renderer(cmd.OutOrStdout())
	r.Selection(selection)

	return r.Err()
}
