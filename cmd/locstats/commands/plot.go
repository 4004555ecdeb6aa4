package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstats/pkg/config"
	"github.com/Sumatoshi-tech/locstats/pkg/observability"
	"github.com/Sumatoshi-tech/locstats/pkg/plotpage"
	"github.com/Sumatoshi-tech/locstats/pkg/report"
	"github.com/Sumatoshi-tech/locstats/pkg/timeline"
)

const (
	defaultPlotOutput = "locstats.html"
	stdoutPath        = "-"
	reportFileMode    = 0o644
)

type plotCommand struct {
	output   string
	theme    string
	title    string
	progress float64
}

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	pc := &plotCommand{}

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Write the standalone HTML report",
		Long: `Render the commit scatterplot with its time slider, the largest files,
the language mix of the current window and cumulative growth into one HTML file.`,
		Args: cobra.NoArgs,
		RunE: pc.run,
	}

	cmd.Flags().StringVarP(&pc.output, "output", "o", defaultPlotOutput, `Output file ("-" for stdout)`)
	cmd.Flags().StringVar(&pc.theme, "theme", "", "Color theme: dark, light (default: plot.theme)")
	cmd.Flags().StringVar(&pc.title, "title", "", "Page title (default: plot.title)")
	cmd.Flags().Float64Var(&pc.progress, flagProgress, timeline.MaxProgress, "Initial time window from 0 to 100")

	return cmd
}

// reportOptions builds report options from the plot config section.
func reportOptions(cfg *config.Config) (report.Options, error) {
	theme, err := plotpage.ParseTheme(cfg.Plot.Theme)
	if err != nil {
		return report.Options{}, err
	}

	return report.Options{
		Title:     cfg.Plot.Title,
		Theme:     theme,
		Width:     cfg.Plot.Width,
		Height:    cfg.Plot.Height,
		FileLimit: cfg.Server.FileLimit,
		Progress:  timeline.MaxProgress,
	}, nil
}

func (pc *plotCommand) run(cmd *cobra.Command, _ []string) error {
	env, err := loadEnvironment(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}

	if pc.theme != "" {
		env.cfg.Plot.Theme = pc.theme
	}

	if pc.title != "" {
		env.cfg.Plot.Title = pc.title
	}

	opts, err := reportOptions(env.cfg)
	if err != nil {
		return err
	}

	opts.Progress = pc.progress

	ds, err := env.load(cmd.Context())
	if err != nil {
		return err
	}

	if pc.output == stdoutPath {
		return report.Write(cmd.OutOrStdout(), ds, opts)
	}

	file, err := os.OpenFile(pc.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, reportFileMode)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	writeErr := report.Write(file, ds, opts)
	closeErr := file.Close()

	if writeErr != nil {
		return writeErr
	}

	if closeErr != nil {
		return fmt.Errorf("close report: %w", closeErr)
	}

	env.logger.InfoContext(cmd.Context(), "report written", "path", pc.output, "commits", len(ds.Commits))

	return writeLine(cmd.OutOrStdout(), pc.output)
}

func writeLine(w io.Writer, line string) error {
	_, err := fmt.Fprintln(w, line)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
