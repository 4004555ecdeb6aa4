package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/dataset"
	"github.com/Sumatoshi-tech/locstats/pkg/observability"
)

const defaultListLimit = 10

// StatsOutput is the structured output of the stats command.
type StatsOutput struct {
	commits.Report `yaml:",inline"`

	Files   []commits.FileSummary   `json:"files"   yaml:"files"`
	Commits []commits.CommitSummary `json:"commits" yaml:"commits"`
}

type statsCommand struct {
	format string
	limit  int
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	sc := &statsCommand{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show summary, languages, largest files and recent commits",
		Long: `Load the line log (or its cache) and print the headline statistics,
the language breakdown, the largest files and the most recent commits.`,
		Args: cobra.NoArgs,
		RunE: sc.run,
	}

	addFormatFlag(cmd, &sc.format)
	cmd.Flags().IntVarP(&sc.limit, flagLimit, "n", defaultListLimit, "Files and commits to list (0 = all)")

	return cmd
}

func (sc *statsCommand) run(cmd *cobra.Command, _ []string) error {
	formatErr := validateFormat(sc.format)
	if formatErr != nil {
		return formatErr
	}

	env, err := loadEnvironment(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}

	ds, err := env.load(cmd.Context())
	if err != nil {
		return err
	}

	if sc.format != FormatText {
		return writeStructured(cmd.OutOrStdout(), sc.format, buildStatsOutput(ds, sc.limit))
	}

	r := env.renderer(cmd.OutOrStdout())
	r.Header("LOCSTATS", string(ds.Source))
	r.Summary(ds.Summary())
	r.Languages(ds.Breakdown())
	r.Files(ds.Files, sc.limit)
	r.Commits(ds.Commits, sc.limit)

	return r.Err()
}

func buildStatsOutput(ds *dataset.Dataset, limit int) StatsOutput {
	files := ds.Files
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	cs := ds.Commits
	if limit > 0 && len(cs) > limit {
		cs = cs[len(cs)-limit:]
	}

	out := StatsOutput{
		Report:  ds.Report(),
		Files:   make([]commits.FileSummary, 0, len(files)),
		Commits: commits.Summaries(cs),
	}

	for _, f := range files {
		out.Files = append(out.Files, f.Summary())
	}

	return out
}
