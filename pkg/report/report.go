// Package report builds the standalone HTML commit history page: headline
// stat cards, the commit scatterplot with its time slider, the largest files,
// the language mix of the current window and cumulative growth.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Sumatoshi-tech/locstats/pkg/dataset"
	"github.com/Sumatoshi-tech/locstats/pkg/plotpage"
	"github.com/Sumatoshi-tech/locstats/pkg/timeline"
)

// Defaults for a zero Options.
const (
	DefaultTitle     = "Commit History"
	DefaultWidth     = 1000
	DefaultHeight    = 600
	DefaultFileLimit = 20
)

const msgNoCommits = "No commits to plot."

// Options controls report generation.
type Options struct {
	Title  string
	Theme  plotpage.Theme
	Width  int
	Height int
	// FileLimit caps the files-by-size chart.
	FileLimit int
	// Progress is the initial time window on [0, 100]; 100 shows everything.
	Progress float64
}

// DefaultOptions returns options showing the whole history in the dark theme.
func DefaultOptions() Options {
	return Options{
		Title:     DefaultTitle,
		Theme:     plotpage.ThemeDark,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		FileLimit: DefaultFileLimit,
		Progress:  timeline.MaxProgress,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()

	if o.Title == "" {
		o.Title = d.Title
	}

	if o.Theme == "" {
		o.Theme = d.Theme
	}

	if o.Width <= 0 {
		o.Width = d.Width
	}

	if o.Height <= 0 {
		o.Height = d.Height
	}

	if o.FileLimit <= 0 {
		o.FileLimit = d.FileLimit
	}

	o.Progress = timeline.ClampProgress(o.Progress)

	return o
}

func (o Options) size() (width, height string) {
	return strconv.Itoa(o.Width) + "px", strconv.Itoa(o.Height) + "px"
}

// Build assembles the report page for ds.
func Build(ds *dataset.Dataset, opts Options) *plotpage.Page {
	opts = opts.withDefaults()
	co := plotpage.NewChartOpts(opts.Theme)
	palette := plotpage.GetChartPalette(opts.Theme)

	page := plotpage.NewPage(opts.Title, description(ds))
	page.WithTheme(opts.Theme)

	if ds.Empty() {
		page.Add(plotpage.Section{Title: "Summary", Subtitle: msgNoCommits, Chart: statCards(ds.Summary())})

		return page
	}

	// Scale is non-nil for a non-empty dataset.
	window := timeline.FilterByProgress(ds.Scale, ds.Commits, ds.Records, opts.Progress)

	page.Add(
		plotpage.Section{
			ID:       "summary",
			Title:    "Summary",
			Subtitle: windowSubtitle(window, opts.Progress),
			Chart:    statCards(window.Summary()),
		},
		plotpage.Section{
			ID:       "commits",
			Title:    "Commits by time of day",
			Subtitle: "One dot per commit. Dot area grows with the number of lines the commit touched.",
			Chart:    commitScatter(ds.Commits, co, palette, opts),
			Hint: plotpage.Hint{
				Title: "How to read:",
				Items: []string{
					"The horizontal axis is the commit date; the vertical axis is the hour of day in the author's own timezone.",
					"Drag the slider under the chart to move the time window.",
				},
			},
		},
		plotpage.Section{
			ID:       "languages",
			Title:    "Languages",
			Subtitle: "Share of lines per language type in the current window.",
			Chart:    languagePie(window.Breakdown(), co, palette, opts),
		},
		plotpage.Section{
			ID:       "files",
			Title:    "Largest files",
			Subtitle: fmt.Sprintf("Top %d files by annotated lines in the current window.", opts.FileLimit),
			Chart:    filesBar(window.Files(), co, palette, opts),
		},
		plotpage.Section{
			ID:       "growth",
			Title:    "Growth",
			Subtitle: "Running total of annotated lines, one point per commit.",
			Chart:    growthLine(ds.Report().Growth, co, palette, opts),
		},
		plotpage.Section{
			ID:       "recent",
			Title:    "Recent commits",
			Chart:    recentCommits(window.Commits, recentCommitLimit),
		},
	)

	return page
}

// Write builds the report and renders it to w.
func Write(w io.Writer, ds *dataset.Dataset, opts Options) error {
	err := Build(ds, opts).Render(w)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	return nil
}

func description(ds *dataset.Dataset) string {
	if ds.Empty() {
		return msgNoCommits
	}

	return fmt.Sprintf("%d commits from %s to %s",
		len(ds.Commits),
		ds.Scale.Start().Format(dateLayout),
		ds.Scale.End().Format(dateLayout),
	)
}

func windowSubtitle(w timeline.Window, progress float64) string {
	if progress >= timeline.MaxProgress {
		return "Whole history."
	}

	return fmt.Sprintf("Up to %s (%.0f%% of the timeline).", w.Cutoff.Format(dateLayout), progress)
}
