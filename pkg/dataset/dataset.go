// Package dataset composes ingestion, caching and aggregation into a single
// loaded snapshot and owns the lifecycle of that snapshot.
package dataset

import (
	"time"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
	"github.com/Sumatoshi-tech/locstats/pkg/timeline"
)

// Source identifies where a dataset was loaded from.
type Source string

// Dataset sources.
const (
	SourceCache Source = "cache"
	SourceRaw   Source = "raw"
)

// Dataset is an immutable snapshot of records and their aggregates.
type Dataset struct {
	Records []linelog.LineRecord
	Commits []commits.Commit
	Files   []commits.File
	// Scale is nil when the dataset has no commits.
	Scale    *timeline.TimeScale
	Source   Source
	LoadedAt time.Time
}

// New builds a dataset from records and their chronologically sorted commits.
func New(records []linelog.LineRecord, cs []commits.Commit) *Dataset {
	ds := &Dataset{
		Records:  records,
		Commits:  cs,
		Files:    commits.AggregateFiles(records),
		LoadedAt: time.Now(),
	}

	if scale, err := timeline.NewTimeScale(cs); err == nil {
		ds.Scale = scale
	}

	return ds
}

// Empty reports whether the dataset has no commits.
func (d *Dataset) Empty() bool {
	return len(d.Commits) == 0
}

// Window returns the view at cutoff.
func (d *Dataset) Window(cutoff time.Time) timeline.Window {
	return timeline.FilterByTime(d.Commits, d.Records, cutoff)
}

// WindowAt returns the view at slider progress.
func (d *Dataset) WindowAt(progress float64) (timeline.Window, error) {
	if d.Scale == nil {
		return timeline.Window{}, &timeline.EmptyDatasetError{Op: "window"}
	}

	return timeline.FilterByProgress(d.Scale, d.Commits, d.Records, progress), nil
}

// Step returns the view at the given story step.
func (d *Dataset) Step(step int) (timeline.Window, error) {
	return timeline.FilterByIndex(d.Commits, d.Records, step)
}

// Summary returns the summary of the whole dataset.
func (d *Dataset) Summary() commits.Summary {
	return commits.ComputeSummary(d.Records, d.Commits)
}

// Breakdown returns the language breakdown of the whole dataset.
func (d *Dataset) Breakdown() commits.Breakdown {
	return commits.LanguageBreakdown(d.Records)
}

// Report runs every commit metric over the dataset.
func (d *Dataset) Report() commits.Report {
	return commits.ComputeAll(commits.Input{
		Records: d.Records,
		Commits: d.Commits,
		Files:   d.Files,
	})
}

// Projection returns the scatterplot projection for a chart of the given size.
func (d *Dataset) Projection(width, height float64) (timeline.Projection, error) {
	if d.Scale == nil {
		return timeline.Projection{}, &timeline.EmptyDatasetError{Op: "projection"}
	}

	return timeline.NewProjection(d.Scale, width, height), nil
}

// Select applies a brush drawn on a chart of the given size. A nil brush
// means no active selection.
func (d *Dataset) Select(width, height float64, brush *timeline.Brush) (timeline.Selection, error) {
	proj, err := d.Projection(width, height)
	if err != nil {
		return timeline.Selection{}, err
	}

	return timeline.Select(d.Commits, proj, brush), nil
}
