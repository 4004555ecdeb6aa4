package timeline

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
)

// ErrStepOutOfRange indicates a story step outside the commit sequence.
var ErrStepOutOfRange = errors.New("story step out of range")

// Window is the view of a dataset at a cutoff instant.
type Window struct {
	Cutoff  time.Time
	Commits []commits.Commit
	Records []linelog.LineRecord
}

// FilterByTime returns the commits and records written at or before cutoff.
// cs must be sorted ascending by datetime; the commit view is a prefix of cs.
// Records keep their input order. Neither input is modified.
func FilterByTime(cs []commits.Commit, records []linelog.LineRecord, cutoff time.Time) Window {
	n := sort.Search(len(cs), func(i int) bool {
		return cs[i].Datetime.After(cutoff)
	})

	prefix := []commits.Commit{}
	if n > 0 {
		prefix = cs[:n:n]
	}

	selected := make([]linelog.LineRecord, 0, len(records))

	for _, r := range records {
		if r.OnOrBefore(cutoff) {
			selected = append(selected, r)
		}
	}

	return Window{
		Cutoff:  cutoff,
		Commits: prefix,
		Records: selected,
	}
}

// FilterByProgress maps progress through scale and filters at the resulting instant.
func FilterByProgress(scale *TimeScale, cs []commits.Commit, records []linelog.LineRecord, progress float64) Window {
	return FilterByTime(cs, records, scale.Forward(progress))
}

// FilterByIndex filters at the datetime of the commit at position step,
// one story step per commit.
func FilterByIndex(cs []commits.Commit, records []linelog.LineRecord, step int) (Window, error) {
	if len(cs) == 0 {
		return Window{}, &EmptyDatasetError{Op: "story step"}
	}

	if step < 0 || step >= len(cs) {
		return Window{}, fmt.Errorf("%w: %d not in [0, %d)", ErrStepOutOfRange, step, len(cs))
	}

	return FilterByTime(cs, records, cs[step].Datetime), nil
}

// Summary returns the summary statistics of the window.
func (w Window) Summary() commits.Summary {
	return commits.ComputeSummary(w.Records, w.Commits)
}

// Breakdown returns the language breakdown of the window's records.
func (w Window) Breakdown() commits.Breakdown {
	return commits.LanguageBreakdown(w.Records)
}

// Files returns the window's records grouped by file.
func (w Window) Files() []commits.File {
	return commits.AggregateFiles(w.Records)
}
