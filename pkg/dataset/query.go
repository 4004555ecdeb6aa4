package dataset

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/timeline"
)

// Window query errors.
var (
	ErrNoWindow        = errors.New("one of cutoff, progress or step is required")
	ErrAmbiguousWindow = errors.New("only one of cutoff, progress or step may be set")
	ErrInvalidProgress = errors.New("progress must be a finite number")
)

// WindowQuery selects a time window the way a client does: by cutoff
// instant, by slider progress, or by scroll-story step. Exactly one field
// must be set.
type WindowQuery struct {
	Cutoff   *time.Time
	Progress *float64
	Step     *int
}

// Validate checks that exactly one selector is set.
func (q WindowQuery) Validate() error {
	set := 0

	if q.Cutoff != nil {
		set++
	}

	if q.Progress != nil {
		if math.IsNaN(*q.Progress) || math.IsInf(*q.Progress, 0) {
			return fmt.Errorf("%w: %v", ErrInvalidProgress, *q.Progress)
		}

		set++
	}

	if q.Step != nil {
		set++
	}

	switch set {
	case 0:
		return ErrNoWindow
	case 1:
		return nil
	default:
		return ErrAmbiguousWindow
	}
}

// Query resolves q against the dataset.
func (d *Dataset) Query(q WindowQuery) (timeline.Window, error) {
	err := q.Validate()
	if err != nil {
		return timeline.Window{}, err
	}

	switch {
	case q.Cutoff != nil:
		return d.Window(*q.Cutoff), nil
	case q.Progress != nil:
		return d.WindowAt(*q.Progress)
	default:
		w, stepErr := d.Step(*q.Step)
		if stepErr != nil {
			return timeline.Window{}, fmt.Errorf("step %d: %w", *q.Step, stepErr)
		}

		return w, nil
	}
}

// WindowView is the serializable state of the time slider.
type WindowView struct {
	Cutoff    time.Time              `json:"cutoff"             yaml:"cutoff"`
	Progress  float64                `json:"progress"           yaml:"progress"`
	Commits   int                    `json:"commits"            yaml:"commits"`
	Lines     int                    `json:"lines"              yaml:"lines"`
	Latest    *commits.CommitSummary `json:"latest,omitempty"   yaml:"latest,omitempty"`
	Summary   commits.Summary        `json:"summary"            yaml:"summary"`
	Languages commits.Breakdown      `json:"languages"          yaml:"languages"`
	Files     []commits.FileSummary  `json:"files"              yaml:"files"`
}

// View derives the serializable view of w. fileLimit caps the file list;
// zero or less keeps all files.
func (d *Dataset) View(w timeline.Window, fileLimit int) WindowView {
	view := WindowView{
		Cutoff:    w.Cutoff,
		Commits:   len(w.Commits),
		Lines:     len(w.Records),
		Summary:   w.Summary(),
		Languages: w.Breakdown(),
		Files:     []commits.FileSummary{},
	}

	if d.Scale != nil {
		view.Progress = d.Scale.Inverse(w.Cutoff)
	}

	if n := len(w.Commits); n > 0 {
		latest := w.Commits[n-1].Summary()
		view.Latest = &latest
	}

	files := w.Files()
	if fileLimit > 0 && len(files) > fileLimit {
		files = files[:fileLimit]
	}

	for _, f := range files {
		view.Files = append(view.Files, f.Summary())
	}

	return view
}
