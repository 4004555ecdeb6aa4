// Package timeline maps commits onto a time axis and computes the time-windowed
// and brush-selected views behind the slider, scroll story and selection panels.
//
// Every function in this package is pure: inputs are never modified and equal
// arguments yield equal results, so views can be recomputed on every UI tick.
package timeline

import (
	"errors"
	"time"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
)

// Progress bounds of the slider.
const (
	MinProgress = 0.0
	MaxProgress = 100.0
)

// ErrEmptyDataset matches every *EmptyDatasetError via errors.Is.
var ErrEmptyDataset = errors.New("empty dataset")

// EmptyDatasetError reports an operation that needs at least one commit.
type EmptyDatasetError struct {
	Op string
}

// Error implements error.
func (e *EmptyDatasetError) Error() string {
	return e.Op + ": " + ErrEmptyDataset.Error()
}

// Is matches ErrEmptyDataset.
func (e *EmptyDatasetError) Is(target error) bool {
	return target == ErrEmptyDataset
}

// TimeScale linearly maps slider progress in [0, 100] onto the closed interval
// between the earliest and latest commit.
type TimeScale struct {
	start time.Time
	end   time.Time
}

// NewTimeScale builds the scale spanning the given commits. The commits do
// not need to be sorted.
func NewTimeScale(cs []commits.Commit) (*TimeScale, error) {
	if len(cs) == 0 {
		return nil, &EmptyDatasetError{Op: "time scale"}
	}

	s := &TimeScale{start: cs[0].Datetime, end: cs[0].Datetime}

	for _, c := range cs[1:] {
		if c.Datetime.Before(s.start) {
			s.start = c.Datetime
		}

		if c.Datetime.After(s.end) {
			s.end = c.Datetime
		}
	}

	return s, nil
}

// Start returns the earliest commit instant.
func (s *TimeScale) Start() time.Time { return s.start }

// End returns the latest commit instant.
func (s *TimeScale) End() time.Time { return s.end }

// Span returns the duration between the earliest and latest commit.
func (s *TimeScale) Span() time.Duration { return s.end.Sub(s.start) }

// Forward maps progress to an instant. Progress is clamped to [0, 100];
// 0 maps exactly to Start and 100 exactly to End.
func (s *TimeScale) Forward(progress float64) time.Time {
	progress = ClampProgress(progress)

	switch progress {
	case MinProgress:
		return s.start
	case MaxProgress:
		return s.end
	}

	offset := float64(s.Span()) * progress / MaxProgress

	return s.start.Add(time.Duration(offset))
}

// Inverse maps an instant back to progress, clamped to [0, 100]. A scale over
// a single instant maps it to the midpoint, as a degenerate linear scale does.
func (s *TimeScale) Inverse(t time.Time) float64 {
	span := s.Span()
	if span == 0 {
		return MaxProgress / 2
	}

	progress := float64(t.Sub(s.start)) / float64(span) * MaxProgress

	return ClampProgress(progress)
}

// ClampProgress limits progress to [0, 100].
func ClampProgress(progress float64) float64 {
	return min(max(progress, MinProgress), MaxProgress)
}
