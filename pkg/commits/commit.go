// Package commits aggregates line records into commits and files and derives
// the summary statistics shown next to the commit scatterplot.
package commits

import (
	"fmt"
	"time"

	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
)

const minutesPerHour = 60

// CommitSummary is the public, serializable part of a Commit.
type CommitSummary struct {
	ID          string    `json:"id"`
	URL         string    `json:"url,omitempty"`
	Author      string    `json:"author"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Timezone    string    `json:"timezone"`
	Datetime    time.Time `json:"datetime"`
	HourFrac    float64   `json:"hourFrac"`
	TotalLines  int       `json:"totalLines"`
	LongestLine int       `json:"longestLine"`
}

// Commit is an aggregate over all line records sharing a commit id.
// The backing records are owned by the commit and reachable only via Lines.
type Commit struct {
	CommitSummary

	lines []linelog.LineRecord
}

// NewCommit builds a commit from its records. Summary fields other than the
// derived counts are taken from the first record. urlBase, when non-empty, is
// prefixed to the id to form the commit link.
func NewCommit(id, urlBase string, lines []linelog.LineRecord) Commit {
	c := Commit{
		CommitSummary: CommitSummary{ID: id},
		lines:         lines,
	}

	if urlBase != "" {
		c.URL = urlBase + id
	}

	if len(lines) == 0 {
		return c
	}

	first := lines[0]
	c.Author = first.Author
	c.Date = first.Date
	c.Time = first.Time
	c.Timezone = first.Timezone
	c.Datetime = first.Datetime
	c.HourFrac = HourFraction(first.Datetime)
	c.TotalLines = len(lines)

	for _, r := range lines {
		c.LongestLine = max(c.LongestLine, r.Length)
	}

	return c
}

// FromSummary reattaches records to a previously computed summary.
func FromSummary(summary CommitSummary, lines []linelog.LineRecord) Commit {
	return Commit{CommitSummary: summary, lines: lines}
}

// Lines returns the commit's records. The slice must not be modified.
func (c Commit) Lines() []linelog.LineRecord {
	return c.lines
}

// Summary returns the serializable summary.
func (c Commit) Summary() CommitSummary {
	return c.CommitSummary
}

// String implements fmt.Stringer without listing the backing records.
func (c Commit) String() string {
	return fmt.Sprintf("commit %s by %s at %s (%d lines, longest %d)",
		c.ID, c.Author, c.Datetime.Format(time.RFC3339), c.TotalLines, c.LongestLine)
}

// HourFraction returns hour + minute/60 of t in its own location, in [0, 24).
func HourFraction(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/minutesPerHour
}
