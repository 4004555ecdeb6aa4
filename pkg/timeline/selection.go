package timeline

import (
	"time"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
)

const hoursPerDay = 24.0

// Margins is the padding between the chart edge and the plotted area, in pixels.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DefaultMargins matches the scatterplot layout.
var DefaultMargins = Margins{Top: 30, Right: 10, Bottom: 30, Left: 20}

// Projection maps a commit to screen coordinates: datetime onto the x axis
// across the usable width, hour of day onto the y axis with 0 at the bottom
// and 24 at the top.
//
// The x axis spans exactly the first to the last commit. It is not widened
// to round tick boundaries, so a brush measured on a chart whose time axis
// was "niced" selects a slightly different set of commits. Brush pixels must
// come from a chart laid out with this projection.
type Projection struct {
	Start   time.Time
	End     time.Time
	Width   float64
	Height  float64
	Margins Margins
}

// NewProjection builds a projection over the scale's time interval for a
// chart of the given pixel size, using DefaultMargins.
func NewProjection(scale *TimeScale, width, height float64) Projection {
	return Projection{
		Start:   scale.Start(),
		End:     scale.End(),
		Width:   width,
		Height:  height,
		Margins: DefaultMargins,
	}
}

// X maps an instant to an x pixel.
func (p Projection) X(t time.Time) float64 {
	left := p.Margins.Left
	right := p.Width - p.Margins.Right

	span := p.End.Sub(p.Start)
	if span == 0 {
		return (left + right) / 2
	}

	return left + float64(t.Sub(p.Start))/float64(span)*(right-left)
}

// Y maps an hour fraction to a y pixel.
func (p Projection) Y(hourFrac float64) float64 {
	top := p.Margins.Top
	bottom := p.Height - p.Margins.Bottom

	return bottom - hourFrac/hoursPerDay*(bottom-top)
}

// Point returns the screen position of a commit.
func (p Projection) Point(c commits.Commit) (x, y float64) {
	return p.X(c.Datetime), p.Y(c.HourFrac)
}

// Brush is a screen-space rectangle with corners (X0, Y0) and (X1, Y1).
type Brush struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Normalize returns the brush with X0 <= X1 and Y0 <= Y1.
func (b Brush) Normalize() Brush {
	return Brush{
		X0: min(b.X0, b.X1),
		Y0: min(b.Y0, b.Y1),
		X1: max(b.X0, b.X1),
		Y1: max(b.Y0, b.Y1),
	}
}

// Contains reports whether the point lies inside the brush, edges included.
func (b Brush) Contains(x, y float64) bool {
	n := b.Normalize()

	return x >= n.X0 && x <= n.X1 && y >= n.Y0 && y <= n.Y1
}

// Selects returns the predicate that reports whether a commit's projected
// point falls inside the brush.
func (p Projection) Selects(b Brush) func(commits.Commit) bool {
	n := b.Normalize()

	return func(c commits.Commit) bool {
		return n.Contains(p.Point(c))
	}
}

// SelectByRegion returns the commits satisfying predicate, in input order.
// predicate must be free of side effects.
func SelectByRegion(cs []commits.Commit, predicate func(commits.Commit) bool) []commits.Commit {
	out := []commits.Commit{}

	for _, c := range cs {
		if predicate(c) {
			out = append(out, c)
		}
	}

	return out
}

// SelectionBreakdown returns the language breakdown shown beside a brush.
// Without an active brush it covers all commits; an active brush that selects
// no commits yields an empty breakdown rather than falling back to all.
func SelectionBreakdown(all, selected []commits.Commit, hasSelection bool) commits.Breakdown {
	if !hasSelection {
		return commits.LanguageBreakdown(commits.Records(all))
	}

	if len(selected) == 0 {
		return commits.Breakdown{}
	}

	return commits.LanguageBreakdown(commits.Records(selected))
}

// Selection is the result of applying an optional brush to a commit set.
type Selection struct {
	Active    bool              `json:"active"`
	Commits   []commits.Commit  `json:"commits"`
	Breakdown commits.Breakdown `json:"breakdown"`
	Brush     *Brush            `json:"brush,omitempty"`
}

// Select applies brush to cs through the projection. A nil brush means no
// active selection.
func Select(cs []commits.Commit, p Projection, brush *Brush) Selection {
	if brush == nil {
		return Selection{
			Commits:   []commits.Commit{},
			Breakdown: SelectionBreakdown(cs, nil, false),
		}
	}

	selected := SelectByRegion(cs, p.Selects(*brush))

	return Selection{
		Active:    true,
		Commits:   selected,
		Breakdown: SelectionBreakdown(cs, selected, true),
		Brush:     brush,
	}
}
