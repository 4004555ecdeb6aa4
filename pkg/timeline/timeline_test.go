package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
)

// Test constants to avoid magic strings/numbers.
const (
	testWidth        = 1000.0
	testHeight       = 600.0
	testEpsilon      = 1e-6
	testMidProgress  = 50.0
	testCommitsCount = 5
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fixture returns records for testCommitsCount commits, one per day at
// increasing hours, each commit touching two lines of different types.
func fixture() ([]linelog.LineRecord, []commits.Commit) {
	var records []linelog.LineRecord

	for i := range testCommitsCount {
		at := testStart.Add(time.Duration(i)*24*time.Hour + time.Duration(i*4)*time.Hour)
		id := string(rune('a' + i))

		records = append(records,
			linelog.LineRecord{Commit: id, File: "main.go", Type: "go", Line: 1, Length: 10 + i, Datetime: at},
			linelog.LineRecord{Commit: id, File: "style.css", Type: "css", Line: 1, Length: 3, Datetime: at},
		)
	}

	return records, commits.AggregateCommits(records)
}

func TestNewTimeScale_Empty(t *testing.T) {
	t.Parallel()

	scale, err := NewTimeScale(nil)

	assert.Nil(t, scale)
	require.ErrorIs(t, err, ErrEmptyDataset)

	var emptyErr *EmptyDatasetError
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, "time scale", emptyErr.Op)
}

func TestTimeScale_Endpoints(t *testing.T) {
	t.Parallel()

	_, cs := fixture()

	scale, err := NewTimeScale(cs)
	require.NoError(t, err)

	assert.True(t, scale.Forward(MinProgress).Equal(cs[0].Datetime))
	assert.True(t, scale.Forward(MaxProgress).Equal(cs[len(cs)-1].Datetime))
	assert.True(t, scale.Forward(-20).Equal(scale.Start()))
	assert.True(t, scale.Forward(250).Equal(scale.End()))
}

func TestTimeScale_InverseLaw(t *testing.T) {
	t.Parallel()

	_, cs := fixture()

	scale, err := NewTimeScale(cs)
	require.NoError(t, err)

	for _, p := range []float64{MinProgress, testMidProgress, MaxProgress, 12.5, 99.9} {
		assert.InDelta(t, p, scale.Inverse(scale.Forward(p)), testEpsilon, "progress %v", p)
	}
}

func TestTimeScale_Monotonic(t *testing.T) {
	t.Parallel()

	_, cs := fixture()

	scale, err := NewTimeScale(cs)
	require.NoError(t, err)

	prev := scale.Forward(MinProgress)

	for p := 1.0; p <= MaxProgress; p++ {
		cur := scale.Forward(p)
		assert.True(t, cur.After(prev), "progress %v", p)
		prev = cur
	}
}

func TestTimeScale_SingleInstant(t *testing.T) {
	t.Parallel()

	records := []linelog.LineRecord{{Commit: "x", Type: "go", Line: 1, Datetime: testStart}}

	scale, err := NewTimeScale(commits.AggregateCommits(records))
	require.NoError(t, err)

	assert.True(t, scale.Forward(testMidProgress).Equal(testStart))
	assert.InDelta(t, testMidProgress, scale.Inverse(testStart), testEpsilon)
}

func TestFilterByTime_Edges(t *testing.T) {
	t.Parallel()

	records, cs := fixture()

	before := FilterByTime(cs, records, testStart.Add(-time.Hour))
	assert.Empty(t, before.Commits)
	assert.Empty(t, before.Records)
	assert.NotNil(t, before.Commits)

	after := FilterByTime(cs, records, cs[len(cs)-1].Datetime.Add(time.Hour))
	assert.Equal(t, cs, after.Commits)
	assert.Equal(t, records, after.Records)

	exact := FilterByTime(cs, records, cs[2].Datetime)
	require.Len(t, exact.Commits, 3)
	assert.Equal(t, cs[2].ID, exact.Commits[2].ID)
	assert.Len(t, exact.Records, 6)
}

func TestFilterByTime_Monotonic(t *testing.T) {
	t.Parallel()

	records, cs := fixture()
	scale, err := NewTimeScale(cs)
	require.NoError(t, err)

	prev := FilterByProgress(scale, cs, records, MinProgress)

	for p := 5.0; p <= MaxProgress; p += 5 {
		cur := FilterByProgress(scale, cs, records, p)
		require.GreaterOrEqual(t, len(cur.Commits), len(prev.Commits))
		assert.Equal(t, prev.Commits, cur.Commits[:len(prev.Commits)], "progress %v", p)
		prev = cur
	}
}

func TestFilterByTime_PureAndConsistent(t *testing.T) {
	t.Parallel()

	records, cs := fixture()
	cutoff := cs[1].Datetime.Add(time.Minute)

	original := append([]commits.Commit(nil), cs...)
	first := FilterByTime(cs, records, cutoff)
	second := FilterByTime(cs, records, cutoff)

	assert.Equal(t, first, second)
	assert.Equal(t, original, cs)

	// The record view holds exactly the lines of the commit view.
	assert.Equal(t, commits.Records(first.Commits), first.Records)

	// Appending to the view never writes into the canonical slice.
	grown := append(first.Commits, commits.Commit{})
	assert.Len(t, grown, 3)
	assert.Equal(t, original, cs)
}

func TestFilterByIndex(t *testing.T) {
	t.Parallel()

	records, cs := fixture()

	w, err := FilterByIndex(cs, records, 0)
	require.NoError(t, err)
	assert.Len(t, w.Commits, 1)

	w, err = FilterByIndex(cs, records, len(cs)-1)
	require.NoError(t, err)
	assert.Len(t, w.Commits, len(cs))

	_, err = FilterByIndex(cs, records, len(cs))
	assert.ErrorIs(t, err, ErrStepOutOfRange)

	_, err = FilterByIndex(cs, records, -1)
	assert.ErrorIs(t, err, ErrStepOutOfRange)

	_, err = FilterByIndex(nil, nil, 0)
	assert.True(t, errors.Is(err, ErrEmptyDataset))
}

func TestWindow_Derivations(t *testing.T) {
	t.Parallel()

	records, cs := fixture()
	w := FilterByTime(cs, records, cs[1].Datetime)

	summary := w.Summary()
	assert.Equal(t, 4, summary.TotalLines)
	assert.Equal(t, 2, summary.TotalCommits)
	assert.Equal(t, 2, summary.Files)

	breakdown := w.Breakdown()
	goShare, ok := breakdown.Get("go")
	require.True(t, ok)
	assert.InDelta(t, 0.5, goShare.Proportion, testEpsilon)

	assert.Len(t, w.Files(), 2)
}

func TestProjection_Axes(t *testing.T) {
	t.Parallel()

	_, cs := fixture()
	scale, err := NewTimeScale(cs)
	require.NoError(t, err)

	p := NewProjection(scale, testWidth, testHeight)

	assert.InDelta(t, DefaultMargins.Left, p.X(scale.Start()), testEpsilon)
	assert.InDelta(t, testWidth-DefaultMargins.Right, p.X(scale.End()), testEpsilon)
	assert.InDelta(t, testHeight-DefaultMargins.Bottom, p.Y(0), testEpsilon)
	assert.InDelta(t, DefaultMargins.Top, p.Y(24), testEpsilon)
	assert.InDelta(t, (testHeight-DefaultMargins.Bottom+DefaultMargins.Top)/2, p.Y(12), testEpsilon)
}

func TestBrush_ContainsNormalizes(t *testing.T) {
	t.Parallel()

	b := Brush{X0: 100, Y0: 100, X1: 0, Y1: 0}

	assert.True(t, b.Contains(50, 50))
	assert.True(t, b.Contains(0, 100))
	assert.False(t, b.Contains(101, 50))
}

func TestSelectByRegion(t *testing.T) {
	t.Parallel()

	_, cs := fixture()
	scale, err := NewTimeScale(cs)
	require.NoError(t, err)

	p := NewProjection(scale, testWidth, testHeight)
	x, y := p.Point(cs[2])
	brush := Brush{X0: x - 1, Y0: y - 1, X1: x + 1, Y1: y + 1}

	selected := SelectByRegion(cs, p.Selects(brush))
	require.Len(t, selected, 1)
	assert.Equal(t, cs[2].ID, selected[0].ID)

	// Repeated evaluation is stable.
	assert.Equal(t, selected, SelectByRegion(cs, p.Selects(brush)))

	everything := SelectByRegion(cs, p.Selects(Brush{X1: testWidth, Y1: testHeight}))
	assert.Len(t, everything, len(cs))

	none := SelectByRegion(cs, func(commits.Commit) bool { return false })
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSelectionBreakdown_Policy(t *testing.T) {
	t.Parallel()

	_, cs := fixture()

	noBrush := SelectionBreakdown(cs, nil, false)
	assert.Equal(t, 2*len(cs), noBrush.Total())

	emptyBrush := SelectionBreakdown(cs, nil, true)
	assert.NotNil(t, emptyBrush)
	assert.Empty(t, emptyBrush)

	one := SelectionBreakdown(cs, cs[:1], true)
	assert.Equal(t, 2, one.Total())
}

func TestSelect(t *testing.T) {
	t.Parallel()

	_, cs := fixture()
	scale, err := NewTimeScale(cs)
	require.NoError(t, err)

	p := NewProjection(scale, testWidth, testHeight)

	inactive := Select(cs, p, nil)
	assert.False(t, inactive.Active)
	assert.Empty(t, inactive.Commits)
	assert.Len(t, inactive.Breakdown, 2)

	miss := Select(cs, p, &Brush{X0: 0, Y0: 0, X1: 1, Y1: 1})
	assert.True(t, miss.Active)
	assert.Empty(t, miss.Commits)
	assert.Empty(t, miss.Breakdown)
}
