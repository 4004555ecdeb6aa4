package report

import (
	"math"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
	"github.com/Sumatoshi-tech/locstats/pkg/metrics"
	"github.com/Sumatoshi-tech/locstats/pkg/plotpage"
)

// Dot radius range of the commit scatter, in pixels.
const (
	MinRadius = 2.0
	MaxRadius = 25.0
)

const (
	hoursPerDay  = 24
	pieRadius    = "60%"
	pieHeight    = "420px"
	scatterAlpha = 0.7
)

// scatterTooltip renders the commit hovered in the scatter. Values are
// [epochMillis, hourFrac, id, author, totalLines, time].
const scatterTooltip = `function (p) {
  var v = p.value;
  return '<b>' + String(v[2]).substring(0, 7) + '</b><br/>' +
    new Date(v[0]).toLocaleDateString('en', {dateStyle: 'medium'}) + ' ' + v[5] + '<br/>' +
    'Lines: ' + v[4] + '<br/>Author: ' + v[3];
}`

const hourLabelFormatter = `function (v) { return String(v % 24).padStart(2, '0') + ':00'; }`

// SizeScale maps commit sizes onto dot radii with a square-root scale, so a
// dot's area tracks the number of lines.
type SizeScale struct {
	minSqrt float64
	maxSqrt float64
}

// NewSizeScale builds the scale over the extent of totalLines in cs.
func NewSizeScale(cs []commits.Commit) SizeScale {
	if len(cs) == 0 {
		return SizeScale{}
	}

	lo, hi := cs[0].TotalLines, cs[0].TotalLines

	for _, c := range cs[1:] {
		lo = min(lo, c.TotalLines)
		hi = max(hi, c.TotalLines)
	}

	return SizeScale{minSqrt: math.Sqrt(float64(lo)), maxSqrt: math.Sqrt(float64(hi))}
}

// Radius returns the dot radius for a commit of totalLines lines. A scale
// whose commits all have the same size puts every dot at the midpoint.
func (s SizeScale) Radius(totalLines int) float64 {
	span := s.maxSqrt - s.minSqrt
	if span == 0 {
		return (MinRadius + MaxRadius) / 2
	}

	t := (math.Sqrt(float64(totalLines)) - s.minSqrt) / span
	t = min(max(t, 0), 1)

	return MinRadius + t*(MaxRadius-MinRadius)
}

func commitScatter(cs []commits.Commit, co *plotpage.ChartOpts, palette plotpage.ChartPalette, o Options) *charts.Scatter {
	width, height := o.size()
	scale := NewSizeScale(cs)

	yAxis := co.YAxis("Hour of day", 0, hoursPerDay)
	yAxis.AxisLabel.Formatter = opts.FuncOpts(hourLabelFormatter)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init(width, height)),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: opts.FuncOpts(scatterTooltip)}),
		charts.WithXAxisOpts(co.TimeXAxis("")),
		charts.WithYAxisOpts(yAxis),
		charts.WithGridOpts(co.Grid()),
		charts.WithDataZoomOpts(co.DataZoomWindow(o.Progress)...),
	)

	// Largest first so small commits stay on top and hoverable.
	sorted := slices.Clone(cs)
	slices.SortStableFunc(sorted, func(a, b commits.Commit) int {
		return b.TotalLines - a.TotalLines
	})

	data := make([]opts.ScatterData, len(sorted))

	for i, c := range sorted {
		data[i] = opts.ScatterData{
			Value: []any{
				c.Datetime.UnixMilli(),
				math.Round(c.HourFrac*1000) / 1000,
				c.ID,
				c.Author,
				c.TotalLines,
				c.Time,
			},
			SymbolSize: int(math.Round(2 * scale.Radius(c.TotalLines))),
		}
	}

	scatter.AddSeries("Commits", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: palette.Color(1), Opacity: opts.Float(scatterAlpha)}),
	)

	return scatter
}

func languagePie(b commits.Breakdown, co *plotpage.ChartOpts, palette plotpage.ChartPalette, o Options) *charts.Pie {
	width, _ := o.size()

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init(width, pieHeight)),
		charts.WithTooltipOpts(co.Tooltip("item")),
		charts.WithLegendOpts(co.Legend()),
	)

	data := make([]opts.PieData, len(b))

	for i, share := range b {
		data[i] = opts.PieData{
			Name:      linelog.DisplayName(share.Type),
			Value:     share.Count,
			ItemStyle: &opts.ItemStyle{Color: palette.Color(i)},
		}
	}

	pie.AddSeries("Languages", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c} ({d}%)",
				Color:     co.TextMutedColor(),
			}),
			charts.WithPieChartOpts(opts.PieChart{Radius: pieRadius}),
		)

	return pie
}

func filesBar(files []commits.File, co *plotpage.ChartOpts, palette plotpage.ChartPalette, o Options) *charts.Bar {
	width, height := o.size()

	shown := files[:min(len(files), o.FileLimit)]

	// Category axes draw bottom-up; reverse so the largest file is on top.
	names := make([]string, len(shown))
	data := make([]opts.BarData, len(shown))

	for i, f := range shown {
		j := len(shown) - 1 - i
		names[j] = f.Name
		data[j] = opts.BarData{Name: f.Name, Value: f.Size()}
	}

	yAxis := co.CategoryYAxis()
	yAxis.Data = names

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init(width, height)),
		charts.WithTooltipOpts(co.Tooltip("axis")),
		charts.WithGridOpts(co.Grid()),
		charts.WithXAxisOpts(co.ValueXAxis("Lines")),
		charts.WithYAxisOpts(yAxis),
	)

	bar.AddSeries("Lines", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: palette.Color(0)}),
	)

	return bar
}

func growthLine(points []metrics.TimePoint, co *plotpage.ChartOpts, palette plotpage.ChartPalette, o Options) *charts.Line {
	width, _ := o.size()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init(width, pieHeight)),
		charts.WithTooltipOpts(co.Tooltip("axis")),
		charts.WithGridOpts(co.Grid()),
		charts.WithXAxisOpts(co.TimeXAxis("")),
		charts.WithYAxisOpts(opts.YAxis{Name: "Lines", Type: "value"}),
	)

	data := make([]opts.LineData, len(points))
	for i, p := range points {
		data[i] = opts.LineData{Value: []any{p.At.UnixMilli(), p.Value}}
	}

	line.AddSeries("Lines", data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: palette.Color(2)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: palette.Color(2)}),
		charts.WithLineChartOpts(opts.LineChart{Step: "end"}),
	)

	return line
}
