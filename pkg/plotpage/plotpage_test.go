package plotpage

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderPage(t *testing.T, page *Page) string {
	t.Helper()

	var buf bytes.Buffer

	require.NoError(t, page.Render(&buf))

	return buf.String()
}

func TestPageRender_DarkDefault(t *testing.T) {
	t.Parallel()

	page := NewPage("Commit History", "Lines of code over time")
	page.Add(Section{
		ID:       "commits",
		Title:    "Commits",
		Subtitle: "One dot per commit",
		Hint:     Hint{Title: "Reading the chart", Items: []string{"Bigger dots mean bigger commits"}},
	})

	html := renderPage(t, page)

	assert.Contains(t, html, "cdn.tailwindcss.com")
	assert.Contains(t, html, "echarts.min.js")
	assert.Contains(t, html, `class="dark"`)
	assert.Contains(t, html, "Lines of code over time")
	assert.Contains(t, html, `id="commits"`)
	assert.Contains(t, html, "Bigger dots mean bigger commits")
	assert.Contains(t, html, "theme-toggle")
}

func TestPageRender_Light(t *testing.T) {
	t.Parallel()

	html := renderPage(t, NewPage("Light", "").WithTheme(ThemeLight))

	assert.NotContains(t, html, `class="dark"`)
	assert.Contains(t, html, "bg-stone-50")
}

func TestPageRender_EscapesText(t *testing.T) {
	t.Parallel()

	page := NewPage("<script>alert(1)</script>", "")

	html := renderPage(t, page)

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestPageRender_EmbedsEChartsContent(t *testing.T) {
	t.Parallel()

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithInitializationOpts(DefaultChartOpts().Init("100%", "300px")))
	bar.SetXAxis([]string{"a"})

	page := NewPage("Charts", "")
	page.Add(Section{Title: "Bar", Chart: bar})

	html := renderPage(t, page)

	assert.Contains(t, html, `class="echart-box"`)
	assert.Equal(t, 1, strings.Count(html, "<!DOCTYPE html>"))
}

type failingChart struct{}

var errChart = errors.New("chart exploded")

func (failingChart) Render(io.Writer) error { return errChart }

func TestPageRender_PropagatesChartError(t *testing.T) {
	t.Parallel()

	page := NewPage("Broken", "")
	page.Add(Section{Title: "Bad", Chart: failingChart{}})

	err := page.Render(io.Discard)

	require.Error(t, err)
	assert.ErrorIs(t, err, errChart)
}

func TestExtractChartContent(t *testing.T) {
	t.Parallel()

	fragment := `<div class="x">already a fragment</div>`
	assert.Equal(t, fragment, extractChartContent(fragment))

	full := `<!DOCTYPE html><html><head><style>.a{}</style></head><body>` +
		`<div class="container"><style>.b{}</style><div id="c"></div><script>init()</script></div></body></html>`

	got := extractChartContent(full)
	assert.True(t, strings.HasPrefix(got, `<div class="echart-box">`))
	assert.NotContains(t, got, "<style>")
	assert.Contains(t, got, "init()")
}

func TestComponents(t *testing.T) {
	t.Parallel()

	table := NewTable("Commit", "Lines").
		AddLinkedRow("https://example.com/commit/abc", "abc", "3").
		AddLinkedRow("javascript:alert(1)", "evil", "1").
		AddRow("def", "1")

	grid := NewGrid(9, NewStat("Lines", "1,234").WithNote("src/app.ts"), nil, table)
	assert.Equal(t, maxGridColumns, grid.Columns)

	var buf bytes.Buffer

	require.NoError(t, grid.Render(&buf))

	html := buf.String()
	assert.Contains(t, html, "lg:grid-cols-4")
	assert.Contains(t, html, "1,234")
	assert.Contains(t, html, "src/app.ts")
	assert.Contains(t, html, `href="https://example.com/commit/abc"`)
	assert.NotContains(t, html, "javascript:alert")
	assert.Contains(t, html, "bg-stone-50 dark:bg-stone-800")
}

func TestParseTheme(t *testing.T) {
	t.Parallel()

	theme, err := ParseTheme(" Light ")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)

	theme, err = ParseTheme("dark")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	_, err = ParseTheme("neon")
	assert.ErrorIs(t, err, ErrUnknownTheme)
}

func TestThemeConfigAndPalette(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, GetThemeConfig(ThemeLight).ChartText, GetThemeConfig(ThemeDark).ChartText)
	assert.Equal(t, GetThemeConfig(ThemeDark), GetThemeConfig("unknown"))

	palette := GetChartPalette(ThemeDark)
	assert.Equal(t, palette.Primary[0], palette.Color(len(palette.Primary)))
	assert.Empty(t, ChartPalette{}.Color(3))
}

func TestChartOpts(t *testing.T) {
	t.Parallel()

	co := NewChartOpts(ThemeLight)

	assert.Equal(t, "time", co.TimeXAxis("When").Type)
	assert.Equal(t, "category", co.CategoryYAxis().Type)

	y := co.YAxis("Hour", 0, 24)
	assert.Equal(t, 0.0, y.Min)
	assert.Equal(t, 24.0, y.Max)

	zoom := co.DataZoom()
	require.Len(t, zoom, 2)
	assert.Equal(t, "slider", zoom[0].Type)
}

func TestChartOpts_DataZoomWindowClamps(t *testing.T) {
	t.Parallel()

	co := DefaultChartOpts()

	assert.InDelta(t, 40, co.DataZoomWindow(40)[0].End, 0.001)
	assert.InDelta(t, 100, co.DataZoomWindow(250)[0].End, 0.001)
	assert.InDelta(t, 0, co.DataZoomWindow(-5)[1].End, 0.001)
}
