package terminal

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
	"github.com/Sumatoshi-tech/locstats/pkg/metrics"
	"github.com/Sumatoshi-tech/locstats/pkg/timeline"
)

// Layout constants.
const (
	labelWidth     = 18
	languageWidth  = 14
	minBarWidth    = 10
	barReserve     = 32
	pathWidth      = 48
	authorWidth    = 20
	timestampStyle = "2006-01-02 15:04 -07:00"
)

const msgNoData = "No commits in range"

// Renderer writes locstats views to a terminal. The first write error is
// kept and returned by Err; later writes are skipped.
type Renderer struct {
	out io.Writer
	cfg Config
	err error

	title *color.Color
	label *color.Color
	value *color.Color
	muted *color.Color
	bar   *color.Color
}

// NewRenderer creates a Renderer writing to out.
func NewRenderer(out io.Writer, cfg Config) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}

	r := &Renderer{
		out:   out,
		cfg:   cfg,
		title: color.New(color.Bold, color.FgCyan),
		label: color.New(color.FgWhite),
		value: color.New(color.Bold),
		muted: color.New(color.FgHiBlack),
		bar:   color.New(color.FgGreen),
	}

	if cfg.NoColor {
		for _, c := range []*color.Color{r.title, r.label, r.value, r.muted, r.bar} {
			c.DisableColor()
		}
	}

	return r
}

// Err returns the first write error.
func (r *Renderer) Err() error {
	return r.err
}

func (r *Renderer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}

	_, err := fmt.Fprintf(r.out, format, args...)
	if err != nil {
		r.err = fmt.Errorf("write terminal output: %w", err)
	}
}

// Header draws a boxed section title.
func (r *Renderer) Header(title, right string) {
	r.printf("%s\n", r.title.Sprint(DrawHeader(title, right, r.cfg.Width)))
}

// KeyValue prints one aligned "label: value" line.
func (r *Renderer) KeyValue(label, value string) {
	r.printf("  %s %s\n", r.label.Sprint(PadRight(label+":", labelWidth)), r.value.Sprint(value))
}

// Summary prints the headline statistics.
func (r *Renderer) Summary(s commits.Summary) {
	r.Header("SUMMARY", "")

	if s.TotalCommits == 0 {
		r.printf("  %s\n\n", r.muted.Sprint(msgNoData))

		return
	}

	r.KeyValue("Lines", humanize.Comma(int64(s.TotalLines)))
	r.KeyValue("Commits", humanize.Comma(int64(s.TotalCommits)))
	r.KeyValue("Files", humanize.Comma(int64(s.Files)))
	r.KeyValue("Authors", strconv.Itoa(s.Authors))
	r.KeyValue("Avg file length", humanize.FormatFloat("#,###.#", s.AverageFileLength))
	r.KeyValue("Longest file", fmt.Sprintf("%s (%s lines)", s.LongestFile, humanize.Comma(int64(s.LongestFileLines))))
	r.KeyValue("Longest line", strconv.Itoa(s.LongestLine)+" chars")
	r.KeyValue("Max depth", strconv.Itoa(s.MaxDepth))
	r.KeyValue("First commit", s.FirstCommit.Format(timestampStyle))
	r.KeyValue("Last commit", s.LastCommit.Format(timestampStyle))
	r.KeyValue("Span", span(s.FirstCommit, s.LastCommit))
	r.printf("\n")
}

func span(first, last time.Time) string {
	if !last.After(first) {
		return "single instant"
	}

	return strings.TrimSpace(humanize.RelTime(first, last, "", ""))
}

// Languages prints one percentage bar per language type.
func (r *Renderer) Languages(b commits.Breakdown) {
	r.Header("LANGUAGES", fmt.Sprintf("%s lines", humanize.Comma(int64(b.Total()))))

	if len(b) == 0 {
		r.printf("  %s\n\n", r.muted.Sprint(msgNoData))

		return
	}

	barWidth := max(r.cfg.Width-barReserve, minBarWidth)

	for _, share := range b {
		line := DrawPercentBar(linelog.DisplayName(share.Type), share.Proportion, share.Count, languageWidth, barWidth)
		r.printf("  %s\n", r.bar.Sprint(line))
	}

	r.printf("\n")
}

// Files prints the largest files as a table. limit <= 0 prints all of them.
func (r *Renderer) Files(files []commits.File, limit int) {
	r.Header("FILES", fmt.Sprintf("%d total", len(files)))

	shown := files
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"File", "Lines", "Longest", "Depth", "Types"})

	for _, f := range shown {
		tbl.AppendRow(table.Row{
			TruncateLeft(f.Name, pathWidth),
			humanize.Comma(int64(f.Size())),
			f.LongestLine(),
			f.MaxDepth(),
			typeList(f.TypeCounts()),
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Showing %d of %d", len(shown), len(files))})

	r.printf("%s\n\n", tbl.Render())
}

func typeList(counts map[string]int) string {
	return strings.Join(slices.Sorted(maps.Keys(counts)), ",")
}

// Commits prints commits in chronological order. limit <= 0 prints all of them.
func (r *Renderer) Commits(cs []commits.Commit, limit int) {
	r.Header("COMMITS", fmt.Sprintf("%d total", len(cs)))

	shown := cs
	if limit > 0 && len(shown) > limit {
		shown = shown[len(shown)-limit:]
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Commit", "Author", "When", "Lines", "Longest"})

	for _, c := range shown {
		tbl.AppendRow(table.Row{
			c.ID,
			TruncateWithEllipsis(c.Author, authorWidth),
			c.Datetime.Format(timestampStyle),
			humanize.Comma(int64(c.TotalLines)),
			c.LongestLine,
		})
	}

	r.printf("%s\n\n", tbl.Render())
}

// Window prints the state of the time slider: the cutoff, the progress and
// the window's own summary and languages.
func (r *Renderer) Window(w timeline.Window, progress float64) {
	r.Header("TIME WINDOW", fmt.Sprintf("%.1f%%", progress))
	r.KeyValue("Cutoff", w.Cutoff.Format(timestampStyle))
	r.KeyValue("Commits", strconv.Itoa(len(w.Commits)))
	r.KeyValue("Lines", humanize.Comma(int64(len(w.Records))))
	r.printf("\n")
	r.Summary(w.Summary())
	r.Languages(w.Breakdown())
}

// Selection prints the result of a brush selection.
func (r *Renderer) Selection(sel timeline.Selection) {
	right := "no brush"
	if sel.Active {
		right = fmt.Sprintf("%d selected", len(sel.Commits))
	}

	r.Header("SELECTION", right)

	if sel.Active {
		r.Commits(sel.Commits, 0)
	}

	r.Languages(sel.Breakdown)
}

// Metrics prints the catalog of registered metrics.
func (r *Renderer) Metrics(infos []metrics.Info) {
	r.Header("METRICS", fmt.Sprintf("%d registered", len(infos)))

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Name", "Type", "Description"})

	descWidth := max(r.cfg.Width-barReserve, minBarWidth)

	for _, info := range infos {
		tbl.AppendRow(table.Row{info.Name, info.Type, TruncateWithEllipsis(info.Description, descWidth)})
	}

	r.printf("%s\n\n", tbl.Render())
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = true

	return tbl
}
