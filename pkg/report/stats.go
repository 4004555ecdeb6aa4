package report

import (
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/plotpage"
)

const (
	dateLayout    = "Jan 2, 2006"
	statColumns   = 4
	shortIDLength = 7

	recentCommitLimit = 10
)

func statCards(s commits.Summary) *plotpage.Grid {
	stats := []plotpage.Renderable{
		plotpage.NewStat("Lines", humanize.Comma(int64(s.TotalLines))),
		plotpage.NewStat("Commits", humanize.Comma(int64(s.TotalCommits))),
		plotpage.NewStat("Files", humanize.Comma(int64(s.Files))),
		plotpage.NewStat("Authors", strconv.Itoa(s.Authors)),
		plotpage.NewStat("Avg file length", humanize.FormatFloat("#,###.#", s.AverageFileLength)),
		plotpage.NewStat("Longest file", humanize.Comma(int64(s.LongestFileLines))+" lines").WithNote(s.LongestFile),
		plotpage.NewStat("Longest line", strconv.Itoa(s.LongestLine)+" chars"),
		plotpage.NewStat("Max depth", strconv.Itoa(s.MaxDepth)),
	}

	return plotpage.NewGrid(statColumns, stats...)
}

func recentCommits(cs []commits.Commit, limit int) *plotpage.Table {
	tbl := plotpage.NewTable("Commit", "Author", "When", "Lines", "Longest line")

	start := max(len(cs)-limit, 0)

	for i := len(cs) - 1; i >= start; i-- {
		c := cs[i]
		tbl.AddLinkedRow(c.URL,
			shortID(c.ID),
			c.Author,
			c.Datetime.Format(dateLayout+" 15:04 MST"),
			humanize.Comma(int64(c.TotalLines)),
			strconv.Itoa(c.LongestLine),
		)
	}

	return tbl
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}

	return id[:shortIDLength]
}
