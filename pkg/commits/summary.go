package commits

import (
	"time"

	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
)

// Summary holds the headline statistics of a record set.
type Summary struct {
	TotalLines        int       `json:"totalLines"        yaml:"total_lines"`
	TotalCommits      int       `json:"totalCommits"      yaml:"total_commits"`
	Files             int       `json:"files"             yaml:"files"`
	AverageFileLength float64   `json:"averageFileLength" yaml:"average_file_length"`
	LongestFile       string    `json:"longestFile"       yaml:"longest_file"`
	LongestFileLines  int       `json:"longestFileLines"  yaml:"longest_file_lines"`
	LongestLine       int       `json:"longestLine"       yaml:"longest_line"`
	MaxDepth          int       `json:"maxDepth"          yaml:"max_depth"`
	Authors           int       `json:"authors"           yaml:"authors"`
	FirstCommit       time.Time `json:"firstCommit"       yaml:"first_commit"`
	LastCommit        time.Time `json:"lastCommit"        yaml:"last_commit"`
}

// ComputeSummary derives the summary of records and their chronologically
// sorted commits. The longest file is the first file to reach the maximum line
// count in record order.
func ComputeSummary(records []linelog.LineRecord, cs []Commit) Summary {
	s := Summary{
		TotalLines:   len(records),
		TotalCommits: len(cs),
	}

	files := AggregateFiles(records)
	s.Files = len(files)

	if len(files) > 0 {
		// Files is stable-sorted by size, so the first entry is the first to reach the max.
		s.LongestFile = files[0].Name
		s.LongestFileLines = files[0].Size()
		s.AverageFileLength = float64(len(records)) / float64(len(files))
	}

	authors := make(map[string]struct{})

	for _, r := range records {
		s.LongestLine = max(s.LongestLine, r.Length)
		s.MaxDepth = max(s.MaxDepth, r.Depth)
		authors[r.Author] = struct{}{}
	}

	s.Authors = len(authors)

	if len(cs) > 0 {
		s.FirstCommit = cs[0].Datetime
		s.LastCommit = cs[len(cs)-1].Datetime
	}

	return s
}
