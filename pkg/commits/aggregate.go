package commits

import (
	"cmp"
	"slices"

	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
)

// Aggregator groups line records into commits and files.
type Aggregator struct {
	// URLBase is prefixed to each commit id to build its link. Empty disables links.
	URLBase string
}

// Commits groups records by commit id in first-appearance order and sorts the
// groups ascending by datetime. The sort is stable, so commits sharing a
// timestamp keep their first-appearance order.
func (a Aggregator) Commits(records []linelog.LineRecord) []Commit {
	ids, groups := groupBy(records, func(r linelog.LineRecord) string { return r.Commit })

	out := make([]Commit, 0, len(ids))

	for _, id := range ids {
		out = append(out, NewCommit(id, a.URLBase, groups[id]))
	}

	slices.SortStableFunc(out, func(x, y Commit) int {
		return x.Datetime.Compare(y.Datetime)
	})

	return out
}

// Files groups records by path and sorts the groups descending by line
// count. Ties keep first-appearance order.
func (a Aggregator) Files(records []linelog.LineRecord) []File {
	names, groups := groupBy(records, func(r linelog.LineRecord) string { return r.File })

	out := make([]File, 0, len(names))

	for _, name := range names {
		out = append(out, NewFile(name, groups[name]))
	}

	slices.SortStableFunc(out, func(x, y File) int {
		return cmp.Compare(y.Size(), x.Size())
	})

	return out
}

// AggregateCommits is Aggregator{}.Commits.
func AggregateCommits(records []linelog.LineRecord) []Commit {
	return Aggregator{}.Commits(records)
}

// AggregateFiles is Aggregator{}.Files.
func AggregateFiles(records []linelog.LineRecord) []File {
	return Aggregator{}.Files(records)
}

// Records concatenates the lines of the given commits in commit order.
func Records(cs []Commit) []linelog.LineRecord {
	total := 0
	for _, c := range cs {
		total += len(c.lines)
	}

	out := make([]linelog.LineRecord, 0, total)
	for _, c := range cs {
		out = append(out, c.lines...)
	}

	return out
}

// Summaries returns the serializable summaries of the given commits.
func Summaries(cs []Commit) []CommitSummary {
	out := make([]CommitSummary, len(cs))
	for i, c := range cs {
		out[i] = c.CommitSummary
	}

	return out
}

// groupBy returns the distinct keys in first-appearance order and the records
// per key in input order.
func groupBy(records []linelog.LineRecord, key func(linelog.LineRecord) string) ([]string, map[string][]linelog.LineRecord) {
	var order []string

	groups := make(map[string][]linelog.LineRecord)

	for _, r := range records {
		k := key(r)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}

		groups[k] = append(groups[k], r)
	}

	return order, groups
}
