package commits

import "github.com/Sumatoshi-tech/locstats/pkg/linelog"

// LanguageShare is the line count and proportion of one language type.
type LanguageShare struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion"`
}

// Breakdown is an ordered type -> share mapping, in first-appearance order.
type Breakdown []LanguageShare

// Get returns the share of the given type.
func (b Breakdown) Get(langType string) (LanguageShare, bool) {
	for _, s := range b {
		if s.Type == langType {
			return s, true
		}
	}

	return LanguageShare{}, false
}

// AsMap returns the breakdown keyed by type.
func (b Breakdown) AsMap() map[string]LanguageShare {
	m := make(map[string]LanguageShare, len(b))
	for _, s := range b {
		m[s.Type] = s
	}

	return m
}

// Total returns the summed count.
func (b Breakdown) Total() int {
	total := 0
	for _, s := range b {
		total += s.Count
	}

	return total
}

// LanguageBreakdown counts records per type and computes each type's share of
// the total. Empty input yields an empty breakdown.
func LanguageBreakdown(records []linelog.LineRecord) Breakdown {
	out := Breakdown{}
	index := make(map[string]int)

	for _, r := range records {
		i, ok := index[r.Type]
		if !ok {
			i = len(out)
			index[r.Type] = i
			out = append(out, LanguageShare{Type: r.Type})
		}

		out[i].Count++
	}

	total := float64(len(records))
	for i := range out {
		out[i].Proportion = float64(out[i].Count) / total
	}

	return out
}

// FileTypes is the per-type line count of one file.
type FileTypes struct {
	File  string    `json:"file"`
	Lines int       `json:"lines"`
	Types Breakdown `json:"types"`
}

// FileTypeBreakdown returns the per-file-per-type rollup, in the order of files.
func FileTypeBreakdown(files []File) []FileTypes {
	out := make([]FileTypes, 0, len(files))

	for _, f := range files {
		out = append(out, FileTypes{
			File:  f.Name,
			Lines: f.Size(),
			Types: LanguageBreakdown(f.lines),
		})
	}

	return out
}
