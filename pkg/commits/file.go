package commits

import "github.com/Sumatoshi-tech/locstats/pkg/linelog"

// File groups the line records sharing a file path.
type File struct {
	Name string `json:"name"`

	lines []linelog.LineRecord
}

// FileSummary is the serializable view of a File.
type FileSummary struct {
	Name        string         `json:"name"`
	Lines       int            `json:"lines"`
	LongestLine int            `json:"longestLine"`
	MaxDepth    int            `json:"maxDepth"`
	Types       map[string]int `json:"types"`
}

// NewFile builds a file aggregate from its records.
func NewFile(name string, lines []linelog.LineRecord) File {
	return File{Name: name, lines: lines}
}

// Lines returns the file's records. The slice must not be modified.
func (f File) Lines() []linelog.LineRecord {
	return f.lines
}

// Size returns the number of records in the file.
func (f File) Size() int {
	return len(f.lines)
}

// LongestLine returns the maximum line length, or 0 for an empty file.
func (f File) LongestLine() int {
	longest := 0

	for _, r := range f.lines {
		longest = max(longest, r.Length)
	}

	return longest
}

// MaxDepth returns the deepest nesting level in the file.
func (f File) MaxDepth() int {
	depth := 0

	for _, r := range f.lines {
		depth = max(depth, r.Depth)
	}

	return depth
}

// TypeCounts returns the number of records per language type.
func (f File) TypeCounts() map[string]int {
	counts := make(map[string]int)

	for _, r := range f.lines {
		counts[r.Type]++
	}

	return counts
}

// Summary returns the serializable view of the file.
func (f File) Summary() FileSummary {
	return FileSummary{
		Name:        f.Name,
		Lines:       f.Size(),
		LongestLine: f.LongestLine(),
		MaxDepth:    f.MaxDepth(),
		Types:       f.TypeCounts(),
	}
}
