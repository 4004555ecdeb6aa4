// Package linelog parses per-line commit annotation logs into typed records.
//
// The input is a tabular log with one row per source line per commit, as
// produced by line-of-code annotation tools. Each row carries the commit id,
// author, file path, language tag, line position, nesting depth, line length
// and the commit timestamp split into date, time and UTC offset columns.
package linelog

import "time"

// Column names of the tabular log.
const (
	ColumnCommit   = "commit"
	ColumnAuthor   = "author"
	ColumnDate     = "date"
	ColumnTime     = "time"
	ColumnTimezone = "timezone"
	ColumnDatetime = "datetime"
	ColumnFile     = "file"
	ColumnType     = "type"
	ColumnLine     = "line"
	ColumnDepth    = "depth"
	ColumnLength   = "length"
)

// RequiredColumns lists the columns every row must carry. The datetime column
// is optional and synthesized from date, time and timezone when absent.
var RequiredColumns = []string{
	ColumnCommit,
	ColumnAuthor,
	ColumnDate,
	ColumnTime,
	ColumnTimezone,
	ColumnFile,
	ColumnType,
	ColumnLine,
	ColumnDepth,
	ColumnLength,
}

// RawRow is one row of the tabular log, keyed by column name.
type RawRow map[string]string

// LineRecord is one annotated source line observed in one commit.
// Records sharing a Commit value share the same Author and Datetime.
type LineRecord struct {
	Commit   string    `json:"commit"`
	File     string    `json:"file"`
	Type     string    `json:"type"`
	Line     int       `json:"line"`
	Depth    int       `json:"depth"`
	Length   int       `json:"length"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
	Time     string    `json:"time"`
	Timezone string    `json:"timezone"`
	Datetime time.Time `json:"datetime"`
}

// OnOrBefore reports whether the record was written at or before cutoff.
func (r LineRecord) OnOrBefore(cutoff time.Time) bool {
	return !r.Datetime.After(cutoff)
}
