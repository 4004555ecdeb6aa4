package linelog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Lower bounds of the numeric columns.
const (
	minLine   = 1
	minDepth  = 0
	minLength = 0
)

// utcDesignator replaces an empty timezone cell.
const utcDesignator = "Z"

// midnight is the time-of-day used to derive the Date field.
const midnight = "00:00:00"

// timestampLayouts are tried in order for pre-combined and synthesized timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05-07",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 Z07:00",
}

// Parse converts raw rows into line records, one record per row, in input order.
// The first row that cannot be coerced stops parsing with a *MalformedRowError;
// rows are never dropped or defaulted. An empty input yields an empty slice.
func Parse(rows []RawRow) ([]LineRecord, error) {
	records := make([]LineRecord, 0, len(rows))

	for i, row := range rows {
		record, err := ParseRow(i, row)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

// ParseRow converts a single raw row. index is reported in errors.
func ParseRow(index int, row RawRow) (LineRecord, error) {
	for _, column := range RequiredColumns {
		if _, ok := row[column]; !ok {
			return LineRecord{}, malformed(index, column, "", ErrMissingColumn)
		}
	}

	line, err := parseInt(index, row, ColumnLine, minLine)
	if err != nil {
		return LineRecord{}, err
	}

	depth, err := parseInt(index, row, ColumnDepth, minDepth)
	if err != nil {
		return LineRecord{}, err
	}

	length, err := parseInt(index, row, ColumnLength, minLength)
	if err != nil {
		return LineRecord{}, err
	}

	timezone := strings.TrimSpace(row[ColumnTimezone])
	dateCell := strings.TrimSpace(row[ColumnDate])
	timeCell := strings.TrimSpace(row[ColumnTime])

	date, err := combineTimestamp(dateCell, midnight, timezone)
	if err != nil {
		return LineRecord{}, malformed(index, ColumnDate, dateCell, err)
	}

	datetime, err := parseDatetime(index, row, dateCell, timeCell, timezone)
	if err != nil {
		return LineRecord{}, err
	}

	file := row[ColumnFile]

	langType := strings.TrimSpace(row[ColumnType])
	if langType == "" {
		resolved, ok := ResolveType(file)
		if !ok {
			return LineRecord{}, malformed(index, ColumnType, file, ErrUnknownType)
		}

		langType = resolved
	}

	return LineRecord{
		Commit:   row[ColumnCommit],
		File:     file,
		Type:     langType,
		Line:     line,
		Depth:    depth,
		Length:   length,
		Author:   row[ColumnAuthor],
		Date:     date,
		Time:     timeCell,
		Timezone: timezone,
		Datetime: datetime,
	}, nil
}

func parseInt(index int, row RawRow, column string, lowerBound int) (int, error) {
	raw := strings.TrimSpace(row[column])

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, malformed(index, column, raw, ErrNotInteger)
	}

	if value < lowerBound {
		return 0, malformed(index, column, raw, fmt.Errorf("%w: minimum is %d", ErrOutOfRange, lowerBound))
	}

	return value, nil
}

func parseDatetime(index int, row RawRow, dateCell, timeCell, timezone string) (time.Time, error) {
	if combined := strings.TrimSpace(row[ColumnDatetime]); combined != "" {
		datetime, err := ParseTimestamp(combined)
		if err != nil {
			return time.Time{}, malformed(index, ColumnDatetime, combined, err)
		}

		return datetime, nil
	}

	datetime, err := combineTimestamp(dateCell, timeCell, timezone)
	if err != nil {
		return time.Time{}, malformed(index, ColumnTime, dateCell+" "+timeCell+" "+timezone, err)
	}

	return datetime, nil
}

func combineTimestamp(date, clock, timezone string) (time.Time, error) {
	if timezone == "" {
		timezone = utcDesignator
	}

	return ParseTimestamp(date + "T" + clock + timezone)
}

// ParseTimestamp parses an ISO-8601 style timestamp with a UTC offset.
// The offset is preserved in the returned location so that wall-clock
// fields (hour, minute) reflect the author's local time.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, value)
}
