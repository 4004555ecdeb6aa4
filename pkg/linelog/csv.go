package linelog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// byteOrderMark is stripped from the first header cell.
const byteOrderMark = "\ufeff"

// ErrNoHeader is returned when a non-empty CSV input lacks a header row.
var ErrNoHeader = errors.New("csv input has no header row")

// ReadCSV reads a header-led CSV document into raw rows. Short rows are kept
// as-is so that Parse can report the missing columns with their row index.
// An empty document yields no rows.
func ReadCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []RawRow{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := normalizeHeader(header)
	if len(columns) == 0 {
		return nil, ErrNoHeader
	}

	rows := make([]RawRow, 0)

	for {
		fields, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows), readErr)
		}

		row := make(RawRow, len(columns))

		for i, value := range fields {
			if i < len(columns) && columns[i] != "" {
				row[columns[i]] = value
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// Ingest reads a CSV document and parses every row into a line record.
func Ingest(r io.Reader) ([]LineRecord, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}

	return Parse(rows)
}

func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	named := 0

	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, byteOrderMark)
		}

		columns[i] = strings.ToLower(strings.TrimSpace(name))
		if columns[i] != "" {
			named++
		}
	}

	if named == 0 {
		return nil
	}

	return columns
}
