package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
)

const maxGridColumns = 4

var gridColumnClasses = map[int]string{
	1: "grid-cols-1",
	2: "grid-cols-1 md:grid-cols-2",
	3: "grid-cols-1 md:grid-cols-2 lg:grid-cols-3",
	4: "grid-cols-2 lg:grid-cols-4",
}

// Stat renders one headline number with a label.
type Stat struct {
	Label string
	Value string
	Note  string
}

// NewStat creates a new stat display.
func NewStat(label, value string) *Stat {
	return &Stat{Label: label, Value: value}
}

// WithNote adds a secondary line under the value.
func (s *Stat) WithNote(note string) *Stat {
	s.Note = note

	return s
}

// Render writes the stat HTML.
func (s *Stat) Render(w io.Writer) error {
	return writeTemplate(w, "stat.html", statData{Label: s.Label, Value: s.Value, Note: s.Note})
}

// Grid renders a responsive grid layout.
type Grid struct {
	Columns int
	Items   []Renderable
}

// NewGrid creates a grid with columns clamped to [1, 4].
func NewGrid(columns int, items ...Renderable) *Grid {
	return &Grid{Columns: min(max(columns, 1), maxGridColumns), Items: items}
}

// Render writes the grid HTML.
func (g *Grid) Render(w io.Writer) error {
	items := make([]template.HTML, 0, len(g.Items))

	for i, item := range g.Items {
		if item == nil {
			continue
		}

		var buf bytes.Buffer

		err := item.Render(&buf)
		if err != nil {
			return fmt.Errorf("rendering grid item %d: %w", i, err)
		}

		items = append(items, template.HTML(buf.String())) //nolint:gosec // items are rendered components.
	}

	return writeTemplate(w, "grid.html", gridData{ColClass: gridColumnClasses[g.Columns], Items: items})
}

// Table renders an HTML table. Cell text is escaped; a cell may carry a link.
type Table struct {
	Headers []string
	Rows    [][]tableCell
}

// NewTable creates a new table.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow adds a row of plain text cells.
func (t *Table) AddRow(cells ...string) *Table {
	row := make([]tableCell, len(cells))
	for i, c := range cells {
		row[i] = tableCell{Text: c}
	}

	t.Rows = append(t.Rows, row)

	return t
}

// AddLinkedRow adds a row whose first cell links to href. An empty href
// renders plain text; unsafe URL schemes are neutralized by html/template.
func (t *Table) AddLinkedRow(href string, cells ...string) *Table {
	t.AddRow(cells...)

	if len(cells) > 0 && href != "" {
		t.Rows[len(t.Rows)-1][0].Link = href
	}

	return t
}

// Render writes the table HTML.
func (t *Table) Render(w io.Writer) error {
	return writeTemplate(w, "table.html", tableData{Headers: t.Headers, Rows: t.Rows})
}

func writeTemplate(w io.Writer, name string, data any) error {
	html, err := renderTemplate(name, data)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, string(html))
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}

	return nil
}
