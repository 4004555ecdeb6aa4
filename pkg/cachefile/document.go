// Package cachefile reads and writes the precomputed cache: a JSON document
// holding the flat line records and the commit summaries derived from them,
// so a dataset can be restored without re-ingesting the raw log.
package cachefile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
)

//go:embed schema.json
var schemaJSON []byte

// Top-level document fields.
const (
	fieldData    = "data"
	fieldCommits = "commits"
)

// Document is the cache layout.
type Document struct {
	Data    []linelog.LineRecord    `json:"data"`
	Commits []commits.CommitSummary `json:"commits"`
}

// Build creates a document from records and their aggregated commits.
func Build(records []linelog.LineRecord, cs []commits.Commit) *Document {
	data := records
	if data == nil {
		data = []linelog.LineRecord{}
	}

	return &Document{
		Data:    data,
		Commits: commits.Summaries(cs),
	}
}

// Schema returns the JSON schema every document is validated against.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// hourFracTolerance absorbs float formatting differences in stored hourFrac.
const hourFracTolerance = 1e-6

// Restore re-attaches each commit's records from Data by id and rebuilds the
// commit from them. A summary that disagrees with its records, a duplicate
// id, and any record of an unlisted commit fail with *CacheParseError.
// Commits are returned stably sorted by datetime whatever the stored order.
func (d *Document) Restore() ([]linelog.LineRecord, []commits.Commit, error) {
	groups := make(map[string][]linelog.LineRecord)

	for _, r := range d.Data {
		groups[r.Commit] = append(groups[r.Commit], r)
	}

	out := make([]commits.Commit, 0, len(d.Commits))
	listed := make(map[string]struct{}, len(d.Commits))

	for _, summary := range d.Commits {
		if _, dup := listed[summary.ID]; dup {
			return nil, nil, parseError(fmt.Sprintf("commit %s listed twice", summary.ID), nil)
		}

		listed[summary.ID] = struct{}{}

		c, err := restoreCommit(summary, groups[summary.ID])
		if err != nil {
			return nil, nil, err
		}

		out = append(out, c)
	}

	for id := range groups {
		if _, ok := listed[id]; !ok {
			return nil, nil, parseError(fmt.Sprintf("records reference unlisted commit %s", id), nil)
		}
	}

	slices.SortStableFunc(out, func(x, y commits.Commit) int {
		return x.Datetime.Compare(y.Datetime)
	})

	return d.Data, out, nil
}

func restoreCommit(summary commits.CommitSummary, lines []linelog.LineRecord) (commits.Commit, error) {
	derived := commits.NewCommit(summary.ID, "", lines)

	if derived.TotalLines != summary.TotalLines || derived.LongestLine != summary.LongestLine {
		return commits.Commit{}, parseError(fmt.Sprintf(
			"commit %s: summary has %d lines (longest %d), records give %d (longest %d)",
			summary.ID, summary.TotalLines, summary.LongestLine, derived.TotalLines, derived.LongestLine), nil)
	}

	if len(lines) == 0 {
		return commits.FromSummary(summary, lines), nil
	}

	switch {
	case !derived.Datetime.Equal(summary.Datetime):
		return commits.Commit{}, parseError(fmt.Sprintf("commit %s: summary datetime %s, records give %s",
			summary.ID, summary.Datetime.Format(time.RFC3339), derived.Datetime.Format(time.RFC3339)), nil)
	case derived.Author != summary.Author:
		return commits.Commit{}, parseError(fmt.Sprintf("commit %s: summary author %q, records give %q",
			summary.ID, summary.Author, derived.Author), nil)
	case math.Abs(derived.HourFrac-summary.HourFrac) > hourFracTolerance:
		return commits.Commit{}, parseError(fmt.Sprintf("commit %s: summary hourFrac %g, records give %g",
			summary.ID, summary.HourFrac, derived.HourFrac), nil)
	}

	derived.URL = summary.URL

	return derived, nil
}

// Encode writes the document as compact JSON.
func Encode(w io.Writer, doc *Document) error {
	return NewJSONCodec().Encode(w, doc)
}

// Decode reads and validates a document. Invalid JSON, a missing top-level
// field and schema violations fail with *CacheParseError.
func Decode(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}

	return decodeBytes(raw)
}

func decodeBytes(raw []byte) (*Document, error) {
	var generic any

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	decodeErr := dec.Decode(&generic)
	if decodeErr != nil {
		return nil, parseError("invalid JSON", decodeErr)
	}

	top, ok := generic.(map[string]any)
	if !ok {
		return nil, parseError("document is not a JSON object", nil)
	}

	for _, field := range []string{fieldData, fieldCommits} {
		if _, present := top[field]; !present {
			return nil, parseError(fmt.Sprintf("missing top-level field %q", field), nil)
		}
	}

	validateErr := validate(generic)
	if validateErr != nil {
		return nil, validateErr
	}

	var doc Document

	unmarshalErr := json.Unmarshal(raw, &doc)
	if unmarshalErr != nil {
		return nil, parseError("decode document", unmarshalErr)
	}

	return &doc, nil
}

func validate(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return parseError("schema validation", err)
	}

	if result.Valid() {
		return nil
	}

	errs := result.Errors()

	return parseError(fmt.Sprintf("schema violation at %s: %s (%d total)",
		errs[0].Field(), errs[0].Description(), len(errs)), nil)
}
