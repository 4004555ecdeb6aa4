package cachefile

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
)

// Test constants to avoid magic strings/numbers.
const (
	testURLBase = "https://example.com/commit/"
	testCSV     = `commit,author,date,time,timezone,datetime,file,type,line,depth,length
c1,Ann,2024-01-01,09:15:00,-05:00,,src/app.ts,ts,1,0,20
c1,Ann,2024-01-01,09:15:00,-05:00,,src/app.ts,ts,2,1,35
c2,Bob,2024-01-03,22:40:00,+02:00,,src/site.css,css,1,0,12
c0,Cy,2023-12-30,07:00:00,+00:00,,README.md,md,1,0,80
c2,Bob,2024-01-03,22:40:00,+02:00,,src/app.ts,ts,3,2,4
`
)

func ingestFixture(t *testing.T) ([]linelog.LineRecord, []commits.Commit) {
	t.Helper()

	records, err := linelog.Ingest(strings.NewReader(testCSV))
	require.NoError(t, err)

	return records, commits.Aggregator{URLBase: testURLBase}.Commits(records)
}

func assertSameCommits(t *testing.T, want, got []commits.Commit) {
	t.Helper()

	require.Len(t, got, len(want))

	for i := range want {
		w, g := want[i], got[i]

		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.URL, g.URL)
		assert.Equal(t, w.Author, g.Author)
		assert.True(t, w.Datetime.Equal(g.Datetime), "commit %s datetime", w.ID)
		assert.True(t, w.Date.Equal(g.Date), "commit %s date", w.ID)
		assert.InDelta(t, w.HourFrac, g.HourFrac, 1e-9)
		assert.Equal(t, w.TotalLines, g.TotalLines)
		assert.Equal(t, w.LongestLine, g.LongestLine)
		require.Len(t, g.Lines(), len(w.Lines()))

		for j := range w.Lines() {
			assert.Equal(t, w.Lines()[j].Line, g.Lines()[j].Line)
			assert.True(t, w.Lines()[j].Datetime.Equal(g.Lines()[j].Datetime))
		}
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	records, cs := ingestFixture(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Build(records, cs)))

	doc, err := Decode(&buf)
	require.NoError(t, err)

	restoredRecords, restored, err := doc.Restore()
	require.NoError(t, err)

	assert.Len(t, restoredRecords, len(records))
	assertSameCommits(t, cs, restored)

	// Re-aggregating the restored records yields the same commits.
	assertSameCommits(t, cs, commits.Aggregator{URLBase: testURLBase}.Commits(restoredRecords))
}

func TestRoundTrip_PreservesOwnOffsetHour(t *testing.T) {
	t.Parallel()

	records, cs := ingestFixture(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Build(records, cs)))

	doc, err := Decode(&buf)
	require.NoError(t, err)

	_, restored, err := doc.Restore()
	require.NoError(t, err)

	for _, c := range restored {
		assert.InDelta(t, commits.HourFraction(c.Datetime), c.HourFrac, 1e-9, c.ID)
	}
}

func TestBuild_EmptyDataset(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Build(nil, nil)))
	assert.JSONEq(t, `{"data":[],"commits":[]}`, buf.String())

	doc, err := Decode(&buf)
	require.NoError(t, err)

	records, cs, err := doc.Restore()
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, cs)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "invalid json", input: `{"data": [`, want: "invalid JSON"},
		{name: "not an object", input: `[1, 2]`, want: "not a JSON object"},
		{name: "missing data", input: `{"commits": []}`, want: `"data"`},
		{name: "missing commits", input: `{"data": []}`, want: `"commits"`},
		{name: "wrong type", input: `{"data": {}, "commits": []}`, want: "schema violation"},
		{
			name:  "negative length",
			input: `{"data":[{"commit":"c","file":"f","type":"go","line":1,"depth":0,"length":-1,"author":"a","datetime":"2024-01-01T00:00:00Z"}],"commits":[]}`,
			want:  "schema violation",
		},
		{
			name:  "bad datetime",
			input: `{"data":[],"commits":[{"id":"c","author":"a","datetime":"yesterday","hourFrac":1,"totalLines":1,"longestLine":0}]}`,
			want:  "schema violation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)

			var parseErr *CacheParseError
			require.ErrorAs(t, err, &parseErr)
			assert.ErrorIs(t, err, ErrCacheParse)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRestore_Mismatch(t *testing.T) {
	t.Parallel()

	records, cs := ingestFixture(t)

	doc := Build(records, cs)
	doc.Commits[0].TotalLines++

	_, _, err := doc.Restore()
	assert.ErrorIs(t, err, ErrCacheParse)

	doc = Build(records, cs[1:])

	_, _, err = doc.Restore()
	require.ErrorIs(t, err, ErrCacheParse)
	assert.Contains(t, err.Error(), "unlisted commit")

	doc = Build(records, append(cs, cs[0]))

	_, _, err = doc.Restore()
	require.ErrorIs(t, err, ErrCacheParse)
	assert.Contains(t, err.Error(), "listed twice")
}

func TestRestore_SortsStoredCommits(t *testing.T) {
	t.Parallel()

	records, cs := ingestFixture(t)

	reversed := slices.Clone(cs)
	slices.Reverse(reversed)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Build(records, reversed)))

	doc, err := Decode(&buf)
	require.NoError(t, err)

	_, restored, err := doc.Restore()
	require.NoError(t, err)

	assertSameCommits(t, cs, restored)
}

func TestRestore_SummaryDisagreesWithRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tamper func(*commits.CommitSummary)
		want   string
	}{
		{
			name:   "datetime",
			tamper: func(s *commits.CommitSummary) { s.Datetime = s.Datetime.AddDate(0, 2, 0) },
			want:   "datetime",
		},
		{
			name:   "author",
			tamper: func(s *commits.CommitSummary) { s.Author = "Mallory" },
			want:   "author",
		},
		{
			name:   "hour fraction",
			tamper: func(s *commits.CommitSummary) { s.HourFrac += 3 },
			want:   "hourFrac",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			records, cs := ingestFixture(t)

			doc := Build(records, cs)
			tt.tamper(&doc.Commits[1])

			_, _, err := doc.Restore()
			require.ErrorIs(t, err, ErrCacheParse)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	records, cs := ingestFixture(t)

	for _, name := range []string{"cache.json", "cache.json.lz4"} {
		path := filepath.Join(t.TempDir(), "nested", name)

		require.NoError(t, Save(path, Build(records, cs)), name)

		doc, err := Load(path)
		require.NoError(t, err, name)

		_, restored, err := doc.Restore()
		require.NoError(t, err, name)
		assertSameCommits(t, cs, restored)

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary files left behind for %s", name)
	}
}

func TestSave_LZ4IsCompressed(t *testing.T) {
	t.Parallel()

	records, cs := ingestFixture(t)
	dir := t.TempDir()

	plain := filepath.Join(dir, "cache.json")
	packed := filepath.Join(dir, "cache.lz4")

	require.NoError(t, Save(plain, Build(records, cs)))
	require.NoError(t, Save(packed, Build(records, cs)))

	raw, err := os.ReadFile(packed)
	require.NoError(t, err)
	assert.NotEqual(t, byte('{'), raw[0])
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrCacheParse))

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("not json"), 0o600))

	_, err = Load(corrupt)

	var parseErr *CacheParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, corrupt, parseErr.Path)
	assert.Contains(t, err.Error(), corrupt)

	notLZ4 := filepath.Join(dir, "plain.lz4")
	require.NoError(t, os.WriteFile(notLZ4, []byte(`{"data":[],"commits":[]}`), 0o600))

	_, err = Load(notLZ4)
	assert.ErrorIs(t, err, ErrCacheParse)
}

func TestCodecFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, JSONExtension, CodecFor("a/cache.json").Extension())
	assert.Equal(t, LZ4Extension, CodecFor("a/cache.json.LZ4").Extension())
	assert.Equal(t, JSONExtension, CodecFor("cache").Extension())
}

func TestJSONCodec_Indent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	codec := &JSONCodec{Indent: "  "}
	require.NoError(t, codec.Encode(&buf, Build(nil, nil)))
	assert.Contains(t, buf.String(), "\n  ")
}

func TestSchema(t *testing.T) {
	t.Parallel()

	assert.Contains(t, string(Schema()), `"required": ["data", "commits"]`)
}
