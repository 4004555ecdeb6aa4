package linelog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV_Empty(t *testing.T) {
	t.Parallel()

	rows, err := ReadCSV(strings.NewReader(""))

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	t.Parallel()

	rows, err := ReadCSV(strings.NewReader("commit,author\n"))

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadCSV_NormalizesHeader(t *testing.T) {
	t.Parallel()

	input := "\ufeff Commit , AUTHOR\nabc,Ann\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "abc", rows[0][ColumnCommit])
	assert.Equal(t, "Ann", rows[0][ColumnAuthor])
}

func TestReadCSV_ShortRowKeepsPresentColumns(t *testing.T) {
	t.Parallel()

	rows, err := ReadCSV(strings.NewReader("commit,author,file\nabc,Ann\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, hasFile := rows[0][ColumnFile]
	assert.False(t, hasFile)

	_, err = Parse(rows)

	var rowErr *MalformedRowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 0, rowErr.Row)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadCSV_QuotedFields(t *testing.T) {
	t.Parallel()

	rows, err := ReadCSV(strings.NewReader("commit,author\nabc,\"Doe, Jane\"\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Doe, Jane", rows[0][ColumnAuthor])
}

func TestReadCSV_BlankHeader(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader(" , \nabc,def\n"))

	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadCSV_BrokenQuote(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader("commit,author\n\"abc,Ann\n"))

	assert.Error(t, err)
}

func TestResolveType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file string
		want string
		ok   bool
	}{
		{file: "main.go", want: "go", ok: true},
		{file: "pkg/styles/site.CSS", want: "css", ok: true},
		{file: "scripts/tool.py", want: "py", ok: true},
		{file: "Makefile", want: "makefile", ok: true},
		{file: "blob.zzqqxx", ok: false},
		{file: "README-no-extension-zz", ok: false},
	}

	for _, tt := range tests {
		got, ok := ResolveType(tt.file)
		assert.Equal(t, tt.ok, ok, tt.file)
		assert.Equal(t, tt.want, got, tt.file)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Go", DisplayName("go"))
	assert.Equal(t, "Python", DisplayName("py"))
	assert.Equal(t, "CSS", DisplayName("css"))
	assert.Equal(t, "zzqqxx", DisplayName("zzqqxx"))
	assert.Empty(t, DisplayName(""))
}
