package source

import (
	"encoding/csv"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/ib-77/rowbatch/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readAll(t *testing.T, f *File) ([]Row, []error) {
	t.Helper()
	var rows []Row
	var errs []error
	for row, err := range f.Rows() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, errs
}

func TestOpen_ReadsHeaderAndRows(t *testing.T) {
	t.Parallel()

	for _, mapped := range []bool{false, true} {
		path := writeFixture(t, "id,value,label\n1,10.5,Positive\n2,5.0,Negative\n3,7.8,Neutral\n")

		f, err := Open(path, WithMmap(mapped))
		require.NoError(t, err)

		assert.Equal(t, []string{"id", "value", "label"}, f.Header().Names())
		rows, errs := readAll(t, f)
		assert.Empty(t, errs)
		require.Len(t, rows, 3)
		assert.Equal(t, Row{Line: 2, Fields: []string{"1", "10.5", "Positive"}}, rows[0])
		assert.Equal(t, 4, rows[2].Line)
		assert.Equal(t, path, f.Path())
		require.NoError(t, f.Close())
	}
}

func TestOpen_NotFound(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrSourceNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var pe *PathError
	assert.ErrorAs(t, err, &pe)
}

func TestOpen_EmptyFile(t *testing.T) {
	t.Parallel()

	for _, mapped := range []bool{false, true} {
		_, err := Open(writeFixture(t, ""), WithMmap(mapped))
		assert.ErrorIs(t, err, record.ErrHeaderMissing)
	}
}

func TestOpen_BadHeader(t *testing.T) {
	t.Parallel()

	_, err := Open(writeFixture(t, ",,\n1,2,3\n"))
	assert.ErrorIs(t, err, record.ErrEmptyHeader)

	_, err = Open(writeFixture(t, "id,id\n1,2\n"))
	assert.ErrorIs(t, err, record.ErrDuplicateColumn)

	_, err = Open(writeFixture(t, "id,\"val\"ue\n1,2\n"))
	assert.ErrorIs(t, err, record.ErrHeaderMissing)
}

func TestOpen_HeaderOnly(t *testing.T) {
	t.Parallel()

	f, err := Open(writeFixture(t, "id,value,label\n"))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Next()
	assert.Equal(t, io.EOF, err)
}

func TestRows_ParseErrorsContinue(t *testing.T) {
	t.Parallel()

	f, err := Open(writeFixture(t, "a;b\n1;2\n3;\"x\"y\n5;6;7\n8;9\n"), WithDelimiter(';'))
	require.NoError(t, err)
	defer f.Close()

	rows, errs := readAll(t, f)
	require.Len(t, errs, 1)

	var rowErr *record.RowError
	require.ErrorAs(t, errs[0], &rowErr)
	assert.Equal(t, 3, rowErr.Line)
	assert.ErrorIs(t, errs[0], csv.ErrQuote)

	// width mismatches are left to the decoder
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"5", "6", "7"}, rows[1].Fields)
	assert.Equal(t, 5, rows[2].Line)
}

func TestOpen_Options(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "# generated\nid\tname\n1\t  spaced\n# skipped\n2\tx\n")
	f, err := Open(path, WithDelimiter('\t'), WithComment('#'), WithTrimLeadingSpace(true), WithLazyQuotes(true))
	require.NoError(t, err)
	defer f.Close()

	rows, errs := readAll(t, f)
	assert.Empty(t, errs)
	require.Len(t, rows, 2)
	assert.Equal(t, "spaced", rows[0].Fields[1])

	_, err = Open(path, WithDelimiter('"'))
	assert.ErrorIs(t, err, ErrInvalidDelimiter)
	_, err = Open(path, WithComment(','))
	assert.ErrorIs(t, err, ErrInvalidDelimiter)
}
