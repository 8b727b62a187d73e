// Package table reads the tabular inputs that drive figure construction.
//
// Inputs are CSV files (annotation tables, long-format alignment tables,
// square distance matrices) and plain line lists (explicit axis orders).
// Gzip-compressed files are handled transparently based on the .gz suffix.
//
// Absence of an optional file is signalled by the caller never asking for
// it; every reader in this package treats a missing path as a hard error,
// naming the offending file.
package table

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/genemap/genemap/pkg/errors"
)

// Table is a column-oriented view of a CSV file.
type Table struct {
	// Path is the file the table was read from, used in error messages.
	Path string

	// Columns holds the header names in file order.
	Columns []string

	rows  [][]string
	index map[string]int
}

// ReadCSV reads a CSV file into a Table.
// Files ending in .gz are decompressed transparently.
func ReadCSV(path string) (*Table, error) {
	r, closer, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parsing %s", path)
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyFile, "no rows found in %s", path)
	}

	t := &Table{
		Path:    path,
		Columns: records[0],
		rows:    records[1:],
		index:   make(map[string]int, len(records[0])),
	}
	for i, col := range t.Columns {
		t.index[col] = i
	}
	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the header contains col.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// RequireColumns returns a fatal error naming the file and the first
// missing column, or nil when every column is present.
func (t *Table) RequireColumns(cols ...string) error {
	for _, col := range cols {
		if !t.HasColumn(col) {
			return errors.New(errors.ErrCodeMissingColumn,
				"%s does not contain column %q", t.Path, col)
		}
	}
	return nil
}

// Column returns the values of col in row order.
func (t *Table) Column(col string) ([]string, error) {
	ix, ok := t.index[col]
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingColumn,
			"%s does not contain column %q", t.Path, col)
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[ix]
	}
	return out, nil
}

// NumericColumn returns the values of col parsed as float64.
func (t *Table) NumericColumn(col string) ([]float64, error) {
	raw, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeNotNumeric,
				"column %q in %s contains non-numeric value %q", col, t.Path, s)
		}
		out[i] = v
	}
	return out, nil
}

// Cell returns the value at data row i for col.
func (t *Table) Cell(i int, col string) (string, error) {
	ix, ok := t.index[col]
	if !ok {
		return "", errors.New(errors.ErrCodeMissingColumn,
			"%s does not contain column %q", t.Path, col)
	}
	return t.rows[i][ix], nil
}

// Lines reads a file into a slice of lines with trailing newlines stripped.
// Files ending in .gz are decompressed transparently. An empty file is an
// error: an explicit-order file with no entries is always a mistake.
func Lines(path string) ([]string, error) {
	r, closer, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "reading %s", path)
	}
	if len(lines) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyFile, "no lines found in %s", path)
	}
	return lines, nil
}

// openMaybeGzip opens path, wrapping the reader with gzip decompression
// when the file ends in .gz. The returned closer releases both readers.
func openMaybeGzip(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.New(errors.ErrCodeFileNotFound, "cannot find file %q", path)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "opening %s", path)
	}

	if !strings.HasSuffix(path, ".gz") {
		return f, func() { f.Close() }, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "decompressing %s", path)
	}
	return gz, func() { gz.Close(); f.Close() }, nil
}
