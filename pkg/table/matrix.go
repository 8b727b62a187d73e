package table

import (
	"strconv"
	"strings"

	"github.com/genemap/genemap/pkg/errors"
)

// Matrix is a dense numeric matrix with named rows and columns.
// It is the wide-format counterpart of a long CSV table, and the input
// shape consumed by the ordering resolver and the tree builder.
type Matrix struct {
	RowIDs []string
	ColIDs []string
	Values [][]float64

	rowIndex map[string]int
	colIndex map[string]int
}

// NewMatrix builds a Matrix from parallel ID slices and values.
// Values must be rectangular with len(RowIDs) rows and len(ColIDs) columns.
func NewMatrix(rowIDs, colIDs []string, values [][]float64) *Matrix {
	m := &Matrix{
		RowIDs: rowIDs,
		ColIDs: colIDs,
		Values: values,
	}
	m.reindex()
	return m
}

func (m *Matrix) reindex() {
	m.rowIndex = make(map[string]int, len(m.RowIDs))
	for i, id := range m.RowIDs {
		m.rowIndex[id] = i
	}
	m.colIndex = make(map[string]int, len(m.ColIDs))
	for i, id := range m.ColIDs {
		m.colIndex[id] = i
	}
}

// HasRow reports whether id names a row.
func (m *Matrix) HasRow(id string) bool {
	_, ok := m.rowIndex[id]
	return ok
}

// At returns the value at the named row and column.
// Unknown IDs return 0; membership is checked by the callers that care.
func (m *Matrix) At(row, col string) float64 {
	ri, ok := m.rowIndex[row]
	if !ok {
		return 0
	}
	ci, ok := m.colIndex[col]
	if !ok {
		return 0
	}
	return m.Values[ri][ci]
}

// Reindex returns a copy of the matrix with rows and columns rearranged
// to the given ID sequences. IDs absent from the source are filled with
// fill, matching how a pivoted table backfills missing observations.
func (m *Matrix) Reindex(rowIDs, colIDs []string, fill float64) *Matrix {
	values := make([][]float64, len(rowIDs))
	for i, rid := range rowIDs {
		row := make([]float64, len(colIDs))
		ri, haveRow := m.rowIndex[rid]
		for j, cid := range colIDs {
			if !haveRow {
				row[j] = fill
				continue
			}
			if ci, ok := m.colIndex[cid]; ok {
				row[j] = m.Values[ri][ci]
			} else {
				row[j] = fill
			}
		}
		values[i] = row
	}
	return NewMatrix(append([]string(nil), rowIDs...), append([]string(nil), colIDs...), values)
}

// Transpose returns the transposed matrix.
func (m *Matrix) Transpose() *Matrix {
	values := make([][]float64, len(m.ColIDs))
	for j := range m.ColIDs {
		row := make([]float64, len(m.RowIDs))
		for i := range m.RowIDs {
			row[i] = m.Values[i][j]
		}
		values[j] = row
	}
	return NewMatrix(append([]string(nil), m.ColIDs...), append([]string(nil), m.RowIDs...), values)
}

// Pivot converts a long-format table into a wide matrix: one row per
// distinct indexCol value, one column per distinct columnsCol value, cells
// populated from valueCol. Row and column order follow first appearance in
// the table. Cells never observed are set to fill.
//
// When the same (row, column) pair occurs more than once the last
// observation wins.
func Pivot(t *Table, indexCol, columnsCol, valueCol string, fill float64) (*Matrix, error) {
	if err := t.RequireColumns(indexCol, columnsCol, valueCol); err != nil {
		return nil, err
	}

	rowVals, err := t.Column(indexCol)
	if err != nil {
		return nil, err
	}
	colVals, err := t.Column(columnsCol)
	if err != nil {
		return nil, err
	}
	vals, err := t.NumericColumn(valueCol)
	if err != nil {
		return nil, err
	}

	var rowIDs, colIDs []string
	rowIndex := map[string]int{}
	colIndex := map[string]int{}
	for _, id := range rowVals {
		if _, ok := rowIndex[id]; !ok {
			rowIndex[id] = len(rowIDs)
			rowIDs = append(rowIDs, id)
		}
	}
	for _, id := range colVals {
		if _, ok := colIndex[id]; !ok {
			colIndex[id] = len(colIDs)
			colIDs = append(colIDs, id)
		}
	}

	values := make([][]float64, len(rowIDs))
	for i := range values {
		row := make([]float64, len(colIDs))
		for j := range row {
			row[j] = fill
		}
		values[i] = row
	}
	for k := range vals {
		values[rowIndex[rowVals[k]]][colIndex[colVals[k]]] = vals[k]
	}

	return NewMatrix(rowIDs, colIDs, values), nil
}

// ReadMatrix reads a CSV whose first column is the row index and whose
// remaining header names the columns, as produced by distance-matrix and
// coordinate exports. All cells must be numeric.
func ReadMatrix(path string) (*Matrix, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	if len(t.Columns) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidMatrix,
			"%s does not look like a matrix: need an index column plus data columns", path)
	}

	colIDs := append([]string(nil), t.Columns[1:]...)
	rowIDs := make([]string, t.Len())
	values := make([][]float64, t.Len())
	for i := 0; i < t.Len(); i++ {
		rowIDs[i] = t.rows[i][0]
		row := make([]float64, len(colIDs))
		for j := range colIDs {
			v, err := strconv.ParseFloat(strings.TrimSpace(t.rows[i][j+1]), 64)
			if err != nil {
				return nil, errors.New(errors.ErrCodeNotNumeric,
					"column %q in %s contains non-numeric value %q",
					colIDs[j], path, t.rows[i][j+1])
			}
			row[j] = v
		}
		values[i] = row
	}

	return NewMatrix(rowIDs, colIDs, values), nil
}
