// =============================================================================
// BOM Steel Filler - Table Reader
// =============================================================================
//
// Reads the bill-of-materials table that drives a fill run. The table has a
// header row followed by data rows with four columns:
//
//   0: profile description    1: material grade
//   2: total length (cm)      3: total weight (kg)
//
// Engineering documents collapse the whole list into a single data row whose
// cells hold one entry per line. Only that first data row is read; rows below
// it (totals, notes) are ignored. Exports from other tools use one row per
// item instead, so for those sources each column's data cells are joined
// with "\n" before the entries are split.
//
// SUPPORTED SOURCES:
//   | Extension     | Source                          | Layout        |
//   |---------------|---------------------------------|---------------|
//   | .docx         | first table of the document     | first row     |
//   | .csv, .txt    | comma, semicolon, tab or pipe   | row per item  |
//   | .xlsx, .xlsm  | first sheet of the workbook     | row per item  |
//
// =============================================================================

package bomtable

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Column positions inside the table.
const (
	ColDescription = 0
	ColGrade       = 1
	ColLength      = 2
	ColWeight      = 3

	columnCount = 4
)

var (
	// ErrNoData is returned when the table holds nothing that can be filled:
	// no table, no data row, mismatched columns or every entry dropped.
	ErrNoData = errors.New("no usable data in table")

	// ErrUnsupportedFormat is returned for table files of an unknown type.
	ErrUnsupportedFormat = errors.New("unsupported table format")
)

// Table is the raw grid read from a source file. Rows[0] is the header.
type Table struct {
	// Source is the path the table was read from.
	Source string

	// Rows holds the cell texts, row by row. Rows may be ragged.
	Rows [][]string

	// RowPerItem marks exports with one item per data row. When false only
	// the first data row is read.
	RowPerItem bool
}

// Read loads the table at path, picking the reader from the file extension.
//
// PARAMETERS:
//   - path: The table file (.docx, .csv or .xlsx).
//
// RETURNS:
//   - The table grid.
//   - ErrUnsupportedFormat for unknown extensions, ErrNoData when the
//     document holds no table, or the underlying I/O error.
func Read(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return ReadDocx(path)
	case ".csv", ".txt":
		return ReadCSV(path)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// DataRowCount returns the number of rows below the header.
func (t *Table) DataRowCount() int {
	if len(t.Rows) < 2 {
		return 0
	}
	return len(t.Rows) - 1
}

// Columns returns the four column texts of the table.
//
// A collapsed table yields the cells of its first data row. A RowPerItem
// table yields each column's cells joined with "\n", skipping fully blank
// data rows.
func (t *Table) Columns() ([columnCount]string, error) {
	var cols [columnCount]string

	if t.DataRowCount() == 0 {
		return cols, fmt.Errorf("%w: table has no data row", ErrNoData)
	}

	dataRows := t.Rows[1:]
	if !t.RowPerItem {
		dataRows = dataRows[:1]
	}

	parts := make([][]string, columnCount)
	for _, row := range dataRows {
		if isBlankRow(row) {
			continue
		}
		for c := 0; c < columnCount; c++ {
			if c < len(row) {
				parts[c] = append(parts[c], row[c])
			} else {
				parts[c] = append(parts[c], "")
			}
		}
	}

	for c := range cols {
		cols[c] = strings.Join(parts[c], "\n")
	}
	return cols, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
