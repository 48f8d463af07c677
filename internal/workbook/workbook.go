// =============================================================================
// BOM Steel Filler - Workbook Adapter
// =============================================================================
//
// This module wraps the pre-formatted takeoff workbook (.xlsx). It gives the
// rest of the application the four primitives it needs and nothing more:
//   - read a typed cell value
//   - write a cell value
//   - report the last used row
//   - save once
//
// SHEET LAYOUT (fixed external contract, 1-based columns):
//
//   | A (1)   | B (2) | D (4) | F (6) | H (8) | I (9) | J (10)   | Q (17)   |
//   |---------|-------|-------|-------|-------|-------|----------|----------|
//   | section | dim   | dim   | dim   | esp.  | grade | length m | total kg |
//
// Everything else in the workbook (styles, formulas, other sheets, other
// columns) is left exactly as loaded; excelize only rewrites the cells that
// are set through SetCell.
//
// =============================================================================

package workbook

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// =============================================================================
// SHEET CAPABILITY
// =============================================================================

// Sheet is the spreadsheet capability the fill orchestrator is given.
// Rows and columns are 1-based.
type Sheet interface {
	// Cell returns the typed value at (row, col).
	Cell(row, col int) (Cell, error)

	// SetCell writes a value at (row, col).
	SetCell(row, col int, value any) error

	// MaxRow returns the last row present in the sheet.
	MaxRow() (int, error)
}

// =============================================================================
// EXCELIZE WORKBOOK
// =============================================================================

// Workbook is an open .xlsx file bound to one worksheet.
type Workbook struct {
	path   string
	file   *excelize.File
	sheet  string
	logger *zap.Logger

	// maxRow caches the last row once it has been counted. Zero means not
	// counted yet.
	maxRow int
}

// Open opens the workbook at path and binds it to sheetName, or to the active
// sheet when sheetName is empty.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//   - sheetName: Worksheet to fill. Empty selects the active sheet.
//   - logger: Logger for debug output. May be nil.
//
// RETURNS:
//   - The open Workbook. Callers must Close it.
//   - An error if the file cannot be opened or the sheet does not exist.
func Open(path, sheetName string, logger *zap.Logger) (*Workbook, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	if sheetName == "" {
		sheetName = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if sheetName == "" {
		f.Close()
		return nil, fmt.Errorf("workbook has no sheets")
	}

	index, err := f.GetSheetIndex(sheetName)
	if err != nil || index < 0 {
		f.Close()
		return nil, fmt.Errorf("sheet %q not found in workbook", sheetName)
	}

	logger.Debug("opened workbook",
		zap.String("path", path),
		zap.String("sheet", sheetName))

	return &Workbook{
		path:   path,
		file:   f,
		sheet:  sheetName,
		logger: logger,
	}, nil
}

// Path returns the file path the workbook was opened from.
func (w *Workbook) Path() string {
	return w.path
}

// SheetName returns the bound worksheet name.
func (w *Workbook) SheetName() string {
	return w.sheet
}

// Cell reads the typed value at (row, col).
//
// CLASSIFICATION:
//   - any cell with a formula               -> CellFormula
//   - string cells                          -> TextCell(value)
//   - numeric or untyped cells with a value -> NumberCell(value)
//   - untyped cells without a value         -> CellAbsent
//   - booleans, errors, dates               -> CellOther
func (w *Workbook) Cell(row, col int) (Cell, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Cell{}, err
	}

	formula, err := w.file.GetCellFormula(w.sheet, name)
	if err != nil {
		return Cell{}, fmt.Errorf("failed to read formula at %s: %w", name, err)
	}
	if formula != "" {
		return Cell{Kind: CellFormula, Text: formula}, nil
	}

	cellType, err := w.file.GetCellType(w.sheet, name)
	if err != nil {
		return Cell{}, fmt.Errorf("failed to read type at %s: %w", name, err)
	}

	value, err := w.file.GetCellValue(w.sheet, name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Cell{}, fmt.Errorf("failed to read value at %s: %w", name, err)
	}

	return classifyCell(cellType, value), nil
}

// classifyCell maps an excelize cell type and raw value onto a Cell.
func classifyCell(cellType excelize.CellType, value string) Cell {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		// "str" cells without a formula are plain strings.
		return TextCell(value)

	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if value == "" {
			return Cell{Kind: CellAbsent}
		}
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Cell{Kind: CellText, Text: value}
		}
		return NumberCell(number)

	default:
		return Cell{Kind: CellOther, Text: value}
	}
}

// SetCell writes a value at (row, col).
func (w *Workbook) SetCell(row, col int, value any) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := w.file.SetCellValue(w.sheet, name, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if w.maxRow > 0 && row > w.maxRow {
		w.maxRow = row
	}
	return nil
}

// MaxRow returns the number of the last row element in the sheet.
//
// The sheet is scanned on the first call only; later writes below the last
// row move the cached value.
func (w *Workbook) MaxRow() (int, error) {
	if w.maxRow > 0 {
		return w.maxRow, nil
	}

	rows, err := w.file.Rows(w.sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to iterate rows: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}
	if err := rows.Error(); err != nil {
		return 0, fmt.Errorf("failed to iterate rows: %w", err)
	}

	w.maxRow = count
	return count, nil
}

// Save writes the workbook back to the path it was opened from.
func (w *Workbook) Save() error {
	if err := w.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	w.logger.Debug("saved workbook", zap.String("path", w.path))
	return nil
}

// Close releases the workbook. It does not save.
func (w *Workbook) Close() error {
	return w.file.Close()
}
