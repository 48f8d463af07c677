// =============================================================================
// BOM Steel Filler - Row Placement Engine
// =============================================================================
//
// Finds, inside a pre-formatted takeoff sheet, the next row of a section that
// is still waiting for data.
//
// A row is a target for section S when:
//   1. column A holds exactly S, and
//   2. column B is absent, empty text, numeric zero or the "X" marker.
//
// The scan runs from the start row to one past the last row of the sheet, so
// a placeholder block that ends on the last row is still reachable.
//
// The engine never writes. It is a lookup over the current sheet state.
//
// =============================================================================

package placement

import (
	"fmt"

	"github.com/ginjaninja78/bom-steel-filler/internal/types"
	"github.com/ginjaninja78/bom-steel-filler/internal/workbook"
)

// Column positions of the takeoff sheet (1-based, A = 1).
const (
	ColSection   = 1  // A: section label
	ColDimA      = 2  // B: first dimension, also the "awaiting data" reference cell
	ColDimB      = 4  // D
	ColDimC      = 6  // F
	ColThickness = 8  // H: esp.
	ColGrade     = 9  // I: material grade
	ColLength    = 10 // J: total length in meters
	ColWeight    = 17 // Q: total weight in kg
)

// DefaultFirstDataRow is the first row below the sheet header.
const DefaultFirstDataRow = 4

// SheetReader is the read side of workbook.Sheet.
type SheetReader interface {
	Cell(row, col int) (workbook.Cell, error)
	MaxRow() (int, error)
}

// FindTargetRow returns the first row at or after start that belongs to
// section and still awaits data. ok is false when the section has no free
// row left; that is not an error.
func FindTargetRow(sheet SheetReader, section types.SectionCode, start int) (row int, ok bool, err error) {
	if start < 1 {
		start = 1
	}

	maxRow, err := sheet.MaxRow()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read sheet size: %w", err)
	}

	for r := start; r <= maxRow+1; r++ {
		matches, err := IsTargetRow(sheet, section, r)
		if err != nil {
			return 0, false, err
		}
		if matches {
			return r, true, nil
		}
	}

	return 0, false, nil
}

// IsTargetRow reports whether row r belongs to section and awaits data.
func IsTargetRow(sheet SheetReader, section types.SectionCode, r int) (bool, error) {
	label, err := sheet.Cell(r, ColSection)
	if err != nil {
		return false, fmt.Errorf("failed to read section label at row %d: %w", r, err)
	}
	if !label.Equals(string(section)) {
		return false, nil
	}

	ref, err := sheet.Cell(r, ColDimA)
	if err != nil {
		return false, fmt.Errorf("failed to read data cell at row %d: %w", r, err)
	}
	return ref.IsAwaitingData(), nil
}

// =============================================================================
// SECTION CURSORS
// =============================================================================

// Cursors tracks, per section, the next row to scan from. Cursors only move
// forward, so a row is never handed out twice within one run.
type Cursors struct {
	first int
	next  map[types.SectionCode]int
}

// NewCursors creates cursors that all start at firstRow.
func NewCursors(firstRow int) *Cursors {
	if firstRow < 1 {
		firstRow = DefaultFirstDataRow
	}
	return &Cursors{
		first: firstRow,
		next:  make(map[types.SectionCode]int),
	}
}

// Next returns the scan start for section.
func (c *Cursors) Next(section types.SectionCode) int {
	if r, ok := c.next[section]; ok {
		return r
	}
	return c.first
}

// Advance moves the cursor of section past row.
func (c *Cursors) Advance(section types.SectionCode, row int) {
	if row+1 > c.Next(section) {
		c.next[section] = row + 1
	}
}

// Place finds the next free row for section starting at its cursor and
// advances the cursor past it.
func (c *Cursors) Place(sheet SheetReader, section types.SectionCode) (int, bool, error) {
	row, ok, err := FindTargetRow(sheet, section, c.Next(section))
	if err != nil || !ok {
		return 0, false, err
	}
	c.Advance(section, row)
	return row, true, nil
}
