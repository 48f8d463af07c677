package workbook

import (
	"fmt"
	"strconv"
)

// MemorySheet is an in-memory Sheet. It is used by tests and by callers that
// want to stage placements before touching a real workbook.
type MemorySheet struct {
	cells  map[[2]int]Cell
	maxRow int
}

// NewMemorySheet returns an empty MemorySheet.
func NewMemorySheet() *MemorySheet {
	return &MemorySheet{cells: make(map[[2]int]Cell)}
}

// Cell implements Sheet.
func (m *MemorySheet) Cell(row, col int) (Cell, error) {
	if row < 1 || col < 1 {
		return Cell{}, fmt.Errorf("invalid coordinates (%d, %d)", row, col)
	}
	if c, ok := m.cells[[2]int{row, col}]; ok {
		return c, nil
	}
	return Cell{Kind: CellAbsent}, nil
}

// SetCell implements Sheet. Strings and numeric types are stored as their
// typed Cell; anything else is stored as CellOther.
func (m *MemorySheet) SetCell(row, col int, value any) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid coordinates (%d, %d)", row, col)
	}

	var c Cell
	switch v := value.(type) {
	case string:
		c = TextCell(v)
	case float64:
		c = NumberCell(v)
	case float32:
		c = NumberCell(float64(v))
	case int:
		c = NumberCell(float64(v))
	case int64:
		c = NumberCell(float64(v))
	case nil:
		c = Cell{Kind: CellAbsent}
	default:
		c = Cell{Kind: CellOther, Text: fmt.Sprint(v)}
	}

	m.cells[[2]int{row, col}] = c
	if row > m.maxRow {
		m.maxRow = row
	}
	return nil
}

// SetFormula stores a formula cell.
func (m *MemorySheet) SetFormula(row, col int, formula string) {
	m.cells[[2]int{row, col}] = Cell{Kind: CellFormula, Text: formula}
	if row > m.maxRow {
		m.maxRow = row
	}
}

// MaxRow implements Sheet.
func (m *MemorySheet) MaxRow() (int, error) {
	return m.maxRow, nil
}

// Snapshot returns a copy of every stored cell keyed by "row:col".
func (m *MemorySheet) Snapshot() map[string]Cell {
	out := make(map[string]Cell, len(m.cells))
	for k, c := range m.cells {
		out[strconv.Itoa(k[0])+":"+strconv.Itoa(k[1])] = c
	}
	return out
}
