package workbook

import "strconv"

// PlaceholderMarker is the text curators type into a reserved row's data cell.
const PlaceholderMarker = "X"

// CellKind is the closed set of shapes a cell value can take as seen by the
// placement engine.
type CellKind int

const (
	// CellAbsent is a cell that does not exist in the sheet.
	CellAbsent CellKind = iota
	// CellEmptyText is a string cell holding "".
	CellEmptyText
	// CellNumericZero is a number cell holding 0.
	CellNumericZero
	// CellPlaceholder is a string cell holding the placeholder marker.
	CellPlaceholder
	// CellNumber is a number cell holding anything but 0.
	CellNumber
	// CellText is any other string cell.
	CellText
	// CellFormula is a cell with a formula, whatever its cached value.
	CellFormula
	// CellOther covers booleans, errors and dates.
	CellOther
)

var cellKindNames = map[CellKind]string{
	CellAbsent:      "absent",
	CellEmptyText:   "empty-text",
	CellNumericZero: "numeric-zero",
	CellPlaceholder: "placeholder",
	CellNumber:      "number",
	CellText:        "text",
	CellFormula:     "formula",
	CellOther:       "other",
}

func (k CellKind) String() string {
	if name, ok := cellKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Cell is a typed cell value.
type Cell struct {
	Kind CellKind

	// Text is the raw cell text (the formula for CellFormula).
	Text string

	// Number is set for CellNumber and CellNumericZero.
	Number float64
}

// TextCell builds the Cell for a string value.
func TextCell(s string) Cell {
	switch s {
	case "":
		return Cell{Kind: CellEmptyText}
	case PlaceholderMarker:
		return Cell{Kind: CellPlaceholder, Text: s}
	default:
		return Cell{Kind: CellText, Text: s}
	}
}

// NumberCell builds the Cell for a numeric value.
func NumberCell(v float64) Cell {
	if v == 0 {
		return Cell{Kind: CellNumericZero, Text: "0"}
	}
	return Cell{Kind: CellNumber, Number: v, Text: strconv.FormatFloat(v, 'f', -1, 64)}
}

// IsAwaitingData reports whether the cell marks a row that is still waiting
// for data: absent, empty text, numeric zero or the placeholder marker.
func (c Cell) IsAwaitingData() bool {
	switch c.Kind {
	case CellAbsent, CellEmptyText, CellNumericZero, CellPlaceholder:
		return true
	default:
		return false
	}
}

// Equals reports whether the cell holds exactly the given text.
func (c Cell) Equals(s string) bool {
	switch c.Kind {
	case CellText, CellPlaceholder:
		return c.Text == s
	case CellEmptyText:
		return s == ""
	default:
		return false
	}
}
