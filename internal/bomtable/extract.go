// =============================================================================
// BOM Steel Filler - Item Extraction
// =============================================================================
//
// Turns the four column texts of a table into MaterialItems.
//
// EXTRACTION PROCESS:
//   1. Split each column on newlines, ignoring blank entries
//   2. Check entry counts (description, length and weight must agree)
//   3. Pair entries by position; a short grade column reuses its first entry
//   4. Parse length (centimeters -> meters) and weight (kg)
//   5. Drop entries whose numbers do not parse, keep the rest
//
// =============================================================================

package bomtable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/bom-steel-filler/internal/types"
	"github.com/ginjaninja78/bom-steel-filler/internal/validation"
)

var centimetersPerMeter = decimal.NewFromInt(100)

// EntryError reports an entry whose numeric field could not be parsed.
type EntryError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("line %d: invalid %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// SplitEntries splits a cell text into its entries. Entries are trimmed and
// blank ones are dropped.
func SplitEntries(text string) []string {
	var entries []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			entries = append(entries, line)
		}
	}
	return entries
}

// ParseDecimal parses a number written with "." or "," as decimal separator.
// An empty value is zero.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// ToItem converts a raw row into a MaterialItem. The length column is in
// centimeters and is converted to meters.
func ToItem(row types.RawRow) (types.MaterialItem, error) {
	length, err := ParseDecimal(row.LengthRaw)
	if err != nil {
		return types.MaterialItem{}, &EntryError{Line: row.Line, Field: "length", Value: row.LengthRaw, Err: err}
	}

	weight, err := ParseDecimal(row.WeightRaw)
	if err != nil {
		return types.MaterialItem{}, &EntryError{Line: row.Line, Field: "weight", Value: row.WeightRaw, Err: err}
	}

	return types.MaterialItem{
		Description:  strings.TrimSpace(row.Description),
		Grade:        strings.TrimSpace(row.Grade),
		LengthMeters: length.Div(centimetersPerMeter),
		WeightKg:     weight,
	}, nil
}

// RawRows pairs the column entries of t into raw rows.
//
// RETURNS:
//   - The raw rows, in table order.
//   - The table-level findings (entry counts, grade reuse).
//   - ErrNoData when the table cannot be used.
func RawRows(t *Table) ([]types.RawRow, *validation.ValidationResult, error) {
	cols, err := t.Columns()
	if err != nil {
		return nil, validation.NewResult(), err
	}

	descriptions := SplitEntries(cols[ColDescription])
	grades := SplitEntries(cols[ColGrade])
	lengths := SplitEntries(cols[ColLength])
	weights := SplitEntries(cols[ColWeight])

	result := validation.ValidateEntryCounts(validation.EntryCounts{
		Descriptions: len(descriptions),
		Grades:       len(grades),
		Lengths:      len(lengths),
		Weights:      len(weights),
	})
	if !result.IsValid() {
		return nil, result, fmt.Errorf("%w: %s", ErrNoData, result.Fatal()[0].Message)
	}

	rows := make([]types.RawRow, 0, len(descriptions))
	for i, desc := range descriptions {
		grade := ""
		switch {
		case i < len(grades):
			grade = grades[i]
		case len(grades) > 0:
			grade = grades[0]
		}
		rows = append(rows, types.RawRow{
			Description: desc,
			Grade:       grade,
			LengthRaw:   lengths[i],
			WeightRaw:   weights[i],
			Line:        i + 1,
		})
	}
	return rows, result, nil
}

// ExtractItems converts a table into material items. Entries with
// non-numeric length or weight are dropped and reported as warnings.
func ExtractItems(t *Table) ([]types.MaterialItem, *validation.ValidationResult, error) {
	rows, result, err := RawRows(t)
	if err != nil {
		return nil, result, err
	}

	items := make([]types.MaterialItem, 0, len(rows))
	for _, row := range rows {
		item, err := ToItem(row)
		if err != nil {
			var entryErr *EntryError
			if errors.As(err, &entryErr) {
				result.Add(validation.RowDropped(entryErr.Line, entryErr.Field, entryErr.Value, entryErr.Err))
			} else {
				result.Add(validation.RowDropped(row.Line, "", "", err))
			}
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, result, fmt.Errorf("%w: every entry was dropped", ErrNoData)
	}
	return items, result, nil
}
