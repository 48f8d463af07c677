// =============================================================================
// BOM Steel Filler - Fill Orchestrator
// =============================================================================
//
// This module contains the core fill logic. It takes the material items read
// from the table and writes each one into the next free row of its section in
// the takeoff sheet.
//
// FILL PIPELINE:
//   1. Classify every item and group the items by section code, in order of
//      first appearance
//   2. For each section, find the next free row starting at the section cursor
//   3. Extract the dimensions and write the mapped columns
//   4. Advance the cursor past the written row
//   5. Items with no free row left are skipped and reported
//
// The sheet is only mutated in memory. Saving is the caller's job and happens
// once, after Fill returns.
//
// =============================================================================

package filler

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/bom-steel-filler/internal/metrics"
	"github.com/ginjaninja78/bom-steel-filler/internal/placement"
	"github.com/ginjaninja78/bom-steel-filler/internal/profile"
	"github.com/ginjaninja78/bom-steel-filler/internal/types"
	"github.com/ginjaninja78/bom-steel-filler/internal/workbook"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Placement is one item written to the sheet.
type Placement struct {
	Row            int
	Item           types.MaterialItem
	Classification types.Classification
	Dimensions     types.DimensionSet
}

// SkippedItem is an item that found no free row in its section.
type SkippedItem struct {
	Section types.SectionCode
	Item    types.MaterialItem
	Reason  string
}

// SectionReport is the outcome for one section.
type SectionReport struct {
	Section types.SectionCode
	Placed  []Placement
	Skipped []SkippedItem
}

// Stats contains fill statistics.
type Stats struct {
	ItemsTotal   int
	ItemsPlaced  int
	ItemsSkipped int
	Sections     int
	Duration     time.Duration
}

// Result represents the outcome of a fill.
type Result struct {
	// Sections lists one report per section, in the order sections were
	// first seen in the table.
	Sections []SectionReport

	Stats Stats

	// DryRun is true when no cell was written.
	DryRun bool
}

// Skipped returns every skipped item across sections.
func (r Result) Skipped() []SkippedItem {
	var out []SkippedItem
	for _, s := range r.Sections {
		out = append(out, s.Skipped...)
	}
	return out
}

// =============================================================================
// FILLER STRUCTURE
// =============================================================================

// Options controls a fill.
type Options struct {
	// FirstDataRow is the row where every section scan starts. 0 means
	// placement.DefaultFirstDataRow.
	FirstDataRow int

	// DryRun computes the placements without writing any cell.
	DryRun bool
}

// Filler writes material items into a takeoff sheet.
type Filler struct {
	logger  *zap.Logger
	metrics *metrics.FillMetrics
	opts    Options
}

// New creates a Filler. logger and m may be nil.
func New(logger *zap.Logger, m *metrics.FillMetrics, opts Options) *Filler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FirstDataRow < 1 {
		opts.FirstDataRow = placement.DefaultFirstDataRow
	}
	return &Filler{logger: logger, metrics: m, opts: opts}
}

// SectionGroup holds the items of one section code.
type SectionGroup struct {
	Section types.SectionCode
	Items   []types.MaterialItem
}

// GroupBySection classifies items and groups them by section code, keeping
// the order in which each section first appears.
func GroupBySection(items []types.MaterialItem) []SectionGroup {
	index := make(map[types.SectionCode]int)
	var groups []SectionGroup

	for _, item := range items {
		code := profile.Classify(item.Description).Section
		i, ok := index[code]
		if !ok {
			i = len(groups)
			index[code] = i
			groups = append(groups, SectionGroup{Section: code})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// =============================================================================
// MAIN FILL FUNCTION
// =============================================================================

// Fill places every item in the next free row of its section.
//
// PARAMETERS:
//   - sheet: The takeoff sheet. Only columns B, D, F, H, I, J and Q of
//     placeholder rows are written.
//   - items: The material items, in table order.
//
// RETURNS:
//   - A Result with the placements and skips of every section.
//   - An error if a sheet read or write fails. The sheet may then be partly
//     written in memory and must not be saved.
func (f *Filler) Fill(sheet workbook.Sheet, items []types.MaterialItem) (Result, error) {
	start := time.Now()
	result := Result{DryRun: f.opts.DryRun}
	cursors := placement.NewCursors(f.opts.FirstDataRow)

	for _, group := range GroupBySection(items) {
		f.logger.Info("Processing section",
			zap.String("section", string(group.Section)),
			zap.Int("items", len(group.Items)))

		report := SectionReport{Section: group.Section}

		for _, item := range group.Items {
			row, ok, err := cursors.Place(sheet, group.Section)
			if err != nil {
				return result, fmt.Errorf("section %q: %w", group.Section, err)
			}

			if !ok {
				skip := SkippedItem{
					Section: group.Section,
					Item:    item,
					Reason:  fmt.Sprintf("no free row left in section %q", group.Section),
				}
				report.Skipped = append(report.Skipped, skip)
				f.logger.Warn("No more room in section, item not inserted",
					zap.String("section", string(group.Section)),
					zap.String("item", item.Description))
				if f.metrics != nil {
					f.metrics.RecordSkipped(string(group.Section))
				}
				continue
			}

			class, dims := profile.Analyze(item.Description)
			if !f.opts.DryRun {
				if err := WriteRow(sheet, row, class.Family, dims, item); err != nil {
					return result, fmt.Errorf("section %q row %d: %w", group.Section, row, err)
				}
			}

			report.Placed = append(report.Placed, Placement{
				Row:            row,
				Item:           item,
				Classification: class,
				Dimensions:     dims,
			})
			f.logger.Debug("Item placed",
				zap.String("section", string(group.Section)),
				zap.Int("row", row),
				zap.String("item", item.Description))
			if f.metrics != nil {
				f.metrics.RecordPlaced(string(group.Section))
			}
		}

		result.Stats.ItemsPlaced += len(report.Placed)
		result.Stats.ItemsSkipped += len(report.Skipped)
		result.Sections = append(result.Sections, report)
	}

	result.Stats.ItemsTotal = len(items)
	result.Stats.Sections = len(result.Sections)
	result.Stats.Duration = time.Since(start)

	return result, nil
}

// =============================================================================
// COLUMN MAPPING
// =============================================================================

// WriteRow writes one item into row using the column mapping of its family:
//
//   | Family         | B | D | F | H         | I     | J      | Q      |
//   |----------------|---|---|---|-----------|-------|--------|--------|
//   | PERFIL_U/TERCA | A | B | C | thickness | grade | length | weight |
//   | CANTONEIRA     | - | A | B | thickness | grade | length | weight |
//   | TUBO/OUTROS    | - | - | - | thickness | grade | length | weight |
//
// Columns marked "-" are left untouched.
func WriteRow(sheet workbook.Sheet, row int, family types.FamilyTag, dims types.DimensionSet, item types.MaterialItem) error {
	type write struct {
		col   int
		value any
	}

	var writes []write
	switch family {
	case types.FamilyPerfilU, types.FamilyTerca:
		writes = append(writes,
			write{placement.ColDimA, dims.A},
			write{placement.ColDimB, dims.B},
			write{placement.ColDimC, dims.C},
		)
	case types.FamilyCantoneira:
		writes = append(writes,
			write{placement.ColDimB, dims.A},
			write{placement.ColDimC, dims.B},
		)
	}

	writes = append(writes,
		write{placement.ColThickness, dims.Thickness},
		write{placement.ColGrade, item.Grade},
		write{placement.ColLength, item.LengthMeters.InexactFloat64()},
		write{placement.ColWeight, item.WeightKg.InexactFloat64()},
	)

	for _, w := range writes {
		if err := sheet.SetCell(row, w.col, w.value); err != nil {
			return fmt.Errorf("failed to write column %d: %w", w.col, err)
		}
	}
	return nil
}
