// =============================================================================
// BOM Steel Filler - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - bomtable  (RawRow, MaterialItem)
//   - profile   (SectionCode, FamilyTag, Classification, DimensionSet)
//   - filler    (everything above)
//
// =============================================================================

package types

import "github.com/shopspring/decimal"

// =============================================================================
// BILL OF MATERIALS ROWS
// =============================================================================

// RawRow is one bill-of-materials line exactly as read from the document table.
// It is never modified after the table reader produces it.
type RawRow struct {
	// Description is the free-text profile description, e.g. "U 100x50x3mm".
	Description string

	// Grade is the material grade, e.g. "ASTM A36".
	Grade string

	// LengthRaw is the total length in centimeters, as text.
	LengthRaw string

	// WeightRaw is the total weight in kilograms, as text.
	WeightRaw string

	// Line is the 1-based position of the entry inside its table cell.
	// Used for error reporting only.
	Line int
}

// MaterialItem is a RawRow whose numeric fields have been parsed.
type MaterialItem struct {
	Description string
	Grade       string

	// LengthMeters is LengthRaw divided by 100.
	LengthMeters decimal.Decimal

	// WeightKg is WeightRaw parsed as a decimal.
	WeightKg decimal.Decimal
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// SectionCode is the label found in column A of the takeoff sheet.
type SectionCode string

const (
	SectionUSimple     SectionCode = "U.s"
	SectionUEnrijecido SectionCode = "U.e"
	SectionLDobrado    SectionCode = "L DOBRADO"
	SectionRedondo     SectionCode = "FERRO MECANICO RED."
	SectionTubo        SectionCode = "TUBO"
	SectionUnknown     SectionCode = "N/D"
)

// FamilyTag drives the dimension extraction rules. It is internal and distinct
// from SectionCode, which is the external sheet label.
type FamilyTag string

const (
	FamilyPerfilU    FamilyTag = "PERFIL_U"
	FamilyTerca      FamilyTag = "TERCA"
	FamilyCantoneira FamilyTag = "CANTONEIRA"
	FamilyTubo       FamilyTag = "TUBO"
	FamilyOutros     FamilyTag = "OUTROS"
)

// Classification is the result of classifying a description.
type Classification struct {
	Section SectionCode
	Family  FamilyTag
}

// =============================================================================
// DIMENSIONS
// =============================================================================

// DimensionSet holds the measurements extracted from a description, in
// millimeters. Unassigned slots stay at 0.
//
// Thickness carries the wall thickness for profiles and the diameter for
// round bars.
type DimensionSet struct {
	A         float64
	B         float64
	C         float64
	Thickness float64
}
