package filler

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ginjaninja78/bom-steel-filler/internal/bomtable"
	"github.com/ginjaninja78/bom-steel-filler/internal/metrics"
	"github.com/ginjaninja78/bom-steel-filler/internal/placement"
	"github.com/ginjaninja78/bom-steel-filler/internal/types"
	"github.com/ginjaninja78/bom-steel-filler/internal/workbook"
)

func item(desc, grade, length, weight string) types.MaterialItem {
	return types.MaterialItem{
		Description:  desc,
		Grade:        grade,
		LengthMeters: decimal.RequireFromString(length),
		WeightKg:     decimal.RequireFromString(weight),
	}
}

// takeoffSheet builds a sheet with a header and one placeholder row per label,
// starting at row 4.
func takeoffSheet(t *testing.T, labels ...string) *workbook.MemorySheet {
	t.Helper()
	sheet := workbook.NewMemorySheet()
	require.NoError(t, sheet.SetCell(1, 1, "TABELA DE ACO"))
	require.NoError(t, sheet.SetCell(3, 1, "SECAO"))
	for i, label := range labels {
		row := placement.DefaultFirstDataRow + i
		require.NoError(t, sheet.SetCell(row, placement.ColSection, label))
		require.NoError(t, sheet.SetCell(row, placement.ColDimA, workbook.PlaceholderMarker))
	}
	return sheet
}

func number(t *testing.T, sheet *workbook.MemorySheet, row, col int) float64 {
	t.Helper()
	c, err := sheet.Cell(row, col)
	require.NoError(t, err)
	require.Contains(t, []workbook.CellKind{workbook.CellNumber, workbook.CellNumericZero}, c.Kind, "row %d col %d", row, col)
	return c.Number
}

func text(t *testing.T, sheet *workbook.MemorySheet, row, col int) string {
	t.Helper()
	c, err := sheet.Cell(row, col)
	require.NoError(t, err)
	return c.Text
}

func TestFillEndToEnd(t *testing.T) {
	sheet := takeoffSheet(t, "U.s", "U.s", "FERRO MECANICO RED.", "L DOBRADO")
	items := []types.MaterialItem{
		item("U 100x50x3mm", "ASTM A36", "6", "27.5"),
		item("RED 12.7", "ASTM A36", "1.5", "3.0"),
		item("L DOBRADO 50x5", "ASTM A36", "3", "11.25"),
	}

	m := metrics.New()
	result, err := New(zap.NewNop(), m, Options{}).Fill(sheet, items)
	require.NoError(t, err)

	// U 100x50x3mm -> row 4.
	assert.Equal(t, 100.0, number(t, sheet, 4, placement.ColDimA))
	assert.Equal(t, 50.0, number(t, sheet, 4, placement.ColDimB))
	assert.Equal(t, 0.0, number(t, sheet, 4, placement.ColDimC))
	assert.Equal(t, 3.0, number(t, sheet, 4, placement.ColThickness))
	assert.Equal(t, "ASTM A36", text(t, sheet, 4, placement.ColGrade))
	assert.Equal(t, 6.0, number(t, sheet, 4, placement.ColLength))
	assert.Equal(t, 27.5, number(t, sheet, 4, placement.ColWeight))

	// Second U.s row untouched.
	assert.Equal(t, workbook.PlaceholderMarker, text(t, sheet, 5, placement.ColDimA))

	// RED 12.7 -> row 6, only the shared columns.
	assert.Equal(t, workbook.PlaceholderMarker, text(t, sheet, 6, placement.ColDimA))
	assert.InDelta(t, 12.7, number(t, sheet, 6, placement.ColThickness), 1e-9)
	assert.Equal(t, 1.5, number(t, sheet, 6, placement.ColLength))
	assert.Equal(t, 3.0, number(t, sheet, 6, placement.ColWeight))

	// L DOBRADO 50x5 -> row 7, legs in D and F.
	assert.Equal(t, workbook.PlaceholderMarker, text(t, sheet, 7, placement.ColDimA))
	assert.Equal(t, 50.0, number(t, sheet, 7, placement.ColDimB))
	assert.Equal(t, 50.0, number(t, sheet, 7, placement.ColDimC))
	assert.Equal(t, 5.0, number(t, sheet, 7, placement.ColThickness))
	assert.Equal(t, 11.25, number(t, sheet, 7, placement.ColWeight))

	require.Len(t, result.Sections, 3)
	assert.Equal(t, types.SectionUSimple, result.Sections[0].Section)
	assert.Equal(t, types.SectionRedondo, result.Sections[1].Section)
	assert.Equal(t, types.SectionLDobrado, result.Sections[2].Section)
	assert.Equal(t, Stats{ItemsTotal: 3, ItemsPlaced: 3, Sections: 3, Duration: result.Stats.Duration}, result.Stats)
	assert.Empty(t, result.Skipped())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsPlaced.WithLabelValues("U.s")))
}

func TestFillDocumentedScenario(t *testing.T) {
	items, _, err := bomtable.ExtractItems(&bomtable.Table{Rows: [][]string{
		{"PERFIL", "ACO", "L.TOTAL", "PESO"},
		{"U 100x50x3mm\nRED 12.7\nL DOBRADO 50x5", "ASTM A36", "250\n100\n80", "12.5\n3.0\n4.2"},
	}})
	require.NoError(t, err)
	require.Len(t, items, 3)

	sheet := takeoffSheet(t, "U.s", "FERRO MECANICO RED.", "L DOBRADO")
	result, err := New(nil, nil, Options{}).Fill(sheet, items)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stats.ItemsPlaced)

	assert.Equal(t, 2.5, number(t, sheet, 4, placement.ColLength))
	assert.Equal(t, 1.0, number(t, sheet, 5, placement.ColLength))
	assert.Equal(t, 0.8, number(t, sheet, 6, placement.ColLength))

	assert.Equal(t, 12.5, number(t, sheet, 4, placement.ColWeight))
	assert.Equal(t, 3.0, number(t, sheet, 5, placement.ColWeight))
	assert.Equal(t, 4.2, number(t, sheet, 6, placement.ColWeight))

	assert.Equal(t, 100.0, number(t, sheet, 4, placement.ColDimA))
	assert.InDelta(t, 12.7, number(t, sheet, 5, placement.ColThickness), 1e-9)
	assert.Equal(t, 50.0, number(t, sheet, 6, placement.ColDimB))
}

func TestFillOnlyTouchesMappedColumns(t *testing.T) {
	sheet := takeoffSheet(t, "TUBO", "U.e")
	require.NoError(t, sheet.SetCell(4, 3, "keep"))
	sheet.SetFormula(4, 11, "=J4*2")
	before := sheet.Snapshot()

	_, err := New(nil, nil, Options{}).Fill(sheet, []types.MaterialItem{
		item(`TUBO 2" x 3mm`, "A36", "1", "2"),
		item("UENR 100x50x17x2", "A36", "1", "2"),
	})
	require.NoError(t, err)

	written := map[int]bool{}
	for _, col := range []int{
		placement.ColDimA, placement.ColDimB, placement.ColDimC, placement.ColThickness,
		placement.ColGrade, placement.ColLength, placement.ColWeight,
	} {
		written[col] = true
	}

	after := sheet.Snapshot()
	for key, c := range before {
		var row, col int
		_, err := fmt.Sscanf(key, "%d:%d", &row, &col)
		require.NoError(t, err)
		if !written[col] {
			assert.Equal(t, c, after[key], "cell %s changed", key)
		}
	}

	// TUBO leaves B alone; U.e fills A, B, C.
	assert.Equal(t, workbook.PlaceholderMarker, text(t, sheet, 4, placement.ColDimA))
	assert.InDelta(t, 50.8, number(t, sheet, 4, placement.ColThickness), 1e-9)
	assert.Equal(t, 100.0, number(t, sheet, 5, placement.ColDimA))
	assert.Equal(t, 17.0, number(t, sheet, 5, placement.ColDimC))
	assert.Equal(t, 2.0, number(t, sheet, 5, placement.ColThickness))
}

func TestFillSkipsWhenSectionIsFull(t *testing.T) {
	sheet := takeoffSheet(t, "U.s")
	m := metrics.New()

	result, err := New(zap.NewNop(), m, Options{}).Fill(sheet, []types.MaterialItem{
		item("U 100x50x3", "A36", "1", "1"),
		item("U 75x40x2", "A36", "1", "1"),
		item("PERFIL W 200", "A36", "1", "1"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.ItemsPlaced)
	assert.Equal(t, 2, result.Stats.ItemsSkipped)

	skipped := result.Skipped()
	require.Len(t, skipped, 2)
	assert.Equal(t, "U 75x40x2", skipped[0].Item.Description)
	assert.Equal(t, types.SectionUnknown, skipped[1].Section)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsSkipped.WithLabelValues("U.s")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsSkipped.WithLabelValues("N/D")))
}

func TestFillRowsAreIncreasingPerSection(t *testing.T) {
	sheet := takeoffSheet(t, "TUBO", "U.s", "TUBO", "TUBO", "U.s")
	items := []types.MaterialItem{
		item("TUBO 1", "A", "1", "1"),
		item("U 1x2x3", "A", "1", "1"),
		item("TUBO 2", "A", "1", "1"),
		item("TUBO 3", "A", "1", "1"),
	}

	result, err := New(nil, nil, Options{}).Fill(sheet, items)
	require.NoError(t, err)

	var tuboRows []int
	for _, p := range result.Sections[0].Placed {
		tuboRows = append(tuboRows, p.Row)
	}
	assert.Equal(t, []int{4, 6, 7}, tuboRows)
	assert.Equal(t, 5, result.Sections[1].Placed[0].Row)
}

func TestFillDryRunWritesNothing(t *testing.T) {
	sheet := takeoffSheet(t, "U.s", "U.s")
	before := sheet.Snapshot()

	result, err := New(nil, nil, Options{DryRun: true}).Fill(sheet, []types.MaterialItem{
		item("U 1x2x3", "A", "1", "1"),
		item("U 4x5x6", "A", "1", "1"),
		item("U 7x8x9", "A", "1", "1"),
	})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, before, sheet.Snapshot())
	assert.Equal(t, 2, result.Stats.ItemsPlaced)
	assert.Equal(t, 1, result.Stats.ItemsSkipped)
	assert.Equal(t, []int{4, 5}, []int{result.Sections[0].Placed[0].Row, result.Sections[0].Placed[1].Row})
}

func TestFillHonorsFirstDataRow(t *testing.T) {
	sheet := takeoffSheet(t, "U.s", "U.s")

	result, err := New(nil, nil, Options{FirstDataRow: 5}).Fill(sheet, []types.MaterialItem{
		item("U 1x2x3", "A", "1", "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Sections[0].Placed[0].Row)
}

func TestGroupBySectionKeepsFirstAppearanceOrder(t *testing.T) {
	groups := GroupBySection([]types.MaterialItem{
		item("TUBO 1", "A", "1", "1"),
		item("U 1x2x3", "A", "1", "1"),
		item("TUBO 2", "A", "1", "1"),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, types.SectionTubo, groups[0].Section)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, types.SectionUSimple, groups[1].Section)
}
