package sqldump

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stukenov/keste/model"
)

func collect(wb *model.Workbook) []string {
	var stmts []string
	for stmt := range Dump(wb) {
		stmts = append(stmts, stmt)
	}
	return stmts
}

func TestDump_SchemaFirst(t *testing.T) {
	stmts := collect(model.NewWorkbook())
	require.NotEmpty(t, stmts)
	assert.Equal(t, Schema, stmts[0])
	assert.Contains(t, stmts[1], "INSERT INTO workbook (id) VALUES (")
}

func TestDump_CellValues(t *testing.T) {
	wb := model.NewWorkbook()
	sheet := wb.Sheets[0]
	sheet.SetValue(1, 1, "Hello")
	sheet.SetValue(1, 2, "42")
	sheet.SetValue(1, 3, "=B1*2")
	sheet.SetValue(2, 1, "TRUE")

	dump := strings.Join(collect(wb), "")
	assert.Contains(t, dump, "value_text")
	assert.Contains(t, dump, "'Hello'")
	assert.Contains(t, dump, "42, NULL, NULL, NULL")
	assert.Contains(t, dump, "'B1*2'")
	assert.Contains(t, dump, ", 1, NULL, NULL)")
}

func TestDump_QuoteDoubling(t *testing.T) {
	wb := model.NewWorkbook()
	wb.Sheets[0].SetValue(1, 1, "it's quoted")

	dump := strings.Join(collect(wb), "")
	assert.Contains(t, dump, "'it''s quoted'")
	assert.NotContains(t, dump, "'it's quoted'")
}

func TestDump_Batching(t *testing.T) {
	wb := model.NewWorkbook()
	sheet := wb.Sheets[0]
	for row := 1; row <= 250; row++ {
		sheet.SetValue(row, 1, "x")
	}

	var cellInserts []string
	for _, stmt := range collect(wb) {
		if strings.HasPrefix(stmt, "INSERT INTO cell ") {
			cellInserts = append(cellInserts, stmt)
		}
	}

	// 250 cells split as 100 + 100 + 50.
	require.Len(t, cellInserts, 3)
	assert.Equal(t, 100, strings.Count(cellInserts[0], "("+quote(sheet.ID)))
	assert.Equal(t, 50, strings.Count(cellInserts[2], "("+quote(sheet.ID)))
}

func TestDump_DeterministicOrder(t *testing.T) {
	build := func() *model.Workbook {
		wb := model.NewWorkbook()
		wb.ID = "wb"
		sheet := wb.Sheets[0]
		sheet.ID = "s1"
		for row := 5; row >= 1; row-- {
			sheet.SetValue(row, 1, "v")
		}
		return wb
	}

	a := strings.Join(collect(build()), "")
	b := strings.Join(collect(build()), "")
	assert.Equal(t, a, b)

	// Row-major cell order regardless of insertion order.
	i1 := strings.Index(a, "('s1', 1, 1,")
	i5 := strings.Index(a, "('s1', 5, 1,")
	require.Positive(t, i1)
	assert.Less(t, i1, i5)
}

func TestDump_SheetMetadata(t *testing.T) {
	wb := model.NewWorkbook()
	wb.ID = "wb"
	sheet := wb.Sheets[0]
	sheet.ID = "s1"
	sheet.Merged = append(sheet.Merged, model.MergedRange{Ref: "A1:B2"})
	sheet.RowProps[3] = model.RowProp{Row: 3, Height: 24, HasHeight: true, CustomHeight: true}
	sheet.ColProps[2] = model.ColProp{Col: 2, Hidden: true}
	y := 5
	sheet.View = &model.SheetView{Pane: &model.Pane{YSplit: &y, TopLeftCell: "A6", State: "frozen"}}

	dump := strings.Join(collect(wb), "")
	assert.Contains(t, dump, "INSERT INTO merged_range (sheet_id, ref) VALUES ('s1', 'A1:B2');")
	assert.Contains(t, dump, "INSERT INTO row_prop (sheet_id, row_idx, height, hidden, custom_height) VALUES ('s1', 3, 24, 0, 1);")
	assert.Contains(t, dump, "INSERT INTO col_prop (sheet_id, col_idx, width, hidden, custom_width) VALUES ('s1', 2, NULL, 1, 0);")
	assert.Contains(t, dump, "INSERT INTO sheet_view (sheet_id, x_split, y_split, top_left_cell, state) VALUES ('s1', NULL, 5, 'A6', 'frozen');")
}

func TestDump_StylesAndNames(t *testing.T) {
	wb := model.NewWorkbook()
	wb.ID = "wb"
	font := 1
	wb.CellXfs = []model.CellXf{{ID: 0, FontID: &font}}
	wb.NumFmts[164] = "0.00%"
	local := 0
	wb.DefinedNames = []model.DefinedName{{Name: "Total", Ref: "Sheet1!$A$1", LocalSheetID: &local}}

	dump := strings.Join(collect(wb), "")
	assert.Contains(t, dump, "INSERT INTO style (id, workbook_id, numfmt_id, font_id, fill_id, border_id, xf_id) VALUES (0, 'wb', NULL, 1, NULL, NULL, NULL);")
	assert.Contains(t, dump, "INSERT INTO numfmt (id, workbook_id, format_code) VALUES (164, 'wb', '0.00%');")
	assert.Contains(t, dump, "INSERT INTO defined_name (workbook_id, name, ref, local_sheet_id) VALUES ('wb', 'Total', 'Sheet1!$A$1', 0);")
}

func TestDump_EarlyStop(t *testing.T) {
	wb := model.NewWorkbook()
	wb.Sheets[0].SetValue(1, 1, "x")

	count := 0
	for range Dump(wb) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}
