package kst

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stukenov/keste/model"
	"github.com/stukenov/keste/sqldump"
)

func saveWorkbook(t *testing.T, wb *model.Workbook) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.kst")
	n, err := Save(path, sqldump.Dump(wb))
	require.NoError(t, err)
	require.Positive(t, n)
	return path
}

func TestSaveOpen_RoundTrip(t *testing.T) {
	wb := model.NewWorkbook()
	sheet := wb.Sheets[0]
	sheet.SetValue(1, 1, "Hello")
	sheet.SetValue(1, 2, "42")
	sheet.SetValue(1, 3, "=B1*2")
	sheet.SetValue(2, 1, "TRUE")
	sheet.Merged = append(sheet.Merged, model.MergedRange{Ref: "A3:B4"})
	sheet.RowProps[2] = model.RowProp{Row: 2, Height: 30, HasHeight: true, CustomHeight: true}
	sheet.ColProps[1] = model.ColProp{Col: 1, Width: 12.5, HasWidth: true, CustomWidth: true}
	y := 1
	sheet.View = &model.SheetView{Pane: &model.Pane{YSplit: &y, TopLeftCell: "A2", State: "frozen"}}

	got, err := Open(saveWorkbook(t, wb))
	require.NoError(t, err)

	assert.Equal(t, wb.ID, got.ID)
	require.Len(t, got.Sheets, 1)
	s := got.Sheets[0]

	assert.Equal(t, "Hello", s.Cell(1, 1).Value.Text)
	assert.Equal(t, float64(42), s.Cell(1, 2).Value.Num)
	assert.Equal(t, "B1*2", s.Cell(1, 3).Formula)
	assert.True(t, s.Cell(2, 1).Value.Bool)

	require.Len(t, s.Merged, 1)
	assert.Equal(t, "A3:B4", s.Merged[0].Ref)

	prop, ok := s.RowProps[2]
	require.True(t, ok)
	assert.Equal(t, float64(30), prop.Height)
	assert.True(t, prop.CustomHeight)

	cprop, ok := s.ColProps[1]
	require.True(t, ok)
	assert.Equal(t, 12.5, cprop.Width)

	require.NotNil(t, s.View)
	require.NotNil(t, s.View.Pane)
	require.NotNil(t, s.View.Pane.YSplit)
	assert.Equal(t, 1, *s.View.Pane.YSplit)
	assert.Equal(t, "A2", s.View.Pane.TopLeftCell)
}

func TestSaveOpen_StylesAndNames(t *testing.T) {
	wb := model.NewWorkbook()
	font := 2
	wb.CellXfs = []model.CellXf{{ID: 0}, {ID: 1, FontID: &font}}
	wb.NumFmts[164] = "#,##0.00;(#,##0.00)"
	wb.SharedStrings = []string{"a", "b"}
	wb.DefinedNames = []model.DefinedName{{Name: "Total", Ref: "Sheet1!$A$1"}}

	got, err := Open(saveWorkbook(t, wb))
	require.NoError(t, err)

	require.Len(t, got.CellXfs, 2)
	assert.Nil(t, got.CellXfs[0].FontID)
	require.NotNil(t, got.CellXfs[1].FontID)
	assert.Equal(t, 2, *got.CellXfs[1].FontID)

	// The format code carries quotes-relevant characters and must
	// survive statement splitting.
	assert.Equal(t, "#,##0.00;(#,##0.00)", got.NumFmts[164])
	assert.Equal(t, []string{"a", "b"}, got.SharedStrings)

	require.Len(t, got.DefinedNames, 1)
	assert.Equal(t, "Total", got.DefinedNames[0].Name)
}

func TestSave_ReplacesExistingFile(t *testing.T) {
	wb := model.NewWorkbook()
	path := saveWorkbook(t, wb)

	// Saving again over the same path must not fail on existing tables.
	_, err := Save(path, sqldump.Dump(wb))
	require.NoError(t, err)
}

func TestOpen_EmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.kst")
	_, err := Save(path, func(yield func(string) bool) {
		yield(sqldump.Schema)
	})
	require.NoError(t, err)

	_, err = Open(path)
	require.ErrorIs(t, err, ErrNoWorkbook)
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("CREATE TABLE a (x TEXT);\nINSERT INTO a VALUES ('x;y');\n")
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x TEXT);", stmts[0])
	assert.Equal(t, "INSERT INTO a VALUES ('x;y');", stmts[1])

	stmts = splitStatements("INSERT INTO a VALUES ('it''s; fine');")
	require.Len(t, stmts, 1)
}

func TestSave_BadStatement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.kst")
	_, err := Save(path, func(yield func(string) bool) {
		yield("NOT VALID SQL;")
	})
	require.Error(t, err)
}
