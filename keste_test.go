package keste

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stukenov/keste/model"
)

func TestDisplayValue_Pipeline(t *testing.T) {
	wb := model.NewWorkbook()
	sheet := wb.Sheets[0]
	sheet.SetValue(1, 1, "Hello")
	sheet.SetValue(1, 2, "42")
	sheet.SetValue(1, 3, "=B1*2")

	assert.Equal(t, "Hello", DisplayValue(wb, sheet, 1, 1))
	assert.Equal(t, "42", DisplayValue(wb, sheet, 1, 2))
	assert.Equal(t, "84", DisplayValue(wb, sheet, 1, 3))
	assert.Equal(t, "", DisplayValue(wb, sheet, 9, 9))
}

func TestDisplayValue_NumberFormat(t *testing.T) {
	wb := model.NewWorkbook()
	sheet := wb.Sheets[0]
	sheet.SetValue(1, 1, "1234.5")

	four := 4 // #,##0.00
	wb.CellXfs = []model.CellXf{{ID: 0, NumFmtID: &four}}
	sheet.Cell(1, 1).StyleID = 0

	assert.Equal(t, "1,234.50", DisplayValue(wb, sheet, 1, 1))
}

func TestEditValue(t *testing.T) {
	wb := model.NewWorkbook()
	sheet := wb.Sheets[0]
	sheet.SetValue(1, 1, "10")

	assert.Equal(t, "30", EditValue(wb, sheet, 2, 1, "=A1*3"))
	assert.Equal(t, "", EditValue(wb, sheet, 2, 1, ""))
	assert.Nil(t, sheet.Cell(2, 1))
}

func TestEndToEnd_XlsxToKstAndBack(t *testing.T) {
	wb := model.NewWorkbook()
	sheet := wb.Sheets[0]
	sheet.SetValue(1, 1, "Hello")
	sheet.SetValue(1, 2, "42")
	sheet.SetValue(1, 3, "=B1*2")

	// Export to xlsx and import it back.
	archive, err := ExportXlsx(wb)
	require.NoError(t, err)
	imported, issues, err := ImportXlsx(archive)
	require.NoError(t, err)
	assert.Empty(t, issues)

	// Persist the imported model as .kst and reload it.
	path := filepath.Join(t.TempDir(), "roundtrip.kst")
	n, err := SaveKst(imported, path)
	require.NoError(t, err)
	assert.Positive(t, n)

	reloaded, err := OpenKst(path)
	require.NoError(t, err)

	s := reloaded.Sheets[0]
	assert.Equal(t, "Hello", DisplayValue(reloaded, s, 1, 1))
	assert.Equal(t, "42", DisplayValue(reloaded, s, 1, 2))
	assert.Equal(t, "84", DisplayValue(reloaded, s, 1, 3))
}

func TestDumpSQL_ContainsCellData(t *testing.T) {
	wb := model.NewWorkbook()
	wb.Sheets[0].SetValue(1, 1, "Hello")

	var all string
	for stmt := range DumpSQL(wb) {
		all += stmt
	}
	assert.Contains(t, all, "'Hello'")
	assert.Contains(t, all, "CREATE TABLE cell")
}
