// Package keste is a spreadsheet document engine: it imports xlsx
// packages into a relational document model, persists the model as a
// SQLite-backed .kst file, evaluates formulas, and exports back to
// xlsx. The subpackages do the work; this package ties them into the
// operations a caller usually wants.
package keste

import (
	"fmt"
	"iter"
	"os"

	"github.com/stukenov/keste/formula"
	"github.com/stukenov/keste/kst"
	"github.com/stukenov/keste/model"
	"github.com/stukenov/keste/numfmt"
	"github.com/stukenov/keste/sqldump"
	"github.com/stukenov/keste/style"
	"github.com/stukenov/keste/xlsx"
)

// ImportXlsx parses an xlsx archive into a workbook model, along with
// the importer's non-fatal issue report.
func ImportXlsx(data []byte, opts ...xlsx.Option) (*model.Workbook, []xlsx.Issue, error) {
	return xlsx.Read(data, opts...)
}

// ImportXlsxFile reads and parses an xlsx file.
func ImportXlsxFile(path string, opts ...xlsx.Option) (*model.Workbook, []xlsx.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("keste: read %s: %w", path, err)
	}
	return xlsx.Read(data, opts...)
}

// ExportXlsx renders the workbook as an xlsx archive.
func ExportXlsx(wb *model.Workbook) ([]byte, error) {
	return xlsx.WriteArchive(wb)
}

// ExportXlsxFile renders the workbook and writes it to path.
func ExportXlsxFile(wb *model.Workbook, path string) error {
	data, err := xlsx.WriteArchive(wb)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("keste: write %s: %w", path, err)
	}
	return nil
}

// DumpSQL streams the workbook as SQL statements.
func DumpSQL(wb *model.Workbook) iter.Seq[string] {
	return sqldump.Dump(wb)
}

// SaveKst persists the workbook to a .kst SQLite file at path and
// returns the number of statements executed.
func SaveKst(wb *model.Workbook, path string) (int64, error) {
	return kst.Save(path, sqldump.Dump(wb))
}

// OpenKst loads a workbook from a .kst file.
func OpenKst(path string) (*model.Workbook, error) {
	return kst.Open(path)
}

// DisplayValue renders the cell at (row, col) the way a grid shows it:
// formula cells evaluate against the sheet, plain cells render through
// the cell's resolved number format, and empty positions are "".
func DisplayValue(wb *model.Workbook, sheet *model.Sheet, row, col int) string {
	cell := sheet.Cell(row, col)
	if cell == nil {
		return ""
	}

	if cell.Formula != "" {
		result := formula.Evaluate("="+cell.Formula, sheet.ValueAt)
		return scalarDisplay(result)
	}

	if rs := style.Resolve(cell, wb); rs != nil && rs.NumFmtID != nil {
		return numfmt.Format(cell.Value, *rs.NumFmtID, wb.NumFmts)
	}
	return cell.Value.String()
}

// EditValue is the user-edit entry point: it parses the input the way
// SetValue does and returns the new display value.
func EditValue(wb *model.Workbook, sheet *model.Sheet, row, col int, input string) string {
	sheet.SetValue(row, col, input)
	return DisplayValue(wb, sheet, row, col)
}

func scalarDisplay(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return model.Number(t).String()
	case bool:
		return model.Boolean(t).String()
	case string:
		return t
	}
	return fmt.Sprint(v)
}
