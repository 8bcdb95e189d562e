// Package kst persists workbooks as SQLite database files (.kst). A
// .kst file is exactly the sqldump schema executed against SQLite, so
// any SQLite tool can open one directly.
package kst

import (
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/stukenov/keste/model"
)

// ErrNoWorkbook is returned by Open when the database has no workbook row.
var ErrNoWorkbook = errors.New("kst: no workbook found")

// Save executes a SQL statement stream against a fresh database at
// path, replacing any existing file, and returns the number of
// statements executed. The whole stream runs in one transaction.
func Save(path string, stmts iter.Seq[string]) (int64, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("kst: replace %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("kst: open %s: %w", path, err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("kst: begin: %w", err)
	}
	defer tx.Rollback()

	var count int64
	for chunk := range stmts {
		for _, stmt := range splitStatements(chunk) {
			if _, err := tx.Exec(stmt); err != nil {
				return count, fmt.Errorf("kst: exec %q: %w", abbrev(stmt), err)
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("kst: commit: %w", err)
	}
	return count, nil
}

// Open loads a .kst database back into a workbook model.
func Open(path string) (*model.Workbook, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("kst: open %s: %w", path, err)
	}
	defer db.Close()

	wb := &model.Workbook{NumFmts: make(map[int]string)}

	if err := db.QueryRow("SELECT id FROM workbook LIMIT 1").Scan(&wb.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoWorkbook
		}
		return nil, fmt.Errorf("kst: read workbook: %w", err)
	}

	if err := readSharedStrings(db, wb); err != nil {
		return nil, err
	}
	if err := readNumFmts(db, wb); err != nil {
		return nil, err
	}
	if err := readStyles(db, wb); err != nil {
		return nil, err
	}
	if err := readDefinedNames(db, wb); err != nil {
		return nil, err
	}
	if err := readSheets(db, wb); err != nil {
		return nil, err
	}

	if len(wb.Sheets) == 0 {
		wb.AddSheet("Sheet1")
	}
	return wb, nil
}

func readSharedStrings(db *sql.DB, wb *model.Workbook) error {
	rows, err := db.Query("SELECT value FROM shared_string ORDER BY id")
	if err != nil {
		return fmt.Errorf("kst: read shared strings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return fmt.Errorf("kst: scan shared string: %w", err)
		}
		wb.SharedStrings = append(wb.SharedStrings, s)
	}
	return rows.Err()
}

func readNumFmts(db *sql.DB, wb *model.Workbook) error {
	rows, err := db.Query("SELECT id, format_code FROM numfmt")
	if err != nil {
		return fmt.Errorf("kst: read numfmts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		var code string
		if err := rows.Scan(&id, &code); err != nil {
			return fmt.Errorf("kst: scan numfmt: %w", err)
		}
		wb.NumFmts[id] = code
	}
	return rows.Err()
}

func readStyles(db *sql.DB, wb *model.Workbook) error {
	rows, err := db.Query("SELECT id, numfmt_id, font_id, fill_id, border_id, xf_id FROM style ORDER BY id")
	if err != nil {
		return fmt.Errorf("kst: read styles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var xf model.CellXf
		var numFmt, font, fill, border, xfID sql.NullInt64
		if err := rows.Scan(&xf.ID, &numFmt, &font, &fill, &border, &xfID); err != nil {
			return fmt.Errorf("kst: scan style: %w", err)
		}
		xf.NumFmtID = nullInt(numFmt)
		xf.FontID = nullInt(font)
		xf.FillID = nullInt(fill)
		xf.BorderID = nullInt(border)
		xf.XfID = nullInt(xfID)
		wb.CellXfs = append(wb.CellXfs, xf)
	}
	return rows.Err()
}

func readDefinedNames(db *sql.DB, wb *model.Workbook) error {
	rows, err := db.Query("SELECT name, ref, local_sheet_id FROM defined_name ORDER BY id")
	if err != nil {
		return fmt.Errorf("kst: read defined names: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var dn model.DefinedName
		var local sql.NullInt64
		if err := rows.Scan(&dn.Name, &dn.Ref, &local); err != nil {
			return fmt.Errorf("kst: scan defined name: %w", err)
		}
		dn.LocalSheetID = nullInt(local)
		wb.DefinedNames = append(wb.DefinedNames, dn)
	}
	return rows.Err()
}

func readSheets(db *sql.DB, wb *model.Workbook) error {
	rows, err := db.Query("SELECT id, sheet_id, name FROM sheet ORDER BY sheet_id")
	if err != nil {
		return fmt.Errorf("kst: read sheets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		var sheetID int
		if err := rows.Scan(&id, &sheetID, &name); err != nil {
			return fmt.Errorf("kst: scan sheet: %w", err)
		}
		wb.Sheets = append(wb.Sheets, model.NewSheet(id, name, sheetID))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, sheet := range wb.Sheets {
		if err := readCells(db, sheet); err != nil {
			return err
		}
		if err := readSheetExtras(db, sheet); err != nil {
			return err
		}
	}
	return nil
}

func readCells(db *sql.DB, sheet *model.Sheet) error {
	rows, err := db.Query(
		"SELECT row_idx, col_idx, cell_type, value_numeric, value_text, value_bool, formula, style_id FROM cell WHERE sheet_id = ? ORDER BY row_idx, col_idx",
		sheet.ID)
	if err != nil {
		return fmt.Errorf("kst: read cells of %s: %w", sheet.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var row, col int
		var cellType string
		var num sql.NullFloat64
		var text sql.NullString
		var boolean, styleID sql.NullInt64
		var formula sql.NullString
		if err := rows.Scan(&row, &col, &cellType, &num, &text, &boolean, &formula, &styleID); err != nil {
			return fmt.Errorf("kst: scan cell: %w", err)
		}

		c := model.NewCell(row, col)
		c.Type = model.CellType(cellType)
		switch {
		case num.Valid:
			c.Value = model.Number(num.Float64)
		case text.Valid:
			c.Value = model.Text(text.String)
		case boolean.Valid:
			c.Value = model.Boolean(boolean.Int64 != 0)
		}
		if formula.Valid {
			c.Formula = formula.String
		}
		if styleID.Valid {
			c.StyleID = int(styleID.Int64)
		}
		sheet.Put(c)
	}
	return rows.Err()
}

func readSheetExtras(db *sql.DB, sheet *model.Sheet) error {
	rows, err := db.Query("SELECT ref FROM merged_range WHERE sheet_id = ? ORDER BY id", sheet.ID)
	if err != nil {
		return fmt.Errorf("kst: read merges: %w", err)
	}
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			rows.Close()
			return fmt.Errorf("kst: scan merge: %w", err)
		}
		sheet.Merged = append(sheet.Merged, model.MergedRange{Ref: ref})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = db.Query("SELECT row_idx, height, hidden, custom_height FROM row_prop WHERE sheet_id = ?", sheet.ID)
	if err != nil {
		return fmt.Errorf("kst: read row props: %w", err)
	}
	for rows.Next() {
		var row int
		var height sql.NullFloat64
		var hidden, custom int
		if err := rows.Scan(&row, &height, &hidden, &custom); err != nil {
			rows.Close()
			return fmt.Errorf("kst: scan row prop: %w", err)
		}
		sheet.RowProps[row] = model.RowProp{
			Row:          row,
			Height:       height.Float64,
			HasHeight:    height.Valid,
			Hidden:       hidden != 0,
			CustomHeight: custom != 0,
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = db.Query("SELECT col_idx, width, hidden, custom_width FROM col_prop WHERE sheet_id = ?", sheet.ID)
	if err != nil {
		return fmt.Errorf("kst: read col props: %w", err)
	}
	for rows.Next() {
		var col int
		var width sql.NullFloat64
		var hidden, custom int
		if err := rows.Scan(&col, &width, &hidden, &custom); err != nil {
			rows.Close()
			return fmt.Errorf("kst: scan col prop: %w", err)
		}
		sheet.ColProps[col] = model.ColProp{
			Col:         col,
			Width:       width.Float64,
			HasWidth:    width.Valid,
			Hidden:      hidden != 0,
			CustomWidth: custom != 0,
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	var xSplit, ySplit sql.NullInt64
	var topLeft, state sql.NullString
	err = db.QueryRow("SELECT x_split, y_split, top_left_cell, state FROM sheet_view WHERE sheet_id = ?", sheet.ID).
		Scan(&xSplit, &ySplit, &topLeft, &state)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("kst: read sheet view: %w", err)
	default:
		sheet.View = &model.SheetView{Pane: &model.Pane{
			XSplit:      nullInt(xSplit),
			YSplit:      nullInt(ySplit),
			TopLeftCell: topLeft.String,
			State:       state.String,
		}}
	}
	return nil
}

// splitStatements breaks a SQL chunk into single statements on
// semicolons outside string literals. Format codes legitimately carry
// semicolons inside quotes.
func splitStatements(chunk string) []string {
	var stmts []string
	var sb strings.Builder
	inString := false

	for i := 0; i < len(chunk); i++ {
		ch := chunk[i]
		sb.WriteByte(ch)
		switch ch {
		case '\'':
			inString = !inString
		case ';':
			if !inString {
				if stmt := strings.TrimSpace(sb.String()); stmt != ";" && stmt != "" {
					stmts = append(stmts, stmt)
				}
				sb.Reset()
			}
		}
	}
	if stmt := strings.TrimSpace(sb.String()); stmt != "" {
		stmts = append(stmts, stmt)
	}
	return stmts
}

func abbrev(s string) string {
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
