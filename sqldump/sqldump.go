// Package sqldump serializes a workbook model to a stream of SQLite
// statements. The schema is fully relational so the dump can be loaded
// into any SQLite database and queried directly; the kst package uses
// the same stream as the persistence format.
package sqldump

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/stukenov/keste/model"
)

// Schema is the DDL emitted ahead of the data. Cell values live in
// typed columns (numeric, text, bool) with the cell type tag
// disambiguating which one is live.
const Schema = `-- Workbook and metadata tables
CREATE TABLE workbook (
  id TEXT PRIMARY KEY,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE sheet (
  id TEXT PRIMARY KEY,
  workbook_id TEXT NOT NULL,
  sheet_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  FOREIGN KEY (workbook_id) REFERENCES workbook(id)
);

CREATE TABLE shared_string (
  id INTEGER PRIMARY KEY,
  workbook_id TEXT NOT NULL,
  value TEXT NOT NULL,
  FOREIGN KEY (workbook_id) REFERENCES workbook(id)
);

CREATE TABLE numfmt (
  id INTEGER PRIMARY KEY,
  workbook_id TEXT NOT NULL,
  format_code TEXT NOT NULL,
  FOREIGN KEY (workbook_id) REFERENCES workbook(id)
);

CREATE TABLE style (
  id INTEGER PRIMARY KEY,
  workbook_id TEXT NOT NULL,
  numfmt_id INTEGER,
  font_id INTEGER,
  fill_id INTEGER,
  border_id INTEGER,
  xf_id INTEGER,
  FOREIGN KEY (workbook_id) REFERENCES workbook(id)
);

CREATE TABLE cell (
  sheet_id TEXT NOT NULL,
  row_idx INTEGER NOT NULL,
  col_idx INTEGER NOT NULL,
  cell_type TEXT NOT NULL,
  value_numeric REAL,
  value_text TEXT,
  value_bool INTEGER,
  formula TEXT,
  style_id INTEGER,
  PRIMARY KEY (sheet_id, row_idx, col_idx),
  FOREIGN KEY (sheet_id) REFERENCES sheet(id)
);

CREATE TABLE merged_range (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sheet_id TEXT NOT NULL,
  ref TEXT NOT NULL,
  FOREIGN KEY (sheet_id) REFERENCES sheet(id)
);

CREATE TABLE row_prop (
  sheet_id TEXT NOT NULL,
  row_idx INTEGER NOT NULL,
  height REAL,
  hidden INTEGER,
  custom_height INTEGER,
  PRIMARY KEY (sheet_id, row_idx),
  FOREIGN KEY (sheet_id) REFERENCES sheet(id)
);

CREATE TABLE col_prop (
  sheet_id TEXT NOT NULL,
  col_idx INTEGER NOT NULL,
  width REAL,
  hidden INTEGER,
  custom_width INTEGER,
  PRIMARY KEY (sheet_id, col_idx),
  FOREIGN KEY (sheet_id) REFERENCES sheet(id)
);

CREATE TABLE defined_name (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  workbook_id TEXT NOT NULL,
  name TEXT NOT NULL,
  ref TEXT NOT NULL,
  local_sheet_id INTEGER,
  FOREIGN KEY (workbook_id) REFERENCES workbook(id)
);

CREATE TABLE sheet_view (
  sheet_id TEXT PRIMARY KEY,
  x_split INTEGER,
  y_split INTEGER,
  top_left_cell TEXT,
  state TEXT,
  FOREIGN KEY (sheet_id) REFERENCES sheet(id)
);

CREATE INDEX ix_cell_sheet_row ON cell(sheet_id, row_idx);
CREATE INDEX ix_cell_sheet_col ON cell(sheet_id, col_idx);
CREATE INDEX ix_cell_formula ON cell(formula) WHERE formula IS NOT NULL;
`

// batchSize is the number of cell rows per multi-row INSERT.
const batchSize = 100

// Dump streams the workbook as SQL statements: schema first, then data
// in dependency order. Statements are produced lazily, so a large
// workbook never materializes as a single string. Cell order is
// deterministic (sheets in workbook order, cells row-major).
func Dump(wb *model.Workbook) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(Schema) {
			return
		}
		wbID := quote(wb.ID)

		if !yield(fmt.Sprintf("INSERT INTO workbook (id) VALUES (%s);\n", wbID)) {
			return
		}

		for i, s := range wb.SharedStrings {
			stmt := fmt.Sprintf("INSERT INTO shared_string (id, workbook_id, value) VALUES (%d, %s, %s);\n", i, wbID, quote(s))
			if !yield(stmt) {
				return
			}
		}

		for _, id := range sortedKeys(wb.NumFmts) {
			stmt := fmt.Sprintf("INSERT INTO numfmt (id, workbook_id, format_code) VALUES (%d, %s, %s);\n", id, wbID, quote(wb.NumFmts[id]))
			if !yield(stmt) {
				return
			}
		}

		for _, xf := range wb.CellXfs {
			stmt := fmt.Sprintf("INSERT INTO style (id, workbook_id, numfmt_id, font_id, fill_id, border_id, xf_id) VALUES (%d, %s, %s, %s, %s, %s, %s);\n",
				xf.ID, wbID, nullableInt(xf.NumFmtID), nullableInt(xf.FontID), nullableInt(xf.FillID), nullableInt(xf.BorderID), nullableInt(xf.XfID))
			if !yield(stmt) {
				return
			}
		}

		for _, sheet := range wb.Sheets {
			if !dumpSheet(yield, wbID, sheet) {
				return
			}
		}

		for _, dn := range wb.DefinedNames {
			stmt := fmt.Sprintf("INSERT INTO defined_name (workbook_id, name, ref, local_sheet_id) VALUES (%s, %s, %s, %s);\n",
				wbID, quote(dn.Name), quote(dn.Ref), nullableInt(dn.LocalSheetID))
			if !yield(stmt) {
				return
			}
		}
	}
}

func dumpSheet(yield func(string) bool, wbID string, sheet *model.Sheet) bool {
	sheetID := quote(sheet.ID)

	stmt := fmt.Sprintf("INSERT INTO sheet (id, workbook_id, sheet_id, name) VALUES (%s, %s, %d, %s);\n", sheetID, wbID, sheet.SheetID, quote(sheet.Name))
	if !yield(stmt) {
		return false
	}

	var batch []string
	flush := func() bool {
		if len(batch) == 0 {
			return true
		}
		stmt := "INSERT INTO cell (sheet_id, row_idx, col_idx, cell_type, value_numeric, value_text, value_bool, formula, style_id) VALUES " +
			strings.Join(batch, ", ") + ";\n"
		batch = batch[:0]
		return yield(stmt)
	}

	for _, key := range sheet.Keys() {
		batch = append(batch, cellTuple(sheetID, sheet.Cells[key]))
		if len(batch) >= batchSize {
			if !flush() {
				return false
			}
		}
	}
	if !flush() {
		return false
	}

	for _, m := range sheet.Merged {
		if !yield(fmt.Sprintf("INSERT INTO merged_range (sheet_id, ref) VALUES (%s, %s);\n", sheetID, quote(m.Ref))) {
			return false
		}
	}

	for _, row := range sortedKeys(sheet.RowProps) {
		p := sheet.RowProps[row]
		height := "NULL"
		if p.HasHeight {
			height = formatFloat(p.Height)
		}
		stmt := fmt.Sprintf("INSERT INTO row_prop (sheet_id, row_idx, height, hidden, custom_height) VALUES (%s, %d, %s, %d, %d);\n",
			sheetID, row, height, boolInt(p.Hidden), boolInt(p.CustomHeight))
		if !yield(stmt) {
			return false
		}
	}

	for _, col := range sortedKeys(sheet.ColProps) {
		p := sheet.ColProps[col]
		width := "NULL"
		if p.HasWidth {
			width = formatFloat(p.Width)
		}
		stmt := fmt.Sprintf("INSERT INTO col_prop (sheet_id, col_idx, width, hidden, custom_width) VALUES (%s, %d, %s, %d, %d);\n",
			sheetID, col, width, boolInt(p.Hidden), boolInt(p.CustomWidth))
		if !yield(stmt) {
			return false
		}
	}

	if sheet.View != nil && sheet.View.Pane != nil {
		p := sheet.View.Pane
		stmt := fmt.Sprintf("INSERT INTO sheet_view (sheet_id, x_split, y_split, top_left_cell, state) VALUES (%s, %s, %s, %s, %s);\n",
			sheetID, nullableInt(p.XSplit), nullableInt(p.YSplit), nullableText(p.TopLeftCell), nullableText(p.State))
		if !yield(stmt) {
			return false
		}
	}

	return true
}

// cellTuple renders one cell as a VALUES tuple. Exactly one of the
// typed value columns is non-NULL, selected by the cell type.
func cellTuple(sheetID string, c *model.Cell) string {
	valueNumeric := "NULL"
	valueText := "NULL"
	valueBool := "NULL"

	switch c.Type {
	case model.TypeNumber:
		if c.Value.Kind == model.ValueNumber {
			valueNumeric = formatFloat(c.Value.Num)
		}
	case model.TypeShared, model.TypeStr, model.TypeInline, model.TypeError:
		valueText = quote(c.Value.String())
	case model.TypeBool:
		valueBool = strconv.Itoa(boolInt(c.Value.Bool))
	}

	formula := "NULL"
	if c.Formula != "" {
		formula = quote(c.Formula)
	}
	styleID := "NULL"
	if c.StyleID >= 0 {
		styleID = strconv.Itoa(c.StyleID)
	}

	return fmt.Sprintf("(%s, %d, %d, '%s', %s, %s, %s, %s, %s)",
		sheetID, c.Row, c.Col, c.Type, valueNumeric, valueText, valueBool, formula, styleID)
}

// quote renders a single-quoted SQL string literal, doubling embedded
// quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func nullableText(s string) string {
	if s == "" {
		return "NULL"
	}
	return quote(s)
}

func nullableInt(v *int) string {
	if v == nil {
		return "NULL"
	}
	return strconv.Itoa(*v)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys[M ~map[int]V, V any](m M) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
