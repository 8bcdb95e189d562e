// Package xlsx imports and exports workbooks in the OOXML spreadsheet
// package format. The reader is tolerant by design: a damaged part
// degrades to an issue on the import report instead of failing the
// whole document, and only a missing xl/workbook.xml is fatal.
package xlsx

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/stukenov/keste/model"
	"github.com/stukenov/keste/pkzip"
	"github.com/stukenov/keste/sax"
)

// ErrMissingWorkbook is returned when the archive has no xl/workbook.xml.
var ErrMissingWorkbook = errors.New("xlsx: missing xl/workbook.xml")

// Issue is one non-fatal problem encountered during import.
type Issue struct {
	Part string
	Msg  string
}

func (i Issue) String() string { return i.Part + ": " + i.Msg }

// Options configures the importer.
type Options struct {
	logger *slog.Logger
}

// Option mutates importer options.
type Option func(*Options)

// WithLogger routes importer diagnostics to the given logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

type reader struct {
	log    *slog.Logger
	issues []Issue
}

func (r *reader) issue(part, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.log.Warn("import issue", "part", part, "msg", msg)
	r.issues = append(r.issues, Issue{Part: part, Msg: msg})
}

// Read parses an xlsx archive into a workbook model. It returns the
// model, the list of non-fatal import issues, and an error only when
// the archive is unreadable or carries no workbook part. The returned
// workbook always has at least one sheet.
func Read(data []byte, opts ...Option) (*model.Workbook, []Issue, error) {
	o := Options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	r := &reader{log: o.logger}

	entries, err := pkzip.ReadEntries(data, pkzip.WithLogger(o.logger))
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx: read archive: %w", err)
	}

	wb := &model.Workbook{
		ID:      uuid.NewString(),
		NumFmts: make(map[int]string),
	}

	if sst, ok := entries["xl/sharedStrings.xml"]; ok {
		wb.SharedStrings = parseSharedStrings(sst)
	}

	if styles, ok := entries["xl/styles.xml"]; ok {
		parseStyles(styles, wb)
	}

	rels := parseRels(entries["xl/_rels/workbook.xml.rels"])

	wbData, ok := entries["xl/workbook.xml"]
	if !ok {
		return nil, nil, ErrMissingWorkbook
	}
	infos, definedNames := parseWorkbook(wbData)
	wb.DefinedNames = definedNames

	for _, info := range infos {
		path := sheetPath(rels, info)
		part, ok := entries[path]
		if !ok {
			r.issue(path, "sheet %q part not found", info.name)
			continue
		}
		sheet := model.NewSheet(info.relID, info.name, info.sheetID)
		r.parseSheet(part, path, sheet, wb.SharedStrings)
		wb.Sheets = append(wb.Sheets, sheet)
	}

	// A workbook never has zero sheets.
	if len(wb.Sheets) == 0 {
		r.issue("xl/workbook.xml", "no sheets found, adding default")
		wb.AddSheet("Sheet1")
	}

	return wb, r.issues, nil
}

type sheetInfo struct {
	relID   string
	name    string
	sheetID int
}

// sheetPath resolves a sheet part path through the workbook
// relationships, falling back to the conventional location keyed by
// the sheet ordinal.
func sheetPath(rels map[string]string, info sheetInfo) string {
	target, ok := rels[info.relID]
	if !ok || target == "" {
		return fmt.Sprintf("xl/worksheets/sheet%d.xml", info.sheetID)
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return "xl/" + target
}

func parseRels(data []byte) map[string]string {
	rels := make(map[string]string)
	if data == nil {
		return rels
	}
	sax.Parse(data, sax.Handlers{
		StartElement: func(name string, attrs map[string]string) {
			if name != "Relationship" {
				return
			}
			if id, target := attrs["Id"], attrs["Target"]; id != "" && target != "" {
				rels[id] = target
			}
		},
	})
	return rels
}

// parseSharedStrings flattens each <si> item to its concatenated <t>
// runs, so rich-text strings keep their full text.
func parseSharedStrings(data []byte) []string {
	var strs []string
	var current strings.Builder
	inT := false

	sax.Parse(data, sax.Handlers{
		StartElement: func(name string, _ map[string]string) {
			if name == "t" {
				inT = true
			}
		},
		Text: func(text string) {
			if inT {
				current.WriteString(text)
			}
		},
		EndElement: func(name string) {
			switch name {
			case "t":
				inT = false
			case "si":
				strs = append(strs, current.String())
				current.Reset()
			}
		},
	})
	return strs
}

func parseWorkbook(data []byte) ([]sheetInfo, []model.DefinedName) {
	var infos []sheetInfo
	var names []model.DefinedName
	var current *model.DefinedName
	var ref strings.Builder

	sax.Parse(data, sax.Handlers{
		StartElement: func(name string, attrs map[string]string) {
			switch name {
			case "sheet":
				relID := attrs["r:id"]
				if relID == "" {
					relID = attrs["id"]
				}
				sheetID, _ := strconv.Atoi(attrs["sheetId"])
				if sheetID == 0 {
					sheetID = 1
				}
				infos = append(infos, sheetInfo{relID: relID, name: attrs["name"], sheetID: sheetID})
			case "definedName":
				dn := model.DefinedName{Name: attrs["name"]}
				if v, ok := attrs["localSheetId"]; ok {
					if id, err := strconv.Atoi(v); err == nil {
						dn.LocalSheetID = &id
					}
				}
				current = &dn
				ref.Reset()
			}
		},
		Text: func(text string) {
			if current != nil {
				ref.WriteString(text)
			}
		},
		EndElement: func(name string) {
			if name == "definedName" && current != nil {
				current.Ref = ref.String()
				names = append(names, *current)
				current = nil
			}
		},
	})
	return infos, names
}

// parseSheet fills a sheet from its worksheet part: cells with values,
// formulas, and style indices inside <sheetData>, plus merged ranges,
// row/column properties, and the frozen pane.
func (r *reader) parseSheet(data []byte, part string, sheet *model.Sheet, sharedStrings []string) {
	inSheetData := false
	inFormula := false
	var formula strings.Builder
	var cell *model.Cell

	sax.Parse(data, sax.Handlers{
		StartElement: func(name string, attrs map[string]string) {
			switch name {
			case "sheetData":
				inSheetData = true
			case "row":
				if !inSheetData {
					return
				}
				rowNum, _ := strconv.Atoi(attrs["r"])
				ht, hasHt := attrs["ht"]
				hidden := attrs["hidden"] == "1"
				if hasHt || hidden {
					prop := model.RowProp{
						Row:          rowNum,
						Hidden:       hidden,
						CustomHeight: attrs["customHeight"] == "1",
					}
					if hasHt {
						prop.Height, _ = strconv.ParseFloat(ht, 64)
						prop.HasHeight = true
					}
					sheet.RowProps[rowNum] = prop
				}
			case "c":
				if !inSheetData {
					return
				}
				ref := attrs["r"]
				row, col := model.ParseCellRef(ref)
				if row == 0 || col == 0 {
					r.issue(part, "skipping cell with invalid reference %q", ref)
					cell = nil
					return
				}
				cell = model.NewCell(row, col)
				if t, ok := attrs["t"]; ok {
					cell.Type = model.CellType(t)
				}
				if s, ok := attrs["s"]; ok {
					if id, err := strconv.Atoi(s); err == nil {
						cell.StyleID = id
					}
				}
			case "f":
				if cell != nil {
					inFormula = true
					formula.Reset()
				}
			case "mergeCell":
				if ref := attrs["ref"]; ref != "" {
					sheet.Merged = append(sheet.Merged, model.MergedRange{Ref: ref})
				}
			case "col":
				minCol, _ := strconv.Atoi(attrs["min"])
				width, hasWidth := attrs["width"]
				hidden := attrs["hidden"] == "1"
				if minCol > 0 && (hasWidth || hidden) {
					prop := model.ColProp{
						Col:         minCol,
						Hidden:      hidden,
						CustomWidth: attrs["customWidth"] == "1",
					}
					if hasWidth {
						prop.Width, _ = strconv.ParseFloat(width, 64)
						prop.HasWidth = true
					}
					sheet.ColProps[minCol] = prop
				}
			case "pane":
				pane := &model.Pane{
					TopLeftCell: attrs["topLeftCell"],
					State:       attrs["state"],
				}
				if v, ok := attrs["xSplit"]; ok {
					if n, err := strconv.Atoi(v); err == nil {
						pane.XSplit = &n
					}
				}
				if v, ok := attrs["ySplit"]; ok {
					if n, err := strconv.Atoi(v); err == nil {
						pane.YSplit = &n
					}
				}
				if sheet.View == nil {
					sheet.View = &model.SheetView{}
				}
				sheet.View.Pane = pane
			}
		},
		Text: func(text string) {
			if inFormula {
				formula.WriteString(text)
				return
			}
			if cell == nil {
				return
			}
			cell.Value = cellValue(cell.Type, text, sharedStrings)
		},
		EndElement: func(name string) {
			switch name {
			case "sheetData":
				inSheetData = false
			case "f":
				if inFormula && cell != nil {
					cell.Formula = formula.String()
				}
				inFormula = false
			case "c":
				if cell != nil {
					sheet.Put(cell)
					cell = nil
				}
			}
		},
	})
}

// cellValue interprets <v> (or inline <t>) content under the cell type.
// Out-of-range shared string indices read as empty rather than failing
// the sheet.
func cellValue(t model.CellType, text string, sharedStrings []string) model.Value {
	switch t {
	case model.TypeShared:
		idx, err := strconv.Atoi(text)
		if err != nil || idx < 0 || idx >= len(sharedStrings) {
			return model.Text("")
		}
		return model.Text(sharedStrings[idx])
	case model.TypeNumber:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return model.Number(0)
		}
		return model.Number(n)
	case model.TypeBool:
		return model.Boolean(text == "1")
	default:
		return model.Text(text)
	}
}
