package model

import "github.com/google/uuid"

// Workbook is the root aggregate of the document model. Exporters read
// it, the importer and editing operations write it.
type Workbook struct {
	ID            string
	Sheets        []*Sheet
	SharedStrings []string
	NumFmts       map[int]string // custom formats only; built-ins live in numfmt
	Fonts         []Font
	Fills         []Fill
	Borders       []Border
	CellXfs       []CellXf
	DefinedNames  []DefinedName
}

// NewWorkbook returns an empty workbook with a single default sheet.
// A workbook never has zero sheets.
func NewWorkbook() *Workbook {
	wb := &Workbook{
		ID:      uuid.NewString(),
		NumFmts: make(map[int]string),
	}
	wb.AddSheet("Sheet1")
	return wb
}

// AddSheet appends a sheet with the next ordinal and returns it.
func (wb *Workbook) AddSheet(name string) *Sheet {
	s := NewSheet(uuid.NewString(), name, len(wb.Sheets)+1)
	wb.Sheets = append(wb.Sheets, s)
	return s
}

// SheetByName returns the sheet with the given display name, or nil.
func (wb *Workbook) SheetByName(name string) *Sheet {
	for _, s := range wb.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Xf returns the CellXf referenced by a cell's style index, or nil when
// the index is absent (-1) or out of range.
func (wb *Workbook) Xf(styleID int) *CellXf {
	if styleID < 0 || styleID >= len(wb.CellXfs) {
		return nil
	}
	return &wb.CellXfs[styleID]
}
