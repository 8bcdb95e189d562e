package model

import (
	"slices"
	"strconv"
	"strings"
)

// RowProp holds non-default row properties.
type RowProp struct {
	Row          int
	Height       float64
	HasHeight    bool
	Hidden       bool
	CustomHeight bool
}

// ColProp holds non-default column properties.
type ColProp struct {
	Col         int
	Width       float64
	HasWidth    bool
	Hidden      bool
	CustomWidth bool
}

// Pane describes a frozen/split sheet view.
type Pane struct {
	XSplit      *int
	YSplit      *int
	TopLeftCell string
	State       string
}

// SheetView holds view settings that survive a round trip.
type SheetView struct {
	Pane *Pane
}

// Sheet is one worksheet of a workbook. Cells is sparse, keyed by the
// packed (row, col) Key.
type Sheet struct {
	ID       string
	Name     string
	SheetID  int // 1-based ordinal
	Cells    map[Key]*Cell
	Merged   []MergedRange
	RowProps map[int]RowProp
	ColProps map[int]ColProp
	View     *SheetView
}

// NewSheet returns an empty sheet.
func NewSheet(id, name string, sheetID int) *Sheet {
	return &Sheet{
		ID:       id,
		Name:     name,
		SheetID:  sheetID,
		Cells:    make(map[Key]*Cell),
		RowProps: make(map[int]RowProp),
		ColProps: make(map[int]ColProp),
	}
}

// Cell returns the cell at (row, col), or nil when the position is empty.
func (s *Sheet) Cell(row, col int) *Cell {
	return s.Cells[MakeKey(row, col)]
}

// Put stores a cell at its own coordinates.
func (s *Sheet) Put(c *Cell) {
	s.Cells[MakeKey(c.Row, c.Col)] = c
}

// SetValue applies an edit at (row, col). An empty input deletes the
// cell. A leading "=" stores a formula (without the "="). Input that
// parses as a number becomes a numeric cell, "TRUE"/"FALSE" a boolean,
// anything else a shared-string cell.
func (s *Sheet) SetValue(row, col int, input string) {
	key := MakeKey(row, col)
	if input == "" {
		delete(s.Cells, key)
		return
	}

	c := s.Cells[key]
	if c == nil {
		c = NewCell(row, col)
		s.Cells[key] = c
	}

	if strings.HasPrefix(input, "=") {
		c.Formula = strings.TrimPrefix(input, "=")
		c.Type = TypeNumber
		c.Value = Value{}
		return
	}

	c.Formula = ""
	switch {
	case input == "TRUE" || input == "FALSE":
		c.Type = TypeBool
		c.Value = Boolean(input == "TRUE")
	default:
		if f, err := strconv.ParseFloat(input, 64); err == nil {
			c.Type = TypeNumber
			c.Value = Number(f)
		} else {
			c.Type = TypeShared
			c.Value = Text(input)
		}
	}
}

// ValueAt is the formula engine's cell getter over this sheet. The
// engine uses 0-based coordinates; the sheet is 1-based.
func (s *Sheet) ValueAt(row, col int) any {
	c := s.Cell(row+1, col+1)
	if c == nil {
		return nil
	}
	return c.Value.Scalar()
}

// Keys returns the occupied cell keys in row-major order.
func (s *Sheet) Keys() []Key {
	keys := make([]Key, 0, len(s.Cells))
	for k := range s.Cells {
		keys = append(keys, k)
	}
	// Keys pack row in the high bits, so plain integer order is row-major.
	slices.Sort(keys)
	return keys
}
