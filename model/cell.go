package model

import "strconv"

// CellType is the xlsx cell type tag.
type CellType string

const (
	TypeNumber CellType = "n"
	TypeShared CellType = "s"
	TypeBool   CellType = "b"
	TypeDate   CellType = "d"
	TypeStr    CellType = "str"
	TypeError  CellType = "e"
	TypeInline CellType = "inlineStr"
)

// ValueKind discriminates the cell value union.
type ValueKind uint8

const (
	ValueEmpty ValueKind = iota
	ValueNumber
	ValueText
	ValueBool
)

// Value is a tagged cell value: empty, number, text, or boolean.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
	Bool bool
}

// Number wraps a float64 as a Value.
func Number(f float64) Value { return Value{Kind: ValueNumber, Num: f} }

// Text wraps a string as a Value.
func Text(s string) Value { return Value{Kind: ValueText, Text: s} }

// Boolean wraps a bool as a Value.
func Boolean(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// IsEmpty reports whether the value is the empty variant.
func (v Value) IsEmpty() bool { return v.Kind == ValueEmpty }

// String returns the plain display form of the value ("General" format).
func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueText:
		return v.Text
	case ValueBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	}
	return ""
}

// Scalar returns the value as nil, float64, string, or bool. The formula
// engine's cell getter speaks this representation.
func (v Value) Scalar() any {
	switch v.Kind {
	case ValueNumber:
		return v.Num
	case ValueText:
		return v.Text
	case ValueBool:
		return v.Bool
	}
	return nil
}

// Cell is a single populated grid position. Row and Col are 1-based.
// When Formula is non-empty it is the source of truth and Value holds
// the last cached result. StyleID is an index into the workbook's
// CellXfs table, or -1 when the cell carries no style.
type Cell struct {
	Row     int
	Col     int
	Type    CellType
	Value   Value
	Formula string
	StyleID int
}

// NewCell returns a cell at (row, col) with no value and no style.
func NewCell(row, col int) *Cell {
	return &Cell{Row: row, Col: col, Type: TypeNumber, StyleID: -1}
}
