package model

// MergedRange is a rectangular merged block, stored by its A1-style
// reference ("A1:B2"). The top-left cell is the master; all other cells
// in the rectangle are suppressed from independent rendering.
type MergedRange struct {
	Ref string
}

// Range is a parsed rectangular reference with 1-based inclusive bounds.
type Range struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// ParseRange parses "A1:B3" into coordinates. It returns false for
// malformed references or rectangles whose start exceeds their end.
func ParseRange(ref string) (Range, bool) {
	colon := -1
	for i := 0; i < len(ref); i++ {
		if ref[i] == ':' {
			colon = i
			break
		}
	}
	if colon < 0 {
		return Range{}, false
	}
	sr, sc := ParseCellRef(ref[:colon])
	er, ec := ParseCellRef(ref[colon+1:])
	if sr == 0 || er == 0 || sr > er || sc > ec {
		return Range{}, false
	}
	return Range{StartRow: sr, StartCol: sc, EndRow: er, EndCol: ec}, true
}

// Contains reports whether (row, col) lies inside the range.
func (r Range) Contains(row, col int) bool {
	return row >= r.StartRow && row <= r.EndRow && col >= r.StartCol && col <= r.EndCol
}

// MergedAt returns the merged range covering (row, col), or false.
func (s *Sheet) MergedAt(row, col int) (MergedRange, bool) {
	for _, m := range s.Merged {
		if r, ok := ParseRange(m.Ref); ok && r.Contains(row, col) {
			return m, true
		}
	}
	return MergedRange{}, false
}

// IsMaster reports whether (row, col) is the top-left cell of a merged
// range.
func (s *Sheet) IsMaster(row, col int) bool {
	for _, m := range s.Merged {
		if r, ok := ParseRange(m.Ref); ok && r.StartRow == row && r.StartCol == col {
			return true
		}
	}
	return false
}

// MasterOf returns the master position for a cell inside a merged
// range. For cells outside any range it returns the position itself.
func (s *Sheet) MasterOf(row, col int) (int, int) {
	for _, m := range s.Merged {
		if r, ok := ParseRange(m.Ref); ok && r.Contains(row, col) {
			return r.StartRow, r.StartCol
		}
	}
	return row, col
}

// SpanOf returns the (rowSpan, colSpan) of the merged range whose
// master is (row, col), or (1, 1) when the cell is not a master.
func (s *Sheet) SpanOf(row, col int) (int, int) {
	for _, m := range s.Merged {
		if r, ok := ParseRange(m.Ref); ok && r.StartRow == row && r.StartCol == col {
			return r.EndRow - r.StartRow + 1, r.EndCol - r.StartCol + 1
		}
	}
	return 1, 1
}

// Hidden reports whether a cell should be suppressed from rendering:
// inside a merged range but not its master.
func (s *Sheet) Hidden(row, col int) bool {
	if _, ok := s.MergedAt(row, col); !ok {
		return false
	}
	return !s.IsMaster(row, col)
}
