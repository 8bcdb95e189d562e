// Package style resolves a cell's style index through the workbook's
// cascading font/fill/border/alignment/number-format tables into a
// concrete, renderable style.
package style

import (
	"github.com/stukenov/keste/model"
)

// Edge is a resolved border side.
type Edge struct {
	Style string
	Color string
}

// Resolved is the effective style of a cell after the cellXfs cascade.
// Zero-value fields mean "inherit default rendering" for that facet.
type Resolved struct {
	FontName   string
	FontSize   float64
	FontBold   bool
	FontItalic bool
	FontColor  string
	Underline  bool
	Strike     bool

	BackgroundColor string

	HorizontalAlign string
	VerticalAlign   string
	WrapText        bool
	TextRotation    *int
	Indent          *int

	BorderTop    *Edge
	BorderRight  *Edge
	BorderBottom *Edge
	BorderLeft   *Edge

	NumFmtID     *int
	NumberFormat string
}

// Resolve computes the effective style for a cell. It is a pure
// function of (cell.StyleID, workbook style tables) and safe to memoize
// against them. It returns nil when the cell has no style index, the
// workbook has no cellXfs table, or the index is out of range.
//
// Each facet applies only when its apply flag is true or absent: a flag
// explicitly set to false suppresses the facet even when an id is
// present. This mirrors legacy stylesheet semantics and is pinned by
// tests.
func Resolve(cell *model.Cell, wb *model.Workbook) *Resolved {
	if cell == nil || cell.StyleID < 0 || len(wb.CellXfs) == 0 {
		return nil
	}
	xf := wb.Xf(cell.StyleID)
	if xf == nil {
		return nil
	}

	var rs Resolved

	if xf.FontID != nil && applies(xf.ApplyFont) {
		if id := *xf.FontID; id >= 0 && id < len(wb.Fonts) {
			f := wb.Fonts[id]
			rs.FontName = f.Name
			rs.FontSize = f.Size
			rs.FontBold = f.Bold
			rs.FontItalic = f.Italic
			rs.Underline = f.Underline
			rs.Strike = f.Strike
			rs.FontColor = HexColor(f.Color)
		}
	}

	if xf.FillID != nil && applies(xf.ApplyFill) {
		if id := *xf.FillID; id >= 0 && id < len(wb.Fills) {
			f := wb.Fills[id]
			if f.Pattern == "solid" && f.FgColor != "" {
				rs.BackgroundColor = HexColor(f.FgColor)
			}
		}
	}

	if xf.BorderID != nil && applies(xf.ApplyBorder) {
		if id := *xf.BorderID; id >= 0 && id < len(wb.Borders) {
			b := wb.Borders[id]
			rs.BorderTop = resolveEdge(b.Top)
			rs.BorderRight = resolveEdge(b.Right)
			rs.BorderBottom = resolveEdge(b.Bottom)
			rs.BorderLeft = resolveEdge(b.Left)
		}
	}

	if xf.Alignment != nil && applies(xf.ApplyAlign) {
		rs.HorizontalAlign = xf.Alignment.Horizontal
		rs.VerticalAlign = xf.Alignment.Vertical
		rs.WrapText = xf.Alignment.WrapText
		rs.TextRotation = xf.Alignment.TextRotation
		rs.Indent = xf.Alignment.Indent
	}

	if xf.NumFmtID != nil && applies(xf.ApplyNumFmt) {
		id := *xf.NumFmtID
		rs.NumFmtID = &id
		if code, ok := wb.NumFmts[id]; ok {
			rs.NumberFormat = code
		}
	}

	return &rs
}

// applies implements the tri-state apply flag: absent counts as true,
// explicit false wins.
func applies(flag *bool) bool {
	return flag == nil || *flag
}

func resolveEdge(e *model.BorderEdge) *Edge {
	if e == nil {
		return nil
	}
	return &Edge{Style: e.Style, Color: HexColor(e.Color)}
}

// HexColor normalizes a stylesheet color to "#RRGGBB". 8-digit ARGB
// values lose their alpha byte; 6-digit RGB passes through. Anything
// else, including theme-color indices, defaults to black — theme
// palettes are deliberately not modeled.
func HexColor(c string) string {
	switch len(c) {
	case 8:
		return "#" + c[2:]
	case 6:
		return "#" + c
	}
	return "#000000"
}
