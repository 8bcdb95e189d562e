package xlsx

import (
	"strconv"

	"github.com/stukenov/keste/model"
	"github.com/stukenov/keste/sax"
)

// parseStyles fills the workbook style tables from xl/styles.xml. The
// stylesheet is a sequence of sibling tables (numFmts, fonts, fills,
// borders, cellXfs); a small state machine tracks which table is open
// and which entry is being accumulated.
func parseStyles(data []byte, wb *model.Workbook) {
	var (
		inNumFmts, inFonts, inFills, inBorders, inCellXfs bool

		font      *model.Font
		fill      *model.Fill
		border    *model.Border
		xf        *model.CellXf
		alignment *model.Alignment

		edge     *model.BorderEdge
		edgeSide string
	)

	sax.Parse(data, sax.Handlers{
		StartElement: func(name string, attrs map[string]string) {
			switch {
			case name == "numFmts":
				inNumFmts = true
			case name == "numFmt" && inNumFmts:
				id, _ := strconv.Atoi(attrs["numFmtId"])
				wb.NumFmts[id] = attrs["formatCode"]

			case name == "fonts":
				inFonts = true
			case name == "font" && inFonts:
				font = &model.Font{
					ID:    len(wb.Fonts),
					Name:  "Calibri",
					Size:  11,
					Color: "FF000000",
				}
			case font != nil:
				switch name {
				case "name":
					if v := attrs["val"]; v != "" {
						font.Name = v
					}
				case "sz":
					if v, err := strconv.ParseFloat(attrs["val"], 64); err == nil {
						font.Size = v
					}
				case "b":
					font.Bold = true
				case "i":
					font.Italic = true
				case "u":
					font.Underline = true
				case "strike":
					font.Strike = true
				case "color":
					font.Color = colorAttr(attrs, font.Color)
				}

			case name == "fills":
				inFills = true
			case name == "fill" && inFills:
				fill = &model.Fill{ID: len(wb.Fills), Pattern: "none"}
			case fill != nil && name == "patternFill":
				if v := attrs["patternType"]; v != "" {
					fill.Pattern = v
				}
			case fill != nil && name == "fgColor":
				fill.FgColor = colorAttr(attrs, "")
			case fill != nil && name == "bgColor":
				fill.BgColor = colorAttr(attrs, "")

			case name == "borders":
				inBorders = true
			case name == "border" && inBorders:
				border = &model.Border{ID: len(wb.Borders)}
			case border != nil && isBorderSide(name):
				edgeSide = name
				if style := attrs["style"]; style != "" {
					edge = &model.BorderEdge{Style: style}
				} else {
					// A side without a style is no border at all.
					edge = nil
				}
			case edge != nil && name == "color":
				edge.Color = colorAttr(attrs, "")

			case name == "cellXfs":
				inCellXfs = true
			case name == "xf" && inCellXfs:
				xf = &model.CellXf{
					ID:          len(wb.CellXfs),
					NumFmtID:    intAttr(attrs, "numFmtId"),
					FontID:      intAttr(attrs, "fontId"),
					FillID:      intAttr(attrs, "fillId"),
					BorderID:    intAttr(attrs, "borderId"),
					XfID:        intAttr(attrs, "xfId"),
					ApplyFont:   boolAttr(attrs, "applyFont"),
					ApplyFill:   boolAttr(attrs, "applyFill"),
					ApplyBorder: boolAttr(attrs, "applyBorder"),
					ApplyAlign:  boolAttr(attrs, "applyAlignment"),
					ApplyNumFmt: boolAttr(attrs, "applyNumberFormat"),
				}
			case xf != nil && name == "alignment":
				alignment = &model.Alignment{
					Horizontal:   attrs["horizontal"],
					Vertical:     attrs["vertical"],
					WrapText:     attrs["wrapText"] == "1",
					TextRotation: intAttr(attrs, "textRotation"),
					Indent:       intAttr(attrs, "indent"),
					ShrinkToFit:  attrs["shrinkToFit"] == "1",
				}
			}
		},
		EndElement: func(name string) {
			switch {
			case name == "numFmts":
				inNumFmts = false
			case name == "fonts":
				inFonts = false
			case name == "font" && font != nil:
				wb.Fonts = append(wb.Fonts, *font)
				font = nil
			case name == "fills":
				inFills = false
			case name == "fill" && fill != nil:
				wb.Fills = append(wb.Fills, *fill)
				fill = nil
			case name == "borders":
				inBorders = false
			case name == "border" && border != nil:
				wb.Borders = append(wb.Borders, *border)
				border = nil
			case isBorderSide(name) && edgeSide != "":
				if edge != nil && border != nil {
					setBorderSide(border, edgeSide, edge)
				}
				edge = nil
				edgeSide = ""
			case name == "cellXfs":
				inCellXfs = false
			case name == "alignment" && alignment != nil && xf != nil:
				xf.Alignment = alignment
				alignment = nil
			case name == "xf" && xf != nil:
				wb.CellXfs = append(wb.CellXfs, *xf)
				xf = nil
			}
		},
	})
}

func isBorderSide(name string) bool {
	switch name {
	case "left", "right", "top", "bottom", "diagonal":
		return true
	}
	return false
}

func setBorderSide(b *model.Border, side string, e *model.BorderEdge) {
	switch side {
	case "left":
		b.Left = e
	case "right":
		b.Right = e
	case "top":
		b.Top = e
	case "bottom":
		b.Bottom = e
	case "diagonal":
		b.Diagonal = e
	}
}

// colorAttr prefers an explicit rgb value; a theme index is kept as-is
// so the style resolver can fall back on it.
func colorAttr(attrs map[string]string, fallback string) string {
	if rgb := attrs["rgb"]; rgb != "" {
		return rgb
	}
	if theme := attrs["theme"]; theme != "" {
		return theme
	}
	return fallback
}

func intAttr(attrs map[string]string, key string) *int {
	v, ok := attrs[key]
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func boolAttr(attrs map[string]string, key string) *bool {
	v, ok := attrs[key]
	if !ok {
		return nil
	}
	b := v == "1" || v == "true"
	return &b
}
