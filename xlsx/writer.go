package xlsx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stukenov/keste/model"
	"github.com/stukenov/keste/pkzip"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Write renders a workbook to the parts of an xlsx package, in archive
// order. Sheets are written as worksheets/sheet1.xml.. regardless of
// the part names the workbook was imported from.
func Write(wb *model.Workbook) []pkzip.Entry {
	table, sstXML := buildSharedStrings(wb)

	entries := []pkzip.Entry{
		{Path: "[Content_Types].xml", Data: []byte(contentTypesXML(len(wb.Sheets)))},
		{Path: "_rels/.rels", Data: []byte(rootRelsXML())},
		{Path: "xl/workbook.xml", Data: []byte(workbookXML(wb))},
		{Path: "xl/_rels/workbook.xml.rels", Data: []byte(workbookRelsXML(len(wb.Sheets)))},
		{Path: "xl/sharedStrings.xml", Data: []byte(sstXML)},
		{Path: "xl/styles.xml", Data: []byte(stylesXML())},
	}

	for i, sheet := range wb.Sheets {
		entries = append(entries, pkzip.Entry{
			Path: fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1),
			Data: []byte(worksheetXML(sheet, table)),
		})
	}
	return entries
}

// WriteArchive renders the workbook and packs it into a zip archive.
func WriteArchive(wb *model.Workbook) ([]byte, error) {
	data, err := pkzip.Archive(Write(wb))
	if err != nil {
		return nil, fmt.Errorf("xlsx: write archive: %w", err)
	}
	return data, nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string { return xmlEscaper.Replace(s) }

func contentTypesXML(sheetCount int) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` + "\n")
	sb.WriteString(`  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` + "\n")
	sb.WriteString(`  <Default Extension="xml" ContentType="application/xml"/>` + "\n")
	sb.WriteString(`  <Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` + "\n")
	for i := 1; i <= sheetCount; i++ {
		fmt.Fprintf(&sb, `  <Override PartName="/xl/worksheets/sheet%d.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>`+"\n", i)
	}
	sb.WriteString(`  <Override PartName="/xl/sharedStrings.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"/>` + "\n")
	sb.WriteString(`  <Override PartName="/xl/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"/>` + "\n")
	sb.WriteString(`</Types>`)
	return sb.String()
}

func rootRelsXML() string {
	return xmlHeader +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + "\n" +
		`  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>` + "\n" +
		`</Relationships>`
}

func workbookRelsXML(sheetCount int) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + "\n")
	for i := 1; i <= sheetCount; i++ {
		fmt.Fprintf(&sb, `  <Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet%d.xml"/>`+"\n", i, i)
	}
	fmt.Fprintf(&sb, `  <Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings" Target="sharedStrings.xml"/>`+"\n", sheetCount+1)
	fmt.Fprintf(&sb, `  <Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`+"\n", sheetCount+2)
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func workbookXML(wb *model.Workbook) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` + "\n")
	sb.WriteString("  <sheets>\n")
	for i, sheet := range wb.Sheets {
		fmt.Fprintf(&sb, `    <sheet name="%s" sheetId="%d" r:id="rId%d"/>`+"\n", escapeXML(sheet.Name), i+1, i+1)
	}
	sb.WriteString("  </sheets>\n")
	if len(wb.DefinedNames) > 0 {
		sb.WriteString("  <definedNames>\n")
		for _, dn := range wb.DefinedNames {
			sb.WriteString(`    <definedName name="` + escapeXML(dn.Name) + `"`)
			if dn.LocalSheetID != nil {
				fmt.Fprintf(&sb, ` localSheetId="%d"`, *dn.LocalSheetID)
			}
			sb.WriteString(">" + escapeXML(dn.Ref) + "</definedName>\n")
		}
		sb.WriteString("  </definedNames>\n")
	}
	sb.WriteString(`</workbook>`)
	return sb.String()
}

// buildSharedStrings collects unique shared-string cell texts across
// all sheets in first-seen order and renders the sst part.
func buildSharedStrings(wb *model.Workbook) (map[string]int, string) {
	table := make(map[string]int)
	var order []string

	for _, sheet := range wb.Sheets {
		for _, key := range sheet.Keys() {
			c := sheet.Cells[key]
			if c.Type == model.TypeShared && c.Value.Kind == model.ValueText {
				if _, ok := table[c.Value.Text]; !ok {
					table[c.Value.Text] = len(order)
					order = append(order, c.Value.Text)
				}
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(xmlHeader)
	fmt.Fprintf(&sb, `<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="%d" uniqueCount="%d">`+"\n", len(order), len(order))
	for _, s := range order {
		sb.WriteString("  <si><t>" + escapeXML(s) + "</t></si>\n")
	}
	sb.WriteString(`</sst>`)
	return table, sb.String()
}

// stylesXML writes the minimal valid stylesheet. Style preservation on
// export is limited to values and layout; cell formatting beyond the
// defaults is not round-tripped.
func stylesXML() string {
	return xmlHeader +
		`<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">` + "\n" +
		`  <numFmts count="0"/>` + "\n" +
		`  <fonts count="1">` + "\n" +
		`    <font><sz val="11"/><name val="Calibri"/></font>` + "\n" +
		`  </fonts>` + "\n" +
		`  <fills count="2">` + "\n" +
		`    <fill><patternFill patternType="none"/></fill>` + "\n" +
		`    <fill><patternFill patternType="gray125"/></fill>` + "\n" +
		`  </fills>` + "\n" +
		`  <borders count="1">` + "\n" +
		`    <border><left/><right/><top/><bottom/><diagonal/></border>` + "\n" +
		`  </borders>` + "\n" +
		`  <cellStyleXfs count="1">` + "\n" +
		`    <xf numFmtId="0" fontId="0" fillId="0" borderId="0"/>` + "\n" +
		`  </cellStyleXfs>` + "\n" +
		`  <cellXfs count="1">` + "\n" +
		`    <xf numFmtId="0" fontId="0" fillId="0" borderId="0" xfId="0"/>` + "\n" +
		`  </cellXfs>` + "\n" +
		`  <cellStyles count="1">` + "\n" +
		`    <cellStyle name="Normal" xfId="0" builtinId="0"/>` + "\n" +
		`  </cellStyles>` + "\n" +
		`</styleSheet>`
}

func worksheetXML(sheet *model.Sheet, sst map[string]int) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">` + "\n")

	keys := sheet.Keys()
	sb.WriteString(`  <dimension ref="` + dimensionRef(keys) + `"/>` + "\n")
	sb.WriteString(`  <sheetViews><sheetView workbookViewId="0"/></sheetViews>` + "\n")
	sb.WriteString(`  <sheetFormatPr defaultRowHeight="15"/>` + "\n")
	sb.WriteString("  <sheetData>\n")

	// Keys are row-major, so one forward pass groups cells by row.
	i := 0
	for i < len(keys) {
		row := keys[i].Row()
		fmt.Fprintf(&sb, `    <row r="%d">`+"\n", row)
		for i < len(keys) && keys[i].Row() == row {
			writeCell(&sb, sheet.Cells[keys[i]], sst)
			i++
		}
		sb.WriteString("    </row>\n")
	}

	sb.WriteString("  </sheetData>\n")

	if len(sheet.Merged) > 0 {
		fmt.Fprintf(&sb, `  <mergeCells count="%d">`+"\n", len(sheet.Merged))
		for _, m := range sheet.Merged {
			sb.WriteString(`    <mergeCell ref="` + escapeXML(m.Ref) + `"/>` + "\n")
		}
		sb.WriteString("  </mergeCells>\n")
	}

	sb.WriteString(`</worksheet>`)
	return sb.String()
}

func dimensionRef(keys []model.Key) string {
	if len(keys) == 0 {
		return "A1"
	}
	minRow, maxRow := keys[0].Row(), keys[0].Row()
	minCol, maxCol := keys[0].Col(), keys[0].Col()
	for _, k := range keys[1:] {
		if k.Row() < minRow {
			minRow = k.Row()
		}
		if k.Row() > maxRow {
			maxRow = k.Row()
		}
		if k.Col() < minCol {
			minCol = k.Col()
		}
		if k.Col() > maxCol {
			maxCol = k.Col()
		}
	}
	return model.CellName(minRow, minCol) + ":" + model.CellName(maxRow, maxCol)
}

func writeCell(sb *strings.Builder, c *model.Cell, sst map[string]int) {
	ref := model.CellName(c.Row, c.Col)

	switch {
	case c.Formula != "":
		sb.WriteString(`      <c r="` + ref + `">` + "\n")
		sb.WriteString("        <f>" + escapeXML(c.Formula) + "</f>\n")
		if !c.Value.IsEmpty() {
			sb.WriteString("        <v>" + escapeXML(c.Value.String()) + "</v>\n")
		}
		sb.WriteString("      </c>\n")
	case c.Type == model.TypeShared && c.Value.Kind == model.ValueText:
		if idx, ok := sst[c.Value.Text]; ok {
			fmt.Fprintf(sb, `      <c r="%s" t="s"><v>%d</v></c>`+"\n", ref, idx)
		}
	case c.Type == model.TypeNumber || c.Value.Kind == model.ValueNumber:
		sb.WriteString(`      <c r="` + ref + `"><v>` + strconv.FormatFloat(c.Value.Num, 'f', -1, 64) + "</v></c>\n")
	case c.Type == model.TypeBool || c.Value.Kind == model.ValueBool:
		v := "0"
		if c.Value.Bool {
			v = "1"
		}
		fmt.Fprintf(sb, `      <c r="%s" t="b"><v>%s</v></c>`+"\n", ref, v)
	case !c.Value.IsEmpty():
		sb.WriteString(`      <c r="` + ref + `" t="inlineStr"><is><t>` + escapeXML(c.Value.String()) + "</t></is></c>\n")
	}
}
