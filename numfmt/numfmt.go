// Package numfmt renders raw cell values through Excel-style number
// format codes: the fixed built-in table (ids 0-49) plus workbook
// custom formats. The interpretation is a deliberate subset of the full
// format-code grammar — common percentage, grouped, scientific, fixed,
// date, and time patterns are exact; anything unrecognized falls back
// to the plain numeric string.
package numfmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/stukenov/keste/model"
)

// builtin is the fixed table for reserved format ids 0-49. These take
// precedence over workbook custom formats for the same id.
var builtin = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	48: "##0.0E+0",
	49: "@",
}

// Code returns the format code for a format id: built-ins first, then
// the workbook's custom map.
func Code(id int, custom map[int]string) (string, bool) {
	if code, ok := builtin[id]; ok {
		return code, true
	}
	code, ok := custom[id]
	return code, ok
}

// Format renders a value under the given format id. Id 0 means
// "General": the plain string form. Values that are not numeric (and do
// not parse as numbers) pass through unchanged, so formatting an
// already-formatted display string is idempotent.
func Format(v model.Value, id int, custom map[int]string) string {
	if id == 0 {
		return v.String()
	}
	code, ok := Code(id, custom)
	if !ok || code == "General" || code == "@" {
		return v.String()
	}

	var num float64
	switch v.Kind {
	case model.ValueNumber:
		num = v.Num
	case model.ValueText:
		n, err := strconv.ParseFloat(v.Text, 64)
		if err != nil {
			return v.String()
		}
		num = n
	default:
		return v.String()
	}

	return Apply(num, code)
}

var bracketSection = regexp.MustCompile(`\[[^\]]+\]`)

// Apply interprets a format code against a numeric value. Color and
// condition sections in brackets are stripped first, except the
// elapsed-hour token "[h]" which is part of time formats.
func Apply(value float64, code string) string {
	format := code
	if !strings.Contains(format, "[h]") {
		format = bracketSection.ReplaceAllString(format, "")
	}

	switch {
	case strings.Contains(format, "%"):
		return formatPercent(value, format)
	case strings.Contains(strings.ToUpper(format), "E+"):
		return strconv.FormatFloat(value, 'E', 2, 64)
	case strings.Contains(format, "#,##0"):
		return formatGrouped(value, format)
	case fixedPattern.MatchString(format):
		return strconv.FormatFloat(value, 'f', decimalsAfterPoint(format), 64)
	case strings.Contains(format, "mm") || strings.Contains(format, "dd") || strings.Contains(format, "yy"):
		return formatDate(serialToTime(value), format)
	case strings.Contains(format, "h:mm") || strings.Contains(format, "[h]"):
		return formatTime(serialToTime(value), value, format)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

var fixedPattern = regexp.MustCompile(`^0+(\.0+)?$`)

func formatPercent(value float64, format string) string {
	return strconv.FormatFloat(value*100, 'f', decimalsAfterPoint(format), 64) + "%"
}

// decimalsAfterPoint counts the '0' placeholders after the decimal
// point, which is the fixed decimal count for the rendered number.
func decimalsAfterPoint(format string) int {
	dot := strings.IndexByte(format, '.')
	if dot < 0 {
		return 0
	}
	return strings.Count(format[dot+1:], "0")
}

// formatGrouped renders thousands-separated numbers; negative values
// wrap in parentheses when the code carries them, otherwise take a
// leading minus.
func formatGrouped(value float64, format string) string {
	decimals := decimalsAfterPoint(format)
	neg := value < 0
	s := groupThousands(strconv.FormatFloat(abs(value), 'f', decimals, 64))

	if neg && (strings.Contains(format, "(") || strings.Contains(format, ")")) {
		return "(" + s + ")"
	}
	if neg {
		return "-" + s
	}
	return s
}

func groupThousands(s string) string {
	intPart := s
	frac := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}

	if len(intPart) <= 3 {
		return intPart + frac
	}

	var sb strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		sb.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(intPart[i : i+3])
	}
	return sb.String() + frac
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func pad2(n int) string { return fmt.Sprintf("%02d", n) }
