package numfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stukenov/keste/model"
)

func TestApply_Grouped(t *testing.T) {
	assert.Equal(t, "1,234.50", Apply(1234.5, "#,##0.00"))
	assert.Equal(t, "1,234", Apply(1234.5, "#,##0"))
	assert.Equal(t, "1,234,568", Apply(1234567.89, "#,##0"))
	assert.Equal(t, "123", Apply(123, "#,##0"))
}

func TestApply_GroupedNegative(t *testing.T) {
	assert.Equal(t, "-1,234", Apply(-1234, "#,##0"))
	assert.Equal(t, "(1,234.50)", Apply(-1234.5, "#,##0.00;(#,##0.00)"))
	// The red section is a bracket color tag; it strips before rendering.
	assert.Equal(t, "(1,234)", Apply(-1234, "#,##0 ;[Red](#,##0)"))
}

func TestApply_Percent(t *testing.T) {
	assert.Equal(t, "50%", Apply(0.5, "0%"))
	assert.Equal(t, "45.67%", Apply(0.4567, "0.00%"))
}

func TestApply_Scientific(t *testing.T) {
	assert.Equal(t, "1.23E+04", Apply(12345, "0.00E+00"))
}

func TestApply_FixedDecimals(t *testing.T) {
	assert.Equal(t, "5", Apply(5, "0"))
	assert.Equal(t, "3.14", Apply(3.14159, "0.00"))
	assert.Equal(t, "5.0", Apply(5, "0.0"))
}

func TestApply_UnrecognizedFallsBack(t *testing.T) {
	assert.Equal(t, "42.5", Apply(42.5, "0 pts"))
	assert.Equal(t, "7", Apply(7, "???"))
}

func TestApply_Date(t *testing.T) {
	// Serial 1 is 1900-01-01; serials at or before the phantom leap day
	// shift forward one day against the 1899-12-30 anchor.
	assert.Equal(t, "1900-01-01", Apply(1, "yyyy-mm-dd"))
	assert.Equal(t, "01-01-00", Apply(1, "mm-dd-yy"))
	assert.Equal(t, "1-Jan-00", Apply(1, "d-mmm-yy"))
	assert.Equal(t, "1900-02-28", Apply(59, "yyyy-mm-dd"))
	assert.Equal(t, "1900-03-01", Apply(61, "yyyy-mm-dd"))
	assert.Equal(t, "2023-03-15", Apply(45000, "yyyy-mm-dd"))
}

func TestApply_DateWithClock(t *testing.T) {
	// Half a day past a serial is noon; the clock part must not be
	// eaten by the month token.
	assert.Equal(t, "1/2/00 12:00", Apply(2.5, "m/d/yy h:mm"))
	assert.Equal(t, "12:00", Apply(0.5, "h:mm"))
}

func TestApply_ElapsedHours(t *testing.T) {
	assert.Equal(t, "36 hrs", Apply(1.5, "[h] hrs"))
}

func TestCode_BuiltinsWinOverCustom(t *testing.T) {
	code, ok := Code(4, map[int]string{4: "0"})
	require.True(t, ok)
	assert.Equal(t, "#,##0.00", code)

	code, ok = Code(164, map[int]string{164: "0.00%"})
	require.True(t, ok)
	assert.Equal(t, "0.00%", code)

	_, ok = Code(200, nil)
	assert.False(t, ok)
}

func TestFormat_GeneralAndText(t *testing.T) {
	assert.Equal(t, "42", Format(model.Number(42), 0, nil))
	assert.Equal(t, "hello", Format(model.Text("hello"), 4, nil))
	assert.Equal(t, "yes", Format(model.Text("yes"), 49, nil), "@ passes text through")
}

func TestFormat_NumericText(t *testing.T) {
	// Text that parses as a number still formats.
	assert.Equal(t, "1,234.50", Format(model.Text("1234.5"), 4, nil))
}

func TestFormat_Idempotent(t *testing.T) {
	// Formatting an already-formatted string must not change it: the
	// grouped form no longer parses as a number.
	once := Format(model.Number(1234.5), 4, nil)
	again := Format(model.Text(once), 4, nil)
	assert.Equal(t, once, again)
}

func TestFormat_CustomCode(t *testing.T) {
	custom := map[int]string{164: "0.00%"}
	assert.Equal(t, "12.50%", Format(model.Number(0.125), 164, custom))
}

func TestFormat_MissingCodeFallsBack(t *testing.T) {
	assert.Equal(t, "3.5", Format(model.Number(3.5), 999, nil))
}
