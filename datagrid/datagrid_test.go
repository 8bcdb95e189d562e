package datagrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stukenov/keste/model"
)

// table builds a sheet with a header row and three data rows:
//
//	Name    Qty
//	banana  20
//	Apple   10
//	cherry  30
func table() *model.Sheet {
	s := model.NewSheet("s1", "Data", 1)
	s.SetValue(1, 1, "Name")
	s.SetValue(1, 2, "Qty")
	s.SetValue(2, 1, "banana")
	s.SetValue(2, 2, "20")
	s.SetValue(3, 1, "Apple")
	s.SetValue(3, 2, "10")
	s.SetValue(4, 1, "cherry")
	s.SetValue(4, 2, "30")
	return s
}

func TestRowOrder_NoSorts(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4}, RowOrder(table(), nil))
}

func TestRowOrder_TextAscCaseInsensitive(t *testing.T) {
	order := RowOrder(table(), []ColumnSort{{Col: 1, Order: Asc}})
	// "Apple" sorts before "banana" despite the uppercase A.
	assert.Equal(t, []int{3, 2, 4, 1}, order)
}

func TestRowOrder_NumericDesc(t *testing.T) {
	order := RowOrder(table(), []ColumnSort{{Col: 2, Order: Desc}})
	// Text sorts after numbers ascending, so the "Qty" header leads the
	// descending order, then 30, 20, 10.
	assert.Equal(t, []int{1, 4, 2, 3}, order)
}

func TestRowOrder_EmptiesLast(t *testing.T) {
	s := table()
	s.SetValue(5, 2, "5") // row 5 has no name cell
	order := RowOrder(s, []ColumnSort{{Col: 1, Order: Asc}})
	assert.Equal(t, 5, order[len(order)-1])
}

func TestRowOrder_MultiColumnPriority(t *testing.T) {
	s := model.NewSheet("s1", "Data", 1)
	s.SetValue(1, 1, "b")
	s.SetValue(1, 2, "1")
	s.SetValue(2, 1, "a")
	s.SetValue(2, 2, "2")
	s.SetValue(3, 1, "a")
	s.SetValue(3, 2, "1")

	order := RowOrder(s, []ColumnSort{
		{Col: 2, Order: Asc, Priority: 2},
		{Col: 1, Order: Asc, Priority: 1},
	})
	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestVisibleRows_Operators(t *testing.T) {
	s := table()

	rows, err := VisibleRows(s, []ColumnFilter{
		{Col: 1, Condition: FilterCondition{Operator: Contains, Value: "an"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, rows)

	rows, err = VisibleRows(s, []ColumnFilter{
		{Col: 2, Condition: FilterCondition{Operator: GreaterThan, Value: "15"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, rows)

	rows, err = VisibleRows(s, []ColumnFilter{
		{Col: 2, Condition: FilterCondition{Operator: Between, Value: "10", Value2: "20"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, rows)
}

func TestVisibleRows_ValueSet(t *testing.T) {
	rows, err := VisibleRows(table(), []ColumnFilter{
		{Col: 1, Condition: FilterCondition{Values: map[string]bool{"Apple": true, "cherry": true}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, rows)
}

func TestVisibleRows_Expression(t *testing.T) {
	rows, err := VisibleRows(table(), []ColumnFilter{
		{Col: 2, Condition: FilterCondition{Expr: "number >= 20"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, rows)

	rows, err = VisibleRows(table(), []ColumnFilter{
		{Col: 1, Condition: FilterCondition{Expr: `text startsWith "c"`}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{4}, rows)
}

func TestVisibleRows_BadExpression(t *testing.T) {
	_, err := VisibleRows(table(), []ColumnFilter{
		{Col: 1, Condition: FilterCondition{Expr: "not (valid"}},
	})
	require.Error(t, err)
}

func TestVisibleRows_MultipleFiltersConjoin(t *testing.T) {
	rows, err := VisibleRows(table(), []ColumnFilter{
		{Col: 2, Condition: FilterCondition{Operator: GreaterThan, Value: "5"}},
		{Col: 1, Condition: FilterCondition{Operator: EndsWith, Value: "y"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{4}, rows)
}

func TestFind_Basic(t *testing.T) {
	matches, err := Find(table(), "apple", FindOptions{})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 3, matches[0].Row)

	matches, err = Find(table(), "apple", FindOptions{MatchCase: true})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFind_WholeWord(t *testing.T) {
	s := model.NewSheet("s1", "Data", 1)
	s.SetValue(1, 1, "cat")
	s.SetValue(2, 1, "concatenate")

	matches, err := Find(s, "cat", FindOptions{WholeWord: true})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Row)
}

func TestFind_Formulas(t *testing.T) {
	s := model.NewSheet("s1", "Data", 1)
	s.SetValue(1, 1, "=SUM(A2:A9)")

	matches, err := Find(s, "SUM", FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, matches, "formula source is invisible without SearchFormulas")

	matches, err = Find(s, "SUM", FindOptions{SearchFormulas: true})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "=SUM(A2:A9)", matches[0].Value)
}

func TestFind_Regex(t *testing.T) {
	matches, err := Find(table(), "^[ab]", FindOptions{Regex: true})
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	_, err = Find(table(), "[unclosed", FindOptions{Regex: true})
	require.Error(t, err)
}

func TestReplace_Values(t *testing.T) {
	s := table()
	n, err := Replace(s, "banana", "mango", FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "mango", s.Cell(2, 1).Value.Text)
}

func TestReplace_SkipsFormulasByDefault(t *testing.T) {
	s := model.NewSheet("s1", "Data", 1)
	s.SetValue(1, 1, "=SUM(A2:A9)")

	n, err := Replace(s, "SUM", "MAX", FindOptions{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "SUM(A2:A9)", s.Cell(1, 1).Formula)

	n, err = Replace(s, "SUM", "MAX", FindOptions{SearchFormulas: true})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "MAX(A2:A9)", s.Cell(1, 1).Formula)
}

func TestReplace_LiteralDollar(t *testing.T) {
	s := model.NewSheet("s1", "Data", 1)
	s.SetValue(1, 1, "price")

	_, err := Replace(s, "price", "$1 off", FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, "$1 off", s.Cell(1, 1).Value.Text)
}
