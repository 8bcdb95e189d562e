// Package datagrid implements grid-level data management over a sheet:
// multi-column sorting, column filters with a small operator set plus
// user-defined expressions, and find/replace across values and
// formulas. All operations are non-destructive except Replace; sorting
// and filtering return row orders instead of mutating the sheet.
package datagrid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/stukenov/keste/model"
)

// SortOrder is a sort direction.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ColumnSort is one column of a multi-column sort. Lower Priority
// compares first.
type ColumnSort struct {
	Col      int
	Order    SortOrder
	Priority int
}

// Operator identifies a builtin filter comparison.
type Operator string

const (
	Equals      Operator = "equals"
	Contains    Operator = "contains"
	StartsWith  Operator = "startsWith"
	EndsWith    Operator = "endsWith"
	GreaterThan Operator = "greaterThan"
	LessThan    Operator = "lessThan"
	Between     Operator = "between"
)

// FilterCondition is one predicate over a cell. Exactly one of the
// three forms is used: a value set (checkbox filtering), a builtin
// operator, or a compiled expression with `value`, `text`, and
// `number` in scope.
type FilterCondition struct {
	Values   map[string]bool
	Operator Operator
	Value    string
	Value2   string // upper bound for Between
	Expr     string
}

// ColumnFilter binds a condition to a column.
type ColumnFilter struct {
	Col       int
	Condition FilterCondition
}

// occupiedRows returns the distinct occupied row numbers in ascending
// order.
func occupiedRows(sheet *model.Sheet) []int {
	var rows []int
	last := -1
	for _, key := range sheet.Keys() {
		if r := key.Row(); r != last {
			rows = append(rows, r)
			last = r
		}
	}
	return rows
}

// RowOrder returns the sheet's occupied rows reordered by the given
// sorts. Rows with an empty cell in a sort column always order after
// rows with a value, regardless of direction. The sort is stable, so
// equal rows keep their sheet order.
func RowOrder(sheet *model.Sheet, sorts []ColumnSort) []int {
	rows := occupiedRows(sheet)
	if len(sorts) == 0 {
		return rows
	}

	ordered := make([]ColumnSort, len(sorts))
	copy(ordered, sorts)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Priority < ordered[j-1].Priority; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	// Insertion sort keeps the ordering stable.
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && compareRows(sheet, ordered, rows[j], rows[j-1]) < 0; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
	return rows
}

func compareRows(sheet *model.Sheet, sorts []ColumnSort, a, b int) int {
	for _, s := range sorts {
		cmp := compareCells(sheet.Cell(a, s.Col), sheet.Cell(b, s.Col))
		if cmp == 0 {
			continue
		}
		if s.Order == Desc {
			return -cmp
		}
		return cmp
	}
	return 0
}

// compareCells orders two cells: empties last, numbers numerically,
// anything else by case-insensitive text.
func compareCells(a, b *model.Cell) int {
	aEmpty := a == nil || a.Value.IsEmpty()
	bEmpty := b == nil || b.Value.IsEmpty()
	switch {
	case aEmpty && bEmpty:
		return 0
	case aEmpty:
		return 1
	case bEmpty:
		return -1
	}

	if a.Value.Kind == model.ValueNumber && b.Value.Kind == model.ValueNumber {
		switch {
		case a.Value.Num < b.Value.Num:
			return -1
		case a.Value.Num > b.Value.Num:
			return 1
		}
		return 0
	}
	return strings.Compare(strings.ToLower(a.Value.String()), strings.ToLower(b.Value.String()))
}

// VisibleRows returns the occupied rows that pass every filter.
// Expression conditions are compiled once per filter.
func VisibleRows(sheet *model.Sheet, filters []ColumnFilter) ([]int, error) {
	programs := make([]*vm.Program, len(filters))
	for i, f := range filters {
		if f.Condition.Expr == "" {
			continue
		}
		prog, err := expr.Compile(f.Condition.Expr, expr.AsBool(), expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("datagrid: compile filter on column %d: %w", f.Col, err)
		}
		programs[i] = prog
	}

	var visible []int
	for _, row := range occupiedRows(sheet) {
		keep := true
		for i, f := range filters {
			ok, err := matchCondition(sheet.Cell(row, f.Col), f.Condition, programs[i])
			if err != nil {
				return nil, err
			}
			if !ok {
				keep = false
				break
			}
		}
		if keep {
			visible = append(visible, row)
		}
	}
	return visible, nil
}

func matchCondition(c *model.Cell, cond FilterCondition, prog *vm.Program) (bool, error) {
	var text string
	var num float64
	var scalar any
	if c != nil {
		text = c.Value.String()
		num = c.Value.Num
		scalar = c.Value.Scalar()
	}

	if prog != nil {
		out, err := expr.Run(prog, map[string]any{
			"value":  scalar,
			"text":   text,
			"number": num,
		})
		if err != nil {
			return false, fmt.Errorf("datagrid: run filter: %w", err)
		}
		b, _ := out.(bool)
		return b, nil
	}

	if cond.Values != nil {
		return cond.Values[text], nil
	}

	switch cond.Operator {
	case Equals:
		return text == cond.Value, nil
	case Contains:
		return strings.Contains(text, cond.Value), nil
	case StartsWith:
		return strings.HasPrefix(text, cond.Value), nil
	case EndsWith:
		return strings.HasSuffix(text, cond.Value), nil
	case GreaterThan:
		return c != nil && c.Value.Kind == model.ValueNumber && num > parseNum(cond.Value), nil
	case LessThan:
		return c != nil && c.Value.Kind == model.ValueNumber && num < parseNum(cond.Value), nil
	case Between:
		return c != nil && c.Value.Kind == model.ValueNumber &&
			num >= parseNum(cond.Value) && num <= parseNum(cond.Value2), nil
	}
	return true, nil
}

func parseNum(s string) float64 {
	var f float64
	fmt.Sscanf(s, "%g", &f)
	return f
}

// FindOptions controls matching for Find and Replace.
type FindOptions struct {
	MatchCase      bool
	WholeWord      bool
	SearchFormulas bool
	Regex          bool
}

// Match is one find hit.
type Match struct {
	Row   int
	Col   int
	Value string
}

// Find scans the sheet in row-major order for cells matching the
// query. With SearchFormulas set, formula cells match against their
// "="-prefixed source instead of the cached value.
func Find(sheet *model.Sheet, query string, opts FindOptions) ([]Match, error) {
	re, err := buildPattern(query, opts)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, key := range sheet.Keys() {
		c := sheet.Cells[key]
		text := searchText(c, opts)
		if re.MatchString(text) {
			matches = append(matches, Match{Row: c.Row, Col: c.Col, Value: text})
		}
	}
	return matches, nil
}

// Replace rewrites every match through Sheet.SetValue and returns the
// number of cells changed. Formula cells are rewritten only when
// SearchFormulas is set.
func Replace(sheet *model.Sheet, query, replacement string, opts FindOptions) (int, error) {
	re, err := buildPattern(query, opts)
	if err != nil {
		return 0, err
	}
	if !opts.Regex {
		// $ is the only special character in a replacement string.
		replacement = strings.ReplaceAll(replacement, "$", "$$")
	}

	changed := 0
	for _, key := range sheet.Keys() {
		c := sheet.Cells[key]
		if c.Formula != "" && !opts.SearchFormulas {
			continue
		}
		text := searchText(c, opts)
		if !re.MatchString(text) {
			continue
		}
		sheet.SetValue(c.Row, c.Col, re.ReplaceAllString(text, replacement))
		changed++
	}
	return changed, nil
}

func searchText(c *model.Cell, opts FindOptions) string {
	if opts.SearchFormulas && c.Formula != "" {
		return "=" + c.Formula
	}
	return c.Value.String()
}

// buildPattern lowers the option set onto a single compiled regexp.
func buildPattern(query string, opts FindOptions) (*regexp.Regexp, error) {
	pattern := query
	if !opts.Regex {
		pattern = regexp.QuoteMeta(query)
	}
	if opts.WholeWord {
		pattern = `\b` + pattern + `\b`
	}
	if !opts.MatchCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("datagrid: bad search pattern %q: %w", query, err)
	}
	return re, nil
}
