// Package formula tokenizes and evaluates spreadsheet formulas against
// a caller-supplied cell lookup. The engine knows nothing about the
// workbook structure; a CellGetter is its only coupling point.
package formula

import (
	"strconv"
	"strings"
)

// CellGetter resolves a 0-based (row, col) position to a cell value:
// nil for empty, otherwise float64, string, or bool. It is called once
// per referenced cell during evaluation and must be O(1).
type CellGetter func(row, col int) any

// Kind discriminates formula tokens.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindCell
	KindRange
	KindFunc
	KindOp
	KindParen
)

// CellRef is a 0-based single-cell reference.
type CellRef struct {
	Row, Col int
}

// RangeRef is a 0-based rectangular reference with inclusive bounds.
type RangeRef struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// Token is one element of a tokenized formula. Function arguments are
// tokenized as nested slices, one per comma-separated argument group.
type Token struct {
	Kind  Kind
	Num   float64
	Str   string
	Bool  bool
	Op    byte
	Cell  CellRef
	Range RangeRef
	Name  string
	Args  [][]Token
}

// Tokenize scans formula text (with or without a leading "=") into a
// flat token stream. Function calls are handled with an explicit
// matching-paren scan: the argument substrings are located first, then
// each is tokenized as a whole, so nested calls and nested ranges
// inside arguments come out intact. Unrecognized characters and names
// are skipped.
func Tokenize(formula string) []Token {
	expr := strings.TrimPrefix(formula, "=")
	var tokens []Token

	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c >= '0' && c <= '9', c == '.' && i+1 < len(expr) && isDigit(expr[i+1]):
			j := i
			for j < len(expr) && (isDigit(expr[j]) || expr[j] == '.') {
				j++
			}
			num, _ := strconv.ParseFloat(expr[i:j], 64)
			tokens = append(tokens, Token{Kind: KindNumber, Num: num})
			i = j

		case c == '"':
			j := i + 1
			for j < len(expr) && expr[j] != '"' {
				j++
			}
			tokens = append(tokens, Token{Kind: KindString, Str: expr[i+1 : j]})
			i = j + 1

		case c >= 'A' && c <= 'Z':
			j := i
			for j < len(expr) && (expr[j] >= 'A' && expr[j] <= 'Z' || isDigit(expr[j]) || expr[j] == ':') {
				j++
			}
			name := expr[i:j]

			if j < len(expr) && expr[j] == '(' {
				args, end := scanArgs(expr, j)
				tokens = append(tokens, Token{Kind: KindFunc, Name: name, Args: args})
				i = end
				continue
			}

			if tok, ok := classifyName(name); ok {
				tokens = append(tokens, tok)
			}
			i = j

		case strings.IndexByte("+-*/^&", c) >= 0:
			tokens = append(tokens, Token{Kind: KindOp, Op: c})
			i++

		case c == '(' || c == ')':
			tokens = append(tokens, Token{Kind: KindParen, Op: c})
			i++

		default:
			i++
		}
	}

	return tokens
}

// scanArgs consumes a parenthesized argument list starting at the "("
// at position open. It tracks paren depth and quoted strings, splits at
// depth-1 commas, and tokenizes each argument substring. It returns the
// argument groups and the position just past the closing paren.
func scanArgs(expr string, open int) ([][]Token, int) {
	depth := 1
	inString := false
	start := open + 1
	var parts []string

	i := start
	for ; i < len(expr) && depth > 0; i++ {
		c := expr[i]
		switch {
		case c == '"':
			inString = !inString
		case inString:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				parts = append(parts, expr[start:i])
			}
		case c == ',' && depth == 1:
			parts = append(parts, expr[start:i])
			start = i + 1
		}
	}
	if depth > 0 {
		// Unterminated call: treat the rest as one argument.
		parts = append(parts, expr[start:])
	}

	args := make([][]Token, 0, len(parts))
	for _, p := range parts {
		args = append(args, Tokenize(p))
	}
	return args, i
}

// classifyName resolves an uppercase run into a range, cell reference,
// or boolean literal. Anything else is dropped.
func classifyName(name string) (Token, bool) {
	if strings.ContainsRune(name, ':') {
		if r, ok := parseRangeRef(name); ok {
			return Token{Kind: KindRange, Range: r}, true
		}
		return Token{}, false
	}
	if ref, ok := parseCellRef(name); ok {
		return Token{Kind: KindCell, Cell: ref}, true
	}
	switch name {
	case "TRUE":
		return Token{Kind: KindBool, Bool: true}, true
	case "FALSE":
		return Token{Kind: KindBool, Bool: false}, true
	}
	return Token{}, false
}

// parseCellRef parses "A1" into a 0-based reference.
func parseCellRef(s string) (CellRef, bool) {
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return CellRef{}, false
	}
	col := 0
	for _, c := range s[:i] {
		col = col*26 + int(c-'A') + 1
	}
	row := 0
	for _, c := range s[i:] {
		if c < '0' || c > '9' {
			return CellRef{}, false
		}
		row = row*10 + int(c-'0')
	}
	if row < 1 {
		return CellRef{}, false
	}
	return CellRef{Row: row - 1, Col: col - 1}, true
}

// parseRangeRef parses "A1:B10" into a 0-based range.
func parseRangeRef(s string) (RangeRef, bool) {
	colon := strings.IndexByte(s, ':')
	first, ok1 := parseCellRef(s[:colon])
	second, ok2 := parseCellRef(s[colon+1:])
	if !ok1 || !ok2 {
		return RangeRef{}, false
	}
	return RangeRef{
		StartRow: first.Row, StartCol: first.Col,
		EndRow: second.Row, EndCol: second.Col,
	}, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
