package model

import "strings"

// Spreadsheet bounds, matching the xlsx worksheet grid.
const (
	MaxRow = 1048576
	MaxCol = 16384
)

// Key identifies a cell position inside a sheet. Row occupies the high
// 32 bits so that sorting keys yields row-major order.
type Key uint64

// MakeKey packs a 1-based row and column into a Key.
func MakeKey(row, col int) Key {
	return Key(uint64(row)<<32 | uint64(uint32(col)))
}

// Row returns the 1-based row of the key.
func (k Key) Row() int { return int(k >> 32) }

// Col returns the 1-based column of the key.
func (k Key) Col() int { return int(uint32(k)) }

// ParseCellRef parses an A1-style reference into 1-based row and column.
// It returns (0, 0) for anything that is not a usable reference: bad
// syntax, column letters beyond three characters, or coordinates outside
// the sheet bounds. Callers drop such cells rather than failing.
func ParseCellRef(ref string) (row, col int) {
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		i++
	}
	if i == 0 || i > 3 || i == len(ref) {
		return 0, 0
	}
	for _, c := range ref[:i] {
		col = col*26 + int(c-'A') + 1
	}
	digits := ref[i:]
	if len(digits) > 7 {
		return 0, 0
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, 0
		}
		row = row*10 + int(c-'0')
	}
	if row < 1 || col < 1 || row > MaxRow || col > MaxCol {
		return 0, 0
	}
	return row, col
}

// CellName formats 1-based row and column as an A1-style reference.
func CellName(row, col int) string {
	return ColName(col) + itoa(row)
}

// ColName converts a 1-based column number to its letter form.
// 1→"A", 26→"Z", 27→"AA".
func ColName(col int) string {
	var b [4]byte
	i := len(b)
	for col > 0 {
		col--
		i--
		b[i] = byte('A' + col%26)
		col /= 26
	}
	return string(b[i:])
}

// ColIndex converts column letters to a 1-based column number.
// "A"→1, "Z"→26, "AA"→27. Returns 0 for invalid input.
func ColIndex(name string) int {
	name = strings.ToUpper(name)
	col := 0
	for _, c := range name {
		if c < 'A' || c > 'Z' {
			return 0
		}
		col = col*26 + int(c-'A') + 1
	}
	return col
}

func itoa(n int) string {
	var b [8]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}
