package model

// Font is one entry of the stylesheet font table.
type Font struct {
	ID        int
	Name      string
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	Color     string // ARGB "FF000000" or RGB "000000"
}

// Fill is one entry of the stylesheet fill table.
type Fill struct {
	ID      int
	Pattern string // "none", "solid", "gray125", ...
	FgColor string
	BgColor string
}

// BorderEdge is a single border side.
type BorderEdge struct {
	Style string // "thin", "medium", "dashed", ...
	Color string
}

// Border is one entry of the stylesheet border table.
type Border struct {
	ID       int
	Left     *BorderEdge
	Right    *BorderEdge
	Top      *BorderEdge
	Bottom   *BorderEdge
	Diagonal *BorderEdge
}

// Alignment holds cell alignment settings from an xf element.
type Alignment struct {
	Horizontal   string
	Vertical     string
	WrapText     bool
	TextRotation *int
	Indent       *int
	ShrinkToFit  bool
}

// CellXf is one entry of the cellXfs table. The id fields are nil when
// the attribute was absent in the source. The apply flags are tri-state:
// nil means the attribute was absent, which legacy semantics treat the
// same as true; an explicit false suppresses the facet even when the
// corresponding id is present.
type CellXf struct {
	ID          int
	NumFmtID    *int
	FontID      *int
	FillID      *int
	BorderID    *int
	XfID        *int
	ApplyFont   *bool
	ApplyFill   *bool
	ApplyBorder *bool
	ApplyAlign  *bool
	ApplyNumFmt *bool
	Alignment   *Alignment
}

// DefinedName is a workbook-scoped or sheet-scoped named reference.
type DefinedName struct {
	Name         string
	Ref          string
	LocalSheetID *int
}
