package term

import "github.com/vtcore/vt/internal/cellmodel"

// Pen is a bitmask of cell rendering attributes, set by SGR and carried
// forward on the pen into subsequent writes (SPEC_FULL.md §3).
type Pen = cellmodel.Pen

const (
	PenBold    = cellmodel.PenBold
	PenDim     = cellmodel.PenDim
	PenItalic  = cellmodel.PenItalic
	PenReverse = cellmodel.PenReverse
	PenStrike  = cellmodel.PenStrike
	PenHidden  = cellmodel.PenHidden
	PenBlink   = cellmodel.PenBlink
)

// UnderlineStyle is the underline variant a cell carries, independent
// of the other Pen flags.
type UnderlineStyle = cellmodel.UnderlineStyle

const (
	UnderlineNone    = cellmodel.UnderlineNone
	UnderlineSingle  = cellmodel.UnderlineSingle
	UnderlineDouble  = cellmodel.UnderlineDouble
	UnderlineCurly   = cellmodel.UnderlineCurly
	UnderlineDotted  = cellmodel.UnderlineDotted
	UnderlineDashed  = cellmodel.UnderlineDashed
)

// Cell stores the glyph, width, colors, and attributes for one grid
// position. A glyph of 0 means "empty"; a width of 0 means this cell is
// the right half of a wide cell and is never independently writable.
type Cell = cellmodel.Cell

// Blank returns a cell initialized to default state: a single space at
// width 1, default colors, no attributes.
func Blank() Cell { return cellmodel.Blank() }

// Row is a fixed-width vector of cells. Rows living in the scrollback
// ring keep the width they had when they scrolled off the primary
// screen, which may differ from the grid's current width (spec §3).
type Row = cellmodel.Row

// NewRow returns a row of the given width, every cell Blank.
func NewRow(width int) Row { return cellmodel.NewRow(width) }
