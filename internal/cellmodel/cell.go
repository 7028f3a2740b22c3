// Package cellmodel defines the Cell/Row/Color data model shared by
// internal/screen and internal/scrollback (spec §3). It is kept as its
// own leaf package, rather than living in the root package, so that
// internal/screen and internal/scrollback can both depend on it without
// either depending on the root package (which in turn depends on them).
package cellmodel

// Pen is a bitmask of cell rendering attributes, set by SGR and carried
// forward on the pen into subsequent writes.
type Pen uint16

const (
	PenBold Pen = 1 << iota
	PenDim
	PenItalic
	PenReverse
	PenStrike
	PenHidden
	PenBlink
)

// UnderlineStyle is the underline variant a cell carries, independent
// of the other Pen flags ("underline-variant ∈ {off, single, double,
// curly}" — dotted/dashed are the xterm SGR 4:4/4:5 extensions, carried
// the same way).
type UnderlineStyle uint8

const (
	UnderlineNone UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineCurly
	UnderlineDotted
	UnderlineDashed
)

// ColorKind distinguishes the Color sum type's variants.
type ColorKind uint8

const (
	ColorDefault ColorKind = iota
	ColorIndexed
	ColorRGB
)

// Color is default | indexed(N) | rgb(r,g,b), resolved against a
// palette only at flush time, never at write time.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// Default is the "use the pen's default fg/bg" sentinel.
var Default = Color{Kind: ColorDefault}

// Indexed returns a palette-indexed color, n in [0,255].
func Indexed(n uint8) Color { return Color{Kind: ColorIndexed, Index: n} }

// RGB returns a direct 24-bit color.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// IsDefault reports whether this is the default-color sentinel.
func (c Color) IsDefault() bool { return c.Kind == ColorDefault }

// AsIndexed returns the palette index and true if this is an indexed color.
func (c Color) AsIndexed() (uint8, bool) { return c.Index, c.Kind == ColorIndexed }

// AsRGB returns the direct color components and true if this is an RGB color.
func (c Color) AsRGB() (r, g, b uint8, ok bool) { return c.R, c.G, c.B, c.Kind == ColorRGB }

// Cell stores the glyph, width, colors, and attributes for one grid
// position. A glyph of 0 means "empty"; a width of 0 means this cell is
// the right half of a wide cell and is never independently writable.
type Cell struct {
	Glyph rune
	Width uint8

	Fg             Color
	Bg             Color
	UnderlineColor Color

	Pen       Pen
	Underline UnderlineStyle

	// URIAttr is an opaque key the host resolves to a URL string
	// (OSC 8). 0 means "no hyperlink".
	URIAttr uint32

	dirty bool
}

// Blank returns a cell initialized to default state: a single space at
// width 1, default colors, no attributes.
func Blank() Cell {
	return Cell{Glyph: ' ', Width: 1, Fg: Default, Bg: Default}
}

// Reset clears the cell back to Blank and marks it dirty.
func (c *Cell) Reset() {
	*c = Blank()
	c.dirty = true
}

// HasPen reports whether the given Pen bit is set.
func (c *Cell) HasPen(p Pen) bool { return c.Pen&p != 0 }

// IsWide reports whether this cell is the left half of a double-width
// glyph (width 2).
func (c *Cell) IsWide() bool { return c.Width == 2 }

// IsWideTail reports whether this cell is the unwritable right half of
// a double-width glyph (width 0, glyph 0).
func (c *Cell) IsWideTail() bool { return c.Width == 0 }

// MarkDirty flags the cell as changed since the last ClearDirty.
func (c *Cell) MarkDirty() { c.dirty = true }

// ClearDirty resets the dirty flag.
func (c *Cell) ClearDirty() { c.dirty = false }

// IsDirty reports whether the cell changed since the last ClearDirty.
func (c *Cell) IsDirty() bool { return c.dirty }

// Row is a fixed-width vector of cells. Rows living in the scrollback
// ring keep the width they had when they scrolled off the primary
// screen, which may differ from the grid's current width.
type Row []Cell

// NewRow returns a row of the given width, every cell Blank.
func NewRow(width int) Row {
	r := make(Row, width)
	for i := range r {
		r[i] = Blank()
	}
	return r
}

// Text renders the row as a string, trimming trailing blanks and
// skipping the unwritable half of wide cells.
func (r Row) Text() string {
	last := -1
	for i := len(r) - 1; i >= 0; i-- {
		if r[i].Glyph != ' ' && r[i].Glyph != 0 {
			last = i
			break
		}
	}
	if last < 0 {
		return ""
	}
	runes := make([]rune, 0, last+1)
	for i := 0; i <= last; i++ {
		if r[i].IsWideTail() {
			continue
		}
		if r[i].Glyph == 0 {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, r[i].Glyph)
		}
	}
	return string(runes)
}

// Clone returns a copy of the row with its own backing array.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}
