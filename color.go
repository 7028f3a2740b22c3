package term

import "github.com/vtcore/vt/internal/cellmodel"

// Color is the sum type for a cell's foreground/background color, per
// the data model in SPEC_FULL.md §3: default, palette-indexed, or
// direct RGB. Values are resolved against a [Palette] only at flush
// time (see internal/projection), never at write time, so a palette
// change between writes is reflected in the next rendered output.
type Color = cellmodel.Color

// DefaultColor is the "use the pen's default fg/bg" sentinel.
var DefaultColor = cellmodel.Default

// IndexedColor returns a palette-indexed color, n in [0,255].
func IndexedColor(n uint8) Color { return cellmodel.Indexed(n) }

// RGBColor returns a direct 24-bit color.
func RGBColor(r, g, b uint8) Color { return cellmodel.RGB(r, g, b) }
