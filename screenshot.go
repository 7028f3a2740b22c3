package term

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/vtcore/vt/internal/cellmodel"
)

// ScreenshotConfig controls how Screenshot rasterizes the active grid.
// Unlike the glyph-accurate renderer this is adapted from, cells are
// drawn as flat colored blocks rather than shaped text (the VT model
// already answers "what character occupies this cell" through
// BufferSink; Screenshot exists for a quick visual diff of color and
// cursor state, not for producing a readable image).
type ScreenshotConfig struct {
	// CellWidth and CellHeight are the pixel size of one grid cell.
	// Defaults to 8x16 if zero.
	CellWidth, CellHeight int

	// Palette resolves indexed colors. Defaults to the terminal's own
	// live palette.
	Palette screenshotPalette

	// DefaultFG and DefaultBG fill cells carrying the default color.
	DefaultFG, DefaultBG color.RGBA

	// ShowCursor draws an inverted block at the cursor position.
	ShowCursor bool
}

// screenshotPalette is a narrow read-only view so ScreenshotConfig
// doesn't need to import internal/palette directly in its public
// field type.
type screenshotPalette interface {
	Color(i uint8) cellmodel.Color
}

var (
	defaultScreenshotFG = color.RGBA{R: 0xd8, G: 0xd8, B: 0xd8, A: 0xff}
	defaultScreenshotBG = color.RGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}
)

// Screenshot renders the active grid to an RGBA image using default
// settings (8x16 cells, the terminal's own palette).
func (t *Terminal) Screenshot() *image.RGBA {
	return t.ScreenshotWithConfig(ScreenshotConfig{})
}

// ScreenshotWithConfig renders the active grid to an RGBA image. Each
// cell is painted as a single block the size of cfg.CellWidth x
// cfg.CellHeight using draw.Draw to composite a uniform source over
// the destination rectangle, the same compositing primitive the image
// ecosystem uses for anything larger than a single pixel Set call.
func (t *Terminal) ScreenshotWithConfig(cfg ScreenshotConfig) *image.RGBA {
	cellWidth, cellHeight := cfg.CellWidth, cfg.CellHeight
	if cellWidth == 0 {
		cellWidth = 8
	}
	if cellHeight == 0 {
		cellHeight = 16
	}

	var pal screenshotPalette = cfg.Palette
	if pal == nil {
		pal = t.palette
	}

	defaultFG := cfg.DefaultFG
	if (defaultFG == color.RGBA{}) {
		defaultFG = defaultScreenshotFG
	}
	defaultBG := cfg.DefaultBG
	if (defaultBG == color.RGBA{}) {
		defaultBG = defaultScreenshotBG
	}

	img := image.NewRGBA(image.Rect(0, 0, t.cols*cellWidth, t.rows*cellHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: defaultBG}, image.Point{}, draw.Src)

	for row := 0; row < t.rows; row++ {
		line := t.screen.Line(row, t.cols)
		for col, cell := range line {
			if cell.Glyph == 0 || cell.IsWideTail() {
				continue
			}
			fg := resolveScreenshotColor(cell.Fg, pal, defaultFG)
			bg := resolveScreenshotColor(cell.Bg, pal, defaultBG)
			if cell.HasPen(cellmodel.PenReverse) {
				fg, bg = bg, fg
			}
			if cell.HasPen(cellmodel.PenDim) {
				fg = dim(fg)
			}

			width := int(cell.Width)
			if width < 1 {
				width = 1
			}
			rect := image.Rect(col*cellWidth, row*cellHeight, (col+width)*cellWidth, (row+1)*cellHeight)
			draw.Draw(img, rect, &image.Uniform{C: bg}, image.Point{}, draw.Src)

			if cell.Glyph != ' ' {
				glyphRect := image.Rect(rect.Min.X+1, rect.Min.Y+1, rect.Max.X-1, rect.Max.Y-1)
				draw.Draw(img, glyphRect, &image.Uniform{C: fg}, image.Point{}, draw.Src)
			}

			if underlineY := rect.Max.Y - 2; cell.Underline != cellmodel.UnderlineNone && underlineY >= rect.Min.Y {
				underlineColor := fg
				if !cell.UnderlineColor.IsDefault() {
					underlineColor = resolveScreenshotColor(cell.UnderlineColor, pal, fg)
				}
				underlineRect := image.Rect(rect.Min.X, underlineY, rect.Max.X, underlineY+1)
				draw.Draw(img, underlineRect, &image.Uniform{C: underlineColor}, image.Point{}, draw.Src)
			}
		}
	}

	if cfg.ShowCursor && t.screen.CursorVisible() {
		cx, cy := t.screen.CursorCol(), t.screen.CursorRow()
		rect := image.Rect(cx*cellWidth, cy*cellHeight, (cx+1)*cellWidth, (cy+1)*cellHeight)
		draw.Draw(img, rect, &invertedSrc{dst: img}, rect.Min, draw.Src)
	}

	return img
}

// invertedSrc is a draw.Image source that reads back the destination
// it's being composited over and inverts each pixel, giving the
// cursor block an inverse-video look without a second palette lookup.
type invertedSrc struct{ dst *image.RGBA }

func (s *invertedSrc) ColorModel() color.Model { return color.RGBAModel }
func (s *invertedSrc) Bounds() image.Rectangle { return s.dst.Bounds() }
func (s *invertedSrc) At(x, y int) color.Color {
	c := s.dst.RGBAAt(x, y)
	return color.RGBA{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: 255}
}

func resolveScreenshotColor(c cellmodel.Color, pal screenshotPalette, fallback color.RGBA) color.RGBA {
	if c.IsDefault() {
		return fallback
	}
	if idx, ok := c.AsIndexed(); ok {
		if pal != nil {
			r, g, b, ok := pal.Color(idx).AsRGB()
			if ok {
				return color.RGBA{R: r, G: g, B: b, A: 255}
			}
		}
		return fallback
	}
	if r, g, b, ok := c.AsRGB(); ok {
		return color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return fallback
}

func dim(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * 0.66),
		G: uint8(float64(c.G) * 0.66),
		B: uint8(float64(c.B) * 0.66),
		A: c.A,
	}
}
