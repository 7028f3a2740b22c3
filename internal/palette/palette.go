// Package palette implements 16-slot palette seeding and theme-polarity
// notification (spec §4.10).
package palette

import "github.com/vtcore/vt/internal/cellmodel"

// VariableLookup resolves a host-scoped string variable, buffer-local
// first then global, the way the teacher's title/variable providers do.
// It stays a single function rather than a full host interface because
// palette seeding only ever needs strings.
type VariableLookup func(name string) (string, bool)

// Palette holds the 16 ANSI colors plus which slots the host overrode.
// Slot 0..15 map to the classic black/red/green/.../white and their
// bright variants.
type Palette struct {
	colors    [16]cellmodel.Color
	overrides [16]bool
}

// Default16 are the built-in RGB values for ANSI slots 0..15, used for
// every slot the host does not override.
var Default16 = [16][3]uint8{
	{0, 0, 0}, {205, 49, 49}, {13, 188, 121}, {229, 229, 16},
	{36, 114, 200}, {188, 63, 188}, {17, 168, 205}, {229, 229, 229},
	{102, 102, 102}, {241, 76, 76}, {35, 209, 139}, {245, 245, 67},
	{59, 142, 234}, {214, 112, 214}, {41, 184, 219}, {255, 255, 255},
}

// New builds a palette from the built-in defaults, then seeds
// overrides from lookup("terminal_color_0".."terminal_color_15"),
// exactly per spec §4.10.
func New(lookup VariableLookup) *Palette {
	p := &Palette{}
	p.Reseed(lookup)
	return p
}

// Reseed resets every slot to the built-in default and re-applies
// lookup's overrides in place, preserving the Palette's identity so
// collaborators holding a pointer to it (the projection's
// PaletteQuery) observe the new colors without re-wiring (spec §4.10:
// a host reloading its theme file re-seeds the live palette).
func (p *Palette) Reseed(lookup VariableLookup) {
	for i, rgb := range Default16 {
		p.colors[i] = cellmodel.RGB(rgb[0], rgb[1], rgb[2])
		p.overrides[i] = false
	}
	if lookup == nil {
		return
	}
	for i := 0; i < 16; i++ {
		name := "terminal_color_" + itoa(i)
		val, ok := lookup(name)
		if !ok {
			continue
		}
		c, ok := ParseColor(val)
		if !ok {
			continue
		}
		p.colors[i] = c
		p.overrides[i] = true
	}
}

// Color returns the current RGB value of palette slot i (0..255: slots
// 16..255 are the standard 6x6x6 cube + grayscale ramp, computed rather
// than stored since they're never overridden by terminal_color_N).
func (p *Palette) Color(i uint8) cellmodel.Color {
	if i < 16 {
		return p.colors[i]
	}
	return xtermCubeColor(i)
}

// Overridden reports whether slot i (0..15) was set from a host
// variable rather than left at the built-in default. Slots 16..255
// are never overridden (spec §4.4 attribute translation only
// distinguishes "indexed, unset" vs "indexed, host-overridden" for the
// low 16).
func (p *Palette) Overridden(i uint8) bool {
	return i < 16 && p.overrides[i]
}

// Set overrides a low palette slot directly (OSC 4).
func (p *Palette) Set(i uint8, c cellmodel.Color) {
	if i < 16 {
		p.colors[i] = c
		p.overrides[i] = true
	}
}

// Reset restores a low palette slot to its built-in default (OSC 104).
func (p *Palette) Reset(i uint8) {
	if i >= 16 {
		return
	}
	rgb := Default16[i]
	p.colors[i] = cellmodel.RGB(rgb[0], rgb[1], rgb[2])
	p.overrides[i] = false
}

// ResetAll restores every low slot to default (OSC 104 with no args).
func (p *Palette) ResetAll() {
	for i := 0; i < 16; i++ {
		p.Reset(uint8(i))
	}
}

func xtermCubeColor(i uint8) cellmodel.Color {
	if i < 232 {
		n := int(i) - 16
		levels := [6]uint8{0, 95, 135, 175, 215, 255}
		r := levels[n/36]
		g := levels[(n/6)%6]
		b := levels[n%6]
		return cellmodel.RGB(r, g, b)
	}
	gray := uint8(8 + (int(i)-232)*10)
	return cellmodel.RGB(gray, gray, gray)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// ThemePolarity is the background polarity reported via DECSET 997
// subscriptions (spec §4.10): dark maps to "1", light to "2" in the
// `\x1b[997;Mn` notification the host writes back to the PTY.
type ThemePolarity uint8

const (
	ThemeDark ThemePolarity = 1
	ThemeLight ThemePolarity = 2
)

// Notification formats the DECSET-997 theme-change report.
func (t ThemePolarity) Notification() string {
	return "\x1b[997;" + itoa(int(t)) + "n"
}
