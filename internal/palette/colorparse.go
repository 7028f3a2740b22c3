package palette

import (
	"strconv"
	"strings"

	"github.com/vtcore/vt/internal/cellmodel"
)

// ParseColor accepts the two color-string formats the VT wire protocol
// actually uses: "#rrggbb" (host-variable seeding, spec §4.10) and
// "rgb:rr/gg/bb" (xterm's OSC 4/10/11/12 dynamic-color format, each
// component 1-4 hex digits, only the high byte kept).
func ParseColor(s string) (cellmodel.Color, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHash(s[1:])
	case strings.HasPrefix(s, "rgb:"):
		return parseRGBSpec(s[4:])
	default:
		return cellmodel.Color{}, false
	}
}

func parseHash(hex string) (cellmodel.Color, bool) {
	if len(hex) != 6 {
		return cellmodel.Color{}, false
	}
	r, err1 := strconv.ParseUint(hex[0:2], 16, 8)
	g, err2 := strconv.ParseUint(hex[2:4], 16, 8)
	b, err3 := strconv.ParseUint(hex[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return cellmodel.Color{}, false
	}
	return cellmodel.RGB(uint8(r), uint8(g), uint8(b)), true
}

func parseRGBSpec(spec string) (cellmodel.Color, bool) {
	parts := strings.Split(spec, "/")
	if len(parts) != 3 {
		return cellmodel.Color{}, false
	}
	vals := make([]uint8, 3)
	for i, p := range parts {
		if len(p) == 0 || len(p) > 4 {
			return cellmodel.Color{}, false
		}
		n, err := strconv.ParseUint(p, 16, 32)
		if err != nil {
			return cellmodel.Color{}, false
		}
		// Scale an arbitrary-precision component to 8 bits: longer
		// components keep their highest 8 bits, a 1-digit component
		// repeats its nibble ("f" -> 0xff).
		bits := len(p) * 4
		scaled := n
		for bits > 8 {
			scaled >>= 4
			bits -= 4
		}
		for bits < 8 {
			scaled = (scaled << 4) | (scaled & 0xF)
			bits += 4
		}
		vals[i] = uint8(scaled)
	}
	return cellmodel.RGB(vals[0], vals[1], vals[2]), true
}

// FormatRGBSpec renders a color in xterm's "rgb:rr/gg/bb" reply format,
// used when answering an OSC 10/11/12 color query.
func FormatRGBSpec(c cellmodel.Color) string {
	r, g, b, _ := c.AsRGB()
	return "rgb:" + hex2(r) + "/" + hex2(g) + "/" + hex2(b)
}

func hex2(v uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[v>>4], digits[v&0xF]})
}
