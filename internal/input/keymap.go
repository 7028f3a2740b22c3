package input

// CursorKeyMode selects between normal and application cursor-key
// encoding (DECCKM, spec §4.2 DEC mode 1): arrow keys encode as
// CSI A-D normally, SS3 A-D in application mode.
type CursorKeyMode bool

const (
	CursorKeysNormal      CursorKeyMode = false
	CursorKeysApplication CursorKeyMode = true
)

// FilterMask controls which control-character classes are stripped
// from pasted content when bracketed paste is off (spec §4.7).
type FilterMask uint16

const (
	FilterC0 FilterMask = 1 << iota
	FilterC1
	FilterBS
	FilterHT
	FilterFF
	FilterESC
	FilterDEL
)

// Encode renders a key event as the bytes to send to the PTY, or nil
// if the key has no VT encoding (e.g. a bare modifier press). Letter
// keys with Shift+Ctrl held send Ctrl+letter with shift stripped, per
// spec §4.7. Alt adds an ESC prefix to plain rune keys only: named keys
// and Ctrl+letter ignore Alt, and no xterm modifier parameter
// (CSI 1;Mod) is encoded for any modifier.
func Encode(k Key, cursorKeys CursorKeyMode) []byte {
	if k.Named != KeyNone {
		return encodeNamed(k, cursorKeys)
	}
	return encodeRune(k)
}

func encodeRune(k Key) []byte {
	r := k.Rune
	if k.Ctrl && r >= 'a' && r <= 'z' {
		return []byte{byte(r - 'a' + 1)}
	}
	if k.Ctrl && k.Shift && r >= 'A' && r <= 'Z' {
		// Shift+Ctrl+letter: Ctrl+letter lowercased, shift stripped.
		return []byte{byte(r-'A'+1) + 'a' - 'a'}
	}
	if k.Ctrl && r >= 'A' && r <= 'Z' {
		return []byte{byte(r - 'A' + 1)}
	}
	buf := []byte(string(r))
	if k.Alt {
		return append([]byte{0x1b}, buf...)
	}
	return buf
}

func encodeNamed(k Key, cursorKeys CursorKeyMode) []byte {
	intro := []byte("\x1b[")
	if cursorKeys == CursorKeysApplication {
		switch k.Named {
		case KeyUp, KeyDown, KeyRight, KeyLeft:
			intro = []byte("\x1bO")
		}
	}
	switch k.Named {
	case KeyUp:
		return append(intro, 'A')
	case KeyDown:
		return append(intro, 'B')
	case KeyRight:
		return append(intro, 'C')
	case KeyLeft:
		return append(intro, 'D')
	case KeyHome:
		return []byte("\x1b[H")
	case KeyEnd:
		return []byte("\x1b[F")
	case KeyPageUp:
		return []byte("\x1b[5~")
	case KeyPageDown:
		return []byte("\x1b[6~")
	case KeyInsert:
		return []byte("\x1b[2~")
	case KeyDelete:
		return []byte("\x1b[3~")
	case KeyF1:
		return []byte("\x1bOP")
	default:
		return nil
	}
}

// WrapPaste brackets data in start/end markers when bracketed-paste
// mode is on, otherwise filters it per mask and returns it raw.
func WrapPaste(data []byte, bracketed bool, mask FilterMask) []byte {
	if bracketed {
		out := make([]byte, 0, len(data)+12)
		out = append(out, "\x1b[200~"...)
		out = append(out, data...)
		out = append(out, "\x1b[201~"...)
		return out
	}
	return filterPaste(data, mask)
}

func filterPaste(data []byte, mask FilterMask) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		if dropByte(b, mask) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func dropByte(b byte, mask FilterMask) bool {
	switch {
	case b == 0x08:
		return mask&FilterBS != 0
	case b == 0x09:
		return mask&FilterHT != 0
	case b == 0x0c:
		return mask&FilterFF != 0
	case b == 0x1b:
		return mask&FilterESC != 0
	case b == 0x7f:
		return mask&FilterDEL != 0
	case b < 0x20:
		return mask&FilterC0 != 0
	case b >= 0x80 && b < 0xa0:
		return mask&FilterC1 != 0
	default:
		return false
	}
}
