package screen

// DecMode is a bitmask of DEC private mode flags set/reset by
// DECSET/DECRST, matching the subset enumerated in spec §4.2.
type DecMode uint32

const (
	ModeCursorKeys     DecMode = 1 << iota // DECCKM, mode 1
	ModeAutoWrap                           // DECAWM, mode 7
	ModeInsert                             // IRM
	ModeOrigin                              // DECOM, mode 6
	ModeCursorVisible                      // DECTCEM, mode 25
	ModeCursorBlink
	ModeMouseClick      // 1000
	ModeMouseDrag       // 1002
	ModeMouseMotion     // 1003
	ModeFocusReporting  // 1004
	ModeAltScreen       // 1047/1049
	ModeBracketedPaste  // 2004
	ModeSyncUpdate      // 2026, a no-op boundary per spec
	ModeThemeReports    // 997
	ModeSGRMouse        // 1006
	ModeUTF8Mouse       // 1005
)

// Charset selects a G0-G3 character set slot's encoding.
type Charset uint8

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
)

// CharsetSlot identifies one of the four G0-G3 slots.
type CharsetSlot uint8

const (
	G0 CharsetSlot = iota
	G1
	G2
	G3
)

// EraseMode selects the region cleared by ED/EL (spec §4.2: "modes 0/1/2
// and selective-erase variants treated as full-erase").
type EraseMode uint8

const (
	EraseBelow EraseMode = iota
	EraseAbove
	EraseAll
)

// TabClearMode selects which tab stops CSI g clears.
type TabClearMode uint8

const (
	TabClearCurrent TabClearMode = iota
	TabClearAll
)
