// Package parser implements the Parser component (spec §4.1) by
// wrapping github.com/danielgatis/go-ansicode's incremental decoder,
// the way the teacher wires `ansicode.NewDecoder(t)` against its own
// Terminal. Handler satisfies ansicode.Handler and fans every callback
// out to internal/screen, internal/palette, internal/clipboard, and
// internal/request — the VT command table lives in internal/screen;
// this package's job is purely translating go-ansicode's vocabulary
// into calls against it.
//
// go-ansicode assembles OSC/DCS/APC/PM payloads internally before
// invoking Handler, so Handler never sees a raw StringFragment; the
// parser's "bounded fragment buffer, no fragment larger than the
// chunk that carried it" contract from spec §4.1 is satisfied inside
// go-ansicode itself rather than reimplemented here (see DESIGN.md).
package parser

import (
	"image/color"
	"strconv"

	"github.com/danielgatis/go-ansicode"

	"github.com/vtcore/vt/internal/cellmodel"
	"github.com/vtcore/vt/internal/clipboard"
	"github.com/vtcore/vt/internal/palette"
	"github.com/vtcore/vt/internal/request"
	"github.com/vtcore/vt/internal/screen"
)

var _ ansicode.Handler = (*Handler)(nil)

// TitleSink receives assembled OSC 0/2 title text and OSC 7 working
// directory URIs.
type TitleSink interface {
	SetTitle(title string)
	SetWorkingDirectory(uri string)
}

// Handler adapts go-ansicode callbacks onto the core's internal state.
type Handler struct {
	screen     *screen.Screen
	palette    *palette.Palette
	clipQueue  *clipboard.Queue
	req        *request.Channel
	title      TitleSink
	widthFn    screen.WidthFunc
	onRequest  func(request.Payload)

	titleStack []string
	hyperlinks *Hyperlinks

	themeSubscribed bool
}

// NewHandler wires a Handler to its collaborators. widthFn classifies
// a rune's display width (0/1/2); a nil widthFn treats every rune as
// width 1. onRequest is delivered a fully-assembled APC/PM/SOS payload
// from inside the request channel's pending-queue window, so it may
// itself call req.Send before returning (spec §4.7); a nil onRequest
// drops those payloads.
func NewHandler(s *screen.Screen, pal *palette.Palette, clipQueue *clipboard.Queue, req *request.Channel, title TitleSink, widthFn screen.WidthFunc, onRequest func(request.Payload), hyperlinks *Hyperlinks) *Handler {
	return &Handler{screen: s, palette: pal, clipQueue: clipQueue, req: req, title: title, widthFn: widthFn, onRequest: onRequest, hyperlinks: hyperlinks}
}

func (h *Handler) width(r rune) int {
	if h.widthFn == nil {
		return 1
	}
	return h.widthFn(r)
}

// --- cursor movement -----------------------------------------------------

func (h *Handler) Input(r rune) { h.screen.Input(r, h.width(r)) }

func (h *Handler) Goto(row, col int)  { h.screen.CursorPosition(row, col) }
func (h *Handler) GotoLine(row int)   { h.screen.CursorLine(row - h.screen.CursorRow()) }
func (h *Handler) GotoCol(col int)    { h.screen.CursorColumn(col) }
func (h *Handler) MoveUp(n int)       { h.screen.CursorUp(n) }
func (h *Handler) MoveDown(n int)     { h.screen.CursorDown(n) }
func (h *Handler) MoveForward(n int)  { h.screen.CursorForward(n) }
func (h *Handler) MoveBackward(n int) { h.screen.CursorBackward(n) }
func (h *Handler) MoveUpCr(n int)     { h.screen.CursorUp(n); h.screen.CarriageReturn() }
func (h *Handler) MoveDownCr(n int)   { h.screen.CursorDown(n); h.screen.CarriageReturn() }

func (h *Handler) MoveForwardTabs(n int) {
	for i := 0; i < n; i++ {
		h.screen.Tab()
	}
}
func (h *Handler) MoveBackwardTabs(n int) {
	for i := 0; i < n; i++ {
		h.screen.BackTab()
	}
}

func (h *Handler) LineFeed()         { h.screen.LineFeed() }
func (h *Handler) ReverseIndex()     { h.screen.ReverseIndex() }
func (h *Handler) CarriageReturn()   { h.screen.CarriageReturn() }
func (h *Handler) Backspace()        { h.screen.Backspace() }
func (h *Handler) Bell()             {}
func (h *Handler) Substitute()       { h.screen.Input('?', 1) }

func (h *Handler) HorizontalTabSet()                               { h.screen.SetTabStop() }
func (h *Handler) ClearTabs(mode ansicode.TabulationClearMode) {
	switch mode {
	case ansicode.TabulationClearModeCurrent:
		h.screen.ClearTabStop(screen.TabClearCurrent)
	case ansicode.TabulationClearModeAll:
		h.screen.ClearTabStop(screen.TabClearAll)
	}
}

func (h *Handler) SaveCursorPosition()    { h.screen.SaveCursor() }
func (h *Handler) RestoreCursorPosition() { h.screen.RestoreCursor() }

func (h *Handler) Decaln() { h.screen.AlignmentTest() }

// --- erase / insert / delete ---------------------------------------------

func (h *Handler) ClearLine(mode ansicode.LineClearMode) {
	h.screen.EraseInLine(translateLineClear(mode))
}

func (h *Handler) ClearScreen(mode ansicode.ClearMode) {
	if mode == ansicode.ClearModeSaved {
		return // scrollback-clear is not exposed through this path (spec §4.3 owns trim_to)
	}
	h.screen.EraseInDisplay(translateClear(mode))
}

func translateLineClear(mode ansicode.LineClearMode) screen.EraseMode {
	switch mode {
	case ansicode.LineClearModeLeft:
		return screen.EraseAbove
	case ansicode.LineClearModeAll:
		return screen.EraseAll
	default:
		return screen.EraseBelow
	}
}

func translateClear(mode ansicode.ClearMode) screen.EraseMode {
	switch mode {
	case ansicode.ClearModeAbove:
		return screen.EraseAbove
	case ansicode.ClearModeAll:
		return screen.EraseAll
	default:
		return screen.EraseBelow
	}
}

func (h *Handler) EraseChars(n int)      { h.screen.EraseChars(n) }
func (h *Handler) InsertBlank(n int)      { h.screen.InsertChars(n) }
func (h *Handler) DeleteChars(n int)      { h.screen.DeleteChars(n) }
func (h *Handler) InsertBlankLines(n int) { h.screen.InsertLines(n) }
func (h *Handler) DeleteLines(n int)      { h.screen.DeleteLines(n) }
func (h *Handler) ScrollUp(n int)         { h.screen.ScrollUp(n) }
func (h *Handler) ScrollDown(n int)       { h.screen.ScrollDown(n) }

func (h *Handler) SetScrollingRegion(top, bottom int) { h.screen.SetScrollRegion(top-1, bottom) }

// --- charset ---------------------------------------------------------------

func (h *Handler) ConfigureCharset(index ansicode.CharsetIndex, cs ansicode.Charset) {
	slot := screen.CharsetSlot(index)
	if slot > screen.G3 {
		return
	}
	charset := screen.CharsetASCII
	if cs != 0 { // go-ansicode's zero value is the ASCII/US charset
		charset = screen.CharsetLineDrawing
	}
	h.screen.Designate(slot, charset)
}

func (h *Handler) SetActiveCharset(n int) { h.screen.InvokeGL(screen.CharsetSlot(n)) }

// --- modes -------------------------------------------------------------

func (h *Handler) SetMode(mode ansicode.TerminalMode)   { h.applyMode(mode, true) }
func (h *Handler) UnsetMode(mode ansicode.TerminalMode) { h.applyMode(mode, false) }

func (h *Handler) applyMode(mode ansicode.TerminalMode, on bool) {
	m, ok := translateMode(mode)
	if !ok {
		return
	}
	if on {
		h.screen.SetMode(m)
	} else {
		h.screen.ResetMode(m)
	}
}

func translateMode(mode ansicode.TerminalMode) (screen.DecMode, bool) {
	switch mode {
	case ansicode.TerminalModeCursorKeys:
		return screen.ModeCursorKeys, true
	case ansicode.TerminalModeInsert:
		return screen.ModeInsert, true
	case ansicode.TerminalModeOrigin:
		return screen.ModeOrigin, true
	case ansicode.TerminalModeLineWrap:
		return screen.ModeAutoWrap, true
	case ansicode.TerminalModeBlinkingCursor:
		return screen.ModeCursorBlink, true
	case ansicode.TerminalModeShowCursor:
		return screen.ModeCursorVisible, true
	case ansicode.TerminalModeReportMouseClicks:
		return screen.ModeMouseClick, true
	case ansicode.TerminalModeReportCellMouseMotion:
		return screen.ModeMouseDrag, true
	case ansicode.TerminalModeReportAllMouseMotion:
		return screen.ModeMouseMotion, true
	case ansicode.TerminalModeReportFocusInOut:
		return screen.ModeFocusReporting, true
	case ansicode.TerminalModeUTF8Mouse:
		return screen.ModeUTF8Mouse, true
	case ansicode.TerminalModeSGRMouse:
		return screen.ModeSGRMouse, true
	case ansicode.TerminalModeSwapScreenAndSetRestoreCursor:
		return screen.ModeAltScreen, true
	case ansicode.TerminalModeBracketedPaste:
		return screen.ModeBracketedPaste, true
	default:
		return 0, false
	}
}

// --- SGR / pen -------------------------------------------------------------

func (h *Handler) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {
	switch attr.Attr {
	case ansicode.CharAttributeReset:
		h.screen.ResetPen()
	case ansicode.CharAttributeBold:
		h.screen.SetPenFlag(cellmodel.PenBold, true)
	case ansicode.CharAttributeDim:
		h.screen.SetPenFlag(cellmodel.PenDim, true)
	case ansicode.CharAttributeItalic:
		h.screen.SetPenFlag(cellmodel.PenItalic, true)
	case ansicode.CharAttributeUnderline:
		h.screen.SetUnderline(cellmodel.UnderlineSingle)
	case ansicode.CharAttributeDoubleUnderline:
		h.screen.SetUnderline(cellmodel.UnderlineDouble)
	case ansicode.CharAttributeCurlyUnderline:
		h.screen.SetUnderline(cellmodel.UnderlineCurly)
	case ansicode.CharAttributeDottedUnderline:
		h.screen.SetUnderline(cellmodel.UnderlineDotted)
	case ansicode.CharAttributeDashedUnderline:
		h.screen.SetUnderline(cellmodel.UnderlineDashed)
	case ansicode.CharAttributeBlinkSlow, ansicode.CharAttributeBlinkFast:
		h.screen.SetPenFlag(cellmodel.PenBlink, true)
	case ansicode.CharAttributeReverse:
		h.screen.SetPenFlag(cellmodel.PenReverse, true)
	case ansicode.CharAttributeHidden:
		h.screen.SetPenFlag(cellmodel.PenHidden, true)
	case ansicode.CharAttributeStrike:
		h.screen.SetPenFlag(cellmodel.PenStrike, true)
	case ansicode.CharAttributeCancelBold:
		h.screen.SetPenFlag(cellmodel.PenBold, false)
	case ansicode.CharAttributeCancelBoldDim:
		h.screen.SetPenFlag(cellmodel.PenBold|cellmodel.PenDim, false)
	case ansicode.CharAttributeCancelItalic:
		h.screen.SetPenFlag(cellmodel.PenItalic, false)
	case ansicode.CharAttributeCancelUnderline:
		h.screen.SetUnderline(cellmodel.UnderlineNone)
	case ansicode.CharAttributeCancelBlink:
		h.screen.SetPenFlag(cellmodel.PenBlink, false)
	case ansicode.CharAttributeCancelReverse:
		h.screen.SetPenFlag(cellmodel.PenReverse, false)
	case ansicode.CharAttributeCancelHidden:
		h.screen.SetPenFlag(cellmodel.PenHidden, false)
	case ansicode.CharAttributeCancelStrike:
		h.screen.SetPenFlag(cellmodel.PenStrike, false)
	case ansicode.CharAttributeForeground:
		h.screen.SetFg(h.resolveColor(attr))
	case ansicode.CharAttributeBackground:
		h.screen.SetBg(h.resolveColor(attr))
	case ansicode.CharAttributeUnderlineColor:
		if attr.RGBColor == nil && attr.IndexedColor == nil {
			h.screen.SetUnderlineColor(cellmodel.Default)
		} else {
			h.screen.SetUnderlineColor(h.resolveColor(attr))
		}
	}
}

func (h *Handler) resolveColor(attr ansicode.TerminalCharAttribute) cellmodel.Color {
	if attr.RGBColor != nil {
		return cellmodel.RGB(attr.RGBColor.R, attr.RGBColor.G, attr.RGBColor.B)
	}
	if attr.IndexedColor != nil {
		return cellmodel.Indexed(uint8(attr.IndexedColor.Index))
	}
	return cellmodel.Default
}

// --- title / hyperlink / OSC ------------------------------------------------

func (h *Handler) SetTitle(title string) {
	if h.title != nil {
		h.title.SetTitle(title)
	}
}

func (h *Handler) PushTitle() { h.titleStack = append(h.titleStack, "") }
func (h *Handler) PopTitle() {
	if n := len(h.titleStack); n > 0 {
		h.titleStack = h.titleStack[:n-1]
	}
}

func (h *Handler) SetHyperlink(link *ansicode.Hyperlink) {
	if link == nil {
		h.screen.SetURI(0)
		return
	}
	h.screen.SetURI(h.hyperlinks.Intern(link.URI))
}

func (h *Handler) SetWorkingDirectory(uri string) {
	if h.title != nil {
		h.title.SetWorkingDirectory(uri)
	}
}

// --- color query / set / reset ---------------------------------------------

func (h *Handler) SetColor(index int, c color.Color) {
	if h.palette == nil || index < 0 || index > 255 {
		return
	}
	r, g, b, _ := c.RGBA()
	h.palette.Set(uint8(index), cellmodel.RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8)))
}

func (h *Handler) ResetColor(i int) {
	if h.palette != nil {
		h.palette.Reset(uint8(i))
	}
}

func (h *Handler) SetDynamicColor(prefix string, index int, terminator string) {
	if h.palette == nil || h.req == nil {
		return
	}
	c := h.palette.Color(uint8(index))
	reply := "\x1b]" + prefix + ";" + paletteRGBSpec(c) + terminator
	h.req.Send([]byte(reply))
}

func paletteRGBSpec(c cellmodel.Color) string {
	r, g, b, _ := c.AsRGB()
	return "rgb:" + hex2(r) + "/" + hex2(g) + "/" + hex2(b)
}

func hex2(v uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[v>>4], digits[v&0xF]})
}

// --- clipboard ---------------------------------------------------------

func (h *Handler) ClipboardStore(reg byte, data []byte) {
	if h.clipQueue == nil {
		return
	}
	h.clipQueue.Submit(registerMask(reg), data)
}

// ClipboardLoad is always refused (spec §4.8: "Query (read clipboard)
// is refused by design").
func (h *Handler) ClipboardLoad(reg byte, terminator string) {}

func registerMask(reg byte) clipboard.Mask {
	if reg == '*' {
		return clipboard.Primary
	}
	return clipboard.Clipboard
}

// --- device status / identify -----------------------------------------------

func (h *Handler) DeviceStatus(n int) {
	if h.req == nil {
		return
	}
	switch n {
	case 5:
		h.req.Send([]byte("\x1b[0n"))
	case 6:
		row, col := h.screen.CursorRow()+1, h.screen.CursorCol()+1
		h.req.Send([]byte("\x1b[" + itoa(row) + ";" + itoa(col) + "R"))
	}
}

func (h *Handler) IdentifyTerminal(b byte) {
	if h.req != nil {
		h.req.Send([]byte("\x1b[?62;c"))
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

// --- keyboard mode stack (xterm "kitty keyboard protocol"), kept minimal --

func (h *Handler) PushKeyboardMode(mode ansicode.KeyboardMode)                             {}
func (h *Handler) PopKeyboardMode(n int)                                                   {}
func (h *Handler) SetKeyboardMode(mode ansicode.KeyboardMode, behavior ansicode.KeyboardModeBehavior) {}
func (h *Handler) ReportKeyboardMode()                                                      {}

func (h *Handler) SetModifyOtherKeys(mode ansicode.ModifyOtherKeys) {}
func (h *Handler) ReportModifyOtherKeys()                           {}

func (h *Handler) SetCursorStyle(style ansicode.CursorStyle) {}
func (h *Handler) SetKeypadApplicationMode()                 {}
func (h *Handler) UnsetKeypadApplicationMode()                {}

// --- out-of-band passthrough (unknown CSI/OSC per spec §4.1) -------------

func (h *Handler) ApplicationCommandReceived(data []byte) { h.dispatchUnknown("APC", data) }
func (h *Handler) PrivacyMessageReceived(data []byte)      { h.dispatchUnknown("PM", data) }
func (h *Handler) StartOfStringReceived(data []byte)       { h.dispatchUnknown("SOS", data) }

func (h *Handler) dispatchUnknown(kind string, data []byte) {
	if h.req == nil {
		return
	}
	h.req.Dispatch(request.Payload{Kind: kind, Data: data}, func(p request.Payload) {
		if h.onRequest != nil {
			h.onRequest(p)
		}
	})
}

// --- image protocols: explicitly out of scope (non-goal) -------------------

func (h *Handler) CellSizePixels()                                  {}
func (h *Handler) TextAreaSizeChars()                                {}
func (h *Handler) TextAreaSizePixels()                               {}
func (h *Handler) SixelReceived(params [][]uint16, data []byte)      {}

func (h *Handler) ResetState() { h.screen.ResetPen() }
