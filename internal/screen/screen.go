// Package screen implements the Screen State component (spec §4.2): the
// primary/alternate grid pair, cursor and pen, DEC private modes, and
// the full VT command table the parser dispatches into.
package screen

import "github.com/vtcore/vt/internal/cellmodel"

// Screen owns the primary and alternate grids and all of the terminal
// state that is not scrollback or projection: cursor, pen, DEC modes,
// charsets, scroll margins, and saved-cursor state.
type Screen struct {
	primary   *Grid
	alternate *Grid
	active    *Grid

	modes DecMode

	charsets   [4]Charset
	activeG    CharsetSlot
	singleUse  CharsetSlot // G2/G3 invoked for exactly the next glyph (SS2/SS3), -1 via hasSingle
	hasSingle  bool

	savedCursorRow, savedCursorCol int
	savedPen                       cellmodel.Cell
	savedOrigin                    bool
	savedCharsets                  [4]Charset
	savedActiveG                   CharsetSlot
	haveSaved                      bool

	// altSavedCursorRow/Col back up DECSC/DECRC state across a 1049
	// switch, per the resolved Open Question: 1049 always saves/restores
	// the cursor itself (xterm semantics), independent of whether the
	// application separately used DECSC (1048)/DECRC.
	altSavedRow, altSavedCol int
	altSavedPen              cellmodel.Cell
}

const defaultScrollback = 10000

// New constructs a Screen with the given grid dimensions. The primary
// grid is backed by sink; the alternate grid never feeds scrollback.
func New(width, height int, sink ScrollbackSink) *Screen {
	s := &Screen{
		primary:   NewGrid(width, height, sink),
		alternate: NewGrid(width, height, nil),
	}
	s.active = s.primary
	s.modes = ModeAutoWrap | ModeCursorVisible
	return s
}

// Width and Height report the active grid's current dimensions.
func (s *Screen) Width() int  { return s.active.width }
func (s *Screen) Height() int { return s.active.height }

// CursorRow and CursorCol report the active grid's cursor position.
func (s *Screen) CursorRow() int { return s.active.cursorRow }
func (s *Screen) CursorCol() int { return s.active.cursorCol }

// CursorVisible reports whether DECTCEM is set.
func (s *Screen) CursorVisible() bool { return s.modes&ModeCursorVisible != 0 }

// Line returns a copy of row `row` of the active grid, clipped/padded
// to width.
func (s *Screen) Line(row, width int) cellmodel.Row { return s.active.Line(row, width) }

// TakeDamage returns and clears the active grid's accumulated damage.
func (s *Screen) TakeDamage() Damage { return s.active.TakeDamage() }

// MarkAllDirty damages every row of the active grid.
func (s *Screen) MarkAllDirty() { s.active.MarkAllDirty() }

// HasMode reports whether the given DEC mode bit is currently set.
func (s *Screen) HasMode(m DecMode) bool { return s.modes&m != 0 }

// --- cursor movement -------------------------------------------------

func (s *Screen) clampCol(col int) int {
	if col < 0 {
		return 0
	}
	if col >= s.active.width {
		return s.active.width - 1
	}
	return col
}

func (s *Screen) originTop() int {
	if s.modes&ModeOrigin != 0 {
		return s.active.scrollTop
	}
	return 0
}

func (s *Screen) originBottom() int {
	if s.modes&ModeOrigin != 0 {
		return s.active.scrollBottom
	}
	return s.active.height
}

func (s *Screen) clampRow(row int) int {
	top, bottom := s.originTop(), s.originBottom()
	if row < top {
		return top
	}
	if row >= bottom {
		return bottom - 1
	}
	return row
}

// CursorPosition implements CUP/HVP: move to (row, col), 0-based here
// (the parser translates 1-based wire coordinates), honoring DECOM.
func (s *Screen) CursorPosition(row, col int) {
	g := s.active
	g.cursorRow = s.clampRow(row + s.originTop())
	g.cursorCol = s.clampCol(col)
	g.pendingWrap = false
}

func (s *Screen) CursorUp(n int)      { s.moveCursorRow(-n) }
func (s *Screen) CursorDown(n int)    { s.moveCursorRow(n) }
func (s *Screen) CursorForward(n int) { s.moveCursorCol(n) }
func (s *Screen) CursorBackward(n int) {
	s.moveCursorCol(-n)
	s.active.pendingWrap = false
}

func (s *Screen) moveCursorRow(delta int) {
	g := s.active
	top, bottom := s.originTop(), s.originBottom()
	row := g.cursorRow + delta
	if row < top {
		row = top
	}
	if row >= bottom {
		row = bottom - 1
	}
	g.cursorRow = row
}

func (s *Screen) moveCursorCol(delta int) {
	g := s.active
	g.cursorCol = s.clampCol(g.cursorCol + delta)
}

// CursorColumn implements CHA: move to column col on the current row.
func (s *Screen) CursorColumn(col int) {
	s.active.cursorCol = s.clampCol(col)
	s.active.pendingWrap = false
}

// CursorLine implements CNL/CPL combined with a column reset to 0.
func (s *Screen) CursorLine(delta int) {
	s.moveCursorRow(delta)
	s.active.cursorCol = 0
	s.active.pendingWrap = false
}

// LineFeed implements LF/IND/VT/FF: move down one row, scrolling the
// region if already at the bottom margin.
func (s *Screen) LineFeed() {
	g := s.active
	g.pendingWrap = false
	if g.cursorRow == g.scrollBottom-1 {
		g.ScrollUp(g.scrollTop, g.scrollBottom, 1)
		return
	}
	if g.cursorRow < g.height-1 {
		g.cursorRow++
	}
}

// ReverseIndex implements RI: move up one row, scrolling the region if
// already at the top margin.
func (s *Screen) ReverseIndex() {
	g := s.active
	g.pendingWrap = false
	if g.cursorRow == g.scrollTop {
		g.ScrollDown(g.scrollTop, g.scrollBottom, 1)
		return
	}
	if g.cursorRow > 0 {
		g.cursorRow--
	}
}

// CarriageReturn implements CR: move to column 0.
func (s *Screen) CarriageReturn() {
	s.active.cursorCol = 0
	s.active.pendingWrap = false
}

// Backspace implements BS: move left one column, no wrap.
func (s *Screen) Backspace() {
	g := s.active
	if g.cursorCol > 0 {
		g.cursorCol--
	}
	g.pendingWrap = false
}

// Tab implements HT: advance to the next tab stop.
func (s *Screen) Tab() {
	g := s.active
	g.cursorCol = g.nextTabStop(g.cursorCol)
}

// BackTab implements CBT: retreat to the previous tab stop.
func (s *Screen) BackTab() {
	g := s.active
	g.cursorCol = g.prevTabStop(g.cursorCol)
}

// SaveCursor implements DECSC: snapshot cursor, pen, origin mode, and
// charset state.
func (s *Screen) SaveCursor() {
	g := s.active
	s.savedCursorRow, s.savedCursorCol = g.cursorRow, g.cursorCol
	s.savedPen = g.pen
	s.savedOrigin = s.modes&ModeOrigin != 0
	s.savedCharsets = s.charsets
	s.savedActiveG = s.activeG
	s.haveSaved = true
}

// RestoreCursor implements DECRC: restore the last DECSC snapshot, or
// reset to home if none was ever taken (matches xterm's fallback).
func (s *Screen) RestoreCursor() {
	g := s.active
	if !s.haveSaved {
		g.cursorRow, g.cursorCol = 0, 0
		g.pen = cellmodel.Blank()
		return
	}
	g.cursorRow = s.clampRowRaw(s.savedCursorRow)
	g.cursorCol = s.clampCol(s.savedCursorCol)
	g.pen = s.savedPen
	g.pendingWrap = false
	if s.savedOrigin {
		s.modes |= ModeOrigin
	} else {
		s.modes &^= ModeOrigin
	}
	s.charsets = s.savedCharsets
	s.activeG = s.savedActiveG
}

func (s *Screen) clampRowRaw(row int) int {
	if row < 0 {
		return 0
	}
	if row >= s.active.height {
		return s.active.height - 1
	}
	return row
}

// --- writing glyphs ----------------------------------------------------

// WidthFunc reports the display width (0, 1, or 2) of a rune. Screen
// takes this as a dependency rather than importing a width library
// itself, keeping the VT state machine free of rendering concerns.
type WidthFunc func(r rune) int

// Input writes a single grapheme at the cursor, advancing it and
// performing deferred ("phantom column") autowrap per spec §4.2: a
// wide or narrow glyph written in the last column sets pendingWrap
// instead of wrapping immediately, so a following control sequence (CR,
// cursor move) can still land in that column. width is the caller's
// own width classification (internal/cellwidth in the root wiring).
func (s *Screen) Input(r rune, width int) {
	g := s.active
	if width <= 0 {
		width = 1
	}
	if g.pendingWrap {
		if s.modes&ModeAutoWrap != 0 {
			g.wrapped[g.cursorRow] = true
			g.cursorRow, g.cursorCol = s.advanceRowForWrap(g.cursorRow), 0
		}
		g.pendingWrap = false
	}
	if width == 2 && g.cursorCol == g.width-1 {
		// Not enough room for a wide glyph in the last column: mark it
		// with the filler '<' and wrap the glyph itself to column 0 of
		// the next line; with autowrap off, the glyph is dropped.
		filler := g.pen
		filler.Glyph = '<'
		filler.Width = 1
		*g.cellAt(g.cursorRow, g.cursorCol) = filler
		g.markDamage(g.cursorRow, g.cursorRow+1)
		if s.modes&ModeAutoWrap != 0 {
			g.wrapped[g.cursorRow] = true
			g.cursorRow, g.cursorCol = s.advanceRowForWrap(g.cursorRow), 0
		} else {
			return
		}
	}

	cell := g.pen
	cell.Glyph = r
	cell.Width = uint8(width)
	*g.cellAt(g.cursorRow, g.cursorCol) = cell
	cell.MarkDirty()

	if width == 2 && g.cursorCol+1 < g.width {
		tail := cellmodel.Cell{Width: 0}
		*g.cellAt(g.cursorRow, g.cursorCol+1) = tail
	}
	g.markDamage(g.cursorRow, g.cursorRow+1)

	next := g.cursorCol + width
	if next >= g.width {
		g.cursorCol = g.width - 1
		g.pendingWrap = true
	} else {
		g.cursorCol = next
	}
}

func (s *Screen) advanceRowForWrap(row int) int {
	g := s.active
	if row == g.scrollBottom-1 {
		g.ScrollUp(g.scrollTop, g.scrollBottom, 1)
		return row
	}
	if row < g.height-1 {
		return row + 1
	}
	return row
}

// --- scroll region -----------------------------------------------------

// SetScrollRegion implements DECSTBM. top/bottom are 0-based,
// bottom exclusive. A degenerate or full-height region resets margins
// and homes the cursor, per DEC convention.
func (s *Screen) SetScrollRegion(top, bottom int) {
	g := s.active
	if top < 0 {
		top = 0
	}
	if bottom <= top || bottom > g.height {
		top, bottom = 0, g.height
	}
	g.scrollTop, g.scrollBottom = top, bottom
	g.cursorRow, g.cursorCol = s.originTop(), 0
	g.pendingWrap = false
}

// --- erase ---------------------------------------------------------------

// EraseInDisplay implements ED.
func (s *Screen) EraseInDisplay(mode EraseMode) {
	g := s.active
	switch mode {
	case EraseBelow:
		g.clearRange(g.cursorRow, g.cursorCol, g.width)
		for r := g.cursorRow + 1; r < g.height; r++ {
			g.clearRow(r)
		}
	case EraseAbove:
		g.clearRange(g.cursorRow, 0, g.cursorCol+1)
		for r := 0; r < g.cursorRow; r++ {
			g.clearRow(r)
		}
	case EraseAll:
		g.clearAll()
	}
}

// EraseInLine implements EL.
func (s *Screen) EraseInLine(mode EraseMode) {
	g := s.active
	switch mode {
	case EraseBelow:
		g.clearRange(g.cursorRow, g.cursorCol, g.width)
	case EraseAbove:
		g.clearRange(g.cursorRow, 0, g.cursorCol+1)
	case EraseAll:
		g.clearRow(g.cursorRow)
	}
}

// EraseChars implements ECH: clear n cells starting at the cursor,
// without shifting content (unlike DeleteChars).
func (s *Screen) EraseChars(n int) {
	g := s.active
	g.clearRange(g.cursorRow, g.cursorCol, g.cursorCol+n)
}

// --- insert/delete ---------------------------------------------------------

// InsertLines implements IL: only acts within the scroll region, and
// only when the cursor is inside it (spec's VT command table).
func (s *Screen) InsertLines(n int) {
	g := s.active
	if g.cursorRow < g.scrollTop || g.cursorRow >= g.scrollBottom {
		return
	}
	g.ScrollDown(g.cursorRow, g.scrollBottom, n)
}

// DeleteLines implements DL.
func (s *Screen) DeleteLines(n int) {
	g := s.active
	if g.cursorRow < g.scrollTop || g.cursorRow >= g.scrollBottom {
		return
	}
	g.ScrollUp(g.cursorRow, g.scrollBottom, n)
}

// InsertChars implements ICH.
func (s *Screen) InsertChars(n int) {
	g := s.active
	g.insertBlanks(g.cursorRow, g.cursorCol, n)
}

// DeleteChars implements DCH.
func (s *Screen) DeleteChars(n int) {
	g := s.active
	g.deleteChars(g.cursorRow, g.cursorCol, n)
}

// --- scroll (explicit SU/SD, independent of cursor position) --------------

// ScrollUp implements SU.
func (s *Screen) ScrollUp(n int) {
	g := s.active
	g.ScrollUp(g.scrollTop, g.scrollBottom, n)
}

// ScrollDown implements SD.
func (s *Screen) ScrollDown(n int) {
	g := s.active
	g.ScrollDown(g.scrollTop, g.scrollBottom, n)
}

// --- pen / SGR -------------------------------------------------------------

// ResetPen implements SGR 0.
func (s *Screen) ResetPen() {
	g := s.active
	g.pen.Pen = 0
	g.pen.Underline = cellmodel.UnderlineNone
	g.pen.Fg = cellmodel.Default
	g.pen.Bg = cellmodel.Default
	g.pen.UnderlineColor = cellmodel.Default
}

// SetPenFlag sets or clears one Pen bit (bold/dim/italic/reverse/
// strike/hidden/blink).
func (s *Screen) SetPenFlag(flag cellmodel.Pen, on bool) {
	if on {
		s.active.pen.Pen |= flag
	} else {
		s.active.pen.Pen &^= flag
	}
}

// SetUnderline sets the underline style.
func (s *Screen) SetUnderline(style cellmodel.UnderlineStyle) {
	s.active.pen.Underline = style
}

// SetFg, SetBg, SetUnderlineColor set the pen's colors for subsequent
// writes. They do not touch already-written cells.
func (s *Screen) SetFg(c cellmodel.Color)             { s.active.pen.Fg = c }
func (s *Screen) SetBg(c cellmodel.Color)             { s.active.pen.Bg = c }
func (s *Screen) SetUnderlineColor(c cellmodel.Color) { s.active.pen.UnderlineColor = c }

// SetURI tags the pen with an OSC 8 hyperlink id (0 clears it).
func (s *Screen) SetURI(id uint32) { s.active.pen.URIAttr = id }

// --- DEC modes ---------------------------------------------------------

// SetMode implements DECSET (and ANSI SM for mode IRM).
func (s *Screen) SetMode(m DecMode) { s.applyMode(m, true) }

// ResetMode implements DECRST (and ANSI RM for mode IRM).
func (s *Screen) ResetMode(m DecMode) { s.applyMode(m, false) }

func (s *Screen) applyMode(m DecMode, on bool) {
	wasAlt := s.modes&ModeAltScreen != 0

	if on {
		s.modes |= m
	} else {
		s.modes &^= m
	}

	if m&ModeAltScreen == 0 {
		return
	}
	nowAlt := s.modes&ModeAltScreen != 0
	if nowAlt == wasAlt {
		return
	}
	if nowAlt {
		s.enterAltScreen(on)
	} else {
		s.exitAltScreen(on)
	}
}

// enterAltScreen implements the 1047/1049 switch-in. By the resolved
// Open Question, 1049 always performs its own cursor save (xterm
// semantics), independent of any separate DECSC the application issued
// ("match xterm" — 1049 = 1047 + cursor save/restore, unconditionally).
func (s *Screen) enterAltScreen(viaDECSC1049 bool) {
	g := s.primary
	s.altSavedRow, s.altSavedCol = g.cursorRow, g.cursorCol
	s.altSavedPen = g.pen
	s.alternate.clearAll()
	s.active = s.alternate
}

func (s *Screen) exitAltScreen(viaDECSC1049 bool) {
	s.active = s.primary
	g := s.active
	g.cursorRow = s.clampRowRaw(s.altSavedRow)
	g.cursorCol = s.clampCol(s.altSavedCol)
	g.pen = s.altSavedPen
	g.pendingWrap = false
}

// --- tab stops ----------------------------------------------------------

// SetTabStop implements HTS: set a tab stop at the cursor column.
func (s *Screen) SetTabStop() {
	g := s.active
	if g.cursorCol >= 0 && g.cursorCol < len(g.tabStops) {
		g.tabStops[g.cursorCol] = true
	}
}

// ClearTabStop implements TBC.
func (s *Screen) ClearTabStop(mode TabClearMode) {
	g := s.active
	switch mode {
	case TabClearCurrent:
		if g.cursorCol >= 0 && g.cursorCol < len(g.tabStops) {
			g.tabStops[g.cursorCol] = false
		}
	case TabClearAll:
		for i := range g.tabStops {
			g.tabStops[i] = false
		}
	}
}

// --- charsets -------------------------------------------------------------

// Designate assigns an encoding to a G0-G3 slot (ESC ( / ) / * / +).
func (s *Screen) Designate(slot CharsetSlot, cs Charset) { s.charsets[slot] = cs }

// InvokeGL implements SI/SO/LS2/LS3: switch which slot GL reads from.
func (s *Screen) InvokeGL(slot CharsetSlot) { s.activeG = slot }

// ActiveCharset returns the encoding currently invoked into GL.
func (s *Screen) ActiveCharset() Charset { return s.charsets[s.activeG] }

// --- full-screen ops -----------------------------------------------------

// AlignmentTest implements DECALN: fill the screen with 'E' and reset
// margins, used by terminal self-test sequences.
func (s *Screen) AlignmentTest() {
	g := s.active
	g.scrollTop, g.scrollBottom = 0, g.height
	for r := 0; r < g.height; r++ {
		for c := 0; c < g.width; c++ {
			cell := cellmodel.Blank()
			cell.Glyph = 'E'
			*g.cellAt(r, c) = cell
		}
	}
	g.markDamage(0, g.height)
	g.cursorRow, g.cursorCol = 0, 0
	g.pendingWrap = false
}

// --- resize -----------------------------------------------------------

// Resize applies width/height to both grids. reflow governs only the
// primary grid: xterm-family terminals never reflow the alternate
// screen since its occupant (an editor, a pager) repaints itself on
// SIGWINCH, so the alternate grid always clips/pads.
func (s *Screen) Resize(width, height int, reflow bool) {
	s.primary.resize(width, height, reflow)
	s.alternate.resize(width, height, false)
}
