package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtcore/vt/internal/cellmodel"
)

func newTestScreen(w, h int) *Screen {
	return New(w, h, nil)
}

func TestInputAdvancesCursorAndDamagesRow(t *testing.T) {
	s := newTestScreen(10, 5)
	s.Input('a', 1)

	assert.Equal(t, 0, s.CursorRow())
	assert.Equal(t, 1, s.CursorCol())

	dmg := s.TakeDamage()
	require.False(t, dmg.IsNone())
	assert.Equal(t, 0, dmg.Start)
	assert.Equal(t, 1, dmg.End)

	line := s.Line(0, 10)
	assert.Equal(t, 'a', line[0].Glyph)
}

func TestInputPendingWrapDeferredUntilNextWrite(t *testing.T) {
	s := newTestScreen(3, 2)
	s.Input('a', 1)
	s.Input('b', 1)
	s.Input('c', 1) // fills last column, sets pendingWrap

	assert.Equal(t, 0, s.CursorRow())
	assert.Equal(t, 2, s.CursorCol())

	s.Input('d', 1) // now the deferred wrap actually happens
	assert.Equal(t, 1, s.CursorRow())
	assert.Equal(t, 1, s.CursorCol())
	assert.Equal(t, "d", s.Line(1, 3).Text())
}

func TestInputCarriageReturnConsumesPendingWrapWithoutWrapping(t *testing.T) {
	s := newTestScreen(3, 2)
	s.Input('a', 1)
	s.Input('b', 1)
	s.Input('c', 1) // pendingWrap set, cursor still row 0

	s.CarriageReturn()
	assert.Equal(t, 0, s.CursorRow())
	assert.Equal(t, 0, s.CursorCol())
}

func TestInputWideGlyphWritesTailCell(t *testing.T) {
	s := newTestScreen(10, 2)
	s.Input('字', 2)

	line := s.Line(0, 10)
	assert.True(t, line[0].IsWide())
	assert.True(t, line[1].IsWideTail())
	assert.Equal(t, 2, s.CursorCol())
}

func TestInputWideGlyphAtLastColumnInsertsFillerAndWraps(t *testing.T) {
	s := newTestScreen(3, 2)
	s.Input('a', 1)
	s.Input('b', 1) // cursor now at col 2, the last column
	s.Input('字', 2)

	line0 := s.Line(0, 3)
	assert.Equal(t, '<', line0[2].Glyph)
	assert.Equal(t, 1, s.CursorRow())
	assert.Equal(t, 2, s.CursorCol())
}

func TestLineFeedScrollsAtBottomMargin(t *testing.T) {
	s := newTestScreen(5, 2)
	s.Input('a', 1)
	s.LineFeed()
	s.LineFeed() // second linefeed scrolls row 0 off the top

	assert.Equal(t, 1, s.CursorRow())
	assert.Equal(t, "", s.Line(0, 5).Text())
}

func TestScrollRegionConstrainsInsertDeleteLines(t *testing.T) {
	s := newTestScreen(5, 10)
	s.SetScrollRegion(2, 5)

	s.CursorPosition(1, 0) // outside the region
	s.InsertLines(1)       // must be a noop

	s.CursorPosition(3, 0) // inside the region
	s.Input('x', 1)
	s.InsertLines(1)

	assert.Equal(t, "", s.Line(3, 5).Text())
	assert.Equal(t, "x", s.Line(4, 5).Text())
}

func TestEraseInLineBelow(t *testing.T) {
	s := newTestScreen(5, 1)
	s.Input('a', 1)
	s.Input('b', 1)
	s.Input('c', 1)
	s.CursorPosition(0, 1)
	s.EraseInLine(EraseBelow)

	assert.Equal(t, "a", s.Line(0, 5).Text())
}

func TestEraseInDisplayAll(t *testing.T) {
	s := newTestScreen(5, 3)
	s.Input('a', 1)
	s.LineFeed()
	s.Input('b', 1)
	s.EraseInDisplay(EraseAll)

	for row := 0; row < 3; row++ {
		assert.Equal(t, "", s.Line(row, 5).Text())
	}
}

func TestSetModeAndResetMode(t *testing.T) {
	s := newTestScreen(5, 5)
	assert.False(t, s.HasMode(ModeCursorKeys))
	s.SetMode(ModeCursorKeys)
	assert.True(t, s.HasMode(ModeCursorKeys))
	s.ResetMode(ModeCursorKeys)
	assert.False(t, s.HasMode(ModeCursorKeys))
}

func TestCursorVisibleDefaultsOn(t *testing.T) {
	s := newTestScreen(5, 5)
	assert.True(t, s.CursorVisible())
	s.ResetMode(ModeCursorVisible)
	assert.False(t, s.CursorVisible())
}

func TestAltScreenSwitchIsolatesContentAndRestoresCursor(t *testing.T) {
	s := newTestScreen(5, 5)
	s.Input('p', 1)
	s.CursorPosition(2, 2)

	s.SetMode(ModeAltScreen)
	assert.Equal(t, "", s.Line(2, 5).Text(), "alt screen starts blank")
	s.Input('q', 1)

	s.ResetMode(ModeAltScreen)
	assert.Equal(t, "p", s.Line(0, 5).Text(), "primary content survives the alt-screen round trip")
	assert.Equal(t, 2, s.CursorRow())
	assert.Equal(t, 2, s.CursorCol())
}

func TestAltScreenNeverFeedsScrollback(t *testing.T) {
	sink := &fakeSink{}
	s := New(3, 1, sink)
	s.SetMode(ModeAltScreen)

	s.Input('a', 1)
	s.LineFeed()
	s.Input('b', 1)
	s.LineFeed()

	assert.Equal(t, 0, len(sink.pushed), "scrolling the alt screen must never push to the primary's scrollback sink")
}

type fakeSink struct{ pushed []cellmodel.Row }

func (f *fakeSink) Push(row cellmodel.Row)       { f.pushed = append(f.pushed, row) }
func (f *fakeSink) Pop(int) (cellmodel.Row, bool) { return nil, false }

func TestScrollUpPushesEvictedRowToScrollback(t *testing.T) {
	sink := &fakeSink{}
	s := New(5, 2, sink)
	s.Input('a', 1)
	s.LineFeed()
	s.Input('b', 1)
	s.LineFeed() // row 0 ("a") scrolls off

	require.Len(t, sink.pushed, 1)
	assert.Equal(t, "a", sink.pushed[0].Text())
}

func TestResizeClipsWidthAndPreservesContent(t *testing.T) {
	s := newTestScreen(5, 2)
	s.Input('h', 1)
	s.Input('i', 1)

	s.Resize(3, 2, false)
	assert.Equal(t, 3, s.Width())
	assert.Equal(t, "hi", s.Line(0, 3).Text())
}

func TestDamageClearsAfterTakeDamage(t *testing.T) {
	s := newTestScreen(5, 5)
	s.Input('a', 1)

	first := s.TakeDamage()
	assert.False(t, first.IsNone())

	second := s.TakeDamage()
	assert.True(t, second.IsNone())
}

func TestMarkAllDirtyDamagesEveryRow(t *testing.T) {
	s := newTestScreen(5, 3)
	s.TakeDamage() // drain any damage from construction

	s.MarkAllDirty()
	dmg := s.TakeDamage()
	require.False(t, dmg.IsNone())
	assert.Equal(t, 0, dmg.Start)
	assert.Equal(t, 3, dmg.End)
}

func TestDesignateAndInvokeCharset(t *testing.T) {
	s := newTestScreen(5, 5)
	s.Designate(G1, CharsetLineDrawing)
	s.InvokeGL(G1)
	assert.Equal(t, CharsetLineDrawing, s.ActiveCharset())
}

func TestSaveRestoreCursor(t *testing.T) {
	s := newTestScreen(5, 5)
	s.CursorPosition(2, 3)
	s.SaveCursor()
	s.CursorPosition(0, 0)
	s.RestoreCursor()

	assert.Equal(t, 2, s.CursorRow())
	assert.Equal(t, 3, s.CursorCol())
}
